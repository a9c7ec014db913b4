// Package chunker splits normalised document text into overlapping
// passages sized for embedding.
package chunker

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultTargetSize is the default number of characters per passage.
const DefaultTargetSize = 1000

// DefaultOverlap is the default number of overlapping characters.
const DefaultOverlap = 200

// boundaryFraction is how far into a window a sentence boundary must lie
// before it is preferred over a hard cut. Cutting earlier would produce
// degenerate tiny passages.
const boundaryFraction = 0.55

// headerToken matches NERC CIP requirement headers ("R3.", "R1.2.", "Part
// 2.1") which mark clause starts and are preferred cut points.
var headerToken = regexp.MustCompile(`(^|\s)(R\d+(\.\d+)*\.|Part \d+(\.\d+)*)`)

// Chunker produces sliding windows of approximately targetSize characters,
// shortened to sentence or clause boundaries where possible.
// The zero value is not usable; construct with New.
type Chunker struct {
	targetSize int
	overlap    int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithTargetSize sets the approximate passage size in characters.
func WithTargetSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.targetSize = size
		}
	}
}

// WithOverlap sets the overlap between consecutive passages in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		targetSize: DefaultTargetSize,
		overlap:    DefaultOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Ensure overlap doesn't exceed the window size
	if c.overlap >= c.targetSize {
		c.overlap = c.targetSize / 4
	}

	return c
}

// Chunk splits text into ordered overlapping passages. The input is
// whitespace-normalised first, so the output is stable regardless of the
// source formatting. Deterministic: identical text and parameters always
// yield the identical passage sequence.
func (c *Chunker) Chunk(text string) []string {
	normalised := NormalizeWhitespace(text)
	if normalised == "" {
		return nil
	}

	runes := []rune(normalised)
	total := len(runes)

	var passages []string
	start := 0

	for start < total {
		end := start + c.targetSize
		if end >= total {
			end = total
		} else {
			end = c.adjustToBoundary(runes, start, end)
		}

		passage := strings.TrimSpace(string(runes[start:end]))
		if passage != "" {
			passages = append(passages, passage)
		}

		if end >= total {
			break
		}

		// Overlap with the previous window, but always advance.
		next := end - c.overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}

	return passages
}

// adjustToBoundary shortens the window [start,end) to end just after the
// nearest preceding sentence/clause boundary, provided the boundary lies
// past boundaryFraction of the window. Otherwise the hard cut stands.
func (c *Chunker) adjustToBoundary(runes []rune, start, end int) int {
	minCut := start + int(float64(c.targetSize)*boundaryFraction)
	if minCut >= end {
		return end
	}

	// A requirement header starting inside the acceptable region is the
	// preferred cut point: the header opens the next passage instead of
	// dangling at the end of this one.
	window := string(runes[start:end])
	if loc := lastHeaderStart(window); loc >= 0 {
		headerCut := start + loc
		if headerCut >= minCut {
			return headerCut
		}
	}

	for i := end - 1; i >= minCut; i-- {
		if runes[i] == '.' || runes[i] == ';' {
			return i + 1
		}
	}

	return end
}

// lastHeaderStart returns the rune offset of the last requirement-header
// token in s, or -1.
func lastHeaderStart(s string) int {
	matches := headerToken.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return -1
	}
	last := matches[len(matches)-1]
	// Group 2 is the header itself, excluding the leading whitespace.
	byteOff := last[4]
	return utf8.RuneCountInString(s[:byteOff])
}

// NormalizeWhitespace collapses all whitespace runs to single spaces and
// trims the ends. Chunk text, cache keys, and keyword matching all operate
// on this form so identical passages compare equal across documents.
func NormalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
