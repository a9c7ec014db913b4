// Package standards tracks the NERC CIP standard families seen during
// ingestion and disambiguates bare standard mentions in user queries.
// CIP standards are a versioned series (CIP-005-3 was superseded by
// CIP-005-6); a query for "CIP-005" should be steered toward the current
// version without discarding what the user typed.
package standards

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/core/domain"
	"github.com/andrew-wrightt/NERC-CIP-AI-Agent/internal/logger"
)

// identifierPattern tolerantly matches CIP identifiers: separators are
// optional and the family id may be unpadded ("CIP-5-6", "cip 005 6",
// "CIP0056" all mean CIP-005-6). When family and version digits run
// together the family id occupies its zero-padded fixed width of three.
var identifierPattern = regexp.MustCompile(`(?i)\bCIP[ _-]?(\d{1,6})(?:[ _-](\d{1,2}))?\b`)

// splitIdentifier resolves the captured digit groups into family and
// version. A digit run longer than the three-digit family width carries the
// version in its tail.
func splitIdentifier(m []string) (family, version int, hasVersion bool) {
	digits := m[1]
	if m[2] != "" {
		family, _ = strconv.Atoi(digits)
		version, _ = strconv.Atoi(m[2])
		return family, version, version > 0
	}
	if len(digits) > 3 {
		family, _ = strconv.Atoi(digits[:3])
		version, _ = strconv.Atoi(digits[3:])
		return family, version, version > 0
	}
	family, _ = strconv.Atoi(digits)
	return family, 0, false
}

// requirementPattern matches requirement references like "R1", "R2.3".
var requirementPattern = regexp.MustCompile(`\bR\d+(\.\d+)*\b`)

// entry tracks the versions seen for one standard family. Each version
// records the document keys that registered it, so a version survives as
// long as any backing document remains indexed.
type entry struct {
	versions map[int]map[string]struct{}
	latest   int
}

// Registry is the standards-version registry. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

// Parse extracts the first versioned CIP identifier from s. Returns false
// when s carries no identifier or the identifier has no version (a bare
// family mention is not enough to register a standard).
func Parse(s string) (domain.StandardRef, bool) {
	m := identifierPattern.FindStringSubmatch(s)
	if m == nil {
		return domain.StandardRef{}, false
	}
	family, version, ok := splitIdentifier(m)
	if !ok {
		return domain.StandardRef{}, false
	}
	return domain.StandardRef{
		Base:    fmt.Sprintf("CIP-%03d", family),
		Version: version,
	}, true
}

// Identifiers returns every CIP identifier mentioned in text, in canonical
// form ("CIP-005" or "CIP-005-6"), deduplicated, in order of appearance.
func Identifiers(text string) []string {
	var ids []string
	seen := make(map[string]bool)
	for _, m := range identifierPattern.FindAllStringSubmatch(text, -1) {
		family, version, hasVersion := splitIdentifier(m)
		id := fmt.Sprintf("CIP-%03d", family)
		if hasVersion {
			id += "-" + strconv.Itoa(version)
		}
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	return ids
}

// RequirementTokens returns requirement references ("R1", "R2.3") mentioned
// in text, deduplicated.
func RequirementTokens(text string) []string {
	var tokens []string
	seen := make(map[string]bool)
	for _, m := range requirementPattern.FindAllString(text, -1) {
		if !seen[m] {
			seen[m] = true
			tokens = append(tokens, m)
		}
	}
	return tokens
}

// Register extracts a versioned identifier from documentName and records
// it. The latest version for the family is the maximum ever registered.
// Returns false when the name does not carry a versioned CIP identifier.
func (r *Registry) Register(documentName string) (domain.StandardRef, bool) {
	ref, ok := Parse(documentName)
	if !ok {
		return domain.StandardRef{}, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[ref.Base]
	if !ok {
		e = &entry{versions: make(map[int]map[string]struct{})}
		r.entries[ref.Base] = e
	}
	backing, ok := e.versions[ref.Version]
	if !ok {
		backing = make(map[string]struct{})
		e.versions[ref.Version] = backing
	}
	backing[documentName] = struct{}{}
	if ref.Version > e.latest {
		e.latest = ref.Version
	}

	logger.Debug("Registered standard %s (latest %s-%d)", ref.VersionedID(), ref.Base, e.latest)
	return ref, true
}

// Remove withdraws documentName's backing from the version it carries.
// The version itself is pruned only when no other document backs it, so
// removing a name that was never registered changes nothing. When the
// pruned version was the latest, the latest falls back to the highest
// remaining version; an emptied family is deleted.
func (r *Registry) Remove(documentName string) {
	ref, ok := Parse(documentName)
	if !ok {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[ref.Base]
	if !ok {
		return
	}
	backing, ok := e.versions[ref.Version]
	if !ok {
		return
	}
	delete(backing, documentName)
	if len(backing) > 0 {
		return
	}
	delete(e.versions, ref.Version)
	if len(e.versions) == 0 {
		delete(r.entries, ref.Base)
		return
	}
	if ref.Version == e.latest {
		e.latest = 0
		for v := range e.versions {
			if v > e.latest {
				e.latest = v
			}
		}
	}
}

// Latest returns the current version for a family base ("CIP-005").
func (r *Registry) Latest(base string) (domain.StandardRef, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[strings.ToUpper(base)]
	if !ok {
		return domain.StandardRef{}, false
	}
	return domain.StandardRef{Base: strings.ToUpper(base), Version: e.latest}, true
}

// Versions returns the sorted versions recorded for a family base.
func (r *Registry) Versions(base string) []int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[strings.ToUpper(base)]
	if !ok {
		return nil
	}
	versions := make([]int, 0, len(e.versions))
	for v := range e.versions {
		versions = append(versions, v)
	}
	sort.Ints(versions)
	return versions
}

// NormalizeQuery rewrites every bare, unversioned mention of a known family
// in free text by appending the parenthetical latest versioned identifier:
// "CIP-005" becomes "CIP-005 (CIP-005-6)". Versioned mentions and unknown
// families pass through unchanged — the registry never guesses.
func (r *Registry) NormalizeQuery(text string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return identifierPattern.ReplaceAllStringFunc(text, func(match string) string {
		m := identifierPattern.FindStringSubmatch(match)
		family, _, hasVersion := splitIdentifier(m)
		if hasVersion {
			// Already versioned; leave alone.
			return match
		}
		base := fmt.Sprintf("CIP-%03d", family)
		e, ok := r.entries[base]
		if !ok || e.latest == 0 {
			return match
		}
		latest := domain.StandardRef{Base: base, Version: e.latest}
		return fmt.Sprintf("%s (%s)", match, latest.VersionedID())
	})
}
