package domain

// Citation is a retrieval result handed to the consumer: the supporting
// text plus the reference needed to render a source link.
type Citation struct {
	// Text is the chunk content used as model context.
	Text string

	// SourceLabel is the human-readable document+page identifier.
	SourceLabel string

	// Locator is the addressable reference for the citation.
	Locator string

	// Score is the blended relevance score the result was ranked by.
	Score float64
}

// RetrievalWeights are the tuning constants for hybrid ranking. They were
// tuned empirically against the NERC CIP vocabulary and do not necessarily
// generalise to other corpora.
type RetrievalWeights struct {
	// Cosine is the weight of the cosine-similarity term.
	Cosine float64

	// Keyword is the weight of the keyword term.
	Keyword float64

	// KeywordCap bounds the raw keyword score before blending so many
	// incidental keyword hits in a long document cannot dominate.
	KeywordCap float64

	// HeaderBonus is added when a chunk carries a requirement-header token
	// from the query.
	HeaderBonus float64
}

// DefaultRetrievalWeights returns the blend used when no configuration
// overrides it.
func DefaultRetrievalWeights() RetrievalWeights {
	return RetrievalWeights{
		Cosine:      0.7,
		Keyword:     0.3,
		KeywordCap:  6,
		HeaderBonus: 3,
	}
}
