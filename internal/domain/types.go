package domain

// Chunk is a bounded contiguous slice of extracted text produced for indexing.
// Start and End are rune offsets into the source text, half-open.
type Chunk struct {
	Index int
	Start int
	End   int
	Text  string
}

// Metadata carries the known payload fields attached to an indexed record,
// plus free-form extension fields that were not recognised.
type Metadata struct {
	Question   string
	Answer     string
	AnswerType string
	Date       string
	Source     string
	Extra      map[string]string
}

// Record is a vector plus metadata as stored in the collection.
// Re-indexing under the same ID overwrites.
type Record struct {
	ID     string
	Vector []float64
	Meta   Metadata
}

// SearchHit is one ranked match from a similarity query. Score is the
// store's similarity value, higher meaning more similar.
type SearchHit struct {
	ID    string
	Score float64
	Meta  Metadata
}

// AnsweredQuery bundles everything produced for one question: the ranked
// hits, the generated (or extractive) answer, and a confidence in [0,1].
type AnsweredQuery struct {
	Query      string
	Hits       []SearchHit
	Answer     string
	Confidence float64
}

// SourceSummary is the display projection of a single hit.
type SourceSummary struct {
	Text       string
	Score      float64
	Question   string
	AnswerType string
	Date       string
}

// FormattedAnswer is the display-ready projection of an AnsweredQuery.
type FormattedAnswer struct {
	Answer          string
	Confidence      float64
	ConfidenceLabel string
	ConfidencePct   string
	Sources         []SourceSummary
}
