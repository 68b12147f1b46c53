// Package formatter shapes answered queries into display-ready structures.
package formatter

import (
	"fmt"
	"math"

	"rfpqa/internal/domain"
)

// NoResultsMessage is the fixed answer when there is nothing to show.
const NoResultsMessage = "No relevant information found for this query."

// Formatter projects AnsweredQuery values into FormattedAnswer views. It
// never fails: malformed inputs degrade into a best-effort answer carrying
// the problem description.
type Formatter struct{}

// New creates a Formatter.
func New() *Formatter {
	return &Formatter{}
}

// Format builds the read-only display view: answer text, confidence label
// and percentage, and one source summary per hit in rank order.
func (f *Formatter) Format(answered domain.AnsweredQuery) domain.FormattedAnswer {
	if len(answered.Hits) == 0 && answered.Answer == "" {
		return domain.FormattedAnswer{
			Answer:          NoResultsMessage,
			ConfidenceLabel: ConfidenceLabel(0),
			ConfidencePct:   ConfidencePct(0),
		}
	}

	confidence := answered.Confidence
	if math.IsNaN(confidence) || math.IsInf(confidence, 0) {
		// Shouldn't happen; degrade rather than render garbage.
		return domain.FormattedAnswer{
			Answer:          fmt.Sprintf("%v: confidence is not a number", domain.ErrFormatting),
			ConfidenceLabel: unknownLabel,
			ConfidencePct:   ConfidencePct(0),
		}
	}

	sources := make([]domain.SourceSummary, 0, len(answered.Hits))
	for _, hit := range answered.Hits {
		sources = append(sources, domain.SourceSummary{
			Text:       hit.Meta.Answer,
			Score:      hit.Score,
			Question:   hit.Meta.Question,
			AnswerType: hit.Meta.AnswerType,
			Date:       hit.Meta.Date,
		})
	}

	answer := answered.Answer
	if answer == "" {
		answer = NoResultsMessage
	}
	return domain.FormattedAnswer{
		Answer:          answer,
		Confidence:      confidence,
		ConfidenceLabel: ConfidenceLabel(confidence),
		ConfidencePct:   ConfidencePct(confidence),
		Sources:         sources,
	}
}

const unknownLabel = "⚪ Unknown confidence"

// ConfidenceLabel maps a confidence to its band: >= 0.8 high, >= 0.5
// medium, below that low. Each band carries its visual marker.
func ConfidenceLabel(confidence float64) string {
	switch {
	case confidence >= 0.8:
		return "🟢 High confidence"
	case confidence >= 0.5:
		return "🟡 Medium confidence"
	default:
		return "🔴 Low confidence"
	}
}

// ConfidencePct renders the confidence as a rounded integer percentage.
func ConfidencePct(confidence float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(confidence*100)))
}
