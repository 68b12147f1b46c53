package service

import (
	"context"
	"fmt"
	"strings"

	"rfpqa/internal/domain"
	"rfpqa/internal/prompts"
)

// NoInformationMessage is returned when retrieval found nothing to answer
// from.
const NoInformationMessage = "No relevant information found."

// Synthesizer turns ranked hits into a grounded answer with a confidence
// score. It degrades instead of failing: a model error becomes an
// error-describing answer at confidence zero, because a question that
// retrieved successfully must always get a response.
type Synthesizer struct {
	completer domain.Completer
	prompts   *prompts.Store
}

// NewSynthesizer wires the answer path. completer may be nil, in which case
// Synthesize falls back to the extractive answer.
func NewSynthesizer(completer domain.Completer, store *prompts.Store) *Synthesizer {
	if store == nil {
		store = prompts.NewStore("")
	}
	return &Synthesizer{completer: completer, prompts: store}
}

// Synthesize builds the grounding prompt from the hits and asks the model.
// No hits means no model call: the fixed fallback at confidence zero.
func (s *Synthesizer) Synthesize(ctx context.Context, query string, hits []domain.SearchHit) domain.AnsweredQuery {
	if len(hits) == 0 {
		return domain.AnsweredQuery{Query: query, Answer: NoInformationMessage}
	}
	if s.completer == nil {
		return s.Extractive(query, hits)
	}

	tmpl, err := s.prompts.Answer()
	if err != nil {
		return degraded(query, hits, err)
	}
	userPrompt := fmt.Sprintf(tmpl, query, groundingContext(hits))
	answer, err := s.completer.Complete(ctx, prompts.AnswerSystem, userPrompt)
	if err != nil {
		return degraded(query, hits, err)
	}
	return domain.AnsweredQuery{
		Query:      query,
		Hits:       hits,
		Answer:     answer,
		Confidence: Confidence(hits),
	}
}

// Extractive answers from the top hit's stored answer without a model call.
func (s *Synthesizer) Extractive(query string, hits []domain.SearchHit) domain.AnsweredQuery {
	if len(hits) == 0 {
		return domain.AnsweredQuery{Query: query, Answer: NoInformationMessage}
	}
	answer := hits[0].Meta.Answer
	if answer == "" {
		answer = NoInformationMessage
	}
	return domain.AnsweredQuery{
		Query:      query,
		Hits:       hits,
		Answer:     answer,
		Confidence: Confidence(hits),
	}
}

// Confidence blends the best-match relevance with corroborating-source
// count: 0.7*topScore + 0.3*min(hits/3, 1), clamped to [0, 1]. The clamp is
// defensive; a cosine similarity should never exceed 1.
func Confidence(hits []domain.SearchHit) float64 {
	if len(hits) == 0 {
		return 0
	}
	diversity := float64(len(hits)) / 3
	if diversity > 1 {
		diversity = 1
	}
	c := 0.7*hits[0].Score + 0.3*diversity
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// groundingContext renders one block per hit, ranked order, carrying the
// question/answer fields and the similarity score.
func groundingContext(hits []domain.SearchHit) string {
	var sb strings.Builder
	for i, hit := range hits {
		fmt.Fprintf(&sb, "Source %d:\n", i+1)
		if hit.Meta.Question != "" {
			fmt.Fprintf(&sb, "Question: %s\n", hit.Meta.Question)
		}
		if hit.Meta.Answer != "" {
			fmt.Fprintf(&sb, "Answer: %s\n", hit.Meta.Answer)
		}
		fmt.Fprintf(&sb, "Relevance Score: %.2f\n\n", hit.Score)
	}
	return sb.String()
}

func degraded(query string, hits []domain.SearchHit, err error) domain.AnsweredQuery {
	return domain.AnsweredQuery{
		Query:  query,
		Hits:   hits,
		Answer: fmt.Sprintf("Error generating answer: %v", err),
	}
}
