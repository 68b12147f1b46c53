package service

import (
	"context"

	"rfpqa/internal/domain"
	"rfpqa/internal/formatter"
)

// Pipeline is the question-answering front: search, synthesize, format.
type Pipeline struct {
	searcher  *Searcher
	synth     *Synthesizer
	formatter *formatter.Formatter
	metrics   domain.MetricsSink
}

// NewPipeline wires the full answer path. metrics may be nil.
func NewPipeline(searcher *Searcher, synth *Synthesizer, fm *formatter.Formatter, metrics domain.MetricsSink) *Pipeline {
	if fm == nil {
		fm = formatter.New()
	}
	if metrics == nil {
		metrics = domain.NopMetrics{}
	}
	return &Pipeline{searcher: searcher, synth: synth, formatter: fm, metrics: metrics}
}

// Ask answers one question. The only hard failure is retrieval; synthesis
// and formatting degrade into the returned answer instead of erroring, so a
// question that searched successfully always gets a well-formed response.
func (p *Pipeline) Ask(ctx context.Context, query string, limit int, useModel bool) (domain.FormattedAnswer, error) {
	hits, err := p.searcher.Search(ctx, query, limit)
	if err != nil {
		return domain.FormattedAnswer{}, err
	}
	var answered domain.AnsweredQuery
	if useModel {
		answered = p.synth.Synthesize(ctx, query, hits)
	} else {
		answered = p.synth.Extractive(query, hits)
	}
	p.metrics.Add("questions_answered", 1)
	return p.formatter.Format(answered), nil
}
