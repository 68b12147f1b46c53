package domain

import "context"

// Embedder converts free text into a fixed-length vector representation.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	Dimension() int
}

// Completer generates text from a system and user prompt pair.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// VectorStore persists records and supports nearest-neighbour search.
// CreateCollection is destructive: it drops any existing contents.
type VectorStore interface {
	CreateCollection(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, records []Record) error
	Query(ctx context.Context, vector []float64, limit int) ([]SearchHit, error)
	Count(ctx context.Context) (int, error)
}

// MetricsSink receives usage counters from the pipeline. The pipeline never
// owns counter storage; callers inject whatever sink they want.
type MetricsSink interface {
	Add(name string, delta int)
}

// NopMetrics discards all counters.
type NopMetrics struct{}

func (NopMetrics) Add(string, int) {}
