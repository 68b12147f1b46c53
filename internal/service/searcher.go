package service

import (
	"context"
	"fmt"

	"rfpqa/internal/domain"
)

// Searcher embeds a query and runs a nearest-neighbour search.
type Searcher struct {
	embedder     domain.Embedder
	store        domain.VectorStore
	defaultLimit int
	metrics      domain.MetricsSink
}

// NewSearcher wires the retrieval path. metrics may be nil.
func NewSearcher(emb domain.Embedder, store domain.VectorStore, defaultLimit int, metrics domain.MetricsSink) *Searcher {
	if defaultLimit <= 0 {
		defaultLimit = 5
	}
	if metrics == nil {
		metrics = domain.NopMetrics{}
	}
	return &Searcher{embedder: emb, store: store, defaultLimit: defaultLimit, metrics: metrics}
}

// Search returns up to limit hits ranked by descending similarity. An empty
// result set is valid, not an error. limit <= 0 falls back to the default.
func (s *Searcher) Search(ctx context.Context, query string, limit int) ([]domain.SearchHit, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embed query: %w", domain.ErrSearch, err)
	}
	hits, err := s.store.Query(ctx, vector, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSearch, err)
	}
	s.metrics.Add("searches", 1)
	return hits, nil
}
