// Package memory is an in-process vector store used in tests and for
// offline runs. Brute-force cosine similarity over all records.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"rfpqa/internal/domain"
)

var _ domain.VectorStore = (*Store)(nil)

// Store keeps records in a map keyed by id; upserting an existing id
// overwrites, matching the persistent store's semantics.
type Store struct {
	mu        sync.RWMutex
	dimension int
	records   map[string]domain.Record
}

// New creates an empty Store. CreateCollection must be called before use.
func New() *Store {
	return &Store{}
}

// CreateCollection resets the store for vectors of the given dimension.
func (s *Store) CreateCollection(_ context.Context, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("%w: invalid dimension %d", domain.ErrStore, dimension)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.records = make(map[string]domain.Record)
	return nil
}

// Upsert stores the records, rejecting the whole batch on any dimension
// mismatch.
func (s *Store) Upsert(_ context.Context, records []domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.records == nil {
		return fmt.Errorf("%w: collection not created", domain.ErrStore)
	}
	for _, rec := range records {
		if len(rec.Vector) != s.dimension {
			return fmt.Errorf("%w: vector dimension %d, collection expects %d", domain.ErrStore, len(rec.Vector), s.dimension)
		}
	}
	for _, rec := range records {
		s.records[rec.ID] = rec
	}
	return nil
}

// Query ranks all records by cosine similarity and returns the top matches.
func (s *Store) Query(_ context.Context, vector []float64, limit int) ([]domain.SearchHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.records == nil {
		return nil, fmt.Errorf("%w: collection not created", domain.ErrStore)
	}
	hits := make([]domain.SearchHit, 0, len(s.records))
	for _, rec := range s.records {
		hits = append(hits, domain.SearchHit{
			ID:    rec.ID,
			Score: cosine(vector, rec.Vector),
			Meta:  rec.Meta,
		})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})
	if limit < len(hits) {
		hits = hits[:limit]
	}
	return hits, nil
}

// Count returns the number of stored records.
func (s *Store) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

func cosine(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
