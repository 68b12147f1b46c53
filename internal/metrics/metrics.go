// Package metrics provides a process-local counter sink for the pipeline.
package metrics

import (
	"sort"
	"sync"

	"rfpqa/internal/domain"
)

var _ domain.MetricsSink = (*Counters)(nil)

// Counters accumulates named counts for the lifetime of the process. The
// pipeline calls Add; owners read Snapshot.
type Counters struct {
	mu     sync.Mutex
	counts map[string]int
}

// New creates an empty counter sink.
func New() *Counters {
	return &Counters{counts: make(map[string]int)}
}

// Add increments a named counter.
func (c *Counters) Add(name string, delta int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[name] += delta
}

// Snapshot returns the counters as sorted name/value pairs.
func (c *Counters) Snapshot() []Stat {
	c.mu.Lock()
	defer c.mu.Unlock()
	stats := make([]Stat, 0, len(c.counts))
	for name, count := range c.counts {
		stats = append(stats, Stat{Name: name, Count: count})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Name < stats[j].Name })
	return stats
}

// Stat is one named counter value.
type Stat struct {
	Name  string
	Count int
}
