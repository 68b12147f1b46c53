// Package service orchestrates the retrieval-and-answer pipeline.
package service

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"

	"rfpqa/internal/chunker"
	"rfpqa/internal/domain"
	"rfpqa/internal/extractor"
	"rfpqa/internal/summarizer"
)

// Indexer populates the vector collection: extract, chunk, embed, upsert.
type Indexer struct {
	extractor  *extractor.Extractor
	splitter   *chunker.Splitter
	embedder   domain.Embedder
	store      domain.VectorStore
	summarizer *summarizer.Summarizer
	metrics    domain.MetricsSink

	summaryMaxSentences int
}

// NewIndexer wires the indexing pipeline. metrics may be nil.
func NewIndexer(ex *extractor.Extractor, sp *chunker.Splitter, emb domain.Embedder, store domain.VectorStore, sum *summarizer.Summarizer, summaryMaxSentences int, metrics domain.MetricsSink) *Indexer {
	if metrics == nil {
		metrics = domain.NopMetrics{}
	}
	return &Indexer{
		extractor:           ex,
		splitter:            sp,
		embedder:            emb,
		store:               store,
		summarizer:          sum,
		metrics:             metrics,
		summaryMaxSentences: summaryMaxSentences,
	}
}

// CreateCollection recreates the backing collection at the embedder's
// dimension. Destructive: existing records are dropped.
func (ix *Indexer) CreateCollection(ctx context.Context) error {
	return ix.store.CreateCollection(ctx, ix.embedder.Dimension())
}

// IndexOne embeds text and upserts it under the given id. When id is empty a
// UUID is generated; deriving ids from the record count is racy under
// concurrent indexing. Returns the id used.
func (ix *Indexer) IndexOne(ctx context.Context, text string, meta domain.Metadata, id string) (string, error) {
	vector, err := ix.embedder.Embed(ctx, text)
	if err != nil {
		return "", fmt.Errorf("%w: embed: %w", domain.ErrIndexing, err)
	}
	if id == "" {
		id = uuid.New().String()
	}
	rec := domain.Record{ID: id, Vector: vector, Meta: meta}
	if err := ix.store.Upsert(ctx, []domain.Record{rec}); err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrIndexing, err)
	}
	ix.metrics.Add("records_indexed", 1)
	return id, nil
}

// IndexMany upserts pre-embedded records in one round trip. Failure is
// reported once for the whole batch.
func (ix *Indexer) IndexMany(ctx context.Context, records []domain.Record) error {
	if err := ix.store.Upsert(ctx, records); err != nil {
		return fmt.Errorf("%w: batch of %d: %w", domain.ErrIndexing, len(records), err)
	}
	ix.metrics.Add("records_indexed", len(records))
	return nil
}

// IngestReport describes one indexed document.
type IngestReport struct {
	Source     string
	Characters int
	Chunks     int
	IDs        []string
	Summary    string
}

// IndexDocument extracts the file, splits it, and indexes every chunk with
// source metadata. Extraction errors propagate unchanged so callers can
// distinguish an unsupported format from a provider failure.
func (ix *Indexer) IndexDocument(ctx context.Context, path string) (*IngestReport, error) {
	text, err := ix.extractor.ExtractFile(path)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(path)
	chunks := ix.splitter.Split(text)

	records := make([]domain.Record, 0, len(chunks))
	ids := make([]string, 0, len(chunks))
	for _, ch := range chunks {
		vector, err := ix.embedder.Embed(ctx, ch.Text)
		if err != nil {
			return nil, fmt.Errorf("%w: embed chunk %d of %s: %w", domain.ErrIndexing, ch.Index, name, err)
		}
		id := uuid.New().String()
		records = append(records, domain.Record{
			ID:     id,
			Vector: vector,
			Meta: domain.Metadata{
				Question: fmt.Sprintf("What information is in %s?", name),
				Answer:   ch.Text,
				Source:   name,
				Extra: map[string]string{
					"chunk":           fmt.Sprint(ch.Index + 1),
					"total_chunks":    fmt.Sprint(len(chunks)),
					"content_preview": preview(ch.Text, 100),
				},
			},
		})
		ids = append(ids, id)
	}
	if err := ix.IndexMany(ctx, records); err != nil {
		return nil, err
	}

	report := &IngestReport{
		Source:     name,
		Characters: len(text),
		Chunks:     len(chunks),
		IDs:        ids,
	}
	if ix.summarizer != nil {
		if summary, err := ix.summarizer.Summarize(text, ix.summaryMaxSentences); err == nil {
			report.Summary = summary
		}
	}
	ix.metrics.Add("documents_indexed", 1)
	ix.metrics.Add("chunks_indexed", len(chunks))
	return report, nil
}

func preview(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}
