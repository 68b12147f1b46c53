package service

import (
	"context"
	"hash/fnv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rfpqa/internal/chunker"
	"rfpqa/internal/domain"
	"rfpqa/internal/extractor"
	"rfpqa/internal/formatter"
	"rfpqa/internal/metrics"
	"rfpqa/internal/summarizer"
	"rfpqa/internal/vectorstore/memory"
)

// hashEmbedder is a deterministic bag-of-words embedder: similar texts get
// similar vectors, which is all the retrieval tests need.
type hashEmbedder struct {
	dim int
}

func (e hashEmbedder) Dimension() int { return e.dim }

func (e hashEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	vec := make([]float64, e.dim)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		tok = strings.Trim(tok, ".,!?:;\"'()")
		if tok == "" {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(tok))
		vec[int(h.Sum32())%e.dim]++
	}
	return vec, nil
}

func newTestStack(t *testing.T) (*Indexer, *Searcher, domain.VectorStore) {
	t.Helper()
	emb := hashEmbedder{dim: 64}
	store := memory.New()
	require.NoError(t, store.CreateCollection(context.Background(), emb.Dimension()))

	splitter, err := chunker.New(1000, 200)
	require.NoError(t, err)

	indexer := NewIndexer(extractor.New(), splitter, emb, store, summarizer.New(), 3, metrics.New())
	searcher := NewSearcher(emb, store, 5, nil)
	return indexer, searcher, store
}

func TestIndexThenSearchRoundTrip(t *testing.T) {
	indexer, searcher, _ := newTestStack(t)
	ctx := context.Background()

	text := "Question: What is the warranty? Answer: 2 years."
	meta := domain.Metadata{Question: "What is the warranty?", Answer: "2 years."}
	id, err := indexer.IndexOne(ctx, text, meta, "1")
	require.NoError(t, err)
	assert.Equal(t, "1", id)

	hits, err := searcher.Search(ctx, "warranty period", 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "1", hits[0].ID)
	assert.Equal(t, "2 years.", hits[0].Meta.Answer)
}

func TestIndexOneGeneratesIDWhenOmitted(t *testing.T) {
	indexer, _, store := newTestStack(t)
	ctx := context.Background()

	id, err := indexer.IndexOne(ctx, "some text", domain.Metadata{Answer: "some text"}, "")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	other, err := indexer.IndexOne(ctx, "other text", domain.Metadata{}, "")
	require.NoError(t, err)
	assert.NotEqual(t, id, other)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestIndexOneSameIDOverwrites(t *testing.T) {
	indexer, _, store := newTestStack(t)
	ctx := context.Background()

	_, err := indexer.IndexOne(ctx, "first", domain.Metadata{Answer: "first"}, "42")
	require.NoError(t, err)
	_, err = indexer.IndexOne(ctx, "second", domain.Metadata{Answer: "second"}, "42")
	require.NoError(t, err)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestIndexManyBatch(t *testing.T) {
	indexer, searcher, _ := newTestStack(t)
	ctx := context.Background()
	emb := hashEmbedder{dim: 64}

	records := make([]domain.Record, 3)
	for i, text := range []string{"alpha answer", "beta answer", "gamma answer"} {
		vec, err := emb.Embed(ctx, text)
		require.NoError(t, err)
		records[i] = domain.Record{
			ID:     strings.Repeat("0", i+1),
			Vector: vec,
			Meta:   domain.Metadata{Answer: text},
		}
	}
	require.NoError(t, indexer.IndexMany(ctx, records))

	hits, err := searcher.Search(ctx, "beta", 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, "beta answer", hits[0].Meta.Answer)
}

func TestSearchLimitBeyondRecords(t *testing.T) {
	indexer, searcher, _ := newTestStack(t)
	ctx := context.Background()

	_, err := indexer.IndexOne(ctx, "only record", domain.Metadata{Answer: "only record"}, "")
	require.NoError(t, err)

	hits, err := searcher.Search(ctx, "record", 10)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestSearchEmptyCollection(t *testing.T) {
	_, searcher, _ := newTestStack(t)

	hits, err := searcher.Search(context.Background(), "anything", 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestIndexDocumentIndexesEveryChunk(t *testing.T) {
	indexer, searcher, store := newTestStack(t)
	ctx := context.Background()

	dir := t.TempDir()
	path := filepath.Join(dir, "rfp.txt")
	content := strings.Repeat("The warranty lasts two years from delivery. ", 60)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	report, err := indexer.IndexDocument(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "rfp.txt", report.Source)
	assert.Equal(t, len(content), report.Characters)
	assert.Greater(t, report.Chunks, 1)
	assert.Len(t, report.IDs, report.Chunks)
	assert.NotEmpty(t, report.Summary)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, report.Chunks, count)

	hits, err := searcher.Search(ctx, "warranty", 2)
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "rfp.txt", hits[0].Meta.Source)
	assert.Contains(t, hits[0].Meta.Answer, "warranty")
	assert.Equal(t, report.Chunks, atoiOrZero(hits[0].Meta.Extra["total_chunks"]))
}

func TestIndexDocumentUnsupportedFormatPropagates(t *testing.T) {
	indexer, _, _ := newTestStack(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "notes.rtf")
	require.NoError(t, os.WriteFile(path, []byte("{rtf}"), 0o644))

	_, err := indexer.IndexDocument(context.Background(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
	assert.Contains(t, err.Error(), ".rtf")
}

func TestAskPipelineNeverFailsAfterRetrieval(t *testing.T) {
	indexer, searcher, _ := newTestStack(t)
	ctx := context.Background()

	_, err := indexer.IndexOne(ctx, "warranty is two years",
		domain.Metadata{Question: "warranty?", Answer: "two years"}, "1")
	require.NoError(t, err)

	failing := &fakeCompleter{err: assert.AnError}
	pipeline := NewPipeline(searcher, NewSynthesizer(failing, nil), formatter.New(), nil)

	// model failure degrades into the answer text
	got, err := pipeline.Ask(ctx, "warranty", 3, true)
	require.NoError(t, err)
	assert.Contains(t, got.Answer, "Error generating answer")
	assert.Equal(t, "0%", got.ConfidencePct)
	require.Len(t, got.Sources, 1)

	// empty query and oversized limit still produce a well-formed answer
	got, err = pipeline.Ask(ctx, "", 100, true)
	require.NoError(t, err)
	assert.NotEmpty(t, got.Answer)
	assert.NotEmpty(t, got.ConfidenceLabel)

	// retrieval-only path
	got, err = pipeline.Ask(ctx, "warranty", 1, false)
	require.NoError(t, err)
	assert.Equal(t, "two years", got.Answer)
}

func atoiOrZero(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
	}
	return n
}
