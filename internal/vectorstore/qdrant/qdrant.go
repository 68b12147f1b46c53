// Package qdrant is a minimal REST adapter to a Qdrant collection.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"rfpqa/internal/domain"
)

var _ domain.VectorStore = (*Store)(nil)

// Store talks to one Qdrant collection over its HTTP API.
type Store struct {
	url        string
	apiKey     string
	collection string
	client     *http.Client
}

// Config configures the Qdrant adapter. APIKey may be empty for a local
// unauthenticated instance.
type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

// New creates a Store for the configured collection.
func New(cfg Config) *Store {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Store{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

// CreateCollection drops the collection if it exists and recreates it for
// cosine similarity at the given dimension. Existing records are lost.
func (s *Store) CreateCollection(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return fmt.Errorf("%w: invalid dimension %d", domain.ErrStore, dimension)
	}
	// Delete is best-effort: a 404 just means the collection was new.
	_ = s.do(ctx, http.MethodDelete, s.collectionURL(""), nil, nil)

	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	if err := s.do(ctx, http.MethodPut, s.collectionURL(""), body, nil); err != nil {
		return fmt.Errorf("%w: create collection %s: %w", domain.ErrStore, s.collection, err)
	}
	return nil
}

// Upsert writes the records in a single round trip. The whole batch either
// lands or the call reports one error for the batch; Qdrant's own atomicity
// is relied upon, not re-implemented.
func (s *Store) Upsert(ctx context.Context, records []domain.Record) error {
	if len(records) == 0 {
		return nil
	}
	points := make([]map[string]any, len(records))
	for i, rec := range records {
		points[i] = map[string]any{
			"id":      encodeID(rec.ID),
			"vector":  rec.Vector,
			"payload": encodePayload(rec.Meta),
		}
	}
	body := map[string]any{"points": points}
	if err := s.do(ctx, http.MethodPut, s.collectionURL("/points?wait=true"), body, nil); err != nil {
		return fmt.Errorf("%w: upsert %d points into %s: %w", domain.ErrStore, len(records), s.collection, err)
	}
	return nil
}

// Query returns the top matches by similarity, in the store's rank order.
func (s *Store) Query(ctx context.Context, vector []float64, limit int) ([]domain.SearchHit, error) {
	req := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			ID      json.RawMessage `json:"id"`
			Score   float64         `json:"score"`
			Payload map[string]any  `json:"payload"`
		} `json:"result"`
	}
	if err := s.do(ctx, http.MethodPost, s.collectionURL("/points/search"), req, &resp); err != nil {
		return nil, fmt.Errorf("%w: search %s: %w", domain.ErrStore, s.collection, err)
	}
	hits := make([]domain.SearchHit, 0, len(resp.Result))
	for _, r := range resp.Result {
		hits = append(hits, domain.SearchHit{
			ID:    decodeID(r.ID),
			Score: r.Score,
			Meta:  decodePayload(r.Payload),
		})
	}
	return hits, nil
}

// Count returns the exact number of records in the collection.
func (s *Store) Count(ctx context.Context) (int, error) {
	var resp struct {
		Result struct {
			Count int `json:"count"`
		} `json:"result"`
	}
	body := map[string]any{"exact": true}
	if err := s.do(ctx, http.MethodPost, s.collectionURL("/points/count"), body, &resp); err != nil {
		return 0, fmt.Errorf("%w: count %s: %w", domain.ErrStore, s.collection, err)
	}
	return resp.Result.Count, nil
}

func (s *Store) collectionURL(suffix string) string {
	return fmt.Sprintf("%s/collections/%s%s", s.url, s.collection, suffix)
}

func (s *Store) do(ctx context.Context, method, url string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant %s %s: %s", method, url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// encodeID passes integer-looking ids through as numbers so caller-supplied
// numeric ids round-trip; anything else (UUIDs) goes as a string.
func encodeID(id string) any {
	if n, err := strconv.ParseUint(id, 10, 64); err == nil {
		return n
	}
	return id
}

func decodeID(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n uint64
	if err := json.Unmarshal(raw, &n); err == nil {
		return strconv.FormatUint(n, 10)
	}
	return string(raw)
}

func encodePayload(meta domain.Metadata) map[string]any {
	payload := map[string]any{
		"question":    meta.Question,
		"answer":      meta.Answer,
		"answer_type": meta.AnswerType,
		"date":        meta.Date,
		"source":      meta.Source,
	}
	for k, v := range meta.Extra {
		if _, known := payload[k]; !known {
			payload[k] = v
		}
	}
	return payload
}

func decodePayload(payload map[string]any) domain.Metadata {
	meta := domain.Metadata{}
	for k, v := range payload {
		text, ok := v.(string)
		if !ok {
			text = fmt.Sprint(v)
		}
		switch k {
		case "question":
			meta.Question = text
		case "answer":
			meta.Answer = text
		case "answer_type":
			meta.AnswerType = text
		case "date":
			meta.Date = text
		case "source":
			meta.Source = text
		default:
			if meta.Extra == nil {
				meta.Extra = make(map[string]string)
			}
			meta.Extra[k] = text
		}
	}
	return meta
}
