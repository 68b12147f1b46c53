package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rfpqa/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	t.Setenv("TEST_OPENAI_KEY", "sk-test")
	client, err := NewClient(Config{
		BaseURL:   srv.URL,
		APIKeyEnv: "TEST_OPENAI_KEY",
		Model:     "gpt-4o-2024-08-06",
	})
	require.NoError(t, err)
	return client
}

func TestCompleteSendsSystemAndUserMessages(t *testing.T) {
	var got chatRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"12 months."}}]}`))
	})

	answer, err := client.Complete(context.Background(), "system prompt", "user prompt")
	require.NoError(t, err)
	assert.Equal(t, "12 months.", answer)

	require.Len(t, got.Messages, 2)
	assert.Equal(t, chatMessage{Role: "system", Content: "system prompt"}, got.Messages[0])
	assert.Equal(t, chatMessage{Role: "user", Content: "user prompt"}, got.Messages[1])
	assert.Equal(t, "gpt-4o-2024-08-06", got.Model)
	assert.InDelta(t, 0.3, got.Temperature, 1e-9)
	assert.Equal(t, 2000, got.MaxTokens)
}

func TestCompleteHonoursExplicitZeroTemperature(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	t.Cleanup(srv.Close)

	t.Setenv("TEST_OPENAI_KEY", "sk-test")
	zero := 0.0
	client, err := NewClient(Config{
		BaseURL:     srv.URL,
		APIKeyEnv:   "TEST_OPENAI_KEY",
		Temperature: &zero,
	})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "s", "u")
	require.NoError(t, err)
	assert.Zero(t, got.Temperature)
}

func TestCompleteAPIErrorWrapsProviderError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"context length exceeded","type":"invalid_request_error"}}`))
	})

	_, err := client.Complete(context.Background(), "s", "u")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProvider)
	assert.Contains(t, err.Error(), "context length exceeded")
}

func TestCompleteEmptyChoicesFails(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	_, err := client.Complete(context.Background(), "s", "u")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrProvider)
}

func TestNewClientRequiresKey(t *testing.T) {
	t.Setenv("TEST_OPENAI_KEY", "")
	_, err := NewClient(Config{APIKeyEnv: "TEST_OPENAI_KEY"})
	assert.Error(t, err)
}
