package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"asterbot/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.OpenAIConfig{
		APIKey:      "test-key",
		BaseURL:     srv.URL,
		Model:       "gpt-4o-mini",
		MaxTokens:   150,
		Temperature: 0.7,
	})
}

func TestClient_Complete(t *testing.T) {
	var got map[string]any
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"  Какой бюджет?  "},"finish_reason":"stop"}]}`))
	})

	reply, err := client.Complete(context.Background(), []Message{
		{Role: RoleSystem, Content: "sys"},
		{Role: RoleUser, Content: "Хочу седан"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Какой бюджет?", reply)

	assert.Equal(t, "gpt-4o-mini", got["model"])
	assert.EqualValues(t, 150, got["max_tokens"])
	msgs, ok := got["messages"].([]any)
	require.True(t, ok)
	assert.Len(t, msgs, 2)
}

func TestClient_Errors(t *testing.T) {
	t.Run("BackendError", func(t *testing.T) {
		client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":{"message":"quota","type":"insufficient_quota"}}`))
		})
		_, err := client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
		assert.Error(t, err)
	})

	t.Run("NoChoices", func(t *testing.T) {
		client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"id":"1","choices":[]}`))
		})
		_, err := client.Complete(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
		assert.ErrorIs(t, err, ErrEmptyCompletion)
	})
}
