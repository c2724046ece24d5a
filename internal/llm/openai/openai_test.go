package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LuckyCoder5/Robby-chatbot/internal/domain"
)

const keyEnv = "ROBBY_TEST_CHAT_KEY"

func newTestClient(t *testing.T, url string) *Client {
	t.Helper()
	t.Setenv(keyEnv, "test-key")
	c, err := NewClient(Config{
		BaseURL:     url,
		APIKeyEnv:   keyEnv,
		Model:       "gpt-4o-mini",
		Temperature: 0.618,
	})
	require.NoError(t, err)
	return c
}

func TestNewClientMissingKey(t *testing.T) {
	t.Setenv(keyEnv, "")
	_, err := NewClient(Config{APIKeyEnv: keyEnv})
	assert.ErrorIs(t, err, domain.ErrAuthenticationMissing)
}

func TestNewClientRejectsTemperature(t *testing.T) {
	t.Setenv(keyEnv, "test-key")
	for _, temp := range []float64{-0.1, 1.5, 2} {
		_, err := NewClient(Config{APIKeyEnv: keyEnv, Temperature: temp})
		assert.Error(t, err, "temperature %v must be rejected", temp)
	}
}

func TestComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		assert.InDelta(t, 0.618, req.Temperature, 1e-9)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "user", req.Messages[1].Role)
		assert.Equal(t, "What is the refund window?", req.Messages[1].Content)
		assert.False(t, req.Stream)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "Thirty days."}},
			},
		})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	answer, err := c.Complete(context.Background(), "What is the refund window?")
	require.NoError(t, err)
	assert.Equal(t, "Thirty days.", answer)
}

func TestCompleteHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Complete(context.Background(), "prompt")
	require.ErrorIs(t, err, domain.ErrGenerationFailed)
	assert.Contains(t, err.Error(), "429")
}

func TestCompleteAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "context length exceeded"},
		})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Complete(context.Background(), "prompt")
	require.ErrorIs(t, err, domain.ErrGenerationFailed)
	assert.Contains(t, err.Error(), "context length exceeded")
}

func TestCompleteNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Complete(context.Background(), "prompt")
	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
}

func TestCompleteServerDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := newTestClient(t, srv.URL)
	_, err := c.Complete(context.Background(), "prompt")
	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
}
