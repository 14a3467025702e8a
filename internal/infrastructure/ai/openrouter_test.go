package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	aiapp "github.com/agriconnect/backend/internal/application/ai"
	"github.com/agriconnect/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(serverURL string) *OpenRouterClient {
	return NewOpenRouterClient(config.AIConfig{
		BaseURL: serverURL,
		APIKey:  "test-key",
		Model:   "meta-llama/llama-3.1-8b-instruct",
		Timeout: 5 * time.Second,
	})
}

func TestOpenRouterClient_Complete(t *testing.T) {
	t.Run("sends system and user messages", func(t *testing.T) {
		var received chatCompletionRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/chat/completions", r.URL.Path)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

			_, _ = w.Write([]byte(`{"choices": [{"message": {"role": "assistant", "content": "Akwaaba!"}}]}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL)

		reply, err := client.Complete(context.Background(), aiapp.ChatRequest{
			System:      "Translate into Twi.",
			Prompt:      "Welcome!",
			MaxTokens:   100,
			Temperature: 0.2,
		})

		require.NoError(t, err)
		assert.Equal(t, "Akwaaba!", reply)
		require.Len(t, received.Messages, 2)
		assert.Equal(t, "system", received.Messages[0].Role)
		assert.Equal(t, "Translate into Twi.", received.Messages[0].Content)
		assert.Equal(t, "user", received.Messages[1].Role)
		assert.Equal(t, "meta-llama/llama-3.1-8b-instruct", received.Model)
		assert.Equal(t, 100, received.MaxTokens)
	})

	t.Run("omits system message when empty", func(t *testing.T) {
		var received chatCompletionRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
			_, _ = w.Write([]byte(`{"choices": [{"message": {"content": "ok"}}]}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL)

		_, err := client.Complete(context.Background(), aiapp.ChatRequest{Prompt: "hello"})

		require.NoError(t, err)
		require.Len(t, received.Messages, 1)
		assert.Equal(t, "user", received.Messages[0].Role)
	})

	t.Run("returns error on API error payload", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"error": {"message": "rate limited", "code": 429}}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL)

		_, err := client.Complete(context.Background(), aiapp.ChatRequest{Prompt: "hello"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "rate limited")
	})

	t.Run("returns error on HTTP failure", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		client := newTestClient(server.URL)

		_, err := client.Complete(context.Background(), aiapp.ChatRequest{Prompt: "hello"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "503")
	})

	t.Run("returns error when no choices come back", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"choices": []}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL)

		_, err := client.Complete(context.Background(), aiapp.ChatRequest{Prompt: "hello"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "no choices")
	})
}
