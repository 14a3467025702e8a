package ai

import (
	"context"
	"time"
)

// ChatRequest is one prompt sent to the language model
type ChatRequest struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// ChatClient talks to an LLM chat-completions API.
// Implementations live in infrastructure/ai.
type ChatClient interface {
	// Complete returns the model's reply to the prompt
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

// TranslationCache stores model translations so repeated texts never
// hit the API twice. Implementations live in infrastructure/cache.
type TranslationCache interface {
	// Get returns the cached value and whether the key was present
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores a value with a time to live
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}
