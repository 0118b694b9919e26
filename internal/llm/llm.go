// Package llm provides chat-model clients for the query pipeline. Each
// provider is a thin adapter over its HTTP API; the factory in this
// package selects one from configuration.
package llm

import "context"

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single chat message.
type Message struct {
	Role    string
	Content string
}

// ChatOptions configures one chat call.
type ChatOptions struct {
	// Temperature controls randomness (0 = deterministic).
	Temperature float64

	// MaxTokens caps the completion length. Zero means provider default.
	MaxTokens int

	// JSONOnly requests that the model emit a single JSON object, using
	// the provider's constrained-output mechanism where available.
	JSONOnly bool
}

// ChatClient is a chat-model provider.
type ChatClient interface {
	// Chat sends the conversation and returns the model's reply text.
	Chat(ctx context.Context, messages []Message, opts ChatOptions) (string, error)

	// ModelName returns the model identifier in use.
	ModelName() string
}
