package providers

import "context"

// Message is the provider-agnostic prompt message representation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Generator is the generation backend the soul's capabilities are built
// on. Implementations are black boxes to the core; they carry no retry
// policy of their own.
type Generator interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}
