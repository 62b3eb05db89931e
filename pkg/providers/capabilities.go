package providers

import (
	"context"

	"github.com/dotlovesyou/dot/pkg/identity"
	"github.com/dotlovesyou/dot/pkg/soul"
)

// BackendCapabilities implements the soul capability set on a
// generation backend, rendering the identity profile into the system
// prompt so traits and values color every response without the core
// ever branching on them.
type BackendCapabilities struct {
	id  identity.Identity
	gen Generator
}

var _ soul.Capabilities = (*BackendCapabilities)(nil)

func NewBackendCapabilities(id identity.Identity, gen Generator) *BackendCapabilities {
	return &BackendCapabilities{id: id, gen: gen}
}

func (c *BackendCapabilities) Speak(ctx context.Context, text string) (string, error) {
	return c.gen.Chat(ctx, []Message{
		{Role: "system", Content: c.id.Prompt() + "\n\nRespond to the user in character. This reply will be delivered to them."},
		{Role: "user", Content: text},
	})
}

func (c *BackendCapabilities) Think(ctx context.Context, text string) (string, error) {
	return c.gen.Chat(ctx, []Message{
		{Role: "system", Content: c.id.Prompt() + "\n\nThis is your internal monologue. Think privately; no one will read this but you. Two or three sentences."},
		{Role: "user", Content: text},
	})
}

// Observe never calls the backend; it tags the input as noticed.
func (c *BackendCapabilities) Observe(ctx context.Context, text string) (string, error) {
	return text, nil
}
