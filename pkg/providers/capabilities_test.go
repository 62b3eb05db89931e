package providers

import (
	"context"
	"strings"
	"testing"

	"github.com/dotlovesyou/dot/pkg/identity"
)

type fakeGenerator struct {
	lastMessages []Message
	reply        string
}

func (f *fakeGenerator) Chat(ctx context.Context, messages []Message) (string, error) {
	f.lastMessages = messages
	return f.reply, nil
}

func TestBackendCapabilities_SpeakCarriesIdentity(t *testing.T) {
	gen := &fakeGenerator{reply: "Oh! Hello there!"}
	caps := NewBackendCapabilities(identity.Dot(), gen)

	out, err := caps.Speak(context.Background(), "hi Dot")
	if err != nil {
		t.Fatalf("speak: %v", err)
	}
	if out != "Oh! Hello there!" {
		t.Fatalf("unexpected reply: %q", out)
	}
	if len(gen.lastMessages) != 2 {
		t.Fatalf("expected system+user messages, got %d", len(gen.lastMessages))
	}
	system := gen.lastMessages[0]
	if system.Role != "system" || !strings.Contains(system.Content, "You are Dot.") {
		t.Fatalf("system prompt does not carry the identity: %q", system.Content)
	}
	if !strings.Contains(system.Content, "in character") {
		t.Fatalf("speak prompt missing delivery framing: %q", system.Content)
	}
	if gen.lastMessages[1].Content != "hi Dot" {
		t.Fatalf("user content not forwarded: %q", gen.lastMessages[1].Content)
	}
}

func TestBackendCapabilities_ThinkIsPrivateFraming(t *testing.T) {
	gen := &fakeGenerator{reply: "a quiet thought"}
	caps := NewBackendCapabilities(identity.Dot(), gen)

	if _, err := caps.Think(context.Background(), "what just happened?"); err != nil {
		t.Fatalf("think: %v", err)
	}
	system := gen.lastMessages[0].Content
	if !strings.Contains(system, "internal monologue") {
		t.Fatalf("think prompt missing private framing: %q", system)
	}
}

func TestBackendCapabilities_ObserveNeverCallsBackend(t *testing.T) {
	gen := &fakeGenerator{reply: "should never appear"}
	caps := NewBackendCapabilities(identity.Dot(), gen)

	out, err := caps.Observe(context.Background(), "a door closed")
	if err != nil {
		t.Fatalf("observe: %v", err)
	}
	if out != "a door closed" {
		t.Fatalf("observe should pass text through, got %q", out)
	}
	if gen.lastMessages != nil {
		t.Fatal("observe must not call the generator")
	}
}
