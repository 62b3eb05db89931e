package soul

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/dotlovesyou/dot/pkg/identity"
	"github.com/dotlovesyou/dot/pkg/memory"
)

// callLog records the order of capability and store invocations so tests
// can assert append-before-think.
type callLog struct {
	calls []string
}

func (l *callLog) add(name string) { l.calls = append(l.calls, name) }

type stubCaps struct {
	log      *callLog
	speakErr error
	thinkErr error

	lastThink string
}

func (s *stubCaps) Speak(ctx context.Context, text string) (string, error) {
	s.log.add("speak")
	if s.speakErr != nil {
		return "", s.speakErr
	}
	return "Dot: " + text, nil
}

func (s *stubCaps) Think(ctx context.Context, text string) (string, error) {
	s.log.add("think")
	s.lastThink = text
	if s.thinkErr != nil {
		return "", s.thinkErr
	}
	return "thought: " + text, nil
}

func (s *stubCaps) Observe(ctx context.Context, text string) (string, error) {
	s.log.add("observe")
	return text, nil
}

type stubStore struct {
	log       *callLog
	appendErr error
	appended  []memory.Record
}

func (s *stubStore) Close() error { return nil }

func (s *stubStore) Append(ctx context.Context, rec memory.Record) error {
	s.log.add("append")
	if s.appendErr != nil {
		return s.appendErr
	}
	s.appended = append(s.appended, rec)
	return nil
}

func (s *stubStore) List(ctx context.Context, owner string) (*memory.Cursor, error) {
	return nil, nil
}

func (s *stubStore) Tail(ctx context.Context, owner string, n int) ([]memory.Record, error) {
	return nil, nil
}

func (s *stubStore) Count(ctx context.Context, owner string) (int, error) {
	return len(s.appended), nil
}

func (s *stubStore) GetMode(ctx context.Context, owner string) (string, error) { return "", nil }
func (s *stubStore) SetMode(ctx context.Context, owner, mode string) error     { return nil }

func newStubs() (*stubCaps, *stubStore) {
	log := &callLog{}
	return &stubCaps{log: log}, &stubStore{log: log}
}

func TestProcessPerception_UserMessageSpeaks(t *testing.T) {
	caps, store := newStubs()
	id := identity.Dot()

	result, err := ProcessPerception(context.Background(), id, ModeEngaged,
		Perception{Type: PerceptionUserMessage, Content: "hello"}, caps, store)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if result.Kind != ActionSpoken || !result.Visible() {
		t.Fatalf("expected visible spoken action, got %+v", result)
	}
	if result.Text != "Dot: hello" {
		t.Fatalf("unexpected reply: %q", result.Text)
	}
	if result.Mode != ModeEngaged {
		t.Fatalf("expected mode preserved, got %q", result.Mode)
	}
	if len(store.appended) != 0 {
		t.Fatalf("user message must not touch memory, got %d appends", len(store.appended))
	}
	if strings.Join(caps.log.calls, ",") != "speak" {
		t.Fatalf("expected exactly one speak call, got %v", caps.log.calls)
	}
}

func TestProcessPerception_UnknownTypeObserves(t *testing.T) {
	caps, store := newStubs()
	id := identity.Dot()

	result, err := ProcessPerception(context.Background(), id, ModeIdle,
		Perception{Type: PerceptionType("telepathy"), Content: "odd signal"}, caps, store)
	if err != nil {
		t.Fatalf("unknown type must not fail routing: %v", err)
	}
	if result.Kind != ActionObserved {
		t.Fatalf("expected observed action, got %q", result.Kind)
	}
	if result.Visible() {
		t.Fatalf("observed actions are internal")
	}
	if strings.Join(caps.log.calls, ",") != "observe" {
		t.Fatalf("unknown type must only observe, got %v", caps.log.calls)
	}
}

func TestProcessPerception_SelfReflectionThinksInStance(t *testing.T) {
	caps, store := newStubs()
	id := identity.Dot()

	result, err := ProcessPerception(context.Background(), id, ModeCurious,
		Perception{Type: PerceptionSelfReflection, Content: "what have I learned"}, caps, store)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if result.Kind != ActionThought {
		t.Fatalf("expected thought, got %q", result.Kind)
	}
	if result.Mode != ModeCurious {
		t.Fatalf("expected curious mode, got %q", result.Mode)
	}
	if !strings.Contains(caps.lastThink, "[curious]") {
		t.Fatalf("stance prompt missing mode tag: %q", caps.lastThink)
	}
	if !strings.Contains(caps.lastThink, "what have I learned") {
		t.Fatalf("stance prompt missing perception content: %q", caps.lastThink)
	}
}

func TestProcessPerception_ExperienceAppendsBeforeThinking(t *testing.T) {
	caps, store := newStubs()
	id := identity.Dot()

	result, err := ProcessPerception(context.Background(), id, ModeIdle,
		Perception{Type: PerceptionExperience, Content: "met a squirrel"}, caps, store)
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if got := strings.Join(caps.log.calls, ","); got != "append,think" {
		t.Fatalf("expected append strictly before think, got %v", caps.log.calls)
	}
	if result.Kind != ActionThought || !result.Remembered {
		t.Fatalf("expected remembered thought, got %+v", result)
	}
	if len(store.appended) != 1 || store.appended[0].Content != "met a squirrel" {
		t.Fatalf("unexpected append: %#v", store.appended)
	}
	if store.appended[0].Owner != id.Name {
		t.Fatalf("record owner should be the identity, got %q", store.appended[0].Owner)
	}
	if !strings.Contains(caps.lastThink, "I'll remember this: met a squirrel") {
		t.Fatalf("unexpected acknowledgment prompt: %q", caps.lastThink)
	}
}

func TestProcessPerception_ExperienceAppendFailureProducesNoOutput(t *testing.T) {
	caps, store := newStubs()
	store.appendErr = &memory.StorageError{Op: "append", Err: errors.New("disk full")}
	id := identity.Dot()

	result, err := ProcessPerception(context.Background(), id, ModeIdle,
		Perception{Type: PerceptionExperience, Content: "lost"}, caps, store)
	var storageErr *memory.StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("expected StorageError, got %v", err)
	}
	if result.Kind != "" {
		t.Fatalf("failed append must produce no action, got %+v", result)
	}
	if got := strings.Join(caps.log.calls, ","); got != "append" {
		t.Fatalf("think must not run after a failed append, got %v", caps.log.calls)
	}
}

func TestProcessPerception_BestEffortReturnsThoughtAndError(t *testing.T) {
	caps, store := newStubs()
	store.appendErr = &memory.StorageError{Op: "append", Err: errors.New("disk full")}
	id := identity.Dot()

	result, err := ProcessPerception(context.Background(), id, ModeIdle,
		Perception{Type: PerceptionExperience, Content: "fleeting", BestEffort: true}, caps, store)
	var storageErr *memory.StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("best effort still surfaces the StorageError, got %v", err)
	}
	if result.Kind != ActionThought {
		t.Fatalf("best effort still acknowledges, got %+v", result)
	}
	if result.Remembered {
		t.Fatalf("Remembered must be false when the append failed")
	}
	if got := strings.Join(caps.log.calls, ","); got != "append,think" {
		t.Fatalf("expected append then think, got %v", caps.log.calls)
	}
}

func TestProcessPerception_IdenticalExperiencesAppendTwice(t *testing.T) {
	caps, store := newStubs()
	id := identity.Dot()
	p := Perception{Type: PerceptionExperience, Content: "met a new friend"}

	for i := 0; i < 2; i++ {
		if _, err := ProcessPerception(context.Background(), id, ModeIdle, p, caps, store); err != nil {
			t.Fatalf("process %d: %v", i, err)
		}
	}
	if len(store.appended) != 2 {
		t.Fatalf("expected 2 independent records, got %d", len(store.appended))
	}
}

func TestProcessPerception_UnknownModeFallsBackToIdle(t *testing.T) {
	caps, store := newStubs()
	id := identity.Dot()

	result, err := ProcessPerception(context.Background(), id, MentalMode("grumpy"),
		Perception{Type: PerceptionSelfReflection, Content: "hm"}, caps, store)
	if err != nil {
		t.Fatalf("unknown mode should degrade, not fail: %v", err)
	}
	if result.Mode != ModeIdle {
		t.Fatalf("expected idle fallback, got %q", result.Mode)
	}
	if !strings.Contains(caps.lastThink, "[idle]") {
		t.Fatalf("expected idle stance prompt, got %q", caps.lastThink)
	}
}

func TestProcessPerception_CapabilityFailuresAreTyped(t *testing.T) {
	tests := []struct {
		name       string
		ptype      PerceptionType
		capability string
		setup      func(*stubCaps)
	}{
		{"speak", PerceptionUserMessage, "speak", func(c *stubCaps) { c.speakErr = errors.New("offline") }},
		{"think", PerceptionSelfReflection, "think", func(c *stubCaps) { c.thinkErr = errors.New("offline") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			caps, store := newStubs()
			tt.setup(caps)

			_, err := ProcessPerception(context.Background(), identity.Dot(), ModeIdle,
				Perception{Type: tt.ptype, Content: "x"}, caps, store)
			var capErr *CapabilityError
			if !errors.As(err, &capErr) {
				t.Fatalf("expected CapabilityError, got %v", err)
			}
			if capErr.Capability != tt.capability {
				t.Fatalf("expected %q capability, got %q", tt.capability, capErr.Capability)
			}
			if capErr.Unwrap() == nil {
				t.Fatalf("capability error must wrap its cause")
			}
		})
	}
}

func TestProcessPerception_IsStateless(t *testing.T) {
	caps, store := newStubs()
	id := identity.Dot()

	// Same inputs yield the same action kind and mode regardless of what
	// came before.
	for i := 0; i < 3; i++ {
		result, err := ProcessPerception(context.Background(), id, ModePlayful,
			Perception{Type: PerceptionUserMessage, Content: fmt.Sprintf("msg %d", i)}, caps, store)
		if err != nil {
			t.Fatalf("process %d: %v", i, err)
		}
		if result.Kind != ActionSpoken || result.Mode != ModePlayful {
			t.Fatalf("call %d diverged: %+v", i, result)
		}
	}
}
