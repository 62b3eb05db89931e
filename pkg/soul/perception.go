package soul

import "context"

// PerceptionType tags an inbound perception. Matching is exact; any
// value outside the known set routes to the observe fallback.
type PerceptionType string

const (
	PerceptionUserMessage    PerceptionType = "user_message"
	PerceptionSelfReflection PerceptionType = "self_reflection"
	PerceptionExperience     PerceptionType = "experience"
)

// Perception is one typed unit of input to the soul. It is created by
// the caller per inbound event and never mutated; only experience
// payloads are persisted.
type Perception struct {
	Type    PerceptionType
	Content string

	// BestEffort lets an experience perception degrade to an
	// unremembered acknowledgment when the memory append fails,
	// instead of aborting the perception.
	BestEffort bool
}

// ActionKind discriminates what kind of output a perception produced.
type ActionKind string

const (
	ActionSpoken   ActionKind = "spoken"
	ActionThought  ActionKind = "thought"
	ActionObserved ActionKind = "observed"
)

// ActionResult is the outcome of processing one perception.
type ActionResult struct {
	Kind ActionKind
	Text string
	Mode MentalMode

	// Remembered reports whether an experience perception was durably
	// appended to memory before the acknowledgment was produced.
	Remembered bool
}

// Visible reports whether the result may be forwarded to the external
// channel. Thoughts and observations stay internal.
func (r ActionResult) Visible() bool { return r.Kind == ActionSpoken }

// Capabilities are the injected external effects the soul invokes but
// does not implement. Each is a black box; retry and timeout policy
// belongs to the host.
type Capabilities interface {
	// Speak sends text to the generation backend configured to respond
	// in character, for user-facing delivery.
	Speak(ctx context.Context, text string) (string, error)

	// Think routes text through the backend internally. Its output is
	// never surfaced as a user-visible reply.
	Think(ctx context.Context, text string) (string, error)

	// Observe tags input without calling the backend.
	Observe(ctx context.Context, text string) (string, error)
}
