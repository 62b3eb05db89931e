package soul

import (
	"context"
	"errors"
	"fmt"

	"github.com/dotlovesyou/dot/pkg/identity"
	"github.com/dotlovesyou/dot/pkg/logger"
	"github.com/dotlovesyou/dot/pkg/memory"
)

// ProcessPerception is the sole entry point of the core: it routes one
// perception through the mental stance and returns the resulting
// action. The router holds no state across calls; it is a pure function
// of (perception, mode, capabilities) plus the memory store.
//
// For experience perceptions with BestEffort set, a failed append still
// produces the acknowledgment Thought: the result is returned together
// with the StorageError and Remembered stays false.
func ProcessPerception(ctx context.Context, id identity.Identity, mode MentalMode, p Perception, caps Capabilities, store memory.Store) (ActionResult, error) {
	behavior, err := Select(mode)
	if err != nil {
		if !errors.Is(err, ErrUnknownMode) {
			return ActionResult{}, err
		}
		logger.WarnCF("soul", "Unknown mental mode, falling back to idle", map[string]interface{}{
			"mode": string(mode),
		})
		mode = ModeIdle
		behavior, _ = Select(ModeIdle)
	}

	switch p.Type {
	case PerceptionUserMessage:
		out, err := caps.Speak(ctx, p.Content)
		if err != nil {
			return ActionResult{}, &CapabilityError{Capability: "speak", Err: err}
		}
		return ActionResult{Kind: ActionSpoken, Text: out, Mode: mode}, nil

	case PerceptionSelfReflection:
		return behavior(ctx, caps, p)

	case PerceptionExperience:
		return rememberThenThink(ctx, id, mode, p, caps, store)

	default:
		// Total routing: unrecognized types resolve here instead of failing.
		out, err := caps.Observe(ctx, p.Content)
		if err != nil {
			return ActionResult{}, &CapabilityError{Capability: "observe", Err: err}
		}
		return ActionResult{Kind: ActionObserved, Text: out, Mode: mode}, nil
	}
}

// rememberThenThink appends the experience before producing any output.
// The append is awaited; there is no fire-and-forget path.
func rememberThenThink(ctx context.Context, id identity.Identity, mode MentalMode, p Perception, caps Capabilities, store memory.Store) (ActionResult, error) {
	appendErr := store.Append(ctx, memory.Record{
		Owner:   id.Name,
		Content: p.Content,
	})
	if appendErr != nil && !p.BestEffort {
		return ActionResult{}, appendErr
	}

	out, err := caps.Think(ctx, acknowledgmentPrompt(p.Content))
	if err != nil {
		return ActionResult{}, &CapabilityError{Capability: "think", Err: err}
	}

	result := ActionResult{
		Kind:       ActionThought,
		Text:       out,
		Mode:       mode,
		Remembered: appendErr == nil,
	}
	return result, appendErr
}

func acknowledgmentPrompt(content string) string {
	return fmt.Sprintf("I'll remember this: %s", content)
}
