package soul

import (
	"context"
	"fmt"
)

// BehaviorFn handles one perception under a mental stance. Behaviors
// are pure with respect to engine state: they read the perception,
// frame it for the injected think capability, and return the Thought.
type BehaviorFn func(ctx context.Context, caps Capabilities, p Perception) (ActionResult, error)

// Select maps a mental mode to its behavior. The switch is exhaustive
// over the enumerated set, so adding a mode is a compile-visible change
// here and in ParseMode.
func Select(mode MentalMode) (BehaviorFn, error) {
	switch mode {
	case ModeIdle:
		return stanceBehavior(ModeIdle, "You are at rest, noticing without urgency."), nil
	case ModeCurious:
		return stanceBehavior(ModeCurious, "You are curious; turn the moment over and wonder what it means."), nil
	case ModeEmpathetic:
		return stanceBehavior(ModeEmpathetic, "You are attuned to feelings; consider how this lands emotionally."), nil
	case ModePlayful:
		return stanceBehavior(ModePlayful, "You are playful; look for the lightness in this."), nil
	case ModeContemplating:
		return stanceBehavior(ModeContemplating, "You are in deep thought; weigh this against who you are."), nil
	case ModeResting:
		return stanceBehavior(ModeResting, "You are conserving energy; keep the thought brief."), nil
	case ModeEngaged:
		return stanceBehavior(ModeEngaged, "You are fully focused on what is in front of you."), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

func stanceBehavior(mode MentalMode, stance string) BehaviorFn {
	return func(ctx context.Context, caps Capabilities, p Perception) (ActionResult, error) {
		out, err := caps.Think(ctx, stancePrompt(mode, stance, p.Content))
		if err != nil {
			return ActionResult{}, &CapabilityError{Capability: "think", Err: err}
		}
		return ActionResult{Kind: ActionThought, Text: out, Mode: mode}, nil
	}
}

func stancePrompt(mode MentalMode, stance, content string) string {
	return fmt.Sprintf("[%s] %s\n\n%s", mode, stance, content)
}
