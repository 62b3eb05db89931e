package soul

import (
	"fmt"
	"strings"
)

// MentalMode is a named behavioral stance. The engine only dispatches
// behavior for the mode it is told; deciding when to switch modes is
// the host's job (see Engine.Transition).
type MentalMode string

const (
	ModeIdle          MentalMode = "idle"
	ModeCurious       MentalMode = "curious"
	ModeEmpathetic    MentalMode = "empathetic"
	ModePlayful       MentalMode = "playful"
	ModeContemplating MentalMode = "contemplating"
	ModeResting       MentalMode = "resting"
	ModeEngaged       MentalMode = "engaged"
)

// Modes lists the closed enumerated set.
func Modes() []MentalMode {
	return []MentalMode{
		ModeIdle,
		ModeCurious,
		ModeEmpathetic,
		ModePlayful,
		ModeContemplating,
		ModeResting,
		ModeEngaged,
	}
}

// ParseMode normalizes a mode label, returning ErrUnknownMode for any
// label outside the enumerated set. There is no partial matching.
func ParseMode(raw string) (MentalMode, error) {
	mode := MentalMode(strings.ToLower(strings.TrimSpace(raw)))
	switch mode {
	case ModeIdle, ModeCurious, ModeEmpathetic, ModePlayful,
		ModeContemplating, ModeResting, ModeEngaged:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, raw)
	}
}

// Gesture renders the deterministic persona gesture for a mode, used
// by offline capabilities and as stance color in think prompts.
func Gesture(mode MentalMode, name string) string {
	switch mode {
	case ModeContemplating:
		return fmt.Sprintf("*%s reflects thoughtfully, antennae gently moving*", name)
	case ModeCurious:
		return fmt.Sprintf("*%s's eyes light up with curiosity*", name)
	case ModePlayful:
		return fmt.Sprintf("*%s does a little happy dance on their leaf*", name)
	case ModeEmpathetic:
		return fmt.Sprintf("*%s moves closer, radiating warmth*", name)
	case ModeResting:
		return fmt.Sprintf("*%s settles down peacefully, conserving energy*", name)
	case ModeEngaged:
		return fmt.Sprintf("*%s focuses attentively*", name)
	case ModeIdle:
		return fmt.Sprintf("*%s waits patiently, observing the world*", name)
	default:
		return fmt.Sprintf("*%s is present*", name)
	}
}

// SuggestMode proposes a mode for a perception. It is an advisory
// helper for hosts that want content-driven transitions; the router
// never calls it.
func SuggestMode(p Perception) MentalMode {
	content := strings.ToLower(p.Content)

	if p.Type == PerceptionSelfReflection {
		return ModeContemplating
	}
	if strings.Contains(p.Content, "?") || containsAny(content, "what", "how", "why") {
		return ModeCurious
	}
	if containsAny(content, "fun", "play", "game") {
		return ModePlayful
	}
	if containsAny(content, "help", "support", "feel") {
		return ModeEmpathetic
	}
	return ModeEngaged
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
