package soul

import (
	"context"
	"fmt"
	"sync"

	"github.com/dotlovesyou/dot/pkg/identity"
	"github.com/dotlovesyou/dot/pkg/logger"
	"github.com/dotlovesyou/dot/pkg/memory"
)

// Engine binds one identity to its memory store and capabilities. The
// identity is read-only for the lifetime of the engine; the only
// mutable piece is the current mental mode, which is persisted so the
// soul wakes up in the stance it went to sleep in.
type Engine struct {
	id    identity.Identity
	store memory.Store
	caps  Capabilities

	mu   sync.RWMutex
	mode MentalMode
}

// NewEngine wires an identity to its store and capabilities. The soul
// wakes up in the persisted mental process when one exists, otherwise
// in defaultMode ("" means idle).
func NewEngine(ctx context.Context, id identity.Identity, store memory.Store, caps Capabilities, defaultMode MentalMode) (*Engine, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if store == nil {
		return nil, fmt.Errorf("soul: memory store is required")
	}
	if caps == nil {
		return nil, fmt.Errorf("soul: capabilities are required")
	}

	if defaultMode == "" {
		defaultMode = ModeIdle
	}
	mode := defaultMode
	if persisted, err := store.GetMode(ctx, id.Name); err != nil {
		return nil, err
	} else if persisted != "" {
		parsed, err := ParseMode(persisted)
		if err != nil {
			logger.WarnCF("soul", "Persisted mode no longer recognized, using default", map[string]interface{}{
				"mode":    persisted,
				"default": string(defaultMode),
			})
		} else {
			mode = parsed
		}
	}

	logger.InfoCF("soul", "Soul engine ready", map[string]interface{}{
		"identity": id.Name,
		"mode":     string(mode),
	})

	return &Engine{id: id, store: store, caps: caps, mode: mode}, nil
}

func (e *Engine) Identity() identity.Identity { return e.id }

func (e *Engine) Mode() MentalMode {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.mode
}

// Transition moves the soul to a new mental process and persists it.
// This is the host-facing mode-selection surface; perception routing
// itself never switches modes.
func (e *Engine) Transition(ctx context.Context, raw string, reason string) (MentalMode, error) {
	mode, err := ParseMode(raw)
	if err != nil {
		return "", err
	}
	if err := e.store.SetMode(ctx, e.id.Name, string(mode)); err != nil {
		return "", err
	}

	e.mu.Lock()
	old := e.mode
	e.mode = mode
	e.mu.Unlock()

	logger.InfoCF("soul", "Mental process transition", map[string]interface{}{
		"from":   string(old),
		"to":     string(mode),
		"reason": reason,
	})
	return mode, nil
}

// Perceive processes one perception under the engine's current mode.
func (e *Engine) Perceive(ctx context.Context, p Perception) (ActionResult, error) {
	return e.ProcessPerception(ctx, e.Mode(), p)
}

// ProcessPerception processes one perception under an explicit mode.
func (e *Engine) ProcessPerception(ctx context.Context, mode MentalMode, p Perception) (ActionResult, error) {
	result, err := ProcessPerception(ctx, e.id, mode, p, e.caps, e.store)
	if err != nil && (!p.BestEffort || result.Kind == "") {
		logger.ErrorCF("soul", "Perception failed", map[string]interface{}{
			"type":  string(p.Type),
			"mode":  string(mode),
			"error": err.Error(),
		})
		return result, err
	}

	logger.DebugCF("soul", "Perception processed", map[string]interface{}{
		"type":       string(p.Type),
		"kind":       string(result.Kind),
		"mode":       string(result.Mode),
		"remembered": result.Remembered,
	})
	return result, err
}

// Remember appends content directly to long-term memory, outside the
// experience routing path. Used by the reflection scheduler to keep the
// thoughts it produces.
func (e *Engine) Remember(ctx context.Context, content string) error {
	return e.store.Append(ctx, memory.Record{Owner: e.id.Name, Content: content})
}

// Memories returns a lazy cursor over everything the soul remembers,
// oldest first.
func (e *Engine) Memories(ctx context.Context) (*memory.Cursor, error) {
	return e.store.List(ctx, e.id.Name)
}

// RecentMemories returns the newest n memories in chronological order.
func (e *Engine) RecentMemories(ctx context.Context, n int) ([]memory.Record, error) {
	return e.store.Tail(ctx, e.id.Name, n)
}
