package soul

import (
	"errors"
	"fmt"
)

// ErrUnknownMode indicates a mental mode outside the enumerated set.
// Callers fall back to idle behavior rather than failing the perception.
var ErrUnknownMode = errors.New("soul: unknown mental mode")

// CapabilityError wraps a generation-backend failure so the host can
// tell which capability failed and present a degraded reply. It is
// always surfaced, never swallowed into an empty response.
type CapabilityError struct {
	Capability string
	Err        error
}

func (e *CapabilityError) Error() string {
	return fmt.Sprintf("capability %s: %v", e.Capability, e.Err)
}

func (e *CapabilityError) Unwrap() error { return e.Err }
