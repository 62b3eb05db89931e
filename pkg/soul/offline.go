package soul

import (
	"context"
	"fmt"

	"github.com/dotlovesyou/dot/pkg/identity"
)

// OfflineCapabilities is the no-backend capability set: deterministic,
// in-character gestures keyed off the current mode. Hosts select it
// when no provider is configured, preserving the persona even without
// a generation backend.
type OfflineCapabilities struct {
	name   string
	modeFn func() MentalMode
}

var _ Capabilities = (*OfflineCapabilities)(nil)

// NewOfflineCapabilities builds the offline set for an identity. modeFn
// supplies the stance to render gestures in; nil pins it to idle.
func NewOfflineCapabilities(id identity.Identity, modeFn func() MentalMode) *OfflineCapabilities {
	if modeFn == nil {
		modeFn = func() MentalMode { return ModeIdle }
	}
	return &OfflineCapabilities{name: id.Name, modeFn: modeFn}
}

func (o *OfflineCapabilities) Speak(ctx context.Context, text string) (string, error) {
	return fmt.Sprintf("*%s considers this thoughtfully*", o.name), nil
}

func (o *OfflineCapabilities) Think(ctx context.Context, text string) (string, error) {
	return Gesture(o.modeFn(), o.name), nil
}

func (o *OfflineCapabilities) Observe(ctx context.Context, text string) (string, error) {
	return text, nil
}
