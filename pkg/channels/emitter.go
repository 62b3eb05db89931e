package channels

import (
	"github.com/dotlovesyou/dot/pkg/bus"
	"github.com/dotlovesyou/dot/pkg/logger"
	"github.com/dotlovesyou/dot/pkg/soul"
)

// Emitter routes an action result to its destination: spoken output is
// forwarded to the channel it came from, internal thoughts and
// observations are only logged. The core never leaks think/observe
// output to the external channel.
type Emitter struct {
	bus *bus.MessageBus
}

func NewEmitter(msgBus *bus.MessageBus) *Emitter {
	return &Emitter{bus: msgBus}
}

func (e *Emitter) Emit(result soul.ActionResult, channel, chatID string) {
	if result.Visible() {
		e.bus.PublishOutbound(bus.OutboundMessage{
			Channel: channel,
			ChatID:  chatID,
			Content: result.Text,
		})
		return
	}

	logger.InfoCF("soul", "Internal action", map[string]interface{}{
		"kind": string(result.Kind),
		"mode": string(result.Mode),
		"text": result.Text,
	})
}
