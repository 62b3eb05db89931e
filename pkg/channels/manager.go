package channels

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dotlovesyou/dot/pkg/bus"
	"github.com/dotlovesyou/dot/pkg/config"
	"github.com/dotlovesyou/dot/pkg/logger"
)

// Manager owns the transport channels and the outbound dispatch loop.
type Manager struct {
	channels map[string]Channel
	bus      *bus.MessageBus
	config   *config.Config
	dispatch *asyncTask
	mu       sync.RWMutex
}

type asyncTask struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func NewManager(cfg *config.Config, messageBus *bus.MessageBus) (*Manager, error) {
	m := &Manager{
		channels: make(map[string]Channel),
		bus:      messageBus,
		config:   cfg,
	}
	if err := m.initChannels(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manager) initChannels() error {
	logger.InfoC("channels", "Initializing channel manager")

	if strings.TrimSpace(m.config.Channels.Discord.Token) == "" {
		return fmt.Errorf("channels.discord.token is required")
	}

	discord, err := NewDiscordChannel(m.config.Channels.Discord, m.bus)
	if err != nil {
		return fmt.Errorf("initialize Discord channel: %w", err)
	}
	m.channels["discord"] = discord

	logger.InfoCF("channels", "Channel initialization completed", map[string]interface{}{
		"enabled_channels": len(m.channels),
	})
	return nil
}

func (m *Manager) StartAll(ctx context.Context) error {
	m.mu.RLock()
	channelsCopy := make(map[string]Channel, len(m.channels))
	for name, channel := range m.channels {
		channelsCopy[name] = channel
	}
	m.mu.RUnlock()

	if len(channelsCopy) == 0 {
		logger.WarnC("channels", "No channels enabled")
		return nil
	}

	var startErrors []string
	for name, channel := range channelsCopy {
		logger.InfoCF("channels", "Starting channel", map[string]interface{}{"channel": name})
		if err := channel.Start(ctx); err != nil {
			logger.ErrorCF("channels", "Failed to start channel", map[string]interface{}{
				"channel": name,
				"error":   err.Error(),
			})
			startErrors = append(startErrors, fmt.Sprintf("%s: %v", name, err))
		}
	}
	if len(startErrors) == len(channelsCopy) {
		return fmt.Errorf("all channels failed to start: %s", strings.Join(startErrors, "; "))
	}

	m.startDispatch()
	return nil
}

// startDispatch runs the outbound loop: every spoken utterance the
// engine publishes is delivered to its channel.
func (m *Manager) startDispatch() {
	dispatchCtx, cancel := context.WithCancel(context.Background())
	task := &asyncTask{cancel: cancel, done: make(chan struct{})}

	m.mu.Lock()
	m.dispatch = task
	m.mu.Unlock()

	go func() {
		defer close(task.done)
		for {
			msg, ok := m.bus.ConsumeOutbound(dispatchCtx)
			if !ok {
				return
			}

			m.mu.RLock()
			channel, found := m.channels[msg.Channel]
			m.mu.RUnlock()
			if !found {
				logger.WarnCF("channels", "Outbound message for unknown channel", map[string]interface{}{
					"channel": msg.Channel,
				})
				continue
			}

			if err := channel.Send(dispatchCtx, msg); err != nil {
				logger.ErrorCF("channels", "Failed to deliver message", map[string]interface{}{
					"channel": msg.Channel,
					"chat_id": msg.ChatID,
					"error":   err.Error(),
				})
			}
		}
	}()
}

func (m *Manager) StopAll(ctx context.Context) error {
	m.mu.Lock()
	task := m.dispatch
	m.dispatch = nil
	channelsCopy := make(map[string]Channel, len(m.channels))
	for name, channel := range m.channels {
		channelsCopy[name] = channel
	}
	m.mu.Unlock()

	if task != nil {
		task.cancel()
		<-task.done
	}

	var errs []string
	for name, channel := range channelsCopy {
		if !channel.IsRunning() {
			continue
		}
		if err := channel.Stop(ctx); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", name, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("stop channels: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (m *Manager) Get(name string) (Channel, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	channel, ok := m.channels[name]
	return channel, ok
}
