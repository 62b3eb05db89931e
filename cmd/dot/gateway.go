package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dotlovesyou/dot/pkg/bus"
	"github.com/dotlovesyou/dot/pkg/channels"
	"github.com/dotlovesyou/dot/pkg/logger"
	"github.com/dotlovesyou/dot/pkg/reflection"
	"github.com/dotlovesyou/dot/pkg/soul"
)

func runGateway() error {
	rt, err := openApp()
	if err != nil {
		return err
	}
	defer rt.Close()

	if strings.TrimSpace(rt.Config.Channels.Discord.Token) == "" {
		return fmt.Errorf("channels.discord.token is required in %s or DOT_CHANNELS_DISCORD_TOKEN", getConfigPath())
	}

	msgBus := bus.NewMessageBus()
	manager, err := channels.NewManager(rt.Config, msgBus)
	if err != nil {
		return err
	}
	emitter := channels.NewEmitter(msgBus)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := manager.StartAll(ctx); err != nil {
		return err
	}
	defer func() {
		if err := manager.StopAll(context.Background()); err != nil {
			logger.ErrorCF("gateway", "Channel shutdown failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	if rt.Config.Reflection.Enabled {
		scheduler, err := reflection.NewScheduler(rt.Engine, rt.Config.Reflection.Schedule, rt.Config.Memory.TailLimit)
		if err != nil {
			return err
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	logger.InfoCF("gateway", "Gateway running", map[string]interface{}{
		"identity": rt.Engine.Identity().Name,
		"mode":     string(rt.Engine.Mode()),
	})

	for {
		msg, ok := msgBus.ConsumeInbound(ctx)
		if !ok {
			logger.InfoC("gateway", "Shutting down")
			return nil
		}
		handleInbound(ctx, rt, emitter, msg)
	}
}

// handleInbound turns one channel message into a user_message
// perception. Mode selection is host policy: the gateway lets message
// content drive transitions before dispatching.
func handleInbound(ctx context.Context, rt *app, emitter *channels.Emitter, msg bus.InboundMessage) {
	p := soul.Perception{
		Type:    soul.PerceptionUserMessage,
		Content: msg.Content,
	}

	if suggested := soul.SuggestMode(p); suggested != rt.Engine.Mode() {
		if _, err := rt.Engine.Transition(ctx, string(suggested), "perception-driven"); err != nil {
			logger.WarnCF("gateway", "Mode transition failed", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	result, err := rt.Engine.Perceive(ctx, p)
	if err != nil {
		logger.ErrorCF("gateway", "Perception failed", map[string]interface{}{
			"channel": msg.Channel,
			"error":   err.Error(),
		})
		// Degraded reply: stay in character even when the backend fails.
		emitter.Emit(soul.ActionResult{
			Kind: soul.ActionSpoken,
			Text: soul.Gesture(rt.Engine.Mode(), rt.Engine.Identity().Name),
			Mode: rt.Engine.Mode(),
		}, msg.Channel, msg.ChatID)
		return
	}

	emitter.Emit(result, msg.Channel, msg.ChatID)
}
