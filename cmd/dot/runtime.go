package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dotlovesyou/dot/pkg/config"
	"github.com/dotlovesyou/dot/pkg/identity"
	"github.com/dotlovesyou/dot/pkg/logger"
	"github.com/dotlovesyou/dot/pkg/memory"
	"github.com/dotlovesyou/dot/pkg/providers"
	"github.com/dotlovesyou/dot/pkg/soul"
)

// app bundles the wired-up engine with everything it owns.
type app struct {
	Config *config.Config
	Engine *soul.Engine
	store  *memory.SQLiteStore
}

func (a *app) Close() {
	if a.store != nil {
		_ = a.store.Close()
	}
}

func getConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".dot", "config.json")
	}
	return filepath.Join(home, ".dot", "config.json")
}

func loadIdentity(cfg *config.Config) (identity.Identity, error) {
	path := strings.TrimSpace(cfg.Soul.IdentityPath)
	if path == "" {
		return identity.Dot(), nil
	}
	return identity.Load(path)
}

// initialMode parses soul.default_mode. An unrecognized value degrades
// to idle with a warning rather than refusing to start.
func initialMode(cfg *config.Config) soul.MentalMode {
	raw := strings.TrimSpace(cfg.Soul.DefaultMode)
	if raw == "" {
		return soul.ModeIdle
	}
	mode, err := soul.ParseMode(raw)
	if err != nil {
		logger.WarnCF("runtime", "Unknown default_mode in config, using idle", map[string]interface{}{
			"default_mode": raw,
		})
		return soul.ModeIdle
	}
	return mode
}

// experiencePerception builds an experience perception honoring the
// configured memory degradation policy.
func (a *app) experiencePerception(content string) soul.Perception {
	return soul.Perception{
		Type:       soul.PerceptionExperience,
		Content:    content,
		BestEffort: a.Config.Soul.BestEffortMemory,
	}
}

// openApp loads config, identity, and the memory store, and picks the
// capability set: the generation backend when an API key is configured,
// deterministic offline gestures otherwise.
func openApp() (*app, error) {
	cfg, err := config.LoadConfig(getConfigPath())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	id, err := loadIdentity(cfg)
	if err != nil {
		return nil, err
	}

	store, err := memory.NewSQLiteStore(filepath.Join(cfg.WorkspacePath(), "state", "soul.db"))
	if err != nil {
		return nil, err
	}

	var engine *soul.Engine
	var caps soul.Capabilities
	if strings.TrimSpace(cfg.GetAPIKey()) != "" {
		gen, err := providers.NewOpenRouter(cfg)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		caps = providers.NewBackendCapabilities(id, gen)
	} else {
		logger.WarnC("runtime", "No provider API key configured, using offline capabilities")
		caps = soul.NewOfflineCapabilities(id, func() soul.MentalMode {
			if engine == nil {
				return soul.ModeIdle
			}
			return engine.Mode()
		})
	}

	engine, err = soul.NewEngine(context.Background(), id, store, caps, initialMode(cfg))
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	return &app{Config: cfg, Engine: engine, store: store}, nil
}

func onboard() error {
	configPath := getConfigPath()

	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config already exists at %s", configPath)
	}

	cfg := config.DefaultConfig()
	if err := config.SaveConfig(configPath, cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Printf("%s is ready!\n", appName)
	fmt.Println("\nNext steps:")
	fmt.Println("  1. Add your API key to", configPath)
	fmt.Println("     (or leave it empty to stay in offline mode)")
	fmt.Println("  2. (Gateway mode) Add your Discord bot token to channels.discord.token")
	fmt.Println("  3. Chat locally: dot chat")
	fmt.Println("  4. Run gateway: dot gateway")
	return nil
}
