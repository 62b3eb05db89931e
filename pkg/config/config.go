package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/caarlos0/env/v11"
)

// FlexibleStringSlice is a []string that also accepts JSON numbers,
// so allow_from can contain both "123" and 123.
type FlexibleStringSlice []string

func (f *FlexibleStringSlice) UnmarshalJSON(data []byte) error {
	var ss []string
	if err := json.Unmarshal(data, &ss); err == nil {
		*f = ss
		return nil
	}

	var raw []interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	result := make([]string, 0, len(raw))
	for _, v := range raw {
		switch val := v.(type) {
		case string:
			result = append(result, val)
		case float64:
			result = append(result, fmt.Sprintf("%.0f", val))
		default:
			result = append(result, fmt.Sprintf("%v", val))
		}
	}
	*f = result
	return nil
}

type Config struct {
	Soul       SoulConfig       `json:"soul"`
	Providers  ProvidersConfig  `json:"providers"`
	Channels   ChannelsConfig   `json:"channels"`
	Memory     MemoryConfig     `json:"memory"`
	Reflection ReflectionConfig `json:"reflection"`
	mu         sync.RWMutex
}

type SoulConfig struct {
	Workspace        string `json:"workspace" env:"DOT_SOUL_WORKSPACE"`
	IdentityPath     string `json:"identity_path" env:"DOT_SOUL_IDENTITY_PATH"`
	DefaultMode      string `json:"default_mode" env:"DOT_SOUL_DEFAULT_MODE"`
	BestEffortMemory bool   `json:"best_effort_memory" env:"DOT_SOUL_BEST_EFFORT_MEMORY"`
}

type ProvidersConfig struct {
	OpenRouter ProviderConfig `json:"openrouter"`
}

type ProviderConfig struct {
	APIKey  string `json:"api_key" env:"DOT_PROVIDERS_OPENROUTER_API_KEY"`
	APIBase string `json:"api_base" env:"DOT_PROVIDERS_OPENROUTER_API_BASE"`
	Model   string `json:"model" env:"DOT_PROVIDERS_OPENROUTER_MODEL"`
}

type ChannelsConfig struct {
	Discord DiscordConfig `json:"discord"`
}

type DiscordConfig struct {
	Token     string              `json:"token" env:"DOT_CHANNELS_DISCORD_TOKEN"`
	AllowFrom FlexibleStringSlice `json:"allow_from" env:"DOT_CHANNELS_DISCORD_ALLOW_FROM"`
}

type MemoryConfig struct {
	TailLimit int `json:"tail_limit" env:"DOT_MEMORY_TAIL_LIMIT"`
}

type ReflectionConfig struct {
	Enabled  bool   `json:"enabled" env:"DOT_REFLECTION_ENABLED"`
	Schedule string `json:"schedule" env:"DOT_REFLECTION_SCHEDULE"` // cron expression
}

func DefaultConfig() *Config {
	return &Config{
		Soul: SoulConfig{
			Workspace:        "~/.dot/workspace",
			IdentityPath:     "", // empty means the built-in Dot identity
			DefaultMode:      "idle",
			BestEffortMemory: false,
		},
		Providers: ProvidersConfig{
			OpenRouter: ProviderConfig{
				Model: "openai/gpt-5.2",
			},
		},
		Channels: ChannelsConfig{
			Discord: DiscordConfig{
				Token:     "",
				AllowFrom: FlexibleStringSlice{},
			},
		},
		Memory: MemoryConfig{
			TailLimit: 10,
		},
		Reflection: ReflectionConfig{
			Enabled:  true,
			Schedule: "0 * * * *",
		},
	}
}

func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := env.Parse(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func SaveConfig(path string, cfg *Config) error {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

func (c *Config) WorkspacePath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return expandHome(c.Soul.Workspace)
}

func (c *Config) GetAPIKey() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Providers.OpenRouter.APIKey
}

func (c *Config) GetAPIBase() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.Providers.OpenRouter.APIBase != "" {
		return c.Providers.OpenRouter.APIBase
	}
	return "https://openrouter.ai/api/v1"
}

func expandHome(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		home, _ := os.UserHomeDir()
		if len(path) > 1 && path[1] == '/' {
			return home + path[1:]
		}
		return home
	}
	return path
}
