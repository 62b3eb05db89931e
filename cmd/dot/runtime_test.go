package main

import (
	"testing"

	"github.com/dotlovesyou/dot/pkg/config"
	"github.com/dotlovesyou/dot/pkg/soul"
)

func TestInitialMode(t *testing.T) {
	tests := []struct {
		name        string
		defaultMode string
		want        soul.MentalMode
	}{
		{"configured mode", "curious", soul.ModeCurious},
		{"padded and cased", "  Resting ", soul.ModeResting},
		{"empty means idle", "", soul.ModeIdle},
		{"unknown degrades to idle", "grumpy", soul.ModeIdle},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Soul.DefaultMode = tt.defaultMode
			if got := initialMode(cfg); got != tt.want {
				t.Fatalf("initialMode(%q) = %q, want %q", tt.defaultMode, got, tt.want)
			}
		})
	}
}

func TestExperiencePerception_HonorsBestEffortConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	rt := &app{Config: cfg}

	p := rt.experiencePerception("met a new friend")
	if p.Type != soul.PerceptionExperience || p.Content != "met a new friend" {
		t.Fatalf("unexpected perception: %+v", p)
	}
	if p.BestEffort {
		t.Fatal("best effort should be off by default")
	}

	cfg.Soul.BestEffortMemory = true
	if !rt.experiencePerception("again").BestEffort {
		t.Fatal("best_effort_memory config was not honored")
	}
}
