package soul

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/dotlovesyou/dot/pkg/identity"
	"github.com/dotlovesyou/dot/pkg/memory"
)

func newTestEngine(t *testing.T) (*Engine, *memory.SQLiteStore) {
	t.Helper()
	store, err := memory.NewSQLiteStore(filepath.Join(t.TempDir(), "soul.db"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	id := identity.Dot()
	engine, err := NewEngine(context.Background(), id, store, NewOfflineCapabilities(id, nil), ModeIdle)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine, store
}

func TestNewEngine_DefaultMode(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "soul.db")
	id := identity.Dot()

	store, err := memory.NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer store.Close()

	// Nothing persisted: the soul wakes up in the configured default.
	engine, err := NewEngine(ctx, id, store, NewOfflineCapabilities(id, nil), ModeCurious)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if engine.Mode() != ModeCurious {
		t.Fatalf("expected configured default curious, got %q", engine.Mode())
	}

	// A persisted transition wins over the default on the next start.
	if _, err := engine.Transition(ctx, "resting", ""); err != nil {
		t.Fatalf("transition: %v", err)
	}
	engine2, err := NewEngine(ctx, id, store, NewOfflineCapabilities(id, nil), ModeCurious)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if engine2.Mode() != ModeResting {
		t.Fatalf("persisted mode should win over default, got %q", engine2.Mode())
	}

	// Empty default still means idle.
	fresh, err := memory.NewSQLiteStore(filepath.Join(t.TempDir(), "soul.db"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer fresh.Close()
	engine3, err := NewEngine(ctx, id, fresh, NewOfflineCapabilities(id, nil), "")
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if engine3.Mode() != ModeIdle {
		t.Fatalf("empty default should mean idle, got %q", engine3.Mode())
	}
}

func TestNewEngine_RejectsInvalidIdentity(t *testing.T) {
	store, err := memory.NewSQLiteStore(filepath.Join(t.TempDir(), "soul.db"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer store.Close()

	bad := identity.Identity{Description: "no name, no blueprint"}
	_, err = NewEngine(context.Background(), bad, store, NewOfflineCapabilities(identity.Dot(), nil), ModeIdle)
	if !errors.Is(err, identity.ErrMissingName) {
		t.Fatalf("expected ErrMissingName, got %v", err)
	}
	if !errors.Is(err, identity.ErrMissingBlueprint) {
		t.Fatalf("expected ErrMissingBlueprint, got %v", err)
	}
}

func TestEngine_TransitionPersistsAcrossRestart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "soul.db")
	id := identity.Dot()

	store, err := memory.NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	engine, err := NewEngine(ctx, id, store, NewOfflineCapabilities(id, nil), ModeIdle)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	if engine.Mode() != ModeIdle {
		t.Fatalf("fresh soul should start idle, got %q", engine.Mode())
	}

	mode, err := engine.Transition(ctx, "Playful", "testing")
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if mode != ModePlayful || engine.Mode() != ModePlayful {
		t.Fatalf("expected playful, got %q / %q", mode, engine.Mode())
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	store2, err := memory.NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	defer store2.Close()
	engine2, err := NewEngine(ctx, id, store2, NewOfflineCapabilities(id, nil), ModeIdle)
	if err != nil {
		t.Fatalf("new engine after restart: %v", err)
	}
	if engine2.Mode() != ModePlayful {
		t.Fatalf("expected persisted playful mode, got %q", engine2.Mode())
	}
}

func TestEngine_TransitionRejectsUnknownMode(t *testing.T) {
	engine, _ := newTestEngine(t)

	if _, err := engine.Transition(context.Background(), "grumpy", ""); !errors.Is(err, ErrUnknownMode) {
		t.Fatalf("expected ErrUnknownMode, got %v", err)
	}
	if engine.Mode() != ModeIdle {
		t.Fatalf("failed transition must not change mode, got %q", engine.Mode())
	}
}

func TestEngine_PerceiveUsesCurrentMode(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t)

	if _, err := engine.Transition(ctx, "curious", ""); err != nil {
		t.Fatalf("transition: %v", err)
	}
	result, err := engine.Perceive(ctx, Perception{Type: PerceptionSelfReflection, Content: "hm"})
	if err != nil {
		t.Fatalf("perceive: %v", err)
	}
	if result.Mode != ModeCurious {
		t.Fatalf("expected curious, got %q", result.Mode)
	}
	if result.Text != Gesture(ModeCurious, engine.Identity().Name) {
		t.Fatalf("offline thought should be the curious gesture, got %q", result.Text)
	}
}

func TestEngine_RememberAndRecentMemories(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t)

	for _, content := range []string{"one", "two", "three"} {
		if err := engine.Remember(ctx, content); err != nil {
			t.Fatalf("remember %q: %v", content, err)
		}
	}

	recent, err := engine.RecentMemories(ctx, 2)
	if err != nil {
		t.Fatalf("recent memories: %v", err)
	}
	if len(recent) != 2 || recent[0].Content != "two" || recent[1].Content != "three" {
		t.Fatalf("expected newest two ascending, got %#v", recent)
	}

	cursor, err := engine.Memories(ctx)
	if err != nil {
		t.Fatalf("memories: %v", err)
	}
	defer cursor.Close()
	count := 0
	for cursor.Next() {
		count++
	}
	if err := cursor.Err(); err != nil {
		t.Fatalf("cursor: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 memories, got %d", count)
	}
}

func TestEngine_ExperienceRoundTrip(t *testing.T) {
	ctx := context.Background()
	engine, store := newTestEngine(t)

	result, err := engine.Perceive(ctx, Perception{Type: PerceptionExperience, Content: "found a sunny leaf"})
	if err != nil {
		t.Fatalf("perceive: %v", err)
	}
	if result.Kind != ActionThought || !result.Remembered {
		t.Fatalf("expected remembered thought, got %+v", result)
	}

	n, err := store.Count(ctx, engine.Identity().Name)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 stored memory, got %d", n)
	}
}
