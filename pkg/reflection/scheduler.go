package reflection

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/adhocore/gronx"
	"github.com/dotlovesyou/dot/pkg/logger"
	"github.com/dotlovesyou/dot/pkg/soul"
)

const reflectTimeout = 2 * time.Minute

// Scheduler periodically makes the soul reflect on its recent memories.
// Each due tick synthesizes a self_reflection perception, runs it
// through the engine, and keeps the resulting thought as a new memory.
type Scheduler struct {
	engine    *soul.Engine
	schedule  string
	tailLimit int
	gron      *gronx.Gronx

	stopCh    chan struct{}
	wg        sync.WaitGroup
	startOnce sync.Once
	stopOnce  sync.Once

	mu         sync.Mutex
	lastMinute time.Time
}

func NewScheduler(engine *soul.Engine, schedule string, tailLimit int) (*Scheduler, error) {
	if engine == nil {
		return nil, fmt.Errorf("reflection: engine is required")
	}
	g := gronx.New()
	if !g.IsValid(schedule) {
		return nil, fmt.Errorf("reflection: invalid cron schedule %q", schedule)
	}
	if tailLimit <= 0 {
		tailLimit = 10
	}
	return &Scheduler{
		engine:    engine,
		schedule:  schedule,
		tailLimit: tailLimit,
		gron:      g,
		stopCh:    make(chan struct{}),
	}, nil
}

func (s *Scheduler) Start() {
	s.startOnce.Do(func() {
		logger.InfoCF("reflection", "Reflection scheduler started", map[string]interface{}{
			"schedule": s.schedule,
		})
		s.wg.Add(1)
		go s.run()
	})
}

func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.wg.Wait()
	})
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case now := <-ticker.C:
			if !s.claimMinute(now) {
				continue
			}
			due, err := s.gron.IsDue(s.schedule, now)
			if err != nil || !due {
				continue
			}
			if err := s.ReflectOnce(context.Background()); err != nil {
				logger.ErrorCF("reflection", "Reflection failed", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}
	}
}

// claimMinute keeps a schedule from firing twice inside one minute.
func (s *Scheduler) claimMinute(now time.Time) bool {
	minute := now.Truncate(time.Minute)
	s.mu.Lock()
	defer s.mu.Unlock()
	if minute.Equal(s.lastMinute) {
		return false
	}
	s.lastMinute = minute
	return true
}

// ReflectOnce runs a single reflection immediately.
func (s *Scheduler) ReflectOnce(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, reflectTimeout)
	defer cancel()

	content, err := s.reflectionContent(ctx)
	if err != nil {
		return err
	}

	result, err := s.engine.ProcessPerception(ctx, soul.ModeContemplating, soul.Perception{
		Type:    soul.PerceptionSelfReflection,
		Content: content,
	})
	if err != nil {
		return err
	}

	if err := s.engine.Remember(ctx, "Reflected: "+result.Text); err != nil {
		return err
	}

	logger.InfoCF("reflection", "Reflection completed", map[string]interface{}{
		"thought": result.Text,
	})
	return nil
}

func (s *Scheduler) reflectionContent(ctx context.Context) (string, error) {
	recent, err := s.engine.RecentMemories(ctx, s.tailLimit)
	if err != nil {
		return "", err
	}
	if len(recent) == 0 {
		return "I'm taking a moment to reflect on who I am and what I want to become. What thoughts arise?", nil
	}

	lines := make([]string, 0, len(recent))
	for _, rec := range recent {
		lines = append(lines, "- "+rec.Content)
	}
	return fmt.Sprintf("I've been carrying these memories lately:\n%s\nHow do I feel about my progress and purpose?",
		strings.Join(lines, "\n")), nil
}
