// Package moderation implements the automatic instructor trust state machine.
package moderation

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"example.com/recommendation/internal/domain"
	"example.com/recommendation/internal/observability"
)

const (
	// minSessions is the evidence floor before abandonment rates count.
	minSessions = 3
	// abandonmentThreshold is the rate above which an instructor gets flagged.
	abandonmentThreshold = 0.30
)

// Option configures optional behaviour for the Flagger.
type Option func(*Flagger)

// WithLogger overrides the logger used to report transitions.
func WithLogger(logger *log.Logger) Option {
	return func(f *Flagger) {
		f.logger = logger
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(f *Flagger) {
		f.now = now
	}
}

// Flagger applies the one-directional Unflagged->Flagged transition driven by
// session abandonment statistics. It never auto-clears a flag; only the
// external manual process does that. Transitions for one instructor are
// serialized through a per-instructor lock so concurrent abandonments cannot
// both observe the unflagged state and race the write; the store's
// conditional upsert guards the transition across processes.
type Flagger struct {
	store  domain.Store
	logger *log.Logger
	now    func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewFlagger constructs a Flagger over the given store.
func NewFlagger(store domain.Store, opts ...Option) *Flagger {
	f := &Flagger{
		store:  store,
		logger: log.New(log.Writer(), "[moderation] ", log.LstdFlags),
		now:    time.Now,
		locks:  make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// RecordAbandonment re-evaluates the instructor's trust state after one of
// their sessions was abandoned.
func (f *Flagger) RecordAbandonment(ctx context.Context, instructorID string) error {
	if instructorID == "" {
		return nil
	}

	lock := f.instructorLock(instructorID)
	lock.Lock()
	defer lock.Unlock()

	stats, err := f.store.InstructorSessionStats(ctx, instructorID)
	if err != nil {
		return fmt.Errorf("abandonment stats for %s: %w", instructorID, err)
	}
	if stats.Total < minSessions {
		return nil
	}
	rate := float64(stats.Abandoned) / float64(stats.Total)
	if rate <= abandonmentThreshold {
		return nil
	}

	flag, err := f.store.GetFlag(ctx, domain.ComponentTypeInstructor, instructorID)
	if err != nil {
		return fmt.Errorf("flag lookup for %s: %w", instructorID, err)
	}
	if flag != nil && (flag.ManualOverride || flag.Flagged) {
		return nil
	}

	reason := fmt.Sprintf("abandonment_rate>%.0f%%", rate*100)
	if err := f.store.UpsertInstructorFlag(ctx, instructorID, reason, f.now().UTC()); err != nil {
		return fmt.Errorf("flag instructor %s: %w", instructorID, err)
	}

	f.logger.Printf("flagged instructor %s (%d/%d sessions abandoned)", instructorID, stats.Abandoned, stats.Total)
	observability.RecordInstructorFlagged()
	return nil
}

func (f *Flagger) instructorLock(instructorID string) *sync.Mutex {
	f.mu.Lock()
	defer f.mu.Unlock()
	lock, ok := f.locks[instructorID]
	if !ok {
		lock = &sync.Mutex{}
		f.locks[instructorID] = lock
	}
	return lock
}
