package moderation

import (
	"context"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"example.com/recommendation/internal/domain"
	"example.com/recommendation/internal/persistence/memory"
)

func newTestFlagger(t *testing.T, store domain.Store) *Flagger {
	t.Helper()
	return NewFlagger(store,
		WithLogger(log.New(testWriter{t}, "", 0)),
		WithClock(func() time.Time { return time.Date(2026, time.August, 28, 12, 0, 0, 0, time.UTC) }),
	)
}

func seedSessions(store *memory.Store, instructorID string, abandoned, completed int) {
	ctx := context.Background()
	started := time.Date(2026, time.August, 1, 8, 0, 0, 0, time.UTC)
	n := 0
	add := func(done bool) {
		n++
		session := domain.Session{
			SessionID:    uuid.NewString(),
			UserID:       "user-1",
			WorkoutID:    "workout-1",
			WorkoutType:  "Yoga",
			InstructorID: instructorID,
			StartedAt:    started.Add(time.Duration(n) * time.Hour),
		}
		if done {
			completedAt := session.StartedAt.Add(30 * time.Minute)
			session.CompletedAt = &completedAt
		}
		_ = store.InsertSession(ctx, session)
	}
	for i := 0; i < abandoned; i++ {
		add(false)
	}
	for i := 0; i < completed; i++ {
		add(true)
	}
}

func TestFlagsInstructorAboveThreshold(t *testing.T) {
	store := memory.NewStore()
	seedSessions(store, "inst-1", 2, 1) // 2 of 3 abandoned, 67%

	flagger := newTestFlagger(t, store)
	require.NoError(t, flagger.RecordAbandonment(context.Background(), "inst-1"))

	flag, err := store.GetFlag(context.Background(), domain.ComponentTypeInstructor, "inst-1")
	require.NoError(t, err)
	require.NotNil(t, flag)
	require.True(t, flag.Flagged)
	require.False(t, flag.ManualOverride)
	require.Contains(t, flag.FlagReason, "67%")
}

func TestNoFlagBelowSessionFloor(t *testing.T) {
	store := memory.NewStore()
	seedSessions(store, "inst-1", 2, 0) // 100% abandoned, only 2 sessions

	flagger := newTestFlagger(t, store)
	require.NoError(t, flagger.RecordAbandonment(context.Background(), "inst-1"))

	flag, err := store.GetFlag(context.Background(), domain.ComponentTypeInstructor, "inst-1")
	require.NoError(t, err)
	require.Nil(t, flag)
}

func TestNoFlagAtOrBelowRateThreshold(t *testing.T) {
	store := memory.NewStore()
	seedSessions(store, "inst-1", 3, 7) // exactly 30%

	flagger := newTestFlagger(t, store)
	require.NoError(t, flagger.RecordAbandonment(context.Background(), "inst-1"))

	flag, err := store.GetFlag(context.Background(), domain.ComponentTypeInstructor, "inst-1")
	require.NoError(t, err)
	require.Nil(t, flag)
}

func TestManualOverrideFreezesTransitions(t *testing.T) {
	store := memory.NewStore()
	seedSessions(store, "inst-1", 3, 0)
	override := domain.Flag{
		ComponentType:  domain.ComponentTypeInstructor,
		ComponentID:    "inst-1",
		Flagged:        false,
		ManualOverride: true,
		FlagReason:     "cleared after review",
	}
	store.SetFlag(override)

	flagger := newTestFlagger(t, store)
	require.NoError(t, flagger.RecordAbandonment(context.Background(), "inst-1"))
	require.NoError(t, flagger.RecordAbandonment(context.Background(), "inst-1"))

	flag, err := store.GetFlag(context.Background(), domain.ComponentTypeInstructor, "inst-1")
	require.NoError(t, err)
	require.Equal(t, override, *flag)
}

func TestAlreadyFlaggedIsStable(t *testing.T) {
	store := memory.NewStore()
	seedSessions(store, "inst-1", 2, 1)

	flagger := newTestFlagger(t, store)
	require.NoError(t, flagger.RecordAbandonment(context.Background(), "inst-1"))

	before, err := store.GetFlag(context.Background(), domain.ComponentTypeInstructor, "inst-1")
	require.NoError(t, err)

	seedSessions(store, "inst-1", 1, 0) // rate moves to 75%
	require.NoError(t, flagger.RecordAbandonment(context.Background(), "inst-1"))

	after, err := store.GetFlag(context.Background(), domain.ComponentTypeInstructor, "inst-1")
	require.NoError(t, err)
	require.Equal(t, *before, *after)
}

func TestConcurrentAbandonmentsSingleTransition(t *testing.T) {
	store := memory.NewStore()
	seedSessions(store, "inst-1", 4, 1)

	flagger := newTestFlagger(t, store)

	var wg sync.WaitGroup
	errs := make([]error, 16)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = flagger.RecordAbandonment(context.Background(), "inst-1")
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	flag, err := store.GetFlag(context.Background(), domain.ComponentTypeInstructor, "inst-1")
	require.NoError(t, err)
	require.NotNil(t, flag)
	require.True(t, flag.Flagged)
	require.Contains(t, flag.FlagReason, "80%")
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}
