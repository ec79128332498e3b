package ledger

import (
	"context"
	"log"
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/recommendation/internal/domain"
	"example.com/recommendation/internal/moderation"
	"example.com/recommendation/internal/persistence/memory"
)

func newTestService(store domain.Store) *Service {
	flagger := moderation.NewFlagger(store, moderation.WithLogger(log.New(log.Writer(), "", 0)))
	return NewService(store, flagger)
}

func TestStartGeneratesSessionID(t *testing.T) {
	store := memory.NewStore()
	service := newTestService(store)

	sessionID, err := service.Start(context.Background(), StartInput{
		UserID:       "user-1",
		WorkoutID:    "workout-1",
		WorkoutType:  "Yoga",
		InstructorID: "inst-1",
	})
	require.NoError(t, err)
	require.NotEmpty(t, sessionID)

	session, err := store.GetSession(context.Background(), sessionID)
	require.NoError(t, err)
	require.NotNil(t, session)
	require.Equal(t, "user-1", session.UserID)
	require.Nil(t, session.CompletedAt)
	require.False(t, session.StartedAt.IsZero())
}

func TestStartKeepsClientMintedID(t *testing.T) {
	store := memory.NewStore()
	service := newTestService(store)

	sessionID, err := service.Start(context.Background(), StartInput{
		SessionID: "client-session-1",
		UserID:    "user-1",
		WorkoutID: "workout-1",
	})
	require.NoError(t, err)
	require.Equal(t, "client-session-1", sessionID)
}

func TestEndCompletedStampsSession(t *testing.T) {
	store := memory.NewStore()
	service := newTestService(store)

	sessionID, err := service.Start(context.Background(), StartInput{UserID: "user-1", WorkoutID: "workout-1"})
	require.NoError(t, err)

	require.NoError(t, service.End(context.Background(), sessionID, true))

	session, err := store.GetSession(context.Background(), sessionID)
	require.NoError(t, err)
	require.NotNil(t, session.CompletedAt)
}

func TestEndAbandonedLeavesSessionOpenAndFlags(t *testing.T) {
	store := memory.NewStore()
	service := newTestService(store)

	// Three abandoned sessions push the instructor over the threshold on the
	// third End call.
	var last string
	for i := 0; i < 3; i++ {
		sessionID, err := service.Start(context.Background(), StartInput{
			UserID:       "user-1",
			WorkoutID:    "workout-1",
			WorkoutType:  "Cycling",
			InstructorID: "inst-1",
		})
		require.NoError(t, err)
		require.NoError(t, service.End(context.Background(), sessionID, false))
		last = sessionID
	}

	session, err := store.GetSession(context.Background(), last)
	require.NoError(t, err)
	require.Nil(t, session.CompletedAt)

	flag, err := store.GetFlag(context.Background(), domain.ComponentTypeInstructor, "inst-1")
	require.NoError(t, err)
	require.NotNil(t, flag)
	require.True(t, flag.Flagged)
	require.Contains(t, flag.FlagReason, "100%")
}

func TestEndAbandonedUnknownSessionIsNoop(t *testing.T) {
	service := newTestService(memory.NewStore())
	require.NoError(t, service.End(context.Background(), "missing", false))
}

func TestLogFeedbackUnknownSession(t *testing.T) {
	service := newTestService(memory.NewStore())
	err := service.LogFeedback(context.Background(), "missing", domain.FeedbackUp)
	require.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestLogFeedbackRejectsOtherValues(t *testing.T) {
	service := newTestService(memory.NewStore())
	require.Error(t, service.LogFeedback(context.Background(), "any", 0))
	require.Error(t, service.LogFeedback(context.Background(), "any", 2))
}

func TestLogFeedbackAppendsOnResubmission(t *testing.T) {
	store := memory.NewStore()
	service := newTestService(store)

	sessionID, err := service.Start(context.Background(), StartInput{
		UserID:       "user-1",
		WorkoutID:    "workout-1",
		InstructorID: "inst-1",
	})
	require.NoError(t, err)

	require.NoError(t, service.LogFeedback(context.Background(), sessionID, domain.FeedbackDown))
	require.NoError(t, service.LogFeedback(context.Background(), sessionID, domain.FeedbackUp))

	// Both rows are visible: the instructor shows up in the liked and the
	// disliked sets.
	liked, err := store.LikedInstructors(context.Background(), "user-1")
	require.NoError(t, err)
	disliked, err := store.DislikedInstructors(context.Background(), "user-1")
	require.NoError(t, err)
	require.Equal(t, []string{"inst-1"}, liked)
	require.Equal(t, []string{"inst-1"}, disliked)
}
