package consumer

import (
	"context"
	"encoding/json"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"example.com/recommendation/internal/events"
	"example.com/recommendation/internal/ledger"
	"example.com/recommendation/internal/moderation"
	"example.com/recommendation/internal/persistence/memory"
)

func newHandler(t *testing.T) (*LedgerHandler, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	flagger := moderation.NewFlagger(store, moderation.WithLogger(log.New(testWriter{t}, "", 0)))
	svc := ledger.NewService(store, flagger)
	return NewLedgerHandler(svc, log.New(testWriter{t}, "", 0)), store
}

func message(t *testing.T, eventType string, payload any) Message {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return Message{Topic: "session_events", EventType: eventType, Payload: body}
}

func TestLedgerHandlerSessionLifecycle(t *testing.T) {
	ctx := context.Background()
	handler, store := newHandler(t)

	started := time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)
	err := handler.Handle(ctx, message(t, events.TypeSessionStarted, events.SessionStarted{
		SessionID:    "s-1",
		UserID:       "u-1",
		WorkoutID:    "w-1",
		WorkoutType:  "Yoga",
		InstructorID: "inst-1",
		StartedAt:    started,
	}))
	require.NoError(t, err)

	session, err := store.GetSession(ctx, "s-1")
	require.NoError(t, err)
	require.NotNil(t, session)
	require.Nil(t, session.CompletedAt)

	err = handler.Handle(ctx, message(t, events.TypeSessionEnded, events.SessionEnded{
		SessionID: "s-1",
		Completed: true,
		EndedAt:   started.Add(30 * time.Minute),
	}))
	require.NoError(t, err)

	session, err = store.GetSession(ctx, "s-1")
	require.NoError(t, err)
	require.NotNil(t, session.CompletedAt)

	err = handler.Handle(ctx, message(t, events.TypeFeedbackSubmitted, events.FeedbackSubmitted{
		SessionID: "s-1",
		Value:     1,
	}))
	require.NoError(t, err)

	liked, err := store.LikedInstructors(ctx, "u-1")
	require.NoError(t, err)
	require.Equal(t, []string{"inst-1"}, liked)
}

func TestLedgerHandlerDropsFeedbackForUnknownSession(t *testing.T) {
	handler, _ := newHandler(t)

	err := handler.Handle(context.Background(), message(t, events.TypeFeedbackSubmitted, events.FeedbackSubmitted{
		SessionID: "never-started",
		Value:     1,
	}))
	require.NoError(t, err)
}

func TestLedgerHandlerIgnoresUnknownEventType(t *testing.T) {
	handler, _ := newHandler(t)

	err := handler.Handle(context.Background(), Message{
		Topic:     "session_events",
		EventType: "workout.published",
		Payload:   json.RawMessage(`{}`),
	})
	require.NoError(t, err)
}

func TestLedgerHandlerRejectsMalformedPayload(t *testing.T) {
	handler, _ := newHandler(t)

	err := handler.Handle(context.Background(), Message{
		Topic:     "session_events",
		EventType: events.TypeSessionEnded,
		Payload:   json.RawMessage(`{"completed":"yes"}`),
	})
	require.Error(t, err)
}
