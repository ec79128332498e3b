// Package ledger records the session lifecycle and feedback events that feed
// future recommendations.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"example.com/recommendation/internal/domain"
	"example.com/recommendation/internal/moderation"
	"example.com/recommendation/internal/observability"
)

// Service is the source of truth for seen, liked and disliked workouts and
// instructors. Abandonments are forwarded to the moderation flagger.
type Service struct {
	store   domain.Store
	flagger *moderation.Flagger
	now     func() time.Time
}

// NewService constructs a Service.
func NewService(store domain.Store, flagger *moderation.Flagger) *Service {
	return &Service{store: store, flagger: flagger, now: time.Now}
}

// StartInput captures the payload for opening a session. SessionID may be
// pre-minted by the client (event-ingestion path); left empty, one is
// generated.
type StartInput struct {
	SessionID    string
	UserID       string
	WorkoutID    string
	WorkoutType  string
	InstructorID string
	StartedAt    time.Time
}

// Start opens a session and returns its id.
func (s *Service) Start(ctx context.Context, input StartInput) (string, error) {
	session := domain.Session{
		SessionID:    input.SessionID,
		UserID:       input.UserID,
		WorkoutID:    input.WorkoutID,
		WorkoutType:  input.WorkoutType,
		InstructorID: input.InstructorID,
		StartedAt:    input.StartedAt,
	}
	if session.SessionID == "" {
		session.SessionID = uuid.NewString()
	}
	if session.StartedAt.IsZero() {
		session.StartedAt = s.now().UTC()
	}
	if err := s.store.InsertSession(ctx, session); err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	return session.SessionID, nil
}

// End closes a session. A completed session gets its completion stamp, which
// is never cleared afterwards. An abandoned one keeps CompletedAt unset and
// feeds the instructor abandonment signal instead.
func (s *Service) End(ctx context.Context, sessionID string, completed bool) error {
	if completed {
		return s.store.MarkSessionCompleted(ctx, sessionID, s.now().UTC())
	}

	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		// Nothing to re-evaluate for a session that was never recorded.
		return nil
	}
	return s.flagger.RecordAbandonment(ctx, session.InstructorID)
}

// LogFeedback appends a thumbs up/down row for the session. Re-submissions
// append rather than overwrite.
func (s *Service) LogFeedback(ctx context.Context, sessionID string, value int) error {
	if value != domain.FeedbackUp && value != domain.FeedbackDown {
		return fmt.Errorf("feedback value must be %+d or %+d, got %+d", domain.FeedbackUp, domain.FeedbackDown, value)
	}

	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return err
	}
	if session == nil {
		return fmt.Errorf("feedback for session %s: %w", sessionID, domain.ErrSessionNotFound)
	}

	feedback := domain.Feedback{
		SessionID:    sessionID,
		UserID:       session.UserID,
		WorkoutID:    session.WorkoutID,
		Value:        value,
		FeedbackTime: s.now().UTC(),
	}
	if err := s.store.InsertFeedback(ctx, feedback); err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}
	observability.RecordFeedback(value)
	return nil
}
