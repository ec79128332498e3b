package domain

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrUserNotFound is returned for user ids that never completed onboarding.
	ErrUserNotFound = errors.New("user not found: complete onboarding first")
	// ErrSessionNotFound is returned when a session cannot be located.
	ErrSessionNotFound = errors.New("session not found")
)

// SessionStats summarizes all-time session counts for one instructor.
type SessionStats struct {
	Total     int
	Abandoned int // sessions with no completion stamp
}

// Store is the storage backend contract the recommendation core depends on.
// Every call re-reads current state; the core holds no cache across requests.
type Store interface {
	// GetProfile returns nil without error when the user does not exist.
	GetProfile(ctx context.Context, userID string) (*UserProfile, error)
	CountSessions(ctx context.Context, userID string) (int, error)

	// ColdStartTop returns workout ids for the segment ordered by ascending
	// rank. workoutType == "" queries the untyped segment rows.
	ColdStartTop(ctx context.Context, ageGroup string, level FitnessLevel, workoutType string, limit int) ([]string, error)

	// LatestInstructorForWorkout resolves the instructor of the most recently
	// started session for the workout, "" when it has never been played.
	LatestInstructorForWorkout(ctx context.Context, workoutID string) (string, error)

	InsertSession(ctx context.Context, session Session) error
	// GetSession returns nil without error when the session does not exist.
	GetSession(ctx context.Context, sessionID string) (*Session, error)
	MarkSessionCompleted(ctx context.Context, sessionID string, at time.Time) error
	InsertFeedback(ctx context.Context, feedback Feedback) error

	// GetFlag returns nil without error when no flag row exists.
	GetFlag(ctx context.Context, componentType, componentID string) (*Flag, error)
	// UpsertInstructorFlag applies the automatic Unflagged->Flagged transition.
	// It must be a no-op when the existing row is already flagged or carries a
	// manual override, and concurrent calls for one instructor must not
	// produce duplicate rows or lost updates.
	UpsertInstructorFlag(ctx context.Context, instructorID, reason string, at time.Time) error
	// FlaggedInstructors lists instructors with an active, non-overridden flag.
	FlaggedInstructors(ctx context.Context) ([]string, error)

	LikedInstructors(ctx context.Context, userID string) ([]string, error)
	DislikedInstructors(ctx context.Context, userID string) ([]string, error)
	SeenWorkouts(ctx context.Context, userID string) ([]string, error)

	// MostRecentLikedType returns the workout type of the session with the
	// user's most recent thumbs-up, "" when the user never liked anything.
	MostRecentLikedType(ctx context.Context, userID string) (string, error)
	// MostRecentCompletedType returns the workout type of the user's most
	// recently completed session, "" when nothing was completed.
	MostRecentCompletedType(ctx context.Context, userID string) (string, error)

	InstructorSessionStats(ctx context.Context, instructorID string) (SessionStats, error)
}
