// Package postgres provides the pgx-backed implementation of domain.Store.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/recommendation/internal/domain"
)

// Store persists profiles, sessions, feedback, flags, and the precomputed
// cold-start rankings.
type Store struct {
	pool *pgxpool.Pool
}

var _ domain.Store = (*Store)(nil)

// NewStore constructs a Store over the connection pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// GetProfile returns nil without error for unknown users.
func (s *Store) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	const query = `SELECT user_id, age_group, fitness_level, preferred_types
        FROM users WHERE user_id=$1`

	row := s.pool.QueryRow(ctx, query, userID)
	var profile domain.UserProfile
	if err := row.Scan(&profile.UserID, &profile.AgeGroup, &profile.FitnessLevel, &profile.PreferredTypes); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

func (s *Store) CountSessions(ctx context.Context, userID string) (int, error) {
	const query = `SELECT COUNT(*) FROM sessions WHERE user_id=$1`

	var count int
	if err := s.pool.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// ColdStartTop reads the segment's ranking in ascending rank order. An empty
// workoutType selects the untyped segment rows.
func (s *Store) ColdStartTop(ctx context.Context, ageGroup string, level domain.FitnessLevel, workoutType string, limit int) ([]string, error) {
	const query = `SELECT workout_id FROM cold_start_rankings
        WHERE age_group=$1 AND fitness_level=$2 AND workout_type=$3
        ORDER BY rank ASC LIMIT $4`

	rows, err := s.pool.Query(ctx, query, ageGroup, level, workoutType, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStrings(rows)
}

// LatestInstructorForWorkout returns "" when no session references the workout.
func (s *Store) LatestInstructorForWorkout(ctx context.Context, workoutID string) (string, error) {
	const query = `SELECT instructor_id FROM sessions
        WHERE workout_id=$1 ORDER BY started_at DESC LIMIT 1`

	var instructorID string
	if err := s.pool.QueryRow(ctx, query, workoutID).Scan(&instructorID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return instructorID, nil
}

func (s *Store) InsertSession(ctx context.Context, session domain.Session) error {
	const stmt = `INSERT INTO sessions (session_id, user_id, workout_id, workout_type, instructor_id, started_at, completed_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7)`

	_, err := s.pool.Exec(ctx, stmt,
		session.SessionID,
		session.UserID,
		session.WorkoutID,
		session.WorkoutType,
		session.InstructorID,
		session.StartedAt,
		session.CompletedAt,
	)
	return err
}

// GetSession returns nil without error for unknown session ids.
func (s *Store) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	const query = `SELECT session_id, user_id, workout_id, workout_type, instructor_id, started_at, completed_at
        FROM sessions WHERE session_id=$1`

	row := s.pool.QueryRow(ctx, query, sessionID)
	var session domain.Session
	if err := row.Scan(&session.SessionID, &session.UserID, &session.WorkoutID, &session.WorkoutType, &session.InstructorID, &session.StartedAt, &session.CompletedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

// MarkSessionCompleted stamps the completion time once. Re-sends and unknown
// ids change nothing.
func (s *Store) MarkSessionCompleted(ctx context.Context, sessionID string, at time.Time) error {
	const stmt = `UPDATE sessions SET completed_at=$2
        WHERE session_id=$1 AND completed_at IS NULL`

	_, err := s.pool.Exec(ctx, stmt, sessionID, at)
	return err
}

func (s *Store) InsertFeedback(ctx context.Context, feedback domain.Feedback) error {
	const stmt = `INSERT INTO feedback (session_id, user_id, workout_id, value, feedback_time)
        VALUES ($1,$2,$3,$4,$5)`

	_, err := s.pool.Exec(ctx, stmt,
		feedback.SessionID,
		feedback.UserID,
		feedback.WorkoutID,
		feedback.Value,
		feedback.FeedbackTime,
	)
	return err
}

// GetFlag returns nil without error when no row exists for the component.
func (s *Store) GetFlag(ctx context.Context, componentType, componentID string) (*domain.Flag, error) {
	const query = `SELECT component_type, component_id, flagged, manual_override, flag_reason, flagged_at
        FROM flags WHERE component_type=$1 AND component_id=$2`

	row := s.pool.QueryRow(ctx, query, componentType, componentID)
	var flag domain.Flag
	if err := row.Scan(&flag.ComponentType, &flag.ComponentID, &flag.Flagged, &flag.ManualOverride, &flag.FlagReason, &flag.FlaggedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &flag, nil
}

// UpsertInstructorFlag applies the automatic Unflagged->Flagged transition.
// The conditional update keeps concurrent writers from clobbering an existing
// flag or a manual override, and the unique key keeps them from inserting
// duplicate rows.
func (s *Store) UpsertInstructorFlag(ctx context.Context, instructorID, reason string, at time.Time) error {
	const stmt = `INSERT INTO flags (component_type, component_id, flagged, manual_override, flag_reason, flagged_at)
        VALUES ($1,$2,TRUE,FALSE,$3,$4)
        ON CONFLICT (component_type, component_id) DO UPDATE
        SET flagged=TRUE, flag_reason=EXCLUDED.flag_reason, flagged_at=EXCLUDED.flagged_at
        WHERE flags.flagged=FALSE AND flags.manual_override=FALSE`

	_, err := s.pool.Exec(ctx, stmt, domain.ComponentTypeInstructor, instructorID, reason, at)
	return err
}

// FlaggedInstructors lists instructors whose flag currently excludes them.
func (s *Store) FlaggedInstructors(ctx context.Context) ([]string, error) {
	const query = `SELECT component_id FROM flags
        WHERE component_type=$1 AND flagged=TRUE AND manual_override=FALSE
        ORDER BY component_id`

	rows, err := s.pool.Query(ctx, query, domain.ComponentTypeInstructor)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStrings(rows)
}

func (s *Store) LikedInstructors(ctx context.Context, userID string) ([]string, error) {
	return s.instructorsByFeedback(ctx, userID, domain.FeedbackUp)
}

func (s *Store) DislikedInstructors(ctx context.Context, userID string) ([]string, error) {
	return s.instructorsByFeedback(ctx, userID, domain.FeedbackDown)
}

func (s *Store) instructorsByFeedback(ctx context.Context, userID string, value int) ([]string, error) {
	const query = `SELECT DISTINCT s.instructor_id FROM feedback f
        JOIN sessions s ON s.session_id = f.session_id
        WHERE f.user_id=$1 AND f.value=$2 AND s.instructor_id <> ''
        ORDER BY s.instructor_id`

	rows, err := s.pool.Query(ctx, query, userID, value)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStrings(rows)
}

// SeenWorkouts lists every workout the user has ever started a session for.
func (s *Store) SeenWorkouts(ctx context.Context, userID string) ([]string, error) {
	const query = `SELECT DISTINCT workout_id FROM sessions
        WHERE user_id=$1 ORDER BY workout_id`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanStrings(rows)
}

// MostRecentLikedType returns "" when the user has no thumbs-up on record.
func (s *Store) MostRecentLikedType(ctx context.Context, userID string) (string, error) {
	const query = `SELECT s.workout_type FROM feedback f
        JOIN sessions s ON s.session_id = f.session_id
        WHERE f.user_id=$1 AND f.value=$2
        ORDER BY f.feedback_time DESC LIMIT 1`

	var workoutType string
	if err := s.pool.QueryRow(ctx, query, userID, domain.FeedbackUp).Scan(&workoutType); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return workoutType, nil
}

// MostRecentCompletedType returns "" when the user never completed a session.
func (s *Store) MostRecentCompletedType(ctx context.Context, userID string) (string, error) {
	const query = `SELECT workout_type FROM sessions
        WHERE user_id=$1 AND completed_at IS NOT NULL
        ORDER BY completed_at DESC LIMIT 1`

	var workoutType string
	if err := s.pool.QueryRow(ctx, query, userID).Scan(&workoutType); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return workoutType, nil
}

func (s *Store) InstructorSessionStats(ctx context.Context, instructorID string) (domain.SessionStats, error) {
	const query = `SELECT COUNT(*), COUNT(*) FILTER (WHERE completed_at IS NULL)
        FROM sessions WHERE instructor_id=$1`

	var stats domain.SessionStats
	if err := s.pool.QueryRow(ctx, query, instructorID).Scan(&stats.Total, &stats.Abandoned); err != nil {
		return domain.SessionStats{}, err
	}
	return stats, nil
}

func scanStrings(rows pgx.Rows) ([]string, error) {
	var values []string
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, err
		}
		values = append(values, value)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return values, nil
}
