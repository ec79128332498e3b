// Package domain defines the core records and storage contract for the
// recommendation service.
package domain

import "time"

// FitnessLevel buckets users for cold-start segment lookups.
type FitnessLevel string

const (
	FitnessLevelBeginner     FitnessLevel = "Beginner"
	FitnessLevelIntermediate FitnessLevel = "Intermediate"
	FitnessLevelAdvanced     FitnessLevel = "Advanced"
)

// Feedback values.
const (
	FeedbackUp   = 1
	FeedbackDown = -1
)

// ComponentTypeInstructor is the only moderated component type today.
const ComponentTypeInstructor = "instructor"

// UserProfile is the onboarding-time profile consulted on every request.
// Immutable within a request.
type UserProfile struct {
	UserID         string
	AgeGroup       string
	FitnessLevel   FitnessLevel
	PreferredTypes []string // canonical workout types, preference order
}

// Session records one workout playback. CompletedAt stays nil while the
// session is in progress or abandoned; once set it is never cleared.
type Session struct {
	SessionID    string
	UserID       string
	WorkoutID    string
	WorkoutType  string
	InstructorID string
	StartedAt    time.Time
	CompletedAt  *time.Time
}

// Feedback is an append-only thumbs up/down row tied to a session. Multiple
// rows per session are permitted.
type Feedback struct {
	SessionID    string
	UserID       string
	WorkoutID    string
	Value        int
	FeedbackTime time.Time
}

// Flag holds moderation state for a component. At most one row exists per
// (ComponentType, ComponentID). ManualOverride, once set by a human process,
// freezes automatic transitions.
type Flag struct {
	ComponentType  string
	ComponentID    string
	Flagged        bool
	ManualOverride bool
	FlagReason     string
	FlaggedAt      time.Time
}

// Active reports whether the flag currently excludes its component from
// recommendations.
func (f *Flag) Active() bool {
	return f != nil && f.Flagged && !f.ManualOverride
}

// ColdStartRanking is one row of the precomputed per-segment ranking. Rank is
// a total order per (AgeGroup, FitnessLevel, WorkoutType) partition with 1 as
// best. WorkoutType is empty for the untyped segment row. Read-only to the
// core; the offline batch job owns these.
type ColdStartRanking struct {
	AgeGroup     string
	FitnessLevel FitnessLevel
	WorkoutType  string
	WorkoutID    string
	Rank         int
}

// WorkoutDocument mirrors the search index record.
type WorkoutDocument struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Type         string   `json:"workout_type"`
	FitnessLevel string   `json:"fitness_level"`
	InstructorID string   `json:"instructor_id"`
	Duration     int      `json:"duration"`
	Intensity    string   `json:"intensity"`
	Tags         []string `json:"tags"`
	Description  string   `json:"description"`
}
