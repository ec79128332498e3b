// Package events defines the session lifecycle payloads consumed from Kafka.
package events

import "time"

// Event type values carried in the event_type message header.
const (
	TypeSessionStarted    = "session.started"
	TypeSessionEnded      = "session.ended"
	TypeFeedbackSubmitted = "feedback.submitted"
)

// SessionStarted is emitted when a client begins workout playback. The client
// mints the session id so later lifecycle events can reference it.
type SessionStarted struct {
	SessionID    string    `json:"session_id"`
	UserID       string    `json:"user_id"`
	WorkoutID    string    `json:"workout_id"`
	WorkoutType  string    `json:"workout_type"`
	InstructorID string    `json:"instructor_id"`
	StartedAt    time.Time `json:"started_at"`
}

// SessionEnded closes a session. Completed=false means the user abandoned it.
type SessionEnded struct {
	SessionID string    `json:"session_id"`
	Completed bool      `json:"completed"`
	EndedAt   time.Time `json:"ended_at"`
}

// FeedbackSubmitted carries a thumbs up (+1) or down (-1) for a session.
type FeedbackSubmitted struct {
	SessionID   string    `json:"session_id"`
	Value       int       `json:"value"`
	SubmittedAt time.Time `json:"submitted_at"`
}
