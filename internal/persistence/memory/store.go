// Package memory provides an in-memory Store for local development and tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"example.com/recommendation/internal/domain"
)

// Store implements domain.Store over in-process maps. Safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	profiles map[string]domain.UserProfile
	sessions map[string]domain.Session
	// started preserves insertion order so "latest by StartedAt" lookups can
	// break timestamp ties deterministically (last insert wins).
	started  []string
	feedback []domain.Feedback
	flags    map[string]domain.Flag // keyed by componentType/componentID
	rankings []domain.ColdStartRanking
}

var _ domain.Store = (*Store)(nil)

// NewStore constructs an empty Store.
func NewStore() *Store {
	return &Store{
		profiles: make(map[string]domain.UserProfile),
		sessions: make(map[string]domain.Session),
		flags:    make(map[string]domain.Flag),
	}
}

func flagKey(componentType, componentID string) string {
	return componentType + "/" + componentID
}

// AddProfile seeds a user profile.
func (s *Store) AddProfile(profile domain.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[profile.UserID] = profile
}

// AddRanking seeds one cold-start ranking row.
func (s *Store) AddRanking(ranking domain.ColdStartRanking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rankings = append(s.rankings, ranking)
}

// SetFlag seeds or replaces a flag row, manual overrides included.
func (s *Store) SetFlag(flag domain.Flag) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flags[flagKey(flag.ComponentType, flag.ComponentID)] = flag
}

// GetProfile implements domain.Store.
func (s *Store) GetProfile(_ context.Context, userID string) (*domain.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[userID]
	if !ok {
		return nil, nil
	}
	return &profile, nil
}

// CountSessions implements domain.Store.
func (s *Store) CountSessions(_ context.Context, userID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, session := range s.sessions {
		if session.UserID == userID {
			count++
		}
	}
	return count, nil
}

// ColdStartTop implements domain.Store.
func (s *Store) ColdStartTop(_ context.Context, ageGroup string, level domain.FitnessLevel, workoutType string, limit int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]domain.ColdStartRanking, 0)
	for _, ranking := range s.rankings {
		if ranking.AgeGroup == ageGroup && ranking.FitnessLevel == level && ranking.WorkoutType == workoutType {
			matched = append(matched, ranking)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].Rank < matched[j].Rank })

	ids := make([]string, 0, limit)
	for _, ranking := range matched {
		if len(ids) == limit {
			break
		}
		ids = append(ids, ranking.WorkoutID)
	}
	return ids, nil
}

// LatestInstructorForWorkout implements domain.Store.
func (s *Store) LatestInstructorForWorkout(_ context.Context, workoutID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *domain.Session
	for i := range s.started {
		session := s.sessions[s.started[i]]
		if session.WorkoutID != workoutID {
			continue
		}
		if latest == nil || !session.StartedAt.Before(latest.StartedAt) {
			copied := session
			latest = &copied
		}
	}
	if latest == nil {
		return "", nil
	}
	return latest.InstructorID, nil
}

// InsertSession implements domain.Store.
func (s *Store) InsertSession(_ context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.SessionID] = session
	s.started = append(s.started, session.SessionID)
	return nil
}

// GetSession implements domain.Store.
func (s *Store) GetSession(_ context.Context, sessionID string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	return &session, nil
}

// MarkSessionCompleted implements domain.Store. Unknown sessions are a no-op,
// and a completion stamp is never overwritten once set.
func (s *Store) MarkSessionCompleted(_ context.Context, sessionID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[sessionID]
	if !ok || session.CompletedAt != nil {
		return nil
	}
	session.CompletedAt = &at
	s.sessions[sessionID] = session
	return nil
}

// InsertFeedback implements domain.Store. Append-only.
func (s *Store) InsertFeedback(_ context.Context, feedback domain.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedback = append(s.feedback, feedback)
	return nil
}

// GetFlag implements domain.Store.
func (s *Store) GetFlag(_ context.Context, componentType, componentID string) (*domain.Flag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	flag, ok := s.flags[flagKey(componentType, componentID)]
	if !ok {
		return nil, nil
	}
	return &flag, nil
}

// UpsertInstructorFlag implements domain.Store. The transition applies only
// when no row exists or the existing row is unflagged with no manual override.
func (s *Store) UpsertInstructorFlag(_ context.Context, instructorID, reason string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := flagKey(domain.ComponentTypeInstructor, instructorID)
	if existing, ok := s.flags[key]; ok && (existing.Flagged || existing.ManualOverride) {
		return nil
	}
	s.flags[key] = domain.Flag{
		ComponentType: domain.ComponentTypeInstructor,
		ComponentID:   instructorID,
		Flagged:       true,
		FlagReason:    reason,
		FlaggedAt:     at,
	}
	return nil
}

// FlaggedInstructors implements domain.Store.
func (s *Store) FlaggedInstructors(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0)
	for _, flag := range s.flags {
		if flag.ComponentType == domain.ComponentTypeInstructor && flag.Flagged && !flag.ManualOverride {
			ids = append(ids, flag.ComponentID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// LikedInstructors implements domain.Store.
func (s *Store) LikedInstructors(_ context.Context, userID string) ([]string, error) {
	return s.feedbackInstructors(userID, domain.FeedbackUp), nil
}

// DislikedInstructors implements domain.Store.
func (s *Store) DislikedInstructors(_ context.Context, userID string) ([]string, error) {
	return s.feedbackInstructors(userID, domain.FeedbackDown), nil
}

func (s *Store) feedbackInstructors(userID string, value int) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	ids := make([]string, 0)
	for _, fb := range s.feedback {
		if fb.UserID != userID || fb.Value != value {
			continue
		}
		session, ok := s.sessions[fb.SessionID]
		if !ok || session.InstructorID == "" || seen[session.InstructorID] {
			continue
		}
		seen[session.InstructorID] = true
		ids = append(ids, session.InstructorID)
	}
	sort.Strings(ids)
	return ids
}

// SeenWorkouts implements domain.Store.
func (s *Store) SeenWorkouts(_ context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	ids := make([]string, 0)
	for _, sessionID := range s.started {
		session := s.sessions[sessionID]
		if session.UserID != userID || seen[session.WorkoutID] {
			continue
		}
		seen[session.WorkoutID] = true
		ids = append(ids, session.WorkoutID)
	}
	return ids, nil
}

// MostRecentLikedType implements domain.Store.
func (s *Store) MostRecentLikedType(_ context.Context, userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *domain.Feedback
	for i := range s.feedback {
		fb := s.feedback[i]
		if fb.UserID != userID || fb.Value != domain.FeedbackUp {
			continue
		}
		if latest == nil || !fb.FeedbackTime.Before(latest.FeedbackTime) {
			latest = &s.feedback[i]
		}
	}
	if latest == nil {
		return "", nil
	}
	session, ok := s.sessions[latest.SessionID]
	if !ok {
		return "", nil
	}
	return session.WorkoutType, nil
}

// MostRecentCompletedType implements domain.Store.
func (s *Store) MostRecentCompletedType(_ context.Context, userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *domain.Session
	for _, sessionID := range s.started {
		session := s.sessions[sessionID]
		if session.UserID != userID || session.CompletedAt == nil {
			continue
		}
		if latest == nil || !session.CompletedAt.Before(*latest.CompletedAt) {
			copied := session
			latest = &copied
		}
	}
	if latest == nil {
		return "", nil
	}
	return latest.WorkoutType, nil
}

// InstructorSessionStats implements domain.Store.
func (s *Store) InstructorSessionStats(_ context.Context, instructorID string) (domain.SessionStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var stats domain.SessionStats
	for _, session := range s.sessions {
		if session.InstructorID != instructorID {
			continue
		}
		stats.Total++
		if session.CompletedAt == nil {
			stats.Abandoned++
		}
	}
	return stats, nil
}
