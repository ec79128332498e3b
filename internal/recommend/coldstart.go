// Package recommend implements the request-time recommendation engine: the
// cold-start candidate generator, the personalized search path, and the
// entry point gating between them.
package recommend

import (
	"context"

	"example.com/recommendation/internal/domain"
)

// segmentTopN caps each per-segment ranking fetch.
const segmentTopN = 3

// ColdStart produces recommendations when the request carries no query
// signal, for first-time and returning users alike.
type ColdStart struct {
	store domain.Store
}

// NewColdStart constructs the generator.
func NewColdStart(store domain.Store) *ColdStart {
	return &ColdStart{store: store}
}

// Generate returns an ordered, deduplicated list of workout ids for the
// user's segment. Empty segments yield an empty list, not an error.
func (g *ColdStart) Generate(ctx context.Context, profile *domain.UserProfile) ([]string, error) {
	count, err := g.store.CountSessions(ctx, profile.UserID)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return g.firstTime(ctx, profile)
	}
	return g.returning(ctx, profile)
}

// firstTime walks the profile's preferred types in order (or a single untyped
// pass), concatenating each segment's top rows. First-time users carry no
// trust signal, so no instructor-flag filtering applies here.
func (g *ColdStart) firstTime(ctx context.Context, profile *domain.UserProfile) ([]string, error) {
	segmentTypes := profile.PreferredTypes
	if len(segmentTypes) == 0 {
		segmentTypes = []string{""}
	}

	results := make([]string, 0, segmentTopN*len(segmentTypes))
	seen := make(map[string]bool)
	for _, workoutType := range segmentTypes {
		ids, err := g.store.ColdStartTop(ctx, profile.AgeGroup, profile.FitnessLevel, workoutType, segmentTopN)
		if err != nil {
			return nil, err
		}
		for _, id := range ids {
			if seen[id] {
				continue
			}
			seen[id] = true
			results = append(results, id)
		}
	}
	return results, nil
}

// returning infers a single suggestion type from history, fetches that
// segment's top rows, and drops candidates whose latest instructor holds an
// active flag.
func (g *ColdStart) returning(ctx context.Context, profile *domain.UserProfile) ([]string, error) {
	suggestType, err := g.suggestType(ctx, profile)
	if err != nil {
		return nil, err
	}

	ids, err := g.store.ColdStartTop(ctx, profile.AgeGroup, profile.FitnessLevel, suggestType, segmentTopN)
	if err != nil {
		return nil, err
	}

	filtered := make([]string, 0, len(ids))
	for _, id := range ids {
		excluded, err := g.instructorFlagged(ctx, id)
		if err != nil {
			return nil, err
		}
		if !excluded {
			filtered = append(filtered, id)
		}
	}
	return filtered, nil
}

// suggestType prefers fresh positive feedback over profile preferences over
// recent completions; "" means no type filter.
func (g *ColdStart) suggestType(ctx context.Context, profile *domain.UserProfile) (string, error) {
	liked, err := g.store.MostRecentLikedType(ctx, profile.UserID)
	if err != nil || liked != "" {
		return liked, err
	}
	if len(profile.PreferredTypes) > 0 {
		return profile.PreferredTypes[0], nil
	}
	return g.store.MostRecentCompletedType(ctx, profile.UserID)
}

// instructorFlagged resolves the workout's most recently started instructor
// and checks for an active, non-overridden flag.
func (g *ColdStart) instructorFlagged(ctx context.Context, workoutID string) (bool, error) {
	instructorID, err := g.store.LatestInstructorForWorkout(ctx, workoutID)
	if err != nil {
		return false, err
	}
	if instructorID == "" {
		return false, nil
	}
	flag, err := g.store.GetFlag(ctx, domain.ComponentTypeInstructor, instructorID)
	if err != nil {
		return false, err
	}
	return flag.Active(), nil
}
