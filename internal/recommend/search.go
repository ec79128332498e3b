package recommend

import (
	"context"
	"fmt"

	"example.com/recommendation/internal/domain"
	"example.com/recommendation/internal/query"
	"example.com/recommendation/internal/search"
)

const (
	// resultSize caps the search path's result list.
	resultSize = 5
	// preferredTypeBoost weights the profile's preferred types when the query
	// names no type.
	preferredTypeBoost = 2.0
	// likedInstructorBoost weights instructors the user gave a thumbs-up.
	likedInstructorBoost = 3.0
)

// Searcher runs the query-bearing path against the search backend.
type Searcher struct {
	store  domain.Store
	client search.Client
	index  string
}

// NewSearcher constructs the search path over the given backend and index.
func NewSearcher(store domain.Store, client search.Client, index string) *Searcher {
	return &Searcher{store: store, client: client, index: index}
}

// exclusions holds the history-derived sets applied both inside the query and
// again on the returned hits.
type exclusions struct {
	flaggedInstructors map[string]bool
	seenWorkouts       map[string]bool
}

// Run builds the personalized query and executes it. Backend failures are
// returned so the engine can take its single-hop cold-start fallback.
func (s *Searcher) Run(ctx context.Context, profile *domain.UserProfile, parsed query.Parsed) ([]string, error) {
	req, excl, err := s.buildRequest(ctx, profile, parsed)
	if err != nil {
		return nil, err
	}

	hits, err := s.client.Search(ctx, s.index, req)
	if err != nil {
		return nil, fmt.Errorf("structured search: %w", err)
	}

	// The query already excludes these, but the index may lag behind the
	// flag table and the session ledger; strip again before returning.
	results := make([]string, 0, len(hits))
	for _, hit := range hits {
		id := workoutID(hit)
		if id == "" || excl.seenWorkouts[id] {
			continue
		}
		if excl.flaggedInstructors[hit.Source.InstructorID] {
			continue
		}
		results = append(results, id)
	}
	return results, nil
}

func (s *Searcher) buildRequest(ctx context.Context, profile *domain.UserProfile, parsed query.Parsed) (search.Request, exclusions, error) {
	req := search.Request{Size: resultSize}
	excl := exclusions{
		flaggedInstructors: make(map[string]bool),
		seenWorkouts:       make(map[string]bool),
	}

	if parsed.WorkoutType != "" {
		req.Filter = append(req.Filter, search.Term{Field: "workout_type", Value: parsed.WorkoutType})
	} else {
		for _, preferred := range profile.PreferredTypes {
			req.Should = append(req.Should, search.Term{Field: "workout_type", Value: preferred, Boost: preferredTypeBoost})
		}
	}

	if parsed.Level != "" {
		req.Filter = append(req.Filter, search.Term{Field: "fitness_level", Value: string(parsed.Level)})
	} else if profile.FitnessLevel != "" {
		req.Filter = append(req.Filter, search.Term{Field: "fitness_level", Value: string(profile.FitnessLevel)})
	}

	if parsed.Duration != nil {
		req.Filter = append(req.Filter, search.Range{Field: "duration", GTE: parsed.Duration.Low, LTE: parsed.Duration.High})
	}

	flagged, err := s.store.FlaggedInstructors(ctx)
	if err != nil {
		return req, excl, err
	}
	disliked, err := s.store.DislikedInstructors(ctx, profile.UserID)
	if err != nil {
		return req, excl, err
	}
	liked, err := s.store.LikedInstructors(ctx, profile.UserID)
	if err != nil {
		return req, excl, err
	}
	seen, err := s.store.SeenWorkouts(ctx, profile.UserID)
	if err != nil {
		return req, excl, err
	}

	for _, instructorID := range flagged {
		excl.flaggedInstructors[instructorID] = true
	}

	excludedInstructors := make(map[string]bool, len(flagged)+len(disliked))
	for _, instructorID := range append(append([]string{}, flagged...), disliked...) {
		if excludedInstructors[instructorID] {
			continue
		}
		excludedInstructors[instructorID] = true
		req.MustNot = append(req.MustNot, search.Term{Field: "instructor_id", Value: instructorID})
	}

	if len(seen) > 0 {
		req.MustNot = append(req.MustNot, search.Terms{Field: "_id", Values: seen})
		for _, workoutID := range seen {
			excl.seenWorkouts[workoutID] = true
		}
	}

	for _, instructorID := range liked {
		req.Should = append(req.Should, search.Term{Field: "instructor_id", Value: instructorID, Boost: likedInstructorBoost})
	}

	if parsed.Keywords != "" {
		req.Must = append(req.Must, search.MultiMatch{
			Query:  parsed.Keywords,
			Fields: []string{"title^2", "description", "tags"},
		})
	} else {
		// No residual keywords: match everything within the filters above.
		req.Must = append(req.Must, search.MatchAll{})
	}

	return req, excl, nil
}

// workoutID extracts the workout id from the hit's own id or its source.
func workoutID(hit search.Hit) string {
	if hit.ID != "" {
		return hit.ID
	}
	if hit.Source.ID != "" {
		return hit.Source.ID
	}
	return hit.Source.WorkoutID
}
