// Package entityquery implements the entity-map search path used by the
// voice pipeline: a model-based extractor hands over typed entities and this
// package normalizes them into a query against the shared workout index. It
// performs no extraction itself.
package entityquery

import (
	"context"
	"strconv"
	"strings"

	"example.com/recommendation/internal/search"
)

// defaultTopK caps results when the caller does not say otherwise.
const defaultTopK = 5

// Normalization tables, loaded once and never mutated. These are wider than
// the free-text parser's tables because the upstream extractor surfaces
// phrases the parser never emits.
var (
	typeSynonyms = map[string]string{
		"yoga":       "Yoga",
		"meditation": "Meditation",
		"cycling":    "Cycling",
		"bike":       "Cycling",
		"ride":       "Cycling",
		"spin":       "Cycling",
		"run":        "Running",
		"treadmill":  "Running",
		"strength":   "Strength",
		"cardio":     "Cardio",
		"hiit":       "HIIT",
		"stretching": "Stretching",
		"pilates":    "Pilates",
		"walking":    "Walking",
		"bootcamp":   "Bootcamp",
	}

	intensitySynonyms = map[string]string{
		"low impact":     "low",
		"beginner":       "low",
		"intermediate":   "medium",
		"advanced":       "high",
		"high intensity": "high",
	}

	// goalTags expands a spoken goal into the tag vocabulary of the index.
	goalTags = map[string][]string{
		"build muscle":  {"muscle", "hypertrophy", "strength"},
		"lose weight":   {"weight-loss", "fat-burn"},
		"fat burn":      {"fat-burn", "cardio"},
		"mobility":      {"mobility", "stretch"},
		"flexibility":   {"flexibility", "stretch"},
		"get stronger":  {"strength", "power"},
		"tone body":     {"toning", "sculpt"},
		"calm mind":     {"calm", "mindfulness"},
		"energy boost":  {"energy", "morning"},
		"stress relief": {"stress-relief", "calm"},
	}
)

// Filters is the structured entity map produced by the upstream extractor.
// Zero-valued fields are omitted from the query.
type Filters struct {
	WorkoutType string
	Intensity   string
	Duration    string // spoken form, e.g. "20 minutes" or "1 hour"
	Instructor  string
	Goal        string
}

// Searcher issues entity-driven queries against the shared search backend.
type Searcher struct {
	client search.Client
	index  string
}

// NewSearcher constructs a Searcher over the given backend and index.
func NewSearcher(client search.Client, index string) *Searcher {
	return &Searcher{client: client, index: index}
}

// Search normalizes the entities into must clauses and returns matching
// workout ids in score order.
func (s *Searcher) Search(ctx context.Context, filters Filters, topK int) ([]string, error) {
	if topK <= 0 {
		topK = defaultTopK
	}

	req := search.Request{Size: topK}
	if filters.Instructor != "" {
		req.Must = append(req.Must, search.Match{Field: "instructor", Value: filters.Instructor})
	}
	if minutes, ok := parseDurationMinutes(filters.Duration); ok {
		req.Must = append(req.Must, search.Match{Field: "duration", Value: strconv.Itoa(minutes)})
	}
	if intensity := normalize(intensitySynonyms, filters.Intensity); intensity != "" {
		req.Must = append(req.Must, search.Match{Field: "intensity", Value: intensity})
	}
	if workoutType := normalize(typeSynonyms, filters.WorkoutType); workoutType != "" {
		req.Must = append(req.Must, search.Match{Field: "workout_type", Value: workoutType})
	}
	if tags := expandGoal(filters.Goal); tags != "" {
		req.Must = append(req.Must, search.Match{Field: "tags", Value: tags})
	}

	hits, err := s.client.Search(ctx, s.index, req)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(hits))
	for _, hit := range hits {
		id := hit.ID
		if id == "" {
			id = hit.Source.ID
		}
		if id == "" {
			id = hit.Source.WorkoutID
		}
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// normalize canonicalizes through the table, passing unknown values through
// as spoken.
func normalize(table map[string]string, value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	if canonical, ok := table[strings.ToLower(trimmed)]; ok {
		return canonical
	}
	return trimmed
}

// expandGoal joins the goal's tag expansion into one match phrase, falling
// back to the raw goal for goals outside the table.
func expandGoal(goal string) string {
	trimmed := strings.TrimSpace(goal)
	if trimmed == "" {
		return ""
	}
	if tags, ok := goalTags[strings.ToLower(trimmed)]; ok {
		return strings.Join(tags, " ")
	}
	return trimmed
}

// parseDurationMinutes reads the leading numeral of a spoken duration,
// converting hours to minutes. Unparseable values are dropped, never an
// error.
func parseDurationMinutes(duration string) (int, bool) {
	fields := strings.Fields(strings.ToLower(duration))
	if len(fields) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n <= 0 {
		return 0, false
	}
	if len(fields) > 1 && strings.HasPrefix(fields[1], "hour") {
		n *= 60
	}
	return n, true
}
