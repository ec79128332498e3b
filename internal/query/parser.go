// Package query turns free-text workout requests into structured filters.
package query

import (
	"strings"

	"example.com/recommendation/internal/domain"
)

// Lookup tables are initialized once at package load and never mutated.
var (
	workoutTypes = map[string]string{
		"cycling":    "Cycling",
		"bike":       "Cycling",
		"spin":       "Cycling",
		"meditation": "Meditation",
		"meditate":   "Meditation",
		"stretching": "Stretching",
		"stretch":    "Stretching",
		"walking":    "Walking",
		"walk":       "Walking",
		"strength":   "Strength",
		"yoga":       "Yoga",
	}

	fitnessLevels = map[string]domain.FitnessLevel{
		"beginner":     domain.FitnessLevelBeginner,
		"intermediate": domain.FitnessLevelIntermediate,
		"advanced":     domain.FitnessLevelAdvanced,
	}

	durationUnits = map[string]bool{
		"minute": true, "minutes": true, "min": true, "mins": true,
		"hour": true, "hours": true,
	}

	stopwords = map[string]bool{
		"find": true, "me": true, "a": true, "an": true, "the": true,
		"for": true, "give": true, "show": true, "looking": true,
		"workout": true, "workouts": true, "session": true, "sessions": true,
		"exercise": true, "exercises": true, "want": true, "recommend": true,
		"i": true, "training": true,
	}
)

// DurationRange is an inclusive minutes window derived from a spoken duration.
type DurationRange struct {
	Low  int
	High int
}

// Parsed holds the structured filters extracted from a request.
type Parsed struct {
	WorkoutType string
	Level       domain.FitnessLevel
	Duration    *DurationRange
	Keywords    string
}

// Empty reports whether the query carried no usable signal; an empty parse
// routes the request to the cold-start path.
func (p Parsed) Empty() bool {
	return p.WorkoutType == "" && p.Level == "" && p.Duration == nil && p.Keywords == ""
}

// Parse lower-cases and whitespace-tokenizes text, classifying tokens left to
// right: workout-type synonym, fitness-level synonym, numeral (with an
// optional following unit word), bare unit word (discarded), stopword
// (discarded), otherwise keyword. First matches win for type, level and
// duration; later candidates fall through to keyword handling.
func Parse(text string) Parsed {
	tokens := strings.Fields(strings.ToLower(text))

	var out Parsed
	var keywords []string
	for i := 0; i < len(tokens); i++ {
		token := tokens[i]

		if canonical, ok := workoutTypes[token]; ok {
			if out.WorkoutType == "" {
				out.WorkoutType = canonical
			}
			continue
		}
		if level, ok := fitnessLevels[token]; ok {
			if out.Level == "" {
				out.Level = level
			}
			continue
		}
		if isDigits(token) && out.Duration == nil {
			minutes := atoi(token)
			if i+1 < len(tokens) && durationUnits[tokens[i+1]] {
				if strings.HasPrefix(tokens[i+1], "hour") {
					minutes *= 60
				}
				i++
			}
			low := minutes * 8 / 10
			if low < 1 {
				low = 1
			}
			out.Duration = &DurationRange{Low: low, High: minutes * 12 / 10}
			continue
		}
		if durationUnits[token] {
			// Bare unit word with no preceding numeral.
			continue
		}
		if stopwords[token] {
			continue
		}
		keywords = append(keywords, token)
	}

	out.Keywords = strings.Join(keywords, " ")
	return out
}

func isDigits(token string) bool {
	if token == "" {
		return false
	}
	for _, r := range token {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// atoi converts a digits-only token; callers check isDigits first.
func atoi(token string) int {
	n := 0
	for _, r := range token {
		n = n*10 + int(r-'0')
	}
	return n
}
