package query

import (
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/recommendation/internal/domain"
)

func TestParseStructuredQuery(t *testing.T) {
	parsed := Parse("cycling 20 minutes beginner")

	require.Equal(t, "Cycling", parsed.WorkoutType)
	require.Equal(t, domain.FitnessLevelBeginner, parsed.Level)
	require.NotNil(t, parsed.Duration)
	require.Equal(t, 16, parsed.Duration.Low)
	require.Equal(t, 24, parsed.Duration.High)
	require.Empty(t, parsed.Keywords)
	require.False(t, parsed.Empty())
}

func TestParseDurationWindows(t *testing.T) {
	cases := []struct {
		text      string
		low, high int
	}{
		{"45 min", 36, 54},
		{"2 hours", 96, 144},
		{"20 minutes", 16, 24},
		{"1 minute", 1, 1},
	}
	for _, tc := range cases {
		parsed := Parse(tc.text)
		require.NotNil(t, parsed.Duration, tc.text)
		require.Equal(t, tc.low, parsed.Duration.Low, tc.text)
		require.Equal(t, tc.high, parsed.Duration.High, tc.text)
	}
}

func TestParseFirstMatchWins(t *testing.T) {
	parsed := Parse("yoga cycling 20 minutes 45 mins intermediate beginner")

	require.Equal(t, "Yoga", parsed.WorkoutType)
	require.Equal(t, domain.FitnessLevelIntermediate, parsed.Level)
	require.Equal(t, &DurationRange{Low: 16, High: 24}, parsed.Duration)
	// The second numeral is no longer a duration and ends up as a keyword;
	// the unit word after it is discarded.
	require.Equal(t, "45", parsed.Keywords)
}

func TestParseBareUnitAndStopwordsDiscarded(t *testing.T) {
	parsed := Parse("find me a workout for minutes")
	require.True(t, parsed.Empty())
}

func TestParseKeywordResidual(t *testing.T) {
	parsed := Parse("show me a relaxing evening flow")
	require.Equal(t, "relaxing evening flow", parsed.Keywords)
	require.Empty(t, parsed.WorkoutType)
	require.False(t, parsed.Empty())
}

func TestParseNonNumericDurationIsKeyword(t *testing.T) {
	parsed := Parse("twenty minutes of yoga")
	require.Equal(t, "Yoga", parsed.WorkoutType)
	require.Nil(t, parsed.Duration)
	require.Equal(t, "twenty of", parsed.Keywords)
}

func TestParseEmptyInput(t *testing.T) {
	require.True(t, Parse("").Empty())
	require.True(t, Parse("   ").Empty())
}
