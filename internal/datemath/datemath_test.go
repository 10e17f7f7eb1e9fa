package datemath

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"piglet-bot/internal/models"
)

// TestNextOccurrence verifies the year-rollover logic, including that a
// same-day anniversary stays in the current year.
func TestNextOccurrence(t *testing.T) {
	// Reference "today": June 15th, 2025 (non-leap year), late morning.
	today := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		md       models.MonthDay
		expected time.Time
	}{
		{
			name:     "already passed this year rolls to next year",
			md:       models.MonthDay{Month: time.January, Day: 1},
			expected: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "still ahead this year stays in this year",
			md:       models.MonthDay{Month: time.December, Day: 31},
			expected: time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "today counts as this year despite time of day",
			md:       models.MonthDay{Month: time.June, Day: 15},
			expected: time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "yesterday rolls forward",
			md:       models.MonthDay{Month: time.June, Day: 14},
			expected: time.Date(2026, 6, 14, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "Feb 29 clamps to Feb 28 in a non-leap year",
			md:       models.MonthDay{Month: time.February, Day: 29},
			expected: time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextOccurrence(tt.md, today)
			assert.Equal(t, tt.expected, got)
			assert.False(t, got.Before(StartOfDay(today)), "next occurrence must never be in the past")
		})
	}
}

func TestNextOccurrenceLeapYearKeepsFeb29(t *testing.T) {
	today := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	got := NextOccurrence(models.MonthDay{Month: time.February, Day: 29}, today)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), got)
}

func TestDaysBetween(t *testing.T) {
	kyiv, err := time.LoadLocation("Europe/Kyiv")
	assert.NoError(t, err)

	tests := []struct {
		name     string
		a, b     time.Time
		expected int
	}{
		{
			name:     "same calendar day ignores time of day",
			a:        time.Date(2025, 6, 15, 23, 59, 0, 0, time.UTC),
			b:        time.Date(2025, 6, 15, 0, 1, 0, 0, time.UTC),
			expected: 0,
		},
		{
			name:     "adjacent days",
			a:        time.Date(2025, 6, 16, 1, 0, 0, 0, time.UTC),
			b:        time.Date(2025, 6, 15, 23, 0, 0, 0, time.UTC),
			expected: 1,
		},
		{
			name:     "negative when a precedes b",
			a:        time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
			b:        time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
			expected: -5,
		},
		{
			name:     "across a DST spring-forward day",
			a:        time.Date(2025, 3, 31, 12, 0, 0, 0, kyiv),
			b:        time.Date(2025, 3, 29, 12, 0, 0, 0, kyiv),
			expected: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DaysBetween(tt.a, tt.b))
		})
	}
}

func TestClosestToHour(t *testing.T) {
	now := time.Date(2025, 6, 15, 8, 0, 0, 0, time.UTC)
	entry := func(h int, desc string) models.ForecastEntry {
		return models.ForecastEntry{
			Timestamp:   time.Date(2025, 6, 15, h, 0, 0, 0, time.UTC),
			Description: desc,
		}
	}

	t.Run("picks nearest to target hour", func(t *testing.T) {
		entries := []models.ForecastEntry{entry(6, "a"), entry(9, "b"), entry(12, "c"), entry(15, "d")}
		got, ok := ClosestToHour(entries, 12, now)
		assert.True(t, ok)
		assert.Equal(t, "c", got.Description)
	})

	t.Run("tie keeps first encountered", func(t *testing.T) {
		entries := []models.ForecastEntry{entry(10, "first"), entry(14, "second")}
		got, ok := ClosestToHour(entries, 12, now)
		assert.True(t, ok)
		assert.Equal(t, "first", got.Description)
	})

	t.Run("empty input reports absence", func(t *testing.T) {
		_, ok := ClosestToHour(nil, 12, now)
		assert.False(t, ok)
	})
}
