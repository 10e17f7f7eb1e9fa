package digest

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"piglet-bot/internal/models"
)

func birthdayIn(today time.Time, days int) models.MonthDay {
	d := today.AddDate(0, 0, days)
	return models.MonthDay{Month: d.Month(), Day: d.Day()}
}

func TestEvaluateRemindersThresholds(t *testing.T) {
	today := time.Date(2025, 6, 14, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		daysUntil int
		expected  string
	}{
		{7, "🎉 Через неделю у Аня день рождения!"},
		{3, "🎈 Через 3 дня у Аня день рождения!"},
		{1, "🎁 Завтра у Аня день рождения!"},
		{0, "🎂 Сегодня у Аня день рождения!"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d days", tt.daysUntil), func(t *testing.T) {
			birthdays := []models.BirthdayRecord{{Name: "Аня", Date: birthdayIn(today, tt.daysUntil)}}
			reminders := EvaluateReminders(birthdays, today)
			require.Len(t, reminders, 1)
			assert.Equal(t, tt.expected, reminders[0].Text)
			assert.Equal(t, tt.daysUntil, reminders[0].DaysUntil)
			assert.Equal(t, "Аня", reminders[0].Name)
		})
	}
}

func TestEvaluateRemindersOffThresholdsSilent(t *testing.T) {
	today := time.Date(2025, 6, 14, 9, 0, 0, 0, time.UTC)

	for _, days := range []int{2, 4, 5, 6, 8, 30, 200} {
		birthdays := []models.BirthdayRecord{{Name: "Аня", Date: birthdayIn(today, days)}}
		assert.Empty(t, EvaluateReminders(birthdays, today), "daysUntil=%d must not fire", days)
	}
}

func TestEvaluateRemindersAtMostOnePerRecord(t *testing.T) {
	today := time.Date(2025, 6, 14, 9, 0, 0, 0, time.UTC)
	birthdays := []models.BirthdayRecord{
		{Name: "Аня", Date: birthdayIn(today, 3)},
		{Name: "Олег", Date: birthdayIn(today, 5)},
		{Name: "Марта", Date: birthdayIn(today, 0)},
	}

	reminders := EvaluateReminders(birthdays, today)
	require.Len(t, reminders, 2)
	assert.Equal(t, "Аня", reminders[0].Name)
	assert.Equal(t, "Марта", reminders[1].Name)
}

func TestEvaluateRemindersIsStateless(t *testing.T) {
	today := time.Date(2025, 6, 14, 9, 0, 0, 0, time.UTC)
	birthdays := []models.BirthdayRecord{{Name: "Аня", Date: birthdayIn(today, 1)}}

	first := EvaluateReminders(birthdays, today)
	second := EvaluateReminders(birthdays, today)
	assert.Equal(t, first, second, "re-evaluation on the same day re-emits the same reminders")
}
