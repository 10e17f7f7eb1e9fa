package digest

import (
	"fmt"
	"time"

	"piglet-bot/internal/datemath"
	"piglet-bot/internal/models"
)

// reminderTemplates maps a days-until threshold to its message template.
// Only these thresholds fire; any other distance stays silent.
var reminderTemplates = map[int]string{
	7: "🎉 Через неделю у %s день рождения!",
	3: "🎈 Через 3 дня у %s день рождения!",
	1: "🎁 Завтра у %s день рождения!",
	0: "🎂 Сегодня у %s день рождения!",
}

// EvaluateReminders returns the reminders due today. Each birthday yields at
// most one reminder per call (daysUntil is a single integer, so thresholds
// are mutually exclusive). The evaluator is stateless: calling it twice on
// the same day re-emits the same reminders; delivery-side dedup is the
// caller's concern.
func EvaluateReminders(birthdays []models.BirthdayRecord, today time.Time) []models.Reminder {
	var reminders []models.Reminder
	for _, b := range birthdays {
		next := datemath.NextOccurrence(b.Date, today)
		daysUntil := datemath.DaysBetween(next, today)

		template, ok := reminderTemplates[daysUntil]
		if !ok {
			continue
		}
		reminders = append(reminders, models.Reminder{
			Name:      b.Name,
			DaysUntil: daysUntil,
			Text:      fmt.Sprintf(template, b.Name),
		})
	}
	return reminders
}
