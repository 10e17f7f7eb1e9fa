// Package digest builds the text of the daily message. Each section is
// rendered independently: a failed source degrades to its fixed placeholder
// line without affecting the other sections.
package digest

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"piglet-bot/internal/datemath"
	"piglet-bot/internal/models"
)

// Fixed greeting and placeholder strings.
const (
	GreetingDaily = "👋 Добрый день, пятачек!"
	GreetingStart = "👋 Привет, пятачок!"

	weatherUnavailable  = "❌ Не удалось загрузить прогноз погоды"
	currencyUnavailable = "❌ Не удалось загрузить курсы валют"
	birthdayUnavailable = "❌ Не удалось загрузить дни рождения"
	holidayUnavailable  = "❌ Не удалось загрузить праздники"

	noUpcomingBirthdays = "🎂 Ближайших дней рождений нет"

	// NoHolidaysToday is sent standalone when the holiday callback finds
	// nothing; inside the digest an empty holiday list omits the section.
	NoHolidaysToday = "📅 Сегодня праздников нет"
)

const placeholder = "—"

// Compose joins the digest sections with blank-line separators in fixed
// order. The holiday section is dropped entirely when empty.
func Compose(greeting, weather, currency, birthday, holiday string) string {
	parts := []string{greeting, weather, currency, birthday}
	if holiday != "" {
		parts = append(parts, holiday)
	}
	return strings.Join(parts, "\n\n")
}

// weatherCategories maps description keywords to an emoji. First match in
// order wins; matching is case-insensitive substring search.
var weatherCategories = []struct {
	emoji    string
	keywords []string
}{
	{"🌧", []string{"дожд", "дощ", "ливень", "злива"}},
	{"☁️", []string{"облачно", "хмарно"}},
	{"☀️", []string{"ясно"}},
	{"❄️", []string{"снег", "сніг"}},
	{"⛈", []string{"гроза"}},
	{"🌬", []string{"ветер", "вітер"}},
}

const defaultWeatherEmoji = "🌤"

func weatherEmoji(description string) string {
	d := strings.ToLower(description)
	for _, cat := range weatherCategories {
		for _, kw := range cat.keywords {
			if strings.Contains(d, kw) {
				return cat.emoji
			}
		}
	}
	return defaultWeatherEmoji
}

// BuildWeatherSnapshot reduces the forecast buckets to the two values the
// digest shows: today's entry closest to 12:00 and tomorrow's closest to
// 03:00. Returns nil when there is no bucket for today.
func BuildWeatherSnapshot(entries []models.ForecastEntry, now time.Time) *models.WeatherSnapshot {
	today := datemath.StartOfDay(now)
	tomorrow := today.AddDate(0, 0, 1)

	var todayEntries, tomorrowEntries []models.ForecastEntry
	for _, e := range entries {
		day := datemath.StartOfDay(e.Timestamp)
		switch {
		case day.Equal(today):
			todayEntries = append(todayEntries, e)
		case day.Equal(tomorrow):
			tomorrowEntries = append(tomorrowEntries, e)
		}
	}

	day, ok := datemath.ClosestToHour(todayEntries, 12, now)
	if !ok {
		return nil
	}

	snap := &models.WeatherSnapshot{
		Description: day.Description,
		DayTemp:     &day.Temperature,
		CloudCover:  &day.CloudCover,
		WindSpeed:   &day.WindSpeed,
	}
	if night, ok := datemath.ClosestToHour(tomorrowEntries, 3, now); ok {
		snap.NightTemp = &night.Temperature
	}
	return snap
}

var russianWeekdays = [...]string{
	"воскресенье", "понедельник", "вторник", "среда", "четверг", "пятница", "суббота",
}

var russianMonths = [...]string{
	"января", "февраля", "марта", "апреля", "мая", "июня",
	"июля", "августа", "сентября", "октября", "ноября", "декабря",
}

var upperRU = cases.Upper(language.Russian)

// capitalize upper-cases the first rune only, like the original bot did.
func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || r == utf8.RuneError {
		return s
	}
	return upperRU.String(string(r)) + s[size:]
}

// formatDateLine renders "Суббота, 5 января".
func formatDateLine(now time.Time) string {
	return capitalize(fmt.Sprintf("%s, %d %s",
		russianWeekdays[now.Weekday()], now.Day(), russianMonths[now.Month()-1]))
}

// formatTemp rounds to the nearest integer and prefixes positive values
// with "+". Zero gets no prefix; nil renders as the em-dash placeholder.
func formatTemp(t *float64) string {
	if t == nil {
		return placeholder
	}
	r := int(math.Round(*t))
	if r > 0 {
		return fmt.Sprintf("+%d", r)
	}
	return strconv.Itoa(r)
}

// WeatherSection renders the weather block. A nil snapshot means the source
// was unavailable.
func WeatherSection(snap *models.WeatherSnapshot, now time.Time) string {
	if snap == nil {
		return "Сегодня - " + weatherUnavailable
	}

	desc := snap.Description
	if desc == "" {
		desc = "нет данных"
	}

	clouds := placeholder
	if snap.CloudCover != nil {
		clouds = strconv.Itoa(*snap.CloudCover)
	}
	wind := placeholder
	if snap.WindSpeed != nil {
		wind = strconv.FormatFloat(*snap.WindSpeed, 'f', -1, 64)
	}

	return fmt.Sprintf("Сегодня - %s *%s*\nПогода: %s\nТемпература: днём %s° / ночью %s°\n☁️ Облачность: %s%%\n🌬 Ветер: %s м/с",
		weatherEmoji(desc),
		formatDateLine(now),
		capitalize(desc),
		formatTemp(snap.DayTemp),
		formatTemp(snap.NightTemp),
		clouds,
		wind,
	)
}

var currencyFlags = map[models.CurrencyCode]string{
	models.CurrencyUSD: "🇺🇸",
	models.CurrencyEUR: "🇪🇺",
	models.CurrencyPLN: "🇵🇱",
}

// CurrencySection renders the NBU rates block: one line per fixed currency
// code, in fixed order. A missing code renders the placeholder; a nil map
// means the source was unavailable.
func CurrencySection(rates models.Rates) string {
	if rates == nil {
		return currencyUnavailable
	}

	var b strings.Builder
	b.WriteString("💱 *Курс валют НБУ:*")
	for _, code := range models.DigestCurrencies {
		value := placeholder
		if rate, ok := rates[code]; ok {
			value = fmt.Sprintf("%.2f", rate)
		}
		fmt.Fprintf(&b, "\n%s %s: %s ₴", currencyFlags[code], code, value)
	}
	return b.String()
}

// Upcoming projects each birthday onto its next occurrence, sorted by date.
// The sort is stable so records sharing a date keep sheet order.
func Upcoming(birthdays []models.BirthdayRecord, today time.Time) []models.UpcomingBirthday {
	upcoming := make([]models.UpcomingBirthday, 0, len(birthdays))
	for _, b := range birthdays {
		next := datemath.NextOccurrence(b.Date, today)
		upcoming = append(upcoming, models.UpcomingBirthday{
			Name:           b.Name,
			NextOccurrence: next,
			DaysUntil:      datemath.DaysBetween(next, today),
		})
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].NextOccurrence.Before(upcoming[j].NextOccurrence)
	})
	return upcoming
}

// BirthdaySection renders everyone sharing the nearest upcoming birthday
// date. A nil slice means the source was unavailable.
func BirthdaySection(birthdays []models.BirthdayRecord, today time.Time) string {
	if birthdays == nil {
		return birthdayUnavailable
	}

	upcoming := Upcoming(birthdays, today)
	if len(upcoming) == 0 {
		return noUpcomingBirthdays
	}

	nearest := upcoming[0].NextOccurrence
	var b strings.Builder
	b.WriteString("📅 *Ближайшие дни рождения:*")
	for _, u := range upcoming {
		if !u.NextOccurrence.Equal(nearest) {
			break
		}
		fmt.Fprintf(&b, "\n👤 %s — %s (через %d дн.)", u.Name, u.NextOccurrence.Format("02.01"), u.DaysUntil)
	}
	return b.String()
}

// HolidaySection renders today's holidays, or an empty string when there are
// none (the digest then omits the section). A nil slice means the source was
// unavailable.
func HolidaySection(holidays []models.HolidayRecord, today time.Time) string {
	if holidays == nil {
		return holidayUnavailable
	}

	todayKey := models.MonthDay{Month: today.Month(), Day: today.Day()}
	var names []string
	for _, h := range holidays {
		if h.Date == todayKey {
			names = append(names, h.Name)
		}
	}
	if len(names) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📅 *Праздники сегодня (%s):*", today.Format("02.01.2006"))
	for _, name := range names {
		fmt.Fprintf(&b, "\n🎊 %s", name)
	}
	return b.String()
}
