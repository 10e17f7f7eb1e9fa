package models

import "time"

// MonthDay is an anniversary date: a recurring month/day with no year.
type MonthDay struct {
	Month time.Month
	Day   int
}

// BirthdayRecord is one row of the birthday sheet.
type BirthdayRecord struct {
	Name string
	Date MonthDay
}

// HolidayRecord is one row of the holiday sheet.
type HolidayRecord struct {
	Name string
	Date MonthDay
}

// ForecastEntry is a single 3-hour forecast bucket from the weather provider.
type ForecastEntry struct {
	Timestamp   time.Time
	Description string
	Temperature float64
	CloudCover  int
	WindSpeed   float64
}

// WeatherSnapshot holds the values the digest renders for one day.
// Pointer fields are nil when the underlying forecast bucket is missing.
type WeatherSnapshot struct {
	Description string
	DayTemp     *float64
	NightTemp   *float64
	CloudCover  *int
	WindSpeed   *float64
}

// CurrencyCode identifies a currency in the rates snapshot.
type CurrencyCode string

const (
	CurrencyUSD CurrencyCode = "USD"
	CurrencyEUR CurrencyCode = "EUR"
	CurrencyPLN CurrencyCode = "PLN"
)

// DigestCurrencies is the fixed set rendered in the digest, in display order.
var DigestCurrencies = []CurrencyCode{CurrencyUSD, CurrencyEUR, CurrencyPLN}

// Rates maps a currency code to its UAH rate.
type Rates map[CurrencyCode]float64

// UpcomingBirthday is a birthday record projected onto its next occurrence.
type UpcomingBirthday struct {
	Name           string
	NextOccurrence time.Time
	DaysUntil      int
}

// Reminder is a birthday reminder due today.
type Reminder struct {
	Name      string
	DaysUntil int
	Text      string
}
