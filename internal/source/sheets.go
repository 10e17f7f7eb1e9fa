package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"piglet-bot/internal/models"
)

const sheetsAPIBase = "https://sheets.googleapis.com/v4/spreadsheets"

// Sheets reads raw cell rows from the Google Sheets values API.
type Sheets struct {
	apiKey string
	base   string
	client *http.Client
}

// NewSheets creates the tabular source client.
func NewSheets(apiKey string) *Sheets {
	return &Sheets{apiKey: apiKey, base: sheetsAPIBase, client: newHTTPClient()}
}

// Values returns the raw rows of the given range. Cells come back as strings.
func (s *Sheets) Values(ctx context.Context, spreadsheetID, readRange string) ([][]string, error) {
	endpoint := fmt.Sprintf("%s/%s/values/%s?key=%s",
		s.base, spreadsheetID, url.PathEscape(readRange), url.QueryEscape(s.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, unavailable("sheets request", err)
	}

	var data struct {
		Values [][]string `json:"values"`
	}
	if err := getJSON(s.client, req, func(r io.Reader) error {
		return json.NewDecoder(r).Decode(&data)
	}); err != nil {
		return nil, unavailable("sheets fetch", err)
	}
	return data.Values, nil
}

// RowSource is the raw tabular collaborator behind the birthday and holiday
// adapters. Satisfied by *Sheets.
type RowSource interface {
	Values(ctx context.Context, spreadsheetID, readRange string) ([][]string, error)
}

// Birthdays adapts sheet rows of the form [name, "dd.mm"] into records.
type Birthdays struct {
	rows          RowSource
	spreadsheetID string
	readRange     string
	log           zerolog.Logger
}

// NewBirthdays creates the birthday adapter over a row source.
func NewBirthdays(rows RowSource, spreadsheetID, readRange string, log zerolog.Logger) *Birthdays {
	return &Birthdays{rows: rows, spreadsheetID: spreadsheetID, readRange: readRange, log: log}
}

// Fetch re-reads the sheet on every call; there is no cache. Malformed rows
// are logged and skipped.
func (b *Birthdays) Fetch(ctx context.Context) ([]models.BirthdayRecord, error) {
	rows, err := b.rows.Values(ctx, b.spreadsheetID, b.readRange)
	if err != nil {
		return nil, err
	}

	records := make([]models.BirthdayRecord, 0, len(rows))
	for _, row := range rows {
		if len(row) < 2 || row[0] == "" {
			continue
		}
		md, err := parseDayDotMonth(row[1])
		if err != nil {
			b.log.Warn().Str("name", row[0]).Str("date", row[1]).Msg("Skipping birthday row with bad date")
			continue
		}
		records = append(records, models.BirthdayRecord{Name: strings.TrimSpace(row[0]), Date: md})
	}
	return records, nil
}

// parseDayDotMonth parses "dd.mm" into a MonthDay.
func parseDayDotMonth(value string) (models.MonthDay, error) {
	parts := strings.SplitN(strings.TrimSpace(value), ".", 2)
	if len(parts) != 2 {
		return models.MonthDay{}, fmt.Errorf("expected dd.mm, got %q", value)
	}
	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return models.MonthDay{}, fmt.Errorf("bad day in %q: %w", value, err)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return models.MonthDay{}, fmt.Errorf("bad month in %q: %w", value, err)
	}
	return validMonthDay(month, day, value)
}

// ukrainianMonths maps genitive Ukrainian month names, as they appear in the
// holiday sheet, to month numbers.
var ukrainianMonths = map[string]time.Month{
	"січня":     time.January,
	"лютого":    time.February,
	"березня":   time.March,
	"квітня":    time.April,
	"травня":    time.May,
	"червня":    time.June,
	"липня":     time.July,
	"серпня":    time.August,
	"вересня":   time.September,
	"жовтня":    time.October,
	"листопада": time.November,
	"грудня":    time.December,
}

// Holidays adapts sheet rows of the form ["D <month name>", name].
type Holidays struct {
	rows          RowSource
	spreadsheetID string
	readRange     string
	log           zerolog.Logger
}

// NewHolidays creates the holiday adapter over a row source.
func NewHolidays(rows RowSource, spreadsheetID, readRange string, log zerolog.Logger) *Holidays {
	return &Holidays{rows: rows, spreadsheetID: spreadsheetID, readRange: readRange, log: log}
}

// Fetch re-reads the sheet on every call. Rows with an unknown month name or
// missing cells are logged and skipped.
func (h *Holidays) Fetch(ctx context.Context) ([]models.HolidayRecord, error) {
	rows, err := h.rows.Values(ctx, h.spreadsheetID, h.readRange)
	if err != nil {
		return nil, err
	}

	records := make([]models.HolidayRecord, 0, len(rows))
	for _, row := range rows {
		if len(row) < 2 || row[0] == "" || row[1] == "" {
			continue
		}
		md, err := parseUkrainianDate(row[0])
		if err != nil {
			h.log.Warn().Str("date", row[0]).Str("name", row[1]).Msg("Skipping holiday row with bad date")
			continue
		}
		records = append(records, models.HolidayRecord{Name: strings.TrimSpace(row[1]), Date: md})
	}
	return records, nil
}

// parseUkrainianDate parses "5 січня" into a MonthDay.
func parseUkrainianDate(value string) (models.MonthDay, error) {
	parts := strings.Fields(strings.TrimSpace(value))
	if len(parts) != 2 {
		return models.MonthDay{}, fmt.Errorf("expected \"day month\", got %q", value)
	}
	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return models.MonthDay{}, fmt.Errorf("bad day in %q: %w", value, err)
	}
	month, ok := ukrainianMonths[strings.ToLower(parts[1])]
	if !ok {
		return models.MonthDay{}, fmt.Errorf("unknown month name in %q", value)
	}
	return validMonthDay(int(month), day, value)
}

func validMonthDay(month, day int, raw string) (models.MonthDay, error) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return models.MonthDay{}, fmt.Errorf("date out of range in %q", raw)
	}
	return models.MonthDay{Month: time.Month(month), Day: day}, nil
}
