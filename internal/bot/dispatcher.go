// Package bot wires the triggers to the digest pipeline: the daily cron tick,
// the /start command, and the inline-keyboard callbacks.
package bot

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"piglet-bot/internal/digest"
	"piglet-bot/internal/models"
	"piglet-bot/internal/telegram"
)

// Callback data values understood by the dispatcher.
const (
	CallbackNearestBirthday = "nearest_birthday"
	CallbackNearestHoliday  = "nearest_holiday"
)

// Transport is the messaging collaborator. Satisfied by *telegram.Service.
type Transport interface {
	SendMessage(ctx context.Context, chatID int64, text string, markdown bool) error
	AnswerCallback(ctx context.Context, callbackID string) error
}

// WeatherProvider returns forecast buckets for the configured location.
type WeatherProvider interface {
	FetchForecast(ctx context.Context) ([]models.ForecastEntry, error)
}

// CurrencyProvider returns the current exchange rates.
type CurrencyProvider interface {
	FetchRates(ctx context.Context) (models.Rates, error)
}

// BirthdayProvider returns the birthday list, re-fetched on every call.
type BirthdayProvider interface {
	Fetch(ctx context.Context) ([]models.BirthdayRecord, error)
}

// HolidayProvider returns the holiday list, re-fetched on every call.
type HolidayProvider interface {
	Fetch(ctx context.Context) ([]models.HolidayRecord, error)
}

// Sources bundles the four digest data providers.
type Sources struct {
	Weather   WeatherProvider
	Currency  CurrencyProvider
	Birthdays BirthdayProvider
	Holidays  HolidayProvider
}

// ReminderLedger gates reminder delivery to once per key per day.
// Satisfied by *storage.Ledger.
type ReminderLedger interface {
	MarkFired(day time.Time, name string, daysUntil int) (bool, error)
}

// Clock abstracts "now" so tests can pin the date.
type Clock interface {
	Now() time.Time
}

// LocationClock returns wall-clock time in a fixed location.
type LocationClock struct {
	Location *time.Location
}

// Now returns the current time in the clock's location.
func (c LocationClock) Now() time.Time {
	return time.Now().In(c.Location)
}

// Config holds the dispatcher settings.
type Config struct {
	ChatID        int64
	DigestHour    int
	DigestMinute  int
	Location      *time.Location
	SourceTimeout time.Duration
}

// Dispatcher owns the recurring schedule and the on-demand triggers.
// Invocations are independent; nothing mutable is shared across them.
type Dispatcher struct {
	transport Transport
	sources   Sources
	ledger    ReminderLedger
	clock     Clock
	cfg       *Config
	log       zerolog.Logger
	cron      *cron.Cron
}

// New creates the dispatcher. Start must be called to arm the schedule.
func New(transport Transport, sources Sources, ledger ReminderLedger, clock Clock, cfg *Config) *Dispatcher {
	return &Dispatcher{
		transport: transport,
		sources:   sources,
		ledger:    ledger,
		clock:     clock,
		cfg:       cfg,
		log:       zerolog.New(os.Stdout).With().Timestamp().Str("component", "Dispatcher").Logger(),
		cron:      cron.New(cron.WithLocation(cfg.Location)),
	}
}

// Start arms the daily digest schedule.
func (d *Dispatcher) Start() error {
	spec := fmt.Sprintf("%d %d * * *", d.cfg.DigestMinute, d.cfg.DigestHour)
	if _, err := d.cron.AddFunc(spec, d.RunDailyTick); err != nil {
		return fmt.Errorf("failed to schedule daily digest: %w", err)
	}
	d.cron.Start()
	d.log.Info().Str("spec", spec).Str("tz", d.cfg.Location.String()).Msg("Daily digest scheduled")
	return nil
}

// Stop halts the schedule and waits for a running tick to finish.
func (d *Dispatcher) Stop() {
	<-d.cron.Stop().Done()
}

// RunDailyTick performs one scheduled firing: birthday reminders first, then
// the full digest. Any panic or error is logged and swallowed so the
// schedule keeps running.
func (d *Dispatcher) RunDailyTick() {
	log := d.log.With().Str("invocation", uuid.NewString()).Str("trigger", "schedule").Logger()
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("Daily tick failed")
		}
	}()

	ctx := context.Background()
	d.sendReminders(ctx, log)

	if err := d.sendDigest(ctx, d.cfg.ChatID, digest.GreetingDaily, log); err != nil {
		log.Error().Err(err).Msg("Failed to send daily digest")
		return
	}
	log.Info().Msg("Daily digest sent")
}

// HandleMessage logs every incoming chat id (handy for configuring CHAT_ID)
// and serves the /start command with an on-demand digest.
func (d *Dispatcher) HandleMessage(msg telegram.Message) error {
	d.log.Info().Int64("chat_id", msg.Chat.ID).Msg("Message received")

	if !strings.HasPrefix(msg.Text, "/start") {
		return nil
	}

	log := d.log.With().Str("invocation", uuid.NewString()).Str("trigger", "start").Logger()
	return d.sendDigest(context.Background(), msg.Chat.ID, digest.GreetingStart, log)
}

// HandleCallback serves the single-section buttons. The callback is always
// answered, even when the section fetch fails.
func (d *Dispatcher) HandleCallback(cb telegram.CallbackQuery) error {
	ctx := context.Background()
	defer func() {
		if err := d.transport.AnswerCallback(ctx, cb.ID); err != nil {
			d.log.Warn().Err(err).Str("callback_id", cb.ID).Msg("Failed to answer callback")
		}
	}()

	if cb.Message == nil {
		return nil
	}
	chatID := cb.Message.Chat.ID
	log := d.log.With().Str("invocation", uuid.NewString()).Str("trigger", cb.Data).Logger()

	switch cb.Data {
	case CallbackNearestBirthday:
		birthdays, err := d.fetchBirthdays(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Birthday source unavailable")
			birthdays = nil
		}
		return d.transport.SendMessage(ctx, chatID, digest.BirthdaySection(birthdays, d.clock.Now()), false)
	case CallbackNearestHoliday:
		holidays, err := d.fetchHolidays(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Holiday source unavailable")
			holidays = nil
		}
		section := digest.HolidaySection(holidays, d.clock.Now())
		if section == "" {
			section = digest.NoHolidaysToday
		}
		return d.transport.SendMessage(ctx, chatID, section, true)
	default:
		return nil
	}
}

// sendReminders evaluates today's birthday reminders and sends each one that
// has not fired yet. Failures are logged and never block the digest phase.
func (d *Dispatcher) sendReminders(ctx context.Context, log zerolog.Logger) {
	birthdays, err := d.fetchBirthdays(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Skipping reminders, birthday source unavailable")
		return
	}

	today := d.clock.Now()
	for _, reminder := range digest.EvaluateReminders(birthdays, today) {
		fired, err := d.ledger.MarkFired(today, reminder.Name, reminder.DaysUntil)
		if err != nil {
			// Prefer a possible duplicate over a missed reminder.
			log.Warn().Err(err).Str("name", reminder.Name).Msg("Reminder ledger failed, sending anyway")
			fired = true
		}
		if !fired {
			log.Info().Str("name", reminder.Name).Int("days", reminder.DaysUntil).Msg("Reminder already fired today")
			continue
		}
		if err := d.transport.SendMessage(ctx, d.cfg.ChatID, reminder.Text, false); err != nil {
			log.Error().Err(err).Str("name", reminder.Name).Msg("Failed to send reminder")
		}
	}
}

// snapshots holds the settled result of one fetch-all pass. A nil field
// means that source failed and its section degrades to a placeholder.
type snapshots struct {
	weather   *models.WeatherSnapshot
	rates     models.Rates
	birthdays []models.BirthdayRecord
	holidays  []models.HolidayRecord
}

// fetchAll runs the four source fetches concurrently and waits until all of
// them settle. One failing or slow source never cancels the others.
func (d *Dispatcher) fetchAll(ctx context.Context, log zerolog.Logger) snapshots {
	now := d.clock.Now()

	var snaps snapshots
	var wg sync.WaitGroup
	wg.Add(4)

	go func() {
		defer wg.Done()
		fctx, cancel := d.sourceContext(ctx)
		defer cancel()
		entries, err := d.sources.Weather.FetchForecast(fctx)
		if err != nil {
			log.Warn().Err(err).Msg("Weather source unavailable")
			return
		}
		snaps.weather = digest.BuildWeatherSnapshot(entries, now)
	}()
	go func() {
		defer wg.Done()
		fctx, cancel := d.sourceContext(ctx)
		defer cancel()
		rates, err := d.sources.Currency.FetchRates(fctx)
		if err != nil {
			log.Warn().Err(err).Msg("Currency source unavailable")
			return
		}
		snaps.rates = rates
	}()
	go func() {
		defer wg.Done()
		birthdays, err := d.fetchBirthdays(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Birthday source unavailable")
			return
		}
		snaps.birthdays = birthdays
	}()
	go func() {
		defer wg.Done()
		holidays, err := d.fetchHolidays(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("Holiday source unavailable")
			return
		}
		snaps.holidays = holidays
	}()

	wg.Wait()
	return snaps
}

// sendDigest composes the full digest from a fetch-all pass and sends it as
// one Markdown message.
func (d *Dispatcher) sendDigest(ctx context.Context, chatID int64, greeting string, log zerolog.Logger) error {
	snaps := d.fetchAll(ctx, log)
	now := d.clock.Now()

	text := digest.Compose(
		greeting,
		digest.WeatherSection(snaps.weather, now),
		digest.CurrencySection(snaps.rates),
		digest.BirthdaySection(snaps.birthdays, now),
		digest.HolidaySection(snaps.holidays, now),
	)
	return d.transport.SendMessage(ctx, chatID, text, true)
}

func (d *Dispatcher) fetchBirthdays(ctx context.Context) ([]models.BirthdayRecord, error) {
	fctx, cancel := d.sourceContext(ctx)
	defer cancel()
	return d.sources.Birthdays.Fetch(fctx)
}

func (d *Dispatcher) fetchHolidays(ctx context.Context) ([]models.HolidayRecord, error) {
	fctx, cancel := d.sourceContext(ctx)
	defer cancel()
	return d.sources.Holidays.Fetch(fctx)
}

// sourceContext bounds a single source fetch. A timed-out source counts as
// unavailable; the other fetches keep running.
func (d *Dispatcher) sourceContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.cfg.SourceTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d.cfg.SourceTimeout)
}
