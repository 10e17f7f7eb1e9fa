package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration, read once at process start.
type Config struct {
	TelegramToken string
	ChatID        int64

	OpenWeatherAPIKey string
	WeatherLat        float64
	WeatherLon        float64
	WeatherLang       string

	NBUAPIURL string

	GoogleAPIKey   string
	BirthdaysSheet string
	BirthdaysRange string
	HolidaysSheet  string
	HolidaysRange  string

	DigestHour    int
	DigestMinute  int
	TimeZone      string
	Location      *time.Location
	SourceTimeout time.Duration

	LedgerPath string
}

const defaultNBUURL = "https://bank.gov.ua/NBUStatService/v1/statdirectory/exchangenew?json"

// Load reads configuration from an optional .env file and the environment.
func Load() (*Config, error) {
	// Missing .env is fine; the environment may be populated directly.
	_ = godotenv.Load()

	cfg := &Config{
		TelegramToken:     os.Getenv("TELEGRAM_BOT_TOKEN"),
		OpenWeatherAPIKey: os.Getenv("OPENWEATHER_API_KEY"),
		WeatherLang:       getEnv("OPENWEATHER_LANG", "ru"),
		NBUAPIURL:         getEnv("NBU_API_URL", defaultNBUURL),
		GoogleAPIKey:      os.Getenv("GOOGLE_API_KEY"),
		BirthdaysSheet:    os.Getenv("BIRTHDAYS_SHEET_ID"),
		BirthdaysRange:    getEnv("BIRTHDAYS_RANGE", "Sheet1!A2:B"),
		HolidaysSheet:     os.Getenv("HOLIDAYS_SHEET_ID"),
		HolidaysRange:     getEnv("HOLIDAYS_RANGE", "Sheet2!A2:B"),
		TimeZone:          getEnv("TZ", "Europe/Kyiv"),
		LedgerPath:        getEnv("REMINDER_LEDGER_PATH", "data/reminders.db"),
	}

	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	var err error
	if cfg.ChatID, err = strconv.ParseInt(os.Getenv("CHAT_ID"), 10, 64); err != nil {
		return nil, fmt.Errorf("invalid CHAT_ID: %w", err)
	}
	if cfg.WeatherLat, err = getEnvFloat("WEATHER_LAT", 50.4366); err != nil {
		return nil, err
	}
	if cfg.WeatherLon, err = getEnvFloat("WEATHER_LON", 30.2353); err != nil {
		return nil, err
	}
	if cfg.DigestHour, err = getEnvInt("DIGEST_HOUR", 9); err != nil {
		return nil, err
	}
	if cfg.DigestMinute, err = getEnvInt("DIGEST_MINUTE", 0); err != nil {
		return nil, err
	}

	timeoutSec, err := getEnvInt("SOURCE_TIMEOUT_SECONDS", 15)
	if err != nil {
		return nil, err
	}
	cfg.SourceTimeout = time.Duration(timeoutSec) * time.Second

	if cfg.Location, err = time.LoadLocation(cfg.TimeZone); err != nil {
		return nil, fmt.Errorf("invalid TZ %q: %w", cfg.TimeZone, err)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvFloat(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
