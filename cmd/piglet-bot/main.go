package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"piglet-bot/internal/bot"
	"piglet-bot/internal/config"
	"piglet-bot/internal/source"
	"piglet-bot/internal/storage"
	"piglet-bot/internal/telegram"
)

func main() {
	fmt.Println("🐷 Piglet Daily Digest Bot")
	fmt.Println("==========================")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize the fired-reminder ledger
	ledger, err := storage.NewLedger(cfg.LedgerPath)
	if err != nil {
		fmt.Printf("Error initializing reminder ledger: %v\n", err)
		os.Exit(1)
	}

	// Initialize Telegram transport
	tg := telegram.NewService(&telegram.Config{Token: cfg.TelegramToken})

	// Initialize source adapters
	sourceLog := zerolog.New(os.Stdout).With().Timestamp().Str("component", "Sources").Logger()
	sheets := source.NewSheets(cfg.GoogleAPIKey)
	sources := bot.Sources{
		Weather:   source.NewOpenWeather(cfg.OpenWeatherAPIKey, cfg.WeatherLat, cfg.WeatherLon, cfg.WeatherLang, cfg.Location),
		Currency:  source.NewNBU(cfg.NBUAPIURL),
		Birthdays: source.NewBirthdays(sheets, cfg.BirthdaysSheet, cfg.BirthdaysRange, sourceLog),
		Holidays:  source.NewHolidays(sheets, cfg.HolidaysSheet, cfg.HolidaysRange, sourceLog),
	}

	// Initialize the dispatcher and wire the triggers
	dispatcher := bot.New(tg, sources, ledger, bot.LocationClock{Location: cfg.Location}, &bot.Config{
		ChatID:        cfg.ChatID,
		DigestHour:    cfg.DigestHour,
		DigestMinute:  cfg.DigestMinute,
		Location:      cfg.Location,
		SourceTimeout: cfg.SourceTimeout,
	})
	tg.SetMessageHandler(dispatcher.HandleMessage)
	tg.SetCallbackHandler(dispatcher.HandleCallback)

	if err := dispatcher.Start(); err != nil {
		fmt.Printf("Error starting scheduler: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := tg.Run(ctx); err != nil && ctx.Err() == nil {
			fmt.Printf("Polling stopped: %v\n", err)
		}
	}()

	fmt.Printf("\n✅ Бот запущен. Рассылка в %02d:%02d (%s)\n", cfg.DigestHour, cfg.DigestMinute, cfg.TimeZone)

	// Wait for interrupt signal
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	fmt.Println("\n\nShutting down...")
	cancel()
	dispatcher.Stop()
	if err := ledger.Close(); err != nil {
		fmt.Printf("Error closing ledger: %v\n", err)
	}
	fmt.Println("Goodbye! 👋")
}
