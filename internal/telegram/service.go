// Package telegram is a thin Telegram Bot API transport: sending messages,
// answering callback queries, and a long-polling update loop that feeds
// injected handlers.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
)

const defaultAPIBase = "https://api.telegram.org"

// pollTimeout is the long-poll wait passed to getUpdates, in seconds.
const pollTimeout = 30

// MessageHandler processes one incoming message.
type MessageHandler func(msg Message) error

// CallbackHandler processes one incoming callback query.
type CallbackHandler func(cb CallbackQuery) error

// Chat identifies a Telegram chat.
type Chat struct {
	ID int64 `json:"id"`
}

// Message is an incoming chat message.
type Message struct {
	MessageID int64  `json:"message_id"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text"`
}

// CallbackQuery is an inline-keyboard button press.
type CallbackQuery struct {
	ID      string   `json:"id"`
	Data    string   `json:"data"`
	Message *Message `json:"message"`
}

// Update is one element of a getUpdates response.
type Update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *Message       `json:"message"`
	CallbackQuery *CallbackQuery `json:"callback_query"`
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
}

// Config holds the transport settings.
type Config struct {
	Token string
	// APIBase overrides the Bot API server, for tests.
	APIBase string
}

// Service wraps the Bot API endpoints the dispatcher needs.
type Service struct {
	cfg             *Config
	client          *http.Client
	log             zerolog.Logger
	messageHandler  MessageHandler
	callbackHandler CallbackHandler
	offset          int64
}

// NewService creates a new Telegram service.
func NewService(cfg *Config) *Service {
	if cfg.APIBase == "" {
		cfg.APIBase = defaultAPIBase
	}
	return &Service{
		cfg: cfg,
		// The client timeout must exceed the long-poll wait.
		client: &http.Client{Timeout: (pollTimeout + 20) * time.Second},
		log:    zerolog.New(os.Stdout).With().Timestamp().Str("component", "Telegram").Logger(),
	}
}

// SetMessageHandler sets the handler for incoming messages.
func (s *Service) SetMessageHandler(handler MessageHandler) {
	s.messageHandler = handler
}

// SetCallbackHandler sets the handler for incoming callback queries.
func (s *Service) SetCallbackHandler(handler CallbackHandler) {
	s.callbackHandler = handler
}

// SendMessage sends a text message to the chat, optionally as Markdown.
func (s *Service) SendMessage(ctx context.Context, chatID int64, text string, markdown bool) error {
	payload := map[string]any{
		"chat_id": chatID,
		"text":    text,
	}
	if markdown {
		payload["parse_mode"] = "Markdown"
	}
	if err := s.call(ctx, "sendMessage", payload, nil); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// AnswerCallback acknowledges a callback query so the client stops the
// button spinner.
func (s *Service) AnswerCallback(ctx context.Context, callbackID string) error {
	payload := map[string]any{"callback_query_id": callbackID}
	if err := s.call(ctx, "answerCallbackQuery", payload, nil); err != nil {
		return fmt.Errorf("failed to answer callback: %w", err)
	}
	return nil
}

// Run polls for updates until the context is cancelled, dispatching each
// update to the configured handlers. Handler errors are logged; they never
// stop the loop.
func (s *Service) Run(ctx context.Context) error {
	s.log.Info().Msg("Starting update polling")
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		updates, err := s.getUpdates(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return ctx.Err()
			}
			s.log.Error().Err(err).Msg("Failed to fetch updates")
			// Back off briefly so a broken network does not spin the loop.
			select {
			case <-time.After(3 * time.Second):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}

		for _, update := range updates {
			s.dispatch(update)
			if update.UpdateID >= s.offset {
				s.offset = update.UpdateID + 1
			}
		}
	}
}

func (s *Service) dispatch(update Update) {
	switch {
	case update.Message != nil:
		if s.messageHandler == nil {
			return
		}
		if err := s.messageHandler(*update.Message); err != nil {
			s.log.Error().Err(err).Int64("chat_id", update.Message.Chat.ID).Msg("Error handling message")
		}
	case update.CallbackQuery != nil:
		if s.callbackHandler == nil {
			return
		}
		if err := s.callbackHandler(*update.CallbackQuery); err != nil {
			s.log.Error().Err(err).Str("data", update.CallbackQuery.Data).Msg("Error handling callback")
		}
	}
}

func (s *Service) getUpdates(ctx context.Context) ([]Update, error) {
	payload := map[string]any{
		"offset":  s.offset,
		"timeout": pollTimeout,
	}
	var updates []Update
	if err := s.call(ctx, "getUpdates", payload, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// call posts a JSON payload to a Bot API method and decodes the result.
func (s *Service) call(ctx context.Context, method string, payload any, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", method, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", s.cfg.APIBase, s.cfg.Token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", method, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var api apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&api); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}
	if !api.OK {
		return fmt.Errorf("%s rejected: %s", method, api.Description)
	}
	if result != nil {
		if err := json.Unmarshal(api.Result, result); err != nil {
			return fmt.Errorf("failed to decode %s result: %w", method, err)
		}
	}
	return nil
}
