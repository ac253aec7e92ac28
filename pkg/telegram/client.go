// Package telegram adapts the Telegram Bot API to the bot's transport-neutral types.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/noah-isme/linguasaurus-bot/internal/dto"
	"github.com/noah-isme/linguasaurus-bot/pkg/config"
)

const (
	notModified        = "message is not modified"
	defaultPollTimeout = 60
)

// Client wraps the Bot API and implements the outbound messenger contract.
type Client struct {
	api         *tgbotapi.BotAPI
	pollTimeout int
	logger      *zap.Logger
}

// New authenticates against the Bot API.
func New(cfg config.BotConfig, logger *zap.Logger) (*Client, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("connect bot api: %w", err)
	}
	api.Debug = cfg.Debug
	logger.Info("bot authorized", zap.String("username", api.Self.UserName))
	return &Client{api: api, pollTimeout: pollTimeout(cfg), logger: logger}, nil
}

// pollTimeout is the long-poll timeout in seconds.
func pollTimeout(cfg config.BotConfig) int {
	if cfg.PollTimeout <= 0 {
		return defaultPollTimeout
	}
	return cfg.PollTimeout
}

// Username returns the bot account name.
func (c *Client) Username() string {
	return c.api.Self.UserName
}

// Updates long-polls the Bot API until ctx is cancelled. Updates the bot does not
// handle are dropped.
func (c *Client) Updates(ctx context.Context) <-chan dto.Update {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = c.pollTimeout
	cfg.AllowedUpdates = []string{"message", "callback_query"}
	source := c.api.GetUpdatesChan(cfg)

	out := make(chan dto.Update)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				c.api.StopReceivingUpdates()
				return
			case raw, ok := <-source:
				if !ok {
					return
				}
				update, ok := Convert(raw)
				if !ok {
					continue
				}
				select {
				case out <- update:
				case <-ctx.Done():
					c.api.StopReceivingUpdates()
					return
				}
			}
		}
	}()
	return out
}

// Ping checks that the Bot API is reachable. It returns when ctx is done even if
// the request is still in flight.
func (c *Client) Ping(ctx context.Context) error {
	return withContext(ctx, func() error {
		_, err := c.api.GetMe()
		return err
	})
}

// withContext runs call in the background and waits for it or for ctx.
func withContext(ctx context.Context, call func() error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() { done <- call() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SendText sends a new message and returns its id.
func (c *Client) SendText(ctx context.Context, chatID int64, view dto.View) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	msg := tgbotapi.NewMessage(chatID, view.Text)
	if markup, ok := keyboard(view.Keyboard); ok {
		msg.ReplyMarkup = markup
	}
	sent, err := c.api.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("send message: %w", err)
	}
	return sent.MessageID, nil
}

// SendPlain sends text without a keyboard.
func (c *Client) SendPlain(ctx context.Context, chatID int64, text string) error {
	_, err := c.SendText(ctx, chatID, dto.View{Text: text})
	return err
}

// EditText replaces a menu in place. Re-rendering an unchanged menu is not an error.
func (c *Client) EditText(ctx context.Context, chatID int64, messageID int, view dto.View) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	edit := tgbotapi.NewEditMessageText(chatID, messageID, view.Text)
	if markup, ok := keyboard(view.Keyboard); ok {
		edit.ReplyMarkup = &markup
	}
	if _, err := c.api.Request(edit); err != nil {
		if IsNotModified(err) {
			return nil
		}
		return fmt.Errorf("edit message: %w", err)
	}
	return nil
}

// SendDocument re-sends a stored file by reference with its name as caption.
func (c *Client) SendDocument(ctx context.Context, chatID int64, doc dto.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewDocument(chatID, tgbotapi.FileID(doc.FileRef))
	msg.Caption = doc.FileName
	if _, err := c.api.Send(msg); err != nil {
		return fmt.Errorf("send document: %w", err)
	}
	return nil
}

// SendFile uploads generated content as a document.
func (c *Client) SendFile(ctx context.Context, chatID int64, name string, content []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: content})
	if _, err := c.api.Send(msg); err != nil {
		return fmt.Errorf("send file: %w", err)
	}
	return nil
}

// AnswerCallback acknowledges a button press, optionally with a toast or alert.
func (c *Client) AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cb := tgbotapi.NewCallback(callbackID, text)
	cb.ShowAlert = alert
	if _, err := c.api.Request(cb); err != nil {
		return fmt.Errorf("answer callback: %w", err)
	}
	return nil
}

// IsNotModified reports the Bot API error returned when an edit changes nothing.
func IsNotModified(err error) bool {
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return strings.Contains(apiErr.Message, notModified)
	}
	return err != nil && strings.Contains(err.Error(), notModified)
}

func keyboard(kb dto.Keyboard) (tgbotapi.InlineKeyboardMarkup, bool) {
	if len(kb) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(kb))
	for _, r := range kb {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(r))
		for _, b := range r {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...), true
}
