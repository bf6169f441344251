package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"
)

// Alerter pushes short plain-text alerts to the admins.
type Alerter interface {
	Alert(ctx context.Context, text string) error
}

// TelegramAlerter posts alerts to one chat through a bot.
type TelegramAlerter struct {
	bot    *telego.Bot
	chatID int64
}

// NewTelegramAlerter validates the token and prepares the bot client.
func NewTelegramAlerter(token string, chatID int64) (*TelegramAlerter, error) {
	bot, err := telego.NewBot(token, telego.WithDiscardLogger())
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return &TelegramAlerter{bot: bot, chatID: chatID}, nil
}

func (a *TelegramAlerter) Alert(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := a.bot.SendMessage(tu.Message(tu.ID(a.chatID), text)); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// LogAlerter is used when Telegram is not configured.
type LogAlerter struct {
	Logger *slog.Logger
}

func (a LogAlerter) Alert(_ context.Context, text string) error {
	logger := a.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("admin alert (telegram disabled)", "text", text)
	return nil
}

// RecordingAlerter keeps alerts in memory.
type RecordingAlerter struct {
	mu     sync.Mutex
	alerts []string
	Err    error
}

func (a *RecordingAlerter) Alert(_ context.Context, text string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.Err != nil {
		return a.Err
	}
	a.alerts = append(a.alerts, text)
	return nil
}

// Alerts returns a copy of what was sent.
func (a *RecordingAlerter) Alerts() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.alerts...)
}
