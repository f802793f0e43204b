// Package notify alerts operators about onboarding problems.
package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// Telegram sends alerts to an operator chat
type Telegram struct {
	bot    *tele.Bot
	chat   tele.ChatID
	logger *zap.Logger
}

// NewTelegram creates a notifier for chatID. apiURL may be empty for the public Bot API.
func NewTelegram(token string, chatID int64, apiURL string, logger *zap.Logger) (*Telegram, error) {
	bot, err := tele.NewBot(tele.Settings{
		URL:     apiURL,
		Token:   token,
		Offline: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	return &Telegram{
		bot:    bot,
		chat:   tele.ChatID(chatID),
		logger: logger,
	}, nil
}

// Notify posts text to the operator chat
func (t *Telegram) Notify(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := t.bot.Send(t.chat, text); err != nil {
		return fmt.Errorf("failed to send alert: %w", err)
	}

	t.logger.Debug("Operator alert sent", zap.Int64("chat_id", int64(t.chat)))
	return nil
}

// Nop drops every alert
type Nop struct{}

// Notify does nothing
func (Nop) Notify(context.Context, string) error { return nil }
