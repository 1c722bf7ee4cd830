package notify

import (
	"context"
	"fmt"

	"github.com/mymmrac/telego"

	"github.com/sipeed/chatwarden/pkg/host"
)

// TelegramSink posts alert notifications to a Telegram chat.
type TelegramSink struct {
	bot    *telego.Bot
	chatID int64
}

func NewTelegramSink(token string, chatID int64) (*TelegramSink, error) {
	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot: %w", err)
	}
	return &TelegramSink{bot: bot, chatID: chatID}, nil
}

func (t *TelegramSink) Create(_ context.Context, spec host.Notification) (*host.Notification, error) {
	n := spec
	return &n, nil
}

func (t *TelegramSink) Push(ctx context.Context, n *host.Notification, _ []int64) error {
	text := n.BodyShort + "\n\n" + n.BodyLong
	_, err := t.bot.SendMessage(ctx, &telego.SendMessageParams{
		ChatID: telego.ChatID{ID: t.chatID},
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}
