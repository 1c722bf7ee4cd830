package notify

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/sipeed/chatwarden/pkg/host"
)

// DiscordSink posts alert notifications to a Discord channel.
type DiscordSink struct {
	session   *discordgo.Session
	channelID string
}

func NewDiscordSink(botToken, channelID string) (*DiscordSink, error) {
	session, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	return &DiscordSink{session: session, channelID: channelID}, nil
}

func (d *DiscordSink) Create(_ context.Context, spec host.Notification) (*host.Notification, error) {
	n := spec
	return &n, nil
}

func (d *DiscordSink) Push(ctx context.Context, n *host.Notification, _ []int64) error {
	text := fmt.Sprintf("**%s**\n%s", n.BodyShort, n.BodyLong)
	if _, err := d.session.ChannelMessageSend(d.channelID, text, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("discord send: %w", err)
	}
	return nil
}
