package notify

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"

	"github.com/sipeed/chatwarden/pkg/host"
)

// SlackSink posts alert notifications to a Slack channel.
type SlackSink struct {
	client  *slack.Client
	channel string
}

func NewSlackSink(token, channel string) *SlackSink {
	return &SlackSink{
		client:  slack.New(token),
		channel: channel,
	}
}

func (s *SlackSink) Create(_ context.Context, spec host.Notification) (*host.Notification, error) {
	n := spec
	return &n, nil
}

func (s *SlackSink) Push(ctx context.Context, n *host.Notification, _ []int64) error {
	text := fmt.Sprintf("*%s*\n%s", n.BodyShort, n.BodyLong)
	_, _, err := s.client.PostMessageContext(ctx, s.channel,
		slack.MsgOptionText(text, false),
	)
	if err != nil {
		return fmt.Errorf("slack post: %w", err)
	}
	return nil
}
