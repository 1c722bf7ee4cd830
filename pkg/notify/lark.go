package notify

import (
	"context"
	"encoding/json"
	"fmt"

	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"

	"github.com/sipeed/chatwarden/pkg/host"
)

// LarkSink posts alert notifications to a Lark (Feishu) chat.
type LarkSink struct {
	client *lark.Client
	chatID string
}

func NewLarkSink(appID, appSecret, chatID string) *LarkSink {
	return &LarkSink{
		client: lark.NewClient(appID, appSecret),
		chatID: chatID,
	}
}

func (l *LarkSink) Create(_ context.Context, spec host.Notification) (*host.Notification, error) {
	n := spec
	return &n, nil
}

func (l *LarkSink) Push(ctx context.Context, n *host.Notification, _ []int64) error {
	content, err := json.Marshal(map[string]string{
		"text": n.BodyShort + "\n\n" + n.BodyLong,
	})
	if err != nil {
		return fmt.Errorf("lark content: %w", err)
	}

	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType(larkim.ReceiveIdTypeChatId).
		Body(larkim.NewCreateMessageReqBodyBuilder().
			ReceiveId(l.chatID).
			MsgType(larkim.MsgTypeText).
			Content(string(content)).
			Build()).
		Build()

	resp, err := l.client.Im.Message.Create(ctx, req)
	if err != nil {
		return fmt.Errorf("lark send: %w", err)
	}
	if !resp.Success() {
		return fmt.Errorf("lark send: code %d: %s", resp.Code, resp.Msg)
	}
	return nil
}
