// Package alerts builds keyword alert records and delivers them to the
// configured recipients through the host notification sink. Delivery is
// fire-and-forget: the triggering hook never waits on it and never sees
// its failures.
package alerts

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sipeed/chatwarden/pkg/host"
	"github.com/sipeed/chatwarden/pkg/logger"
	"github.com/sipeed/chatwarden/pkg/normalize"
	"github.com/sipeed/chatwarden/pkg/scanner"
	"github.com/sipeed/chatwarden/pkg/settings"
)

// NotificationType identifies keyword alert notifications at the host.
const NotificationType = "chat-perms-keyword-alert"

// Record is an immutable keyword alert. It is created once per triggering
// message and discarded after dispatch.
type Record struct {
	MessageContent  string   `json:"messageContent"`
	SenderUID       int64    `json:"senderUid"`
	SenderUsername  string   `json:"senderUsername"`
	RoomID          int64    `json:"roomId"`
	Timestamp       int64    `json:"timestamp"`
	MatchedKeywords []string `json:"matchedKeywords"`
}

// Params are the inputs to Build.
type Params struct {
	MessageContent  string
	SenderUID       int64
	SenderUsername  string
	RoomID          int64
	MatchedKeywords []string
}

// Build constructs a Record with deterministic fallbacks: a blank sender
// name becomes "unknown", negative identifiers become 0, a nil match list
// becomes empty. The timestamp is always the current time in milliseconds,
// strictly positive.
func Build(p Params) Record {
	name := strings.TrimSpace(p.SenderUsername)
	if name == "" {
		name = "unknown"
	}
	if p.SenderUID < 0 {
		p.SenderUID = 0
	}
	if p.RoomID < 0 {
		p.RoomID = 0
	}
	matched := p.MatchedKeywords
	if matched == nil {
		matched = []string{}
	}
	return Record{
		MessageContent:  p.MessageContent,
		SenderUID:       p.SenderUID,
		SenderUsername:  name,
		RoomID:          p.RoomID,
		Timestamp:       time.Now().UnixMilli(),
		MatchedKeywords: matched,
	}
}

// Outcome is what a content-bearing hook learns from keyword processing.
type Outcome struct {
	Matched  bool     `json:"matched"`
	Keywords []string `json:"keywords"`
}

// Dispatcher scans message events and delivers alerts.
type Dispatcher struct {
	sink    host.NotificationSink
	dir     host.UserDirectory
	resolve func() settings.Settings

	// AfterDispatch, when set, runs after each detached delivery attempt
	// with its outcome. Used by the live alert feed and by tests.
	AfterDispatch func(alert Record, delivered bool)
}

func NewDispatcher(sink host.NotificationSink, dir host.UserDirectory, resolve func() settings.Settings) *Dispatcher {
	return &Dispatcher{sink: sink, dir: dir, resolve: resolve}
}

// Dispatch delivers one alert to the configured recipients. It returns
// false without side effects when the alert is malformed or no recipients
// are configured. Delivery failures are logged and reported as false,
// never raised and never retried here.
func (d *Dispatcher) Dispatch(ctx context.Context, alert Record) bool {
	if alert.Timestamp <= 0 || len(alert.MatchedKeywords) == 0 {
		logger.WarnC("alerts", "Dropping malformed alert")
		return false
	}
	recipients := d.resolve().AlertRecipientUIDs
	if len(recipients) == 0 {
		logger.WarnC("alerts", "No alert recipients configured")
		return false
	}

	keywords := strings.Join(alert.MatchedKeywords, ", ")
	spec := host.Notification{
		Type:      NotificationType,
		BodyShort: "התראת מילים רגישות: " + keywords,
		BodyLong: fmt.Sprintf(
			"משתמש %s שלח הודעה בחדר %d עם מילים רגישות: %s\n\nתוכן ההודעה: %s",
			alert.SenderUsername, alert.RoomID, keywords, alert.MessageContent,
		),
		NID:  fmt.Sprintf("%s:%d:%d", "chat-perms:keyword-alert", alert.RoomID, alert.Timestamp),
		From: alert.SenderUID,
		Path: fmt.Sprintf("/chats/%d", alert.RoomID),
	}

	created, err := d.sink.Create(ctx, spec)
	if err != nil {
		logger.ErrorCF("alerts", "Failed to create keyword alert", map[string]any{"error": err.Error()})
		return false
	}
	if created == nil {
		return false
	}
	if err := d.sink.Push(ctx, created, recipients); err != nil {
		logger.ErrorCF("alerts", "Failed to push keyword alert", map[string]any{"error": err.Error()})
		return false
	}
	return true
}

// ProcessMessage scans a content-bearing hook event and, on a match,
// builds and dispatches an alert without waiting for delivery, so the
// triggering hook's latency is unaffected.
func (d *Dispatcher) ProcessMessage(ctx context.Context, ev normalize.Event) Outcome {
	cfg := d.resolve()
	if !cfg.KeywordAlertsEnabled {
		return Outcome{Matched: false, Keywords: []string{}}
	}

	matched := scanner.Scan(ev.String("content"), cfg.KeywordList)
	if len(matched) == 0 {
		return Outcome{Matched: false, Keywords: []string{}}
	}

	senderUID := ev.Int("uid")
	senderName := "unknown"
	if user, err := d.dir.GetUserData(ctx, senderUID); err == nil && strings.TrimSpace(user.Username) != "" {
		senderName = user.Username
	}

	alert := Build(Params{
		MessageContent:  ev.String("content"),
		SenderUID:       senderUID,
		SenderUsername:  senderName,
		RoomID:          ev.Int("roomId"),
		MatchedKeywords: matched,
	})

	// Detached delivery. The background context is deliberate: hook
	// cancellation must not propagate into an unawaited dispatch.
	go func() {
		delivered := d.Dispatch(context.Background(), alert)
		if d.AfterDispatch != nil {
			d.AfterDispatch(alert, delivered)
		}
	}()

	return Outcome{Matched: true, Keywords: matched}
}
