package hooks

import (
	"context"

	"github.com/sipeed/chatwarden/pkg/alerts"
	"github.com/sipeed/chatwarden/pkg/normalize"
	"github.com/sipeed/chatwarden/pkg/perms"
	"github.com/sipeed/chatwarden/pkg/settings"
	"github.com/sipeed/chatwarden/pkg/warning"
)

// Pipeline implements the moderation behavior behind each hook kind:
// permission gating on access hooks, keyword scanning on content hooks,
// warning injection on outbound reads, and the admin room-visibility
// override.
type Pipeline struct {
	gate    *perms.Gate
	alerts  *alerts.Dispatcher
	resolve func() settings.Settings
}

func NewPipeline(gate *perms.Gate, alertDispatcher *alerts.Dispatcher, resolve func() settings.Settings) *Pipeline {
	return &Pipeline{gate: gate, alerts: alertDispatcher, resolve: resolve}
}

func (p *Pipeline) Name() string { return "chat-perms" }

// Handle routes one normalized hook event. Unknown kinds pass the data
// through unchanged.
func (p *Pipeline) Handle(ctx context.Context, kind Kind, data normalize.Event) Result {
	switch kind {
	case KindCanReadMessages:
		return p.canReadMessages(ctx, data)
	case KindCanReply, KindCanMessageRoom:
		return p.scanContent(ctx, data)
	case KindCanMessageUser:
		return p.canMessageUser(ctx, data)
	case KindIsUserInRoom:
		return p.isUserInRoom(data)
	default:
		return Result{Status: StatusOK, Data: data, Message: "unhandled hook kind"}
	}
}

// OnCanReadMessages gates read access and injects the privacy warning.
func (p *Pipeline) OnCanReadMessages(ctx context.Context, raw any) (normalize.Event, error) {
	return p.resultOf(p.canReadMessages(ctx, normalize.Normalize(raw, nil)))
}

// OnCanReply scans reply content for keyword alerts.
func (p *Pipeline) OnCanReply(ctx context.Context, raw any) (normalize.Event, error) {
	return p.resultOf(p.scanContent(ctx, normalize.Normalize(raw, nil)))
}

// OnCanMessageUser gates direct messaging between users.
func (p *Pipeline) OnCanMessageUser(ctx context.Context, raw any) (normalize.Event, error) {
	return p.resultOf(p.canMessageUser(ctx, normalize.Normalize(raw, nil)))
}

// OnCanMessageRoom scans room message content for keyword alerts.
func (p *Pipeline) OnCanMessageRoom(ctx context.Context, raw any) (normalize.Event, error) {
	return p.resultOf(p.scanContent(ctx, normalize.Normalize(raw, nil)))
}

// OnIsUserInRoom applies the admin room-visibility override.
func (p *Pipeline) OnIsUserInRoom(_ context.Context, raw any) (normalize.Event, error) {
	return p.resultOf(p.isUserInRoom(normalize.Normalize(raw, nil)))
}

func (p *Pipeline) resultOf(r Result) (normalize.Event, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	return r.Data, nil
}

func (p *Pipeline) canReadMessages(ctx context.Context, data normalize.Event) Result {
	data = data.Clone()
	data["canGet"] = true
	cfg := p.resolve()

	callerUID := data.Int("callerUid")
	if err := p.gate.CheckChatAllowed(ctx, callerUID, cfg); err != nil {
		return rejection(data, err)
	}
	if err := p.gate.CheckReadIdentity(callerUID, data.Int("uid"), cfg); err != nil {
		return rejection(data, err)
	}

	return Result{Status: StatusOK, Data: warning.Inject(data, cfg)}
}

func (p *Pipeline) scanContent(ctx context.Context, data normalize.Event) Result {
	outcome := alerts.Outcome{Matched: false, Keywords: []string{}}
	if data.String("content") != "" {
		outcome = p.alerts.ProcessMessage(ctx, data)
	}
	return Result{
		Status: StatusOK,
		Data:   data,
		Metadata: map[string]any{
			"matched":  outcome.Matched,
			"keywords": outcome.Keywords,
		},
	}
}

func (p *Pipeline) canMessageUser(ctx context.Context, data normalize.Event) Result {
	if err := p.gate.CheckChatAllowed(ctx, data.Int("uid"), p.resolve()); err != nil {
		return rejection(data, err)
	}
	return Result{Status: StatusOK, Data: data}
}

func (p *Pipeline) isUserInRoom(data normalize.Event) Result {
	cfg := p.resolve()
	if cfg.IsAdmin(data.Int("uid")) {
		data = data.Clone()
		data["inRoom"] = true
	}
	return Result{Status: StatusOK, Data: data}
}

func rejection(data normalize.Event, err error) Result {
	status := StatusError
	if IsPermissionRejection(err) {
		status = StatusRejected
	}
	return Result{Status: status, Data: data, Message: err.Error(), Err: err}
}
