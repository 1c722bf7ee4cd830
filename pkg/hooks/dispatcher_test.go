package hooks

import (
	"context"
	"testing"

	"github.com/sipeed/chatwarden/pkg/normalize"
	"github.com/sipeed/chatwarden/pkg/perms"
)

type testHandler struct {
	name string
	fn   func(context.Context, Kind, normalize.Event) Result
}

func (h testHandler) Name() string { return h.name }
func (h testHandler) Handle(ctx context.Context, kind Kind, data normalize.Event) Result {
	return h.fn(ctx, kind, data)
}

type memorySink struct {
	entries []AuditEntry
}

func (m *memorySink) Write(entry AuditEntry) error {
	m.entries = append(m.entries, entry)
	return nil
}

func TestDispatcherDispatchAndAudit(t *testing.T) {
	sink := &memorySink{}
	d := NewDispatcher(sink)
	d.Register(KindCanReply, testHandler{name: "a", fn: func(_ context.Context, _ Kind, data normalize.Event) Result {
		return Result{Status: StatusOK, Data: data, Message: "ok"}
	}})

	result := d.Dispatch(context.Background(), KindCanReply, map[string]any{"callerUid": 4, "roomId": 2})
	if result.Status != StatusOK {
		t.Fatalf("status = %q, want ok", result.Status)
	}
	if len(sink.entries) != 1 {
		t.Fatalf("entries len = %d, want 1", len(sink.entries))
	}
	entry := sink.entries[0]
	if entry.Kind != KindCanReply {
		t.Fatalf("kind = %q, want %q", entry.Kind, KindCanReply)
	}
	if entry.CallerUID != 4 || entry.RoomID != 2 {
		t.Fatalf("audit ids = %d/%d, want 4/2", entry.CallerUID, entry.RoomID)
	}
	if entry.InvocationID == "" {
		t.Fatal("expected invocation id")
	}
}

func TestDispatcherFailOpenOnPanic(t *testing.T) {
	d := NewDispatcher(nil)
	d.Register(KindCanReply, testHandler{name: "panic", fn: func(_ context.Context, _ Kind, _ normalize.Event) Result {
		panic("boom")
	}})

	result := d.Dispatch(context.Background(), KindCanReply, nil)
	if result.Status != StatusError {
		t.Fatalf("status = %q, want error", result.Status)
	}
	if result.Err == nil {
		t.Fatal("expected panic converted to error")
	}
}

func TestDispatcherUnknownKind(t *testing.T) {
	sink := &memorySink{}
	d := NewDispatcher(sink)

	result := d.Dispatch(context.Background(), Kind("nope"), nil)
	if result.Status != StatusError {
		t.Fatalf("status = %q, want error", result.Status)
	}
	if len(sink.entries) != 1 {
		t.Fatalf("unknown kinds are audited too, entries = %d", len(sink.entries))
	}
}

func TestDispatcherRejectionStatusFromTypedError(t *testing.T) {
	d := NewDispatcher(nil)
	d.Register(KindCanReadMessages, testHandler{name: "gate", fn: func(_ context.Context, _ Kind, data normalize.Event) Result {
		return Result{Data: data, Err: &perms.AccessDeniedError{Message: "denied"}}
	}})

	result := d.Dispatch(context.Background(), KindCanReadMessages, nil)
	if result.Status != StatusRejected {
		t.Fatalf("status = %q, want rejected", result.Status)
	}
}

func TestKnownKinds(t *testing.T) {
	if len(KnownKinds()) != 5 {
		t.Fatalf("expected 5 hook kinds")
	}
	if !IsKnownKind(KindIsUserInRoom) {
		t.Fatal("is_user_in_room should be known")
	}
	if IsKnownKind(Kind("other")) {
		t.Fatal("unexpected kind reported known")
	}
}
