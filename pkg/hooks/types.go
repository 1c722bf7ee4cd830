package hooks

import (
	"context"
	"time"

	"github.com/sipeed/chatwarden/pkg/normalize"
)

// Kind names a chat lifecycle extension point the host invokes.
type Kind string

const (
	KindCanReadMessages Kind = "can_read_messages"
	KindCanReply        Kind = "can_reply"
	KindCanMessageUser  Kind = "can_message_user"
	KindCanMessageRoom  Kind = "can_message_room"
	KindIsUserInRoom    Kind = "is_user_in_room"
)

var knownKinds = []Kind{
	KindCanReadMessages,
	KindCanReply,
	KindCanMessageUser,
	KindCanMessageRoom,
	KindIsUserInRoom,
}

func KnownKinds() []Kind {
	out := make([]Kind, len(knownKinds))
	copy(out, knownKinds)
	return out
}

func IsKnownKind(k Kind) bool {
	for _, known := range knownKinds {
		if known == k {
			return true
		}
	}
	return false
}

// Result is the outcome of one hook invocation.
type Result struct {
	Status     string          `json:"status"`
	Data       normalize.Event `json:"data,omitempty"`
	Message    string          `json:"message,omitempty"`
	Metadata   map[string]any  `json:"metadata,omitempty"`
	Err        error           `json:"-"`
	DurationMs int64           `json:"duration_ms"`
}

const (
	StatusOK       = "ok"
	StatusRejected = "rejected"
	StatusError    = "error"
)

// Handler processes one hook invocation.
type Handler interface {
	Name() string
	Handle(ctx context.Context, kind Kind, data normalize.Event) Result
}

// AuditEntry is persisted per hook invocation for moderation traceability.
type AuditEntry struct {
	InvocationID string         `json:"invocation_id"`
	Kind         Kind           `json:"kind"`
	Handler      string         `json:"handler"`
	Status       string         `json:"status"`
	Message      string         `json:"message,omitempty"`
	Error        string         `json:"error,omitempty"`
	DurationMs   int64          `json:"duration_ms"`
	Timestamp    time.Time      `json:"timestamp"`
	CallerUID    int64          `json:"caller_uid,omitempty"`
	UID          int64          `json:"uid,omitempty"`
	RoomID       int64          `json:"room_id,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// AuditSink writes hook audit entries.
type AuditSink interface {
	Write(entry AuditEntry) error
}
