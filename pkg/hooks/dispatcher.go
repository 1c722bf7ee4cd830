package hooks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sipeed/chatwarden/pkg/normalize"
	"github.com/sipeed/chatwarden/pkg/perms"
)

// Dispatcher routes hook invocations to the registered handler for each
// kind and audits every invocation.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[Kind]Handler
	audit    AuditSink
}

func NewDispatcher(audit AuditSink) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[Kind]Handler),
		audit:    audit,
	}
}

func (d *Dispatcher) Register(kind Kind, handler Handler) {
	if handler == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[kind] = handler
}

// HandlerCount returns the number of registered hook kinds.
func (d *Dispatcher) HandlerCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.handlers)
}

// Dispatch normalizes raw into an event, runs the handler for kind, and
// writes an audit entry. Permission rejections surface in the Result with
// StatusRejected and the typed error preserved in Err.
func (d *Dispatcher) Dispatch(ctx context.Context, kind Kind, raw any) Result {
	data := normalize.Normalize(raw, nil)

	d.mu.RLock()
	handler := d.handlers[kind]
	audit := d.audit
	d.mu.RUnlock()

	var result Result
	if handler == nil {
		result = Result{
			Status:  StatusError,
			Data:    data,
			Message: "no handler registered",
			Err:     fmt.Errorf("no handler for hook %s", kind),
		}
	} else {
		result = runHandler(ctx, handler, kind, data)
	}

	if audit != nil {
		entry := AuditEntry{
			InvocationID: uuid.NewString(),
			Kind:         kind,
			Status:       result.Status,
			Message:      result.Message,
			DurationMs:   result.DurationMs,
			Timestamp:    time.Now(),
			CallerUID:    data.Int("callerUid"),
			UID:          data.Int("uid"),
			RoomID:       data.Int("roomId"),
			Metadata:     result.Metadata,
		}
		if handler != nil {
			entry.Handler = handler.Name()
		}
		if result.Err != nil {
			entry.Error = result.Err.Error()
		}
		_ = audit.Write(entry)
	}

	return result
}

func runHandler(ctx context.Context, handler Handler, kind Kind, data normalize.Event) (result Result) {
	start := time.Now()
	defer func() {
		result.DurationMs = time.Since(start).Milliseconds()
		if rec := recover(); rec != nil {
			result = Result{
				Status:     StatusError,
				Data:       data,
				Message:    "hook panic recovered",
				Err:        fmt.Errorf("panic in hook %s: %v", kind, rec),
				DurationMs: time.Since(start).Milliseconds(),
			}
		}
		if result.Status == "" {
			result.Status = StatusOK
		}
	}()

	result = handler.Handle(ctx, kind, data)
	if result.Status == "" {
		switch {
		case result.Err == nil:
			result.Status = StatusOK
		case IsPermissionRejection(result.Err):
			result.Status = StatusRejected
		default:
			result.Status = StatusError
		}
	}
	if result.Status == StatusError && result.Err == nil {
		result.Err = fmt.Errorf("hook error: %s", result.Message)
	}
	return result
}

// IsPermissionRejection reports whether err is one of the typed permission
// failures that must reach the host unchanged.
func IsPermissionRejection(err error) bool {
	var notYet *perms.NotYetEligibleError
	var denied *perms.AccessDeniedError
	var forbidden *perms.AccessForbiddenError
	return errors.As(err, &notYet) || errors.As(err, &denied) || errors.As(err, &forbidden)
}
