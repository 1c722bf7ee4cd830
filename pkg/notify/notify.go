// Package notify bridges the notification sink port to real delivery
// backends. Adapters deliver alert notifications to a fixed operations
// channel; the recipient identifier list is host-side addressing and is
// ignored by channel-oriented backends.
package notify

import (
	"context"
	"errors"

	"github.com/sipeed/chatwarden/pkg/host"
	"github.com/sipeed/chatwarden/pkg/logger"
)

// Fanout delivers through every wrapped sink. Create succeeds if any sink
// accepts the spec; Push fails only when every sink fails.
type Fanout struct {
	sinks []host.NotificationSink
}

func NewFanout(sinks ...host.NotificationSink) *Fanout {
	return &Fanout{sinks: sinks}
}

func (f *Fanout) Create(_ context.Context, spec host.Notification) (*host.Notification, error) {
	if len(f.sinks) == 0 {
		return nil, errors.New("no notification sinks configured")
	}
	n := spec
	return &n, nil
}

func (f *Fanout) Push(ctx context.Context, n *host.Notification, recipients []int64) error {
	var errs []error
	delivered := false
	for _, sink := range f.sinks {
		pushed, err := sink.Create(ctx, *n)
		if err == nil {
			err = sink.Push(ctx, pushed, recipients)
		}
		if err != nil {
			errs = append(errs, err)
			logger.WarnCF("notify", "Sink delivery failed", map[string]any{"error": err.Error()})
			continue
		}
		delivered = true
	}
	if !delivered {
		return errors.Join(errs...)
	}
	return nil
}
