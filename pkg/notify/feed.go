package notify

import (
	"sync"

	"github.com/sipeed/chatwarden/pkg/alerts"
)

// Feed is an in-process broadcast of dispatched alerts, consumed by the
// admin live alert stream. Publishing never blocks: slow subscribers drop.
type Feed struct {
	mu   sync.Mutex
	subs map[int]chan alerts.Record
	next int
}

func NewFeed() *Feed {
	return &Feed{subs: make(map[int]chan alerts.Record)}
}

// Subscribe returns a channel of future alerts and a cancel func that
// must be called when the subscriber goes away.
func (f *Feed) Subscribe() (<-chan alerts.Record, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.next
	f.next++
	ch := make(chan alerts.Record, 16)
	f.subs[id] = ch

	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if sub, ok := f.subs[id]; ok {
			delete(f.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Publish fans the alert out to every subscriber.
func (f *Feed) Publish(r alerts.Record) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs {
		select {
		case ch <- r:
		default:
		}
	}
}
