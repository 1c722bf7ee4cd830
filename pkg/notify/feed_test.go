package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sipeed/chatwarden/pkg/alerts"
)

func TestFeedDeliversToSubscribers(t *testing.T) {
	feed := NewFeed()
	a, cancelA := feed.Subscribe()
	defer cancelA()
	b, cancelB := feed.Subscribe()
	defer cancelB()

	feed.Publish(alerts.Record{RoomID: 7, MessageContent: "hello"})

	for _, ch := range []<-chan alerts.Record{a, b} {
		select {
		case got := <-ch:
			assert.Equal(t, int64(7), got.RoomID)
			assert.Equal(t, "hello", got.MessageContent)
		case <-time.After(time.Second):
			t.Fatal("alert not delivered")
		}
	}
}

func TestFeedCancelClosesChannel(t *testing.T) {
	feed := NewFeed()
	ch, cancel := feed.Subscribe()
	cancel()
	// Cancel twice is safe.
	cancel()

	_, open := <-ch
	require.False(t, open)

	// Publishing after cancel reaches nobody and does not panic.
	feed.Publish(alerts.Record{RoomID: 1})
}

func TestFeedPublishNeverBlocks(t *testing.T) {
	feed := NewFeed()
	_, cancel := feed.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		// Overrun the subscriber buffer without anyone reading.
		for i := 0; i < 100; i++ {
			feed.Publish(alerts.Record{RoomID: int64(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}
