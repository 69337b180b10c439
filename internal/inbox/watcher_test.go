package inbox

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/MahanteshPatil1214/agency-platform/internal/models"
)

type fakeFetcher struct {
	calls atomic.Int64
	fail  bool
}

func (f *fakeFetcher) Conversation(ctx context.Context, token, userID string) ([]models.Message, error) {
	f.calls.Add(1)
	if f.fail {
		return nil, errors.New("backend unavailable")
	}
	return []models.Message{
		{ID: "m1", SenderID: userID, ReceiverID: "self", Content: "hello", CreatedAt: time.Now()},
	}, nil
}

func TestWatcherDeliversSnapshotsUntilCancelled(t *testing.T) {
	fetcher := &fakeFetcher{}
	w := NewWatcher(fetcher, "token", "alice", 10*time.Millisecond, zap.NewNop().Sugar())

	ctx, cancel := context.WithCancel(context.Background())
	snapshots := w.Run(ctx)

	// First snapshot arrives without waiting for a tick.
	select {
	case msgs, ok := <-snapshots:
		if !ok {
			t.Fatal("channel closed before first snapshot")
		}
		if len(msgs) != 1 || msgs[0].ID != "m1" {
			t.Fatalf("unexpected snapshot: %+v", msgs)
		}
	case <-time.After(time.Second):
		t.Fatal("no initial snapshot within 1s")
	}

	// At least one tick-driven snapshot.
	select {
	case _, ok := <-snapshots:
		if !ok {
			t.Fatal("channel closed while still polling")
		}
	case <-time.After(time.Second):
		t.Fatal("no tick snapshot within 1s")
	}

	cancel()

	// Cancellation drains and closes the channel.
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-snapshots:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("channel not closed after cancel")
		}
	}
}

func TestWatcherSkipsFailedFetches(t *testing.T) {
	fetcher := &fakeFetcher{fail: true}
	w := NewWatcher(fetcher, "token", "alice", 5*time.Millisecond, zap.NewNop().Sugar())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	snapshots := w.Run(ctx)

	select {
	case msgs, ok := <-snapshots:
		if ok {
			t.Fatalf("got snapshot %+v from failing fetcher", msgs)
		}
	case <-time.After(50 * time.Millisecond):
	}

	if fetcher.calls.Load() < 2 {
		t.Fatalf("expected retries after failure, got %d calls", fetcher.calls.Load())
	}
}
