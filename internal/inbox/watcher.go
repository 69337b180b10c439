package inbox

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/MahanteshPatil1214/agency-platform/internal/models"
)

// ConversationFetcher fetches the messages exchanged with one contact.
// *backend.Client satisfies it.
type ConversationFetcher interface {
	Conversation(ctx context.Context, token, userID string) ([]models.Message, error)
}

// Watcher re-fetches one conversation on a fixed interval for as long as
// that conversation stays open. Its lifetime is bound to a context, so
// switching contacts or closing the view cancels the poll outright
// instead of leaving a superseded fetch racing a newer one.
type Watcher struct {
	fetcher   ConversationFetcher
	token     string
	contactID string
	interval  time.Duration
	log       *zap.SugaredLogger
}

func NewWatcher(f ConversationFetcher, token, contactID string, interval time.Duration, log *zap.SugaredLogger) *Watcher {
	return &Watcher{
		fetcher:   f,
		token:     token,
		contactID: contactID,
		interval:  interval,
		log:       log,
	}
}

// Run starts polling and returns the snapshot channel. One snapshot is
// delivered immediately, then one per tick. A failed fetch is logged and
// skipped; the next tick retries. The channel closes when ctx is done.
func (w *Watcher) Run(ctx context.Context) <-chan []models.Message {
	snapshots := make(chan []models.Message, 1)

	go func() {
		defer close(snapshots)

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		w.poll(ctx, snapshots)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				w.poll(ctx, snapshots)
			}
		}
	}()

	return snapshots
}

func (w *Watcher) poll(ctx context.Context, snapshots chan<- []models.Message) {
	msgs, err := w.fetcher.Conversation(ctx, w.token, w.contactID)
	if err != nil {
		if ctx.Err() == nil {
			w.log.Warnw("conversation poll failed", "contact", w.contactID, "err", err)
		}
		return
	}
	select {
	case snapshots <- msgs:
	case <-ctx.Done():
	}
}
