package postgres

import (
	"context"
	"fmt"

	"github.com/cestino/shopping-service/internal/store"
)

// Subscribe holds a dedicated connection on LISTEN and forwards notifications
// until ctx is cancelled. When the consumer lags, a burst coalesces: the
// oldest queued signal is evicted for the newest, so the last notification is
// never lost. A refresh is a full refetch, so losing earlier duplicates is
// harmless.
func (a *Adapter) Subscribe(ctx context.Context) (<-chan store.Change, error) {
	conn, err := a.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire listen connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		conn.Release()
		return nil, fmt.Errorf("failed to listen on %s: %w", notifyChannel, err)
	}

	changes := make(chan store.Change, 16)

	go func() {
		defer close(changes)
		defer conn.Release()

		for {
			notification, err := conn.Conn().WaitForNotification(ctx)
			if err != nil {
				if ctx.Err() == nil {
					a.logger.Error().Err(err).Msg("Change subscription lost")
				}
				return
			}

			enqueue(changes, store.Change{Table: notification.Payload})
		}
	}()

	return changes, nil
}

// enqueue delivers a change without blocking. When the buffer is full the
// oldest queued signal is evicted so the newest always lands; with the single
// listen goroutine as producer the retry cannot fail.
func enqueue(changes chan store.Change, c store.Change) {
	select {
	case changes <- c:
		return
	default:
	}

	select {
	case <-changes:
	default:
	}
	select {
	case changes <- c:
	default:
	}
}
