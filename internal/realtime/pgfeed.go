package realtime

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"coastalhub/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// The stores raise these notifications from triggers; see the
// migrations.
const (
	orderChannel  = "order_events"
	driverChannel = "driver_events"
)

// StoreFeed tails the order and driver-location change notifications
// over LISTEN/NOTIFY and pushes events into the hub. On any drop it
// reconnects and forces a full hub resync before resuming incremental
// merges.
type StoreFeed struct {
	pool   *pgxpool.Pool
	hub    *Hub
	logger *log.Logger
}

func NewStoreFeed(pool *pgxpool.Pool, hub *Hub, logger *log.Logger) *StoreFeed {
	return &StoreFeed{pool: pool, hub: hub, logger: logger}
}

// Run blocks until ctx is done, maintaining the listen connection.
func (f *StoreFeed) Run(ctx context.Context) error {
	for {
		err := f.listen(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		f.logger.Printf("store feed dropped: %v, reconnecting in %s", err, reconnectDelay)

		select {
		case <-time.After(reconnectDelay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (f *StoreFeed) listen(ctx context.Context) error {
	conn, err := f.pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+orderChannel); err != nil {
		return err
	}
	if _, err := conn.Exec(ctx, "LISTEN "+driverChannel); err != nil {
		return err
	}

	// Deltas sent while we were away are gone; rebuild every live
	// projection from a full snapshot before applying new ones.
	if err := f.hub.Resync(ctx); err != nil {
		return err
	}

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			return err
		}

		switch notification.Channel {
		case orderChannel:
			var ev OrderEvent
			if err := json.Unmarshal([]byte(notification.Payload), &ev); err != nil {
				f.logger.Printf("bad order event payload %q: %v", notification.Payload, err)
				continue
			}
			f.hub.ApplyOrder(ctx, ev)
		case driverChannel:
			var loc domain.DriverLocation
			if err := json.Unmarshal([]byte(notification.Payload), &loc); err != nil {
				f.logger.Printf("bad driver event payload %q: %v", notification.Payload, err)
				continue
			}
			f.hub.ApplyDriver(loc)
		}
	}
}
