package realtime

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"coastalhub/internal/domain"
	driverrepo "coastalhub/internal/repository/driver"

	"github.com/segmentio/kafka-go"
)

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// DriverFeed consumes the append-only driver-location stream, persists
// the current record per order, and pushes the observation into the
// hub. Stale observations are filtered by the repository and again by
// each subscription, so replays are harmless.
type DriverFeed struct {
	reader messageReader
	repo   driverrepo.Repository
	hub    *Hub
	logger *log.Logger
}

func NewDriverFeed(reader *kafka.Reader, repo driverrepo.Repository, hub *Hub, logger *log.Logger) *DriverFeed {
	return &DriverFeed{reader: reader, repo: repo, hub: hub, logger: logger}
}

// Run blocks until ctx is done.
func (f *DriverFeed) Run(ctx context.Context) error {
	for {
		message, err := f.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			f.logger.Printf("driver feed read: %v", err)
			select {
			case <-time.After(reconnectDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
			continue
		}

		var loc domain.DriverLocation
		if err := json.Unmarshal(message.Value, &loc); err != nil {
			f.logger.Printf("bad driver location payload: %v", err)
			continue
		}
		if loc.OrderID == "" {
			continue
		}
		if loc.ObservedAt.IsZero() {
			loc.ObservedAt = message.Time
		}

		if err := f.repo.Upsert(ctx, loc); err != nil {
			f.logger.Printf("persist driver location for order %s: %v", loc.OrderID, err)
		}
		f.hub.ApplyDriver(loc)
	}
}
