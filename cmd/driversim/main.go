package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"coastalhub/internal/config"
	"coastalhub/internal/domain"

	"github.com/segmentio/kafka-go"
)

// driversim publishes a stream of driver locations for one order,
// moving along a straight line between two points. Useful for driving
// the tracking UI and the feed pipeline without a real courier app.
func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[driversim] ", log.LstdFlags|log.LUTC)

	orderID := flag.String("order", "", "order id to publish locations for")
	driver := flag.String("driver", "Juma", "driver name")
	fromLat := flag.Float64("from-lat", -4.0435, "start latitude")
	fromLng := flag.Float64("from-lng", 39.6682, "start longitude")
	toLat := flag.Float64("to-lat", -4.0547, "end latitude")
	toLng := flag.Float64("to-lng", 39.6636, "end longitude")
	steps := flag.Int("steps", 20, "number of points along the route")
	interval := flag.Duration("interval", 3*time.Second, "time between points")
	flag.Parse()

	if *orderID == "" {
		logger.Fatal("missing -order")
	}
	if *steps < 2 {
		logger.Fatal("-steps must be at least 2")
	}

	writer := &kafka.Writer{
		Addr:     kafka.TCP(strings.Split(cfg.KafkaBrokers, ",")...),
		Topic:    cfg.DriverTopic,
		Balancer: &kafka.LeastBytes{},
	}
	defer writer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for i := 0; i < *steps; i++ {
		progress := float64(i) / float64(*steps-1)
		loc := domain.DriverLocation{
			OrderID:    *orderID,
			Latitude:   *fromLat + (*toLat-*fromLat)*progress,
			Longitude:  *fromLng + (*toLng-*fromLng)*progress,
			DriverName: *driver,
			ObservedAt: time.Now().UTC(),
		}

		payload, err := json.Marshal(loc)
		if err != nil {
			logger.Fatalf("marshal location: %v", err)
		}
		err = writer.WriteMessages(ctx, kafka.Message{
			Key:   []byte(*orderID),
			Value: payload,
		})
		if err != nil {
			logger.Fatalf("publish location: %v", err)
		}
		logger.Printf("published %.5f,%.5f for order %s", loc.Latitude, loc.Longitude, *orderID)

		if i == *steps-1 {
			break
		}
		select {
		case <-time.After(*interval):
		case <-ctx.Done():
			logger.Println("interrupted")
			return
		}
	}
	logger.Println("route complete")
}
