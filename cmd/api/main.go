package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"coastalhub/internal/cartstore"
	"coastalhub/internal/config"
	"coastalhub/internal/db"
	"coastalhub/internal/httpserver"
	"coastalhub/internal/payment"
	"coastalhub/internal/realtime"
	driverrepo "coastalhub/internal/repository/driver"
	orderrepo "coastalhub/internal/repository/order"
	cartsvc "coastalhub/internal/service/cart"
	ordersvc "coastalhub/internal/service/order"

	goredis "github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	redisClient := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatalf("connect to redis: %v", err)
	}

	orderRepo := orderrepo.NewPostgres(dbpool)
	driverRepo := driverrepo.NewPostgres(dbpool)
	carts := cartsvc.New(cartstore.NewRedis(redisClient))

	gateway := payment.NewHTTPGateway(cfg.GatewayBaseURL, cfg.GatewayAPIKey)
	router := payment.NewRouter(gateway, cfg.ZellePayee, cfg.PublicBaseURL)
	orders := ordersvc.New(orderRepo, carts, router, logger)

	hub := realtime.NewHub(orderRepo, driverRepo, logger)

	storeFeed := realtime.NewStoreFeed(dbpool, hub, logger)
	go func() {
		if err := storeFeed.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Printf("store feed stopped: %v", err)
		}
	}()

	kafkaReader := kafka.NewReader(kafka.ReaderConfig{
		Brokers: strings.Split(cfg.KafkaBrokers, ","),
		Topic:   cfg.DriverTopic,
		GroupID: "coastalhub-api",
	})
	defer kafkaReader.Close()

	driverFeed := realtime.NewDriverFeed(kafkaReader, driverRepo, hub, logger)
	go func() {
		if err := driverFeed.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Printf("driver feed stopped: %v", err)
		}
	}()

	srv := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Carts:         carts,
		Orders:        orders,
		Drivers:       driverRepo,
		Hub:           hub,
		GatewaySecret: cfg.GatewayAPIKey,
	})

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Printf("received shutdown signal")
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}
