package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"pethotel/internal/app"
	"pethotel/internal/config"
	"pethotel/internal/kafka"
)

func main() {
	cfg := config.Load()

	if len(cfg.Kafka.Brokers) == 0 {
		log.Fatal("KAFKA_BROKERS is required for the notification worker")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	dispatcher := app.NewDispatcher(cfg.Integration, logger)

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Printf("Consuming %s as group %s", cfg.Kafka.NotificationsTopic, cfg.Kafka.GroupID)

	err := consumer.Consume(ctx, kafka.NotificationHandler(dispatcher))
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("consumer error: %v", err)
	}

	log.Println("Worker exited")
}
