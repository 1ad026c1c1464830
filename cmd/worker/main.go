package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Velimir1992/parkbooking/config"
	"github.com/Velimir1992/parkbooking/internal/email"
	"github.com/Velimir1992/parkbooking/internal/kafka"
	"github.com/Velimir1992/parkbooking/internal/logging"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logging.Init()
	defer logging.L().Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic)
	defer consumer.Close()

	emailSender := email.NewSender()

	logging.L().Info("notification worker started",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("topic", cfg.Kafka.NotificationsTopic))

	err = consumer.Consume(ctx, func(ctx context.Context, event kafka.ReservationEvent) error {
		return emailSender.Send(ctx, event)
	})
	if err != nil && ctx.Err() == nil {
		logging.L().Error("consumer stopped", zap.Error(err))
	}
}
