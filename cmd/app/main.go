package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Velimir1992/parkbooking/config"
	"github.com/Velimir1992/parkbooking/internal/bootstrap"
	"github.com/Velimir1992/parkbooking/internal/cache"
	"github.com/Velimir1992/parkbooking/internal/kafka"
	"github.com/Velimir1992/parkbooking/internal/logging"
	"github.com/Velimir1992/parkbooking/internal/repository"
	"github.com/Velimir1992/parkbooking/internal/service/booking"
	"github.com/Velimir1992/parkbooking/internal/service/spots"
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

	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Booking.SpotsCacheTTL)*time.Second)
	producer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer producer.Close()

	spotRepo := repository.NewSpotRepository(pool)
	reservationRepo := repository.NewReservationRepository(pool)
	transactionRepo := repository.NewTransactionRepository(pool)

	spotService := spots.NewSpotService(spotRepo, reservationRepo, redisCache)
	bookingService := booking.NewBookingService(
		reservationRepo,
		transactionRepo,
		spotRepo,
		redisCache,
		kafka.NewRetryingProducer(producer, 3),
		cfg.Kafka.BookingTopic,
		time.Duration(cfg.Booking.LockTTLSeconds)*time.Second,
		booking.WithNotificationsTopic(cfg.Kafka.NotificationsTopic),
		booking.WithRetryBudgets(cfg.Booking.TransactionAttempts, cfg.Booking.AllocationAttempts),
	)

	if err := bootstrap.Run(ctx, cfg, spotService, bookingService); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
