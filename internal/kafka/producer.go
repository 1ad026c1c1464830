package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Velimir1992/parkbooking/internal/logging"
)

// ReservationEvent is published once per reservation the saga commits,
// keyed by the saga id so all events of one booking land in order.
type ReservationEvent struct {
	Type          string    `json:"type"`
	SagaID        string    `json:"saga_id"`
	ReservationID int64     `json:"reservation_id"`
	SpotID        int64     `json:"spot_id"`
	UserID        int64     `json:"user_id"`
	Start         time.Time `json:"start"`
	End           time.Time `json:"end"`
	PaymentRef    string    `json:"payment_ref"`
}

const EventReservationConfirmed = "reservation_confirmed"

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 50 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	message := kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	}
	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}
	return nil
}

func (p *Producer) PublishWithRetry(ctx context.Context, topic, key string, payload interface{}, maxRetries int) error {
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		if err := p.Publish(ctx, topic, key, payload); err == nil {
			return nil
		} else {
			lastErr = err
			logging.L().Warn("kafka publish attempt failed",
				zap.Int("attempt", i+1),
				zap.String("topic", topic),
				zap.Error(err))
		}

		if i < maxRetries-1 {
			time.Sleep(time.Duration(i+1) * 500 * time.Millisecond)
		}
	}
	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}

// RetryingProducer routes every publish through the bounded-retry path.
// Callers that treat publishing as best effort get retries for free
// without carrying retry policy themselves.
type RetryingProducer struct {
	producer   *Producer
	maxRetries int
}

func NewRetryingProducer(producer *Producer, maxRetries int) *RetryingProducer {
	return &RetryingProducer{producer: producer, maxRetries: maxRetries}
}

func (p *RetryingProducer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	return p.producer.PublishWithRetry(ctx, topic, key, payload, p.maxRetries)
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
