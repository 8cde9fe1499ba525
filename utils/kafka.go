package utils

import (
	"context"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/brightkids/activity-booking-backend/config"
)

var kafkaWriter *kafka.Writer

// InitializeKafka sets up the shared writer for the booking-events topic.
// Kafka is optional: with no brokers configured the sink publishes nothing
// and callers carry on.
func InitializeKafka(cfg *config.Config) {
	if len(cfg.KafkaBrokers) == 0 {
		log.Println("ℹ️ KAFKA_BROKERS not set, running without Kafka")
		return
	}

	kafkaWriter = &kafka.Writer{
		Addr:         kafka.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
	log.Printf("✅ Kafka writer ready (topic %s)", cfg.KafkaTopic)
}

// PublishMessage writes one message to the booking-events topic.
// Fire-and-forget: errors are returned for logging but never block a
// business operation.
func PublishMessage(ctx context.Context, key string, value []byte) error {
	if kafkaWriter == nil {
		return nil
	}
	return kafkaWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
	})
}

// NewKafkaReader builds a consumer for the booking-events topic, used to
// materialize in-app notifications. Returns nil when Kafka is disabled.
func NewKafkaReader(cfg *config.Config, groupID string) *kafka.Reader {
	if len(cfg.KafkaBrokers) == 0 {
		return nil
	}
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.KafkaBrokers,
		Topic:    cfg.KafkaTopic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
}
