package utils

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/kiran0823/tour-booking-backend/config"
)

var bookingWriter *kafka.Writer

// BookingEvent is the payload published to the booking topic whenever a
// booking changes state. The notification consumer turns these into
// in-app notifications.
type BookingEvent struct {
	Type         string    `json:"type"` // booking_created / booking_confirmed / booking_cancelled
	BookingID    string    `json:"booking_id"`
	ActivityID   string    `json:"activity_id"`
	ActivityName string    `json:"activity_name"`
	UserID       uint      `json:"user_id"`
	ProviderID   uint      `json:"provider_id"`
	People       int       `json:"people"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// InitializeKafka sets up the booking event writer. Kafka being absent
// only disables event publishing.
func InitializeKafka(cfg *config.Config) {
	if cfg.KafkaBrokers == "" {
		log.Println("⚠️ KAFKA_BROKERS not set, booking events disabled")
		return
	}

	bookingWriter = &kafka.Writer{
		Addr:         kafka.TCP(strings.Split(cfg.KafkaBrokers, ",")...),
		Topic:        cfg.KafkaBookingTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
	}
	log.Printf("✅ Kafka booking writer ready (topic=%s)", cfg.KafkaBookingTopic)
}

// PublishBookingEvent emits a booking event, best-effort.
func PublishBookingEvent(ctx context.Context, evt BookingEvent) {
	if bookingWriter == nil {
		return
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		log.Printf("⚠️ Failed to marshal booking event: %v", err)
		return
	}
	err = bookingWriter.WriteMessages(ctx, kafka.Message{
		Key:   []byte(evt.BookingID),
		Value: payload,
	})
	if err != nil {
		log.Printf("⚠️ Failed to publish booking event: %v", err)
	}
}

// NewBookingReader creates a consumer for the booking topic.
func NewBookingReader(cfg *config.Config) *kafka.Reader {
	if cfg.KafkaBrokers == "" {
		return nil
	}
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  strings.Split(cfg.KafkaBrokers, ","),
		Topic:    cfg.KafkaBookingTopic,
		GroupID:  "notification-service",
		MinBytes: 1,
		MaxBytes: 10e6,
	})
}

// CloseKafka flushes and closes the writer on shutdown.
func CloseKafka() {
	if bookingWriter != nil {
		_ = bookingWriter.Close()
	}
}
