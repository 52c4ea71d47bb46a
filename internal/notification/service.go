package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/segmentio/kafka-go"

	"github.com/kiran0823/tour-booking-backend/utils"
)

type Service interface {
	Notify(ctx context.Context, userID uint, title, message, category string) error
	ListForUser(ctx context.Context, userID uint, unreadOnly bool, limit int) ([]InAppNotification, error)
	UnreadCount(ctx context.Context, userID uint) (int64, error)
	MarkRead(ctx context.Context, userID uint, id uint) error
	MarkAllRead(ctx context.Context, userID uint) error

	// StartBookingConsumer reads booking events off Kafka and fans them
	// out as in-app notifications until ctx is canceled. Blocking; run
	// in its own goroutine.
	StartBookingConsumer(ctx context.Context, reader *kafka.Reader)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Notify(ctx context.Context, userID uint, title, message, category string) error {
	return s.repo.Create(ctx, &InAppNotification{
		UserID:   userID,
		Title:    title,
		Message:  message,
		Category: category,
	})
}

func (s *service) ListForUser(ctx context.Context, userID uint, unreadOnly bool, limit int) ([]InAppNotification, error) {
	return s.repo.ListByUser(ctx, userID, unreadOnly, limit)
}

func (s *service) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *service) MarkRead(ctx context.Context, userID uint, id uint) error {
	return s.repo.MarkRead(ctx, userID, id)
}

func (s *service) MarkAllRead(ctx context.Context, userID uint) error {
	return s.repo.MarkAllRead(ctx, userID)
}

// ===========================
// 📨 Kafka booking events consumer
func (s *service) StartBookingConsumer(ctx context.Context, reader *kafka.Reader) {
	if reader == nil {
		log.Println("⚠️ Kafka reader not configured, booking notifications disabled")
		return
	}
	defer reader.Close()

	log.Println("📨 Booking notification consumer started")
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Println("📨 Booking notification consumer stopped")
				return
			}
			log.Printf("❌ Failed to read booking event: %v", err)
			continue
		}

		var evt utils.BookingEvent
		if err := json.Unmarshal(msg.Value, &evt); err != nil {
			log.Printf("❌ Failed to decode booking event: %v", err)
			continue
		}

		s.handleBookingEvent(ctx, evt)
	}
}

func (s *service) handleBookingEvent(ctx context.Context, evt utils.BookingEvent) {
	var touristTitle, touristMsg, providerTitle, providerMsg string

	switch evt.Type {
	case "booking_created":
		touristTitle = "Booking received"
		touristMsg = fmt.Sprintf("Your booking for %q (%d people) is awaiting payment.", evt.ActivityName, evt.People)
		providerTitle = "New booking"
		providerMsg = fmt.Sprintf("A new booking for %q (%d people) was placed.", evt.ActivityName, evt.People)
	case "booking_confirmed":
		touristTitle = "Booking confirmed"
		touristMsg = fmt.Sprintf("Your booking for %q is confirmed. See you there!", evt.ActivityName)
		providerTitle = "Booking paid"
		providerMsg = fmt.Sprintf("A booking for %q (%d people) was paid and confirmed.", evt.ActivityName, evt.People)
	case "booking_cancelled":
		touristTitle = "Booking cancelled"
		touristMsg = fmt.Sprintf("Your booking for %q was cancelled.", evt.ActivityName)
		providerTitle = "Booking cancelled"
		providerMsg = fmt.Sprintf("A booking for %q (%d people) was cancelled.", evt.ActivityName, evt.People)
	default:
		log.Printf("⚠️ Unknown booking event type: %s", evt.Type)
		return
	}

	if evt.UserID != 0 {
		if err := s.Notify(ctx, evt.UserID, touristTitle, touristMsg, "booking"); err != nil {
			log.Printf("❌ Failed to store tourist notification: %v", err)
		}
	}
	if evt.ProviderID != 0 {
		if err := s.Notify(ctx, evt.ProviderID, providerTitle, providerMsg, "booking"); err != nil {
			log.Printf("❌ Failed to store provider notification: %v", err)
		}
	}
}
