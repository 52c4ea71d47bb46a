package booking

import (
	"context"
	"log"
	"math"

	"github.com/kiran0823/tour-booking-backend/internal/activity"
	"github.com/kiran0823/tour-booking-backend/internal/auditlog"
	"github.com/kiran0823/tour-booking-backend/internal/auth"
	"github.com/kiran0823/tour-booking-backend/utils"
)

type Service interface {
	CreateBooking(ctx context.Context, user *auth.User, req *CreateBookingRequest, ip string) (*Booking, error)
	CancelBooking(ctx context.Context, user *auth.User, id string, ip string) (*Booking, error)
	GetBooking(ctx context.Context, user *auth.User, id string) (*Booking, error)
	ListMyBookings(ctx context.Context, userID uint) ([]Booking, error)
	ListProviderBookings(ctx context.Context, providerID uint) ([]Booking, error)

	// ConfirmPaid flips a pending booking to confirmed once its payment
	// has been verified. Idempotent: a second call is a no-op.
	ConfirmPaid(ctx context.Context, id string, ip string) error
	FailPayment(ctx context.Context, id string) error

	// CancelForActivity cancels all open bookings of a cancelled
	// activity and emails their owners. Best effort per booking.
	CancelForActivity(ctx context.Context, activityID string)
}

type service struct {
	repo         Repository
	activityRepo activity.Repository
	authSvc      auth.Service
	auditSvc     auditlog.Service
	clock        utils.Clock
}

func NewService(repo Repository, activityRepo activity.Repository, authSvc auth.Service, auditSvc auditlog.Service, clock utils.Clock) Service {
	return &service{
		repo:         repo,
		activityRepo: activityRepo,
		authSvc:      authSvc,
		auditSvc:     auditSvc,
		clock:        clock,
	}
}

// ===========================
// 🎯 Create Booking (admission control)
func (s *service) CreateBooking(ctx context.Context, user *auth.User, req *CreateBookingRequest, ip string) (*Booking, error) {
	if req.NumberOfPeople < 1 || req.NumberOfPeople > MaxPeoplePerBooking {
		return nil, ErrInvalidPeople
	}

	// Read the activity up front to freeze the price. Bookability and
	// slot availability are NOT decided here; the guarded UPDATE inside
	// CreateWithAdmission is the only authority, so two racing requests
	// can never both pass on the same stale read.
	a, err := s.activityRepo.GetByID(ctx, req.ActivityID)
	if err != nil {
		return nil, err
	}

	b := &Booking{
		UserID:         user.ID,
		ActivityID:     a.ID,
		NumberOfPeople: req.NumberOfPeople,
		TotalPrice:     math.Round(float64(req.NumberOfPeople)*a.Price*100) / 100,
		Status:         BookingPending,
		PaymentStatus:  PaymentPending,
	}

	if err := s.repo.CreateWithAdmission(ctx, b); err != nil {
		s.auditSvc.LogAction(ctx, &user.ID, "BOOKING_REJECTED", map[string]interface{}{
			"activity_id": req.ActivityID,
			"people":      req.NumberOfPeople,
			"reason":      err.Error(),
		}, ip, "failure")
		return nil, err
	}

	s.auditSvc.LogAction(ctx, &user.ID, "BOOKING_CREATED", map[string]interface{}{
		"booking_id":  b.ID,
		"activity_id": a.ID,
		"people":      b.NumberOfPeople,
		"total_price": b.TotalPrice,
	}, ip, "success")

	utils.PublishBookingEvent(ctx, utils.BookingEvent{
		Type:         "booking_created",
		BookingID:    b.ID,
		ActivityID:   a.ID,
		ActivityName: a.Name,
		UserID:       user.ID,
		ProviderID:   a.ProviderID,
		People:       b.NumberOfPeople,
		OccurredAt:   s.clock.Now(),
	})

	b.Activity = a
	return b, nil
}

// ===========================
// 🚫 Cancel Booking (owner, owning provider, or admin)
func (s *service) CancelBooking(ctx context.Context, user *auth.User, id string, ip string) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canAct(user, b) {
		return nil, ErrUnauthorized
	}

	canceled, err := s.repo.CancelWithRestore(ctx, id)
	if err != nil {
		return nil, err
	}

	s.auditSvc.LogAction(ctx, &user.ID, "BOOKING_CANCELLED", map[string]interface{}{
		"booking_id":  id,
		"activity_id": canceled.ActivityID,
		"people":      canceled.NumberOfPeople,
	}, ip, "success")

	activityName := ""
	providerID := uint(0)
	if b.Activity != nil {
		activityName = b.Activity.Name
		providerID = b.Activity.ProviderID
	}

	utils.PublishBookingEvent(ctx, utils.BookingEvent{
		Type:         "booking_cancelled",
		BookingID:    id,
		ActivityID:   canceled.ActivityID,
		ActivityName: activityName,
		UserID:       b.UserID,
		ProviderID:   providerID,
		People:       canceled.NumberOfPeople,
		OccurredAt:   s.clock.Now(),
	})

	if owner, err := s.authSvc.GetUserByID(ctx, b.UserID); err == nil {
		utils.SendBookingCancellationEmail(owner.Email, owner.FullName, activityName)
	}

	return canceled, nil
}

func (s *service) GetBooking(ctx context.Context, user *auth.User, id string) (*Booking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.canAct(user, b) {
		return nil, ErrUnauthorized
	}
	return b, nil
}

func (s *service) ListMyBookings(ctx context.Context, userID uint) ([]Booking, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) ListProviderBookings(ctx context.Context, providerID uint) ([]Booking, error) {
	return s.repo.ListByProvider(ctx, providerID)
}

// ===========================
// 💳 Payment outcomes
func (s *service) ConfirmPaid(ctx context.Context, id string, ip string) error {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	flipped, err := s.repo.MarkPaid(ctx, id)
	if err != nil {
		return err
	}
	if !flipped {
		// Already confirmed, canceled or completed; nothing to do.
		return nil
	}

	s.auditSvc.LogAction(ctx, &b.UserID, "BOOKING_CONFIRMED", map[string]interface{}{
		"booking_id": id,
	}, ip, "success")

	activityName := ""
	providerID := uint(0)
	if b.Activity != nil {
		activityName = b.Activity.Name
		providerID = b.Activity.ProviderID
	}

	utils.PublishBookingEvent(ctx, utils.BookingEvent{
		Type:         "booking_confirmed",
		BookingID:    id,
		ActivityID:   b.ActivityID,
		ActivityName: activityName,
		UserID:       b.UserID,
		ProviderID:   providerID,
		People:       b.NumberOfPeople,
		OccurredAt:   s.clock.Now(),
	})

	if owner, err := s.authSvc.GetUserByID(ctx, b.UserID); err == nil {
		utils.SendBookingConfirmationEmail(owner.Email, owner.FullName, activityName, b.NumberOfPeople, b.TotalPrice)
	}

	return nil
}

func (s *service) FailPayment(ctx context.Context, id string) error {
	return s.repo.MarkPaymentFailed(ctx, id)
}

// ===========================
// 🚫 Activity cancelled: fold its open bookings
func (s *service) CancelForActivity(ctx context.Context, activityID string) {
	bookings, err := s.repo.ListByActivity(ctx, activityID)
	if err != nil {
		log.Printf("⚠️ Failed to list bookings for cancelled activity %s: %v", activityID, err)
		return
	}

	activityName := ""
	if a, err := s.activityRepo.GetByID(ctx, activityID); err == nil {
		activityName = a.Name
	}

	for i := range bookings {
		b := &bookings[i]
		if !b.Status.Cancelable() {
			continue
		}
		if _, err := s.repo.CancelWithRestore(ctx, b.ID); err != nil {
			log.Printf("⚠️ Failed to cancel booking %s for activity %s: %v", b.ID, activityID, err)
			continue
		}
		if owner, err := s.authSvc.GetUserByID(ctx, b.UserID); err == nil {
			utils.SendActivityCancelledEmail(owner.Email, owner.FullName, activityName)
		}
	}
}

func (s *service) canAct(user *auth.User, b *Booking) bool {
	if user.Role == auth.RoleAdmin || b.UserID == user.ID {
		return true
	}
	return user.Role == auth.RoleProvider && b.Activity != nil && b.Activity.ProviderID == user.ID
}
