package activity

import (
	"context"
	"errors"
	"time"

	"github.com/kiran0823/tour-booking-backend/internal/auditlog"
	"github.com/kiran0823/tour-booking-backend/utils"
)

const listCacheKey = "activities:list"

type Service interface {
	CreateActivity(ctx context.Context, providerID uint, req *CreateActivityRequest, ip string) (*Activity, error)
	GetActivityByID(ctx context.Context, id string) (*Activity, error)
	ListActivities(ctx context.Context, filter ActivityFilter) ([]Activity, int64, error)
	UpdateActivity(ctx context.Context, providerID uint, id string, req *UpdateActivityRequest, ip string) (*Activity, error)

	// Explicit lifecycle actions. The sweep never performs these.
	ApproveActivity(ctx context.Context, adminID uint, id string, ip string) error
	DeactivateActivity(ctx context.Context, adminID uint, id string, ip string) error
	RejectActivity(ctx context.Context, adminID uint, id string, ip string) error
	CancelActivity(ctx context.Context, actorID uint, actorRole string, id string, ip string) error
	DelayActivity(ctx context.Context, providerID uint, id string, req *DelayActivityRequest, ip string) error
	RescheduleActivity(ctx context.Context, providerID uint, id string, req *RescheduleActivityRequest, ip string) error

	// ForceSweep runs one sweep immediately (admin force refresh).
	ForceSweep(ctx context.Context) ([]StatusChange, error)
}

// BookingCanceller cancels the open bookings of an activity and tells
// their owners. Implemented by the booking service; a local interface
// so this package does not import booking.
type BookingCanceller interface {
	CancelForActivity(ctx context.Context, activityID string)
}

// RatingSource reports the average review rating of an activity.
// Implemented by the review repository; a local interface so this
// package does not import review.
type RatingSource interface {
	AverageRating(ctx context.Context, activityID string) (float64, error)
}

type service struct {
	repo     Repository
	sweeper  *Sweeper
	bookings BookingCanceller
	ratings  RatingSource
	auditSvc auditlog.Service
	clock    utils.Clock
}

func NewService(repo Repository, sweeper *Sweeper, bookings BookingCanceller, ratings RatingSource, auditSvc auditlog.Service, clock utils.Clock) Service {
	return &service{
		repo:     repo,
		sweeper:  sweeper,
		bookings: bookings,
		ratings:  ratings,
		auditSvc: auditSvc,
		clock:    clock,
	}
}

// ===========================
// 🎯 Create Activity
func (s *service) CreateActivity(ctx context.Context, providerID uint, req *CreateActivityRequest, ip string) (*Activity, error) {
	start, err := time.Parse(time.RFC3339, req.StartDate)
	if err != nil {
		return nil, errors.New("invalid start_date format, use RFC 3339")
	}
	end, err := time.Parse(time.RFC3339, req.EndDate)
	if err != nil {
		return nil, errors.New("invalid end_date format, use RFC 3339")
	}
	if end.Before(start) {
		return nil, ErrInvalidDates
	}

	a := &Activity{
		ProviderID:     providerID,
		CategoryID:     req.CategoryID,
		Name:           req.Name,
		Description:    req.Description,
		Location:       req.Location,
		Price:          req.Price,
		TotalCapacity:  req.Capacity,
		AvailableSlots: req.Capacity,
		StartDate:      start,
		EndDate:        end,
		Status:         StatusPending,
	}

	if err := s.repo.Create(ctx, a); err != nil {
		s.auditSvc.LogAction(ctx, &providerID, "ACTIVITY_CREATED", map[string]interface{}{
			"name":  req.Name,
			"error": err.Error(),
		}, ip, "failure")
		return nil, err
	}

	s.auditSvc.LogAction(ctx, &providerID, "ACTIVITY_CREATED", map[string]interface{}{
		"activity_id": a.ID,
		"name":        a.Name,
		"capacity":    a.TotalCapacity,
		"start_date":  a.StartDate,
		"end_date":    a.EndDate,
	}, ip, "success")

	utils.CacheDelete(ctx, listCacheKey)
	return a, nil
}

func (s *service) GetActivityByID(ctx context.Context, id string) (*Activity, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.ratings != nil {
		if avg, err := s.ratings.AverageRating(ctx, id); err == nil {
			a.AverageRating = avg
		}
	}
	return a, nil
}

func (s *service) ListActivities(ctx context.Context, filter ActivityFilter) ([]Activity, int64, error) {
	return s.repo.ListWithFilters(ctx, filter)
}

// ===========================
// 🛠 Update Activity (provider-owned fields only; capacity and dates
// move through the dedicated lifecycle actions)
func (s *service) UpdateActivity(ctx context.Context, providerID uint, id string, req *UpdateActivityRequest, ip string) (*Activity, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a.ProviderID != providerID {
		return nil, ErrNotOwner
	}

	a.Name = req.Name
	a.Description = req.Description
	a.Location = req.Location
	a.CategoryID = req.CategoryID
	if req.Price != nil {
		// Existing bookings keep their captured total; only future
		// bookings see the new price.
		a.Price = *req.Price
	}

	if err := s.repo.Update(ctx, a); err != nil {
		return nil, err
	}

	s.auditSvc.LogAction(ctx, &providerID, "ACTIVITY_UPDATED", map[string]interface{}{
		"activity_id": a.ID,
		"name":        a.Name,
	}, ip, "success")

	utils.CacheDelete(ctx, listCacheKey)
	return a, nil
}

// ===========================
// ✅ Approve Activity (admin). The only way out of Inactive: the row
// goes back to Pending and the next sweep re-derives its status from
// the effective dates.
func (s *service) ApproveActivity(ctx context.Context, adminID uint, id string, ip string) error {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if a.Status != StatusInactive {
		return ErrStatusLocked
	}

	if _, err := s.repo.UpdateStatus(ctx, id, StatusPending, s.clock.Now()); err != nil {
		return err
	}

	s.auditSvc.LogAction(ctx, &adminID, "ACTIVITY_APPROVED", map[string]interface{}{
		"activity_id": id,
	}, ip, "success")

	utils.CacheDelete(ctx, listCacheKey)
	return nil
}

// ===========================
// ⛔ Deactivate Activity (admin). Pulls a listing while it is under
// review: no new bookings are admitted and the sweep leaves the row
// alone until an admin approves it back to Pending.
func (s *service) DeactivateActivity(ctx context.Context, adminID uint, id string, ip string) error {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if a.Status != StatusPending && a.Status != StatusActive {
		return ErrStatusLocked
	}

	if _, err := s.repo.UpdateStatus(ctx, id, StatusInactive, s.clock.Now()); err != nil {
		return err
	}

	s.auditSvc.LogAction(ctx, &adminID, "ACTIVITY_DEACTIVATED", map[string]interface{}{
		"activity_id": id,
	}, ip, "success")

	utils.CacheDelete(ctx, listCacheKey)
	return nil
}

// ===========================
// ❌ Reject Activity (admin)
func (s *service) RejectActivity(ctx context.Context, adminID uint, id string, ip string) error {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if a.Status != StatusPending && a.Status != StatusInactive {
		return ErrStatusLocked
	}

	if _, err := s.repo.UpdateStatus(ctx, id, StatusRejected, s.clock.Now()); err != nil {
		return err
	}

	s.auditSvc.LogAction(ctx, &adminID, "ACTIVITY_REJECTED", map[string]interface{}{
		"activity_id": id,
	}, ip, "success")

	utils.CacheDelete(ctx, listCacheKey)
	return nil
}

// ===========================
// 🚫 Cancel Activity (owning provider or admin)
func (s *service) CancelActivity(ctx context.Context, actorID uint, actorRole string, id string, ip string) error {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if actorRole != "admin" && a.ProviderID != actorID {
		return ErrNotOwner
	}
	if a.Status == StatusCancelled || a.Status == StatusExpired || a.Status == StatusRejected {
		return ErrStatusLocked
	}

	if _, err := s.repo.UpdateStatus(ctx, id, StatusCancelled, s.clock.Now()); err != nil {
		return err
	}

	if s.bookings != nil {
		s.bookings.CancelForActivity(ctx, id)
	}

	s.auditSvc.LogAction(ctx, &actorID, "ACTIVITY_CANCELLED", map[string]interface{}{
		"activity_id": id,
		"actor_role":  actorRole,
	}, ip, "success")

	utils.CacheDelete(ctx, listCacheKey)
	return nil
}

// ===========================
// ⏸ Delay Activity (owning provider)
func (s *service) DelayActivity(ctx context.Context, providerID uint, id string, req *DelayActivityRequest, ip string) error {
	delayed, err := time.Parse(time.RFC3339, req.DelayedDate)
	if err != nil {
		return errors.New("invalid delayed_date format, use RFC 3339")
	}

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if a.ProviderID != providerID {
		return ErrNotOwner
	}
	if a.Status == StatusCancelled || a.Status == StatusRejected || a.Status == StatusExpired {
		return ErrStatusLocked
	}

	a.Status = StatusDelayed
	a.DelayedDate = &delayed
	if err := s.repo.Update(ctx, a); err != nil {
		return err
	}

	s.auditSvc.LogAction(ctx, &providerID, "ACTIVITY_DELAYED", map[string]interface{}{
		"activity_id":  id,
		"delayed_date": delayed,
	}, ip, "success")

	utils.CacheDelete(ctx, listCacheKey)
	return nil
}

// ===========================
// 📅 Reschedule Activity (owning provider). This is the one path out of
// Delayed and Expired: the rescheduled dates take precedence and the
// next sweep re-derives the status from them.
func (s *service) RescheduleActivity(ctx context.Context, providerID uint, id string, req *RescheduleActivityRequest, ip string) error {
	start, err := time.Parse(time.RFC3339, req.StartDate)
	if err != nil {
		return errors.New("invalid start_date format, use RFC 3339")
	}
	end, err := time.Parse(time.RFC3339, req.EndDate)
	if err != nil {
		return errors.New("invalid end_date format, use RFC 3339")
	}
	if end.Before(start) {
		return ErrInvalidDates
	}

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if a.ProviderID != providerID {
		return ErrNotOwner
	}
	if a.Status == StatusCancelled || a.Status == StatusRejected {
		return ErrStatusLocked
	}

	a.RescheduledStartDate = &start
	a.RescheduledEndDate = &end
	a.DelayedDate = nil
	a.Status = StatusPending
	if err := s.repo.Update(ctx, a); err != nil {
		return err
	}

	s.auditSvc.LogAction(ctx, &providerID, "ACTIVITY_RESCHEDULED", map[string]interface{}{
		"activity_id": id,
		"start_date":  start,
		"end_date":    end,
	}, ip, "success")

	utils.CacheDelete(ctx, listCacheKey)
	return nil
}

// ===========================
// 🔄 Force Sweep (admin force refresh)
func (s *service) ForceSweep(ctx context.Context) ([]StatusChange, error) {
	changes, err := s.sweeper.SweepOnce(ctx, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if len(changes) > 0 {
		utils.CacheDelete(ctx, listCacheKey)
	}
	return changes, nil
}
