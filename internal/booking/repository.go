package booking

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/kiran0823/tour-booking-backend/internal/activity"
)

type Repository interface {
	// CreateWithAdmission atomically reserves slots on the activity and
	// inserts the booking. When the reservation cannot be made it
	// returns one of the activity sentinels describing why.
	CreateWithAdmission(ctx context.Context, b *Booking) error

	// CancelWithRestore atomically flips a still-cancelable booking to
	// canceled and returns its slots to the activity, capped at the
	// activity's total capacity.
	CancelWithRestore(ctx context.Context, id string) (*Booking, error)

	GetByID(ctx context.Context, id string) (*Booking, error)
	ListByUser(ctx context.Context, userID uint) ([]Booking, error)
	ListByActivity(ctx context.Context, activityID string) ([]Booking, error)
	ListByProvider(ctx context.Context, providerID uint) ([]Booking, error)

	// MarkPaid confirms a pending booking after a verified payment.
	MarkPaid(ctx context.Context, id string) (bool, error)
	MarkPaymentFailed(ctx context.Context, id string) error

	// SettleCompleted flips paid, confirmed bookings of an expired
	// activity to completed. Returns the number of bookings settled.
	SettleCompleted(ctx context.Context, activityID string, completedAt time.Time) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db}
}

func (r *repository) CreateWithAdmission(ctx context.Context, b *Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := activity.DecrementSlotsTx(tx, b.ActivityID, b.NumberOfPeople)
		if err != nil {
			return err
		}
		if !ok {
			// The guarded UPDATE matched nothing. Re-read inside the
			// same transaction to report why.
			var a activity.Activity
			if err := tx.Where("id = ?", b.ActivityID).First(&a).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return activity.ErrActivityNotFound
				}
				return err
			}
			if !a.Status.Bookable() {
				return activity.ErrActivityNotBookable
			}
			return activity.ErrInsufficientSlots
		}
		return tx.Create(b).Error
	})
}

func (r *repository) CancelWithRestore(ctx context.Context, id string) (*Booking, error) {
	var b Booking
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Booking{}).
			Where("id = ? AND status IN ?", id, []BookingStatus{BookingPending, BookingConfirmed}).
			Update("status", BookingCanceled)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if err := tx.Where("id = ?", id).First(&b).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrBookingNotFound
				}
				return err
			}
			return ErrBookingNotCancelable
		}
		if err := tx.Where("id = ?", id).First(&b).Error; err != nil {
			return err
		}
		_, err := activity.IncrementSlotsCappedTx(tx, b.ActivityID, b.NumberOfPeople)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Booking, error) {
	var b Booking
	err := r.db.WithContext(ctx).Preload("Activity").Where("id = ?", id).First(&b).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uint) ([]Booking, error) {
	var bookings []Booking
	err := r.db.WithContext(ctx).
		Preload("Activity").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&bookings).Error
	return bookings, err
}

func (r *repository) ListByActivity(ctx context.Context, activityID string) ([]Booking, error) {
	var bookings []Booking
	err := r.db.WithContext(ctx).
		Where("activity_id = ?", activityID).
		Order("created_at DESC").
		Find(&bookings).Error
	return bookings, err
}

func (r *repository) ListByProvider(ctx context.Context, providerID uint) ([]Booking, error) {
	var bookings []Booking
	err := r.db.WithContext(ctx).
		Preload("Activity").
		Joins("JOIN activities ON activities.id = bookings.activity_id").
		Where("activities.provider_id = ?", providerID).
		Order("bookings.created_at DESC").
		Find(&bookings).Error
	return bookings, err
}

func (r *repository) MarkPaid(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ? AND status = ? AND payment_status = ?", id, BookingPending, PaymentPending).
		Updates(map[string]interface{}{
			"status":         BookingConfirmed,
			"payment_status": PaymentPaid,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) MarkPaymentFailed(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ? AND payment_status = ?", id, PaymentPending).
		Update("payment_status", PaymentFailed).Error
}

func (r *repository) SettleCompleted(ctx context.Context, activityID string, completedAt time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("activity_id = ? AND status = ? AND payment_status = ?",
			activityID, BookingConfirmed, PaymentPaid).
		Updates(map[string]interface{}{
			"status":     BookingCompleted,
			"updated_at": completedAt,
		})
	return res.RowsAffected, res.Error
}
