package activity

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, activity *Activity) error
	GetByID(ctx context.Context, id string) (*Activity, error)
	Update(ctx context.Context, activity *Activity) error
	ListWithFilters(ctx context.Context, filter ActivityFilter) ([]Activity, int64, error)

	// ListSweepCandidates loads the rows the status sweep may touch,
	// i.e. everything not in a sweep-skipped status.
	ListSweepCandidates(ctx context.Context) ([]Activity, error)

	// UpdateStatus flips the status as a conditional write: it is a
	// no-op (and returns false) when the row already carries newStatus,
	// so redundant sweeps stay write-free.
	UpdateStatus(ctx context.Context, id string, newStatus ActivityStatus, updatedAt time.Time) (bool, error)

	// ConditionalDecrementSlots reserves n slots if and only if the
	// activity is bookable and has at least n slots left. Returns false
	// without writing otherwise.
	ConditionalDecrementSlots(ctx context.Context, id string, n int) (bool, error)

	// ConditionalIncrementSlots returns n slots, capped so available
	// slots never exceed the immutable total capacity.
	ConditionalIncrementSlots(ctx context.Context, id string, n int) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db}
}

func (r *repository) Create(ctx context.Context, activity *Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *repository) GetByID(ctx context.Context, id string) (*Activity, error) {
	var a Activity
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActivityNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *repository) Update(ctx context.Context, activity *Activity) error {
	return r.db.WithContext(ctx).Save(activity).Error
}

func (r *repository) ListWithFilters(ctx context.Context, filter ActivityFilter) ([]Activity, int64, error) {
	var activities []Activity
	var total int64

	query := r.db.WithContext(ctx).Model(&Activity{})

	if filter.CategoryID != 0 {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if filter.ProviderID != 0 {
		query = query.Where("provider_id = ?", filter.ProviderID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		ilike := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ? OR location ILIKE ?", ilike, ilike, ilike)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("start_date ASC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}

	err := query.Find(&activities).Error
	return activities, total, err
}

func (r *repository) ListSweepCandidates(ctx context.Context) ([]Activity, error) {
	var activities []Activity
	err := r.db.WithContext(ctx).
		Where("status NOT IN ?", []ActivityStatus{StatusCancelled, StatusRejected, StatusExpired, StatusDelayed, StatusInactive}).
		Find(&activities).Error
	return activities, err
}

func (r *repository) UpdateStatus(ctx context.Context, id string, newStatus ActivityStatus, updatedAt time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&Activity{}).
		Where("id = ? AND status <> ?", id, newStatus).
		Updates(map[string]interface{}{
			"status":     newStatus,
			"updated_at": updatedAt,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) ConditionalDecrementSlots(ctx context.Context, id string, n int) (bool, error) {
	return decrementSlotsTx(r.db.WithContext(ctx), id, n)
}

func (r *repository) ConditionalIncrementSlots(ctx context.Context, id string, n int) (bool, error) {
	return incrementSlotsCappedTx(r.db.WithContext(ctx), id, n)
}

// decrementSlotsTx is the single serialization point for slot
// reservation: the guard lives in the WHERE clause so concurrent
// bookings can never drive available_slots negative. Shared with the
// booking repository, which calls it inside its own transaction.
func decrementSlotsTx(tx *gorm.DB, id string, n int) (bool, error) {
	res := tx.Model(&Activity{}).
		Where("id = ? AND status IN ? AND available_slots >= ?",
			id, []ActivityStatus{StatusPending, StatusActive}, n).
		UpdateColumn("available_slots", gorm.Expr("available_slots - ?", n))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// incrementSlotsCappedTx returns slots after a cancellation. LEAST keeps
// the counter within total_capacity even if capacity was edited since
// the booking was made.
func incrementSlotsCappedTx(tx *gorm.DB, id string, n int) (bool, error) {
	res := tx.Model(&Activity{}).
		Where("id = ?", id).
		UpdateColumn("available_slots", gorm.Expr("LEAST(available_slots + ?, total_capacity)", n))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DecrementSlotsTx exposes the conditional decrement for use inside a
// caller-owned transaction.
func DecrementSlotsTx(tx *gorm.DB, id string, n int) (bool, error) {
	return decrementSlotsTx(tx, id, n)
}

// IncrementSlotsCappedTx exposes the capped increment for use inside a
// caller-owned transaction.
func IncrementSlotsCappedTx(tx *gorm.DB, id string, n int) (bool, error) {
	return incrementSlotsCappedTx(tx, id, n)
}
