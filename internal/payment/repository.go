package payment

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrPaymentNotFound = errors.New("payment not found")

type Repository interface {
	Create(ctx context.Context, p *Payment) error
	GetByOrderID(ctx context.Context, orderID string) (*Payment, error)
	GetByBookingID(ctx context.Context, bookingID string) (*Payment, error)
	UpdateOutcome(ctx context.Context, orderID string, params OutcomeParams) error
}

// OutcomeParams carries the verified payment outcome.
type OutcomeParams struct {
	Status    PaymentState
	PaymentID *string
	Method    string
	PaidAt    *time.Time
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db}
}

func (r *repository) Create(ctx context.Context, p *Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *repository) GetByOrderID(ctx context.Context, orderID string) (*Payment, error) {
	var p Payment
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) GetByBookingID(ctx context.Context, bookingID string) (*Payment, error) {
	var p Payment
	err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) UpdateOutcome(ctx context.Context, orderID string, params OutcomeParams) error {
	updates := map[string]interface{}{
		"status": params.Status,
		"method": params.Method,
	}
	if params.PaymentID != nil {
		updates["payment_id"] = *params.PaymentID
	}
	if params.PaidAt != nil {
		updates["paid_at"] = *params.PaidAt
	}
	return r.db.WithContext(ctx).
		Model(&Payment{}).
		Where("order_id = ?", orderID).
		Updates(updates).Error
}
