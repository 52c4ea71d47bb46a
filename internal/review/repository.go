package review

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/kiran0823/tour-booking-backend/internal/booking"
)

var ErrReviewNotFound = errors.New("review not found")

type Repository interface {
	Create(ctx context.Context, r *Review) error
	Update(ctx context.Context, r *Review) error
	Delete(ctx context.Context, id uint) error
	GetByID(ctx context.Context, id uint) (*Review, error)
	GetByUserAndActivity(ctx context.Context, userID uint, activityID string) (*Review, error)
	ListByActivity(ctx context.Context, activityID string) ([]Review, error)
	AverageRating(ctx context.Context, activityID string) (float64, error)

	// HasCompletedBooking reports whether the user finished a booking
	// for the activity, which is what gates writing a review.
	HasCompletedBooking(ctx context.Context, userID uint, activityID string) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db}
}

func (r *repository) Create(ctx context.Context, rev *Review) error {
	return r.db.WithContext(ctx).Create(rev).Error
}

func (r *repository) Update(ctx context.Context, rev *Review) error {
	return r.db.WithContext(ctx).Save(rev).Error
}

func (r *repository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&Review{}, id).Error
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Review, error) {
	var rev Review
	err := r.db.WithContext(ctx).First(&rev, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return &rev, nil
}

func (r *repository) GetByUserAndActivity(ctx context.Context, userID uint, activityID string) (*Review, error) {
	var rev Review
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND activity_id = ?", userID, activityID).
		First(&rev).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	return &rev, nil
}

func (r *repository) ListByActivity(ctx context.Context, activityID string) ([]Review, error) {
	var reviews []Review
	err := r.db.WithContext(ctx).
		Select("reviews.*, users.full_name AS user_name").
		Joins("JOIN users ON users.id = reviews.user_id").
		Where("reviews.activity_id = ?", activityID).
		Order("reviews.created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

func (r *repository) AverageRating(ctx context.Context, activityID string) (float64, error) {
	var avg float64
	err := r.db.WithContext(ctx).
		Model(&Review{}).
		Where("activity_id = ?", activityID).
		Select("COALESCE(AVG(rating), 0)").
		Scan(&avg).Error
	return avg, err
}

func (r *repository) HasCompletedBooking(ctx context.Context, userID uint, activityID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&booking.Booking{}).
		Where("user_id = ? AND activity_id = ? AND status = ?",
			userID, activityID, booking.BookingCompleted).
		Count(&count).Error
	return count > 0, err
}
