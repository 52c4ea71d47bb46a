package booking

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kiran0823/tour-booking-backend/internal/activity"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCanceled  BookingStatus = "canceled"
	BookingCompleted BookingStatus = "completed"
)

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// MaxPeoplePerBooking caps a single booking's party size.
const MaxPeoplePerBooking = 50

// ============================
// 🔷 GORM Booking Model
type Booking struct {
	ID         string `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uint   `gorm:"not null;index" json:"user_id"`
	ActivityID string `gorm:"type:uuid;not null;index" json:"activity_id"`

	NumberOfPeople int `gorm:"not null" json:"number_of_people"`

	// TotalPrice is captured at booking time and never recomputed from
	// the activity's current price.
	TotalPrice float64 `gorm:"type:decimal(10,2);not null" json:"total_price"`

	Status        BookingStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"payment_status"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	Activity *activity.Activity `gorm:"foreignKey:ActivityID" json:"activity,omitempty"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
	return nil
}

// Cancelable reports whether the booking can still be canceled and its
// slots returned to the activity.
func (s BookingStatus) Cancelable() bool {
	return s == BookingPending || s == BookingConfirmed
}

// ============================
// 🟡 Requests

type CreateBookingRequest struct {
	ActivityID     string `json:"activity_id" binding:"required,uuid"`
	NumberOfPeople int    `json:"number_of_people" binding:"required"`
}
