package payment

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentState string

const (
	StateCreated PaymentState = "created"
	StatePaid    PaymentState = "paid"
	StateFailed  PaymentState = "failed"
)

// ============================
// 🔷 GORM Payment Model (one payment attempt chain per booking)
type Payment struct {
	ID        string `gorm:"type:uuid;primaryKey" json:"id"`
	BookingID string `gorm:"type:uuid;not null;uniqueIndex" json:"booking_id"`
	UserID    uint   `gorm:"not null;index" json:"user_id"`

	Amount   float64 `gorm:"type:decimal(10,2);not null" json:"amount"`
	Currency string  `gorm:"type:varchar(3);not null;default:'INR'" json:"currency"`

	OrderID   string  `gorm:"type:varchar(64);not null;uniqueIndex" json:"order_id"`
	PaymentID *string `gorm:"type:varchar(64)" json:"payment_id,omitempty"`
	Method    string  `gorm:"type:varchar(30)" json:"method,omitempty"`

	Status PaymentState `gorm:"type:varchar(20);not null;default:'created'" json:"status"`
	PaidAt *time.Time   `json:"paid_at,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// ============================
// 🟡 Requests / Responses

type StartPaymentRequest struct {
	BookingID string `json:"booking_id" binding:"required,uuid"`
}

type StartPaymentResponse struct {
	OrderID     string  `json:"order_id"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	RazorpayKey string  `json:"razorpay_key"`
}

type VerifyPaymentRequest struct {
	OrderID     string `json:"razorpayOrderId" binding:"required"`
	PaymentID   string `json:"razorpayPaymentId" binding:"required"`
	RazorpaySig string `json:"razorpaySig" binding:"required"`
}
