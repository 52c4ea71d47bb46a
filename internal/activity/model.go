package activity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActivityStatus is the closed set of lifecycle states. Transitions are
// driven either by the status sweep (time-based) or by explicit
// provider/admin actions; the sweep never touches Cancelled, Rejected,
// Expired, Delayed or Inactive rows.
type ActivityStatus string

const (
	StatusPending   ActivityStatus = "pending"
	StatusActive    ActivityStatus = "active"
	StatusInactive  ActivityStatus = "inactive"
	StatusRejected  ActivityStatus = "rejected"
	StatusCompleted ActivityStatus = "completed"
	StatusExpired   ActivityStatus = "expired"
	StatusCancelled ActivityStatus = "cancelled"
	StatusDelayed   ActivityStatus = "delayed"
)

// Valid reports whether s is a known status.
func (s ActivityStatus) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusInactive, StatusRejected,
		StatusCompleted, StatusExpired, StatusCancelled, StatusDelayed:
		return true
	}
	return false
}

// Bookable reports whether new bookings are admitted in this status.
func (s ActivityStatus) Bookable() bool {
	return s == StatusPending || s == StatusActive
}

// SweepSkipped reports whether the status sweep must leave this row
// alone. Cancelled and Rejected are terminal; Expired and Delayed only
// leave via an explicit provider reschedule; Inactive only leaves via
// an admin approval.
func (s ActivityStatus) SweepSkipped() bool {
	switch s {
	case StatusCancelled, StatusRejected, StatusExpired, StatusDelayed,
		StatusInactive:
		return true
	}
	return false
}

// ============================
// 🔷 GORM Activity Model
type Activity struct {
	ID          string  `gorm:"type:uuid;primaryKey" json:"id"`
	ProviderID  uint    `gorm:"not null;index" json:"provider_id"`
	CategoryID  uint    `gorm:"not null;index" json:"category_id"`
	Name        string  `gorm:"type:varchar(255);not null" json:"name"`
	Description string  `gorm:"type:text" json:"description"`
	Location    string  `gorm:"type:varchar(255)" json:"location"`
	Price       float64 `gorm:"type:decimal(10,2);not null" json:"price"`

	// TotalCapacity never changes after creation; AvailableSlots moves
	// between 0 and TotalCapacity as bookings come and go.
	TotalCapacity  int `gorm:"not null" json:"total_capacity"`
	AvailableSlots int `gorm:"not null" json:"available_slots"`

	StartDate            time.Time  `gorm:"not null;index" json:"start_date"`
	EndDate              time.Time  `gorm:"not null;index" json:"end_date"`
	DelayedDate          *time.Time `json:"delayed_date,omitempty"`
	RescheduledStartDate *time.Time `json:"rescheduled_start_date,omitempty"`
	RescheduledEndDate   *time.Time `json:"rescheduled_end_date,omitempty"`

	Status    ActivityStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`

	AverageRating float64 `gorm:"-" json:"average_rating,omitempty"`
}

func (a *Activity) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.New().String()
	}
	return nil
}

// EffectiveStart returns the rescheduled start when set, otherwise the
// original start date.
func (a *Activity) EffectiveStart() time.Time {
	if a.RescheduledStartDate != nil {
		return *a.RescheduledStartDate
	}
	return a.StartDate
}

// EffectiveEnd mirrors EffectiveStart for the end date.
func (a *Activity) EffectiveEnd() time.Time {
	if a.RescheduledEndDate != nil {
		return *a.RescheduledEndDate
	}
	return a.EndDate
}

// ============================
// 🟡 Requests

type CreateActivityRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Location    string  `json:"location" binding:"required"`
	CategoryID  uint    `json:"category_id" binding:"required"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	Capacity    int     `json:"capacity" binding:"required,gt=0"`
	StartDate   string  `json:"start_date" binding:"required"` // RFC 3339
	EndDate     string  `json:"end_date" binding:"required"`   // RFC 3339
}

type UpdateActivityRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Location    string   `json:"location" binding:"required"`
	CategoryID  uint     `json:"category_id" binding:"required"`
	Price       *float64 `json:"price,omitempty"`
}

type DelayActivityRequest struct {
	DelayedDate string `json:"delayed_date" binding:"required"` // RFC 3339
}

type RescheduleActivityRequest struct {
	StartDate string `json:"start_date" binding:"required"` // RFC 3339
	EndDate   string `json:"end_date" binding:"required"`   // RFC 3339
}

// ActivityFilter narrows listing queries.
type ActivityFilter struct {
	CategoryID uint
	ProviderID uint
	Status     ActivityStatus
	Search     string
	Limit      int
	Offset     int
}
