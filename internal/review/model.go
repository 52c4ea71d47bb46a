package review

import "time"

// ============================
// 🔷 GORM Review Model
type Review struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	UserID     uint   `gorm:"not null;uniqueIndex:idx_reviews_user_activity" json:"user_id"`
	ActivityID string `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_user_activity;index" json:"activity_id"`

	Rating  int    `gorm:"not null" json:"rating"`
	Comment string `gorm:"type:text" json:"comment"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	UserName string `gorm:"-" json:"user_name,omitempty"`
}

// ============================
// 🟡 Requests

type CreateReviewRequest struct {
	ActivityID string `json:"activity_id" binding:"required,uuid"`
	Rating     int    `json:"rating" binding:"required,min=1,max=5"`
	Comment    string `json:"comment"`
}

type UpdateReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}
