package review

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kiran0823/tour-booking-backend/internal/activity"
	"github.com/kiran0823/tour-booking-backend/middleware"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// ===========================
// ⭐ POST /reviews (tourist)
func (h *Handler) CreateReview(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rev, err := h.service.CreateReview(c.Request.Context(), user.ID, &req, middleware.GetIPFromContext(c))
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, rev)
}

// ===========================
// ⭐ PUT /reviews/:id
func (h *Handler) UpdateReview(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid review id"})
		return
	}

	var req UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rev, err := h.service.UpdateReview(c.Request.Context(), user.ID, uint(id), &req, middleware.GetIPFromContext(c))
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, rev)
}

// ===========================
// ⭐ DELETE /reviews/:id
func (h *Handler) DeleteReview(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid review id"})
		return
	}

	if err := h.service.DeleteReview(c.Request.Context(), user.ID, user.Role, uint(id), middleware.GetIPFromContext(c)); err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "review deleted"})
}

// ===========================
// 📋 GET /activities/:id/reviews
func (h *Handler) ListByActivity(c *gin.Context) {
	reviews, avg, err := h.service.ListByActivity(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews":        reviews,
		"average_rating": avg,
	})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, ErrReviewNotFound), errors.Is(err, activity.ErrActivityNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNotYourReview):
		return http.StatusForbidden
	case errors.Is(err, ErrNotEligible), errors.Is(err, ErrAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusBadRequest
	}
}
