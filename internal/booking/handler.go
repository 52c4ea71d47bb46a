package booking

import (
	"errors"
	"net/http"

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
// 🎯 POST /bookings (tourist)
func (h *Handler) CreateBooking(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), user, &req, middleware.GetIPFromContext(c))
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, b)
}

// ===========================
// 🚫 POST /bookings/:id/cancel
func (h *Handler) CancelBooking(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	b, err := h.service.CancelBooking(c.Request.Context(), user, c.Param("id"), middleware.GetIPFromContext(c))
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, b)
}

// ===========================
// 🔍 GET /bookings/:id
func (h *Handler) GetBooking(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	b, err := h.service.GetBooking(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, b)
}

// ===========================
// 📋 GET /bookings (own bookings)
func (h *Handler) ListMyBookings(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	bookings, err := h.service.ListMyBookings(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list bookings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// ===========================
// 📋 GET /provider/bookings (provider)
func (h *Handler) ListProviderBookings(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	bookings, err := h.service.ListProviderBookings(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list bookings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, ErrBookingNotFound), errors.Is(err, activity.ErrActivityNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, ErrBookingNotCancelable),
		errors.Is(err, activity.ErrActivityNotBookable),
		errors.Is(err, activity.ErrInsufficientSlots):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidPeople):
		return http.StatusBadRequest
	default:
		return http.StatusBadRequest
	}
}
