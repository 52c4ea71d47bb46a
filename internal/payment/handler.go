package payment

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kiran0823/tour-booking-backend/internal/booking"
	"github.com/kiran0823/tour-booking-backend/middleware"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// ===========================
// 💳 POST /payments/start (tourist)
func (h *Handler) StartPayment(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req StartPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.service.StartPayment(c.Request.Context(), user, &req, middleware.GetIPFromContext(c))
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ===========================
// ✅ POST /payments/verify
func (h *Handler) VerifyPayment(c *gin.Context) {
	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.VerifyAndSettle(c.Request.Context(), &req, middleware.GetIPFromContext(c)); err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "payment verified"})
}

// ===========================
// 🧾 GET /bookings/:id/receipt
func (h *Handler) DownloadReceipt(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	data, filename, err := h.service.GenerateReceipt(c.Request.Context(), user, c.Param("id"))
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", data)
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, ErrPaymentNotFound), errors.Is(err, booking.ErrBookingNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNotYourBooking), errors.Is(err, booking.ErrUnauthorized):
		return http.StatusForbidden
	case errors.Is(err, ErrBookingNotOpen), errors.Is(err, ErrReceiptNotReady):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidSig):
		return http.StatusBadRequest
	default:
		return http.StatusBadRequest
	}
}
