package reports

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kiran0823/tour-booking-backend/middleware"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// ===========================
// 📊 GET /provider/reports/bookings?format=xlsx
func (h *Handler) ProviderBookingsReport(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	format := c.DefaultQuery("format", FormatExcel)
	data, filename, contentType, err := h.service.ProviderBookingsReport(c.Request.Context(), user.ID, format)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, data)
}

// ===========================
// 📊 GET /admin/reports/activities?format=csv
func (h *Handler) ActivitiesReport(c *gin.Context) {
	format := c.DefaultQuery("format", FormatExcel)
	data, filename, contentType, err := h.service.ActivitiesReport(c.Request.Context(), format)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, data)
}
