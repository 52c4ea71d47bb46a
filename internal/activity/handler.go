package activity

import (
	"errors"
	"net/http"
	"strconv"

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
// 🎯 POST /activities (provider)
func (h *Handler) CreateActivity(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req CreateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	a, err := h.service.CreateActivity(c.Request.Context(), user.ID, &req, middleware.GetIPFromContext(c))
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, a)
}

// ===========================
// 🔍 GET /activities/:id
func (h *Handler) GetActivity(c *gin.Context) {
	a, err := h.service.GetActivityByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, a)
}

// ===========================
// 📋 GET /activities
func (h *Handler) ListActivities(c *gin.Context) {
	filter := ActivityFilter{
		Search: c.Query("search"),
		Limit:  20,
	}
	if v := c.Query("category_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category_id"})
			return
		}
		filter.CategoryID = uint(id)
	}
	if v := c.Query("provider_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid provider_id"})
			return
		}
		filter.ProviderID = uint(id)
	}
	if v := c.Query("status"); v != "" {
		st := ActivityStatus(v)
		if !st.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		filter.Status = st
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			filter.Limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			filter.Offset = n
		}
	}

	activities, total, err := h.service.ListActivities(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list activities"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"activities": activities,
		"total":      total,
		"limit":      filter.Limit,
		"offset":     filter.Offset,
	})
}

// ===========================
// 🛠 PUT /activities/:id (owning provider)
func (h *Handler) UpdateActivity(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req UpdateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	a, err := h.service.UpdateActivity(c.Request.Context(), user.ID, c.Param("id"), &req, middleware.GetIPFromContext(c))
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, a)
}

// ===========================
// ✅ POST /admin/activities/:id/approve (admin)
func (h *Handler) ApproveActivity(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.service.ApproveActivity(c.Request.Context(), user.ID, c.Param("id"), middleware.GetIPFromContext(c)); err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "activity approved"})
}

// ===========================
// ⛔ POST /admin/activities/:id/deactivate (admin)
func (h *Handler) DeactivateActivity(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.service.DeactivateActivity(c.Request.Context(), user.ID, c.Param("id"), middleware.GetIPFromContext(c)); err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "activity deactivated"})
}

// ===========================
// ❌ POST /admin/activities/:id/reject (admin)
func (h *Handler) RejectActivity(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.service.RejectActivity(c.Request.Context(), user.ID, c.Param("id"), middleware.GetIPFromContext(c)); err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "activity rejected"})
}

// ===========================
// 🚫 POST /activities/:id/cancel (owning provider or admin)
func (h *Handler) CancelActivity(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.service.CancelActivity(c.Request.Context(), user.ID, user.Role, c.Param("id"), middleware.GetIPFromContext(c)); err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "activity cancelled"})
}

// ===========================
// ⏸ POST /activities/:id/delay (owning provider)
func (h *Handler) DelayActivity(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req DelayActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.DelayActivity(c.Request.Context(), user.ID, c.Param("id"), &req, middleware.GetIPFromContext(c)); err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "activity delayed"})
}

// ===========================
// 📅 POST /activities/:id/reschedule (owning provider)
func (h *Handler) RescheduleActivity(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req RescheduleActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.RescheduleActivity(c.Request.Context(), user.ID, c.Param("id"), &req, middleware.GetIPFromContext(c)); err != nil {
		c.JSON(statusForError(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "activity rescheduled"})
}

// ===========================
// 🔄 POST /admin/activities/sweep (admin force refresh)
func (h *Handler) ForceSweep(c *gin.Context) {
	changes, err := h.service.ForceSweep(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sweep failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"changed": len(changes),
		"changes": changes,
	})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, ErrActivityNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNotOwner):
		return http.StatusForbidden
	case errors.Is(err, ErrStatusLocked):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidDates):
		return http.StatusBadRequest
	default:
		return http.StatusBadRequest
	}
}
