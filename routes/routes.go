package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/kiran0823/tour-booking-backend/config"
	"github.com/kiran0823/tour-booking-backend/database"
	"github.com/kiran0823/tour-booking-backend/internal/activity"
	"github.com/kiran0823/tour-booking-backend/internal/auditlog"
	"github.com/kiran0823/tour-booking-backend/internal/auth"
	"github.com/kiran0823/tour-booking-backend/internal/booking"
	"github.com/kiran0823/tour-booking-backend/internal/category"
	"github.com/kiran0823/tour-booking-backend/internal/notification"
	"github.com/kiran0823/tour-booking-backend/internal/payment"
	"github.com/kiran0823/tour-booking-backend/internal/reports"
	"github.com/kiran0823/tour-booking-backend/internal/review"
	"github.com/kiran0823/tour-booking-backend/middleware"
	"github.com/kiran0823/tour-booking-backend/utils"
)

// Deps exposes the pieces main needs outside the HTTP surface: the
// sweeper behind the periodic scheduler and the notification service
// behind the Kafka consumer.
type Deps struct {
	Sweeper         *activity.Sweeper
	NotificationSvc notification.Service
}

func Setup(r *gin.Engine, cfg *config.Config) *Deps {
	clock := utils.SystemClock{}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimiter())

	// ========== Audit Log Module ==========
	auditRepo := auditlog.NewRepository(database.DB)
	auditSvc := auditlog.NewService(auditRepo)
	auditHandler := auditlog.NewHandler(auditSvc)

	// ========== Auth ==========
	authRepo := auth.NewRepository(database.DB)
	authSvc := auth.NewService(authRepo, cfg)
	authHandler := auth.NewHandler(authSvc)

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.GET("/me", middleware.AuthMiddleware(cfg, authSvc), authHandler.Me)
	}

	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg, authSvc))

	// ========== Categories ==========
	categoryRepo := category.NewRepository(database.DB)
	categorySvc := category.NewService(categoryRepo)
	categoryHandler := category.NewHandler(categorySvc)

	api.GET("/categories", categoryHandler.ListCategories)
	api.GET("/categories/:id", categoryHandler.GetCategoryByID)
	adminCategories := protected.Group("/categories", middleware.RequireRoles(auth.RoleAdmin))
	{
		adminCategories.POST("", categoryHandler.CreateCategory)
		adminCategories.PUT("/:id", categoryHandler.UpdateCategory)
		adminCategories.DELETE("/:id", categoryHandler.DeleteCategory)
	}

	// ========== Activities + bookings + status sweep ==========
	activityRepo := activity.NewRepository(database.DB)
	bookingRepo := booking.NewRepository(database.DB)
	reviewRepo := review.NewRepository(database.DB)
	bookingSvc := booking.NewService(bookingRepo, activityRepo, authSvc, auditSvc, clock)
	sweeper := activity.NewSweeper(activityRepo, bookingRepo)
	activitySvc := activity.NewService(activityRepo, sweeper, bookingSvc, reviewRepo, auditSvc, clock)
	activityHandler := activity.NewHandler(activitySvc)

	api.GET("/activities", activityHandler.ListActivities)
	api.GET("/activities/:id", activityHandler.GetActivity)

	providerActivities := protected.Group("/activities", middleware.RequireRoles(auth.RoleProvider, auth.RoleAdmin))
	{
		providerActivities.POST("", activityHandler.CreateActivity)
		providerActivities.PUT("/:id", activityHandler.UpdateActivity)
		providerActivities.POST("/:id/cancel", activityHandler.CancelActivity)
		providerActivities.POST("/:id/delay", activityHandler.DelayActivity)
		providerActivities.POST("/:id/reschedule", activityHandler.RescheduleActivity)
	}

	// ========== Bookings ==========
	bookingHandler := booking.NewHandler(bookingSvc)

	tourists := protected.Group("/bookings")
	{
		tourists.POST("", middleware.RequireRoles(auth.RoleTourist), bookingHandler.CreateBooking)
		tourists.GET("", bookingHandler.ListMyBookings)
		tourists.GET("/:id", bookingHandler.GetBooking)
		tourists.POST("/:id/cancel", bookingHandler.CancelBooking)
	}
	protected.GET("/provider/bookings", middleware.RequireRoles(auth.RoleProvider), bookingHandler.ListProviderBookings)

	// ========== Payments ==========
	paymentRepo := payment.NewRepository(database.DB)
	paymentSvc := payment.NewService(paymentRepo, bookingSvc, cfg, auditSvc, clock)
	paymentHandler := payment.NewHandler(paymentSvc)

	payments := protected.Group("/payments")
	{
		payments.POST("/start", middleware.RequireRoles(auth.RoleTourist), paymentHandler.StartPayment)
		payments.POST("/verify", paymentHandler.VerifyPayment)
	}
	protected.GET("/bookings/:id/receipt", paymentHandler.DownloadReceipt)

	// ========== Reviews ==========
	reviewSvc := review.NewService(reviewRepo, activityRepo, auditSvc)
	reviewHandler := review.NewHandler(reviewSvc)

	api.GET("/activities/:id/reviews", reviewHandler.ListByActivity)
	reviewGroup := protected.Group("/reviews")
	{
		reviewGroup.POST("", middleware.RequireRoles(auth.RoleTourist), reviewHandler.CreateReview)
		reviewGroup.PUT("/:id", reviewHandler.UpdateReview)
		reviewGroup.DELETE("/:id", reviewHandler.DeleteReview)
	}

	// ========== Notifications ==========
	notificationRepo := notification.NewRepository(database.DB)
	notificationSvc := notification.NewService(notificationRepo)
	notificationHandler := notification.NewHandler(notificationSvc)

	notifications := protected.Group("/notifications")
	{
		notifications.GET("", notificationHandler.ListNotifications)
		notifications.GET("/unread-count", notificationHandler.UnreadCount)
		notifications.POST("/:id/read", notificationHandler.MarkRead)
		notifications.POST("/read-all", notificationHandler.MarkAllRead)
	}

	// ========== Reports ==========
	reportsSvc := reports.NewService(database.DB, reports.NewExporter())
	reportsHandler := reports.NewHandler(reportsSvc)

	protected.GET("/provider/reports/bookings", middleware.RequireRoles(auth.RoleProvider), reportsHandler.ProviderBookingsReport)

	// ========== Admin ==========
	admin := protected.Group("/admin", middleware.RequireRoles(auth.RoleAdmin))
	{
		admin.POST("/activities/:id/approve", activityHandler.ApproveActivity)
		admin.POST("/activities/:id/deactivate", activityHandler.DeactivateActivity)
		admin.POST("/activities/:id/reject", activityHandler.RejectActivity)
		admin.POST("/activities/sweep", activityHandler.ForceSweep)
		admin.GET("/reports/activities", reportsHandler.ActivitiesReport)
		admin.GET("/audit-logs", auditHandler.ListAuditLogs)
		admin.GET("/audit-logs/:id", auditHandler.GetAuditLogByID)
	}

	return &Deps{
		Sweeper:         sweeper,
		NotificationSvc: notificationSvc,
	}
}
