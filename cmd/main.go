package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
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
	"github.com/kiran0823/tour-booking-backend/internal/review"
	"github.com/kiran0823/tour-booking-backend/routes"
	"github.com/kiran0823/tour-booking-backend/utils"
)

func main() {
	cfg := config.Load()
	db := database.Connect(cfg)

	// Init Redis (optional; sweep leases and list caching degrade
	// gracefully without it)
	if err := utils.InitRedis(cfg); err != nil {
		log.Printf("⚠️ Redis init failed: %v", err)
	}

	// Init Kafka
	utils.InitializeKafka(cfg)

	// Auto-migrate models
	log.Println("🔄 Running database migrations...")
	if err := db.AutoMigrate(
		&auth.User{},
		&auditlog.AuditLog{},
		&category.Category{},
		&activity.Activity{},
		&booking.Booking{},
		&payment.Payment{},
		&review.Review{},
		&notification.InAppNotification{},
	); err != nil {
		panic(fmt.Sprintf("❌ DB AutoMigrate failed: %v", err))
	}
	log.Println("✅ Database migrations completed")

	if err := auth.SeedAdminUser(db); err != nil {
		panic(fmt.Sprintf("❌ Failed to seed admin user: %v", err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://127.0.0.1:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Content-Length", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	deps := routes.Setup(router, cfg)

	// Kafka booking events -> in-app notifications
	if reader := utils.NewBookingReader(cfg); reader != nil {
		go deps.NotificationSvc.StartBookingConsumer(ctx, reader)
	}

	// Periodic activity status sweep
	scheduler := activity.NewScheduler(deps.Sweeper, utils.SystemClock{}, cfg.SweepInterval)
	scheduler.Start(ctx)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		log.Printf("🚀 Server listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("🛑 Shutting down...")

	scheduler.Stop()
	utils.CloseKafka()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️ Server shutdown error: %v", err)
	}
	log.Println("👋 Bye")
}
