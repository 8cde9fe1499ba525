package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/brightkids/activity-booking-backend/config"
	"github.com/brightkids/activity-booking-backend/database"
	"github.com/brightkids/activity-booking-backend/internal/auditlog"
	"github.com/brightkids/activity-booking-backend/internal/auth"
	"github.com/brightkids/activity-booking-backend/internal/booking"
	"github.com/brightkids/activity-booking-backend/internal/event"
	"github.com/brightkids/activity-booking-backend/internal/location"
	"github.com/brightkids/activity-booking-backend/internal/notification"
	"github.com/brightkids/activity-booking-backend/internal/order"
	"github.com/brightkids/activity-booking-backend/internal/product"
	"github.com/brightkids/activity-booking-backend/internal/student"
	"github.com/brightkids/activity-booking-backend/internal/template"
	"github.com/brightkids/activity-booking-backend/internal/term"
	"github.com/brightkids/activity-booking-backend/routes"
	"github.com/brightkids/activity-booking-backend/utils"
)

func main() {
	cfg := config.Load()
	db := database.Connect(cfg)

	// Redis is optional; term caching and webhook dedup degrade to DB-only.
	if err := utils.InitRedis(cfg); err != nil {
		log.Printf("⚠️ Redis init failed, continuing without cache: %v", err)
	}

	utils.InitializeKafka(cfg)

	log.Println("🔄 Running database migrations...")
	if err := db.AutoMigrate(
		&auth.User{},
		&auditlog.AuditLog{},
		&term.Term{},
		&term.ClosureDate{},
		&location.Location{},
		&product.Product{},
		&student.Student{},
		&template.RecurringTemplate{},
		&event.Event{},
		&booking.Booking{},
		&order.Order{},
		&order.OrderItem{},
		&notification.InAppNotification{},
	); err != nil {
		log.Fatalf("❌ DB AutoMigrate failed: %v", err)
	}
	log.Println("✅ Database migrations completed")

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:4173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "Content-Length", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	svcs := routes.Setup(router, cfg, db)

	ctx := context.Background()
	if err := svcs.Auth.SeedAdminUser(ctx); err != nil {
		log.Fatalf("❌ Failed to seed admin user: %v", err)
	}

	go notification.StartKafkaConsumer(ctx, cfg, svcs.Notification)

	log.Printf("🚀 Listening on :%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("❌ Server failed: %v", err)
	}
}
