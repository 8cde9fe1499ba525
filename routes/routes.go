package routes

import (
	"gorm.io/gorm"

	"github.com/gin-gonic/gin"

	"github.com/brightkids/activity-booking-backend/config"
	"github.com/brightkids/activity-booking-backend/internal/auditlog"
	"github.com/brightkids/activity-booking-backend/internal/auth"
	"github.com/brightkids/activity-booking-backend/internal/booking"
	"github.com/brightkids/activity-booking-backend/internal/event"
	"github.com/brightkids/activity-booking-backend/internal/location"
	"github.com/brightkids/activity-booking-backend/internal/notification"
	"github.com/brightkids/activity-booking-backend/internal/order"
	"github.com/brightkids/activity-booking-backend/internal/product"
	"github.com/brightkids/activity-booking-backend/internal/reports"
	"github.com/brightkids/activity-booking-backend/internal/scheduler"
	"github.com/brightkids/activity-booking-backend/internal/student"
	"github.com/brightkids/activity-booking-backend/internal/template"
	"github.com/brightkids/activity-booking-backend/internal/term"
	"github.com/brightkids/activity-booking-backend/middleware"
	"github.com/brightkids/activity-booking-backend/utils"
)

// Services bundles what main needs a handle on after wiring.
type Services struct {
	Auth         auth.Service
	Notification notification.Repository
}

// Setup wires repositories, services and handlers, and registers every
// route. Returns the services main still needs (seeding, consumers).
func Setup(r *gin.Engine, cfg *config.Config, db *gorm.DB) *Services {
	// Repositories
	termRepo := term.NewRepository(db)
	locationRepo := location.NewRepository(db)
	productRepo := product.NewRepository(db)
	studentRepo := student.NewRepository(db)
	templateRepo := template.NewRepository(db)
	eventRepo := event.NewRepository(db)
	bookingRepo := booking.NewRepository(db)
	orderRepo := order.NewRepository(db)
	auditRepo := auditlog.NewRepository(db)
	notifRepo := notification.NewRepository(db)
	authRepo := auth.NewRepository(db)
	reportsRepo := reports.NewRepository(db)
	ledger := event.NewLedger(db)

	// Services
	auditSvc := auditlog.NewService(auditRepo)
	notifSvc := notification.NewService(notifRepo, cfg)
	authSvc := auth.NewService(authRepo, cfg)
	termSvc := term.NewService(termRepo, utils.Redis())
	templateSvc := template.NewService(templateRepo)
	eventSvc := event.NewService(eventRepo)
	orderSvc := order.NewService(db, orderRepo, studentRepo, productRepo, order.NewRazorpayGateway(cfg), auditSvc, utils.Redis())
	schedulerSvc := scheduler.NewService(db, cfg,
		orderRepo, bookingRepo, eventRepo, ledger,
		templateRepo, productRepo, locationRepo, termSvc,
		auditSvc, notifSvc)
	reportsSvc := reports.NewService(reportsRepo)

	// The payment path triggers reconciliation; wired after construction
	// because the scheduler depends on the order repository.
	orderSvc.SetReconciler(schedulerSvc)

	// Handlers
	authHandler := auth.NewHandler(authSvc)
	termHandler := term.NewHandler(termSvc)
	locationHandler := location.NewHandler(locationRepo)
	productHandler := product.NewHandler(productRepo)
	studentHandler := student.NewHandler(studentRepo)
	templateHandler := template.NewHandler(templateSvc)
	eventHandler := event.NewHandler(eventSvc)
	bookingHandler := booking.NewHandler(bookingRepo)
	orderHandler := order.NewHandler(orderSvc)
	schedulerHandler := scheduler.NewHandler(schedulerSvc)
	reportsHandler := reports.NewHandler(reportsSvc)
	auditHandler := auditlog.NewHandler(auditSvc)
	notifHandler := notification.NewHandler(notifSvc)

	api := r.Group("/api/v1")
	api.Use(middleware.AuditMiddleware())
	api.Use(middleware.RateLimiter())

	// Public: auth
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)

	// Public: browsing and purchase
	api.GET("/products", productHandler.ListProducts)
	api.GET("/products/:id", productHandler.GetProduct)
	api.GET("/locations", locationHandler.ListLocations)
	api.GET("/events", eventHandler.ListEvents)
	api.POST("/checkout", orderHandler.Checkout)
	api.POST("/payments/webhook", orderHandler.PaymentWebhook)

	// Authenticated staff
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(cfg))
	{
		protected.GET("/auth/me", authHandler.Me)

		protected.GET("/terms", termHandler.ListTerms)
		protected.GET("/terms/for-date", termHandler.GetTermForDate)
		protected.GET("/closures", termHandler.ListClosures)

		protected.GET("/events/:id", eventHandler.GetEvent)
		protected.PATCH("/events/:id/status", eventHandler.TransitionEvent)
		protected.GET("/events/:id/roster", reportsHandler.EventRoster)

		protected.GET("/bookings", bookingHandler.SearchBookings)
		protected.GET("/bookings/:id", bookingHandler.GetBooking)

		protected.GET("/students", studentHandler.ListStudents)
		protected.GET("/students/:id", studentHandler.GetStudent)
		protected.POST("/students", studentHandler.CreateStudent)

		protected.GET("/orders", orderHandler.ListOrders)
		protected.GET("/orders/:id", orderHandler.GetOrder)
		protected.GET("/orders/:id/receipt", reportsHandler.OrderReceipt)

		protected.GET("/templates", templateHandler.ListTemplates)
		protected.GET("/templates/:id", templateHandler.GetTemplate)

		protected.GET("/notifications", notifHandler.ListInApp)
		protected.PATCH("/notifications/:id/read", notifHandler.MarkAsRead)
	}

	// Admin only
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RequireAdmin())
	{
		admin.POST("/users", authHandler.CreateUser)
		admin.GET("/users", authHandler.ListUsers)

		admin.POST("/terms", termHandler.CreateTerm)
		admin.DELETE("/terms/:id", termHandler.DeleteTerm)
		admin.POST("/closures", termHandler.CreateClosure)
		admin.DELETE("/closures/:id", termHandler.DeleteClosure)

		admin.POST("/locations", locationHandler.CreateLocation)
		admin.PUT("/locations/:id", locationHandler.UpdateLocation)

		admin.POST("/products", productHandler.CreateProduct)

		admin.POST("/templates", templateHandler.CreateTemplate)
		admin.PUT("/templates/:id", templateHandler.UpdateTemplate)
		admin.DELETE("/templates/:id", templateHandler.DeactivateTemplate)
		admin.POST("/templates/:id/expand", schedulerHandler.ExpandTemplate)

		admin.POST("/orders/:id/reconcile", schedulerHandler.ReconcileOrder)
		admin.POST("/orders/:id/mark-paid", orderHandler.MarkPaid)
		admin.POST("/repair-orders", schedulerHandler.RepairOrders)

		admin.POST("/bookings/:id/cancel", schedulerHandler.CancelBooking)
		admin.POST("/events/:id/cancel", schedulerHandler.CancelEvent)

		admin.GET("/audit-logs", auditHandler.ListAuditLogs)
	}

	return &Services{
		Auth:         authSvc,
		Notification: notifRepo,
	}
}
