package order

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/brightkids/activity-booking-backend/internal/auditlog"
	"github.com/brightkids/activity-booking-backend/internal/product"
	"github.com/brightkids/activity-booking-backend/internal/student"
)

// ErrInvalidSignature is returned for webhook payloads that fail HMAC
// verification.
var ErrInvalidSignature = errors.New("invalid payment signature")

// Reconciler is the slice of the scheduler the payment path needs.
// Satisfied by the scheduler facade; injected to avoid a package cycle.
type Reconciler interface {
	ReconcilePaidOrder(ctx context.Context, orderID uint, ip string) error
}

type Service interface {
	Checkout(ctx context.Context, req CheckoutRequest, ip string) (*CheckoutResponse, error)
	// HandlePaymentConfirmation verifies the webhook, marks the order
	// PAID and triggers reconciliation. Safe under at-least-once webhook
	// delivery.
	HandlePaymentConfirmation(ctx context.Context, req WebhookRequest, ip string) (*Order, error)
	// MarkPaid is the manual recovery path for confirmations the webhook
	// never delivered.
	MarkPaid(ctx context.Context, orderID uint, paymentRef string, ip string) (*Order, error)
	GetByID(ctx context.Context, id uint) (*Order, error)
	ListByStatus(ctx context.Context, status Status) ([]Order, error)

	SetReconciler(r Reconciler)
}

type service struct {
	db         *gorm.DB
	repo       Repository
	students   student.Repository
	products   product.Repository
	gateway    Gateway
	auditSvc   auditlog.Service
	reconciler Reconciler
	cache      *redis.Client // nil when Redis is not configured
}

func NewService(db *gorm.DB, repo Repository, students student.Repository, products product.Repository, gateway Gateway, auditSvc auditlog.Service, cache *redis.Client) Service {
	return &service{
		db:       db,
		repo:     repo,
		students: students,
		products: products,
		gateway:  gateway,
		auditSvc: auditSvc,
		cache:    cache,
	}
}

// SetReconciler wires the scheduler facade in after construction; the
// facade itself depends on the order repository.
func (s *service) SetReconciler(r Reconciler) {
	s.reconciler = r
}

func (s *service) Checkout(ctx context.Context, req CheckoutRequest, ip string) (*CheckoutResponse, error) {
	o := &Order{
		CustomerEmail: req.CustomerEmail,
		CustomerName:  req.CustomerName,
		Status:        StatusPending,
		LocationID:    req.LocationID,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		var total float64
		var items []OrderItem
		for _, item := range req.Items {
			p, err := s.products.GetByID(ctx, item.ProductID)
			if err != nil {
				return fmt.Errorf("product %d: %w", item.ProductID, err)
			}
			if !p.IsActive {
				return fmt.Errorf("product %q is not bookable", p.Name)
			}

			bookingDate, err := time.Parse("2006-01-02", item.BookingDate)
			if err != nil {
				return errors.New("invalid booking_date format. Use YYYY-MM-DD")
			}

			var birthdate *time.Time
			if item.Birthdate != "" {
				parsed, err := time.Parse("2006-01-02", item.Birthdate)
				if err != nil {
					return errors.New("invalid birthdate format. Use YYYY-MM-DD")
				}
				birthdate = &parsed
			}

			st, err := s.students.FindOrCreate(ctx, item.StudentName, birthdate, item.Allergies)
			if err != nil {
				return fmt.Errorf("find or create student: %w", err)
			}

			items = append(items, OrderItem{
				ProductID:   p.ID,
				StudentID:   st.ID,
				BookingDate: bookingDate,
				Price:       p.Price,
			})
			total += p.Price
		}

		o.TotalAmount = total
		o.OrderItems = items
		return repo.Create(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	receipt := uuid.New().String()
	gatewayRef, err := s.gateway.CreatePaymentOrder(o.TotalAmount, receipt, map[string]interface{}{
		"order_id":       o.ID,
		"customer_email": o.CustomerEmail,
	})
	if err != nil {
		s.auditSvc.LogAction(ctx, nil, "CHECKOUT_FAILED", map[string]interface{}{
			"order_id": o.ID,
			"error":    err.Error(),
		}, ip, "failure")
		return nil, err
	}

	o.GatewayRef = gatewayRef
	if err := s.db.WithContext(ctx).Model(&Order{}).Where("id = ?", o.ID).
		Update("gateway_ref", gatewayRef).Error; err != nil {
		return nil, err
	}

	s.auditSvc.LogAction(ctx, nil, "CHECKOUT_STARTED", map[string]interface{}{
		"order_id":     o.ID,
		"gateway_ref":  gatewayRef,
		"total_amount": o.TotalAmount,
		"items":        len(o.OrderItems),
	}, ip, "success")

	return &CheckoutResponse{OrderID: o.ID, GatewayRef: gatewayRef, TotalAmount: o.TotalAmount}, nil
}

func (s *service) HandlePaymentConfirmation(ctx context.Context, req WebhookRequest, ip string) (*Order, error) {
	if !s.gateway.VerifySignature(req.GatewayOrderRef, req.PaymentRef, req.Signature) {
		s.auditSvc.LogAction(ctx, nil, "PAYMENT_VERIFICATION_FAILED", map[string]interface{}{
			"gateway_ref": req.GatewayOrderRef,
			"payment_ref": req.PaymentRef,
			"reason":      "invalid payment signature",
		}, ip, "failure")
		return nil, ErrInvalidSignature
	}

	// Fast-path replay guard. Best effort: reconciliation is idempotent,
	// so a missed dedup key only costs a no-op pass.
	if s.cache != nil {
		key := "webhook:processed:" + req.PaymentRef
		set, err := s.cache.SetNX(ctx, key, 1, 24*time.Hour).Result()
		if err == nil && !set {
			log.Printf("ℹ️ Webhook replay for payment %s, skipping", req.PaymentRef)
			return s.repo.GetByGatewayRef(ctx, req.GatewayOrderRef)
		}
	}

	o, err := s.repo.GetByGatewayRef(ctx, req.GatewayOrderRef)
	if err != nil {
		return nil, err
	}

	if o.Status != StatusPaid {
		if err := s.repo.MarkPaid(ctx, o.ID, req.PaymentRef); err != nil {
			return nil, err
		}
		o.Status = StatusPaid
		o.PaymentRef = &req.PaymentRef
	}

	s.auditSvc.LogAction(ctx, nil, "PAYMENT_CONFIRMED", map[string]interface{}{
		"order_id":    o.ID,
		"payment_ref": req.PaymentRef,
		"amount":      o.TotalAmount,
	}, ip, "success")

	if s.reconciler != nil {
		if err := s.reconciler.ReconcilePaidOrder(ctx, o.ID, ip); err != nil {
			// Reconciliation problems (e.g. a full event) must not fail
			// the webhook: the charge stands and repair tooling picks the
			// order up. Surface via logs and audit only.
			log.Printf("⚠️ Reconciliation after payment for order %d: %v", o.ID, err)
		}
	}

	return o, nil
}

func (s *service) MarkPaid(ctx context.Context, orderID uint, paymentRef string, ip string) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status == StatusCancelled {
		return nil, errors.New("cannot mark a cancelled order as paid")
	}

	if o.Status != StatusPaid {
		if paymentRef == "" {
			paymentRef = "manual-" + uuid.New().String()
		}
		if err := s.repo.MarkPaid(ctx, o.ID, paymentRef); err != nil {
			return nil, err
		}
		o.Status = StatusPaid
		o.PaymentRef = &paymentRef
	}

	s.auditSvc.LogAction(ctx, nil, "ORDER_MARKED_PAID", map[string]interface{}{
		"order_id":    o.ID,
		"payment_ref": paymentRef,
	}, ip, "success")
	return o, nil
}

func (s *service) GetByID(ctx context.Context, id uint) (*Order, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListByStatus(ctx context.Context, status Status) ([]Order, error) {
	return s.repo.ListByStatus(ctx, status)
}
