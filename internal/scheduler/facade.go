package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/brightkids/activity-booking-backend/config"
	"github.com/brightkids/activity-booking-backend/internal/auditlog"
	"github.com/brightkids/activity-booking-backend/internal/booking"
	"github.com/brightkids/activity-booking-backend/internal/event"
	"github.com/brightkids/activity-booking-backend/internal/location"
	"github.com/brightkids/activity-booking-backend/internal/notification"
	"github.com/brightkids/activity-booking-backend/internal/order"
	"github.com/brightkids/activity-booking-backend/internal/product"
	"github.com/brightkids/activity-booking-backend/internal/template"
	"github.com/brightkids/activity-booking-backend/internal/term"
)

// Service is the scheduling and reconciliation engine: template
// expansion, order settlement, batch repair, and the cancellation paths
// that release capacity.
type Service interface {
	ExpandTemplate(ctx context.Context, templateID, termID uint, userID *uint, ip string) (*ExpandResult, error)
	ReconcileOrder(ctx context.Context, orderID uint, userID *uint, ip string) (*ReconcileResult, error)
	RepairAllPaidOrders(ctx context.Context, userID *uint, ip string) (*RepairResult, error)
	CancelBooking(ctx context.Context, bookingID uint, userID *uint, ip string) (*booking.Booking, error)
	CancelEvent(ctx context.Context, eventID uint, userID *uint, ip string) (*event.Event, error)

	// ReconcilePaidOrder is the webhook-triggered entry point.
	ReconcilePaidOrder(ctx context.Context, orderID uint, ip string) error
}

type service struct {
	expander   *expander
	reconciler *reconciler

	db       *gorm.DB
	orders   order.Repository
	bookings booking.Repository
	events   event.Repository
	ledger   *event.Ledger
	auditSvc auditlog.Service
	notifSvc notification.Service
}

func NewService(
	db *gorm.DB,
	cfg *config.Config,
	orders order.Repository,
	bookings booking.Repository,
	events event.Repository,
	ledger *event.Ledger,
	templates template.Repository,
	products product.Repository,
	locations location.Repository,
	terms term.Service,
	auditSvc auditlog.Service,
	notifSvc notification.Service,
) Service {
	loc := cfg.Location()
	return &service{
		expander: &expander{
			db:        db,
			templates: templates,
			products:  products,
			locations: locations,
			events:    events,
			terms:     terms,
			loc:       loc,
		},
		reconciler: &reconciler{
			db:        db,
			orders:    orders,
			bookings:  bookings,
			events:    events,
			ledger:    ledger,
			products:  products,
			locations: locations,
			terms:     terms,
			loc:       loc,
		},
		db:       db,
		orders:   orders,
		bookings: bookings,
		events:   events,
		ledger:   ledger,
		auditSvc: auditSvc,
		notifSvc: notifSvc,
	}
}

func (s *service) ExpandTemplate(ctx context.Context, templateID, termID uint, userID *uint, ip string) (*ExpandResult, error) {
	result, err := s.expander.expand(ctx, templateID, termID)

	status := "success"
	details := map[string]interface{}{"template_id": templateID, "term_id": termID}
	if err != nil {
		status = "failure"
		details["error"] = err.Error()
	} else {
		details["created"] = result.Created
		details["already_existing"] = result.AlreadyExisting
		details["skipped_closed"] = result.SkippedClosed
	}
	s.audit(ctx, userID, "TEMPLATE_EXPANDED", details, ip, status)

	return result, err
}

func (s *service) ReconcileOrder(ctx context.Context, orderID uint, userID *uint, ip string) (*ReconcileResult, error) {
	result, err := s.reconciler.reconcile(ctx, orderID)

	status := "success"
	details := map[string]interface{}{"order_id": orderID}
	if err != nil {
		status = "failure"
		details["error"] = err.Error()
	}
	if result != nil {
		details["bookings_created"] = result.BookingsCreated
		details["events_created"] = result.EventsCreated
	}
	s.audit(ctx, userID, "ORDER_RECONCILED", details, ip, status)

	if result != nil {
		for _, c := range result.ClosedConflicts {
			s.notifSvc.Notify(ctx, notification.Message{
				Kind:    notification.KindCalendarConflict,
				OrderID: &orderID,
				Title:   "Booking falls on a closed date",
				Body: fmt.Sprintf("order %d: student %d is booked on %s, a date the business is closed",
					orderID, c.StudentID, c.Day.Format("2006-01-02")),
			})
		}
	}

	var capErr *CapacityError
	if errors.As(err, &capErr) {
		s.notifSvc.Notify(ctx, notification.Message{
			Kind:    notification.KindCapacityExceeded,
			OrderID: &orderID,
			EventID: &capErr.EventID,
			Title:   "Session fully booked",
			Body: fmt.Sprintf("order %d: %s on %s is full (%d seats); student %d has no booking",
				orderID, capErr.Title, capErr.StartAt.Format("2006-01-02"), capErr.Capacity, capErr.StudentID),
		})
	}

	if err == nil && result.BookingsCreated > 0 {
		s.notifyOrderSettled(ctx, orderID, result)
	}
	return result, err
}

// ReconcilePaidOrder is the payment-path entry. The webhook must ack
// fast, so this delegates and keeps the same audit trail.
func (s *service) ReconcilePaidOrder(ctx context.Context, orderID uint, ip string) error {
	_, err := s.ReconcileOrder(ctx, orderID, nil, ip)
	return err
}

func (s *service) RepairAllPaidOrders(ctx context.Context, userID *uint, ip string) (*RepairResult, error) {
	result, err := s.reconciler.repairAll(ctx)

	status := "success"
	details := map[string]interface{}{}
	if err != nil {
		status = "failure"
		details["error"] = err.Error()
	}
	if result != nil {
		details["orders_checked"] = result.OrdersChecked
		details["orders_repaired"] = result.OrdersRepaired
		details["bookings_added"] = result.BookingsAdded
		if len(result.Failures) > 0 {
			status = "partial"
			details["failed_orders"] = len(result.Failures)
		}
	}
	s.audit(ctx, userID, "ORDERS_REPAIRED", details, ip, status)

	if result != nil {
		for i := range result.Results {
			res := result.Results[i]
			for _, c := range res.ClosedConflicts {
				s.notifSvc.Notify(ctx, notification.Message{
					Kind:    notification.KindCalendarConflict,
					OrderID: &res.OrderID,
					Title:   "Booking falls on a closed date",
					Body: fmt.Sprintf("order %d: student %d is booked on %s, a date the business is closed",
						res.OrderID, c.StudentID, c.Day.Format("2006-01-02")),
				})
			}
		}
	}

	if err == nil && result.BookingsAdded > 0 {
		s.notifSvc.Notify(ctx, notification.Message{
			Kind:  notification.KindRepairCompleted,
			Title: "Repair run completed",
			Body: fmt.Sprintf("checked %d paid orders, added %d bookings, created %d events",
				result.OrdersChecked, result.BookingsAdded, result.EventsCreated),
		})
	}
	return result, err
}

// CancelBooking cancels one booking and releases its seat. The event
// stays SCHEDULED; one withdrawal does not cancel the session for the
// rest of the group.
func (s *service) CancelBooking(ctx context.Context, bookingID uint, userID *uint, ip string) (*booking.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status == booking.StatusCancelled {
		return b, nil // already cancelled, nothing to release
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.bookings.WithTx(tx).UpdateStatus(ctx, b.ID, booking.StatusCancelled); err != nil {
			return err
		}
		if b.EventID != nil {
			if err := s.ledger.WithTx(tx).Release(ctx, *b.EventID); err != nil {
				return err
			}
		}
		return nil
	})

	status := "success"
	details := map[string]interface{}{"booking_id": b.ID, "student_id": b.StudentID}
	if err != nil {
		status = "failure"
		details["error"] = err.Error()
	}
	s.audit(ctx, userID, "BOOKING_CANCELLED", details, ip, status)
	if err != nil {
		return nil, err
	}

	b.Status = booking.StatusCancelled
	s.notifSvc.Notify(ctx, notification.Message{
		Kind:      notification.KindBookingCancelled,
		BookingID: &b.ID,
		EventID:   b.EventID,
		Title:     "Booking cancelled",
		Body:      fmt.Sprintf("booking %d for student %d on %s was cancelled", b.ID, b.StudentID, b.StartAt.Format("2006-01-02")),
	})
	return b, nil
}

// CancelEvent cancels a session outright: the event goes CANCELLED, its
// bookings cascade to CANCELLED and the capacity count resets.
func (s *service) CancelEvent(ctx context.Context, eventID uint, userID *uint, ip string) (*event.Event, error) {
	ev, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if ev.Status == event.StatusCancelled {
		return ev, nil
	}
	if !ev.Status.CanTransitionTo(event.StatusCancelled) {
		return nil, fmt.Errorf("cannot cancel event in status %s", ev.Status)
	}

	var cancelled int64
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		events := s.events.WithTx(tx)
		bookings := s.bookings.WithTx(tx)

		count, err := bookings.CountConfirmedByEvent(ctx, ev.ID)
		if err != nil {
			return err
		}
		cancelled = count

		if err := bookings.CancelByEvent(ctx, ev.ID); err != nil {
			return err
		}
		if err := events.UpdateStatus(ctx, ev.ID, event.StatusCancelled); err != nil {
			return err
		}
		return events.ZeroCount(ctx, ev.ID)
	})

	status := "success"
	details := map[string]interface{}{"event_id": ev.ID, "bookings_cancelled": cancelled}
	if err != nil {
		status = "failure"
		details["error"] = err.Error()
	}
	s.audit(ctx, userID, "EVENT_CANCELLED", details, ip, status)
	if err != nil {
		return nil, err
	}

	ev.Status = event.StatusCancelled
	ev.CurrentCount = 0
	s.notifSvc.Notify(ctx, notification.Message{
		Kind:    notification.KindEventCancelled,
		EventID: &ev.ID,
		Title:   "Session cancelled",
		Body:    fmt.Sprintf("%s on %s was cancelled (%d bookings affected)", ev.Title, ev.StartAt.Format("2006-01-02"), cancelled),
	})
	return ev, nil
}

func (s *service) notifyOrderSettled(ctx context.Context, orderID uint, result *ReconcileResult) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		log.Printf("⚠️ scheduler: cannot load order %d for notification: %v", orderID, err)
		return
	}
	s.notifSvc.Notify(ctx, notification.Message{
		Kind:      notification.KindBookingConfirmed,
		OrderID:   &o.ID,
		Recipient: o.CustomerEmail,
		Title:     "Your booking is confirmed",
		Body: fmt.Sprintf("Hi %s, %d booking(s) from your order are confirmed. See you soon!",
			o.CustomerName, result.BookingsCreated),
		OccurredAt: time.Now(),
	})
}

func (s *service) audit(ctx context.Context, userID *uint, action string, details map[string]interface{}, ip, status string) {
	if err := s.auditSvc.LogAction(ctx, userID, action, details, ip, status); err != nil {
		log.Printf("⚠️ scheduler: audit %s failed: %v", action, err)
	}
}
