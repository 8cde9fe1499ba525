package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/brightkids/activity-booking-backend/internal/booking"
	"github.com/brightkids/activity-booking-backend/internal/event"
	"github.com/brightkids/activity-booking-backend/internal/location"
	"github.com/brightkids/activity-booking-backend/internal/order"
	"github.com/brightkids/activity-booking-backend/internal/product"
	"github.com/brightkids/activity-booking-backend/internal/term"
)

// ErrOrderNotPaid is returned when reconciliation is requested for an
// order that has not been confirmed paid. Pending orders are recovered
// through the manual mark-paid path first.
var ErrOrderNotPaid = errors.New("order is not paid")

// CapacityError reports which event blocked a reconciliation so the
// admin response can show what is full and when.
type CapacityError struct {
	EventID   uint      `json:"event_id"`
	Title     string    `json:"title"`
	StartAt   time.Time `json:"start_at"`
	Capacity  int       `json:"capacity"`
	StudentID uint      `json:"student_id"`
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("event %d (%s) is fully booked", e.EventID, e.Title)
}

func (e *CapacityError) Unwrap() error { return event.ErrEventFull }

// ClosedDateConflict flags an order item that settled onto a date the
// business is closed. The booking is still honored (the money was
// taken); operators follow up with the customer.
type ClosedDateConflict struct {
	StudentID uint      `json:"student_id"`
	ProductID uint      `json:"product_id"`
	Day       time.Time `json:"day"`
}

// ReconcileResult summarises one reconciliation run over an order.
type ReconcileResult struct {
	OrderID         uint                 `json:"order_id"`
	BookingsCreated int                  `json:"bookings_created"`
	BookingsExists  int                  `json:"bookings_already_present"`
	EventsCreated   int                  `json:"events_created"`
	EventsLinked    int                  `json:"events_linked"`
	ClosedConflicts []ClosedDateConflict `json:"closed_date_conflicts,omitempty"`
}

// RepairResult summarises a batch repair across every paid order.
type RepairResult struct {
	OrdersChecked  int               `json:"orders_checked"`
	OrdersRepaired int               `json:"orders_repaired"`
	BookingsAdded  int               `json:"bookings_added"`
	EventsCreated  int               `json:"events_created"`
	Failures       map[uint]string   `json:"failures,omitempty"`
	Results        []ReconcileResult `json:"results"`
}

// reconciler settles paid orders into bookings and events. Every order
// item either already has a live booking for its (student, product, day)
// or gets one, admitted against the day's shared event under the
// capacity ledger.
type reconciler struct {
	db        *gorm.DB
	orders    order.Repository
	bookings  booking.Repository
	events    event.Repository
	ledger    *event.Ledger
	products  product.Repository
	locations location.Repository
	terms     term.Service
	loc       *time.Location
}

func (r *reconciler) reconcile(ctx context.Context, orderID uint) (*ReconcileResult, error) {
	o, err := r.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Status != order.StatusPaid {
		return nil, fmt.Errorf("%w: order %d is %s", ErrOrderNotPaid, o.ID, o.Status)
	}

	result := &ReconcileResult{OrderID: o.ID}

	// Each item settles in its own transaction: one full event must not
	// roll back the bookings already repaired for the other items.
	for i := range o.OrderItems {
		item := o.OrderItems[i]
		if err := r.settleItem(ctx, o, item, result); err != nil {
			return result, err
		}
	}
	return result, nil
}

func (r *reconciler) settleItem(ctx context.Context, o *order.Order, item order.OrderItem, result *ReconcileResult) error {
	day := term.DayOf(item.BookingDate, r.loc)
	dayEnd := day.AddDate(0, 0, 1)

	// Idempotency: a live booking for (student, product, day) means this
	// item was already settled by a previous run or the original webhook.
	_, err := r.bookings.FindForStudentDay(ctx, item.StudentID, item.ProductID, day, dayEnd)
	if err == nil {
		result.BookingsExists++
		return nil
	}
	if !errors.Is(err, booking.ErrNotFound) {
		return err
	}

	// Settlement on a closed date is honored but flagged for follow-up;
	// closure only gates template expansion.
	closed, err := r.terms.IsClosed(ctx, day)
	if err != nil {
		return err
	}
	if closed {
		result.ClosedConflicts = append(result.ClosedConflicts, ClosedDateConflict{
			StudentID: item.StudentID,
			ProductID: item.ProductID,
			Day:       day,
		})
	}

	prod, err := r.products.GetByID(ctx, item.ProductID)
	if err != nil {
		return fmt.Errorf("order %d item %d: %w", o.ID, item.ID, err)
	}

	locationID, err := r.resolveLocation(ctx, o, prod)
	if err != nil {
		return fmt.Errorf("order %d item %d: %w", o.ID, item.ID, err)
	}

	startAt, endAt := prod.SessionTimes(day, r.loc)

	// Counters are tallied outside the closure so a rollback never
	// reports an event that no longer exists.
	var createdEvent, linkedEvent bool
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		events := r.events.WithTx(tx)
		bookings := r.bookings.WithTx(tx)
		ledger := r.ledger.WithTx(tx)

		ev, err := events.FindByGroupKey(ctx, locationID, item.ProductID, day, dayEnd)
		if errors.Is(err, event.ErrNotFound) {
			ev = &event.Event{
				Title:      fmt.Sprintf("%s — %s", prod.Name, day.Format("Mon 02 Jan 2006")),
				EventType:  prod.ProductType,
				Status:     event.StatusScheduled,
				StartAt:    startAt,
				EndAt:      endAt,
				LocationID: locationID,
				Capacity:   prod.DefaultCapacity,
				ProductID:  &prod.ID,
			}
			if err := events.Create(ctx, ev); err != nil {
				return err
			}
			createdEvent = true
		} else if err != nil {
			return err
		} else {
			linkedEvent = true
		}

		if err := ledger.TryAdmit(ctx, ev.ID); err != nil {
			if errors.Is(err, event.ErrEventFull) {
				return &CapacityError{
					EventID:   ev.ID,
					Title:     ev.Title,
					StartAt:   ev.StartAt,
					Capacity:  ev.Capacity,
					StudentID: item.StudentID,
				}
			}
			return err
		}

		b := &booking.Booking{
			StudentID:  item.StudentID,
			ProductID:  item.ProductID,
			LocationID: locationID,
			StartAt:    ev.StartAt,
			EndAt:      ev.EndAt,
			Status:     booking.StatusConfirmed,
			EventID:    &ev.ID,
			TotalPrice: item.Price,
		}
		if err := bookings.Create(ctx, b); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return err
	}

	if createdEvent {
		result.EventsCreated++
	} else if linkedEvent {
		result.EventsLinked++
	}
	result.BookingsCreated++
	return nil
}

// resolveLocation picks the site an item settles at: the order-level
// override wins, then the product's home location, then the first
// active site.
func (r *reconciler) resolveLocation(ctx context.Context, o *order.Order, prod *product.Product) (uint, error) {
	if o.LocationID != nil {
		return *o.LocationID, nil
	}
	if prod.LocationID != nil {
		return *prod.LocationID, nil
	}
	loc, err := r.locations.FirstActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("no location available: %w", err)
	}
	return loc.ID, nil
}

// repairAll re-runs reconciliation over every paid order, reporting
// side effects per order. Orders that fail keep the batch going.
func (r *reconciler) repairAll(ctx context.Context) (*RepairResult, error) {
	paid, err := r.orders.ListByStatus(ctx, order.StatusPaid)
	if err != nil {
		return nil, err
	}

	out := &RepairResult{Failures: map[uint]string{}}
	for i := range paid {
		out.OrdersChecked++
		res, err := r.reconcile(ctx, paid[i].ID)
		if res != nil {
			out.Results = append(out.Results, *res)
			out.BookingsAdded += res.BookingsCreated
			out.EventsCreated += res.EventsCreated
			if res.BookingsCreated > 0 {
				out.OrdersRepaired++
			}
		}
		if err != nil {
			out.Failures[paid[i].ID] = err.Error()
		}
	}
	if len(out.Failures) == 0 {
		out.Failures = nil
	}
	return out, nil
}
