package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightkids/activity-booking-backend/internal/booking"
	"github.com/brightkids/activity-booking-backend/internal/event"
	"github.com/brightkids/activity-booking-backend/internal/notification"
	"github.com/brightkids/activity-booking-backend/internal/order"
	"github.com/brightkids/activity-booking-backend/internal/product"
	"github.com/brightkids/activity-booking-backend/internal/student"
	"github.com/brightkids/activity-booking-backend/internal/term"
)

func TestReconcileCreatesEventAndBooking(t *testing.T) {
	e := newEnv(t)
	loc := e.seedLocation(t, true)
	prod := e.seedProduct(t, &loc.ID, product.WindowStandard, 20)
	st := e.seedStudent(t, "Ada")
	o := e.seedPaidOrder(t, prod, map[*student.Student]time.Time{st: utcDate(2026, 7, 20)})

	result, err := e.svc.ReconcileOrder(context.Background(), o.ID, nil, "test")
	require.NoError(t, err)
	assert.Equal(t, 1, result.BookingsCreated)
	assert.Equal(t, 1, result.EventsCreated)
	assert.Equal(t, 0, result.EventsLinked)

	var ev event.Event
	require.NoError(t, e.db.First(&ev).Error)
	assert.Equal(t, time.Date(2026, 7, 20, 9, 0, 0, 0, time.UTC), ev.StartAt.UTC())
	assert.Equal(t, time.Date(2026, 7, 20, 15, 0, 0, 0, time.UTC), ev.EndAt.UTC())
	assert.Equal(t, 20, ev.Capacity)
	assert.Equal(t, 1, ev.CurrentCount)
	assert.Equal(t, event.StatusScheduled, ev.Status)

	var b booking.Booking
	require.NoError(t, e.db.First(&b).Error)
	assert.Equal(t, booking.StatusConfirmed, b.Status)
	require.NotNil(t, b.EventID)
	assert.Equal(t, ev.ID, *b.EventID)
	assert.Equal(t, st.ID, b.StudentID)
	assert.InDelta(t, prod.Price, b.TotalPrice, 0.001)
}

func TestReconcileIsIdempotent(t *testing.T) {
	e := newEnv(t)
	loc := e.seedLocation(t, true)
	prod := e.seedProduct(t, &loc.ID, product.WindowStandard, 20)
	st := e.seedStudent(t, "Ada")
	o := e.seedPaidOrder(t, prod, map[*student.Student]time.Time{st: utcDate(2026, 7, 20)})

	_, err := e.svc.ReconcileOrder(context.Background(), o.ID, nil, "test")
	require.NoError(t, err)

	second, err := e.svc.ReconcileOrder(context.Background(), o.ID, nil, "test")
	require.NoError(t, err)
	assert.Equal(t, 0, second.BookingsCreated)
	assert.Equal(t, 1, second.BookingsExists)
	assert.Equal(t, 0, second.EventsCreated)

	var bookingCount, eventCount int64
	e.db.Model(&booking.Booking{}).Count(&bookingCount)
	e.db.Model(&event.Event{}).Count(&eventCount)
	assert.EqualValues(t, 1, bookingCount)
	assert.EqualValues(t, 1, eventCount)

	var ev event.Event
	require.NoError(t, e.db.First(&ev).Error)
	assert.Equal(t, 1, ev.CurrentCount)
}

func TestReconcileTwoCampDates(t *testing.T) {
	e := newEnv(t)
	loc := e.seedLocation(t, true)
	prod := e.seedProduct(t, &loc.ID, product.WindowStandard, 20)
	st := e.seedStudent(t, "Ada")
	o := e.seedPaidOrder(t, prod, map[*student.Student]time.Time{st: utcDate(2026, 7, 20)})
	// Same student, second camp day on the same order.
	require.NoError(t, e.db.Create(&order.OrderItem{
		OrderID: o.ID, ProductID: prod.ID, StudentID: st.ID,
		BookingDate: utcDate(2026, 7, 21), Price: prod.Price,
	}).Error)

	result, err := e.svc.ReconcileOrder(context.Background(), o.ID, nil, "test")
	require.NoError(t, err)
	assert.Equal(t, 2, result.BookingsCreated)
	assert.Equal(t, 2, result.EventsCreated)
}

func TestReconcileSharesEventAcrossOrders(t *testing.T) {
	e := newEnv(t)
	loc := e.seedLocation(t, true)
	prod := e.seedProduct(t, &loc.ID, product.WindowStandard, 20)
	day := utcDate(2026, 7, 20)

	o1 := e.seedPaidOrder(t, prod, map[*student.Student]time.Time{e.seedStudent(t, "Ada"): day})
	o2 := e.seedPaidOrder(t, prod, map[*student.Student]time.Time{e.seedStudent(t, "Ben"): day})

	first, err := e.svc.ReconcileOrder(context.Background(), o1.ID, nil, "test")
	require.NoError(t, err)
	assert.Equal(t, 1, first.EventsCreated)

	second, err := e.svc.ReconcileOrder(context.Background(), o2.ID, nil, "test")
	require.NoError(t, err)
	assert.Equal(t, 0, second.EventsCreated)
	assert.Equal(t, 1, second.EventsLinked)

	var eventCount int64
	e.db.Model(&event.Event{}).Count(&eventCount)
	assert.EqualValues(t, 1, eventCount)

	var ev event.Event
	require.NoError(t, e.db.First(&ev).Error)
	assert.Equal(t, 2, ev.CurrentCount)
}

func TestReconcileRejectsUnpaidOrder(t *testing.T) {
	e := newEnv(t)
	loc := e.seedLocation(t, true)
	prod := e.seedProduct(t, &loc.ID, product.WindowStandard, 20)
	o := e.seedPaidOrder(t, prod, map[*student.Student]time.Time{e.seedStudent(t, "Ada"): utcDate(2026, 7, 20)})
	require.NoError(t, e.db.Model(&order.Order{}).Where("id = ?", o.ID).Update("status", order.StatusPending).Error)

	_, err := e.svc.ReconcileOrder(context.Background(), o.ID, nil, "test")
	require.ErrorIs(t, err, ErrOrderNotPaid)

	var bookingCount int64
	e.db.Model(&booking.Booking{}).Count(&bookingCount)
	assert.Zero(t, bookingCount)
}

func TestReconcileStopsWhenEventFull(t *testing.T) {
	e := newEnv(t)
	loc := e.seedLocation(t, true)
	prod := e.seedProduct(t, &loc.ID, product.WindowStandard, 1)
	day := utcDate(2026, 7, 20)

	o1 := e.seedPaidOrder(t, prod, map[*student.Student]time.Time{e.seedStudent(t, "Ada"): day})
	o2 := e.seedPaidOrder(t, prod, map[*student.Student]time.Time{e.seedStudent(t, "Ben"): day})

	_, err := e.svc.ReconcileOrder(context.Background(), o1.ID, nil, "test")
	require.NoError(t, err)

	result, err := e.svc.ReconcileOrder(context.Background(), o2.ID, nil, "test")
	require.Error(t, err)
	var capErr *CapacityError
	require.True(t, errors.As(err, &capErr))
	assert.ErrorIs(t, err, event.ErrEventFull)
	assert.Equal(t, 1, capErr.Capacity)

	// The rolled-back settlement counts nothing: the link to the full
	// event was never made.
	require.NotNil(t, result)
	assert.Equal(t, 0, result.BookingsCreated)
	assert.Equal(t, 0, result.EventsCreated)
	assert.Equal(t, 0, result.EventsLinked)

	// The first student keeps the seat; the failed admission left nothing
	// behind.
	var bookingCount int64
	e.db.Model(&booking.Booking{}).Count(&bookingCount)
	assert.EqualValues(t, 1, bookingCount)

	var ev event.Event
	require.NoError(t, e.db.First(&ev).Error)
	assert.Equal(t, 1, ev.CurrentCount)
}

func TestReconcileFullEventNotifiesCapacityExceeded(t *testing.T) {
	e := newEnv(t)
	loc := e.seedLocation(t, true)
	prod := e.seedProduct(t, &loc.ID, product.WindowStandard, 1)
	day := utcDate(2026, 7, 20)

	o1 := e.seedPaidOrder(t, prod, map[*student.Student]time.Time{e.seedStudent(t, "Ada"): day})
	o2 := e.seedPaidOrder(t, prod, map[*student.Student]time.Time{e.seedStudent(t, "Ben"): day})

	_, err := e.svc.ReconcileOrder(context.Background(), o1.ID, nil, "test")
	require.NoError(t, err)
	assert.Len(t, e.notif.byKind(notification.KindBookingConfirmed), 1)

	_, err = e.svc.ReconcileOrder(context.Background(), o2.ID, nil, "test")
	require.ErrorIs(t, err, event.ErrEventFull)

	var ev event.Event
	require.NoError(t, e.db.First(&ev).Error)

	msgs := e.notif.byKind(notification.KindCapacityExceeded)
	require.Len(t, msgs, 1)
	require.NotNil(t, msgs[0].EventID)
	assert.Equal(t, ev.ID, *msgs[0].EventID)
	require.NotNil(t, msgs[0].OrderID)
	assert.Equal(t, o2.ID, *msgs[0].OrderID)
}

func TestReconcileRollbackLeavesNoEventBehind(t *testing.T) {
	e := newEnv(t)
	loc := e.seedLocation(t, true)
	// Zero capacity: the event is created in the transaction, the
	// admission fails, and the whole settlement rolls back.
	prod := e.seedProduct(t, &loc.ID, product.WindowStandard, 0)
	o := e.seedPaidOrder(t, prod, map[*student.Student]time.Time{e.seedStudent(t, "Ada"): utcDate(2026, 7, 20)})

	result, err := e.svc.ReconcileOrder(context.Background(), o.ID, nil, "test")
	require.ErrorIs(t, err, event.ErrEventFull)
	require.NotNil(t, result)
	assert.Equal(t, 0, result.EventsCreated)
	assert.Equal(t, 0, result.BookingsCreated)

	var eventCount int64
	e.db.Model(&event.Event{}).Count(&eventCount)
	assert.Zero(t, eventCount)
}

func TestReconcileFlagsClosedDateBooking(t *testing.T) {
	e := newEnv(t)
	loc := e.seedLocation(t, true)
	prod := e.seedProduct(t, &loc.ID, product.WindowStandard, 20)
	day := utcDate(2026, 7, 20)
	require.NoError(t, e.db.Create(&term.ClosureDate{Date: day, Reason: "bank holiday"}).Error)
	o := e.seedPaidOrder(t, prod, map[*student.Student]time.Time{e.seedStudent(t, "Ada"): day})

	// The paid booking is honored; the conflict goes to operators.
	result, err := e.svc.ReconcileOrder(context.Background(), o.ID, nil, "test")
	require.NoError(t, err)
	assert.Equal(t, 1, result.BookingsCreated)
	require.Len(t, result.ClosedConflicts, 1)
	assert.Equal(t, day, result.ClosedConflicts[0].Day.UTC())

	msgs := e.notif.byKind(notification.KindCalendarConflict)
	require.Len(t, msgs, 1)
	require.NotNil(t, msgs[0].OrderID)
	assert.Equal(t, o.ID, *msgs[0].OrderID)

	// A rerun short-circuits on the existing booking and does not flag
	// the conflict again.
	second, err := e.svc.ReconcileOrder(context.Background(), o.ID, nil, "test")
	require.NoError(t, err)
	assert.Empty(t, second.ClosedConflicts)
	assert.Len(t, e.notif.byKind(notification.KindCalendarConflict), 1)
}

func TestReconcileFullDayWindow(t *testing.T) {
	e := newEnv(t)
	loc := e.seedLocation(t, true)
	prod := e.seedProduct(t, &loc.ID, product.WindowFullDay, 20)
	o := e.seedPaidOrder(t, prod, map[*student.Student]time.Time{e.seedStudent(t, "Ada"): utcDate(2026, 7, 20)})

	_, err := e.svc.ReconcileOrder(context.Background(), o.ID, nil, "test")
	require.NoError(t, err)

	var ev event.Event
	require.NoError(t, e.db.First(&ev).Error)
	assert.Equal(t, 9, ev.StartAt.UTC().Hour())
	assert.Equal(t, 17, ev.EndAt.UTC().Hour())
}

func TestReconcileFallsBackToFirstActiveLocation(t *testing.T) {
	e := newEnv(t)
	e.seedLocation(t, false)
	active := e.seedLocation(t, true)
	prod := e.seedProduct(t, nil, product.WindowStandard, 20) // no home location
	o := e.seedPaidOrder(t, prod, map[*student.Student]time.Time{e.seedStudent(t, "Ada"): utcDate(2026, 7, 20)})

	_, err := e.svc.ReconcileOrder(context.Background(), o.ID, nil, "test")
	require.NoError(t, err)

	var ev event.Event
	require.NoError(t, e.db.First(&ev).Error)
	assert.Equal(t, active.ID, ev.LocationID)
}

func TestRepairAllPaidOrders(t *testing.T) {
	e := newEnv(t)
	loc := e.seedLocation(t, true)
	prod := e.seedProduct(t, &loc.ID, product.WindowStandard, 20)

	o1 := e.seedPaidOrder(t, prod, map[*student.Student]time.Time{e.seedStudent(t, "Ada"): utcDate(2026, 7, 20)})
	e.seedPaidOrder(t, prod, map[*student.Student]time.Time{e.seedStudent(t, "Ben"): utcDate(2026, 7, 21)})

	// First order already settled; the second was missed (webhook lost).
	_, err := e.svc.ReconcileOrder(context.Background(), o1.ID, nil, "test")
	require.NoError(t, err)

	result, err := e.svc.RepairAllPaidOrders(context.Background(), nil, "test")
	require.NoError(t, err)
	assert.Equal(t, 2, result.OrdersChecked)
	assert.Equal(t, 1, result.OrdersRepaired)
	assert.Equal(t, 1, result.BookingsAdded)
	assert.Empty(t, result.Failures)

	var bookingCount int64
	e.db.Model(&booking.Booking{}).Count(&bookingCount)
	assert.EqualValues(t, 2, bookingCount)
}

func TestCancelBookingReleasesSeatKeepsEvent(t *testing.T) {
	e := newEnv(t)
	loc := e.seedLocation(t, true)
	prod := e.seedProduct(t, &loc.ID, product.WindowStandard, 20)
	o := e.seedPaidOrder(t, prod, map[*student.Student]time.Time{e.seedStudent(t, "Ada"): utcDate(2026, 7, 20)})

	_, err := e.svc.ReconcileOrder(context.Background(), o.ID, nil, "test")
	require.NoError(t, err)

	var b booking.Booking
	require.NoError(t, e.db.First(&b).Error)

	cancelled, err := e.svc.CancelBooking(context.Background(), b.ID, nil, "test")
	require.NoError(t, err)
	assert.Equal(t, booking.StatusCancelled, cancelled.Status)

	var ev event.Event
	require.NoError(t, e.db.First(&ev).Error)
	assert.Equal(t, event.StatusScheduled, ev.Status)
	assert.Equal(t, 0, ev.CurrentCount)

	// Cancelling twice is a no-op, not a second release.
	_, err = e.svc.CancelBooking(context.Background(), b.ID, nil, "test")
	require.NoError(t, err)
	require.NoError(t, e.db.First(&ev, ev.ID).Error)
	assert.Equal(t, 0, ev.CurrentCount)
}

func TestReconcileAfterCancellationRebooks(t *testing.T) {
	e := newEnv(t)
	loc := e.seedLocation(t, true)
	prod := e.seedProduct(t, &loc.ID, product.WindowStandard, 20)
	o := e.seedPaidOrder(t, prod, map[*student.Student]time.Time{e.seedStudent(t, "Ada"): utcDate(2026, 7, 20)})

	_, err := e.svc.ReconcileOrder(context.Background(), o.ID, nil, "test")
	require.NoError(t, err)

	var b booking.Booking
	require.NoError(t, e.db.First(&b).Error)
	_, err = e.svc.CancelBooking(context.Background(), b.ID, nil, "test")
	require.NoError(t, err)

	// A cancelled booking no longer blocks the item; reconcile restores
	// the place against the same event.
	result, err := e.svc.ReconcileOrder(context.Background(), o.ID, nil, "test")
	require.NoError(t, err)
	assert.Equal(t, 1, result.BookingsCreated)
	assert.Equal(t, 0, result.EventsCreated)
	assert.Equal(t, 1, result.EventsLinked)

	var ev event.Event
	require.NoError(t, e.db.First(&ev).Error)
	assert.Equal(t, 1, ev.CurrentCount)
}

func TestCancelEventCascadesToBookings(t *testing.T) {
	e := newEnv(t)
	loc := e.seedLocation(t, true)
	prod := e.seedProduct(t, &loc.ID, product.WindowStandard, 20)
	day := utcDate(2026, 7, 20)

	o1 := e.seedPaidOrder(t, prod, map[*student.Student]time.Time{e.seedStudent(t, "Ada"): day})
	o2 := e.seedPaidOrder(t, prod, map[*student.Student]time.Time{e.seedStudent(t, "Ben"): day})
	_, err := e.svc.ReconcileOrder(context.Background(), o1.ID, nil, "test")
	require.NoError(t, err)
	_, err = e.svc.ReconcileOrder(context.Background(), o2.ID, nil, "test")
	require.NoError(t, err)

	var ev event.Event
	require.NoError(t, e.db.First(&ev).Error)

	cancelled, err := e.svc.CancelEvent(context.Background(), ev.ID, nil, "test")
	require.NoError(t, err)
	assert.Equal(t, event.StatusCancelled, cancelled.Status)
	assert.Equal(t, 0, cancelled.CurrentCount)

	var bookings []booking.Booking
	require.NoError(t, e.db.Find(&bookings).Error)
	require.Len(t, bookings, 2)
	for _, b := range bookings {
		assert.Equal(t, booking.StatusCancelled, b.Status)
	}
}
