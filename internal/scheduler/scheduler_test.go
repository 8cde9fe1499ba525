package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/brightkids/activity-booking-backend/config"
	"github.com/brightkids/activity-booking-backend/internal/auditlog"
	"github.com/brightkids/activity-booking-backend/internal/booking"
	"github.com/brightkids/activity-booking-backend/internal/event"
	"github.com/brightkids/activity-booking-backend/internal/location"
	"github.com/brightkids/activity-booking-backend/internal/notification"
	"github.com/brightkids/activity-booking-backend/internal/order"
	"github.com/brightkids/activity-booking-backend/internal/product"
	"github.com/brightkids/activity-booking-backend/internal/student"
	"github.com/brightkids/activity-booking-backend/internal/template"
	"github.com/brightkids/activity-booking-backend/internal/term"
)

// notifRecorder captures every message the engine hands to the sink.
type notifRecorder struct {
	mu       sync.Mutex
	messages []notification.Message
}

func (r *notifRecorder) Notify(_ context.Context, msg notification.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
}

func (r *notifRecorder) ListInApp(context.Context, bool, int) ([]notification.InAppNotification, error) {
	return nil, nil
}

func (r *notifRecorder) MarkInAppAsRead(context.Context, uint) error { return nil }

// byKind returns the recorded messages of one kind.
func (r *notifRecorder) byKind(kind string) []notification.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []notification.Message
	for _, m := range r.messages {
		if m.Kind == kind {
			out = append(out, m)
		}
	}
	return out
}

// env wires a full engine against an in-memory database.
type env struct {
	db    *gorm.DB
	cfg   *config.Config
	svc   Service
	notif *notifRecorder

	terms     term.Service
	events    event.Repository
	bookings  booking.Repository
	orders    order.Repository
	templates template.Repository
	students  student.Repository
	products  product.Repository
	locations location.Repository
}

func newEnv(t *testing.T) *env {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
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
		&auditlog.AuditLog{},
		&notification.InAppNotification{},
	))

	cfg := &config.Config{TimeZone: "UTC"}

	termSvc := term.NewService(term.NewRepository(db), nil)
	auditSvc := auditlog.NewService(auditlog.NewRepository(db))
	notifSvc := &notifRecorder{}

	e := &env{
		db:        db,
		cfg:       cfg,
		notif:     notifSvc,
		terms:     termSvc,
		events:    event.NewRepository(db),
		bookings:  booking.NewRepository(db),
		orders:    order.NewRepository(db),
		templates: template.NewRepository(db),
		students:  student.NewRepository(db),
		products:  product.NewRepository(db),
		locations: location.NewRepository(db),
	}
	e.svc = NewService(db, cfg,
		e.orders, e.bookings, e.events, event.NewLedger(db),
		e.templates, e.products, e.locations, termSvc,
		auditSvc, notifSvc)
	return e
}

func (e *env) seedLocation(t *testing.T, active bool) *location.Location {
	t.Helper()
	l := &location.Location{Name: "Riverside", Address: "1 River Way", IsActive: active}
	require.NoError(t, e.db.Create(l).Error)
	if !active {
		// The column default (`gorm:"default:true"`) swallows a zero-value
		// false on Create; write it explicitly so the seed is honoured.
		require.NoError(t, e.db.Model(l).Update("is_active", false).Error)
	}
	return l
}

func (e *env) seedProduct(t *testing.T, locID *uint, window product.SessionWindow, capacity int) *product.Product {
	t.Helper()
	p := &product.Product{
		Name:            "Holiday Camp Day",
		ProductType:     product.TypeCamp,
		Price:           32.50,
		SessionWindow:   window,
		DefaultCapacity: capacity,
		LocationID:      locID,
		IsActive:        true,
	}
	require.NoError(t, e.db.Create(p).Error)
	if capacity == 0 {
		// Same gotcha as seedLocation: `gorm:"default:20"` replaces a
		// zero capacity on Create.
		require.NoError(t, e.db.Model(p).Update("default_capacity", 0).Error)
	}
	return p
}

func (e *env) seedStudent(t *testing.T, name string) *student.Student {
	t.Helper()
	s := &student.Student{Name: name}
	require.NoError(t, e.db.Create(s).Error)
	return s
}

func (e *env) seedTerm(t *testing.T, name string, start, end time.Time) *term.Term {
	t.Helper()
	tm := &term.Term{Name: name, StartDate: start, EndDate: end, IsActive: true}
	require.NoError(t, e.db.Create(tm).Error)
	return tm
}

// seedPaidOrder plants an order directly in PAID state with one item per
// (student, date) pair, bypassing the payment gateway.
func (e *env) seedPaidOrder(t *testing.T, prod *product.Product, items map[*student.Student]time.Time) *order.Order {
	t.Helper()
	o := &order.Order{
		CustomerEmail: "parent@example.com",
		CustomerName:  "Pat Parent",
		Status:        order.StatusPaid,
		GatewayRef:    "order_test",
	}
	for st, d := range items {
		o.OrderItems = append(o.OrderItems, order.OrderItem{
			ProductID:   prod.ID,
			StudentID:   st.ID,
			BookingDate: d,
			Price:       prod.Price,
		})
		o.TotalAmount += prod.Price
	}
	require.NoError(t, e.db.Create(o).Error)
	return o
}

func utcDate(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
