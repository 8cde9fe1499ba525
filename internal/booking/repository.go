package booking

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested booking does not exist.
var ErrNotFound = errors.New("booking not found")

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id uint) (*Booking, error)
	// FindForStudentDay is the reconciliation idempotency lookup: any
	// non-cancelled booking for (student, product) starting within
	// [dayStart, dayEnd) means the order item is already settled.
	FindForStudentDay(ctx context.Context, studentID, productID uint, dayStart, dayEnd time.Time) (*Booking, error)
	ListByEvent(ctx context.Context, eventID uint) ([]Booking, error)
	CountConfirmedByEvent(ctx context.Context, eventID uint) (int64, error)
	Search(ctx context.Context, f Filter) ([]Booking, int64, error)
	Update(ctx context.Context, b *Booking) error
	UpdateStatus(ctx context.Context, id uint, status Status) error
	CancelByEvent(ctx context.Context, eventID uint) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, b *Booking) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Booking, error) {
	var b Booking
	err := r.db.WithContext(ctx).First(&b, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &b, err
}

func (r *repository) FindForStudentDay(ctx context.Context, studentID, productID uint, dayStart, dayEnd time.Time) (*Booking, error) {
	var b Booking
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND product_id = ? AND start_at >= ? AND start_at < ? AND status <> ?",
			studentID, productID, dayStart, dayEnd, StatusCancelled).
		First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &b, err
}

func (r *repository) ListByEvent(ctx context.Context, eventID uint) ([]Booking, error) {
	var bookings []Booking
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Find(&bookings).Error
	return bookings, err
}

func (r *repository) CountConfirmedByEvent(ctx context.Context, eventID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("event_id = ? AND status = ?", eventID, StatusConfirmed).
		Count(&count).Error
	return count, err
}

func (r *repository) Search(ctx context.Context, f Filter) ([]Booking, int64, error) {
	query := r.db.WithContext(ctx).Model(&Booking{})

	if f.StudentID != nil {
		query = query.Where("student_id = ?", *f.StudentID)
	}
	if f.ProductID != nil {
		query = query.Where("product_id = ?", *f.ProductID)
	}
	if f.EventID != nil {
		query = query.Where("event_id = ?", *f.EventID)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.From != nil {
		query = query.Where("start_at >= ?", *f.From)
	}
	if f.To != nil {
		query = query.Where("start_at < ?", *f.To)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if f.Limit > 0 {
		query = query.Limit(f.Limit).Offset(f.Offset)
	}

	var bookings []Booking
	err := query.Order("start_at ASC").Find(&bookings).Error
	return bookings, total, err
}

func (r *repository) Update(ctx context.Context, b *Booking) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *repository) UpdateStatus(ctx context.Context, id uint, status Status) error {
	return r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// CancelByEvent cancels every non-cancelled booking on an event; used by
// the event-cancellation cascade.
func (r *repository) CancelByEvent(ctx context.Context, eventID uint) error {
	return r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("event_id = ? AND status <> ?", eventID, StatusCancelled).
		Update("status", StatusCancelled).Error
}
