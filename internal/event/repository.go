package event

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested event does not exist.
var ErrNotFound = errors.New("event not found")

type Repository interface {
	// WithTx returns a copy of the repository bound to the given
	// transaction handle, so multi-entity writes share one transaction.
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, e *Event) error
	GetByID(ctx context.Context, id uint) (*Event, error)
	// FindByTemplateAndStart is the idempotency lookup for expansion.
	FindByTemplateAndStart(ctx context.Context, templateID uint, startAt time.Time) (*Event, error)
	// FindByGroupKey locates the shared session event for a calendar day
	// at a location for a product.
	FindByGroupKey(ctx context.Context, locationID, productID uint, dayStart, dayEnd time.Time) (*Event, error)
	ListByTemplate(ctx context.Context, templateID uint) ([]Event, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]Event, error)
	UpdateStatus(ctx context.Context, id uint, status Status) error
	ZeroCount(ctx context.Context, id uint) error
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

func (r *repository) Create(ctx context.Context, e *Event) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Event, error) {
	var e Event
	err := r.db.WithContext(ctx).First(&e, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &e, err
}

func (r *repository) FindByTemplateAndStart(ctx context.Context, templateID uint, startAt time.Time) (*Event, error) {
	var e Event
	err := r.db.WithContext(ctx).
		Where("recurring_template_id = ? AND start_at = ?", templateID, startAt).
		First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &e, err
}

func (r *repository) FindByGroupKey(ctx context.Context, locationID, productID uint, dayStart, dayEnd time.Time) (*Event, error) {
	var e Event
	err := r.db.WithContext(ctx).
		Where("location_id = ? AND product_id = ? AND start_at >= ? AND start_at < ? AND status <> ?",
			locationID, productID, dayStart, dayEnd, StatusCancelled).
		Order("start_at ASC").
		First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &e, err
}

func (r *repository) ListByTemplate(ctx context.Context, templateID uint) ([]Event, error) {
	var events []Event
	err := r.db.WithContext(ctx).
		Where("recurring_template_id = ?", templateID).
		Order("start_at ASC").
		Find(&events).Error
	return events, err
}

func (r *repository) ListBetween(ctx context.Context, from, to time.Time) ([]Event, error) {
	var events []Event
	err := r.db.WithContext(ctx).
		Where("start_at >= ? AND start_at < ?", from, to).
		Order("start_at ASC").
		Find(&events).Error
	return events, err
}

func (r *repository) UpdateStatus(ctx context.Context, id uint, status Status) error {
	return r.db.WithContext(ctx).
		Model(&Event{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *repository) ZeroCount(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&Event{}).
		Where("id = ?", id).
		Update("current_count", 0).Error
}
