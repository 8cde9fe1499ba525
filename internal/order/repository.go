package order

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested order does not exist.
var ErrNotFound = errors.New("order not found")

type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, id uint) (*Order, error)
	GetByGatewayRef(ctx context.Context, ref string) (*Order, error)
	ListByStatus(ctx context.Context, status Status) ([]Order, error)
	MarkPaid(ctx context.Context, id uint, paymentRef string) error
	UpdateStatus(ctx context.Context, id uint, status Status) error
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

func (r *repository) Create(ctx context.Context, o *Order) error {
	return r.db.WithContext(ctx).Create(o).Error
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Order, error) {
	var o Order
	err := r.db.WithContext(ctx).
		Preload("OrderItems").
		First(&o, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &o, err
}

func (r *repository) GetByGatewayRef(ctx context.Context, ref string) (*Order, error) {
	var o Order
	err := r.db.WithContext(ctx).
		Preload("OrderItems").
		Where("gateway_ref = ?", ref).
		First(&o).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return &o, err
}

func (r *repository) ListByStatus(ctx context.Context, status Status) ([]Order, error) {
	var orders []Order
	err := r.db.WithContext(ctx).
		Preload("OrderItems").
		Where("status = ?", status).
		Order("id ASC").
		Find(&orders).Error
	return orders, err
}

func (r *repository) MarkPaid(ctx context.Context, id uint, paymentRef string) error {
	return r.db.WithContext(ctx).
		Model(&Order{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      StatusPaid,
			"payment_ref": paymentRef,
		}).Error
}

func (r *repository) UpdateStatus(ctx context.Context, id uint, status Status) error {
	return r.db.WithContext(ctx).
		Model(&Order{}).
		Where("id = ?", id).
		Update("status", status).Error
}
