package location

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, l *Location) error
	GetByID(ctx context.Context, id uint) (*Location, error)
	List(ctx context.Context) ([]Location, error)
	FirstActive(ctx context.Context) (*Location, error)
	Update(ctx context.Context, l *Location) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db}
}

func (r *repository) Create(ctx context.Context, l *Location) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Location, error) {
	var l Location
	err := r.db.WithContext(ctx).First(&l, id).Error
	return &l, err
}

func (r *repository) List(ctx context.Context) ([]Location, error) {
	var locations []Location
	err := r.db.WithContext(ctx).Order("id ASC").Find(&locations).Error
	return locations, err
}

// FirstActive returns the default location used when an order does not
// name one.
func (r *repository) FirstActive(ctx context.Context) (*Location, error) {
	var l Location
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("id ASC").
		First(&l).Error
	return &l, err
}

func (r *repository) Update(ctx context.Context, l *Location) error {
	return r.db.WithContext(ctx).Save(l).Error
}
