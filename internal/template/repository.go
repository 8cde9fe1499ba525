package template

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, t *RecurringTemplate) error
	GetByID(ctx context.Context, id uint) (*RecurringTemplate, error)
	List(ctx context.Context, activeOnly bool) ([]RecurringTemplate, error)
	Update(ctx context.Context, t *RecurringTemplate) error
	Deactivate(ctx context.Context, id uint) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db}
}

func (r *repository) Create(ctx context.Context, t *RecurringTemplate) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *repository) GetByID(ctx context.Context, id uint) (*RecurringTemplate, error) {
	var t RecurringTemplate
	err := r.db.WithContext(ctx).First(&t, id).Error
	return &t, err
}

func (r *repository) List(ctx context.Context, activeOnly bool) ([]RecurringTemplate, error) {
	query := r.db.WithContext(ctx).Model(&RecurringTemplate{})
	if activeOnly {
		query = query.Where("active = ?", true)
	}

	var templates []RecurringTemplate
	err := query.Order("id ASC").Find(&templates).Error
	return templates, err
}

func (r *repository) Update(ctx context.Context, t *RecurringTemplate) error {
	return r.db.WithContext(ctx).Save(t).Error
}

// Deactivate soft-disables a template; its existing events stay as they
// are, future expansions skip it.
func (r *repository) Deactivate(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&RecurringTemplate{}).
		Where("id = ?", id).
		Update("active", false).Error
}
