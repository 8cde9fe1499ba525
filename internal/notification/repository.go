package notification

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	CreateInApp(ctx context.Context, n *InAppNotification) error
	ListInApp(ctx context.Context, unreadOnly bool, limit int) ([]InAppNotification, error)
	MarkInAppAsRead(ctx context.Context, id uint) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateInApp(ctx context.Context, n *InAppNotification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *repository) ListInApp(ctx context.Context, unreadOnly bool, limit int) ([]InAppNotification, error) {
	if limit < 1 || limit > 100 {
		limit = 50
	}
	query := r.db.WithContext(ctx).Model(&InAppNotification{})
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}
	var out []InAppNotification
	err := query.Order("created_at DESC").Limit(limit).Find(&out).Error
	return out, err
}

func (r *repository) MarkInAppAsRead(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Model(&InAppNotification{}).
		Where("id = ?", id).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
