package term

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	CreateTerm(ctx context.Context, t *Term) error
	GetTermByID(ctx context.Context, id uint) (*Term, error)
	ListTerms(ctx context.Context) ([]Term, error)
	UpdateTerm(ctx context.Context, t *Term) error
	DeleteTerm(ctx context.Context, id uint) error

	CreateClosure(ctx context.Context, c *ClosureDate) error
	ListClosures(ctx context.Context, from, to time.Time) ([]ClosureDate, error)
	DeleteClosure(ctx context.Context, id uint) error
	IsClosed(ctx context.Context, date time.Time) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db}
}

func (r *repository) CreateTerm(ctx context.Context, t *Term) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *repository) GetTermByID(ctx context.Context, id uint) (*Term, error) {
	var t Term
	err := r.db.WithContext(ctx).First(&t, id).Error
	return &t, err
}

func (r *repository) ListTerms(ctx context.Context) ([]Term, error) {
	var terms []Term
	err := r.db.WithContext(ctx).
		Order("start_date ASC").
		Find(&terms).Error
	return terms, err
}

func (r *repository) UpdateTerm(ctx context.Context, t *Term) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *repository) DeleteTerm(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&Term{}, id).Error
}

func (r *repository) CreateClosure(ctx context.Context, c *ClosureDate) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *repository) ListClosures(ctx context.Context, from, to time.Time) ([]ClosureDate, error) {
	var closures []ClosureDate
	err := r.db.WithContext(ctx).
		Where("date >= ? AND date <= ?", from, to).
		Order("date ASC").
		Find(&closures).Error
	return closures, err
}

func (r *repository) DeleteClosure(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&ClosureDate{}, id).Error
}

func (r *repository) IsClosed(ctx context.Context, date time.Time) (bool, error) {
	var count int64
	day := dateOnly(date)
	err := r.db.WithContext(ctx).
		Model(&ClosureDate{}).
		Where("date >= ? AND date < ?", day, day.AddDate(0, 0, 1)).
		Count(&count).Error
	return count > 0, err
}
