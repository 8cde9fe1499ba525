package product

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, p *Product) error
	GetByID(ctx context.Context, id uint) (*Product, error)
	List(ctx context.Context, productType string, activeOnly bool) ([]Product, error)
	Update(ctx context.Context, p *Product) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db}
}

func (r *repository) Create(ctx context.Context, p *Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Product, error) {
	var p Product
	err := r.db.WithContext(ctx).First(&p, id).Error
	return &p, err
}

func (r *repository) List(ctx context.Context, productType string, activeOnly bool) ([]Product, error) {
	query := r.db.WithContext(ctx).Model(&Product{})
	if productType != "" {
		query = query.Where("product_type = ?", productType)
	}
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var products []Product
	err := query.Order("id ASC").Find(&products).Error
	return products, err
}

func (r *repository) Update(ctx context.Context, p *Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}
