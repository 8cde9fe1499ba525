package student

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, s *Student) error
	GetByID(ctx context.Context, id uint) (*Student, error)
	List(ctx context.Context, search string, limit, offset int) ([]Student, int64, error)
	Update(ctx context.Context, s *Student) error
	// FindOrCreate matches on (name, birthdate) so checkout does not mint
	// a new student row for every order from the same family.
	FindOrCreate(ctx context.Context, name string, birthdate *time.Time, allergies string) (*Student, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db}
}

func (r *repository) Create(ctx context.Context, s *Student) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *repository) GetByID(ctx context.Context, id uint) (*Student, error) {
	var s Student
	err := r.db.WithContext(ctx).First(&s, id).Error
	return &s, err
}

func (r *repository) List(ctx context.Context, search string, limit, offset int) ([]Student, int64, error) {
	query := r.db.WithContext(ctx).Model(&Student{})
	if search != "" {
		query = query.Where("name ILIKE ?", "%"+search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}

	var students []Student
	err := query.Order("name ASC").Find(&students).Error
	return students, total, err
}

func (r *repository) Update(ctx context.Context, s *Student) error {
	return r.db.WithContext(ctx).Save(s).Error
}

func (r *repository) FindOrCreate(ctx context.Context, name string, birthdate *time.Time, allergies string) (*Student, error) {
	query := r.db.WithContext(ctx).Where("name = ?", name)
	if birthdate != nil {
		query = query.Where("birthdate = ?", *birthdate)
	} else {
		query = query.Where("birthdate IS NULL")
	}

	var s Student
	err := query.First(&s).Error
	if err == nil {
		return &s, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	s = Student{Name: name, Birthdate: birthdate, Allergies: allergies}
	if err := r.db.WithContext(ctx).Create(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}
