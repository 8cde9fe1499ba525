package template

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

type Service interface {
	Create(ctx context.Context, req CreateTemplateRequest) (*RecurringTemplate, error)
	GetByID(ctx context.Context, id uint) (*RecurringTemplate, error)
	List(ctx context.Context, activeOnly bool) ([]RecurringTemplate, error)
	Update(ctx context.Context, id uint, req UpdateTemplateRequest) (*RecurringTemplate, error)
	Deactivate(ctx context.Context, id uint) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) Create(ctx context.Context, req CreateTemplateRequest) (*RecurringTemplate, error) {
	if err := validateDays(req.DaysOfWeek); err != nil {
		return nil, err
	}
	if err := validateWindow(req.StartTime, req.EndTime); err != nil {
		return nil, err
	}
	if req.Capacity <= 0 {
		return nil, errors.New("capacity must be a positive integer")
	}

	validFrom, err := time.Parse("2006-01-02", req.ValidFrom)
	if err != nil {
		return nil, errors.New("invalid valid_from format. Use YYYY-MM-DD")
	}
	var validTo *time.Time
	if req.ValidTo != "" {
		parsed, err := time.Parse("2006-01-02", req.ValidTo)
		if err != nil {
			return nil, errors.New("invalid valid_to format. Use YYYY-MM-DD")
		}
		if !parsed.After(validFrom) {
			return nil, errors.New("valid_to must be after valid_from")
		}
		validTo = &parsed
	}

	t := &RecurringTemplate{
		Name:       req.Name,
		ProductID:  req.ProductID,
		LocationID: req.LocationID,
		DaysOfWeek: datatypes.NewJSONSlice(req.DaysOfWeek),
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Capacity:   req.Capacity,
		ValidFrom:  validFrom,
		ValidTo:    validTo,
		Active:     true,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) GetByID(ctx context.Context, id uint) (*RecurringTemplate, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, activeOnly bool) ([]RecurringTemplate, error) {
	return s.repo.List(ctx, activeOnly)
}

func (s *service) Update(ctx context.Context, id uint, req UpdateTemplateRequest) (*RecurringTemplate, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		t.Name = req.Name
	}
	if req.DaysOfWeek != nil {
		if err := validateDays(req.DaysOfWeek); err != nil {
			return nil, err
		}
		t.DaysOfWeek = datatypes.NewJSONSlice(req.DaysOfWeek)
	}
	if req.StartTime != "" {
		t.StartTime = req.StartTime
	}
	if req.EndTime != "" {
		t.EndTime = req.EndTime
	}
	if err := validateWindow(t.StartTime, t.EndTime); err != nil {
		return nil, err
	}
	if req.Capacity > 0 {
		t.Capacity = req.Capacity
	}
	if req.Active != nil {
		t.Active = *req.Active
	}

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *service) Deactivate(ctx context.Context, id uint) error {
	return s.repo.Deactivate(ctx, id)
}

func validateDays(days []int) error {
	if len(days) == 0 {
		return errors.New("days_of_week must contain at least one day")
	}
	seen := map[int]bool{}
	for _, d := range days {
		if d < 0 || d > 6 {
			return fmt.Errorf("invalid day of week %d. Must be 0 (Sunday) to 6 (Saturday)", d)
		}
		if seen[d] {
			return fmt.Errorf("duplicate day of week %d", d)
		}
		seen[d] = true
	}
	return nil
}

func validateWindow(startTime, endTime string) error {
	start, err := time.Parse("15:04", startTime)
	if err != nil {
		return errors.New("invalid start_time format. Use HH:MM in 24-hour format")
	}
	end, err := time.Parse("15:04", endTime)
	if err != nil {
		return errors.New("invalid end_time format. Use HH:MM in 24-hour format")
	}
	if !end.After(start) {
		return errors.New("end_time must be after start_time")
	}
	return nil
}
