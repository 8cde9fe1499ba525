package event

import (
	"context"
	"fmt"
	"time"
)

// Service covers event reads and forward status transitions.
// Cancellation lives in the scheduler facade because it cascades to
// bookings and releases capacity.
type Service interface {
	GetByID(ctx context.Context, id uint) (*Event, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]Event, error)
	ListByTemplate(ctx context.Context, templateID uint) ([]Event, error)
	Transition(ctx context.Context, id uint, next Status) (*Event, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetByID(ctx context.Context, id uint) (*Event, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListBetween(ctx context.Context, from, to time.Time) ([]Event, error) {
	return s.repo.ListBetween(ctx, from, to)
}

func (s *service) ListByTemplate(ctx context.Context, templateID uint) ([]Event, error) {
	return s.repo.ListByTemplate(ctx, templateID)
}

// Transition moves an event forward through its lifecycle. Cancellation
// is rejected here; it must go through the scheduler facade.
func (s *service) Transition(ctx context.Context, id uint, next Status) (*Event, error) {
	if next == StatusCancelled {
		return nil, fmt.Errorf("cancellation must go through the scheduler")
	}

	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !e.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("invalid transition %s -> %s", e.Status, next)
	}

	if err := s.repo.UpdateStatus(ctx, id, next); err != nil {
		return nil, err
	}
	e.Status = next
	return e, nil
}
