package term

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	termsCacheKey = "terms:all"
	termsCacheTTL = 5 * time.Minute
)

type Service interface {
	CreateTerm(ctx context.Context, req CreateTermRequest) (*Term, error)
	GetTermByID(ctx context.Context, id uint) (*Term, error)
	ListTerms(ctx context.Context) ([]Term, error)
	DeleteTerm(ctx context.Context, id uint) error

	TermFor(ctx context.Context, date time.Time) (*Term, error)
	NextTermAfter(ctx context.Context, date time.Time) (*Term, error)
	IsClosed(ctx context.Context, date time.Time) (bool, error)

	CreateClosure(ctx context.Context, req CreateClosureRequest) (*ClosureDate, error)
	ListClosures(ctx context.Context, from, to time.Time) ([]ClosureDate, error)
	DeleteClosure(ctx context.Context, id uint) error
}

type service struct {
	repo  Repository
	cache *redis.Client // nil when Redis is not configured
}

func NewService(repo Repository, cache *redis.Client) Service {
	return &service{repo: repo, cache: cache}
}

func (s *service) CreateTerm(ctx context.Context, req CreateTermRequest) (*Term, error) {
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, errors.New("invalid start_date format. Use YYYY-MM-DD")
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return nil, errors.New("invalid end_date format. Use YYYY-MM-DD")
	}
	if !start.Before(end) {
		return nil, errors.New("start_date must be before end_date")
	}

	// Terms must stay disjoint.
	existing, err := s.repo.ListTerms(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range existing {
		if !start.After(dateOnly(t.EndDate)) && !end.Before(dateOnly(t.StartDate)) {
			return nil, errors.New("term overlaps an existing term: " + t.Name)
		}
	}

	t := &Term{Name: req.Name, StartDate: start, EndDate: end, IsActive: true}
	if err := s.repo.CreateTerm(ctx, t); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx)
	return t, nil
}

func (s *service) GetTermByID(ctx context.Context, id uint) (*Term, error) {
	return s.repo.GetTermByID(ctx, id)
}

// ListTerms serves from the Redis cache when available; terms are
// read-mostly configuration touched on every expansion.
func (s *service) ListTerms(ctx context.Context) ([]Term, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, termsCacheKey).Bytes(); err == nil {
			var terms []Term
			if json.Unmarshal(raw, &terms) == nil {
				return terms, nil
			}
		}
	}

	terms, err := s.repo.ListTerms(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(terms); err == nil {
			s.cache.Set(ctx, termsCacheKey, raw, termsCacheTTL)
		}
	}
	return terms, nil
}

func (s *service) DeleteTerm(ctx context.Context, id uint) error {
	if err := s.repo.DeleteTerm(ctx, id); err != nil {
		return err
	}
	s.invalidateCache(ctx)
	return nil
}

func (s *service) TermFor(ctx context.Context, date time.Time) (*Term, error) {
	terms, err := s.ListTerms(ctx)
	if err != nil {
		return nil, err
	}
	return TermFor(terms, date)
}

func (s *service) NextTermAfter(ctx context.Context, date time.Time) (*Term, error) {
	terms, err := s.ListTerms(ctx)
	if err != nil {
		return nil, err
	}
	return NextTermAfter(terms, date)
}

func (s *service) IsClosed(ctx context.Context, date time.Time) (bool, error) {
	return s.repo.IsClosed(ctx, date)
}

func (s *service) CreateClosure(ctx context.Context, req CreateClosureRequest) (*ClosureDate, error) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, errors.New("invalid date format. Use YYYY-MM-DD")
	}
	c := &ClosureDate{Date: date, Reason: req.Reason}
	if err := s.repo.CreateClosure(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) ListClosures(ctx context.Context, from, to time.Time) ([]ClosureDate, error) {
	return s.repo.ListClosures(ctx, from, to)
}

func (s *service) DeleteClosure(ctx context.Context, id uint) error {
	return s.repo.DeleteClosure(ctx, id)
}

func (s *service) invalidateCache(ctx context.Context) {
	if s.cache != nil {
		s.cache.Del(ctx, termsCacheKey)
	}
}
