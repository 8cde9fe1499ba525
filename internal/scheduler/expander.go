package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/brightkids/activity-booking-backend/internal/event"
	"github.com/brightkids/activity-booking-backend/internal/location"
	"github.com/brightkids/activity-booking-backend/internal/product"
	"github.com/brightkids/activity-booking-backend/internal/template"
	"github.com/brightkids/activity-booking-backend/internal/term"
)

// ErrConfigInvalid is returned when a template cannot be expanded because
// its configuration is unusable (inactive template or location, bad time
// window). Expansion fails before any event is written.
var ErrConfigInvalid = errors.New("template configuration invalid")

// ExpandResult summarises one expansion run.
type ExpandResult struct {
	TemplateID      uint `json:"template_id"`
	TermID          uint `json:"term_id"`
	Created         int  `json:"created"`
	AlreadyExisting int  `json:"already_existing"`
	SkippedClosed   int  `json:"skipped_closed"`
}

// expander turns a recurring template into concrete events across the
// days of one term matching the template's weekdays. Runs are
// idempotent: an event already generated for (template, start) is never
// duplicated, so a template can be expanded into each term as terms are
// published.
type expander struct {
	db        *gorm.DB
	templates template.Repository
	products  product.Repository
	locations location.Repository
	events    event.Repository
	terms     term.Service
	loc       *time.Location
}

func (x *expander) expand(ctx context.Context, templateID, termID uint) (*ExpandResult, error) {
	tmpl, err := x.templates.GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}
	if !tmpl.Active {
		return nil, fmt.Errorf("%w: template %d is inactive", ErrConfigInvalid, tmpl.ID)
	}

	loc, err := x.locations.GetByID(ctx, tmpl.LocationID)
	if err != nil {
		return nil, fmt.Errorf("%w: location %d not found", ErrConfigInvalid, tmpl.LocationID)
	}
	if !loc.IsActive {
		return nil, fmt.Errorf("%w: location %q is inactive", ErrConfigInvalid, loc.Name)
	}

	prod, err := x.products.GetByID(ctx, tmpl.ProductID)
	if err != nil {
		return nil, fmt.Errorf("%w: product %d not found", ErrConfigInvalid, tmpl.ProductID)
	}

	startClock, err := time.Parse("15:04", tmpl.StartTime)
	if err != nil {
		return nil, fmt.Errorf("%w: bad start time %q", ErrConfigInvalid, tmpl.StartTime)
	}
	endClock, err := time.Parse("15:04", tmpl.EndTime)
	if err != nil {
		return nil, fmt.Errorf("%w: bad end time %q", ErrConfigInvalid, tmpl.EndTime)
	}
	if !startClock.Before(endClock) {
		return nil, fmt.Errorf("%w: start %s not before end %s", ErrConfigInvalid, tmpl.StartTime, tmpl.EndTime)
	}

	tm, err := x.terms.GetTermByID(ctx, termID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: term %d not found", ErrConfigInvalid, termID)
		}
		return nil, err
	}

	days, err := x.occurrenceDays(ctx, tmpl, *tm)
	if err != nil {
		return nil, err
	}

	result := &ExpandResult{TemplateID: tmpl.ID, TermID: tm.ID}

	// One transaction for the whole run: a partially expanded template
	// would leave admins guessing which dates exist.
	err = x.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		events := x.events.WithTx(tx)
		for _, d := range days.dates {
			startAt := x.clockOn(d, startClock)
			endAt := x.clockOn(d, endClock)

			_, err := events.FindByTemplateAndStart(ctx, tmpl.ID, startAt)
			if err == nil {
				result.AlreadyExisting++
				continue
			}
			if !errors.Is(err, event.ErrNotFound) {
				return err
			}

			e := &event.Event{
				Title:               fmt.Sprintf("%s — %s", tmpl.Name, d.Format("Mon 02 Jan 2006")),
				EventType:           prod.ProductType,
				Status:              event.StatusScheduled,
				StartAt:             startAt,
				EndAt:               endAt,
				LocationID:          tmpl.LocationID,
				Capacity:            tmpl.Capacity,
				RecurringTemplateID: &tmpl.ID,
				ProductID:           &tmpl.ProductID,
			}
			if err := events.Create(ctx, e); err != nil {
				return err
			}
			result.Created++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.SkippedClosed = days.skippedClosed
	return result, nil
}

type occurrenceSet struct {
	dates         []time.Time
	skippedClosed int
}

// occurrenceDays collects the term dates matching the template's
// weekdays inside its validity window, and drops closed dates.
func (x *expander) occurrenceDays(ctx context.Context, tmpl *template.RecurringTemplate, t term.Term) (*occurrenceSet, error) {
	validFrom := term.DayOf(tmpl.ValidFrom, x.loc)
	var validTo time.Time
	if tmpl.ValidTo != nil {
		validTo = term.DayOf(*tmpl.ValidTo, x.loc)
	}

	out := &occurrenceSet{}
	for _, wd := range tmpl.Weekdays() {
		for _, d := range term.OccurrencesOf(t, wd) {
			day := term.DayOf(d, x.loc)
			if day.Before(validFrom) {
				continue
			}
			if tmpl.ValidTo != nil && day.After(validTo) {
				continue
			}
			closed, err := x.terms.IsClosed(ctx, day)
			if err != nil {
				return nil, err
			}
			if closed {
				out.skippedClosed++
				continue
			}
			out.dates = append(out.dates, day)
		}
	}
	return out, nil
}

// clockOn anchors a parsed "15:04" clock to a calendar day in the
// business time zone.
func (x *expander) clockOn(day time.Time, clock time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, x.loc)
}
