package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/brightkids/activity-booking-backend/internal/event"
	"github.com/brightkids/activity-booking-backend/internal/product"
	"github.com/brightkids/activity-booking-backend/internal/template"
	"github.com/brightkids/activity-booking-backend/internal/term"
)

func (e *env) seedTemplate(t *testing.T, prod *product.Product, locID uint, days []int, validFrom time.Time, validTo *time.Time) *template.RecurringTemplate {
	t.Helper()
	tmpl := &template.RecurringTemplate{
		Name:       "Monday Football",
		ProductID:  prod.ID,
		LocationID: locID,
		DaysOfWeek: datatypes.NewJSONSlice(days),
		StartTime:  "16:00",
		EndTime:    "17:00",
		Capacity:   12,
		ValidFrom:  validFrom,
		ValidTo:    validTo,
		Active:     true,
	}
	require.NoError(t, e.db.Create(tmpl).Error)
	return tmpl
}

func TestExpandTemplateCreatesEventPerTermMonday(t *testing.T) {
	e := newEnv(t)
	loc := e.seedLocation(t, true)
	prod := e.seedProduct(t, &loc.ID, product.WindowStandard, 12)
	tm := e.seedTerm(t, "Spring 2026", utcDate(2026, 2, 2), utcDate(2026, 4, 2))
	tmpl := e.seedTemplate(t, prod, loc.ID, []int{1}, utcDate(2026, 1, 1), nil)

	result, err := e.svc.ExpandTemplate(context.Background(), tmpl.ID, tm.ID, nil, "test")
	require.NoError(t, err)

	// Nine Mondays between 2026-02-02 and 2026-04-02.
	assert.Equal(t, 9, result.Created)
	assert.Equal(t, 0, result.AlreadyExisting)
	assert.Equal(t, tm.ID, result.TermID)

	events, err := e.events.ListByTemplate(context.Background(), tmpl.ID)
	require.NoError(t, err)
	require.Len(t, events, 9)
	first := events[0]
	assert.Equal(t, time.Date(2026, 2, 2, 16, 0, 0, 0, time.UTC), first.StartAt.UTC())
	assert.Equal(t, time.Date(2026, 2, 2, 17, 0, 0, 0, time.UTC), first.EndAt.UTC())
	assert.Equal(t, event.StatusScheduled, first.Status)
	assert.Equal(t, 12, first.Capacity)
}

func TestExpandTemplateScopedToRequestedTerm(t *testing.T) {
	e := newEnv(t)
	loc := e.seedLocation(t, true)
	prod := e.seedProduct(t, &loc.ID, product.WindowStandard, 12)
	spring := e.seedTerm(t, "Spring 2026", utcDate(2026, 2, 2), utcDate(2026, 4, 2))  // 9 Mondays
	summer := e.seedTerm(t, "Summer 2026", utcDate(2026, 4, 20), utcDate(2026, 7, 3)) // 11 Mondays
	tmpl := e.seedTemplate(t, prod, loc.ID, []int{1}, utcDate(2026, 1, 1), nil)

	// The other term's dates stay untouched until it is expanded itself.
	result, err := e.svc.ExpandTemplate(context.Background(), tmpl.ID, spring.ID, nil, "test")
	require.NoError(t, err)
	assert.Equal(t, 9, result.Created)

	events, err := e.events.ListByTemplate(context.Background(), tmpl.ID)
	require.NoError(t, err)
	assert.Len(t, events, 9)

	result, err = e.svc.ExpandTemplate(context.Background(), tmpl.ID, summer.ID, nil, "test")
	require.NoError(t, err)
	assert.Equal(t, 11, result.Created)
	assert.Equal(t, 0, result.AlreadyExisting)

	events, err = e.events.ListByTemplate(context.Background(), tmpl.ID)
	require.NoError(t, err)
	assert.Len(t, events, 20)
}

func TestExpandUnknownTermRejected(t *testing.T) {
	e := newEnv(t)
	loc := e.seedLocation(t, true)
	prod := e.seedProduct(t, &loc.ID, product.WindowStandard, 12)
	tmpl := e.seedTemplate(t, prod, loc.ID, []int{1}, utcDate(2026, 1, 1), nil)

	_, err := e.svc.ExpandTemplate(context.Background(), tmpl.ID, 404, nil, "test")
	require.ErrorIs(t, err, ErrConfigInvalid)

	var count int64
	require.NoError(t, e.db.Model(&event.Event{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestExpandTemplateIsIdempotent(t *testing.T) {
	e := newEnv(t)
	loc := e.seedLocation(t, true)
	prod := e.seedProduct(t, &loc.ID, product.WindowStandard, 12)
	tm := e.seedTerm(t, "Spring 2026", utcDate(2026, 2, 2), utcDate(2026, 4, 2))
	tmpl := e.seedTemplate(t, prod, loc.ID, []int{1}, utcDate(2026, 1, 1), nil)

	_, err := e.svc.ExpandTemplate(context.Background(), tmpl.ID, tm.ID, nil, "test")
	require.NoError(t, err)

	second, err := e.svc.ExpandTemplate(context.Background(), tmpl.ID, tm.ID, nil, "test")
	require.NoError(t, err)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 9, second.AlreadyExisting)

	events, err := e.events.ListByTemplate(context.Background(), tmpl.ID)
	require.NoError(t, err)
	assert.Len(t, events, 9)
}

func TestExpandTemplateSkipsClosedDates(t *testing.T) {
	e := newEnv(t)
	loc := e.seedLocation(t, true)
	prod := e.seedProduct(t, &loc.ID, product.WindowStandard, 12)
	tm := e.seedTerm(t, "Spring 2026", utcDate(2026, 2, 2), utcDate(2026, 4, 2))
	tmpl := e.seedTemplate(t, prod, loc.ID, []int{1}, utcDate(2026, 1, 1), nil)

	// 2026-02-16 is a Monday in the term.
	require.NoError(t, e.db.Create(&term.ClosureDate{Date: utcDate(2026, 2, 16), Reason: "staff day"}).Error)

	result, err := e.svc.ExpandTemplate(context.Background(), tmpl.ID, tm.ID, nil, "test")
	require.NoError(t, err)
	assert.Equal(t, 8, result.Created)
	assert.Equal(t, 1, result.SkippedClosed)
}

func TestExpandTemplateHonoursValidityWindow(t *testing.T) {
	e := newEnv(t)
	loc := e.seedLocation(t, true)
	prod := e.seedProduct(t, &loc.ID, product.WindowStandard, 12)
	tm := e.seedTerm(t, "Spring 2026", utcDate(2026, 2, 2), utcDate(2026, 4, 2))

	// Valid only through March: Mondays 2026-03-02 .. 2026-03-30.
	validTo := utcDate(2026, 3, 31)
	tmpl := e.seedTemplate(t, prod, loc.ID, []int{1}, utcDate(2026, 3, 1), &validTo)

	result, err := e.svc.ExpandTemplate(context.Background(), tmpl.ID, tm.ID, nil, "test")
	require.NoError(t, err)
	assert.Equal(t, 5, result.Created)
}

func TestExpandInactiveLocationFailsWithoutSideEffects(t *testing.T) {
	e := newEnv(t)
	loc := e.seedLocation(t, false)
	prod := e.seedProduct(t, &loc.ID, product.WindowStandard, 12)
	tm := e.seedTerm(t, "Spring 2026", utcDate(2026, 2, 2), utcDate(2026, 4, 2))
	tmpl := e.seedTemplate(t, prod, loc.ID, []int{1}, utcDate(2026, 1, 1), nil)

	_, err := e.svc.ExpandTemplate(context.Background(), tmpl.ID, tm.ID, nil, "test")
	require.ErrorIs(t, err, ErrConfigInvalid)

	var count int64
	require.NoError(t, e.db.Model(&event.Event{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestExpandInactiveTemplateRejected(t *testing.T) {
	e := newEnv(t)
	loc := e.seedLocation(t, true)
	prod := e.seedProduct(t, &loc.ID, product.WindowStandard, 12)
	tm := e.seedTerm(t, "Spring 2026", utcDate(2026, 2, 2), utcDate(2026, 4, 2))
	tmpl := e.seedTemplate(t, prod, loc.ID, []int{1}, utcDate(2026, 1, 1), nil)
	require.NoError(t, e.db.Model(tmpl).Update("active", false).Error)

	_, err := e.svc.ExpandTemplate(context.Background(), tmpl.ID, tm.ID, nil, "test")
	assert.ErrorIs(t, err, ErrConfigInvalid)
}

func TestExpandMultipleWeekdays(t *testing.T) {
	e := newEnv(t)
	loc := e.seedLocation(t, true)
	prod := e.seedProduct(t, &loc.ID, product.WindowStandard, 12)
	// One full week: 2026-02-02 (Mon) .. 2026-02-08 (Sun).
	tm := e.seedTerm(t, "One Week", utcDate(2026, 2, 2), utcDate(2026, 2, 8))
	tmpl := e.seedTemplate(t, prod, loc.ID, []int{1, 3, 5}, utcDate(2026, 1, 1), nil)

	result, err := e.svc.ExpandTemplate(context.Background(), tmpl.ID, tm.ID, nil, "test")
	require.NoError(t, err)
	assert.Equal(t, 3, result.Created) // Mon, Wed, Fri
}
