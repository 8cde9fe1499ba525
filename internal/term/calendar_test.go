package term

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestOccurrencesOfMondaysInTerm1(t *testing.T) {
	// Term 1 2026: 2026-02-02 (a Monday) through 2026-04-02.
	term := Term{Name: "Term 1 2026", StartDate: date(2026, 2, 2), EndDate: date(2026, 4, 2)}

	mondays := OccurrencesOf(term, time.Monday)

	require.Len(t, mondays, 9)
	assert.Equal(t, date(2026, 2, 2), mondays[0])
	assert.Equal(t, date(2026, 3, 30), mondays[len(mondays)-1])
	for _, d := range mondays {
		assert.Equal(t, time.Monday, d.Weekday())
	}
}

func TestOccurrencesOfFirstMatchAfterStart(t *testing.T) {
	// Term starts on a Monday; first Wednesday is two days later.
	term := Term{StartDate: date(2026, 2, 2), EndDate: date(2026, 2, 28)}

	weds := OccurrencesOf(term, time.Wednesday)

	require.NotEmpty(t, weds)
	assert.Equal(t, date(2026, 2, 4), weds[0])
	for i := 1; i < len(weds); i++ {
		assert.Equal(t, 7*24*time.Hour, weds[i].Sub(weds[i-1]))
	}
}

func TestOccurrencesOfEmptyWhenNoMatch(t *testing.T) {
	// Two-day term containing no Friday.
	term := Term{StartDate: date(2026, 2, 2), EndDate: date(2026, 2, 3)}
	assert.Empty(t, OccurrencesOf(term, time.Friday))
}

func TestOccurrencesOfIsRestartable(t *testing.T) {
	term := Term{StartDate: date(2026, 2, 2), EndDate: date(2026, 4, 2)}
	first := OccurrencesOf(term, time.Monday)
	second := OccurrencesOf(term, time.Monday)
	assert.Equal(t, first, second)
}

func TestTermFor(t *testing.T) {
	terms := []Term{
		{ID: 1, Name: "Term 1", StartDate: date(2026, 2, 2), EndDate: date(2026, 4, 2)},
		{ID: 2, Name: "Term 2", StartDate: date(2026, 4, 20), EndDate: date(2026, 7, 3)},
	}

	got, err := TermFor(terms, date(2026, 3, 15))
	require.NoError(t, err)
	assert.Equal(t, uint(1), got.ID)

	// Boundary dates are inclusive.
	got, err = TermFor(terms, date(2026, 2, 2))
	require.NoError(t, err)
	assert.Equal(t, uint(1), got.ID)

	got, err = TermFor(terms, date(2026, 4, 2))
	require.NoError(t, err)
	assert.Equal(t, uint(1), got.ID)

	// Mid-holiday date belongs to no term.
	_, err = TermFor(terms, date(2026, 4, 10))
	assert.ErrorIs(t, err, ErrNoTerm)
}

func TestNextTermAfter(t *testing.T) {
	terms := []Term{
		{ID: 2, Name: "Term 2", StartDate: date(2026, 4, 20), EndDate: date(2026, 7, 3)},
		{ID: 1, Name: "Term 1", StartDate: date(2026, 2, 2), EndDate: date(2026, 4, 2)},
	}

	got, err := NextTermAfter(terms, date(2026, 4, 10))
	require.NoError(t, err)
	assert.Equal(t, uint(2), got.ID)

	// A date before all terms resolves to the earliest term.
	got, err = NextTermAfter(terms, date(2026, 1, 1))
	require.NoError(t, err)
	assert.Equal(t, uint(1), got.ID)

	// Nothing after the last term.
	_, err = NextTermAfter(terms, date(2026, 8, 1))
	assert.ErrorIs(t, err, ErrNoTerm)
}

func TestDayOf(t *testing.T) {
	loc, err := time.LoadLocation("Europe/London")
	require.NoError(t, err)

	morning := time.Date(2026, 6, 15, 9, 0, 0, 0, loc)
	afternoon := time.Date(2026, 6, 15, 13, 30, 0, 0, loc)
	assert.Equal(t, DayOf(morning, loc), DayOf(afternoon, loc))
	assert.Equal(t, 0, DayOf(morning, loc).Hour())
}
