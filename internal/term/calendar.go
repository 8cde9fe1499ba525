package term

import (
	"errors"
	"time"
)

// ErrNoTerm is returned when no term contains (or follows) the given date.
var ErrNoTerm = errors.New("no term for date")

// DayOf truncates t to midnight in loc. All calendar-day comparisons in
// the engine go through this helper so that a booking at 09:00 and one at
// 13:00 land on the same day key.
func DayOf(t time.Time, loc *time.Location) time.Time {
	tl := t.In(loc)
	return time.Date(tl.Year(), tl.Month(), tl.Day(), 0, 0, 0, 0, loc)
}

// TermFor returns the term whose [StartDate, EndDate] contains date.
func TermFor(terms []Term, date time.Time) (*Term, error) {
	day := dateOnly(date)
	for i := range terms {
		if !day.Before(dateOnly(terms[i].StartDate)) && !day.After(dateOnly(terms[i].EndDate)) {
			return &terms[i], nil
		}
	}
	return nil, ErrNoTerm
}

// NextTermAfter returns the first term starting strictly after date.
// Used when a subscription begins during a holiday break.
func NextTermAfter(terms []Term, date time.Time) (*Term, error) {
	day := dateOnly(date)
	var next *Term
	for i := range terms {
		start := dateOnly(terms[i].StartDate)
		if start.After(day) {
			if next == nil || start.Before(dateOnly(next.StartDate)) {
				next = &terms[i]
			}
		}
	}
	if next == nil {
		return nil, ErrNoTerm
	}
	return next, nil
}

// OccurrencesOf enumerates every date within [t.StartDate, t.EndDate]
// falling on the given weekday, ascending, stepping 7 days from the first
// match. Pure function of its inputs.
func OccurrencesOf(t Term, weekday time.Weekday) []time.Time {
	start := dateOnly(t.StartDate)
	end := dateOnly(t.EndDate)

	offset := (int(weekday) - int(start.Weekday()) + 7) % 7
	first := start.AddDate(0, 0, offset)

	var dates []time.Time
	for d := first; !d.After(end); d = d.AddDate(0, 0, 7) {
		dates = append(dates, d)
	}
	return dates
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
