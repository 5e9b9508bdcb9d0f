package analytics

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Filter names a reporting period.
type Filter string

const (
	FilterToday      Filter = "today"
	FilterWeek       Filter = "week"
	FilterMonth      Filter = "month"
	FilterThreeMonth Filter = "3months"
	FilterYear       Filter = "year"
	FilterAll        Filter = "all"
)

// ErrUnknownFilter is returned when a filter tag is not one of the supported periods.
var ErrUnknownFilter = errors.New("unknown period filter")

// Filters lists the supported filters in display order.
func Filters() []Filter {
	return []Filter{FilterToday, FilterWeek, FilterMonth, FilterThreeMonth, FilterYear, FilterAll}
}

// ParseFilter validates a filter tag.
func ParseFilter(s string) (Filter, error) {
	for _, f := range Filters() {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFilter, s)
}

// Window is the half-open range [Start, End). A zero Start means the window is unbounded.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Unbounded reports whether the window covers all time.
func (w Window) Unbounded() bool {
	return w.Start.IsZero()
}

// Duration of a bounded window. Unbounded windows report zero.
func (w Window) Duration() time.Duration {
	if w.Unbounded() {
		return 0
	}
	return w.End.Sub(w.Start)
}

// Contains reports whether t falls inside the window.
func (w Window) Contains(t time.Time) bool {
	if w.Unbounded() {
		return true
	}
	return !t.Before(w.Start) && t.Before(w.End)
}

// Previous returns the window of identical duration ending where w starts.
//
// An unbounded window has no predecessor and ok is false.
func (w Window) Previous() (Window, bool) {
	if w.Unbounded() {
		return Window{}, false
	}
	return Window{Start: w.Start.Add(-w.Duration()), End: w.Start}, true
}

// PeriodResolver maps filters to windows.
type PeriodResolver struct {
	// WeekStart is the first day of the week for the week filter.
	WeekStart time.Weekday
}

// NewPeriodResolver returns a resolver with weeks starting on Monday.
func NewPeriodResolver() PeriodResolver {
	return PeriodResolver{WeekStart: time.Monday}
}

// Resolve returns the window for filter ending at now. The only time input is now.
func (r PeriodResolver) Resolve(filter Filter, now time.Time) (Window, error) {
	switch filter {
	case FilterToday:
		return Window{Start: midnight(now), End: now}, nil
	case FilterWeek:
		offset := (int(now.Weekday()) - int(r.WeekStart) + 7) % 7 //nolint:mnd // days in a week
		return Window{Start: midnight(now).AddDate(0, 0, -offset), End: now}, nil
	case FilterMonth:
		return Window{Start: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), End: now}, nil
	case FilterThreeMonth:
		return Window{Start: now.AddDate(0, -3, 0), End: now}, nil
	case FilterYear:
		return Window{Start: now.AddDate(-1, 0, 0), End: now}, nil
	case FilterAll:
		return Window{}, nil
	default:
		return Window{}, fmt.Errorf("%w: %q", ErrUnknownFilter, filter)
	}
}

// ParseWeekday parses an English weekday name such as "monday" or "Sunday".
func ParseWeekday(s string) (time.Weekday, error) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(d.String(), s) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("invalid weekday %q", s)
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
