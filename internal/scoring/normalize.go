package scoring

import (
	"math"
	"time"
)

const (
	// DefaultUrgencyWindowDays is the business-day horizon over which urgency
	// decays from 1.0 to 0 and over which overdue urgency grows to its cap.
	DefaultUrgencyWindowDays = 30.0

	// DefaultNoDeadlineUrgency is the urgency of a task with no due date.
	DefaultNoDeadlineUrgency = 0.1

	maxOverdueUrgency = 2.0

	// Counting spans are truncated to this many calendar days. Any real
	// calendar has well over a window's worth of business days in a year,
	// so urgency is saturated long before the cutoff.
	maxCountedSpanDays = 366
)

// NormalizeImportance maps importance 1..10 onto [0,1], clamping out-of-range input.
func NormalizeImportance(importance int) float64 {
	i := clamp(float64(importance), 1, 10)
	return (i - 1) / 9.0
}

// NormalizeEffort maps estimated hours onto (0,1]; more effort scores lower
// and zero hours scores exactly 1.0.
func NormalizeEffort(hours float64) float64 {
	h := math.Max(0, hours)
	return 1.0 / (1.0 + math.Log1p(h))
}

// UrgencyPolicy holds the constants of the urgency normalizer.
type UrgencyPolicy struct {
	WindowDays float64
	NoDeadline float64
}

// DefaultUrgencyPolicy returns the 30-business-day window with 0.1 for no deadline.
func DefaultUrgencyPolicy() UrgencyPolicy {
	return UrgencyPolicy{
		WindowDays: DefaultUrgencyWindowDays,
		NoDeadline: DefaultNoDeadlineUrgency,
	}
}

// NormalizeUrgency applies the default policy.
func NormalizeUrgency(due *time.Time, today time.Time, bc BusinessCalendar) (float64, error) {
	return DefaultUrgencyPolicy().Normalize(due, today, bc)
}

// Normalize maps a due date to urgency:
//
//	no due date        -> NoDeadline
//	due today or later -> max(0, 1 - b/window)           b = business days until due
//	overdue            -> min(1 + min(1, o/window), 2)   o = business days overdue
//
// When the calendar fails the same formulas run over raw calendar days and
// the calendar error is returned with the degraded value.
func (p UrgencyPolicy) Normalize(due *time.Time, today time.Time, bc BusinessCalendar) (float64, error) {
	if due == nil {
		return p.NoDeadline, nil
	}
	d, now := civil(*due), civil(today)

	if d.Before(now) {
		overdue, err := p.countDays(d, now, bc)
		return math.Min(1.0+math.Min(1.0, float64(overdue)/p.WindowDays), maxOverdueUrgency), err
	}
	remaining, err := p.countDays(now, d, bc)
	return math.Max(0, 1.0-float64(remaining)/p.WindowDays), err
}

func (p UrgencyPolicy) countDays(start, end time.Time, bc BusinessCalendar) (int, error) {
	if limit := start.AddDate(0, 0, maxCountedSpanDays); end.After(limit) {
		end = limit
	}
	if bc == nil {
		return calendarDaysBetween(start, end), nil
	}
	n, err := bc.BusinessDaysBetween(start, end)
	if err != nil {
		return calendarDaysBetween(start, end), err
	}
	return n, nil
}
