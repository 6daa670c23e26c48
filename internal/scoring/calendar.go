package scoring

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/gb"
	"github.com/rickar/cal/v2/us"
)

// ErrUnknownRegion is returned by a HolidayCalendar whose region has no
// registered holiday set.
var ErrUnknownRegion = errors.New("unknown holiday region")

const dateLayout = "2006-01-02"

// BusinessCalendar counts business days between two civil dates.
// The count covers [start, end) after ordering the two dates.
type BusinessCalendar interface {
	BusinessDaysBetween(start, end time.Time) (int, error)
}

// Clock supplies the current civil date.
type Clock interface {
	Today() time.Time
}

// SystemClock reads the wall clock in Location (UTC when nil).
type SystemClock struct {
	Location *time.Location
}

// Today returns midnight UTC of the current date in the clock's location.
func (c SystemClock) Today() time.Time {
	now := time.Now()
	if c.Location != nil {
		now = now.In(c.Location)
	}
	return civil(now)
}

// FixedClock always reports the same date.
type FixedClock struct {
	Date time.Time
}

// Today returns the fixed date.
func (c FixedClock) Today() time.Time {
	return civil(c.Date)
}

// ParseDate parses a YYYY-MM-DD date into midnight UTC.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return d, nil
}

// civil drops the time of day, keeping the date as midnight UTC.
func civil(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// indiaHolidays covers the fixed-date national holidays. Lunar-calendar
// festivals vary by state and are not modelled.
var indiaHolidays = []*cal.Holiday{
	{Name: "Republic Day", Type: cal.ObservancePublic, Month: time.January, Day: 26, Func: cal.CalcDayOfMonth},
	{Name: "Independence Day", Type: cal.ObservancePublic, Month: time.August, Day: 15, Func: cal.CalcDayOfMonth},
	{Name: "Gandhi Jayanti", Type: cal.ObservancePublic, Month: time.October, Day: 2, Func: cal.CalcDayOfMonth},
	{Name: "Christmas Day", Type: cal.ObservancePublic, Month: time.December, Day: 25, Func: cal.CalcDayOfMonth},
}

var regionHolidays = map[string][]*cal.Holiday{
	"IN": indiaHolidays,
	"US": us.Holidays,
	"GB": gb.Holidays,
}

// Regions lists the region codes with a registered holiday set.
func Regions() []string {
	out := make([]string, 0, len(regionHolidays))
	for r := range regionHolidays {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

// HolidayCalendar excludes weekends and one region's public holidays.
type HolidayCalendar struct {
	region string
	bc     *cal.BusinessCalendar
}

// NewHolidayCalendar returns a calendar for the given ISO country code.
// Unknown regions are accepted; counting on them fails with ErrUnknownRegion.
func NewHolidayCalendar(region string) *HolidayCalendar {
	region = strings.ToUpper(strings.TrimSpace(region))
	c := &HolidayCalendar{region: region}
	if hols, ok := regionHolidays[region]; ok {
		c.bc = cal.NewBusinessCalendar()
		c.bc.AddHoliday(hols...)
	}
	return c
}

// Region returns the calendar's country code.
func (c *HolidayCalendar) Region() string {
	return c.region
}

// BusinessDaysBetween implements BusinessCalendar.
func (c *HolidayCalendar) BusinessDaysBetween(start, end time.Time) (int, error) {
	if c.bc == nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownRegion, c.region)
	}
	return countBusinessDays(start, end, c.bc.IsWorkday), nil
}

// FixedCalendar is a synthetic calendar: weekends plus an explicit holiday list.
type FixedCalendar struct {
	holidays map[string]bool
}

// NewFixedCalendar builds a calendar with the given holiday dates.
func NewFixedCalendar(holidays ...time.Time) *FixedCalendar {
	c := &FixedCalendar{holidays: make(map[string]bool, len(holidays))}
	for _, h := range holidays {
		c.holidays[h.Format(dateLayout)] = true
	}
	return c
}

// BusinessDaysBetween implements BusinessCalendar.
func (c *FixedCalendar) BusinessDaysBetween(start, end time.Time) (int, error) {
	return countBusinessDays(start, end, func(d time.Time) bool {
		if isWeekend(d) {
			return false
		}
		return !c.holidays[d.Format(dateLayout)]
	}), nil
}

func countBusinessDays(start, end time.Time, isWorkday func(time.Time) bool) int {
	start, end = civil(start), civil(end)
	if start.After(end) {
		start, end = end, start
	}
	count := 0
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		if isWorkday(d) {
			count++
		}
	}
	return count
}

// calendarDaysBetween is the raw day distance used when a calendar fails.
func calendarDaysBetween(start, end time.Time) int {
	start, end = civil(start), civil(end)
	if start.After(end) {
		start, end = end, start
	}
	return int(end.Sub(start).Hours() / 24)
}

func isWeekend(d time.Time) bool {
	return d.Weekday() == time.Saturday || d.Weekday() == time.Sunday
}
