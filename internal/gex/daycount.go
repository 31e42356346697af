package gex

import (
	"fmt"
	"sync"
	"time"

	"github.com/scmhub/calendar"
)

// TradingDaysPerYear is the year length used to annualise business days.
const TradingDaysPerYear = 262

// DayCounter counts business days in the half-open interval [from, to).
// The count is negative when to is before from.
type DayCounter interface {
	BusinessDays(from, to time.Time) int
}

// Calendar names accepted by NewDayCounter.
const (
	CalendarWeekdays = "weekdays"
	CalendarXNYS     = "xnys"
)

// NewDayCounter returns the counter registered under name.
func NewDayCounter(name string) (DayCounter, error) {
	switch name {
	case "", CalendarWeekdays:
		return WeekdayCounter{}, nil
	case CalendarXNYS:
		return NewCalendarDayCounter(), nil
	default:
		return nil, fmt.Errorf("unknown calendar %q (valid: %s, %s)", name, CalendarWeekdays, CalendarXNYS)
	}
}

// WeekdayCounter treats Monday through Friday as business days and ignores
// holidays.
type WeekdayCounter struct{}

func (WeekdayCounter) BusinessDays(from, to time.Time) int {
	start, end := civilDate(from), civilDate(to)
	if end.Before(start) {
		return -countWeekdays(end, start)
	}
	return countWeekdays(start, end)
}

func countWeekdays(start, end time.Time) int {
	days := int(end.Sub(start).Hours() / 24)
	weeks, rem := days/7, days%7
	n := weeks * 5
	wd := start.Weekday()
	for i := 0; i < rem; i++ {
		if wd != time.Saturday && wd != time.Sunday {
			n++
		}
		wd = (wd + 1) % 7
	}
	return n
}

// CalendarDayCounter excludes weekends and NYSE holidays.
type CalendarDayCounter struct {
	mu       sync.Mutex
	nyse     *calendar.Calendar
	location *time.Location
}

// NewCalendarDayCounter builds a counter backed by the XNYS calendar.
func NewCalendarDayCounter() *CalendarDayCounter {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.UTC
	}
	return &CalendarDayCounter{
		nyse:     calendar.XNYS(),
		location: loc,
	}
}

func (c *CalendarDayCounter) BusinessDays(from, to time.Time) int {
	start, end := civilDate(from), civilDate(to)
	sign := 1
	if end.Before(start) {
		start, end, sign = end, start, -1
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
		// Noon in New York so the exchange sees the intended date
		t := time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, c.location)
		if c.nyse.IsBusinessDay(t) {
			n++
		}
	}
	return sign * n
}

// YearsToExpiry converts the business days between asOf and expiration into
// years of TradingDaysPerYear. Same-day expiries are clamped to one day so
// they keep a finite gamma; already expired contracts get 0.
func YearsToExpiry(dc DayCounter, asOf, expiration time.Time) float64 {
	days := dc.BusinessDays(asOf, expiration)
	switch {
	case days == 0:
		return 1.0 / TradingDaysPerYear
	case days < 0:
		return 0
	default:
		return float64(days) / TradingDaysPerYear
	}
}

// IsThirdFriday reports whether d is the standard monthly expiration day.
func IsThirdFriday(d time.Time) bool {
	return d.Weekday() == time.Friday && d.Day() >= 15 && d.Day() <= 21
}

// civilDate drops the clock and zone, keeping the calendar date as written.
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
