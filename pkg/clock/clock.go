// Package clock stamps visitor records in the institution's local time.
package clock

import (
	"fmt"
	"time"
	_ "time/tzdata" // containers often ship without zoneinfo
)

// Layouts shared by the stores, import and export.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"
)

// Clock is the source of the current instant.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// System reads the wall clock.
var System Clock = ClockFunc(time.Now)

// Fixed returns a clock frozen at t.
func Fixed(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}

// Calendar projects a Clock into a single fixed location.
type Calendar struct {
	clock Clock
	loc   *time.Location
}

// NewCalendar loads the named IANA zone. An empty name means UTC.
func NewCalendar(c Clock, zone string) (*Calendar, error) {
	if c == nil {
		c = System
	}
	loc := time.UTC
	if zone != "" {
		var err error
		loc, err = time.LoadLocation(zone)
		if err != nil {
			return nil, fmt.Errorf("load timezone %q: %w", zone, err)
		}
	}
	return &Calendar{clock: c, loc: loc}, nil
}

// MustCalendar is NewCalendar for tests and static setup.
func MustCalendar(c Clock, zone string) *Calendar {
	cal, err := NewCalendar(c, zone)
	if err != nil {
		panic(err)
	}
	return cal
}

// Location returns the calendar's zone.
func (c *Calendar) Location() *time.Location { return c.loc }

// Now returns the current instant in the calendar's zone.
func (c *Calendar) Now() time.Time { return c.clock.Now().In(c.loc) }

// Today returns the local date as YYYY-MM-DD.
func (c *Calendar) Today() string { return c.Now().Format(DateLayout) }

// TimeOfDay returns the local wall-clock time as HH:MM:SS.
func (c *Calendar) TimeOfDay() string { return c.Now().Format(TimeLayout) }

// Stamp captures date, time and weekday from a single reading.
func (c *Calendar) Stamp() Stamp {
	now := c.Now()
	return Stamp{
		Date:    now.Format(DateLayout),
		Time:    now.Format(TimeLayout),
		Weekday: now.Weekday().String(),
	}
}

// Stamp is the server-assigned part of a visitor record.
type Stamp struct {
	Date    string
	Time    string
	Weekday string
}

// ParseDate validates a YYYY-MM-DD string.
func ParseDate(raw string) (time.Time, error) {
	return time.Parse(DateLayout, raw)
}

// NormalizeTime accepts HH:MM or HH:MM:SS and returns HH:MM:SS.
func NormalizeTime(raw string) (string, error) {
	for _, layout := range []string{TimeLayout, "15:04"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(TimeLayout), nil
		}
	}
	return "", fmt.Errorf("invalid time of day %q", raw)
}

// WeekdayOf returns the weekday name of a YYYY-MM-DD date.
func WeekdayOf(date string) (string, error) {
	t, err := ParseDate(date)
	if err != nil {
		return "", err
	}
	return t.Weekday().String(), nil
}
