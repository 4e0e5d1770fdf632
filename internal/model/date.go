package model

import (
	"strings"
	"time"
)

// DateLayout is the ISO calendar date format used on the wire and in keys.
const DateLayout = "2006-01-02"

// Day returns the civil date y-m-d as midnight UTC.
func Day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateOf drops the wall-clock part of t, keeping the date as seen in t's own
// location.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return Day(y, m, d)
}

// ParseDate parses a YYYY-MM-DD string into a civil date.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.UTC)
}

// DateKey formats a civil date as YYYY-MM-DD.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// AddDays moves a civil date by n days.
func AddDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, n)
}

// MondayIndex maps a weekday to 0=Monday .. 6=Sunday.
func MondayIndex(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

// WeekStartOf returns the first day of the week containing day, where weeks
// begin on start.
func WeekStartOf(day time.Time, start time.Weekday) time.Time {
	day = DateOf(day)
	offset := (int(day.Weekday()) - int(start) + 7) % 7
	return AddDays(day, -offset)
}
