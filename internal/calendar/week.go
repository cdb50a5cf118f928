// Package calendar holds the pure date arithmetic for weekly meal plan
// windows. A week window is the seven consecutive calendar dates beginning
// at a Monday-aligned week start.
//
// Two day-indexing conventions exist: Go's time.Weekday (Sunday=0) and the
// backend's meal plan convention (Monday=0). All conversion between them
// lives in this package; backend day indices must never be mixed with native
// weekday values anywhere else.
package calendar

import (
	"fmt"
	"time"
)

// ISODate is the calendar-date layout used on the wire and for same-day
// comparison (time-of-day is deliberately ignored).
const ISODate = "2006-01-02"

// WeekStartFor returns the most recent Monday for the given moment. The
// Monday is found on now's wall-clock calendar, then pinned to midnight UTC
// so that week starts compare and store canonically regardless of the
// server's zone. When now is itself a Monday that date is returned; when now
// is a Sunday the Monday six days prior is returned.
func WeekStartFor(now time.Time) time.Time {
	daysBack := int(now.Weekday()) - 1 // Weekday: 0 (Sun) .. 6 (Sat)
	if now.Weekday() == time.Sunday {
		daysBack = 6
	}
	monday := now.AddDate(0, 0, -daysBack)
	return UTCDate(monday)
}

// CurrentWeekMonday returns the Monday that begins the current week.
func CurrentWeekMonday() time.Time {
	return WeekStartFor(time.Now())
}

// Midnight truncates t to its calendar date, keeping the location.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// UTCDate pins t's wall-clock calendar date to midnight UTC. This is the
// canonical form for stored dates: two values naming the same calendar date
// become the same instant, and a BSON round trip cannot shift them onto the
// previous day.
func UTCDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// WeekDates enumerates the seven dates of the window starting at weekStart:
// weekStart+0 .. weekStart+6, each truncated to midnight.
func WeekDates(weekStart time.Time) [7]time.Time {
	var dates [7]time.Time
	start := Midnight(weekStart)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i)
	}
	return dates
}

// FormatWeekLabel renders a window as "Jan 26 - Feb 01". The month
// abbreviations of the first and last day are computed independently, so a
// window spanning a month boundary labels both months.
func FormatWeekLabel(weekStart time.Time) string {
	start := Midnight(weekStart)
	end := start.AddDate(0, 0, 6)
	return fmt.Sprintf("%s %02d - %s %02d",
		start.Month().String()[:3], start.Day(),
		end.Month().String()[:3], end.Day())
}

// BackendDayIndex converts a native weekday (Sunday=0) to the backend's
// Monday=0 convention.
func BackendDayIndex(w time.Weekday) int {
	return (int(w) + 6) % 7
}

// SameDate reports whether a and b name the same calendar date (year, month,
// day), regardless of time-of-day or how the values were constructed.
func SameDate(a, b time.Time) bool {
	return a.Format(ISODate) == b.Format(ISODate)
}

// TodayIndexWithin returns the position (0-6) of now's calendar date inside
// the window, or -1 when now falls outside it.
func TodayIndexWithin(dates [7]time.Time, now time.Time) int {
	today := now.Format(ISODate)
	for i, d := range dates {
		if d.Format(ISODate) == today {
			return i
		}
	}
	return -1
}

// IsMonday reports whether t falls on a Monday.
func IsMonday(t time.Time) bool {
	return t.Weekday() == time.Monday
}
