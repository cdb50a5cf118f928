package planner

import (
	"time"

	"plateful/mealplan-app/internal/calendar"
)

// WeekNavigator tracks the currently displayed week start and offers the
// prev/next/today transitions. It holds no history: prev after next returns
// to the original week because both are pure +/-7-day offsets.
type WeekNavigator struct {
	weekStart time.Time
	now       func() time.Time // Injectable for tests
}

// NewWeekNavigator starts at the week containing the current date.
func NewWeekNavigator() *WeekNavigator {
	return NewWeekNavigatorAt(time.Now)
}

// NewWeekNavigatorAt starts at the week containing now() and keeps the clock
// for later Today/TodayEnabled calls.
func NewWeekNavigatorAt(now func() time.Time) *WeekNavigator {
	return &WeekNavigator{
		weekStart: calendar.WeekStartFor(now()),
		now:       now,
	}
}

// WeekStart returns the Monday of the currently displayed week.
func (n *WeekNavigator) WeekStart() time.Time {
	return n.weekStart
}

// Prev moves the window one week back.
func (n *WeekNavigator) Prev() time.Time {
	n.weekStart = n.weekStart.AddDate(0, 0, -7)
	return n.weekStart
}

// Next moves the window one week forward.
func (n *WeekNavigator) Next() time.Time {
	n.weekStart = n.weekStart.AddDate(0, 0, 7)
	return n.weekStart
}

// Today jumps back to the current week.
func (n *WeekNavigator) Today() time.Time {
	n.weekStart = calendar.WeekStartFor(n.now())
	return n.weekStart
}

// TodayEnabled reports whether the Today transition would change the
// displayed week. Comparison is by calendar date, not by instant: two dates
// naming the same day but constructed differently compare equal.
func (n *WeekNavigator) TodayEnabled() bool {
	return !calendar.SameDate(n.weekStart, calendar.WeekStartFor(n.now()))
}

// Dates returns the seven dates of the displayed window.
func (n *WeekNavigator) Dates() [7]time.Time {
	return calendar.WeekDates(n.weekStart)
}

// Label renders the displayed window as "Mon DD - Sun DD".
func (n *WeekNavigator) Label() string {
	return calendar.FormatWeekLabel(n.weekStart)
}

// TodayIndex returns the backend day index of today within the displayed
// window, or -1 when the window is not the current week.
func (n *WeekNavigator) TodayIndex() int {
	return calendar.TodayIndexWithin(n.Dates(), n.now())
}
