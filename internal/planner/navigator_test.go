package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestNavigatorStartsAtCurrentWeekMonday(t *testing.T) {
	// 2026-01-28 is a Wednesday.
	now := time.Date(2026, time.January, 28, 10, 0, 0, 0, time.Local)
	nav := NewWeekNavigatorAt(fixedClock(now))

	assert.Equal(t, time.Monday, nav.WeekStart().Weekday())
	assert.Equal(t, 26, nav.WeekStart().Day())
	assert.False(t, nav.TodayEnabled())
	assert.Equal(t, 2, nav.TodayIndex())
}

func TestNavigatorPrevNextRoundTrip(t *testing.T) {
	now := time.Date(2026, time.January, 28, 10, 0, 0, 0, time.Local)
	nav := NewWeekNavigatorAt(fixedClock(now))
	origin := nav.WeekStart()

	nav.Next()
	assert.True(t, nav.TodayEnabled())
	assert.Equal(t, -1, nav.TodayIndex())
	nav.Prev()
	assert.Equal(t, origin, nav.WeekStart())
	assert.False(t, nav.TodayEnabled())

	nav.Prev()
	nav.Next()
	assert.Equal(t, origin, nav.WeekStart())
}

func TestNavigatorTodayResets(t *testing.T) {
	now := time.Date(2026, time.January, 28, 10, 0, 0, 0, time.Local)
	nav := NewWeekNavigatorAt(fixedClock(now))
	origin := nav.WeekStart()

	for i := 0; i < 5; i++ {
		nav.Next()
	}
	assert.True(t, nav.TodayEnabled())
	nav.Today()
	assert.Equal(t, origin, nav.WeekStart())
	assert.False(t, nav.TodayEnabled())
}

func TestNavigatorLabel(t *testing.T) {
	now := time.Date(2026, time.January, 28, 10, 0, 0, 0, time.Local)
	nav := NewWeekNavigatorAt(fixedClock(now))
	assert.Equal(t, "Jan 26 - Feb 01", nav.Label())
}
