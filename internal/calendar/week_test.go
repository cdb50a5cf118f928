package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestWeekStartForAlwaysMonday(t *testing.T) {
	// One "today" per weekday, including the Sunday and Monday boundaries.
	for i := 0; i < 7; i++ {
		now := time.Date(2026, time.January, 26+i, 15, 4, 5, 0, time.Local)
		got := WeekStartFor(now)
		assert.Equal(t, time.Monday, got.Weekday(), "today=%s", now.Format(ISODate))
	}
}

func TestWeekStartForSunday(t *testing.T) {
	// 2026-02-01 is a Sunday; its week started six days earlier.
	sunday := time.Date(2026, time.February, 1, 9, 30, 0, 0, time.Local)
	assert.Equal(t, date(2026, time.January, 26), WeekStartFor(sunday))
}

func TestWeekStartForMondayIsIdentity(t *testing.T) {
	monday := time.Date(2026, time.January, 26, 23, 59, 59, 0, time.Local)
	assert.Equal(t, date(2026, time.January, 26), WeekStartFor(monday))
}

func TestWeekStartForIsCanonicalAcrossZones(t *testing.T) {
	// The same wall-clock Wednesday seen from three zones must resolve to one
	// and the same Monday instant, otherwise each server zone would key its
	// own copy of the week.
	zones := []*time.Location{
		time.UTC,
		time.FixedZone("UTC+2", 2*60*60),
		time.FixedZone("UTC-5", -5*60*60),
	}
	want := date(2026, time.February, 2)
	for _, loc := range zones {
		now := time.Date(2026, time.February, 4, 8, 0, 0, 0, loc)
		got := WeekStartFor(now)
		assert.True(t, got.Equal(want), "zone=%s got=%s", loc, got)
		assert.Equal(t, time.UTC, got.Location(), "zone=%s", loc)
	}
}

func TestUTCDatePinsWallClockDate(t *testing.T) {
	t2 := time.Date(2026, time.February, 2, 0, 0, 0, 0, time.FixedZone("UTC+2", 2*60*60))
	assert.Equal(t, date(2026, time.February, 2), UTCDate(t2))
}

func TestWeekDatesConsecutive(t *testing.T) {
	start := date(2026, time.January, 26)
	dates := WeekDates(start)
	assert.Equal(t, start, dates[0])
	for i := 1; i < 7; i++ {
		assert.Equal(t, dates[i-1].AddDate(0, 0, 1), dates[i])
	}
	assert.Equal(t, date(2026, time.February, 1), dates[6])
}

func TestFormatWeekLabelSpansMonthBoundary(t *testing.T) {
	assert.Equal(t, "Jan 26 - Feb 01", FormatWeekLabel(date(2026, time.January, 26)))
	assert.Equal(t, "Mar 02 - Mar 08", FormatWeekLabel(date(2026, time.March, 2)))
}

func TestBackendDayIndex(t *testing.T) {
	assert.Equal(t, 0, BackendDayIndex(time.Monday))
	assert.Equal(t, 1, BackendDayIndex(time.Tuesday))
	assert.Equal(t, 5, BackendDayIndex(time.Saturday))
	assert.Equal(t, 6, BackendDayIndex(time.Sunday))
}

func TestTodayIndexWithin(t *testing.T) {
	start := date(2026, time.January, 26)
	dates := WeekDates(start)

	// Each day of the current week maps to its backend index.
	for i := 0; i < 7; i++ {
		now := dates[i].Add(13 * time.Hour)
		assert.Equal(t, i, TodayIndexWithin(dates, now))
		assert.Equal(t, BackendDayIndex(now.Weekday()), TodayIndexWithin(dates, now))
	}

	// A window not containing today yields -1.
	assert.Equal(t, -1, TodayIndexWithin(dates, date(2026, time.February, 2)))
	assert.Equal(t, -1, TodayIndexWithin(dates, date(2026, time.January, 25)))
}

func TestSameDateIgnoresTimeOfDay(t *testing.T) {
	a := time.Date(2026, time.January, 26, 0, 0, 0, 0, time.Local)
	b := time.Date(2026, time.January, 26, 23, 15, 0, 0, time.Local)
	assert.True(t, SameDate(a, b))
	assert.False(t, SameDate(a, b.AddDate(0, 0, 1)))
}
