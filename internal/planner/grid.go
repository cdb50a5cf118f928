// Package planner turns the flat entry list of a weekly meal plan into the
// fixed 7x3 grid of (day, meal type) slots the calendar page renders.
package planner

import (
	"plateful/mealplan-app/internal/domain"
)

// MealTypes is the fixed slot order within a day. Every day exposes these
// three slots regardless of how many entries exist, so a day with zero
// assigned meals still yields three empty slots.
var MealTypes = [3]domain.MealType{
	domain.MealBreakfast,
	domain.MealLunch,
	domain.MealDinner,
}

// EntriesForDay filters entries down to a single backend day index (0-6).
func EntriesForDay(entries []domain.MealPlanEntry, dayIndex int) []domain.MealPlanEntry {
	var day []domain.MealPlanEntry
	for _, e := range entries {
		if e.DayOfWeek == dayIndex {
			day = append(day, e)
		}
	}
	return day
}

// FindSlot returns the entry occupying the given meal type, or nil when the
// slot is unfilled (a normal state, not an error). The backend guarantees at
// most one entry per slot; if that invariant is ever violated the first
// match wins and duplicates are ignored.
func FindSlot(dayEntries []domain.MealPlanEntry, mealType domain.MealType) *domain.MealPlanEntry {
	for i := range dayEntries {
		if dayEntries[i].MealType == mealType {
			return &dayEntries[i]
		}
	}
	return nil
}

// WeekGrid is the per-slot lookup built from a plan's flat entry list.
type WeekGrid struct {
	slots [7][3]*domain.MealPlanEntry
}

// BuildWeekGrid reconciles a flat entry list with the 7x3 slot grid.
// Entries with an out-of-range day index or an unknown meal type are
// dropped; duplicate slot occupants beyond the first are ignored.
func BuildWeekGrid(entries []domain.MealPlanEntry) *WeekGrid {
	g := &WeekGrid{}
	for i := range entries {
		e := &entries[i]
		if e.DayOfWeek < 0 || e.DayOfWeek > 6 {
			continue
		}
		s := slotIndex(e.MealType)
		if s < 0 {
			continue
		}
		if g.slots[e.DayOfWeek][s] == nil {
			g.slots[e.DayOfWeek][s] = e
		}
	}
	return g
}

// Slot returns the entry at (dayIndex, mealType), or nil for an empty slot.
func (g *WeekGrid) Slot(dayIndex int, mealType domain.MealType) *domain.MealPlanEntry {
	if dayIndex < 0 || dayIndex > 6 {
		return nil
	}
	s := slotIndex(mealType)
	if s < 0 {
		return nil
	}
	return g.slots[dayIndex][s]
}

// Day returns the three slots of a day in fixed meal order. Empty slots are
// nil so callers can render an "add" affordance for them.
func (g *WeekGrid) Day(dayIndex int) [3]*domain.MealPlanEntry {
	if dayIndex < 0 || dayIndex > 6 {
		return [3]*domain.MealPlanEntry{}
	}
	return g.slots[dayIndex]
}

// PopulatedCount reports how many of the 21 slots hold an entry.
func (g *WeekGrid) PopulatedCount() int {
	n := 0
	for d := range g.slots {
		for s := range g.slots[d] {
			if g.slots[d][s] != nil {
				n++
			}
		}
	}
	return n
}

func slotIndex(t domain.MealType) int {
	for i, m := range MealTypes {
		if m == t {
			return i
		}
	}
	return -1
}
