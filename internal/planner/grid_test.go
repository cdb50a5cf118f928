package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"plateful/mealplan-app/internal/domain"
)

func entry(day int, meal domain.MealType, recipeTitle string) domain.MealPlanEntry {
	return domain.MealPlanEntry{
		ID:        primitive.NewObjectID(),
		DayOfWeek: day,
		MealType:  meal,
		Recipe: &domain.RecipeSnapshot{
			RecipeID: primitive.NewObjectID(),
			Title:    recipeTitle,
		},
	}
}

func TestBuildWeekGridSparseEntries(t *testing.T) {
	entries := []domain.MealPlanEntry{
		entry(0, domain.MealBreakfast, "Oatmeal"),
		entry(2, domain.MealDinner, "Chili"),
	}
	grid := BuildWeekGrid(entries)

	// Day 0: breakfast filled, lunch/dinner empty.
	if assert.NotNil(t, grid.Slot(0, domain.MealBreakfast)) {
		assert.Equal(t, "Oatmeal", grid.Slot(0, domain.MealBreakfast).Recipe.Title)
	}
	assert.Nil(t, grid.Slot(0, domain.MealLunch))
	assert.Nil(t, grid.Slot(0, domain.MealDinner))

	// Day 2: only dinner filled.
	assert.Nil(t, grid.Slot(2, domain.MealBreakfast))
	assert.Nil(t, grid.Slot(2, domain.MealLunch))
	assert.NotNil(t, grid.Slot(2, domain.MealDinner))

	// All other days fully empty, but still three queryable slots.
	for _, day := range []int{1, 3, 4, 5, 6} {
		for _, meal := range MealTypes {
			assert.Nil(t, grid.Slot(day, meal))
		}
	}

	assert.Equal(t, len(entries), grid.PopulatedCount())
}

func TestBuildWeekGridUniqueSlotsFullyReconstructed(t *testing.T) {
	var entries []domain.MealPlanEntry
	for day := 0; day < 7; day++ {
		for _, meal := range MealTypes {
			entries = append(entries, entry(day, meal, "x"))
		}
	}
	grid := BuildWeekGrid(entries)
	assert.Equal(t, 21, grid.PopulatedCount())
	for day := 0; day < 7; day++ {
		for _, meal := range MealTypes {
			assert.NotNil(t, grid.Slot(day, meal))
		}
	}
}

func TestFindSlotFirstMatchWinsOnDuplicate(t *testing.T) {
	first := entry(1, domain.MealLunch, "First")
	second := entry(1, domain.MealLunch, "Second")
	day := []domain.MealPlanEntry{first, second}

	got := FindSlot(day, domain.MealLunch)
	if assert.NotNil(t, got) {
		assert.Equal(t, "First", got.Recipe.Title)
	}

	// Same tie-break through the grid.
	grid := BuildWeekGrid(day)
	assert.Equal(t, "First", grid.Slot(1, domain.MealLunch).Recipe.Title)
	assert.Equal(t, 1, grid.PopulatedCount())
}

func TestFindSlotEmptyIsNil(t *testing.T) {
	assert.Nil(t, FindSlot(nil, domain.MealDinner))
	assert.Nil(t, FindSlot([]domain.MealPlanEntry{entry(0, domain.MealLunch, "x")}, domain.MealDinner))
}

func TestEntriesForDay(t *testing.T) {
	entries := []domain.MealPlanEntry{
		entry(0, domain.MealBreakfast, "a"),
		entry(0, domain.MealDinner, "b"),
		entry(4, domain.MealLunch, "c"),
	}
	assert.Len(t, EntriesForDay(entries, 0), 2)
	assert.Len(t, EntriesForDay(entries, 4), 1)
	assert.Empty(t, EntriesForDay(entries, 3))
}

func TestBuildWeekGridDropsMalformedEntries(t *testing.T) {
	entries := []domain.MealPlanEntry{
		entry(7, domain.MealBreakfast, "out of range"),
		entry(-1, domain.MealBreakfast, "negative"),
		{DayOfWeek: 3, MealType: domain.MealType("brunch")},
	}
	assert.Equal(t, 0, BuildWeekGrid(entries).PopulatedCount())
}
