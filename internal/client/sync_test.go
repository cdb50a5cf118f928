package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"plateful/mealplan-app/internal/calendar"
	"plateful/mealplan-app/internal/domain"
	"plateful/mealplan-app/internal/planner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePlanAPI serves canned plans per week and can hold responses until
// released, which lets tests interleave in-flight fetches.
type fakePlanAPI struct {
	mu      sync.Mutex
	plans   map[string]*Plan
	holds   map[string]chan struct{}
	err     error
	fetches []string
}

func newFakePlanAPI() *fakePlanAPI {
	return &fakePlanAPI{
		plans: make(map[string]*Plan),
		holds: make(map[string]chan struct{}),
	}
}

func (f *fakePlanAPI) addWeek(weekStart time.Time) *Plan {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := weekStart.Format(calendar.ISODate)
	plan := &Plan{ID: "plan-" + key, WeekStart: key}
	f.plans[key] = plan
	return plan
}

// holdWeek makes fetches for the week block until the returned func is called.
func (f *fakePlanAPI) holdWeek(weekStart time.Time) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan struct{})
	f.holds[weekStart.Format(calendar.ISODate)] = ch
	return func() { close(ch) }
}

func (f *fakePlanAPI) PlanForWeek(_ context.Context, weekStart time.Time) (*Plan, error) {
	key := weekStart.Format(calendar.ISODate)
	f.mu.Lock()
	hold := f.holds[key]
	f.fetches = append(f.fetches, key)
	err := f.err
	plan := f.plans[key]
	f.mu.Unlock()

	if hold != nil {
		<-hold
	}
	if err != nil {
		return nil, err
	}
	if plan == nil {
		plan = &Plan{ID: "plan-" + key, WeekStart: key}
	}
	return plan, nil
}

func (f *fakePlanAPI) AssignEntry(_ context.Context, planID string, date time.Time, mealType, recipeID string) (*PlanEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &PlanEntry{ID: "entry-1", PlanID: planID, MealType: mealType}, nil
}

func (f *fakePlanAPI) RemoveEntry(_ context.Context, planID, entryID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func fixedNow() time.Time {
	// A Wednesday; its week starts Monday 2026-01-26.
	return time.Date(2026, 1, 28, 15, 0, 0, 0, time.UTC)
}

func TestReloadLoadsCurrentWeek(t *testing.T) {
	api := newFakePlanAPI()
	ctrl := NewPlanSyncControllerAt(api, fixedNow)

	require.NoError(t, ctrl.Reload(context.Background()))

	state := ctrl.State()
	require.NotNil(t, state.Plan)
	assert.Equal(t, "2026-01-26", state.Plan.WeekStart)
	assert.False(t, state.Loading)
	assert.NoError(t, state.Err)
}

func TestStateGridReflectsFetchedEntries(t *testing.T) {
	api := newFakePlanAPI()
	ctrl := NewPlanSyncControllerAt(api, fixedNow)

	currentWeek := time.Date(2026, 1, 26, 0, 0, 0, 0, time.UTC)
	plan := api.addWeek(currentWeek)
	plan.Entries = []PlanEntry{
		{
			ID:        "64f0c3e8a1b2c3d4e5f60001",
			PlanID:    plan.ID,
			DayOfWeek: 2,
			MealType:  "dinner",
			Recipe:    &RecipeSnapshot{RecipeID: "64f0c3e8a1b2c3d4e5f60002", Title: "Carbonara"},
		},
		{ID: "64f0c3e8a1b2c3d4e5f60003", PlanID: plan.ID, DayOfWeek: 0, MealType: "breakfast"},
	}

	// Before the first fetch the grid renders with every slot empty.
	empty := ctrl.State().Grid()
	assert.Nil(t, empty.Slot(2, domain.MealDinner))

	require.NoError(t, ctrl.Reload(context.Background()))

	grid := ctrl.State().Grid()
	dinner := grid.Slot(2, domain.MealDinner)
	require.NotNil(t, dinner)
	require.NotNil(t, dinner.Recipe)
	assert.Equal(t, "Carbonara", dinner.Recipe.Title)
	assert.NotNil(t, grid.Slot(0, domain.MealBreakfast))
	assert.Nil(t, grid.Slot(2, domain.MealLunch))
	assert.Equal(t, 2, grid.PopulatedCount())

	day := grid.Day(2)
	require.Len(t, day, len(planner.MealTypes))
	assert.Nil(t, day[0])
	assert.Nil(t, day[1])
	assert.Same(t, dinner, day[2])
}

func TestNavigationFetchesTargetWeek(t *testing.T) {
	api := newFakePlanAPI()
	ctrl := NewPlanSyncControllerAt(api, fixedNow)

	require.NoError(t, ctrl.ShowNextWeek(context.Background()))
	assert.Equal(t, "2026-02-02", ctrl.State().Plan.WeekStart)

	require.NoError(t, ctrl.ShowPrevWeek(context.Background()))
	assert.Equal(t, "2026-01-26", ctrl.State().Plan.WeekStart)

	require.NoError(t, ctrl.ShowPrevWeek(context.Background()))
	assert.Equal(t, "2026-01-19", ctrl.State().Plan.WeekStart)

	require.NoError(t, ctrl.ShowToday(context.Background()))
	assert.Equal(t, "2026-01-26", ctrl.State().Plan.WeekStart)
}

func TestStaleResponseDiscarded(t *testing.T) {
	api := newFakePlanAPI()
	ctrl := NewPlanSyncControllerAt(api, fixedNow)

	currentWeek := time.Date(2026, 1, 26, 0, 0, 0, 0, time.UTC)
	nextWeek := currentWeek.AddDate(0, 0, 7)
	api.addWeek(currentWeek)
	api.addWeek(nextWeek)

	// The fetch for the current week stalls; the user navigates on to the
	// next week before it lands.
	release := api.holdWeek(currentWeek)
	done := make(chan error, 1)
	go func() { done <- ctrl.Reload(context.Background()) }()

	// Wait for the slow fetch to be issued before navigating.
	require.Eventually(t, func() bool {
		api.mu.Lock()
		defer api.mu.Unlock()
		return len(api.fetches) == 1
	}, time.Second, time.Millisecond)

	require.NoError(t, ctrl.ShowNextWeek(context.Background()))
	assert.Equal(t, "2026-02-02", ctrl.State().Plan.WeekStart)

	// The stale response arrives and must not clobber the newer week.
	release()
	require.NoError(t, <-done)

	state := ctrl.State()
	assert.Equal(t, "2026-02-02", state.Plan.WeekStart)
	assert.False(t, state.Loading)
}

func TestFetchErrorSurfacedAndCleared(t *testing.T) {
	api := newFakePlanAPI()
	ctrl := NewPlanSyncControllerAt(api, fixedNow)

	api.mu.Lock()
	api.err = errors.New("network down")
	api.mu.Unlock()

	err := ctrl.Reload(context.Background())
	require.Error(t, err)
	assert.Error(t, ctrl.State().Err)

	api.mu.Lock()
	api.err = nil
	api.mu.Unlock()

	require.NoError(t, ctrl.Reload(context.Background()))
	state := ctrl.State()
	assert.NoError(t, state.Err)
	require.NotNil(t, state.Plan)
}

func TestAssignRecipeReloadsOnSuccess(t *testing.T) {
	api := newFakePlanAPI()
	ctrl := NewPlanSyncControllerAt(api, fixedNow)
	require.NoError(t, ctrl.Reload(context.Background()))

	date := time.Date(2026, 1, 29, 0, 0, 0, 0, time.UTC)
	require.NoError(t, ctrl.AssignRecipe(context.Background(), date, "dinner", "recipe-1"))

	// One fetch for the initial load, one after the mutation.
	api.mu.Lock()
	fetchCount := len(api.fetches)
	api.mu.Unlock()
	assert.Equal(t, 2, fetchCount)
}

func TestMutationFailureKeepsGridAndSetsError(t *testing.T) {
	api := newFakePlanAPI()
	ctrl := NewPlanSyncControllerAt(api, fixedNow)
	require.NoError(t, ctrl.Reload(context.Background()))
	before := ctrl.State().Plan

	api.mu.Lock()
	api.err = errors.New("slot rejected")
	api.mu.Unlock()

	date := time.Date(2026, 1, 29, 0, 0, 0, 0, time.UTC)
	err := ctrl.AssignRecipe(context.Background(), date, "dinner", "recipe-1")
	require.Error(t, err)

	state := ctrl.State()
	assert.Error(t, state.Err)
	assert.Equal(t, before.ID, state.Plan.ID)
}
