package client

import (
	"context"
	"sync"
	"time"

	"plateful/mealplan-app/internal/planner"
)

// PlanAPI is the slice of the API the sync controller needs. *Client
// implements it; tests substitute a fake.
type PlanAPI interface {
	PlanForWeek(ctx context.Context, weekStart time.Time) (*Plan, error)
	AssignEntry(ctx context.Context, planID string, date time.Time, mealType, recipeID string) (*PlanEntry, error)
	RemoveEntry(ctx context.Context, planID, entryID string) error
}

// PlanState is an immutable snapshot of the controller for rendering.
type PlanState struct {
	WeekStart time.Time
	Plan      *Plan // nil until the first fetch for this week lands
	Loading   bool
	Err       error
}

// Grid returns the displayed plan reconciled into the 7x3 slot grid. Before
// the first fetch lands every slot is empty.
func (s PlanState) Grid() *planner.WeekGrid {
	return s.Plan.Grid()
}

// PlanSyncController keeps a week grid in sync with the server. It owns a
// WeekNavigator for moving between weeks and guards against out-of-order
// responses: every fetch carries a sequence number, and a response is
// discarded when a newer fetch has been issued since. The displayed plan
// therefore always belongs to the week the user last navigated to.
type PlanSyncController struct {
	api PlanAPI
	nav *planner.WeekNavigator

	mu      sync.Mutex
	seq     uint64
	plan    *Plan
	loading bool
	err     error
}

// NewPlanSyncController creates a controller positioned at the current week.
// No fetch happens until Reload (or a navigation call) is invoked.
func NewPlanSyncController(api PlanAPI) *PlanSyncController {
	return &PlanSyncController{
		api: api,
		nav: planner.NewWeekNavigator(),
	}
}

// NewPlanSyncControllerAt is like NewPlanSyncController with an injectable
// clock.
func NewPlanSyncControllerAt(api PlanAPI, now func() time.Time) *PlanSyncController {
	return &PlanSyncController{
		api: api,
		nav: planner.NewWeekNavigatorAt(now),
	}
}

// State returns a snapshot of the controller.
func (c *PlanSyncController) State() PlanState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return PlanState{
		WeekStart: c.nav.WeekStart(),
		Plan:      c.plan,
		Loading:   c.loading,
		Err:       c.err,
	}
}

// Navigator exposes the underlying week navigator for rendering (dates,
// label, today highlight). Navigation must go through the controller's
// ShowPrevWeek/ShowNextWeek/ShowToday so fetches stay coupled to it.
func (c *PlanSyncController) Navigator() *planner.WeekNavigator {
	return c.nav
}

// Reload fetches the plan for the currently displayed week.
func (c *PlanSyncController) Reload(ctx context.Context) error {
	return c.fetch(ctx, c.nav.WeekStart())
}

// ShowPrevWeek moves one week back and fetches that week's plan.
func (c *PlanSyncController) ShowPrevWeek(ctx context.Context) error {
	return c.fetch(ctx, c.nav.Prev())
}

// ShowNextWeek moves one week forward and fetches that week's plan.
func (c *PlanSyncController) ShowNextWeek(ctx context.Context) error {
	return c.fetch(ctx, c.nav.Next())
}

// ShowToday jumps back to the current week and fetches its plan.
func (c *PlanSyncController) ShowToday(ctx context.Context) error {
	return c.fetch(ctx, c.nav.Today())
}

// AssignRecipe puts a recipe into a slot of the displayed plan, then reloads
// so the grid reflects the server's state. The mutation error is both stored
// in the controller state and returned.
func (c *PlanSyncController) AssignRecipe(ctx context.Context, date time.Time, mealType, recipeID string) error {
	c.mu.Lock()
	plan := c.plan
	c.mu.Unlock()
	if plan == nil {
		return c.Reload(ctx)
	}

	if _, err := c.api.AssignEntry(ctx, plan.ID, date, mealType, recipeID); err != nil {
		c.setErr(err)
		return err
	}
	return c.Reload(ctx)
}

// RemoveEntry clears a slot of the displayed plan, then reloads.
func (c *PlanSyncController) RemoveEntry(ctx context.Context, entryID string) error {
	c.mu.Lock()
	plan := c.plan
	c.mu.Unlock()
	if plan == nil {
		return nil
	}

	if err := c.api.RemoveEntry(ctx, plan.ID, entryID); err != nil {
		c.setErr(err)
		return err
	}
	return c.Reload(ctx)
}

// fetch loads the plan for weekStart. The sequence number taken before the
// request decides afterwards whether the response is still wanted.
func (c *PlanSyncController) fetch(ctx context.Context, weekStart time.Time) error {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.loading = true
	c.err = nil
	c.mu.Unlock()

	plan, err := c.api.PlanForWeek(ctx, weekStart)

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		// A newer fetch was issued while this one was in flight; its
		// response owns the state now.
		return nil
	}
	c.loading = false
	if err != nil {
		c.err = err
		return err
	}
	c.plan = plan
	return nil
}

func (c *PlanSyncController) setErr(err error) {
	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
}
