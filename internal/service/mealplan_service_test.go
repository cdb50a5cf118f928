package service

import (
	"context"
	"testing"
	"time"

	"plateful/mealplan-app/internal/domain"
	"plateful/mealplan-app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- In-memory fakes ---

type fakePlanRepo struct {
	plans   map[primitive.ObjectID]*domain.MealPlan
	entries map[primitive.ObjectID]*domain.MealPlanEntry
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{
		plans:   make(map[primitive.ObjectID]*domain.MealPlan),
		entries: make(map[primitive.ObjectID]*domain.MealPlanEntry),
	}
}

func (f *fakePlanRepo) CreatePlan(_ context.Context, plan *domain.MealPlan) (primitive.ObjectID, error) {
	for _, p := range f.plans {
		if p.OwnerID == plan.OwnerID && p.WeekStart.Equal(plan.WeekStart) {
			return primitive.NilObjectID, repository.ErrConflict
		}
	}
	plan.ID = primitive.NewObjectID()
	plan.CreatedAt = time.Now()
	plan.UpdatedAt = plan.CreatedAt
	f.plans[plan.ID] = plan
	return plan.ID, nil
}

func (f *fakePlanRepo) GetPlanByID(_ context.Context, id primitive.ObjectID) (*domain.MealPlan, error) {
	plan, ok := f.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return plan, nil
}

func (f *fakePlanRepo) GetPlanByOwnerAndWeek(_ context.Context, ownerID primitive.ObjectID, weekStart time.Time) (*domain.MealPlan, error) {
	for _, p := range f.plans {
		if p.OwnerID == ownerID && p.WeekStart.Equal(weekStart) {
			return p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakePlanRepo) GetEntriesByPlanID(_ context.Context, planID primitive.ObjectID) ([]domain.MealPlanEntry, error) {
	var out []domain.MealPlanEntry
	for _, e := range f.entries {
		if e.PlanID == planID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakePlanRepo) UpsertEntry(_ context.Context, entry *domain.MealPlanEntry) (*domain.MealPlanEntry, error) {
	for _, e := range f.entries {
		if e.PlanID == entry.PlanID && e.DayOfWeek == entry.DayOfWeek && e.MealType == entry.MealType {
			e.Recipe = entry.Recipe
			e.UpdatedAt = time.Now()
			copied := *e
			return &copied, nil
		}
	}
	entry.ID = primitive.NewObjectID()
	entry.CreatedAt = time.Now()
	entry.UpdatedAt = entry.CreatedAt
	f.entries[entry.ID] = entry
	copied := *entry
	return &copied, nil
}

func (f *fakePlanRepo) GetEntryByID(_ context.Context, id primitive.ObjectID) (*domain.MealPlanEntry, error) {
	entry, ok := f.entries[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return entry, nil
}

func (f *fakePlanRepo) DeleteEntry(_ context.Context, entryID, planID primitive.ObjectID) error {
	entry, ok := f.entries[entryID]
	if !ok || entry.PlanID != planID {
		return repository.ErrNotFound
	}
	delete(f.entries, entryID)
	return nil
}

func (f *fakePlanRepo) TouchPlan(_ context.Context, planID primitive.ObjectID) error {
	if plan, ok := f.plans[planID]; ok {
		plan.UpdatedAt = time.Now()
	}
	return nil
}

type fakeRecipeRepo struct {
	recipes map[primitive.ObjectID]*domain.Recipe
}

func newFakeRecipeRepo() *fakeRecipeRepo {
	return &fakeRecipeRepo{recipes: make(map[primitive.ObjectID]*domain.Recipe)}
}

func (f *fakeRecipeRepo) Create(_ context.Context, recipe *domain.Recipe) (primitive.ObjectID, error) {
	recipe.ID = primitive.NewObjectID()
	f.recipes[recipe.ID] = recipe
	return recipe.ID, nil
}

func (f *fakeRecipeRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Recipe, error) {
	recipe, ok := f.recipes[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return recipe, nil
}

func (f *fakeRecipeRepo) GetByOwnerID(_ context.Context, ownerID primitive.ObjectID) ([]domain.Recipe, error) {
	var out []domain.Recipe
	for _, r := range f.recipes {
		if r.OwnerID == ownerID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRecipeRepo) Update(_ context.Context, recipe *domain.Recipe) error {
	if _, ok := f.recipes[recipe.ID]; !ok {
		return repository.ErrNotFound
	}
	f.recipes[recipe.ID] = recipe
	return nil
}

func (f *fakeRecipeRepo) SetImageObjectKey(_ context.Context, id primitive.ObjectID, objectKey string) error {
	recipe, ok := f.recipes[id]
	if !ok {
		return repository.ErrNotFound
	}
	recipe.ImageObjectKey = objectKey
	return nil
}

func (f *fakeRecipeRepo) Delete(_ context.Context, id, ownerID primitive.ObjectID) error {
	recipe, ok := f.recipes[id]
	if !ok || recipe.OwnerID != ownerID {
		return repository.ErrNotFound
	}
	delete(f.recipes, id)
	return nil
}

// --- Helpers ---

func seedRecipe(repo *fakeRecipeRepo, ownerID primitive.ObjectID, title string) *domain.Recipe {
	recipe := &domain.Recipe{
		OwnerID:         ownerID,
		Title:           title,
		CookTimeMinutes: 30,
		Servings:        4,
		Difficulty:      "easy",
		Ingredients: []domain.Ingredient{
			{Name: "Pasta", Quantity: 500, Unit: "g"},
		},
	}
	_, _ = repo.Create(context.Background(), recipe)
	return recipe
}

var testMonday = time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)

// --- Tests ---

func TestGetOrCreatePlanForWeekCreatesOnFirstAccess(t *testing.T) {
	planRepo := newFakePlanRepo()
	svc := NewMealPlanService(planRepo, newFakeRecipeRepo())
	ownerID := primitive.NewObjectID()

	result, err := svc.GetOrCreatePlanForWeek(context.Background(), ownerID, testMonday)
	require.NoError(t, err)
	assert.Equal(t, testMonday, result.Plan.WeekStart)
	assert.Empty(t, result.Entries)

	// Second access returns the same plan rather than creating another.
	again, err := svc.GetOrCreatePlanForWeek(context.Background(), ownerID, testMonday)
	require.NoError(t, err)
	assert.Equal(t, result.Plan.ID, again.Plan.ID)
	assert.Len(t, planRepo.plans, 1)
}

func TestGetCurrentPlanMatchesExplicitWeekAcrossZones(t *testing.T) {
	planRepo := newFakePlanRepo()
	svc := NewMealPlanService(planRepo, newFakeRecipeRepo()).(*mealPlanService)
	// Server clock two hours east of UTC, mid-week.
	svc.now = func() time.Time {
		return time.Date(2026, 2, 4, 9, 0, 0, 0, time.FixedZone("UTC+2", 2*60*60))
	}
	ownerID := primitive.NewObjectID()

	current, err := svc.GetCurrentPlan(context.Background(), ownerID)
	require.NoError(t, err)
	assert.True(t, current.Plan.WeekStart.Equal(testMonday))

	// Requesting the same week by its explicit UTC Monday must hit the plan
	// the current-week lookup created, not key a second copy of the week.
	explicit, err := svc.GetOrCreatePlanForWeek(context.Background(), ownerID, testMonday)
	require.NoError(t, err)
	assert.Equal(t, current.Plan.ID, explicit.Plan.ID)
	assert.Len(t, planRepo.plans, 1)
}

func TestGetOrCreatePlanForWeekRejectsNonMonday(t *testing.T) {
	svc := NewMealPlanService(newFakePlanRepo(), newFakeRecipeRepo())

	wednesday := testMonday.AddDate(0, 0, 2)
	_, err := svc.GetOrCreatePlanForWeek(context.Background(), primitive.NewObjectID(), wednesday)
	assert.ErrorIs(t, err, ErrWeekNotMonday)
}

func TestAssignEntrySnapshotsRecipe(t *testing.T) {
	planRepo := newFakePlanRepo()
	recipeRepo := newFakeRecipeRepo()
	svc := NewMealPlanService(planRepo, recipeRepo)
	ownerID := primitive.NewObjectID()
	recipe := seedRecipe(recipeRepo, ownerID, "Carbonara")

	result, err := svc.GetOrCreatePlanForWeek(context.Background(), ownerID, testMonday)
	require.NoError(t, err)

	wednesday := testMonday.AddDate(0, 0, 2)
	entry, err := svc.AssignEntry(context.Background(), ownerID, result.Plan.ID, wednesday, domain.MealDinner, recipe.ID)
	require.NoError(t, err)

	assert.Equal(t, 2, entry.DayOfWeek)
	assert.Equal(t, domain.MealDinner, entry.MealType)
	require.NotNil(t, entry.Recipe)
	assert.Equal(t, "Carbonara", entry.Recipe.Title)
	assert.Equal(t, 30, entry.Recipe.CookTimeMinutes)

	// Later recipe edits must not change the stored snapshot.
	recipe.Title = "Renamed"
	fetched, err := svc.GetOrCreatePlanForWeek(context.Background(), ownerID, testMonday)
	require.NoError(t, err)
	require.Len(t, fetched.Entries, 1)
	assert.Equal(t, "Carbonara", fetched.Entries[0].Recipe.Title)
}

func TestAssignEntryReplacesOccupiedSlot(t *testing.T) {
	planRepo := newFakePlanRepo()
	recipeRepo := newFakeRecipeRepo()
	svc := NewMealPlanService(planRepo, recipeRepo)
	ownerID := primitive.NewObjectID()
	first := seedRecipe(recipeRepo, ownerID, "Carbonara")
	second := seedRecipe(recipeRepo, ownerID, "Stir Fry")

	result, err := svc.GetOrCreatePlanForWeek(context.Background(), ownerID, testMonday)
	require.NoError(t, err)

	entry1, err := svc.AssignEntry(context.Background(), ownerID, result.Plan.ID, testMonday, domain.MealLunch, first.ID)
	require.NoError(t, err)
	entry2, err := svc.AssignEntry(context.Background(), ownerID, result.Plan.ID, testMonday, domain.MealLunch, second.ID)
	require.NoError(t, err)

	// Same slot, same entry, replaced recipe.
	assert.Equal(t, entry1.ID, entry2.ID)
	assert.Equal(t, "Stir Fry", entry2.Recipe.Title)

	fetched, err := svc.GetOrCreatePlanForWeek(context.Background(), ownerID, testMonday)
	require.NoError(t, err)
	assert.Len(t, fetched.Entries, 1)
}

func TestAssignEntryRejectsDateOutsideWeek(t *testing.T) {
	planRepo := newFakePlanRepo()
	recipeRepo := newFakeRecipeRepo()
	svc := NewMealPlanService(planRepo, recipeRepo)
	ownerID := primitive.NewObjectID()
	recipe := seedRecipe(recipeRepo, ownerID, "Carbonara")

	result, err := svc.GetOrCreatePlanForWeek(context.Background(), ownerID, testMonday)
	require.NoError(t, err)

	nextMonday := testMonday.AddDate(0, 0, 7)
	_, err = svc.AssignEntry(context.Background(), ownerID, result.Plan.ID, nextMonday, domain.MealDinner, recipe.ID)
	assert.ErrorIs(t, err, ErrDateOutsideWeek)
}

func TestAssignEntryRejectsForeignRecipe(t *testing.T) {
	planRepo := newFakePlanRepo()
	recipeRepo := newFakeRecipeRepo()
	svc := NewMealPlanService(planRepo, recipeRepo)
	ownerID := primitive.NewObjectID()
	stranger := primitive.NewObjectID()
	theirRecipe := seedRecipe(recipeRepo, stranger, "Not Yours")

	result, err := svc.GetOrCreatePlanForWeek(context.Background(), ownerID, testMonday)
	require.NoError(t, err)

	_, err = svc.AssignEntry(context.Background(), ownerID, result.Plan.ID, testMonday, domain.MealDinner, theirRecipe.ID)
	assert.ErrorIs(t, err, ErrPlanRecipeNotOwned)
}

func TestAssignEntryRejectsForeignPlan(t *testing.T) {
	planRepo := newFakePlanRepo()
	recipeRepo := newFakeRecipeRepo()
	svc := NewMealPlanService(planRepo, recipeRepo)
	ownerID := primitive.NewObjectID()
	stranger := primitive.NewObjectID()
	recipe := seedRecipe(recipeRepo, stranger, "Theirs")

	theirPlan, err := svc.GetOrCreatePlanForWeek(context.Background(), stranger, testMonday)
	require.NoError(t, err)

	_, err = svc.AssignEntry(context.Background(), ownerID, theirPlan.Plan.ID, testMonday, domain.MealDinner, recipe.ID)
	assert.ErrorIs(t, err, ErrPlanAccessDenied)
}

func TestRemoveEntry(t *testing.T) {
	planRepo := newFakePlanRepo()
	recipeRepo := newFakeRecipeRepo()
	svc := NewMealPlanService(planRepo, recipeRepo)
	ownerID := primitive.NewObjectID()
	recipe := seedRecipe(recipeRepo, ownerID, "Carbonara")

	result, err := svc.GetOrCreatePlanForWeek(context.Background(), ownerID, testMonday)
	require.NoError(t, err)
	entry, err := svc.AssignEntry(context.Background(), ownerID, result.Plan.ID, testMonday, domain.MealBreakfast, recipe.ID)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveEntry(context.Background(), ownerID, result.Plan.ID, entry.ID))

	fetched, err := svc.GetOrCreatePlanForWeek(context.Background(), ownerID, testMonday)
	require.NoError(t, err)
	assert.Empty(t, fetched.Entries)

	// Removing again reports not found.
	err = svc.RemoveEntry(context.Background(), ownerID, result.Plan.ID, entry.ID)
	assert.ErrorIs(t, err, ErrEntryNotFound)
}
