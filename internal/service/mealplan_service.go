// internal/service/mealplan_service.go
package service

import (
	"context"
	"errors"
	"time"

	"plateful/mealplan-app/internal/calendar"
	"plateful/mealplan-app/internal/domain"
	"plateful/mealplan-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrPlanNotFound       = errors.New("meal plan not found")
	ErrPlanAccessDenied   = errors.New("access denied to this meal plan")
	ErrEntryNotFound      = errors.New("meal plan entry not found")
	ErrWeekNotMonday      = errors.New("week start must fall on a Monday")
	ErrDateOutsideWeek    = errors.New("entry date falls outside the plan's week")
	ErrInvalidMealType    = errors.New("meal type must be breakfast, lunch or dinner")
	ErrPlanRecipeNotOwned = errors.New("recipe not found or not owned by this user")
)

// PlanWithEntries bundles a plan and its flat entry set, which is what every
// caller of the week endpoints needs.
type PlanWithEntries struct {
	Plan    domain.MealPlan
	Entries []domain.MealPlanEntry
}

// --- Service Interface ---
type MealPlanService interface {
	// GetOrCreatePlanForWeek returns the user's plan for a Monday-aligned
	// week, creating an empty one on first access.
	GetOrCreatePlanForWeek(ctx context.Context, ownerID primitive.ObjectID, weekStart time.Time) (*PlanWithEntries, error)
	// GetCurrentPlan returns the plan for the week containing today.
	GetCurrentPlan(ctx context.Context, ownerID primitive.ObjectID) (*PlanWithEntries, error)
	// AssignEntry upserts the slot named by date+mealType with a snapshot of
	// the given recipe and returns the resulting entry.
	AssignEntry(ctx context.Context, ownerID, planID primitive.ObjectID, date time.Time, mealType domain.MealType, recipeID primitive.ObjectID) (*domain.MealPlanEntry, error)
	// RemoveEntry clears a slot.
	RemoveEntry(ctx context.Context, ownerID, planID, entryID primitive.ObjectID) error
}

// --- Service Implementation ---

type mealPlanService struct {
	planRepo   repository.MealPlanRepository
	recipeRepo repository.RecipeRepository
	now        func() time.Time // Injectable for tests
}

// NewMealPlanService creates a new instance of mealPlanService.
func NewMealPlanService(planRepo repository.MealPlanRepository, recipeRepo repository.RecipeRepository) MealPlanService {
	return &mealPlanService{
		planRepo:   planRepo,
		recipeRepo: recipeRepo,
		now:        time.Now,
	}
}

// GetOrCreatePlanForWeek fetches the plan for the given week, creating an
// empty plan when none exists yet. weekStart must already be Monday-aligned;
// the client always sends normalized dates, so a non-Monday here is a
// convention bug worth rejecting loudly rather than silently fixing.
func (s *mealPlanService) GetOrCreatePlanForWeek(ctx context.Context, ownerID primitive.ObjectID, weekStart time.Time) (*PlanWithEntries, error) {
	if ownerID == primitive.NilObjectID {
		return nil, errors.New("owner ID is required")
	}
	if !calendar.IsMonday(weekStart) {
		return nil, ErrWeekNotMonday
	}
	weekStart = calendar.UTCDate(weekStart)

	plan, err := s.planRepo.GetPlanByOwnerAndWeek(ctx, ownerID, weekStart)
	if errors.Is(err, repository.ErrNotFound) {
		newPlan := &domain.MealPlan{OwnerID: ownerID, WeekStart: weekStart}
		if _, createErr := s.planRepo.CreatePlan(ctx, newPlan); createErr != nil {
			// A concurrent request may have created the plan between the
			// lookup and the insert; re-read in that case.
			if !errors.Is(createErr, repository.ErrConflict) {
				return nil, createErr
			}
			plan, err = s.planRepo.GetPlanByOwnerAndWeek(ctx, ownerID, weekStart)
			if err != nil {
				return nil, err
			}
		} else {
			plan = newPlan
		}
	} else if err != nil {
		return nil, err
	}

	entries, err := s.planRepo.GetEntriesByPlanID(ctx, plan.ID)
	if err != nil {
		return nil, err
	}
	return &PlanWithEntries{Plan: *plan, Entries: entries}, nil
}

// GetCurrentPlan resolves today's week and delegates to the week lookup.
func (s *mealPlanService) GetCurrentPlan(ctx context.Context, ownerID primitive.ObjectID) (*PlanWithEntries, error) {
	return s.GetOrCreatePlanForWeek(ctx, ownerID, calendar.WeekStartFor(s.now()))
}

// AssignEntry upserts a slot assignment. The slot is derived from the entry
// date's position within the plan's week; the recipe is snapshotted at
// assign time and never updated afterwards.
func (s *mealPlanService) AssignEntry(ctx context.Context, ownerID, planID primitive.ObjectID, date time.Time, mealType domain.MealType, recipeID primitive.ObjectID) (*domain.MealPlanEntry, error) {
	if !domain.ValidMealType(mealType) {
		return nil, ErrInvalidMealType
	}

	plan, err := s.getOwnedPlan(ctx, ownerID, planID)
	if err != nil {
		return nil, err
	}

	dayIndex, err := dayIndexWithinPlan(plan, date)
	if err != nil {
		return nil, err
	}

	// Verify the recipe exists and belongs to this user before snapshotting.
	recipe, err := s.recipeRepo.GetByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanRecipeNotOwned
		}
		return nil, err
	}
	if recipe.OwnerID != ownerID {
		return nil, ErrPlanRecipeNotOwned
	}

	snapshot := recipe.Snapshot()
	entry := &domain.MealPlanEntry{
		PlanID:    planID,
		OwnerID:   ownerID,
		DayOfWeek: dayIndex,
		MealType:  mealType,
		Recipe:    &snapshot,
	}

	updated, err := s.planRepo.UpsertEntry(ctx, entry)
	if err != nil {
		return nil, err
	}
	_ = s.planRepo.TouchPlan(ctx, planID) // Best-effort bookkeeping

	return updated, nil
}

// RemoveEntry clears a slot. A missing entry maps to ErrEntryNotFound so
// the handler can answer 404.
func (s *mealPlanService) RemoveEntry(ctx context.Context, ownerID, planID, entryID primitive.ObjectID) error {
	if _, err := s.getOwnedPlan(ctx, ownerID, planID); err != nil {
		return err
	}

	err := s.planRepo.DeleteEntry(ctx, entryID, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrEntryNotFound
		}
		return err
	}
	_ = s.planRepo.TouchPlan(ctx, planID)
	return nil
}

// getOwnedPlan fetches a plan and verifies ownership.
func (s *mealPlanService) getOwnedPlan(ctx context.Context, ownerID, planID primitive.ObjectID) (*domain.MealPlan, error) {
	plan, err := s.planRepo.GetPlanByID(ctx, planID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}
	if plan.OwnerID != ownerID {
		return nil, ErrPlanAccessDenied
	}
	return plan, nil
}

// dayIndexWithinPlan converts an entry date to the backend day index (0-6,
// Monday=0), rejecting dates outside the plan's window.
func dayIndexWithinPlan(plan *domain.MealPlan, date time.Time) (int, error) {
	dates := calendar.WeekDates(plan.WeekStart)
	for i, d := range dates {
		if calendar.SameDate(d, date) {
			return i, nil
		}
	}
	return 0, ErrDateOutsideWeek
}
