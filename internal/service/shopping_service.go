// internal/service/shopping_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"plateful/mealplan-app/internal/calendar"
	"plateful/mealplan-app/internal/domain"
	"plateful/mealplan-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrShoppingListNotFound = errors.New("shopping list not found")
	ErrShoppingListExists   = errors.New("a shopping list already generated for this plan")
	ErrShoppingItemNotFound = errors.New("shopping list item not found")
	ErrEmptyPlan            = errors.New("meal plan has no recipes to shop for")
)

// ListExistsError carries the ID of the list already generated for a plan,
// so callers can point the user at it. errors.Is against
// ErrShoppingListExists keeps working through the Is method.
type ListExistsError struct {
	ListID primitive.ObjectID
}

func (e *ListExistsError) Error() string {
	return ErrShoppingListExists.Error()
}

func (e *ListExistsError) Is(target error) bool {
	return target == ErrShoppingListExists
}

// ConflictPolicy controls what GenerateFromPlan does when a list already
// exists for the plan.
type ConflictPolicy string

const (
	ConflictFail    ConflictPolicy = "fail"    // Default: report the existing list
	ConflictReplace ConflictPolicy = "replace" // Overwrite the existing list's items
	ConflictNew     ConflictPolicy = "new"     // Create an unlinked copy
)

// --- Service Interface ---
type ShoppingListService interface {
	// GenerateFromPlan aggregates the ingredients of every recipe assigned
	// to the plan into a shopping list.
	GenerateFromPlan(ctx context.Context, ownerID, planID primitive.ObjectID, policy ConflictPolicy) (*domain.ShoppingList, error)
	GetList(ctx context.Context, ownerID, listID primitive.ObjectID) (*domain.ShoppingList, error)
	GetMyLists(ctx context.Context, ownerID primitive.ObjectID) ([]domain.ShoppingList, error)
	SetItemChecked(ctx context.Context, ownerID, listID, itemID primitive.ObjectID, checked bool) (*domain.ShoppingList, error)
	DeleteList(ctx context.Context, ownerID, listID primitive.ObjectID) error
}

// --- Service Implementation ---

type shoppingListService struct {
	listRepo   repository.ShoppingListRepository
	planRepo   repository.MealPlanRepository
	recipeRepo repository.RecipeRepository
}

// NewShoppingListService creates a new instance of shoppingListService.
func NewShoppingListService(listRepo repository.ShoppingListRepository, planRepo repository.MealPlanRepository, recipeRepo repository.RecipeRepository) ShoppingListService {
	return &shoppingListService{
		listRepo:   listRepo,
		planRepo:   planRepo,
		recipeRepo: recipeRepo,
	}
}

func (s *shoppingListService) GenerateFromPlan(ctx context.Context, ownerID, planID primitive.ObjectID, policy ConflictPolicy) (*domain.ShoppingList, error) {
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

	existing, err := s.listRepo.GetByPlanID(ctx, planID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if existing != nil && policy == ConflictFail {
		return nil, &ListExistsError{ListID: existing.ID}
	}

	items, err := s.aggregatePlanItems(ctx, ownerID, planID)
	if err != nil {
		return nil, err
	}

	name := fmt.Sprintf("Week of %s", plan.WeekStart.Format(calendar.ISODate))

	if existing != nil && policy == ConflictReplace {
		if err := s.listRepo.ReplaceItems(ctx, existing.ID, ownerID, name, items); err != nil {
			return nil, err
		}
		return s.listRepo.GetByID(ctx, existing.ID)
	}

	list := &domain.ShoppingList{
		OwnerID: ownerID,
		Name:    name,
		Items:   items,
	}
	if existing == nil {
		// Link the list to the plan so regeneration finds it again. With
		// ConflictNew the copy stays unlinked on purpose.
		list.PlanID = &planID
	}

	createdID, err := s.listRepo.Create(ctx, list)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			// A concurrent generation linked a list to the plan first.
			if raced, getErr := s.listRepo.GetByPlanID(ctx, planID); getErr == nil {
				return nil, &ListExistsError{ListID: raced.ID}
			}
			return nil, ErrShoppingListExists
		}
		return nil, err
	}
	return s.listRepo.GetByID(ctx, createdID)
}

// aggregatePlanItems walks every entry's recipe and merges ingredients that
// share a name and unit, summing quantities. A recipe assigned to several
// slots contributes its ingredients once per slot, since each meal is cooked
// separately. Entries carry only a snapshot, so the full recipe is re-read
// for its ingredient list; recipes deleted since assignment are skipped.
func (s *shoppingListService) aggregatePlanItems(ctx context.Context, ownerID, planID primitive.ObjectID) ([]domain.ShoppingListItem, error) {
	entries, err := s.planRepo.GetEntriesByPlanID(ctx, planID)
	if err != nil {
		return nil, err
	}

	type bucket struct {
		name     string
		unit     string
		quantity float64
	}
	// nil marks a recipe already found missing or foreign.
	recipes := make(map[primitive.ObjectID]*domain.Recipe)
	buckets := make(map[string]*bucket)
	var order []string

	for _, entry := range entries {
		if entry.Recipe == nil {
			continue
		}

		recipe, fetched := recipes[entry.Recipe.RecipeID]
		if !fetched {
			loaded, err := s.recipeRepo.GetByID(ctx, entry.Recipe.RecipeID)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return nil, err
			}
			if loaded != nil && loaded.OwnerID == ownerID {
				recipe = loaded
			}
			recipes[entry.Recipe.RecipeID] = recipe
		}
		if recipe == nil {
			continue
		}

		for _, ing := range recipe.Ingredients {
			key := strings.ToLower(strings.TrimSpace(ing.Name)) + "|" + strings.ToLower(ing.Unit)
			if b, ok := buckets[key]; ok {
				b.quantity += ing.Quantity
				continue
			}
			buckets[key] = &bucket{name: ing.Name, unit: ing.Unit, quantity: ing.Quantity}
			order = append(order, key)
		}
	}

	if len(buckets) == 0 {
		return nil, ErrEmptyPlan
	}

	sort.Strings(order)
	items := make([]domain.ShoppingListItem, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		items = append(items, domain.ShoppingListItem{
			Name:     b.name,
			Quantity: b.quantity,
			Unit:     b.unit,
		})
	}
	return items, nil
}

func (s *shoppingListService) GetList(ctx context.Context, ownerID, listID primitive.ObjectID) (*domain.ShoppingList, error) {
	return s.getOwnedList(ctx, ownerID, listID)
}

func (s *shoppingListService) GetMyLists(ctx context.Context, ownerID primitive.ObjectID) ([]domain.ShoppingList, error) {
	return s.listRepo.GetByOwnerID(ctx, ownerID)
}

func (s *shoppingListService) SetItemChecked(ctx context.Context, ownerID, listID, itemID primitive.ObjectID, checked bool) (*domain.ShoppingList, error) {
	if _, err := s.getOwnedList(ctx, ownerID, listID); err != nil {
		return nil, err
	}

	err := s.listRepo.SetItemChecked(ctx, listID, ownerID, itemID, checked)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrShoppingItemNotFound
		}
		return nil, err
	}
	return s.listRepo.GetByID(ctx, listID)
}

func (s *shoppingListService) DeleteList(ctx context.Context, ownerID, listID primitive.ObjectID) error {
	if _, err := s.getOwnedList(ctx, ownerID, listID); err != nil {
		return err
	}
	return s.listRepo.Delete(ctx, listID, ownerID)
}

func (s *shoppingListService) getOwnedList(ctx context.Context, ownerID, listID primitive.ObjectID) (*domain.ShoppingList, error) {
	list, err := s.listRepo.GetByID(ctx, listID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrShoppingListNotFound
		}
		return nil, err
	}
	if list.OwnerID != ownerID {
		return nil, ErrShoppingListNotFound
	}
	return list, nil
}
