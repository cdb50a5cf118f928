package repository

import (
	"context"
	"time"

	"plateful/mealplan-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrConflict     = RepositoryError("conflict")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
}

// RecipeRepository defines the interface for interacting with recipe data.
type RecipeRepository interface {
	Create(ctx context.Context, recipe *domain.Recipe) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Recipe, error)
	GetByOwnerID(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Recipe, error)
	Update(ctx context.Context, recipe *domain.Recipe) error
	SetImageObjectKey(ctx context.Context, id primitive.ObjectID, objectKey string) error
	Delete(ctx context.Context, id, ownerID primitive.ObjectID) error // Ensure the owner owns the recipe
}

// LibraryRepository defines the interface for recipe library data.
type LibraryRepository interface {
	Create(ctx context.Context, library *domain.RecipeLibrary) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.RecipeLibrary, error)
	GetByOwnerID(ctx context.Context, ownerID primitive.ObjectID) ([]domain.RecipeLibrary, error)
	AddRecipe(ctx context.Context, libraryID, ownerID, recipeID primitive.ObjectID) error
	RemoveRecipe(ctx context.Context, libraryID, ownerID, recipeID primitive.ObjectID) error
	Delete(ctx context.Context, id, ownerID primitive.ObjectID) error
}

// MealPlanRepository defines the interface for meal plan and entry data.
// Entries live in their own collection keyed by planId; the unique compound
// index on (planId, dayOfWeek, mealType) enforces slot uniqueness.
type MealPlanRepository interface {
	CreatePlan(ctx context.Context, plan *domain.MealPlan) (primitive.ObjectID, error)
	GetPlanByID(ctx context.Context, id primitive.ObjectID) (*domain.MealPlan, error)
	GetPlanByOwnerAndWeek(ctx context.Context, ownerID primitive.ObjectID, weekStart time.Time) (*domain.MealPlan, error)
	GetEntriesByPlanID(ctx context.Context, planID primitive.ObjectID) ([]domain.MealPlanEntry, error)
	// UpsertEntry inserts or replaces the entry occupying the given slot and
	// returns the resulting entry.
	UpsertEntry(ctx context.Context, entry *domain.MealPlanEntry) (*domain.MealPlanEntry, error)
	GetEntryByID(ctx context.Context, id primitive.ObjectID) (*domain.MealPlanEntry, error)
	DeleteEntry(ctx context.Context, entryID, planID primitive.ObjectID) error
	TouchPlan(ctx context.Context, planID primitive.ObjectID) error
}

// ShoppingListRepository defines the interface for shopping list data.
type ShoppingListRepository interface {
	Create(ctx context.Context, list *domain.ShoppingList) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ShoppingList, error)
	GetByOwnerID(ctx context.Context, ownerID primitive.ObjectID) ([]domain.ShoppingList, error)
	GetByPlanID(ctx context.Context, planID primitive.ObjectID) (*domain.ShoppingList, error)
	ReplaceItems(ctx context.Context, listID, ownerID primitive.ObjectID, name string, items []domain.ShoppingListItem) error
	SetItemChecked(ctx context.Context, listID, ownerID, itemID primitive.ObjectID, checked bool) error
	Delete(ctx context.Context, id, ownerID primitive.ObjectID) error
}

// UploadRepository defines the interface for recipe image upload metadata.
type UploadRepository interface {
	Create(ctx context.Context, upload *domain.Upload) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Upload, error)
	GetByRecipeID(ctx context.Context, recipeID primitive.ObjectID) (*domain.Upload, error)
}

// ChatRepository defines the interface for chat messages and tool proposals.
type ChatRepository interface {
	InsertMessage(ctx context.Context, msg *domain.ChatMessage) (primitive.ObjectID, error)
	GetMessagesByRecipe(ctx context.Context, recipeID, ownerID primitive.ObjectID, limit int) ([]domain.ChatMessage, error)
	CreateProposal(ctx context.Context, proposal *domain.ChatProposal) (primitive.ObjectID, error)
	GetProposalByID(ctx context.Context, id primitive.ObjectID) (*domain.ChatProposal, error)
	// ResolveProposal transitions a pending proposal to applied/rejected.
	// Returns ErrConflict when the proposal was already resolved.
	ResolveProposal(ctx context.Context, id primitive.ObjectID, status domain.ProposalStatus) error
	// ReopenProposal returns an applied proposal to pending after its action
	// failed to apply. Returns ErrConflict when the proposal is not applied.
	ReopenProposal(ctx context.Context, id primitive.ObjectID) error
}
