// internal/domain/meal_plan.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MealType is the closed set of meal slots within a day.
type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
)

// ValidMealType reports whether t is one of the three fixed meal types.
func ValidMealType(t MealType) bool {
	return t == MealBreakfast || t == MealLunch || t == MealDinner
}

// MealPlanEntry assigns a recipe to one (day, meal type) slot of a plan.
// DayOfWeek uses the backend convention: 0=Monday .. 6=Sunday.
type MealPlanEntry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PlanID    primitive.ObjectID `bson:"planId" json:"planId"`
	OwnerID   primitive.ObjectID `bson:"ownerId" json:"ownerId"` // Denormalized for easier query/auth
	DayOfWeek int                `bson:"dayOfWeek" json:"dayOfWeek"`
	MealType  MealType           `bson:"mealType" json:"mealType"`
	Recipe    *RecipeSnapshot    `bson:"recipe,omitempty" json:"recipe,omitempty"` // nil means the slot is unfilled
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// MealPlan is one user's plan for a single week. WeekStart always falls on
// a Monday (local calendar date at midnight UTC); plans are unique per
// (owner, weekStart). At most one entry may occupy a (dayOfWeek, mealType)
// slot - the unique index on entries enforces it.
type MealPlan struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID   primitive.ObjectID `bson:"ownerId" json:"ownerId"`
	WeekStart time.Time          `bson:"weekStart" json:"weekStart"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
