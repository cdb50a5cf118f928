// internal/domain/recipe.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Difficulty levels for recipes.
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// Ingredient is a single line of a recipe's ingredient list.
type Ingredient struct {
	Name     string  `bson:"name" json:"name"`
	Quantity float64 `bson:"quantity,omitempty" json:"quantity,omitempty"`
	Unit     string  `bson:"unit,omitempty" json:"unit,omitempty"` // e.g. "g", "ml", "cups"
}

// Recipe represents a single recipe owned by a user.
type Recipe struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID     primitive.ObjectID `bson:"ownerId" json:"ownerId"` // Link to the User who created this recipe
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`

	Ingredients     []Ingredient `bson:"ingredients,omitempty" json:"ingredients,omitempty"`
	Instructions    []string     `bson:"instructions,omitempty" json:"instructions,omitempty"`
	CookTimeMinutes int          `bson:"cookTimeMinutes,omitempty" json:"cookTimeMinutes,omitempty"`
	Servings        int          `bson:"servings,omitempty" json:"servings,omitempty"`
	Difficulty      string       `bson:"difficulty,omitempty" json:"difficulty,omitempty"` // easy / medium / hard
	Cuisine         string       `bson:"cuisine,omitempty" json:"cuisine,omitempty"`
	Tags            []string     `bson:"tags,omitempty" json:"tags,omitempty"`
	ImageObjectKey  string       `bson:"imageObjectKey,omitempty" json:"-"` // S3 key of the recipe photo - internal use

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// RecipeSnapshot is the denormalized subset of a recipe that gets embedded
// into meal plan entries at assign time. It is never updated when the source
// recipe changes; the entry keeps what was assigned.
type RecipeSnapshot struct {
	RecipeID        primitive.ObjectID `bson:"recipeId" json:"recipeId"`
	Title           string             `bson:"title" json:"title"`
	CookTimeMinutes int                `bson:"cookTimeMinutes,omitempty" json:"cookTimeMinutes,omitempty"`
	Servings        int                `bson:"servings,omitempty" json:"servings,omitempty"`
	Difficulty      string             `bson:"difficulty,omitempty" json:"difficulty,omitempty"`
}

// Snapshot builds the embeddable snapshot for meal plan entries.
func (r *Recipe) Snapshot() RecipeSnapshot {
	return RecipeSnapshot{
		RecipeID:        r.ID,
		Title:           r.Title,
		CookTimeMinutes: r.CookTimeMinutes,
		Servings:        r.Servings,
		Difficulty:      r.Difficulty,
	}
}
