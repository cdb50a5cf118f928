package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RecipeLibrary is a named collection of recipes curated by a user,
// e.g. "Weeknight dinners" or "Holiday baking".
type RecipeLibrary struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	OwnerID     primitive.ObjectID   `bson:"ownerId" json:"ownerId"`
	Name        string               `bson:"name" json:"name"`
	Description string               `bson:"description,omitempty" json:"description,omitempty"`
	RecipeIDs   []primitive.ObjectID `bson:"recipeIds,omitempty" json:"recipeIds,omitempty"`
	CreatedAt   time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updatedAt" json:"updatedAt"`
}
