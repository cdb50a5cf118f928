package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ShoppingListItem is a single line on a shopping list. Items generated from
// a meal plan aggregate the same ingredient across all planned recipes.
type ShoppingListItem struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name"`
	Quantity  float64            `bson:"quantity,omitempty" json:"quantity,omitempty"`
	Unit      string             `bson:"unit,omitempty" json:"unit,omitempty"`
	Checked   bool               `bson:"checked" json:"checked"`
	CheckedAt *time.Time         `bson:"checkedAt,omitempty" json:"checkedAt,omitempty"`
}

// ShoppingList is a user's shopping list, either created manually or
// generated from a meal plan. PlanID is set only for generated lists and at
// most one list exists per source plan (the generate flow asks replace-vs-new
// on conflict; a "new" resolution clears PlanID on the fresh copy).
type ShoppingList struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	OwnerID   primitive.ObjectID  `bson:"ownerId" json:"ownerId"`
	Name      string              `bson:"name" json:"name"`
	PlanID    *primitive.ObjectID `bson:"planId,omitempty" json:"planId,omitempty"` // Source meal plan, if generated
	Items     []ShoppingListItem  `bson:"items,omitempty" json:"items,omitempty"`
	CreatedAt time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time           `bson:"updatedAt" json:"updatedAt"`
}
