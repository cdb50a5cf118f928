// internal/domain/chat.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ChatRole identifies the author of a chat message.
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage is one message in the per-recipe assistant conversation.
type ChatMessage struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RecipeID  primitive.ObjectID `bson:"recipeId" json:"recipeId"`
	OwnerID   primitive.ObjectID `bson:"ownerId" json:"ownerId"`
	Role      ChatRole           `bson:"role" json:"role"`
	Content   string             `bson:"content" json:"content"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// ProposalStatus tracks the confirm/reject lifecycle of a tool proposal.
// A proposal is resolved exactly once: pending -> applied | rejected.
type ProposalStatus string

const (
	ProposalPending  ProposalStatus = "pending"
	ProposalApplied  ProposalStatus = "applied"
	ProposalRejected ProposalStatus = "rejected"
)

// ProposalKind is the closed set of tool actions the assistant may propose.
type ProposalKind string

const (
	// ProposalUpdateRecipe carries partial recipe fields to apply
	// (servings, cookTimeMinutes, difficulty, description).
	ProposalUpdateRecipe ProposalKind = "update_recipe"
	// ProposalAssignToPlan assigns the chat's recipe to a meal plan slot.
	// Payload: date (YYYY-MM-DD) and mealType.
	ProposalAssignToPlan ProposalKind = "assign_to_plan"
)

// ChatProposal is a tool action proposed by the assistant, waiting for the
// user to confirm or reject it before anything is applied.
type ChatProposal struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RecipeID  primitive.ObjectID `bson:"recipeId" json:"recipeId"`
	OwnerID   primitive.ObjectID `bson:"ownerId" json:"ownerId"`
	Kind      ProposalKind       `bson:"kind" json:"kind"`
	Summary   string             `bson:"summary" json:"summary"` // Human-readable description shown in the confirm dialog
	Payload   map[string]any     `bson:"payload,omitempty" json:"payload,omitempty"`
	Status    ProposalStatus     `bson:"status" json:"status"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
