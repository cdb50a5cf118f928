// internal/service/chat_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"plateful/mealplan-app/internal/calendar"
	"plateful/mealplan-app/internal/domain"
	"plateful/mealplan-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrProposalNotFound = errors.New("proposal not found")
	ErrProposalResolved = errors.New("proposal already confirmed or rejected")
	ErrBadProposal      = errors.New("proposal payload is malformed")
	ErrEmptyMessage     = errors.New("message content is required")
)

const chatHistoryLimit = 50

// ProposedAction is an assistant reply's pending tool action.
type ProposedAction struct {
	Kind    domain.ProposalKind
	Summary string
	Payload map[string]any
}

// Reply is what a Responder produces for one user message.
type Reply struct {
	Content   string
	Proposals []ProposedAction
}

// Responder turns a user message about a recipe into an assistant reply,
// optionally with tool proposals. Implementations must not mutate the recipe;
// mutations only happen when the user confirms a proposal.
type Responder interface {
	Respond(ctx context.Context, recipe *domain.Recipe, history []domain.ChatMessage, message string) (*Reply, error)
}

// ChatResult bundles the stored messages and proposals created by one send.
type ChatResult struct {
	UserMessage      domain.ChatMessage
	AssistantMessage domain.ChatMessage
	Proposals        []domain.ChatProposal
}

// --- Service Interface ---
type ChatService interface {
	// SendMessage stores the user message, asks the responder for a reply
	// and persists the reply plus any proposals it carries.
	SendMessage(ctx context.Context, ownerID, recipeID primitive.ObjectID, content string) (*ChatResult, error)
	// ListMessages returns the conversation for a recipe, oldest first.
	ListMessages(ctx context.Context, ownerID, recipeID primitive.ObjectID) ([]domain.ChatMessage, error)
	// ConfirmProposal applies a pending proposal's action and marks it applied.
	ConfirmProposal(ctx context.Context, ownerID, proposalID primitive.ObjectID) (*domain.ChatProposal, error)
	// RejectProposal marks a pending proposal rejected without applying it.
	RejectProposal(ctx context.Context, ownerID, proposalID primitive.ObjectID) (*domain.ChatProposal, error)
}

// --- Service Implementation ---

type chatService struct {
	chatRepo   repository.ChatRepository
	recipeRepo repository.RecipeRepository
	planSvc    MealPlanService
	responder  Responder
}

// NewChatService creates a new instance of chatService.
func NewChatService(chatRepo repository.ChatRepository, recipeRepo repository.RecipeRepository, planSvc MealPlanService, responder Responder) ChatService {
	if responder == nil {
		responder = NewRuleResponder()
	}
	return &chatService{
		chatRepo:   chatRepo,
		recipeRepo: recipeRepo,
		planSvc:    planSvc,
		responder:  responder,
	}
}

func (s *chatService) SendMessage(ctx context.Context, ownerID, recipeID primitive.ObjectID, content string) (*ChatResult, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyMessage
	}

	recipe, err := s.getOwnedRecipe(ctx, ownerID, recipeID)
	if err != nil {
		return nil, err
	}

	history, err := s.chatRepo.GetMessagesByRecipe(ctx, recipeID, ownerID, chatHistoryLimit)
	if err != nil {
		return nil, err
	}

	userMsg := domain.ChatMessage{
		RecipeID: recipeID,
		OwnerID:  ownerID,
		Role:     domain.ChatRoleUser,
		Content:  content,
	}
	userMsgID, err := s.chatRepo.InsertMessage(ctx, &userMsg)
	if err != nil {
		return nil, err
	}
	userMsg.ID = userMsgID

	reply, err := s.responder.Respond(ctx, recipe, history, content)
	if err != nil {
		return nil, fmt.Errorf("responder failed: %w", err)
	}

	assistantMsg := domain.ChatMessage{
		RecipeID: recipeID,
		OwnerID:  ownerID,
		Role:     domain.ChatRoleAssistant,
		Content:  reply.Content,
	}
	assistantMsgID, err := s.chatRepo.InsertMessage(ctx, &assistantMsg)
	if err != nil {
		return nil, err
	}
	assistantMsg.ID = assistantMsgID

	proposals := make([]domain.ChatProposal, 0, len(reply.Proposals))
	for _, action := range reply.Proposals {
		proposal := domain.ChatProposal{
			RecipeID: recipeID,
			OwnerID:  ownerID,
			Kind:     action.Kind,
			Summary:  action.Summary,
			Payload:  action.Payload,
		}
		proposalID, err := s.chatRepo.CreateProposal(ctx, &proposal)
		if err != nil {
			return nil, err
		}
		proposal.ID = proposalID
		proposal.Status = domain.ProposalPending
		proposals = append(proposals, proposal)
	}

	return &ChatResult{
		UserMessage:      userMsg,
		AssistantMessage: assistantMsg,
		Proposals:        proposals,
	}, nil
}

func (s *chatService) ListMessages(ctx context.Context, ownerID, recipeID primitive.ObjectID) ([]domain.ChatMessage, error) {
	if _, err := s.getOwnedRecipe(ctx, ownerID, recipeID); err != nil {
		return nil, err
	}
	return s.chatRepo.GetMessagesByRecipe(ctx, recipeID, ownerID, chatHistoryLimit)
}

func (s *chatService) ConfirmProposal(ctx context.Context, ownerID, proposalID primitive.ObjectID) (*domain.ChatProposal, error) {
	proposal, err := s.getOwnedPendingProposal(ctx, ownerID, proposalID)
	if err != nil {
		return nil, err
	}

	// Claim the proposal before touching the recipe or plan. The pending ->
	// applied transition is single-shot, so of two overlapping confirms only
	// one reaches the apply step; the loser sees ErrProposalResolved.
	if err := s.chatRepo.ResolveProposal(ctx, proposalID, domain.ProposalApplied); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrProposalResolved
		}
		return nil, err
	}

	switch proposal.Kind {
	case domain.ProposalUpdateRecipe:
		err = s.applyRecipeUpdate(ctx, ownerID, proposal)
	case domain.ProposalAssignToPlan:
		err = s.applyPlanAssignment(ctx, ownerID, proposal)
	default:
		err = ErrBadProposal
	}
	if err != nil {
		if reopenErr := s.chatRepo.ReopenProposal(ctx, proposalID); reopenErr != nil {
			return nil, fmt.Errorf("apply failed (%w) and proposal could not be reopened: %v", err, reopenErr)
		}
		return nil, err
	}

	proposal.Status = domain.ProposalApplied
	return proposal, nil
}

func (s *chatService) RejectProposal(ctx context.Context, ownerID, proposalID primitive.ObjectID) (*domain.ChatProposal, error) {
	proposal, err := s.getOwnedPendingProposal(ctx, ownerID, proposalID)
	if err != nil {
		return nil, err
	}

	if err := s.chatRepo.ResolveProposal(ctx, proposalID, domain.ProposalRejected); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrProposalResolved
		}
		return nil, err
	}
	proposal.Status = domain.ProposalRejected
	return proposal, nil
}

// applyRecipeUpdate merges the proposal's partial fields into the recipe.
func (s *chatService) applyRecipeUpdate(ctx context.Context, ownerID primitive.ObjectID, proposal *domain.ChatProposal) error {
	recipe, err := s.getOwnedRecipe(ctx, ownerID, proposal.RecipeID)
	if err != nil {
		return err
	}

	changed := false
	if v, ok := payloadInt(proposal.Payload, "servings"); ok {
		recipe.Servings = v
		changed = true
	}
	if v, ok := payloadInt(proposal.Payload, "cookTimeMinutes"); ok {
		recipe.CookTimeMinutes = v
		changed = true
	}
	if v, ok := proposal.Payload["difficulty"].(string); ok && v != "" {
		recipe.Difficulty = v
		changed = true
	}
	if v, ok := proposal.Payload["description"].(string); ok && v != "" {
		recipe.Description = v
		changed = true
	}
	if factor, ok := payloadFloat(proposal.Payload, "scaleFactor"); ok && factor > 0 {
		for i := range recipe.Ingredients {
			recipe.Ingredients[i].Quantity *= factor
		}
		changed = true
	}
	if !changed {
		return ErrBadProposal
	}
	return s.recipeRepo.Update(ctx, recipe)
}

// applyPlanAssignment puts the chat's recipe into the plan slot named by the
// proposal's date and mealType, creating the week's plan if needed.
func (s *chatService) applyPlanAssignment(ctx context.Context, ownerID primitive.ObjectID, proposal *domain.ChatProposal) error {
	dateStr, ok := proposal.Payload["date"].(string)
	if !ok {
		return ErrBadProposal
	}
	date, err := time.Parse(calendar.ISODate, dateStr)
	if err != nil {
		return ErrBadProposal
	}
	mealTypeStr, ok := proposal.Payload["mealType"].(string)
	if !ok || !domain.ValidMealType(domain.MealType(mealTypeStr)) {
		return ErrBadProposal
	}

	plan, err := s.planSvc.GetOrCreatePlanForWeek(ctx, ownerID, calendar.WeekStartFor(date))
	if err != nil {
		return err
	}
	_, err = s.planSvc.AssignEntry(ctx, ownerID, plan.Plan.ID, date, domain.MealType(mealTypeStr), proposal.RecipeID)
	return err
}

func (s *chatService) getOwnedRecipe(ctx context.Context, ownerID, recipeID primitive.ObjectID) (*domain.Recipe, error) {
	recipe, err := s.recipeRepo.GetByID(ctx, recipeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	if recipe.OwnerID != ownerID {
		return nil, ErrRecipeAccessDenied
	}
	return recipe, nil
}

func (s *chatService) getOwnedPendingProposal(ctx context.Context, ownerID, proposalID primitive.ObjectID) (*domain.ChatProposal, error) {
	proposal, err := s.chatRepo.GetProposalByID(ctx, proposalID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProposalNotFound
		}
		return nil, err
	}
	if proposal.OwnerID != ownerID {
		return nil, ErrProposalNotFound
	}
	if proposal.Status != domain.ProposalPending {
		return nil, ErrProposalResolved
	}
	return proposal, nil
}

// payloadInt reads an integer payload field. BSON round-trips numbers as
// int32/int64/float64 depending on how they were written.
func payloadInt(payload map[string]any, key string) (int, bool) {
	switch v := payload[key].(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	}
	return 0, false
}

func payloadFloat(payload map[string]any, key string) (float64, bool) {
	switch v := payload[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}
