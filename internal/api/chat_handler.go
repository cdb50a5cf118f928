package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"plateful/mealplan-app/internal/domain"
	"plateful/mealplan-app/internal/service"

	"github.com/gin-gonic/gin"
)

// ChatHandler holds the chat service dependency.
type ChatHandler struct {
	chatService service.ChatService
}

// NewChatHandler creates a new ChatHandler.
func NewChatHandler(chatService service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// --- Request/Response Structs ---

type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

type ChatMessageResponse struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type ProposalResponse struct {
	ID      string         `json:"id"`
	Kind    string         `json:"kind"`
	Summary string         `json:"summary"`
	Payload map[string]any `json:"payload,omitempty"`
	Status  string         `json:"status"`
}

type SendMessageResponse struct {
	UserMessage      ChatMessageResponse `json:"user_message"`
	AssistantMessage ChatMessageResponse `json:"assistant_message"`
	Proposals        []ProposalResponse  `json:"proposals"`
}

// --- Handler Methods ---

// SendMessage posts a message to a recipe's assistant conversation.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	ownerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify user from token")
		return
	}
	recipeID, err := getObjectIDParam(c, "recipeId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	result, err := h.chatService.SendMessage(c.Request.Context(), ownerID, recipeID, req.Content)
	if err != nil {
		respondChatError(c, err)
		return
	}

	proposals := make([]ProposalResponse, len(result.Proposals))
	for i := range result.Proposals {
		proposals[i] = MapProposalToResponse(&result.Proposals[i])
	}
	c.JSON(http.StatusCreated, SendMessageResponse{
		UserMessage:      MapChatMessageToResponse(&result.UserMessage),
		AssistantMessage: MapChatMessageToResponse(&result.AssistantMessage),
		Proposals:        proposals,
	})
}

// ListMessages returns the conversation for a recipe, oldest first.
func (h *ChatHandler) ListMessages(c *gin.Context) {
	ownerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify user from token")
		return
	}
	recipeID, err := getObjectIDParam(c, "recipeId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	messages, err := h.chatService.ListMessages(c.Request.Context(), ownerID, recipeID)
	if err != nil {
		respondChatError(c, err)
		return
	}

	response := make([]ChatMessageResponse, len(messages))
	for i := range messages {
		response[i] = MapChatMessageToResponse(&messages[i])
	}
	c.JSON(http.StatusOK, response)
}

// ConfirmProposal applies a pending proposal.
func (h *ChatHandler) ConfirmProposal(c *gin.Context) {
	ownerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify user from token")
		return
	}
	proposalID, err := getObjectIDParam(c, "proposalId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	proposal, err := h.chatService.ConfirmProposal(c.Request.Context(), ownerID, proposalID)
	if err != nil {
		respondChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapProposalToResponse(proposal))
}

// RejectProposal discards a pending proposal without applying it.
func (h *ChatHandler) RejectProposal(c *gin.Context) {
	ownerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify user from token")
		return
	}
	proposalID, err := getObjectIDParam(c, "proposalId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	proposal, err := h.chatService.RejectProposal(c.Request.Context(), ownerID, proposalID)
	if err != nil {
		respondChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapProposalToResponse(proposal))
}

// --- Mappers ---

func MapChatMessageToResponse(msg *domain.ChatMessage) ChatMessageResponse {
	if msg == nil {
		return ChatMessageResponse{}
	}
	return ChatMessageResponse{
		ID:        msg.ID.Hex(),
		Role:      string(msg.Role),
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}
}

func MapProposalToResponse(proposal *domain.ChatProposal) ProposalResponse {
	if proposal == nil {
		return ProposalResponse{}
	}
	return ProposalResponse{
		ID:      proposal.ID.Hex(),
		Kind:    string(proposal.Kind),
		Summary: proposal.Summary,
		Payload: proposal.Payload,
		Status:  string(proposal.Status),
	}
}

// respondChatError maps chat service errors to HTTP statuses.
func respondChatError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRecipeNotFound), errors.Is(err, service.ErrProposalNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrRecipeAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrProposalResolved):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrEmptyMessage), errors.Is(err, service.ErrBadProposal):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
