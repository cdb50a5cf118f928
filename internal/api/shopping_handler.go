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

// ShoppingHandler holds the shopping list service dependency.
type ShoppingHandler struct {
	shoppingService service.ShoppingListService
}

// NewShoppingHandler creates a new ShoppingHandler.
func NewShoppingHandler(shoppingService service.ShoppingListService) *ShoppingHandler {
	return &ShoppingHandler{shoppingService: shoppingService}
}

// --- Request/Response Structs ---

type GenerateListRequest struct {
	PlanID string `json:"plan_id" binding:"required"`
	// OnConflict controls behavior when the plan already has a list:
	// empty/"fail" reports 409, "replace" regenerates in place, "new"
	// creates an unlinked copy.
	OnConflict string `json:"on_conflict" binding:"omitempty,oneof=fail replace new"`
}

type CheckItemRequest struct {
	Checked bool `json:"checked"`
}

type ShoppingItemResponse struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Quantity  float64    `json:"quantity"`
	Unit      string     `json:"unit,omitempty"`
	Checked   bool       `json:"checked"`
	CheckedAt *time.Time `json:"checked_at,omitempty"`
}

type ShoppingListResponse struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	PlanID    *string                `json:"plan_id,omitempty"`
	Items     []ShoppingItemResponse `json:"items"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// --- Handler Methods ---

// GenerateList builds a shopping list from every recipe on a meal plan.
func (h *ShoppingHandler) GenerateList(c *gin.Context) {
	ownerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify user from token")
		return
	}

	var req GenerateListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	planID, err := parseObjectID(req.PlanID, "plan_id")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	policy := service.ConflictFail
	if req.OnConflict != "" {
		policy = service.ConflictPolicy(req.OnConflict)
	}

	list, err := h.shoppingService.GenerateFromPlan(c.Request.Context(), ownerID, planID, policy)
	if err != nil {
		var exists *service.ListExistsError
		switch {
		case errors.As(err, &exists):
			// The existing list's ID lets the client offer "open it" or a
			// retry with on_conflict=replace.
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"error":            err.Error(),
				"existing_list_id": exists.ListID.Hex(),
			})
		case errors.Is(err, service.ErrShoppingListExists):
			abortWithError(c, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrEmptyPlan):
			abortWithError(c, http.StatusUnprocessableEntity, err.Error())
		case errors.Is(err, service.ErrPlanNotFound):
			abortWithError(c, http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrPlanAccessDenied):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Failed to generate shopping list")
		}
		return
	}

	c.JSON(http.StatusCreated, MapShoppingListToResponse(list))
}

func (h *ShoppingHandler) GetMyLists(c *gin.Context) {
	ownerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify user from token")
		return
	}

	lists, err := h.shoppingService.GetMyLists(c.Request.Context(), ownerID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve shopping lists")
		return
	}

	response := make([]ShoppingListResponse, len(lists))
	for i := range lists {
		response[i] = MapShoppingListToResponse(&lists[i])
	}
	c.JSON(http.StatusOK, response)
}

func (h *ShoppingHandler) GetList(c *gin.Context) {
	ownerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify user from token")
		return
	}
	listID, err := getObjectIDParam(c, "listId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	list, err := h.shoppingService.GetList(c.Request.Context(), ownerID, listID)
	if err != nil {
		respondShoppingError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapShoppingListToResponse(list))
}

// CheckItem toggles the checked state of a single item.
func (h *ShoppingHandler) CheckItem(c *gin.Context) {
	ownerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify user from token")
		return
	}
	listID, err := getObjectIDParam(c, "listId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	itemID, err := getObjectIDParam(c, "itemId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req CheckItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	list, err := h.shoppingService.SetItemChecked(c.Request.Context(), ownerID, listID, itemID, req.Checked)
	if err != nil {
		respondShoppingError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapShoppingListToResponse(list))
}

func (h *ShoppingHandler) DeleteList(c *gin.Context) {
	ownerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify user from token")
		return
	}
	listID, err := getObjectIDParam(c, "listId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.shoppingService.DeleteList(c.Request.Context(), ownerID, listID); err != nil {
		respondShoppingError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Mappers ---

// MapShoppingListToResponse converts a domain ShoppingList to its DTO.
func MapShoppingListToResponse(list *domain.ShoppingList) ShoppingListResponse {
	if list == nil {
		return ShoppingListResponse{}
	}
	items := make([]ShoppingItemResponse, len(list.Items))
	for i, item := range list.Items {
		items[i] = ShoppingItemResponse{
			ID:        item.ID.Hex(),
			Name:      item.Name,
			Quantity:  item.Quantity,
			Unit:      item.Unit,
			Checked:   item.Checked,
			CheckedAt: item.CheckedAt,
		}
	}
	resp := ShoppingListResponse{
		ID:        list.ID.Hex(),
		Name:      list.Name,
		Items:     items,
		CreatedAt: list.CreatedAt,
		UpdatedAt: list.UpdatedAt,
	}
	if list.PlanID != nil {
		planIDHex := list.PlanID.Hex()
		resp.PlanID = &planIDHex
	}
	return resp
}

func respondShoppingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrShoppingListNotFound), errors.Is(err, service.ErrShoppingItemNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
