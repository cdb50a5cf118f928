package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"plateful/mealplan-app/internal/calendar"
	"plateful/mealplan-app/internal/domain"
	"plateful/mealplan-app/internal/service"

	"github.com/gin-gonic/gin"
)

// MealPlanHandler holds the meal plan service dependency.
type MealPlanHandler struct {
	planService service.MealPlanService
}

// NewMealPlanHandler creates a new MealPlanHandler.
func NewMealPlanHandler(planService service.MealPlanService) *MealPlanHandler {
	return &MealPlanHandler{planService: planService}
}

// --- Request/Response Structs ---

type AssignEntryRequest struct {
	Date     string `json:"date" binding:"required"` // YYYY-MM-DD, within the plan's week
	MealType string `json:"meal_type" binding:"required,oneof=breakfast lunch dinner"`
	RecipeID string `json:"recipe_id" binding:"required"`
}

type RecipeSnapshotResponse struct {
	RecipeID        string `json:"recipe_id"`
	Title           string `json:"title"`
	CookTimeMinutes int    `json:"cook_time_minutes"`
	Servings        int    `json:"servings"`
	Difficulty      string `json:"difficulty,omitempty"`
}

type PlanEntryResponse struct {
	ID        string                  `json:"id"`
	PlanID    string                  `json:"plan_id"`
	DayOfWeek int                     `json:"day_of_week"` // 0=Monday .. 6=Sunday
	MealType  string                  `json:"meal_type"`
	Recipe    *RecipeSnapshotResponse `json:"recipe,omitempty"`
	UpdatedAt time.Time               `json:"updated_at"`
}

type MealPlanResponse struct {
	ID        string              `json:"id"`
	WeekStart string              `json:"week_start"` // YYYY-MM-DD, always a Monday
	Entries   []PlanEntryResponse `json:"entries"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// --- Handler Methods ---

// GetCurrentPlan returns (creating if needed) the plan for the week
// containing today.
func (h *MealPlanHandler) GetCurrentPlan(c *gin.Context) {
	ownerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify user from token")
		return
	}

	plan, err := h.planService.GetCurrentPlan(c.Request.Context(), ownerID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to load meal plan")
		return
	}

	c.JSON(http.StatusOK, MapPlanToResponse(plan))
}

// GetPlanForWeek returns (creating if needed) the plan for an explicit week.
// The week_start query parameter must be a Monday in YYYY-MM-DD form.
func (h *MealPlanHandler) GetPlanForWeek(c *gin.Context) {
	ownerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify user from token")
		return
	}

	weekStartStr := c.Query("week_start")
	if weekStartStr == "" {
		abortWithError(c, http.StatusBadRequest, "week_start query parameter is required")
		return
	}
	weekStart, err := time.Parse(calendar.ISODate, weekStartStr)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "week_start must be a date in YYYY-MM-DD format")
		return
	}

	plan, err := h.planService.GetOrCreatePlanForWeek(c.Request.Context(), ownerID, weekStart)
	if err != nil {
		if errors.Is(err, service.ErrWeekNotMonday) {
			abortWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		abortWithError(c, http.StatusInternalServerError, "Failed to load meal plan")
		return
	}

	c.JSON(http.StatusOK, MapPlanToResponse(plan))
}

// AssignEntry fills (or replaces) one slot of the plan with a recipe.
func (h *MealPlanHandler) AssignEntry(c *gin.Context) {
	ownerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify user from token")
		return
	}
	planID, err := getObjectIDParam(c, "planId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req AssignEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	date, err := time.Parse(calendar.ISODate, req.Date)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "date must be in YYYY-MM-DD format")
		return
	}
	recipeID, err := parseObjectID(req.RecipeID, "recipe_id")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := h.planService.AssignEntry(c.Request.Context(), ownerID, planID, date, domain.MealType(req.MealType), recipeID)
	if err != nil {
		respondPlanError(c, err)
		return
	}

	c.JSON(http.StatusOK, MapEntryToResponse(entry))
}

// RemoveEntry clears one slot of the plan.
func (h *MealPlanHandler) RemoveEntry(c *gin.Context) {
	ownerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify user from token")
		return
	}
	planID, err := getObjectIDParam(c, "planId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	entryID, err := getObjectIDParam(c, "entryId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.planService.RemoveEntry(c.Request.Context(), ownerID, planID, entryID); err != nil {
		respondPlanError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Mappers ---

// MapPlanToResponse converts a plan and its entries to the wire DTO.
func MapPlanToResponse(plan *service.PlanWithEntries) MealPlanResponse {
	if plan == nil {
		return MealPlanResponse{}
	}
	entries := make([]PlanEntryResponse, len(plan.Entries))
	for i := range plan.Entries {
		entries[i] = MapEntryToResponse(&plan.Entries[i])
	}
	return MealPlanResponse{
		ID:        plan.Plan.ID.Hex(),
		WeekStart: plan.Plan.WeekStart.Format(calendar.ISODate),
		Entries:   entries,
		CreatedAt: plan.Plan.CreatedAt,
		UpdatedAt: plan.Plan.UpdatedAt,
	}
}

// MapEntryToResponse converts a plan entry to the wire DTO.
func MapEntryToResponse(entry *domain.MealPlanEntry) PlanEntryResponse {
	if entry == nil {
		return PlanEntryResponse{}
	}
	resp := PlanEntryResponse{
		ID:        entry.ID.Hex(),
		PlanID:    entry.PlanID.Hex(),
		DayOfWeek: entry.DayOfWeek,
		MealType:  string(entry.MealType),
		UpdatedAt: entry.UpdatedAt,
	}
	if entry.Recipe != nil {
		resp.Recipe = &RecipeSnapshotResponse{
			RecipeID:        entry.Recipe.RecipeID.Hex(),
			Title:           entry.Recipe.Title,
			CookTimeMinutes: entry.Recipe.CookTimeMinutes,
			Servings:        entry.Recipe.Servings,
			Difficulty:      entry.Recipe.Difficulty,
		}
	}
	return resp
}

// respondPlanError maps meal plan service errors to HTTP statuses.
func respondPlanError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPlanNotFound), errors.Is(err, service.ErrEntryNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrPlanAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrDateOutsideWeek),
		errors.Is(err, service.ErrInvalidMealType),
		errors.Is(err, service.ErrWeekNotMonday):
		abortWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrPlanRecipeNotOwned):
		abortWithError(c, http.StatusUnprocessableEntity, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
