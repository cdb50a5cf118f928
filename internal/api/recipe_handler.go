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

// RecipeHandler holds the recipe service dependency.
type RecipeHandler struct {
	recipeService service.RecipeService
}

// NewRecipeHandler creates a new RecipeHandler.
func NewRecipeHandler(recipeService service.RecipeService) *RecipeHandler {
	return &RecipeHandler{recipeService: recipeService}
}

// --- Request/Response Structs ---

type IngredientDTO struct {
	Name     string  `json:"name" binding:"required"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

type RecipeRequest struct {
	Title           string          `json:"title" binding:"required"`
	Description     string          `json:"description"`
	Ingredients     []IngredientDTO `json:"ingredients"`
	Instructions    []string        `json:"instructions"`
	CookTimeMinutes int             `json:"cook_time_minutes" binding:"omitempty,min=0"`
	Servings        int             `json:"servings" binding:"omitempty,min=0"`
	Difficulty      string          `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
	Cuisine         string          `json:"cuisine"`
	Tags            []string        `json:"tags"`
}

type RecipeResponse struct {
	ID              string          `json:"id"`
	Title           string          `json:"title"`
	Description     string          `json:"description,omitempty"`
	Ingredients     []IngredientDTO `json:"ingredients"`
	Instructions    []string        `json:"instructions"`
	CookTimeMinutes int             `json:"cook_time_minutes"`
	Servings        int             `json:"servings"`
	Difficulty      string          `json:"difficulty,omitempty"`
	Cuisine         string          `json:"cuisine,omitempty"`
	Tags            []string        `json:"tags,omitempty"`
	HasImage        bool            `json:"has_image"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type UploadURLRequest struct {
	ContentType string `json:"content_type" binding:"required"`
}

type ConfirmUploadRequest struct {
	ObjectKey   string `json:"object_key" binding:"required"`
	FileName    string `json:"file_name"`
	Size        int64  `json:"size" binding:"omitempty,min=0"`
	ContentType string `json:"content_type" binding:"required"`
}

// --- Handler Methods ---

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	ownerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify user from token")
		return
	}

	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	recipe, err := h.recipeService.CreateRecipe(c.Request.Context(), ownerID, mapRecipeRequestToInput(req))
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to create recipe")
		return
	}

	c.JSON(http.StatusCreated, MapRecipeToResponse(recipe))
}

func (h *RecipeHandler) GetMyRecipes(c *gin.Context) {
	ownerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify user from token")
		return
	}

	recipes, err := h.recipeService.GetMyRecipes(c.Request.Context(), ownerID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve recipes")
		return
	}

	response := make([]RecipeResponse, len(recipes))
	for i := range recipes {
		response[i] = MapRecipeToResponse(&recipes[i])
	}
	c.JSON(http.StatusOK, response)
}

func (h *RecipeHandler) GetRecipeByID(c *gin.Context) {
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

	recipe, err := h.recipeService.GetRecipeByID(c.Request.Context(), ownerID, recipeID)
	if err != nil {
		respondRecipeError(c, err)
		return
	}

	c.JSON(http.StatusOK, MapRecipeToResponse(recipe))
}

func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
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

	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	recipe, err := h.recipeService.UpdateRecipe(c.Request.Context(), ownerID, recipeID, mapRecipeRequestToInput(req))
	if err != nil {
		respondRecipeError(c, err)
		return
	}

	c.JSON(http.StatusOK, MapRecipeToResponse(recipe))
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
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

	if err := h.recipeService.DeleteRecipe(c.Request.Context(), ownerID, recipeID); err != nil {
		respondRecipeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// RequestImageUpload returns a presigned PUT URL for the recipe's photo.
func (h *RecipeHandler) RequestImageUpload(c *gin.Context) {
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

	var req UploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	result, err := h.recipeService.RequestImageUploadURL(c.Request.Context(), ownerID, recipeID, req.ContentType)
	if err != nil {
		if errors.Is(err, service.ErrInvalidContentType) {
			abortWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		respondRecipeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"upload_url": result.UploadURL,
		"object_key": result.ObjectKey,
	})
}

// ConfirmImageUpload records that the client finished the presigned PUT.
func (h *RecipeHandler) ConfirmImageUpload(c *gin.Context) {
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

	var req ConfirmUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	err = h.recipeService.ConfirmImageUpload(c.Request.Context(), ownerID, recipeID, req.ObjectKey, req.FileName, req.Size, req.ContentType)
	if err != nil {
		respondRecipeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetImageURL returns a presigned GET URL for the recipe's photo.
func (h *RecipeHandler) GetImageURL(c *gin.Context) {
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

	url, err := h.recipeService.GetImageDownloadURL(c.Request.Context(), ownerID, recipeID)
	if err != nil {
		if errors.Is(err, service.ErrRecipeImageNotFound) {
			abortWithError(c, http.StatusNotFound, err.Error())
			return
		}
		respondRecipeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"download_url": url})
}

// --- Mappers ---

func mapRecipeRequestToInput(req RecipeRequest) service.RecipeInput {
	ingredients := make([]domain.Ingredient, len(req.Ingredients))
	for i, ing := range req.Ingredients {
		ingredients[i] = domain.Ingredient{Name: ing.Name, Quantity: ing.Quantity, Unit: ing.Unit}
	}
	return service.RecipeInput{
		Title:           req.Title,
		Description:     req.Description,
		Ingredients:     ingredients,
		Instructions:    req.Instructions,
		CookTimeMinutes: req.CookTimeMinutes,
		Servings:        req.Servings,
		Difficulty:      req.Difficulty,
		Cuisine:         req.Cuisine,
		Tags:            req.Tags,
	}
}

// MapRecipeToResponse converts a domain Recipe to its DTO.
func MapRecipeToResponse(recipe *domain.Recipe) RecipeResponse {
	if recipe == nil {
		return RecipeResponse{}
	}
	ingredients := make([]IngredientDTO, len(recipe.Ingredients))
	for i, ing := range recipe.Ingredients {
		ingredients[i] = IngredientDTO{Name: ing.Name, Quantity: ing.Quantity, Unit: ing.Unit}
	}
	return RecipeResponse{
		ID:              recipe.ID.Hex(),
		Title:           recipe.Title,
		Description:     recipe.Description,
		Ingredients:     ingredients,
		Instructions:    recipe.Instructions,
		CookTimeMinutes: recipe.CookTimeMinutes,
		Servings:        recipe.Servings,
		Difficulty:      recipe.Difficulty,
		Cuisine:         recipe.Cuisine,
		Tags:            recipe.Tags,
		HasImage:        recipe.ImageObjectKey != "",
		CreatedAt:       recipe.CreatedAt,
		UpdatedAt:       recipe.UpdatedAt,
	}
}

// respondRecipeError maps common recipe service errors to HTTP statuses.
func respondRecipeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRecipeNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrRecipeAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
