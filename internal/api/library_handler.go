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

// LibraryHandler holds the recipe service dependency (libraries live there).
type LibraryHandler struct {
	recipeService service.RecipeService
}

// NewLibraryHandler creates a new LibraryHandler.
func NewLibraryHandler(recipeService service.RecipeService) *LibraryHandler {
	return &LibraryHandler{recipeService: recipeService}
}

// --- Request/Response Structs ---

type CreateLibraryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type AddLibraryRecipeRequest struct {
	RecipeID string `json:"recipe_id" binding:"required"`
}

type LibraryResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	RecipeIDs   []string  `json:"recipe_ids"`
	CreatedAt   time.Time `json:"created_at"`
}

// --- Handler Methods ---

func (h *LibraryHandler) CreateLibrary(c *gin.Context) {
	ownerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify user from token")
		return
	}

	var req CreateLibraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	library, err := h.recipeService.CreateLibrary(c.Request.Context(), ownerID, req.Name, req.Description)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to create library")
		return
	}

	c.JSON(http.StatusCreated, MapLibraryToResponse(library))
}

func (h *LibraryHandler) GetMyLibraries(c *gin.Context) {
	ownerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify user from token")
		return
	}

	libraries, err := h.recipeService.GetMyLibraries(c.Request.Context(), ownerID)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to retrieve libraries")
		return
	}

	response := make([]LibraryResponse, len(libraries))
	for i := range libraries {
		response[i] = MapLibraryToResponse(&libraries[i])
	}
	c.JSON(http.StatusOK, response)
}

func (h *LibraryHandler) AddRecipe(c *gin.Context) {
	ownerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify user from token")
		return
	}
	libraryID, err := getObjectIDParam(c, "libraryId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req AddLibraryRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	recipeID, err := parseObjectID(req.RecipeID, "recipe_id")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.recipeService.AddRecipeToLibrary(c.Request.Context(), ownerID, libraryID, recipeID); err != nil {
		respondLibraryError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *LibraryHandler) RemoveRecipe(c *gin.Context) {
	ownerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify user from token")
		return
	}
	libraryID, err := getObjectIDParam(c, "libraryId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	recipeID, err := getObjectIDParam(c, "recipeId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.recipeService.RemoveRecipeFromLibrary(c.Request.Context(), ownerID, libraryID, recipeID); err != nil {
		respondLibraryError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *LibraryHandler) DeleteLibrary(c *gin.Context) {
	ownerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to identify user from token")
		return
	}
	libraryID, err := getObjectIDParam(c, "libraryId")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.recipeService.DeleteLibrary(c.Request.Context(), ownerID, libraryID); err != nil {
		respondLibraryError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Mappers ---

// MapLibraryToResponse converts a domain RecipeLibrary to its DTO.
func MapLibraryToResponse(library *domain.RecipeLibrary) LibraryResponse {
	if library == nil {
		return LibraryResponse{}
	}
	recipeIDs := make([]string, len(library.RecipeIDs))
	for i, id := range library.RecipeIDs {
		recipeIDs[i] = id.Hex()
	}
	return LibraryResponse{
		ID:          library.ID.Hex(),
		Name:        library.Name,
		Description: library.Description,
		RecipeIDs:   recipeIDs,
		CreatedAt:   library.CreatedAt,
	}
}

func respondLibraryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrLibraryNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrRecipeNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrRecipeAccessDenied):
		abortWithError(c, http.StatusForbidden, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
