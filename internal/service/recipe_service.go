package service

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"strings"
	"time"

	"plateful/mealplan-app/internal/domain"
	"plateful/mealplan-app/internal/repository"
	"plateful/mealplan-app/internal/storage"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Error Definitions ---
var (
	ErrRecipeNotFound      = errors.New("recipe not found")
	ErrRecipeAccessDenied  = errors.New("access denied to this recipe")
	ErrLibraryNotFound     = errors.New("library not found")
	ErrInvalidContentType  = errors.New("unsupported image content type")
	ErrRecipeImageNotFound = errors.New("recipe has no image")
)

// Image content types accepted for recipe photos.
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// RecipeInput carries the user-editable fields of a recipe.
type RecipeInput struct {
	Title           string
	Description     string
	Ingredients     []domain.Ingredient
	Instructions    []string
	CookTimeMinutes int
	Servings        int
	Difficulty      string
	Cuisine         string
	Tags            []string
}

// UploadURLResponse carries a presigned upload URL plus the object key the
// client must confirm with.
type UploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"`
}

// --- Service Interface ---
type RecipeService interface {
	CreateRecipe(ctx context.Context, ownerID primitive.ObjectID, input RecipeInput) (*domain.Recipe, error)
	GetRecipeByID(ctx context.Context, ownerID, recipeID primitive.ObjectID) (*domain.Recipe, error)
	GetMyRecipes(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Recipe, error)
	UpdateRecipe(ctx context.Context, ownerID, recipeID primitive.ObjectID, input RecipeInput) (*domain.Recipe, error)
	DeleteRecipe(ctx context.Context, ownerID, recipeID primitive.ObjectID) error

	// Image handling (S3 presigned URL round trip)
	RequestImageUploadURL(ctx context.Context, ownerID, recipeID primitive.ObjectID, contentType string) (*UploadURLResponse, error)
	ConfirmImageUpload(ctx context.Context, ownerID, recipeID primitive.ObjectID, objectKey, fileName string, size int64, contentType string) error
	GetImageDownloadURL(ctx context.Context, ownerID, recipeID primitive.ObjectID) (string, error)

	// Library management
	CreateLibrary(ctx context.Context, ownerID primitive.ObjectID, name, description string) (*domain.RecipeLibrary, error)
	GetMyLibraries(ctx context.Context, ownerID primitive.ObjectID) ([]domain.RecipeLibrary, error)
	AddRecipeToLibrary(ctx context.Context, ownerID, libraryID, recipeID primitive.ObjectID) error
	RemoveRecipeFromLibrary(ctx context.Context, ownerID, libraryID, recipeID primitive.ObjectID) error
	DeleteLibrary(ctx context.Context, ownerID, libraryID primitive.ObjectID) error
}

// --- Service Implementation ---

type recipeService struct {
	recipeRepo  repository.RecipeRepository
	libraryRepo repository.LibraryRepository
	uploadRepo  repository.UploadRepository
	fileStorage storage.FileStorage
}

// NewRecipeService creates a new instance of recipeService.
func NewRecipeService(
	recipeRepo repository.RecipeRepository,
	libraryRepo repository.LibraryRepository,
	uploadRepo repository.UploadRepository,
	fileStorage storage.FileStorage,
) RecipeService {
	return &recipeService{
		recipeRepo:  recipeRepo,
		libraryRepo: libraryRepo,
		uploadRepo:  uploadRepo,
		fileStorage: fileStorage,
	}
}

// CreateRecipe creates a new recipe owned by the user.
func (s *recipeService) CreateRecipe(ctx context.Context, ownerID primitive.ObjectID, input RecipeInput) (*domain.Recipe, error) {
	if ownerID == primitive.NilObjectID || strings.TrimSpace(input.Title) == "" {
		return nil, errors.New("owner ID and recipe title are required")
	}

	recipe := &domain.Recipe{
		OwnerID:         ownerID,
		Title:           strings.TrimSpace(input.Title),
		Description:     input.Description,
		Ingredients:     input.Ingredients,
		Instructions:    input.Instructions,
		CookTimeMinutes: input.CookTimeMinutes,
		Servings:        input.Servings,
		Difficulty:      input.Difficulty,
		Cuisine:         input.Cuisine,
		Tags:            input.Tags,
	}

	recipeID, err := s.recipeRepo.Create(ctx, recipe)
	if err != nil {
		return nil, err
	}
	recipe.ID = recipeID
	return recipe, nil
}

// GetRecipeByID fetches a recipe and verifies ownership.
func (s *recipeService) GetRecipeByID(ctx context.Context, ownerID, recipeID primitive.ObjectID) (*domain.Recipe, error) {
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

// GetMyRecipes retrieves all recipes owned by the user.
func (s *recipeService) GetMyRecipes(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Recipe, error) {
	if ownerID == primitive.NilObjectID {
		return nil, errors.New("owner ID is required")
	}
	return s.recipeRepo.GetByOwnerID(ctx, ownerID)
}

// UpdateRecipe rewrites the user-editable fields of an owned recipe.
func (s *recipeService) UpdateRecipe(ctx context.Context, ownerID, recipeID primitive.ObjectID, input RecipeInput) (*domain.Recipe, error) {
	recipe, err := s.GetRecipeByID(ctx, ownerID, recipeID)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(input.Title) == "" {
		return nil, errors.New("recipe title cannot be empty")
	}

	recipe.Title = strings.TrimSpace(input.Title)
	recipe.Description = input.Description
	recipe.Ingredients = input.Ingredients
	recipe.Instructions = input.Instructions
	recipe.CookTimeMinutes = input.CookTimeMinutes
	recipe.Servings = input.Servings
	recipe.Difficulty = input.Difficulty
	recipe.Cuisine = input.Cuisine
	recipe.Tags = input.Tags

	if err := s.recipeRepo.Update(ctx, recipe); err != nil {
		return nil, err
	}
	recipe.UpdatedAt = time.Now().UTC()
	return recipe, nil
}

// DeleteRecipe removes an owned recipe and its stored image, if any.
func (s *recipeService) DeleteRecipe(ctx context.Context, ownerID, recipeID primitive.ObjectID) error {
	recipe, err := s.GetRecipeByID(ctx, ownerID, recipeID)
	if err != nil {
		return err
	}

	if err := s.recipeRepo.Delete(ctx, recipeID, ownerID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrRecipeNotFound
		}
		return err
	}

	// Best-effort cleanup; the recipe document is already gone and an
	// orphaned object is preferable to a failed delete.
	if recipe.ImageObjectKey != "" {
		_ = s.fileStorage.DeleteObject(ctx, recipe.ImageObjectKey)
	}
	return nil
}

// === Image handling ===

// RequestImageUploadURL generates a presigned PUT URL for a recipe photo.
func (s *recipeService) RequestImageUploadURL(ctx context.Context, ownerID, recipeID primitive.ObjectID, contentType string) (*UploadURLResponse, error) {
	if _, err := s.GetRecipeByID(ctx, ownerID, recipeID); err != nil {
		return nil, err
	}

	baseType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, ErrInvalidContentType
	}
	ext, ok := allowedImageTypes[baseType]
	if !ok {
		return nil, ErrInvalidContentType
	}

	// Unique key per upload; replacing an image never reuses a key, so a
	// cached stale object can't shadow the new one.
	objectKey := fmt.Sprintf("recipes/%s/%s%s", recipeID.Hex(), uuid.NewString(), ext)

	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, baseType, storage.DefaultPresignedURLExpiry)
	if err != nil {
		return nil, err
	}

	return &UploadURLResponse{
		UploadURL: uploadURL,
		ObjectKey: objectKey,
	}, nil
}

// ConfirmImageUpload records upload metadata after the client PUT the object
// and links the key to the recipe.
func (s *recipeService) ConfirmImageUpload(ctx context.Context, ownerID, recipeID primitive.ObjectID, objectKey, fileName string, size int64, contentType string) error {
	recipe, err := s.GetRecipeByID(ctx, ownerID, recipeID)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(objectKey, "recipes/"+recipeID.Hex()+"/") {
		return errors.New("object key does not belong to this recipe")
	}

	upload := &domain.Upload{
		RecipeID:    recipeID,
		OwnerID:     ownerID,
		S3ObjectKey: objectKey,
		FileName:    fileName,
		ContentType: contentType,
		Size:        size,
	}
	if _, err := s.uploadRepo.Create(ctx, upload); err != nil {
		return err
	}

	previousKey := recipe.ImageObjectKey
	if err := s.recipeRepo.SetImageObjectKey(ctx, recipeID, objectKey); err != nil {
		return err
	}
	if previousKey != "" && previousKey != objectKey {
		_ = s.fileStorage.DeleteObject(ctx, previousKey) // Best-effort
	}
	return nil
}

// GetImageDownloadURL generates a presigned GET URL for the recipe's photo.
func (s *recipeService) GetImageDownloadURL(ctx context.Context, ownerID, recipeID primitive.ObjectID) (string, error) {
	recipe, err := s.GetRecipeByID(ctx, ownerID, recipeID)
	if err != nil {
		return "", err
	}
	if recipe.ImageObjectKey == "" {
		return "", ErrRecipeImageNotFound
	}
	return s.fileStorage.GeneratePresignedDownloadURL(ctx, recipe.ImageObjectKey, storage.DefaultPresignedURLExpiry)
}

// === Library management ===

// CreateLibrary creates a new named recipe collection.
func (s *recipeService) CreateLibrary(ctx context.Context, ownerID primitive.ObjectID, name, description string) (*domain.RecipeLibrary, error) {
	if ownerID == primitive.NilObjectID || strings.TrimSpace(name) == "" {
		return nil, errors.New("owner ID and library name are required")
	}
	library := &domain.RecipeLibrary{
		OwnerID:     ownerID,
		Name:        strings.TrimSpace(name),
		Description: description,
	}
	libraryID, err := s.libraryRepo.Create(ctx, library)
	if err != nil {
		return nil, err
	}
	library.ID = libraryID
	return library, nil
}

// GetMyLibraries retrieves all libraries owned by the user.
func (s *recipeService) GetMyLibraries(ctx context.Context, ownerID primitive.ObjectID) ([]domain.RecipeLibrary, error) {
	if ownerID == primitive.NilObjectID {
		return nil, errors.New("owner ID is required")
	}
	return s.libraryRepo.GetByOwnerID(ctx, ownerID)
}

// AddRecipeToLibrary verifies recipe ownership, then links it.
func (s *recipeService) AddRecipeToLibrary(ctx context.Context, ownerID, libraryID, recipeID primitive.ObjectID) error {
	if _, err := s.GetRecipeByID(ctx, ownerID, recipeID); err != nil {
		return err
	}
	err := s.libraryRepo.AddRecipe(ctx, libraryID, ownerID, recipeID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrLibraryNotFound
	}
	return err
}

// RemoveRecipeFromLibrary unlinks a recipe from a library.
func (s *recipeService) RemoveRecipeFromLibrary(ctx context.Context, ownerID, libraryID, recipeID primitive.ObjectID) error {
	err := s.libraryRepo.RemoveRecipe(ctx, libraryID, ownerID, recipeID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrLibraryNotFound
	}
	return err
}

// DeleteLibrary removes a library (recipes themselves are untouched).
func (s *recipeService) DeleteLibrary(ctx context.Context, ownerID, libraryID primitive.ObjectID) error {
	err := s.libraryRepo.Delete(ctx, libraryID, ownerID)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrLibraryNotFound
	}
	return err
}
