// internal/repository/mongo/recipe_repo.go
package mongo

import (
	"context"
	"errors"
	"time"

	"plateful/mealplan-app/internal/domain"
	"plateful/mealplan-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const recipeCollectionName = "recipes"

// mongoRecipeRepository implements repository.RecipeRepository
type mongoRecipeRepository struct {
	collection *mongo.Collection
}

// NewMongoRecipeRepository creates a new Recipe repository.
func NewMongoRecipeRepository(db *mongo.Database) repository.RecipeRepository {
	return &mongoRecipeRepository{
		collection: db.Collection(recipeCollectionName),
	}
}

// Create inserts a new recipe.
func (r *mongoRecipeRepository) Create(ctx context.Context, recipe *domain.Recipe) (primitive.ObjectID, error) {
	if recipe.OwnerID == primitive.NilObjectID || recipe.Title == "" {
		return primitive.NilObjectID, errors.New("recipe requires ownerId and title")
	}
	recipe.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	recipe.CreatedAt = now
	recipe.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, recipe)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted recipe ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single recipe by its ID.
func (r *mongoRecipeRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Recipe, error) {
	var recipe domain.Recipe
	filter := bson.M{"_id": id}
	err := r.collection.FindOne(ctx, filter).Decode(&recipe)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &recipe, nil
}

// GetByOwnerID retrieves all recipes owned by a user, newest first.
func (r *mongoRecipeRepository) GetByOwnerID(ctx context.Context, ownerID primitive.ObjectID) ([]domain.Recipe, error) {
	var recipes []domain.Recipe
	filter := bson.M{"ownerId": ownerID}
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &recipes); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	// Return empty slice if no recipes found (not an error)
	return recipes, nil
}

// Update rewrites the updatable fields of a recipe.
// OwnerID and CreatedAt are never changed by an update.
func (r *mongoRecipeRepository) Update(ctx context.Context, recipe *domain.Recipe) error {
	if recipe.ID == primitive.NilObjectID {
		return errors.New("recipe ID is required for update")
	}

	filter := bson.M{"_id": recipe.ID, "ownerId": recipe.OwnerID}
	updateDoc := bson.M{
		"$set": bson.M{
			"title":           recipe.Title,
			"description":     recipe.Description,
			"ingredients":     recipe.Ingredients,
			"instructions":    recipe.Instructions,
			"cookTimeMinutes": recipe.CookTimeMinutes,
			"servings":        recipe.Servings,
			"difficulty":      recipe.Difficulty,
			"cuisine":         recipe.Cuisine,
			"tags":            recipe.Tags,
			"updatedAt":       time.Now().UTC(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, updateDoc)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// SetImageObjectKey records the S3 key of the recipe's image.
func (r *mongoRecipeRepository) SetImageObjectKey(ctx context.Context, id primitive.ObjectID, objectKey string) error {
	filter := bson.M{"_id": id}
	update := bson.M{
		"$set": bson.M{
			"imageObjectKey": objectKey,
			"updatedAt":      time.Now().UTC(),
		},
	}
	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a recipe, scoped to its owner.
func (r *mongoRecipeRepository) Delete(ctx context.Context, id, ownerID primitive.ObjectID) error {
	if id == primitive.NilObjectID || ownerID == primitive.NilObjectID {
		return errors.New("recipe ID and owner ID are required for deletion")
	}

	// Filter ensures the recipe exists AND belongs to the given owner.
	filter := bson.M{"_id": id, "ownerId": ownerID}

	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		// Either the recipe didn't exist, or it belongs to someone else.
		return repository.ErrNotFound
	}
	return nil
}

// EnsureRecipeIndexes creates necessary indexes. Call during startup.
func EnsureRecipeIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "ownerId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			Keys:    bson.D{{Key: "tags", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
