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

const libraryCollectionName = "libraries"

// mongoLibraryRepository implements repository.LibraryRepository
type mongoLibraryRepository struct {
	collection *mongo.Collection
}

// NewMongoLibraryRepository creates a new RecipeLibrary repository.
func NewMongoLibraryRepository(db *mongo.Database) repository.LibraryRepository {
	return &mongoLibraryRepository{
		collection: db.Collection(libraryCollectionName),
	}
}

// Create inserts a new library.
func (r *mongoLibraryRepository) Create(ctx context.Context, library *domain.RecipeLibrary) (primitive.ObjectID, error) {
	if library.OwnerID == primitive.NilObjectID || library.Name == "" {
		return primitive.NilObjectID, errors.New("library requires ownerId and name")
	}
	library.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	library.CreatedAt = now
	library.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, library)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted library ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single library by its ID.
func (r *mongoLibraryRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.RecipeLibrary, error) {
	var library domain.RecipeLibrary
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&library)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &library, nil
}

// GetByOwnerID retrieves all libraries owned by a user.
func (r *mongoLibraryRepository) GetByOwnerID(ctx context.Context, ownerID primitive.ObjectID) ([]domain.RecipeLibrary, error) {
	var libraries []domain.RecipeLibrary
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"ownerId": ownerID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &libraries); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return libraries, nil
}

// AddRecipe adds a recipe ID to a library's RecipeIDs array.
func (r *mongoLibraryRepository) AddRecipe(ctx context.Context, libraryID, ownerID, recipeID primitive.ObjectID) error {
	filter := bson.M{"_id": libraryID, "ownerId": ownerID}
	update := bson.M{
		"$addToSet": bson.M{"recipeIds": recipeID}, // $addToSet prevents duplicates
		"$set":      bson.M{"updatedAt": time.Now().UTC()},
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

// RemoveRecipe removes a recipe ID from a library's RecipeIDs array.
func (r *mongoLibraryRepository) RemoveRecipe(ctx context.Context, libraryID, ownerID, recipeID primitive.ObjectID) error {
	filter := bson.M{"_id": libraryID, "ownerId": ownerID}
	update := bson.M{
		"$pull": bson.M{"recipeIds": recipeID},
		"$set":  bson.M{"updatedAt": time.Now().UTC()},
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

// Delete removes a library, scoped to its owner.
func (r *mongoLibraryRepository) Delete(ctx context.Context, id, ownerID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "ownerId": ownerID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureLibraryIndexes creates necessary indexes. Call during startup.
func EnsureLibraryIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "ownerId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
