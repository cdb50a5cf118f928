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

const shoppingListCollectionName = "shopping_lists"

// mongoShoppingListRepository implements repository.ShoppingListRepository
type mongoShoppingListRepository struct {
	collection *mongo.Collection
}

// NewMongoShoppingListRepository creates a new ShoppingList repository.
func NewMongoShoppingListRepository(db *mongo.Database) repository.ShoppingListRepository {
	return &mongoShoppingListRepository{
		collection: db.Collection(shoppingListCollectionName),
	}
}

// Create inserts a new shopping list (items get their IDs assigned here).
func (r *mongoShoppingListRepository) Create(ctx context.Context, list *domain.ShoppingList) (primitive.ObjectID, error) {
	if list.OwnerID == primitive.NilObjectID || list.Name == "" {
		return primitive.NilObjectID, errors.New("shopping list requires ownerId and name")
	}
	list.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	list.CreatedAt = now
	list.UpdatedAt = now
	for i := range list.Items {
		if list.Items[i].ID == primitive.NilObjectID {
			list.Items[i].ID = primitive.NewObjectID()
		}
	}

	result, err := r.collection.InsertOne(ctx, list)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted list ID")
	}
	return insertedID, nil
}

// GetByID retrieves a single shopping list by its ID.
func (r *mongoShoppingListRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ShoppingList, error) {
	var list domain.ShoppingList
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&list)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &list, nil
}

// GetByOwnerID retrieves all shopping lists owned by a user, newest first.
func (r *mongoShoppingListRepository) GetByOwnerID(ctx context.Context, ownerID primitive.ObjectID) ([]domain.ShoppingList, error) {
	var lists []domain.ShoppingList
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"ownerId": ownerID}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &lists); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return lists, nil
}

// GetByPlanID retrieves the list generated from a given meal plan, if any.
func (r *mongoShoppingListRepository) GetByPlanID(ctx context.Context, planID primitive.ObjectID) (*domain.ShoppingList, error) {
	var list domain.ShoppingList
	err := r.collection.FindOne(ctx, bson.M{"planId": planID}).Decode(&list)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &list, nil
}

// ReplaceItems rewrites a list's name and items (the "replace" conflict
// resolution of the generate flow).
func (r *mongoShoppingListRepository) ReplaceItems(ctx context.Context, listID, ownerID primitive.ObjectID, name string, items []domain.ShoppingListItem) error {
	for i := range items {
		if items[i].ID == primitive.NilObjectID {
			items[i].ID = primitive.NewObjectID()
		}
	}
	filter := bson.M{"_id": listID, "ownerId": ownerID}
	update := bson.M{
		"$set": bson.M{
			"name":      name,
			"items":     items,
			"updatedAt": time.Now().UTC(),
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

// SetItemChecked toggles one item's checked state using a positional update.
func (r *mongoShoppingListRepository) SetItemChecked(ctx context.Context, listID, ownerID, itemID primitive.ObjectID, checked bool) error {
	filter := bson.M{"_id": listID, "ownerId": ownerID, "items._id": itemID}
	set := bson.M{
		"items.$.checked": checked,
		"updatedAt":       time.Now().UTC(),
	}
	if checked {
		set["items.$.checkedAt"] = time.Now().UTC()
	} else {
		set["items.$.checkedAt"] = nil
	}

	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a shopping list, scoped to its owner.
func (r *mongoShoppingListRepository) Delete(ctx context.Context, id, ownerID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id, "ownerId": ownerID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureShoppingListIndexes creates necessary indexes. Call during startup.
func EnsureShoppingListIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "ownerId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index(),
		},
		{
			// At most one generated list per source plan; sparse because
			// manually created lists carry no planId.
			Keys:    bson.D{{Key: "planId", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	}
	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
