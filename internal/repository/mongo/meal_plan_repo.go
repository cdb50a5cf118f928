// internal/repository/mongo/meal_plan_repo.go
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

const (
	mealPlanCollectionName      = "meal_plans"
	mealPlanEntryCollectionName = "meal_plan_entries"
)

// mongoMealPlanRepository implements repository.MealPlanRepository
type mongoMealPlanRepository struct {
	plans   *mongo.Collection
	entries *mongo.Collection
}

// NewMongoMealPlanRepository creates a new MealPlan repository.
func NewMongoMealPlanRepository(db *mongo.Database) repository.MealPlanRepository {
	return &mongoMealPlanRepository{
		plans:   db.Collection(mealPlanCollectionName),
		entries: db.Collection(mealPlanEntryCollectionName),
	}
}

// CreatePlan inserts a new weekly plan.
func (r *mongoMealPlanRepository) CreatePlan(ctx context.Context, plan *domain.MealPlan) (primitive.ObjectID, error) {
	if plan.OwnerID == primitive.NilObjectID || plan.WeekStart.IsZero() {
		return primitive.NilObjectID, errors.New("plan requires ownerId and weekStart")
	}
	plan.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	result, err := r.plans.InsertOne(ctx, plan)
	if err != nil {
		// The unique (ownerId, weekStart) index catches two concurrent
		// get-or-create calls for the same week.
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrConflict
		}
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted plan ID")
	}
	return insertedID, nil
}

// GetPlanByID retrieves a single plan by its ID.
func (r *mongoMealPlanRepository) GetPlanByID(ctx context.Context, id primitive.ObjectID) (*domain.MealPlan, error) {
	var plan domain.MealPlan
	err := r.plans.FindOne(ctx, bson.M{"_id": id}).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// GetPlanByOwnerAndWeek retrieves the plan for a specific Monday-aligned week.
func (r *mongoMealPlanRepository) GetPlanByOwnerAndWeek(ctx context.Context, ownerID primitive.ObjectID, weekStart time.Time) (*domain.MealPlan, error) {
	var plan domain.MealPlan
	filter := bson.M{"ownerId": ownerID, "weekStart": weekStart}
	err := r.plans.FindOne(ctx, filter).Decode(&plan)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &plan, nil
}

// GetEntriesByPlanID retrieves all entries of a plan. Order is irrelevant to
// callers (the reconciler builds a grid), so no sort is applied.
func (r *mongoMealPlanRepository) GetEntriesByPlanID(ctx context.Context, planID primitive.ObjectID) ([]domain.MealPlanEntry, error) {
	var entries []domain.MealPlanEntry
	cursor, err := r.entries.Find(ctx, bson.M{"planId": planID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if err = cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// UpsertEntry inserts or replaces the entry occupying the entry's
// (planId, dayOfWeek, mealType) slot. The returned entry carries the
// post-update document, including the slot's stable _id when the slot
// already existed.
func (r *mongoMealPlanRepository) UpsertEntry(ctx context.Context, entry *domain.MealPlanEntry) (*domain.MealPlanEntry, error) {
	if entry.PlanID == primitive.NilObjectID || entry.OwnerID == primitive.NilObjectID {
		return nil, errors.New("entry requires planId and ownerId")
	}
	if entry.DayOfWeek < 0 || entry.DayOfWeek > 6 {
		return nil, errors.New("entry dayOfWeek must be 0-6")
	}
	if !domain.ValidMealType(entry.MealType) {
		return nil, errors.New("entry mealType must be breakfast, lunch or dinner")
	}

	now := time.Now().UTC()
	filter := bson.M{
		"planId":    entry.PlanID,
		"dayOfWeek": entry.DayOfWeek,
		"mealType":  entry.MealType,
	}
	update := bson.M{
		"$set": bson.M{
			"ownerId":   entry.OwnerID,
			"recipe":    entry.Recipe,
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{
			"_id":       primitive.NewObjectID(),
			"planId":    entry.PlanID,
			"dayOfWeek": entry.DayOfWeek,
			"mealType":  entry.MealType,
			"createdAt": now,
		},
	}

	findOptions := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var updated domain.MealPlanEntry
	err := r.entries.FindOneAndUpdate(ctx, filter, update, findOptions).Decode(&updated)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// GetEntryByID retrieves a single entry.
func (r *mongoMealPlanRepository) GetEntryByID(ctx context.Context, id primitive.ObjectID) (*domain.MealPlanEntry, error) {
	var entry domain.MealPlanEntry
	err := r.entries.FindOne(ctx, bson.M{"_id": id}).Decode(&entry)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// DeleteEntry removes an entry, scoped to its plan.
func (r *mongoMealPlanRepository) DeleteEntry(ctx context.Context, entryID, planID primitive.ObjectID) error {
	result, err := r.entries.DeleteOne(ctx, bson.M{"_id": entryID, "planId": planID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// TouchPlan bumps a plan's updatedAt after an entry mutation.
func (r *mongoMealPlanRepository) TouchPlan(ctx context.Context, planID primitive.ObjectID) error {
	update := bson.M{"$set": bson.M{"updatedAt": time.Now().UTC()}}
	result, err := r.plans.UpdateOne(ctx, bson.M{"_id": planID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// EnsureMealPlanIndexes creates necessary indexes. Call during startup.
// The unique entry index is what gives the client-side reconciler its
// at-most-one-entry-per-slot invariant.
func EnsureMealPlanIndexes(ctx context.Context, plans, entries *mongo.Collection) {
	planIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "ownerId", Value: 1}, {Key: "weekStart", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	_, err := plans.Indexes().CreateMany(ctx, planIndexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", plans.Name(), err)
	}

	entryIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "planId", Value: 1},
				{Key: "dayOfWeek", Value: 1},
				{Key: "mealType", Value: 1},
			},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "ownerId", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err = entries.Indexes().CreateMany(ctx, entryIndexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", entries.Name(), err)
	}
}
