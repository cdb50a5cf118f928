// internal/repository/mongo/chat_repo.go
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
	chatMessageCollectionName  = "chat_messages"
	chatProposalCollectionName = "chat_proposals"
)

// mongoChatRepository implements repository.ChatRepository
type mongoChatRepository struct {
	messages  *mongo.Collection
	proposals *mongo.Collection
}

// NewMongoChatRepository creates a new Chat repository.
func NewMongoChatRepository(db *mongo.Database) repository.ChatRepository {
	return &mongoChatRepository{
		messages:  db.Collection(chatMessageCollectionName),
		proposals: db.Collection(chatProposalCollectionName),
	}
}

// InsertMessage appends one message to a recipe's conversation.
func (r *mongoChatRepository) InsertMessage(ctx context.Context, msg *domain.ChatMessage) (primitive.ObjectID, error) {
	if msg.RecipeID == primitive.NilObjectID || msg.OwnerID == primitive.NilObjectID || msg.Content == "" {
		return primitive.NilObjectID, errors.New("chat message requires recipeId, ownerId and content")
	}
	msg.ID = primitive.NewObjectID()
	msg.CreatedAt = time.Now().UTC()

	result, err := r.messages.InsertOne(ctx, msg)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted message ID")
	}
	return insertedID, nil
}

// GetMessagesByRecipe retrieves the most recent messages of a recipe's
// conversation in chronological order.
func (r *mongoChatRepository) GetMessagesByRecipe(ctx context.Context, recipeID, ownerID primitive.ObjectID, limit int) ([]domain.ChatMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	filter := bson.M{"recipeId": recipeID, "ownerId": ownerID}
	// Fetch newest-first with the limit, then reverse for display order.
	findOptions := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.messages.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var newestFirst []domain.ChatMessage
	if err = cursor.All(ctx, &newestFirst); err != nil {
		return nil, err
	}
	if err = cursor.Err(); err != nil {
		return nil, err
	}

	messages := make([]domain.ChatMessage, len(newestFirst))
	for i, m := range newestFirst {
		messages[len(newestFirst)-1-i] = m
	}
	return messages, nil
}

// CreateProposal inserts a pending tool proposal.
func (r *mongoChatRepository) CreateProposal(ctx context.Context, proposal *domain.ChatProposal) (primitive.ObjectID, error) {
	if proposal.RecipeID == primitive.NilObjectID || proposal.OwnerID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("proposal requires recipeId and ownerId")
	}
	proposal.ID = primitive.NewObjectID()
	proposal.Status = domain.ProposalPending
	now := time.Now().UTC()
	proposal.CreatedAt = now
	proposal.UpdatedAt = now

	result, err := r.proposals.InsertOne(ctx, proposal)
	if err != nil {
		return primitive.NilObjectID, err
	}
	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, errors.New("failed to convert inserted proposal ID")
	}
	return insertedID, nil
}

// GetProposalByID retrieves a single proposal.
func (r *mongoChatRepository) GetProposalByID(ctx context.Context, id primitive.ObjectID) (*domain.ChatProposal, error) {
	var proposal domain.ChatProposal
	err := r.proposals.FindOne(ctx, bson.M{"_id": id}).Decode(&proposal)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &proposal, nil
}

// ResolveProposal transitions a pending proposal to applied/rejected.
// The status filter makes the transition single-shot: a second resolve on
// the same proposal matches nothing and reports ErrConflict.
func (r *mongoChatRepository) ResolveProposal(ctx context.Context, id primitive.ObjectID, status domain.ProposalStatus) error {
	if status != domain.ProposalApplied && status != domain.ProposalRejected {
		return errors.New("proposal can only be resolved to applied or rejected")
	}

	filter := bson.M{"_id": id, "status": domain.ProposalPending}
	update := bson.M{
		"$set": bson.M{
			"status":    status,
			"updatedAt": time.Now().UTC(),
		},
	}

	result, err := r.proposals.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		// Distinguish "gone" from "already resolved".
		if _, getErr := r.GetProposalByID(ctx, id); getErr != nil {
			return getErr
		}
		return repository.ErrConflict
	}
	return nil
}

// ReopenProposal moves an applied proposal back to pending. Used to undo a
// claimed confirmation whose action could not be applied.
func (r *mongoChatRepository) ReopenProposal(ctx context.Context, id primitive.ObjectID) error {
	filter := bson.M{"_id": id, "status": domain.ProposalApplied}
	update := bson.M{
		"$set": bson.M{
			"status":    domain.ProposalPending,
			"updatedAt": time.Now().UTC(),
		},
	}

	result, err := r.proposals.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		if _, getErr := r.GetProposalByID(ctx, id); getErr != nil {
			return getErr
		}
		return repository.ErrConflict
	}
	return nil
}

// EnsureChatIndexes creates necessary indexes. Call during startup.
func EnsureChatIndexes(ctx context.Context, messages, proposals *mongo.Collection) {
	messageIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "recipeId", Value: 1},
				{Key: "ownerId", Value: 1},
				{Key: "createdAt", Value: -1},
			},
			Options: options.Index(),
		},
	}
	_, err := messages.Indexes().CreateMany(ctx, messageIndexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", messages.Name(), err)
	}

	proposalIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "recipeId", Value: 1}, {Key: "status", Value: 1}},
			Options: options.Index(),
		},
	}
	_, err = proposals.Indexes().CreateMany(ctx, proposalIndexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", proposals.Name(), err)
	}
}
