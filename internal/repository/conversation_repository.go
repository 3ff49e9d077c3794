package repository

import (
	"context"
	"time"

	"github.com/iamvtyagi/99acres/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ConversationRepository struct {
	collection *mongo.Collection
}

func NewConversationRepository(db *mongo.Database) *ConversationRepository {
	return &ConversationRepository{collection: db.Collection("conversations")}
}

// FindOrCreate returns the conversation for the unordered pair (x, y), creating
// it in canonical slot order when missing. The upsert is a single atomic
// findAndModify; if a concurrent upsert for the same pair wins the unique index,
// the winner's document is returned.
func (r *ConversationRepository) FindOrCreate(ctx context.Context, x, y primitive.ObjectID) (*models.Conversation, error) {
	a, b := models.CanonicalPair(x, y)
	now := time.Now()

	filter := bson.M{"participant_a": a, "participant_b": b}
	update := bson.M{"$setOnInsert": bson.M{
		"last_message":   "",
		"unread_count_a": 0,
		"unread_count_b": 0,
		"created_at":     now,
		"updated_at":     now,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var conv models.Conversation
	err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&conv)
	if mongo.IsDuplicateKeyError(err) {
		logrus.WithFields(logrus.Fields{
			"participantA": a.Hex(),
			"participantB": b.Hex(),
		}).Info("Concurrent conversation upsert lost the race, reading winner")
		err = r.collection.FindOne(ctx, filter).Decode(&conv)
	}
	if err != nil {
		return nil, wrapErr("failed to find or create conversation", err)
	}
	return &conv, nil
}

// FindBetween looks up the conversation between x and y in either slot order.
func (r *ConversationRepository) FindBetween(ctx context.Context, x, y primitive.ObjectID) (*models.Conversation, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"participant_a": x, "participant_b": y},
			{"participant_a": y, "participant_b": x},
		},
	}

	var conv models.Conversation
	if err := r.collection.FindOne(ctx, filter).Decode(&conv); err != nil {
		return nil, wrapErr("failed to find conversation", err)
	}
	return &conv, nil
}

func (r *ConversationRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Conversation, error) {
	var conv models.Conversation
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&conv); err != nil {
		return nil, wrapErr("failed to get conversation", err)
	}
	return &conv, nil
}

// ListForUser returns the user's conversations, most recently updated first.
func (r *ConversationRepository) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Conversation, error) {
	filter := bson.M{
		"$or": []bson.M{
			{"participant_a": userID},
			{"participant_b": userID},
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, wrapErr("failed to list conversations", err)
	}
	defer cursor.Close(ctx)

	convs := []models.Conversation{}
	if err := cursor.All(ctx, &convs); err != nil {
		return nil, wrapErr("failed to decode conversations", err)
	}
	return convs, nil
}

// ListAll returns every conversation. Used by the reconciliation job.
func (r *ConversationRepository) ListAll(ctx context.Context) ([]models.Conversation, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, wrapErr("failed to list conversations", err)
	}
	defer cursor.Close(ctx)

	convs := []models.Conversation{}
	if err := cursor.All(ctx, &convs); err != nil {
		return nil, wrapErr("failed to decode conversations", err)
	}
	return convs, nil
}

// RecordMessage stores the preview, bumps updated_at and increments the given
// unread counter in one single-document update.
func (r *ConversationRepository) RecordMessage(ctx context.Context, id primitive.ObjectID, preview, unreadField string) (*models.Conversation, error) {
	update := bson.M{
		"$set": bson.M{"last_message": preview, "updated_at": time.Now()},
		"$inc": bson.M{unreadField: 1},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var conv models.Conversation
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&conv); err != nil {
		return nil, wrapErr("failed to record message on conversation", err)
	}
	return &conv, nil
}

// ResetUnread zeroes one participant's unread counter.
func (r *ConversationRepository) ResetUnread(ctx context.Context, id primitive.ObjectID, unreadField string) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{unreadField: 0}})
	return wrapErr("failed to reset unread counter", err)
}

// SetUnreadCounts overwrites both counters, but only while they still hold the
// observed values. It reports false when a concurrent write got there first.
func (r *ConversationRepository) SetUnreadCounts(ctx context.Context, id primitive.ObjectID, observedA, observedB, countA, countB int) (bool, error) {
	filter := bson.M{
		"_id":               id,
		models.UnreadFieldA: observedA,
		models.UnreadFieldB: observedB,
	}
	result, err := r.collection.UpdateOne(ctx, filter, bson.M{"$set": bson.M{
		models.UnreadFieldA: countA,
		models.UnreadFieldB: countB,
	}})
	if err != nil {
		return false, wrapErr("failed to set unread counters", err)
	}
	return result.MatchedCount > 0, nil
}
