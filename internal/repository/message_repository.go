package repository

import (
	"context"
	"time"

	"github.com/iamvtyagi/99acres/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MessageRepository struct {
	collection *mongo.Collection
}

func NewMessageRepository(db *mongo.Database) *MessageRepository {
	return &MessageRepository{collection: db.Collection("messages")}
}

func (r *MessageRepository) CreateMessage(ctx context.Context, msg *models.Message) (*models.Message, error) {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	result, err := r.collection.InsertOne(ctx, msg)
	if err != nil {
		return nil, wrapErr("failed to insert message", err)
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		msg.ID = id
	}
	return msg, nil
}

func (r *MessageRepository) GetMessageByID(ctx context.Context, id primitive.ObjectID) (*models.Message, error) {
	var msg models.Message
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&msg); err != nil {
		return nil, wrapErr("failed to get message", err)
	}
	return &msg, nil
}

// ListByConversation returns messages in creation order.
func (r *MessageRepository) ListByConversation(ctx context.Context, conversationID primitive.ObjectID) ([]models.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"conversation_id": conversationID}, opts)
	if err != nil {
		return nil, wrapErr("failed to list messages", err)
	}
	defer cursor.Close(ctx)

	messages := []models.Message{}
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, wrapErr("failed to decode messages", err)
	}
	return messages, nil
}

// MarkReadForReceiver flips is_read on every unread message of the
// conversation addressed to receiverID.
func (r *MessageRepository) MarkReadForReceiver(ctx context.Context, conversationID, receiverID primitive.ObjectID) (int64, error) {
	filter := bson.M{
		"conversation_id": conversationID,
		"receiver_id":     receiverID,
		"is_read":         false,
	}
	result, err := r.collection.UpdateMany(ctx, filter, bson.M{"$set": bson.M{"is_read": true}})
	if err != nil {
		return 0, wrapErr("failed to mark messages read", err)
	}
	return result.ModifiedCount, nil
}

func (r *MessageRepository) CountUnread(ctx context.Context, conversationID, receiverID primitive.ObjectID) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{
		"conversation_id": conversationID,
		"receiver_id":     receiverID,
		"is_read":         false,
	})
	if err != nil {
		return 0, wrapErr("failed to count unread messages", err)
	}
	return n, nil
}

func (r *MessageRepository) DeleteMessage(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return wrapErr("failed to delete message", err)
	}
	if result.DeletedCount == 0 {
		return wrapErr("failed to delete message", mongo.ErrNoDocuments)
	}
	return nil
}
