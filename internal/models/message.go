package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Message struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ConversationID primitive.ObjectID `bson:"conversation_id" json:"conversationId"`
	SenderID       primitive.ObjectID `bson:"sender_id" json:"senderId"`
	ReceiverID     primitive.ObjectID `bson:"receiver_id" json:"receiverId"`
	Content        string             `bson:"content" json:"content"`
	IsRead         bool               `bson:"is_read" json:"isRead"`
	CreatedAt      time.Time          `bson:"created_at" json:"createdAt"`
}
