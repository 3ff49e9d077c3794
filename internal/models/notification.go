package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification types.
const (
	NotificationMessage  = "message"
	NotificationProperty = "property"
	NotificationLead     = "lead"
	NotificationSystem   = "system"
	NotificationReview   = "review"
)

// Collections a notification can point at through RelatedID.
const (
	ModelUser     = "User"
	ModelProperty = "Property"
	ModelMessage  = "Message"
	ModelLead     = "Lead"
	ModelReview   = "Review"
)

type Notification struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID  `bson:"user_id" json:"userId"`
	Type      string              `bson:"type" json:"type"`
	Message   string              `bson:"message" json:"message"`
	RelatedID *primitive.ObjectID `bson:"related_id,omitempty" json:"relatedId,omitempty"`
	OnModel   string              `bson:"on_model,omitempty" json:"onModel,omitempty"` // discriminator for RelatedID
	IsRead    bool                `bson:"is_read" json:"isRead"`
	CreatedAt time.Time           `bson:"created_at" json:"createdAt"`
}

func IsValidNotificationType(t string) bool {
	switch t {
	case NotificationMessage, NotificationProperty, NotificationLead, NotificationSystem, NotificationReview:
		return true
	}
	return false
}

func IsValidNotificationModel(m string) bool {
	switch m {
	case ModelUser, ModelProperty, ModelMessage, ModelLead, ModelReview:
		return true
	}
	return false
}
