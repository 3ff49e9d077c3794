package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Lead statuses.
const (
	LeadNew       = "new"
	LeadContacted = "contacted"
	LeadClosed    = "closed"
)

// Lead is a contact request left by a visitor on a property.
type Lead struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	PropertyID primitive.ObjectID  `bson:"property_id" json:"propertyId"`
	UserID     *primitive.ObjectID `bson:"user_id,omitempty" json:"userId,omitempty"`
	Name       string              `bson:"name" json:"name" validate:"required,max=50"`
	Email      string              `bson:"email" json:"email" validate:"required,email"`
	Phone      string              `bson:"phone" json:"phone" validate:"required"`
	Message    string              `bson:"message" json:"message" validate:"max=1000"`
	Status     string              `bson:"status" json:"status"`
	CreatedAt  time.Time           `bson:"created_at" json:"createdAt"`
	UpdatedAt  time.Time           `bson:"updated_at" json:"updatedAt"`
}

func IsValidLeadStatus(s string) bool {
	return s == LeadNew || s == LeadContacted || s == LeadClosed
}
