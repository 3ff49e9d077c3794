package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Wishlist holds the properties a user saved. There is one per user.
type Wishlist struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID   `bson:"user_id" json:"userId"`
	PropertyIDs []primitive.ObjectID `bson:"property_ids" json:"propertyIds"`
	CreatedAt   time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updated_at" json:"updatedAt"`
}

func (w *Wishlist) Contains(propertyID primitive.ObjectID) bool {
	for _, id := range w.PropertyIDs {
		if id == propertyID {
			return true
		}
	}
	return false
}

// WishlistView is a wishlist with its properties populated.
type WishlistView struct {
	*Wishlist
	Properties []PropertyView `json:"properties"`
}
