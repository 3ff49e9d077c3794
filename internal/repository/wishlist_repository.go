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

type WishlistRepository struct {
	collection *mongo.Collection
}

func NewWishlistRepository(db *mongo.Database) *WishlistRepository {
	return &WishlistRepository{collection: db.Collection("wishlists")}
}

// GetOrCreate returns the user's wishlist, creating an empty one on first use.
func (r *WishlistRepository) GetOrCreate(ctx context.Context, userID primitive.ObjectID) (*models.Wishlist, error) {
	now := time.Now()
	update := bson.M{"$setOnInsert": bson.M{
		"property_ids": []primitive.ObjectID{},
		"created_at":   now,
		"updated_at":   now,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var wishlist models.Wishlist
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"user_id": userID}, update, opts).Decode(&wishlist)
	if mongo.IsDuplicateKeyError(err) {
		err = r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&wishlist)
	}
	if err != nil {
		return nil, wrapErr("failed to get wishlist", err)
	}
	return &wishlist, nil
}

func (r *WishlistRepository) GetByUser(ctx context.Context, userID primitive.ObjectID) (*models.Wishlist, error) {
	var wishlist models.Wishlist
	if err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&wishlist); err != nil {
		return nil, wrapErr("failed to get wishlist", err)
	}
	return &wishlist, nil
}

func (r *WishlistRepository) AddProperty(ctx context.Context, userID, propertyID primitive.ObjectID) (*models.Wishlist, error) {
	return r.modify(ctx, userID, bson.M{
		"$addToSet": bson.M{"property_ids": propertyID},
		"$set":      bson.M{"updated_at": time.Now()},
	})
}

func (r *WishlistRepository) RemoveProperty(ctx context.Context, userID, propertyID primitive.ObjectID) (*models.Wishlist, error) {
	return r.modify(ctx, userID, bson.M{
		"$pull": bson.M{"property_ids": propertyID},
		"$set":  bson.M{"updated_at": time.Now()},
	})
}

func (r *WishlistRepository) modify(ctx context.Context, userID primitive.ObjectID, update bson.M) (*models.Wishlist, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var wishlist models.Wishlist
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"user_id": userID}, update, opts).Decode(&wishlist); err != nil {
		return nil, wrapErr("failed to update wishlist", err)
	}
	return &wishlist, nil
}
