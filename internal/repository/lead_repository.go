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

type LeadRepository struct {
	collection *mongo.Collection
}

func NewLeadRepository(db *mongo.Database) *LeadRepository {
	return &LeadRepository{
		collection: db.Collection("leads"),
	}
}

// CreateLead inserts a new lead
func (r *LeadRepository) CreateLead(ctx context.Context, lead *models.Lead) (*models.Lead, error) {
	now := time.Now()
	lead.CreatedAt = now
	lead.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, lead)
	if err != nil {
		logrus.WithError(err).Error("Failed to insert lead")
		return nil, wrapErr("failed to create lead", err)
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		lead.ID = id
	}
	return lead, nil
}

func (r *LeadRepository) GetLeadByID(ctx context.Context, id primitive.ObjectID) (*models.Lead, error) {
	var lead models.Lead
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&lead); err != nil {
		return nil, wrapErr("failed to get lead", err)
	}
	return &lead, nil
}

// ListByProperties returns the leads left on any of the given listings.
func (r *LeadRepository) ListByProperties(ctx context.Context, propertyIDs []primitive.ObjectID) ([]models.Lead, error) {
	if len(propertyIDs) == 0 {
		return []models.Lead{}, nil
	}
	return r.find(ctx, bson.M{"property_id": bson.M{"$in": propertyIDs}})
}

// ListBySubmitter returns the leads an authenticated visitor submitted.
func (r *LeadRepository) ListBySubmitter(ctx context.Context, userID primitive.ObjectID) ([]models.Lead, error) {
	return r.find(ctx, bson.M{"user_id": userID})
}

func (r *LeadRepository) UpdateLeadStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Lead, error) {
	update := bson.M{"$set": bson.M{"status": status, "updated_at": time.Now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var lead models.Lead
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&lead); err != nil {
		return nil, wrapErr("failed to update lead", err)
	}
	return &lead, nil
}

func (r *LeadRepository) find(ctx context.Context, filter bson.M) ([]models.Lead, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, wrapErr("failed to fetch leads", err)
	}
	defer cursor.Close(ctx)

	leads := []models.Lead{}
	if err := cursor.All(ctx, &leads); err != nil {
		return nil, wrapErr("failed to decode leads", err)
	}
	return leads, nil
}
