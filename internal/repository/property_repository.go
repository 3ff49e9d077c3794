package repository

import (
	"context"
	"regexp"
	"time"

	"github.com/iamvtyagi/99acres/internal/models"
	"github.com/iamvtyagi/99acres/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const maxPropertyPage = 100

// PropertyRepository handles database operations related to listings.
type PropertyRepository struct {
	collection *mongo.Collection
}

func NewPropertyRepository(db *mongo.Database) *PropertyRepository {
	return &PropertyRepository{
		collection: db.Collection("properties"),
	}
}

// CreateProperty inserts a listing.
func (r *PropertyRepository) CreateProperty(ctx context.Context, property *models.Property) (*models.Property, error) {
	now := time.Now()
	property.CreatedAt = now
	property.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, property)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to insert property")
		return nil, wrapErr("failed to insert property", err)
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		property.ID = id
	}

	logger.Log.WithField("property_id", property.ID.Hex()).Info("Property created successfully")
	return property, nil
}

func (r *PropertyRepository) GetPropertyByID(ctx context.Context, id primitive.ObjectID) (*models.Property, error) {
	var property models.Property
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&property); err != nil {
		return nil, wrapErr("failed to get property", err)
	}
	return &property, nil
}

func (r *PropertyRepository) GetPropertiesByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Property, error) {
	if len(ids) == 0 {
		return []models.Property{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find())
}

// ListProperties returns listings matching filter, newest first.
func (r *PropertyRepository) ListProperties(ctx context.Context, filter models.PropertyFilter) ([]models.Property, error) {
	query := bson.M{}
	if filter.Type != "" {
		query["type"] = filter.Type
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.City != "" {
		query["location.city"] = filter.City
	}
	if filter.Featured != nil {
		query["featured"] = *filter.Featured
	}
	if filter.OwnerID != nil {
		query["owner_id"] = *filter.OwnerID
	}
	price := bson.M{}
	if filter.MinPrice > 0 {
		price["$gte"] = filter.MinPrice
	}
	if filter.MaxPrice > 0 {
		price["$lte"] = filter.MaxPrice
	}
	if len(price) > 0 {
		query["price"] = price
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(pageLimit(filter.Limit))
	return r.find(ctx, query, opts)
}

// ListWithinRadius returns listings whose coordinates fall inside a sphere of
// radiusRadians around (lng, lat).
func (r *PropertyRepository) ListWithinRadius(ctx context.Context, lng, lat, radiusRadians float64, limit int64) ([]models.Property, error) {
	query := bson.M{
		"location.coordinates": bson.M{
			"$geoWithin": bson.M{
				"$centerSphere": bson.A{bson.A{lng, lat}, radiusRadians},
			},
		},
	}
	return r.find(ctx, query, options.Find().SetLimit(pageLimit(limit)))
}

// LocatePincode returns the coordinates of a stored listing in pincode. It is
// how a zipcode is placed on the map for radius searches.
func (r *PropertyRepository) LocatePincode(ctx context.Context, pincode string) (*models.GeoPoint, error) {
	filter := bson.M{
		"location.pincode":     pincode,
		"location.coordinates": bson.M{"$exists": true},
	}
	opts := options.FindOne().
		SetProjection(bson.M{"location.coordinates": 1}).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	var property models.Property
	if err := r.collection.FindOne(ctx, filter, opts).Decode(&property); err != nil {
		return nil, wrapErr("failed to locate pincode", err)
	}
	if property.Location.Coordinates == nil || len(property.Location.Coordinates.Coordinates) != 2 {
		return nil, wrapErr("failed to locate pincode", mongo.ErrNoDocuments)
	}
	return property.Location.Coordinates, nil
}

// ListByPincodeOrCity matches listings whose pincode equals term or whose city
// contains it, ignoring case.
func (r *PropertyRepository) ListByPincodeOrCity(ctx context.Context, term string, limit int64) ([]models.Property, error) {
	query := bson.M{
		"$or": bson.A{
			bson.M{"location.pincode": term},
			bson.M{"location.city": primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}},
		},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(pageLimit(limit))
	return r.find(ctx, query, opts)
}

// ListPropertyIDsByOwner returns the ids of every listing owned by ownerID.
func (r *PropertyRepository) ListPropertyIDsByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]primitive.ObjectID, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	props, err := r.find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(props))
	for _, p := range props {
		ids = append(ids, p.ID)
	}
	return ids, nil
}

// UpdateProperty applies a $set and returns the updated listing.
func (r *PropertyRepository) UpdateProperty(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) (*models.Property, error) {
	updates["updated_at"] = time.Now()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var property models.Property
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": updates}, opts).Decode(&property)
	if err != nil {
		logger.Log.WithError(err).WithField("property_id", id.Hex()).Error("Failed to update property")
		return nil, wrapErr("failed to update property", err)
	}
	return &property, nil
}

func (r *PropertyRepository) DeleteProperty(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		logger.Log.WithError(err).WithField("property_id", id.Hex()).Error("Failed to delete property")
		return wrapErr("failed to delete property", err)
	}
	if result.DeletedCount == 0 {
		return wrapErr("failed to delete property", mongo.ErrNoDocuments)
	}

	logger.Log.WithField("property_id", id.Hex()).Info("Property deleted successfully")
	return nil
}

func (r *PropertyRepository) find(ctx context.Context, query bson.M, opts *options.FindOptions) ([]models.Property, error) {
	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, wrapErr("failed to fetch properties", err)
	}
	defer cursor.Close(ctx)

	properties := []models.Property{}
	if err := cursor.All(ctx, &properties); err != nil {
		return nil, wrapErr("failed to decode properties", err)
	}
	return properties, nil
}

func pageLimit(limit int64) int64 {
	if limit <= 0 || limit > maxPropertyPage {
		return maxPropertyPage
	}
	return limit
}
