package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var PropertyTypes = []string{"flat", "house", "villa", "plot", "commercial", "office", "shop"}

const (
	ListingRent = "rent"
	ListingSale = "sale"
)

const DefaultPropertyImage = "default-property.jpg"

type Property struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title" validate:"required,max=100"`
	Description string             `bson:"description" json:"description" validate:"required,max=2000"`
	Price       float64            `bson:"price" json:"price" validate:"required,gt=0"`
	Location    Location           `bson:"location" json:"location"`
	Type        string             `bson:"type" json:"type" validate:"required,oneof=flat house villa plot commercial office shop"`
	Status      string             `bson:"status" json:"status" validate:"required,oneof=rent sale"`
	Bedrooms    int                `bson:"bedrooms" json:"bedrooms" validate:"gte=0"`
	Bathrooms   int                `bson:"bathrooms" json:"bathrooms" validate:"gte=0"`
	Size        float64            `bson:"size" json:"size" validate:"required,gt=0"`
	Amenities   []string           `bson:"amenities" json:"amenities"`
	Images      []string           `bson:"images" json:"images"`
	OwnerID     primitive.ObjectID `bson:"owner_id" json:"ownerId"`
	Featured    bool               `bson:"featured" json:"featured"`
	Verified    bool               `bson:"verified" json:"verified"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}

type Location struct {
	Address     string    `bson:"address" json:"address" validate:"required"`
	City        string    `bson:"city" json:"city" validate:"required"`
	State       string    `bson:"state" json:"state" validate:"required"`
	Pincode     string    `bson:"pincode" json:"pincode" validate:"required,len=6,numeric"`
	Coordinates *GeoPoint `bson:"coordinates,omitempty" json:"coordinates,omitempty"`
}

// GeoPoint is a GeoJSON point; Coordinates is [longitude, latitude].
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates" validate:"len=2"`
}

func NewGeoPoint(lng, lat float64) *GeoPoint {
	return &GeoPoint{Type: "Point", Coordinates: []float64{lng, lat}}
}

// PropertyView is a property with its owner populated.
type PropertyView struct {
	*Property
	Owner *PublicUser `json:"owner,omitempty"`
}

// PropertyFilter narrows property listings.
type PropertyFilter struct {
	Type     string
	Status   string
	City     string
	Featured *bool
	MinPrice float64
	MaxPrice float64
	OwnerID  *primitive.ObjectID
	Limit    int64
}
