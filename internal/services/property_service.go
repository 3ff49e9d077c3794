package services

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/iamvtyagi/99acres/internal/models"
	"github.com/iamvtyagi/99acres/internal/repository"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Earth radius used to turn a distance in miles into $centerSphere radians.
const earthRadiusMiles = 3963.0

type PropertyService struct {
	repo  PropertyStore
	users UserStore
}

func NewPropertyService(repo PropertyStore, users UserStore) *PropertyService {
	return &PropertyService{repo: repo, users: users}
}

// CreateProperty publishes a listing owned by ownerID.
func (s *PropertyService) CreateProperty(ctx context.Context, ownerID primitive.ObjectID, role string, property *models.Property) (*models.Property, error) {
	if !models.CanList(role) {
		return nil, forbiddenError("User role " + role + " is not authorized to create a property")
	}

	property.ID = primitive.NilObjectID
	property.OwnerID = ownerID
	property.Featured = true
	property.Verified = false
	if len(property.Images) == 0 {
		property.Images = []string{models.DefaultPropertyImage}
	}
	if property.Amenities == nil {
		property.Amenities = []string{}
	}
	if err := validateStruct(property); err != nil {
		return nil, err
	}

	created, err := s.repo.CreateProperty(ctx, property)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"propertyID": created.ID.Hex(),
		"ownerID":    ownerID.Hex(),
	}).Info("Property listed")
	return created, nil
}

// GetProperty returns a listing with its owner populated.
func (s *PropertyService) GetProperty(ctx context.Context, idRaw string) (*models.PropertyView, error) {
	id, err := ParseID(idRaw, "property")
	if err != nil {
		return nil, err
	}
	property, err := s.repo.GetPropertyByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Property not found with id of "+idRaw)
	}

	views, err := s.withOwners(ctx, []models.Property{*property})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListProperties returns listings matching filter with owners populated.
func (s *PropertyService) ListProperties(ctx context.Context, filter models.PropertyFilter) ([]models.PropertyView, error) {
	if filter.MinPrice < 0 || filter.MaxPrice < 0 || (filter.MaxPrice > 0 && filter.MinPrice > filter.MaxPrice) {
		return nil, validationError("Invalid price range")
	}
	props, err := s.repo.ListProperties(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.withOwners(ctx, props)
}

// ListWithinRadius finds listings within distanceMiles of (lat, lng).
func (s *PropertyService) ListWithinRadius(ctx context.Context, lat, lng, distanceMiles float64, limit int64) ([]models.Property, error) {
	if !finite(lat) || !finite(lng) || lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, validationError("Invalid coordinates")
	}
	if err := checkDistance(distanceMiles); err != nil {
		return nil, err
	}
	return s.repo.ListWithinRadius(ctx, lng, lat, distanceMiles/earthRadiusMiles, limit)
}

// RadiusSearch is the result of a zipcode radius search. Fallback is set when
// the zipcode could not be placed on the map and listings were matched by
// pincode or city instead.
type RadiusSearch struct {
	Properties []models.Property
	Fallback   bool
}

// ListWithinZipcode finds listings within distanceMiles of zipcode. The
// zipcode is placed using a stored listing in that pincode; when none has
// coordinates the search falls back to a pincode or city match.
func (s *PropertyService) ListWithinZipcode(ctx context.Context, zipcode string, distanceMiles float64) (*RadiusSearch, error) {
	zipcode = strings.TrimSpace(zipcode)
	if zipcode == "" {
		return nil, validationError("Invalid zipcode")
	}
	if err := checkDistance(distanceMiles); err != nil {
		return nil, err
	}

	point, err := s.repo.LocatePincode(ctx, zipcode)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		props, err := s.repo.ListByPincodeOrCity(ctx, zipcode, 0)
		if err != nil {
			return nil, err
		}
		logrus.WithField("zipcode", zipcode).Info("Zipcode not located, using pincode/city match")
		return &RadiusSearch{Properties: props, Fallback: true}, nil
	case err != nil:
		return nil, err
	}

	lng, lat := point.Coordinates[0], point.Coordinates[1]
	props, err := s.repo.ListWithinRadius(ctx, lng, lat, distanceMiles/earthRadiusMiles, 0)
	if err != nil {
		return nil, err
	}
	return &RadiusSearch{Properties: props}, nil
}

func checkDistance(d float64) error {
	if !finite(d) || d <= 0 {
		return validationError("Distance must be a positive number")
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// UpdatePropertyInput is a partial update; nil fields are left unchanged.
type UpdatePropertyInput struct {
	Title       *string          `json:"title"`
	Description *string          `json:"description"`
	Price       *float64         `json:"price"`
	Location    *models.Location `json:"location"`
	Type        *string          `json:"type"`
	Status      *string          `json:"status"`
	Bedrooms    *int             `json:"bedrooms"`
	Bathrooms   *int             `json:"bathrooms"`
	Size        *float64         `json:"size"`
	Amenities   []string         `json:"amenities"`
	Featured    *bool            `json:"featured"`
}

// UpdateProperty applies in to a listing owned by the caller (or any listing
// for an admin).
func (s *PropertyService) UpdateProperty(ctx context.Context, idRaw string, userID primitive.ObjectID, role string, in UpdatePropertyInput) (*models.Property, error) {
	property, err := s.ownedProperty(ctx, idRaw, userID, role, "update")
	if err != nil {
		return nil, err
	}

	next := *property
	updates := map[string]interface{}{}
	if in.Title != nil {
		next.Title = *in.Title
		updates["title"] = *in.Title
	}
	if in.Description != nil {
		next.Description = *in.Description
		updates["description"] = *in.Description
	}
	if in.Price != nil {
		next.Price = *in.Price
		updates["price"] = *in.Price
	}
	if in.Location != nil {
		next.Location = *in.Location
		updates["location"] = *in.Location
	}
	if in.Type != nil {
		next.Type = *in.Type
		updates["type"] = *in.Type
	}
	if in.Status != nil {
		next.Status = *in.Status
		updates["status"] = *in.Status
	}
	if in.Bedrooms != nil {
		next.Bedrooms = *in.Bedrooms
		updates["bedrooms"] = *in.Bedrooms
	}
	if in.Bathrooms != nil {
		next.Bathrooms = *in.Bathrooms
		updates["bathrooms"] = *in.Bathrooms
	}
	if in.Size != nil {
		next.Size = *in.Size
		updates["size"] = *in.Size
	}
	if in.Amenities != nil {
		next.Amenities = in.Amenities
		updates["amenities"] = in.Amenities
	}
	if in.Featured != nil {
		next.Featured = *in.Featured
		updates["featured"] = *in.Featured
	}
	if len(updates) == 0 {
		return property, nil
	}
	if err := validateStruct(&next); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateProperty(ctx, property.ID, updates)
	if err != nil {
		return nil, notFoundOr(err, "Property not found with id of "+idRaw)
	}
	return updated, nil
}

func (s *PropertyService) DeleteProperty(ctx context.Context, idRaw string, userID primitive.ObjectID, role string) error {
	property, err := s.ownedProperty(ctx, idRaw, userID, role, "delete")
	if err != nil {
		return err
	}
	if err := s.repo.DeleteProperty(ctx, property.ID); err != nil {
		return notFoundOr(err, "Property not found with id of "+idRaw)
	}
	return nil
}

// ownedProperty loads a listing and checks that userID may modify it.
func (s *PropertyService) ownedProperty(ctx context.Context, idRaw string, userID primitive.ObjectID, role, action string) (*models.Property, error) {
	id, err := ParseID(idRaw, "property")
	if err != nil {
		return nil, err
	}
	property, err := s.repo.GetPropertyByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "Property not found with id of "+idRaw)
	}
	if property.OwnerID != userID && role != models.RoleAdmin {
		logrus.WithFields(logrus.Fields{
			"propertyID": id.Hex(),
			"userID":     userID.Hex(),
		}).Warn("Rejected property " + action + " by non-owner")
		return nil, forbiddenError("User " + userID.Hex() + " is not authorized to " + action + " this property")
	}
	return property, nil
}

func (s *PropertyService) withOwners(ctx context.Context, props []models.Property) ([]models.PropertyView, error) {
	seen := map[primitive.ObjectID]bool{}
	ownerIDs := []primitive.ObjectID{}
	for _, p := range props {
		if !seen[p.OwnerID] {
			seen[p.OwnerID] = true
			ownerIDs = append(ownerIDs, p.OwnerID)
		}
	}

	owners := map[primitive.ObjectID]models.PublicUser{}
	if len(ownerIDs) > 0 {
		users, err := s.users.GetUsersByIDs(ctx, ownerIDs)
		if err != nil {
			return nil, err
		}
		for i := range users {
			owners[users[i].ID] = users[i].Public()
		}
	}

	views := make([]models.PropertyView, 0, len(props))
	for i := range props {
		view := models.PropertyView{Property: &props[i]}
		if owner, ok := owners[props[i].OwnerID]; ok {
			view.Owner = &owner
		}
		views = append(views, view)
	}
	return views, nil
}
