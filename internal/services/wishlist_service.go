package services

import (
	"context"
	"errors"

	"github.com/iamvtyagi/99acres/internal/models"
	"github.com/iamvtyagi/99acres/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WishlistService struct {
	repo       WishlistStore
	properties PropertyStore
}

func NewWishlistService(repo WishlistStore, properties PropertyStore) *WishlistService {
	return &WishlistService{repo: repo, properties: properties}
}

// GetWishlist returns the user's wishlist with its properties, creating an
// empty one on first access.
func (s *WishlistService) GetWishlist(ctx context.Context, userID primitive.ObjectID) (*models.WishlistView, error) {
	wishlist, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, wishlist)
}

func (s *WishlistService) AddProperty(ctx context.Context, userID primitive.ObjectID, propertyIDRaw string) (*models.WishlistView, error) {
	propertyID, err := ParseID(propertyIDRaw, "property")
	if err != nil {
		return nil, err
	}
	if _, err := s.properties.GetPropertyByID(ctx, propertyID); err != nil {
		return nil, notFoundOr(err, "Property not found")
	}

	wishlist, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	if wishlist.Contains(propertyID) {
		return nil, validationError("Property already in wishlist")
	}

	wishlist, err = s.repo.AddProperty(ctx, userID, propertyID)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, wishlist)
}

func (s *WishlistService) RemoveProperty(ctx context.Context, userID primitive.ObjectID, propertyIDRaw string) (*models.WishlistView, error) {
	propertyID, err := ParseID(propertyIDRaw, "property")
	if err != nil {
		return nil, err
	}

	wishlist, err := s.repo.GetByUser(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFoundError("Wishlist not found")
	}
	if err != nil {
		return nil, err
	}
	if !wishlist.Contains(propertyID) {
		return nil, validationError("Property not in wishlist")
	}

	wishlist, err = s.repo.RemoveProperty(ctx, userID, propertyID)
	if err != nil {
		return nil, err
	}
	return s.populate(ctx, wishlist)
}

// populate resolves property ids in wishlist order, skipping deleted listings.
func (s *WishlistService) populate(ctx context.Context, wishlist *models.Wishlist) (*models.WishlistView, error) {
	props, err := s.properties.GetPropertiesByIDs(ctx, wishlist.PropertyIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]*models.Property, len(props))
	for i := range props {
		byID[props[i].ID] = &props[i]
	}

	view := &models.WishlistView{Wishlist: wishlist, Properties: []models.PropertyView{}}
	for _, id := range wishlist.PropertyIDs {
		if p, ok := byID[id]; ok {
			view.Properties = append(view.Properties, models.PropertyView{Property: p})
		}
	}
	return view, nil
}
