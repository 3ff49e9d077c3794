package testutil

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iamvtyagi/99acres/internal/models"
	"github.com/iamvtyagi/99acres/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PropertyStore keeps listings in a map keyed by id.
type PropertyStore struct {
	mu    sync.Mutex
	props map[primitive.ObjectID]models.Property
	clock func() time.Time
}

func NewPropertyStore() *PropertyStore {
	return &PropertyStore{props: map[primitive.ObjectID]models.Property{}, clock: newClock()}
}

// Add stores a copy of p, assigning an id when missing.
func (s *PropertyStore) Add(p models.Property) *models.Property {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.clock()
	}
	s.props[p.ID] = p
	return &p
}

func (s *PropertyStore) CreateProperty(ctx context.Context, property *models.Property) (*models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	property.ID = primitive.NewObjectID()
	property.CreatedAt = s.clock()
	property.UpdatedAt = property.CreatedAt
	s.props[property.ID] = *property
	return property, nil
}

func (s *PropertyStore) GetPropertyByID(ctx context.Context, id primitive.ObjectID) (*models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.props[id]
	if !ok {
		return nil, notFound("property")
	}
	return &p, nil
}

func (s *PropertyStore) GetPropertiesByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Property{}
	for _, id := range ids {
		if p, ok := s.props[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *PropertyStore) ListProperties(ctx context.Context, f models.PropertyFilter) ([]models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Property{}
	for _, p := range s.props {
		switch {
		case f.Type != "" && p.Type != f.Type,
			f.Status != "" && p.Status != f.Status,
			f.City != "" && p.Location.City != f.City,
			f.Featured != nil && p.Featured != *f.Featured,
			f.OwnerID != nil && p.OwnerID != *f.OwnerID,
			f.MinPrice > 0 && p.Price < f.MinPrice,
			f.MaxPrice > 0 && p.Price > f.MaxPrice:
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if f.Limit > 0 && int64(len(out)) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// ListWithinRadius uses the haversine distance on a unit sphere, which is
// what $centerSphere compares against.
func (s *PropertyStore) ListWithinRadius(ctx context.Context, lng, lat, radiusRadians float64, limit int64) ([]models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Property{}
	for _, p := range s.props {
		c := p.Location.Coordinates
		if c == nil || len(c.Coordinates) != 2 {
			continue
		}
		if angularDistance(lng, lat, c.Coordinates[0], c.Coordinates[1]) <= radiusRadians {
			out = append(out, p)
		}
	}
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

// LocatePincode returns the coordinates of the newest listing in pincode.
func (s *PropertyStore) LocatePincode(ctx context.Context, pincode string) (*models.GeoPoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var found *models.Property
	for id := range s.props {
		p := s.props[id]
		c := p.Location.Coordinates
		if p.Location.Pincode != pincode || c == nil || len(c.Coordinates) != 2 {
			continue
		}
		if found == nil || p.CreatedAt.After(found.CreatedAt) {
			found = &p
		}
	}
	if found == nil {
		return nil, notFound("pincode")
	}
	return found.Location.Coordinates, nil
}

func (s *PropertyStore) ListByPincodeOrCity(ctx context.Context, term string, limit int64) ([]models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Property{}
	needle := strings.ToLower(term)
	for _, p := range s.props {
		if p.Location.Pincode == term || strings.Contains(strings.ToLower(p.Location.City), needle) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *PropertyStore) ListPropertyIDsByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]primitive.ObjectID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := []primitive.ObjectID{}
	for id, p := range s.props {
		if p.OwnerID == ownerID {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *PropertyStore) UpdateProperty(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) (*models.Property, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.props[id]
	if !ok {
		return nil, notFound("property")
	}
	for k, v := range updates {
		switch k {
		case "title":
			p.Title = v.(string)
		case "description":
			p.Description = v.(string)
		case "price":
			p.Price = v.(float64)
		case "location":
			p.Location = v.(models.Location)
		case "type":
			p.Type = v.(string)
		case "status":
			p.Status = v.(string)
		case "bedrooms":
			p.Bedrooms = v.(int)
		case "bathrooms":
			p.Bathrooms = v.(int)
		case "size":
			p.Size = v.(float64)
		case "amenities":
			p.Amenities = v.([]string)
		case "featured":
			p.Featured = v.(bool)
		}
	}
	p.UpdatedAt = s.clock()
	s.props[id] = p
	return &p, nil
}

func (s *PropertyStore) DeleteProperty(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.props[id]; !ok {
		return notFound("property")
	}
	delete(s.props, id)
	return nil
}

func angularDistance(lng1, lat1, lng2, lat2 float64) float64 {
	rad := math.Pi / 180
	dLat := (lat2 - lat1) * rad
	dLng := (lng2 - lng1) * rad
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * math.Asin(math.Sqrt(h))
}

// LeadStore keeps leads in insertion order.
type LeadStore struct {
	mu    sync.Mutex
	leads []models.Lead
}

func NewLeadStore() *LeadStore { return &LeadStore{} }

func (s *LeadStore) CreateLead(ctx context.Context, lead *models.Lead) (*models.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lead.ID = primitive.NewObjectID()
	lead.CreatedAt = time.Now()
	lead.UpdatedAt = lead.CreatedAt
	s.leads = append(s.leads, *lead)
	return lead, nil
}

func (s *LeadStore) GetLeadByID(ctx context.Context, id primitive.ObjectID) (*models.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.leads {
		if l.ID == id {
			return &l, nil
		}
	}
	return nil, notFound("lead")
}

func (s *LeadStore) ListByProperties(ctx context.Context, propertyIDs []primitive.ObjectID) ([]models.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := map[primitive.ObjectID]bool{}
	for _, id := range propertyIDs {
		want[id] = true
	}
	out := []models.Lead{}
	for i := len(s.leads) - 1; i >= 0; i-- {
		if want[s.leads[i].PropertyID] {
			out = append(out, s.leads[i])
		}
	}
	return out, nil
}

func (s *LeadStore) ListBySubmitter(ctx context.Context, userID primitive.ObjectID) ([]models.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Lead{}
	for i := len(s.leads) - 1; i >= 0; i-- {
		if l := s.leads[i]; l.UserID != nil && *l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *LeadStore) UpdateLeadStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.leads {
		if s.leads[i].ID == id {
			s.leads[i].Status = status
			s.leads[i].UpdatedAt = time.Now()
			l := s.leads[i]
			return &l, nil
		}
	}
	return nil, notFound("lead")
}

// WishlistStore keeps one wishlist per user.
type WishlistStore struct {
	mu    sync.Mutex
	lists map[primitive.ObjectID]*models.Wishlist
}

func NewWishlistStore() *WishlistStore {
	return &WishlistStore{lists: map[primitive.ObjectID]*models.Wishlist{}}
}

func (s *WishlistStore) GetOrCreate(ctx context.Context, userID primitive.ObjectID) (*models.Wishlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.lists[userID]
	if !ok {
		now := time.Now()
		w = &models.Wishlist{
			ID:          primitive.NewObjectID(),
			UserID:      userID,
			PropertyIDs: []primitive.ObjectID{},
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		s.lists[userID] = w
	}
	return copyWishlist(w), nil
}

func (s *WishlistStore) GetByUser(ctx context.Context, userID primitive.ObjectID) (*models.Wishlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.lists[userID]
	if !ok {
		return nil, fmt.Errorf("wishlist: %w", repository.ErrNotFound)
	}
	return copyWishlist(w), nil
}

func (s *WishlistStore) AddProperty(ctx context.Context, userID, propertyID primitive.ObjectID) (*models.Wishlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.lists[userID]
	if !ok {
		return nil, notFound("wishlist")
	}
	if !w.Contains(propertyID) {
		w.PropertyIDs = append(w.PropertyIDs, propertyID)
	}
	return copyWishlist(w), nil
}

func (s *WishlistStore) RemoveProperty(ctx context.Context, userID, propertyID primitive.ObjectID) (*models.Wishlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.lists[userID]
	if !ok {
		return nil, notFound("wishlist")
	}
	kept := w.PropertyIDs[:0]
	for _, id := range w.PropertyIDs {
		if id != propertyID {
			kept = append(kept, id)
		}
	}
	w.PropertyIDs = kept
	return copyWishlist(w), nil
}

func copyWishlist(w *models.Wishlist) *models.Wishlist {
	cp := *w
	cp.PropertyIDs = append([]primitive.ObjectID{}, w.PropertyIDs...)
	return &cp
}
