package services

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/iamvtyagi/99acres/internal/models"
	"github.com/iamvtyagi/99acres/pkg/email"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type LeadService struct {
	repo       LeadStore
	properties PropertyStore
	users      UserStore
	notifier   Notifier
	mailer     email.Sender
}

func NewLeadService(repo LeadStore, properties PropertyStore, users UserStore, notifier Notifier, mailer email.Sender) *LeadService {
	return &LeadService{
		repo:       repo,
		properties: properties,
		users:      users,
		notifier:   notifier,
		mailer:     mailer,
	}
}

// CreateLeadInput is the public contact form for a listing.
type CreateLeadInput struct {
	PropertyID string `json:"propertyId"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Message    string `json:"message"`
}

// CreateLead stores a lead and alerts the listing owner. submitter is nil for
// anonymous visitors.
func (s *LeadService) CreateLead(ctx context.Context, in CreateLeadInput, submitter *primitive.ObjectID) (*models.Lead, error) {
	propertyID, err := ParseID(in.PropertyID, "property")
	if err != nil {
		return nil, err
	}

	lead := &models.Lead{
		PropertyID: propertyID,
		UserID:     submitter,
		Name:       strings.TrimSpace(in.Name),
		Email:      strings.TrimSpace(in.Email),
		Phone:      strings.TrimSpace(in.Phone),
		Message:    strings.TrimSpace(in.Message),
		Status:     models.LeadNew,
	}
	if err := validateStruct(lead); err != nil {
		return nil, err
	}

	property, err := s.properties.GetPropertyByID(ctx, propertyID)
	if err != nil {
		return nil, notFoundOr(err, "Property not found")
	}

	created, err := s.repo.CreateLead(ctx, lead)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		text := "New lead for your property: " + property.Title
		if err := s.notifier.Notify(ctx, property.OwnerID, models.NotificationLead, text, &created.ID, models.ModelLead); err != nil {
			logrus.WithError(err).WithField("leadID", created.ID.Hex()).Warn("Failed to notify owner about lead")
		}
	}
	s.emailOwner(ctx, property, created)

	return created, nil
}

func (s *LeadService) emailOwner(ctx context.Context, property *models.Property, lead *models.Lead) {
	if s.mailer == nil {
		return
	}
	owner, err := s.users.GetUserByID(ctx, property.OwnerID)
	if err != nil {
		logrus.WithError(err).WithField("ownerID", property.OwnerID.Hex()).Warn("Lead owner lookup failed, email skipped")
		return
	}

	body := fmt.Sprintf(`<h1>New Lead</h1>
<p>You have received a new lead for your property: %s</p>
<p><strong>Name:</strong> %s</p>
<p><strong>Email:</strong> %s</p>
<p><strong>Phone:</strong> %s</p>
<p><strong>Message:</strong> %s</p>`,
		html.EscapeString(property.Title),
		html.EscapeString(lead.Name),
		html.EscapeString(lead.Email),
		html.EscapeString(lead.Phone),
		html.EscapeString(lead.Message),
	)
	if err := s.mailer.SendEmail(owner.Email, "New Lead for Your Property", body); err != nil {
		logrus.WithError(err).WithField("leadID", lead.ID.Hex()).Error("Email could not be sent")
	}
}

// ListForUser returns leads on the caller's listings for sellers, agents and
// admins, and the leads the caller submitted for buyers.
func (s *LeadService) ListForUser(ctx context.Context, userID primitive.ObjectID, role string) ([]models.Lead, error) {
	if models.CanList(role) {
		ids, err := s.properties.ListPropertyIDsByOwner(ctx, userID)
		if err != nil {
			return nil, err
		}
		return s.repo.ListByProperties(ctx, ids)
	}
	return s.repo.ListBySubmitter(ctx, userID)
}

// ListForProperty returns the leads on one listing. Owner or admin only.
func (s *LeadService) ListForProperty(ctx context.Context, propertyIDRaw string, userID primitive.ObjectID, role string) ([]models.Lead, error) {
	propertyID, err := ParseID(propertyIDRaw, "property")
	if err != nil {
		return nil, err
	}
	property, err := s.properties.GetPropertyByID(ctx, propertyID)
	if err != nil {
		return nil, notFoundOr(err, "Property not found")
	}
	if property.OwnerID != userID && role != models.RoleAdmin {
		return nil, forbiddenError("Not authorized to access these leads")
	}
	return s.repo.ListByProperties(ctx, []primitive.ObjectID{propertyID})
}

// UpdateStatus moves a lead through new, contacted and closed.
func (s *LeadService) UpdateStatus(ctx context.Context, leadIDRaw string, userID primitive.ObjectID, role, status string) (*models.Lead, error) {
	leadID, err := ParseID(leadIDRaw, "lead")
	if err != nil {
		return nil, err
	}
	if !models.IsValidLeadStatus(status) {
		return nil, validationError("Status must be one of: new contacted closed")
	}

	lead, err := s.repo.GetLeadByID(ctx, leadID)
	if err != nil {
		return nil, notFoundOr(err, "Lead not found")
	}
	property, err := s.properties.GetPropertyByID(ctx, lead.PropertyID)
	if err != nil {
		return nil, notFoundOr(err, "Property not found")
	}
	if property.OwnerID != userID && role != models.RoleAdmin {
		return nil, forbiddenError("Not authorized to update this lead")
	}

	updated, err := s.repo.UpdateLeadStatus(ctx, leadID, status)
	if err != nil {
		return nil, notFoundOr(err, "Lead not found")
	}
	return updated, nil
}
