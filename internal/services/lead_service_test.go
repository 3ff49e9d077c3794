package services

import (
	"context"
	"testing"

	"github.com/iamvtyagi/99acres/internal/models"
	"github.com/iamvtyagi/99acres/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type leadFixture struct {
	svc           *LeadService
	notifications *testutil.NotificationStore
	mailer        *testutil.RecordingMailer
	owner, buyer  *models.User
	property      *models.Property
}

func newLeadFixture() *leadFixture {
	users := testutil.NewUserStore()
	props := testutil.NewPropertyStore()
	f := &leadFixture{
		notifications: testutil.NewNotificationStore(),
		mailer:        &testutil.RecordingMailer{},
	}
	f.owner = users.Add(models.User{Name: "Seller", Email: "seller@example.com", Role: models.RoleSeller})
	f.buyer = users.Add(models.User{Name: "Buyer", Email: "buyer@example.com", Role: models.RoleBuyer})
	f.property = props.Add(models.Property{Title: "Sea view villa", OwnerID: f.owner.ID})
	f.svc = NewLeadService(testutil.NewLeadStore(), props, users, NewNotificationService(f.notifications), f.mailer)
	return f
}

func (f *leadFixture) input() CreateLeadInput {
	return CreateLeadInput{
		PropertyID: f.property.ID.Hex(),
		Name:       "Ravi",
		Email:      "ravi@example.com",
		Phone:      "9000000000",
		Message:    "Can I visit <on Sunday>?",
	}
}

func TestCreateLead_NotifiesAndEmailsOwner(t *testing.T) {
	f := newLeadFixture()

	lead, err := f.svc.CreateLead(context.Background(), f.input(), nil)
	require.NoError(t, err)
	assert.Equal(t, models.LeadNew, lead.Status)
	assert.Nil(t, lead.UserID)

	notifs := f.notifications.All()
	require.Len(t, notifs, 1)
	assert.Equal(t, f.owner.ID, notifs[0].UserID)
	assert.Equal(t, models.NotificationLead, notifs[0].Type)
	assert.Equal(t, "New lead for your property: Sea view villa", notifs[0].Message)

	require.Len(t, f.mailer.Sent, 1)
	assert.Equal(t, "seller@example.com", f.mailer.Sent[0].To)
	assert.Contains(t, f.mailer.Sent[0].Body, "&lt;on Sunday&gt;")
}

func TestCreateLead_EmailFailureIsNotSurfaced(t *testing.T) {
	f := newLeadFixture()
	f.mailer.Fail = true

	_, err := f.svc.CreateLead(context.Background(), f.input(), nil)
	assert.NoError(t, err)
}

func TestCreateLead_Rejections(t *testing.T) {
	f := newLeadFixture()
	ctx := context.Background()

	in := f.input()
	in.PropertyID = primitive.NewObjectID().Hex()
	_, err := f.svc.CreateLead(ctx, in, nil)
	assert.ErrorIs(t, err, ErrNotFound)

	in = f.input()
	in.Email = "nope"
	_, err = f.svc.CreateLead(ctx, in, nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestListLeads_ByRole(t *testing.T) {
	f := newLeadFixture()
	ctx := context.Background()

	_, err := f.svc.CreateLead(ctx, f.input(), &f.buyer.ID)
	require.NoError(t, err)
	_, err = f.svc.CreateLead(ctx, f.input(), nil)
	require.NoError(t, err)

	ownerLeads, err := f.svc.ListForUser(ctx, f.owner.ID, models.RoleSeller)
	require.NoError(t, err)
	assert.Len(t, ownerLeads, 2)

	buyerLeads, err := f.svc.ListForUser(ctx, f.buyer.ID, models.RoleBuyer)
	require.NoError(t, err)
	assert.Len(t, buyerLeads, 1)

	_, err = f.svc.ListForProperty(ctx, f.property.ID.Hex(), f.buyer.ID, models.RoleBuyer)
	assert.ErrorIs(t, err, ErrForbidden)

	propLeads, err := f.svc.ListForProperty(ctx, f.property.ID.Hex(), primitive.NewObjectID(), models.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, propLeads, 2)
}

func TestUpdateLeadStatus(t *testing.T) {
	f := newLeadFixture()
	ctx := context.Background()

	lead, err := f.svc.CreateLead(ctx, f.input(), nil)
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, lead.ID.Hex(), f.owner.ID, models.RoleSeller, "archived")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.UpdateStatus(ctx, lead.ID.Hex(), f.buyer.ID, models.RoleBuyer, models.LeadContacted)
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := f.svc.UpdateStatus(ctx, lead.ID.Hex(), f.owner.ID, models.RoleSeller, models.LeadContacted)
	require.NoError(t, err)
	assert.Equal(t, models.LeadContacted, updated.Status)

	_, err = f.svc.UpdateStatus(ctx, primitive.NewObjectID().Hex(), f.owner.ID, models.RoleSeller, models.LeadClosed)
	assert.ErrorIs(t, err, ErrNotFound)
}
