package services

import (
	"context"

	"github.com/iamvtyagi/99acres/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The interfaces below are satisfied by the Mongo repositories and by the
// in-memory stores in internal/testutil.

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	UpdateUser(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) (*models.User, error)
}

type ConversationStore interface {
	FindOrCreate(ctx context.Context, x, y primitive.ObjectID) (*models.Conversation, error)
	FindBetween(ctx context.Context, x, y primitive.ObjectID) (*models.Conversation, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Conversation, error)
	ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Conversation, error)
	ListAll(ctx context.Context) ([]models.Conversation, error)
	RecordMessage(ctx context.Context, id primitive.ObjectID, preview, unreadField string) (*models.Conversation, error)
	ResetUnread(ctx context.Context, id primitive.ObjectID, unreadField string) error
	SetUnreadCounts(ctx context.Context, id primitive.ObjectID, observedA, observedB, countA, countB int) (bool, error)
}

type MessageStore interface {
	CreateMessage(ctx context.Context, msg *models.Message) (*models.Message, error)
	GetMessageByID(ctx context.Context, id primitive.ObjectID) (*models.Message, error)
	ListByConversation(ctx context.Context, conversationID primitive.ObjectID) ([]models.Message, error)
	MarkReadForReceiver(ctx context.Context, conversationID, receiverID primitive.ObjectID) (int64, error)
	CountUnread(ctx context.Context, conversationID, receiverID primitive.ObjectID) (int64, error)
	DeleteMessage(ctx context.Context, id primitive.ObjectID) error
}

type NotificationStore interface {
	CreateNotification(ctx context.Context, notif *models.Notification) error
	GetUserNotifications(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error)
	GetNotificationByID(ctx context.Context, id primitive.ObjectID) (*models.Notification, error)
	MarkAsRead(ctx context.Context, id primitive.ObjectID) error
	MarkAllAsRead(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

type PropertyStore interface {
	CreateProperty(ctx context.Context, property *models.Property) (*models.Property, error)
	GetPropertyByID(ctx context.Context, id primitive.ObjectID) (*models.Property, error)
	GetPropertiesByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Property, error)
	ListProperties(ctx context.Context, filter models.PropertyFilter) ([]models.Property, error)
	ListWithinRadius(ctx context.Context, lng, lat, radiusRadians float64, limit int64) ([]models.Property, error)
	LocatePincode(ctx context.Context, pincode string) (*models.GeoPoint, error)
	ListByPincodeOrCity(ctx context.Context, term string, limit int64) ([]models.Property, error)
	ListPropertyIDsByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]primitive.ObjectID, error)
	UpdateProperty(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) (*models.Property, error)
	DeleteProperty(ctx context.Context, id primitive.ObjectID) error
}

type LeadStore interface {
	CreateLead(ctx context.Context, lead *models.Lead) (*models.Lead, error)
	GetLeadByID(ctx context.Context, id primitive.ObjectID) (*models.Lead, error)
	ListByProperties(ctx context.Context, propertyIDs []primitive.ObjectID) ([]models.Lead, error)
	ListBySubmitter(ctx context.Context, userID primitive.ObjectID) ([]models.Lead, error)
	UpdateLeadStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.Lead, error)
}

type WishlistStore interface {
	GetOrCreate(ctx context.Context, userID primitive.ObjectID) (*models.Wishlist, error)
	GetByUser(ctx context.Context, userID primitive.ObjectID) (*models.Wishlist, error)
	AddProperty(ctx context.Context, userID, propertyID primitive.ObjectID) (*models.Wishlist, error)
	RemoveProperty(ctx context.Context, userID, propertyID primitive.ObjectID) (*models.Wishlist, error)
}

// TxRunner groups writes into one transaction when the deployment supports it.
type TxRunner interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Notifier is the sink other services use to alert a user.
type Notifier interface {
	Notify(ctx context.Context, recipient primitive.ObjectID, notifType, message string, relatedID *primitive.ObjectID, onModel string) error
}
