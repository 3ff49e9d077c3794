package services

import (
	"context"
	"strings"

	"github.com/iamvtyagi/99acres/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationService struct {
	repo NotificationStore
}

func NewNotificationService(repo NotificationStore) *NotificationService {
	return &NotificationService{repo: repo}
}

// Notify records a notification for recipient. Duplicates are not collapsed.
func (s *NotificationService) Notify(ctx context.Context, recipient primitive.ObjectID, notifType, message string, relatedID *primitive.ObjectID, onModel string) error {
	_, err := s.CreateNotification(ctx, &models.Notification{
		UserID:    recipient,
		Type:      notifType,
		Message:   message,
		RelatedID: relatedID,
		OnModel:   onModel,
	})
	return err
}

// CreateNotification validates and stores a notification.
func (s *NotificationService) CreateNotification(ctx context.Context, notif *models.Notification) (*models.Notification, error) {
	if notif.UserID.IsZero() {
		return nil, validationError("Notification recipient is required")
	}
	if !models.IsValidNotificationType(notif.Type) {
		return nil, validationError("Invalid notification type")
	}
	if strings.TrimSpace(notif.Message) == "" {
		return nil, validationError("Notification message is required")
	}
	if notif.OnModel != "" && !models.IsValidNotificationModel(notif.OnModel) {
		return nil, validationError("Invalid notification model")
	}
	notif.IsRead = false

	if err := s.repo.CreateNotification(ctx, notif); err != nil {
		logrus.WithError(err).WithField("userID", notif.UserID.Hex()).Error("Failed to create notification")
		return nil, err
	}
	return notif, nil
}

// GetUserNotifications returns all notifications for a user, newest first.
func (s *NotificationService) GetUserNotifications(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	return s.repo.GetUserNotifications(ctx, userID)
}

// MarkNotificationAsRead flags one notification. Only its recipient may do so.
func (s *NotificationService) MarkNotificationAsRead(ctx context.Context, notifIDRaw string, userID primitive.ObjectID) error {
	notifID, err := ParseID(notifIDRaw, "notification")
	if err != nil {
		return err
	}

	notif, err := s.repo.GetNotificationByID(ctx, notifID)
	if err != nil {
		return notFoundOr(err, "Notification not found")
	}
	if notif.UserID != userID {
		return forbiddenError("Not authorized to update this notification")
	}
	return s.repo.MarkAsRead(ctx, notifID)
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.repo.MarkAllAsRead(ctx, userID)
}
