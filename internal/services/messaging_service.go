package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/iamvtyagi/99acres/internal/models"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MessagingService owns conversations, messages and their read state.
type MessagingService struct {
	conversations ConversationStore
	messages      MessageStore
	users         UserStore
	notifier      Notifier
	tx            TxRunner
}

func NewMessagingService(conversations ConversationStore, messages MessageStore, users UserStore, notifier Notifier, tx TxRunner) *MessagingService {
	return &MessagingService{
		conversations: conversations,
		messages:      messages,
		users:         users,
		notifier:      notifier,
		tx:            tx,
	}
}

// FindOrCreateConversation returns the single conversation between two
// distinct users, creating it on first contact.
func (s *MessagingService) FindOrCreateConversation(ctx context.Context, userA, userB primitive.ObjectID) (*models.Conversation, error) {
	if userA.IsZero() || userB.IsZero() {
		return nil, validationError("Both participants are required")
	}
	if userA == userB {
		return nil, validationError("Cannot start a conversation with yourself")
	}
	return s.conversations.FindOrCreate(ctx, userA, userB)
}

// FindConversationBetween looks up the conversation regardless of argument order.
func (s *MessagingService) FindConversationBetween(ctx context.Context, userA, userB primitive.ObjectID) (*models.Conversation, error) {
	conv, err := s.conversations.FindBetween(ctx, userA, userB)
	if err != nil {
		return nil, notFoundOr(err, "Conversation not found")
	}
	return conv, nil
}

// AppendMessage stores a message on conv and bumps the receiver's unread
// counter together with the preview.
func (s *MessagingService) AppendMessage(ctx context.Context, conv *models.Conversation, sender *models.User, receiverID primitive.ObjectID, content string) (*models.Message, error) {
	if !conv.HasParticipant(sender.ID) || !conv.HasParticipant(receiverID) || sender.ID == receiverID {
		return nil, forbiddenError("Not authorized to post in this conversation")
	}

	msg, err := s.messages.CreateMessage(ctx, &models.Message{
		ConversationID: conv.ID,
		SenderID:       sender.ID,
		ReceiverID:     receiverID,
		Content:        content,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}

	if _, err := s.conversations.RecordMessage(ctx, conv.ID, content, conv.UnreadFieldFor(receiverID)); err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"conversationID": conv.ID.Hex(),
			"messageID":      msg.ID.Hex(),
		}).Error("Failed to update conversation after message")
		return nil, fmt.Errorf("failed to update conversation: %w", err)
	}

	if s.notifier != nil {
		text := "New message from " + sender.Name
		if err := s.notifier.Notify(ctx, receiverID, models.NotificationMessage, text, &msg.ID, models.ModelMessage); err != nil {
			logrus.WithError(err).WithField("receiverID", receiverID.Hex()).Warn("Failed to create message notification")
		}
	}

	return msg, nil
}

// SendMessage is the HTTP entry point for posting a message to another user.
func (s *MessagingService) SendMessage(ctx context.Context, senderID primitive.ObjectID, receiverIDRaw, content string) (*models.Message, error) {
	receiverID, err := ParseID(receiverIDRaw, "receiver")
	if err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, validationError("Message content is required")
	}
	if receiverID == senderID {
		return nil, validationError("Cannot send a message to yourself")
	}

	sender, err := s.users.GetUserByID(ctx, senderID)
	if err != nil {
		return nil, notFoundOr(err, "Sender not found")
	}
	if _, err := s.users.GetUserByID(ctx, receiverID); err != nil {
		return nil, notFoundOr(err, "Receiver not found")
	}

	conv, err := s.FindOrCreateConversation(ctx, senderID, receiverID)
	if err != nil {
		return nil, err
	}

	msg, err := s.AppendMessage(ctx, conv, sender, receiverID, content)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"conversationID": conv.ID.Hex(),
		"senderID":       senderID.Hex(),
		"receiverID":     receiverID.Hex(),
	}).Info("Message sent")
	return msg, nil
}

// ListConversations returns the user's conversations, most recent first, with
// both participants summarised.
func (s *MessagingService) ListConversations(ctx context.Context, userID primitive.ObjectID) ([]models.ConversationView, error) {
	convs, err := s.conversations.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	seen := map[primitive.ObjectID]bool{}
	ids := []primitive.ObjectID{}
	for _, c := range convs {
		for _, id := range []primitive.ObjectID{c.ParticipantA, c.ParticipantB} {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}

	summaries := map[primitive.ObjectID]models.PublicUser{}
	if len(ids) > 0 {
		users, err := s.users.GetUsersByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for i := range users {
			summaries[users[i].ID] = users[i].Summary()
		}
	}

	views := make([]models.ConversationView, 0, len(convs))
	for i := range convs {
		c := &convs[i]
		view := models.ConversationView{Conversation: c, UnreadCount: c.UnreadCountFor(userID)}
		if u, ok := summaries[c.ParticipantA]; ok {
			view.ParticipantAUser = &u
		}
		if u, ok := summaries[c.ParticipantB]; ok {
			view.ParticipantBUser = &u
		}
		views = append(views, view)
	}
	return views, nil
}

// OpenConversation returns the conversation's messages in order and marks
// everything addressed to the reader as read.
func (s *MessagingService) OpenConversation(ctx context.Context, conversationIDRaw string, readerID primitive.ObjectID) ([]models.Message, error) {
	convID, err := ParseID(conversationIDRaw, "conversation")
	if err != nil {
		return nil, err
	}

	conv, err := s.conversations.GetByID(ctx, convID)
	if err != nil {
		return nil, notFoundOr(err, "Conversation not found")
	}
	if !conv.HasParticipant(readerID) {
		return nil, forbiddenError("Not authorized to access this conversation")
	}

	msgs, err := s.messages.ListByConversation(ctx, conv.ID)
	if err != nil {
		return nil, err
	}

	if err := s.MarkConversationRead(ctx, conv, readerID); err != nil {
		return nil, err
	}
	return msgs, nil
}

// MarkConversationRead zeroes the reader's counter and flags the reader's
// incoming messages as read.
func (s *MessagingService) MarkConversationRead(ctx context.Context, conv *models.Conversation, readerID primitive.ObjectID) error {
	field := conv.UnreadFieldFor(readerID)
	if field == "" {
		return forbiddenError("Not authorized to access this conversation")
	}

	return s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.conversations.ResetUnread(ctx, conv.ID, field); err != nil {
			return err
		}
		n, err := s.messages.MarkReadForReceiver(ctx, conv.ID, readerID)
		if err != nil {
			return err
		}
		logrus.WithFields(logrus.Fields{
			"conversationID": conv.ID.Hex(),
			"readerID":       readerID.Hex(),
			"marked":         n,
		}).Debug("Conversation marked read")
		return nil
	})
}

// DeleteMessage removes a message. Only its sender may do so. The
// conversation preview and counters are left as they are.
func (s *MessagingService) DeleteMessage(ctx context.Context, messageIDRaw string, requesterID primitive.ObjectID) error {
	msgID, err := ParseID(messageIDRaw, "message")
	if err != nil {
		return err
	}

	msg, err := s.messages.GetMessageByID(ctx, msgID)
	if err != nil {
		return notFoundOr(err, "Message not found")
	}
	if msg.SenderID != requesterID {
		return forbiddenError("Not authorized to delete this message")
	}

	if err := s.messages.DeleteMessage(ctx, msgID); err != nil {
		return notFoundOr(err, "Message not found")
	}
	return nil
}

// ReconcileUnreadCounts recomputes both counters of every conversation from
// the messages that are still unread.
func (s *MessagingService) ReconcileUnreadCounts(ctx context.Context) (int, error) {
	convs, err := s.conversations.ListAll(ctx)
	if err != nil {
		return 0, err
	}

	fixed := 0
	for _, c := range convs {
		countA, err := s.messages.CountUnread(ctx, c.ID, c.ParticipantA)
		if err != nil {
			return fixed, err
		}
		countB, err := s.messages.CountUnread(ctx, c.ID, c.ParticipantB)
		if err != nil {
			return fixed, err
		}
		if int(countA) == c.UnreadCountA && int(countB) == c.UnreadCountB {
			continue
		}

		applied, err := s.conversations.SetUnreadCounts(ctx, c.ID, c.UnreadCountA, c.UnreadCountB, int(countA), int(countB))
		if err != nil {
			return fixed, err
		}
		if !applied {
			// A send or read moved the counters since ListAll; the next run
			// looks again.
			logrus.WithField("conversationID", c.ID.Hex()).Debug("Unread counters changed during reconcile, skipping")
			continue
		}
		logrus.WithFields(logrus.Fields{
			"conversationID": c.ID.Hex(),
			"unreadCountA":   countA,
			"unreadCountB":   countB,
		}).Warn("Repaired drifted unread counters")
		fixed++
	}
	return fixed, nil
}
