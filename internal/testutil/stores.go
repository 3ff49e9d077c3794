// Package testutil provides in-memory stores that behave like the Mongo
// repositories, for service and handler tests.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/iamvtyagi/99acres/internal/models"
	"github.com/iamvtyagi/99acres/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func notFound(what string) error {
	return fmt.Errorf("%s: %w", what, repository.ErrNotFound)
}

// UserStore keeps users in a map keyed by id.
type UserStore struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]models.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: map[primitive.ObjectID]models.User{}}
}

// Add stores a copy of user, assigning an id when missing.
func (s *UserStore) Add(user models.User) *models.User {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	s.mu.Lock()
	s.users[user.ID] = user
	s.mu.Unlock()
	return &user
}

func (s *UserStore) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return nil, fmt.Errorf("insert user: %w", repository.ErrDuplicate)
		}
	}
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	s.users[user.ID] = *user
	return user, nil
}

func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, notFound("user")
}

func (s *UserStore) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, notFound("user")
	}
	return &u, nil
}

func (s *UserStore) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.User{}
	for _, id := range ids {
		if u, ok := s.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *UserStore) UpdateUser(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, notFound("user")
	}
	for k, v := range updates {
		switch k {
		case "name":
			u.Name = v.(string)
		case "email":
			for otherID, other := range s.users {
				if otherID != id && other.Email == v.(string) {
					return nil, fmt.Errorf("update user: %w", repository.ErrDuplicate)
				}
			}
			u.Email = v.(string)
		case "mobile":
			u.Mobile = v.(string)
		case "hashed_password":
			u.HashedPassword = v.(string)
		}
	}
	u.UpdatedAt = time.Now()
	s.users[id] = u
	return &u, nil
}

// ConversationStore mirrors the canonical-pair semantics of the Mongo
// repository, including the unique pair constraint.
type ConversationStore struct {
	mu    sync.Mutex
	convs map[primitive.ObjectID]*models.Conversation
	clock func() time.Time
}

func NewConversationStore() *ConversationStore {
	return &ConversationStore{convs: map[primitive.ObjectID]*models.Conversation{}, clock: newClock()}
}

func (s *ConversationStore) FindOrCreate(ctx context.Context, x, y primitive.ObjectID) (*models.Conversation, error) {
	a, b := models.CanonicalPair(x, y)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.convs {
		if c.ParticipantA == a && c.ParticipantB == b {
			cp := *c
			return &cp, nil
		}
	}
	now := s.clock()
	c := &models.Conversation{
		ID:           primitive.NewObjectID(),
		ParticipantA: a,
		ParticipantB: b,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	s.convs[c.ID] = c
	cp := *c
	return &cp, nil
}

func (s *ConversationStore) FindBetween(ctx context.Context, x, y primitive.ObjectID) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.convs {
		if (c.ParticipantA == x && c.ParticipantB == y) || (c.ParticipantA == y && c.ParticipantB == x) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, notFound("conversation")
}

func (s *ConversationStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.convs[id]
	if !ok {
		return nil, notFound("conversation")
	}
	cp := *c
	return &cp, nil
}

func (s *ConversationStore) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Conversation{}
	for _, c := range s.convs {
		if c.HasParticipant(userID) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (s *ConversationStore) ListAll(ctx context.Context) ([]models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Conversation{}
	for _, c := range s.convs {
		out = append(out, *c)
	}
	return out, nil
}

func (s *ConversationStore) RecordMessage(ctx context.Context, id primitive.ObjectID, preview, unreadField string) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.convs[id]
	if !ok {
		return nil, notFound("conversation")
	}
	c.LastMessage = preview
	c.UpdatedAt = s.clock()
	switch unreadField {
	case models.UnreadFieldA:
		c.UnreadCountA++
	case models.UnreadFieldB:
		c.UnreadCountB++
	}
	cp := *c
	return &cp, nil
}

func (s *ConversationStore) ResetUnread(ctx context.Context, id primitive.ObjectID, unreadField string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.convs[id]
	if !ok {
		return nil
	}
	switch unreadField {
	case models.UnreadFieldA:
		c.UnreadCountA = 0
	case models.UnreadFieldB:
		c.UnreadCountB = 0
	}
	return nil
}

func (s *ConversationStore) SetUnreadCounts(ctx context.Context, id primitive.ObjectID, observedA, observedB, countA, countB int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.convs[id]
	if !ok || c.UnreadCountA != observedA || c.UnreadCountB != observedB {
		return false, nil
	}
	c.UnreadCountA = countA
	c.UnreadCountB = countB
	return true, nil
}

// Count returns the number of stored conversations.
func (s *ConversationStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.convs)
}

// MessageStore keeps messages in insertion order.
type MessageStore struct {
	mu    sync.Mutex
	msgs  []models.Message
	clock func() time.Time
}

func NewMessageStore() *MessageStore {
	return &MessageStore{clock: newClock()}
}

func (s *MessageStore) CreateMessage(ctx context.Context, msg *models.Message) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg.ID = primitive.NewObjectID()
	msg.IsRead = false
	msg.CreatedAt = s.clock()
	s.msgs = append(s.msgs, *msg)
	return msg, nil
}

func (s *MessageStore) GetMessageByID(ctx context.Context, id primitive.ObjectID) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.msgs {
		if m.ID == id {
			return &m, nil
		}
	}
	return nil, notFound("message")
}

func (s *MessageStore) ListByConversation(ctx context.Context, conversationID primitive.ObjectID) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Message{}
	for _, m := range s.msgs {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *MessageStore) MarkReadForReceiver(ctx context.Context, conversationID, receiverID primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for i := range s.msgs {
		m := &s.msgs[i]
		if m.ConversationID == conversationID && m.ReceiverID == receiverID && !m.IsRead {
			m.IsRead = true
			n++
		}
	}
	return n, nil
}

func (s *MessageStore) CountUnread(ctx context.Context, conversationID, receiverID primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, m := range s.msgs {
		if m.ConversationID == conversationID && m.ReceiverID == receiverID && !m.IsRead {
			n++
		}
	}
	return n, nil
}

func (s *MessageStore) DeleteMessage(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.msgs {
		if m.ID == id {
			s.msgs = append(s.msgs[:i], s.msgs[i+1:]...)
			return nil
		}
	}
	return notFound("message")
}

// NotificationStore keeps notifications in insertion order.
type NotificationStore struct {
	mu     sync.Mutex
	notifs []models.Notification
	clock  func() time.Time
}

func NewNotificationStore() *NotificationStore {
	return &NotificationStore{clock: newClock()}
}

func (s *NotificationStore) CreateNotification(ctx context.Context, notif *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	notif.ID = primitive.NewObjectID()
	notif.CreatedAt = s.clock()
	s.notifs = append(s.notifs, *notif)
	return nil
}

func (s *NotificationStore) GetUserNotifications(ctx context.Context, userID primitive.ObjectID) ([]models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Notification{}
	for i := len(s.notifs) - 1; i >= 0; i-- {
		if s.notifs[i].UserID == userID {
			out = append(out, s.notifs[i])
		}
	}
	return out, nil
}

func (s *NotificationStore) GetNotificationByID(ctx context.Context, id primitive.ObjectID) (*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notifs {
		if n.ID == id {
			return &n, nil
		}
	}
	return nil, notFound("notification")
}

func (s *NotificationStore) MarkAsRead(ctx context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifs {
		if s.notifs[i].ID == id {
			s.notifs[i].IsRead = true
			return nil
		}
	}
	return notFound("notification")
}

func (s *NotificationStore) MarkAllAsRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for i := range s.notifs {
		if s.notifs[i].UserID == userID && !s.notifs[i].IsRead {
			s.notifs[i].IsRead = true
			n++
		}
	}
	return n, nil
}

// All returns every stored notification.
func (s *NotificationStore) All() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Notification(nil), s.notifs...)
}

// PassthroughTx runs the callback without a transaction and counts calls.
type PassthroughTx struct {
	mu    sync.Mutex
	Calls int
}

func (t *PassthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	t.Calls++
	t.mu.Unlock()
	return fn(ctx)
}

// newClock returns strictly increasing timestamps so ordering by time is
// deterministic within a test.
func newClock() func() time.Time {
	var mu sync.Mutex
	last := time.Now()
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		last = last.Add(time.Millisecond)
		return last
	}
}
