package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/iamvtyagi/99acres/internal/models"
	"github.com/iamvtyagi/99acres/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type messagingFixture struct {
	svc           *MessagingService
	users         *testutil.UserStore
	conversations *testutil.ConversationStore
	messages      *testutil.MessageStore
	notifications *testutil.NotificationStore
	tx            *testutil.PassthroughTx
	u1, u2, u3    *models.User
}

func newMessagingFixture(t *testing.T) *messagingFixture {
	t.Helper()
	f := &messagingFixture{
		users:         testutil.NewUserStore(),
		conversations: testutil.NewConversationStore(),
		messages:      testutil.NewMessageStore(),
		notifications: testutil.NewNotificationStore(),
		tx:            &testutil.PassthroughTx{},
	}
	f.u1 = f.users.Add(models.User{Name: "Owner One", Email: "u1@example.com", Role: models.RoleSeller})
	f.u2 = f.users.Add(models.User{Name: "Buyer Two", Email: "u2@example.com", Role: models.RoleBuyer})
	f.u3 = f.users.Add(models.User{Name: "Third", Email: "u3@example.com", Role: models.RoleBuyer})
	notifier := NewNotificationService(f.notifications)
	f.svc = NewMessagingService(f.conversations, f.messages, f.users, notifier, f.tx)
	return f
}

type failingNotifier struct{}

func (failingNotifier) Notify(ctx context.Context, recipient primitive.ObjectID, notifType, message string, relatedID *primitive.ObjectID, onModel string) error {
	return errors.New("notification store down")
}

func TestSendMessage_FirstContactScenario(t *testing.T) {
	f := newMessagingFixture(t)
	ctx := context.Background()

	msg, err := f.svc.SendMessage(ctx, f.u2.ID, f.u1.ID.Hex(), "Is this available?")
	require.NoError(t, err)
	assert.False(t, msg.IsRead)
	assert.Equal(t, f.u2.ID, msg.SenderID)
	assert.Equal(t, f.u1.ID, msg.ReceiverID)

	conv, err := f.svc.FindConversationBetween(ctx, f.u1.ID, f.u2.ID)
	require.NoError(t, err)
	assert.Equal(t, msg.ConversationID, conv.ID)
	assert.Equal(t, "Is this available?", conv.LastMessage)
	assert.Equal(t, 1, conv.UnreadCountFor(f.u1.ID))
	assert.Equal(t, 0, conv.UnreadCountFor(f.u2.ID))

	notifs := f.notifications.All()
	require.Len(t, notifs, 1)
	assert.Equal(t, f.u1.ID, notifs[0].UserID)
	assert.Equal(t, models.NotificationMessage, notifs[0].Type)
	assert.Equal(t, models.ModelMessage, notifs[0].OnModel)
	assert.Equal(t, "New message from Buyer Two", notifs[0].Message)
	require.NotNil(t, notifs[0].RelatedID)
	assert.Equal(t, msg.ID, *notifs[0].RelatedID)

	msgs, err := f.svc.OpenConversation(ctx, conv.ID.Hex(), f.u1.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "Is this available?", msgs[0].Content)

	conv, err = f.svc.FindConversationBetween(ctx, f.u2.ID, f.u1.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, conv.UnreadCountFor(f.u1.ID))

	stored, err := f.messages.GetMessageByID(ctx, msg.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsRead)
	assert.Equal(t, 1, f.tx.Calls)
}

func TestSendMessage_ReusesConversationEitherDirection(t *testing.T) {
	f := newMessagingFixture(t)
	ctx := context.Background()

	first, err := f.svc.SendMessage(ctx, f.u1.ID, f.u2.ID.Hex(), "hello")
	require.NoError(t, err)
	second, err := f.svc.SendMessage(ctx, f.u2.ID, f.u1.ID.Hex(), "hi back")
	require.NoError(t, err)
	third, err := f.svc.SendMessage(ctx, f.u2.ID, f.u1.ID.Hex(), "still there?")
	require.NoError(t, err)

	assert.Equal(t, first.ConversationID, second.ConversationID)
	assert.Equal(t, first.ConversationID, third.ConversationID)
	assert.Equal(t, 1, f.conversations.Count())

	conv, err := f.svc.FindConversationBetween(ctx, f.u1.ID, f.u2.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, conv.UnreadCountFor(f.u2.ID))
	assert.Equal(t, 2, conv.UnreadCountFor(f.u1.ID))
	assert.Equal(t, "still there?", conv.LastMessage)
}

func TestFindOrCreateConversation_ConcurrentFirstContact(t *testing.T) {
	f := newMessagingFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	ids := make([]primitive.ObjectID, 20)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			a, b := f.u1.ID, f.u2.ID
			if i%2 == 1 {
				a, b = b, a
			}
			conv, err := f.svc.FindOrCreateConversation(ctx, a, b)
			if assert.NoError(t, err) {
				ids[i] = conv.ID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	assert.Equal(t, 1, f.conversations.Count())
}

func TestFindOrCreateConversation_CanonicalOrder(t *testing.T) {
	f := newMessagingFixture(t)

	conv, err := f.svc.FindOrCreateConversation(context.Background(), f.u2.ID, f.u1.ID)
	require.NoError(t, err)

	a, b := models.CanonicalPair(f.u1.ID, f.u2.ID)
	assert.Equal(t, a, conv.ParticipantA)
	assert.Equal(t, b, conv.ParticipantB)
}

func TestFindOrCreateConversation_RejectsSelf(t *testing.T) {
	f := newMessagingFixture(t)

	_, err := f.svc.FindOrCreateConversation(context.Background(), f.u1.ID, f.u1.ID)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, 0, f.conversations.Count())
}

func TestSendMessage_Validation(t *testing.T) {
	f := newMessagingFixture(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		receiver string
		content  string
		wantErr  error
	}{
		{"blank content", f.u1.ID.Hex(), "   ", ErrValidation},
		{"malformed receiver", "not-an-id", "hi", ErrValidation},
		{"undefined receiver", "undefined", "hi", ErrValidation},
		{"self", f.u2.ID.Hex(), "hi", ErrValidation},
		{"unknown receiver", primitive.NewObjectID().Hex(), "hi", ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.SendMessage(ctx, f.u2.ID, tt.receiver, tt.content)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	assert.Equal(t, 0, f.conversations.Count())
}

func TestSendMessage_UnknownReceiverMessage(t *testing.T) {
	f := newMessagingFixture(t)

	_, err := f.svc.SendMessage(context.Background(), f.u2.ID, primitive.NewObjectID().Hex(), "hi")
	require.Error(t, err)
	assert.Equal(t, "Receiver not found", err.Error())
}

func TestSendMessage_NotificationFailureIsNotSurfaced(t *testing.T) {
	f := newMessagingFixture(t)
	svc := NewMessagingService(f.conversations, f.messages, f.users, failingNotifier{}, f.tx)

	msg, err := svc.SendMessage(context.Background(), f.u2.ID, f.u1.ID.Hex(), "hello")
	require.NoError(t, err)
	assert.NotEqual(t, primitive.NilObjectID, msg.ID)
}

func TestOpenConversation_InvalidIDs(t *testing.T) {
	f := newMessagingFixture(t)

	for _, raw := range []string{"", "undefined", "null", "1234"} {
		_, err := f.svc.OpenConversation(context.Background(), raw, f.u1.ID)
		assert.ErrorIs(t, err, ErrValidation, raw)
	}
	assert.Equal(t, 0, f.tx.Calls)
}

func TestOpenConversation_NotFoundAndForbidden(t *testing.T) {
	f := newMessagingFixture(t)
	ctx := context.Background()

	_, err := f.svc.OpenConversation(ctx, primitive.NewObjectID().Hex(), f.u1.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	msg, err := f.svc.SendMessage(ctx, f.u2.ID, f.u1.ID.Hex(), "hello")
	require.NoError(t, err)

	_, err = f.svc.OpenConversation(ctx, msg.ConversationID.Hex(), f.u3.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	conv, err := f.conversations.GetByID(ctx, msg.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, 1, conv.UnreadCountFor(f.u1.ID))
}

func TestOpenConversation_SenderDoesNotClearReceiverState(t *testing.T) {
	f := newMessagingFixture(t)
	ctx := context.Background()

	msg, err := f.svc.SendMessage(ctx, f.u2.ID, f.u1.ID.Hex(), "hello")
	require.NoError(t, err)

	_, err = f.svc.OpenConversation(ctx, msg.ConversationID.Hex(), f.u2.ID)
	require.NoError(t, err)

	conv, err := f.conversations.GetByID(ctx, msg.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, 1, conv.UnreadCountFor(f.u1.ID))
	stored, err := f.messages.GetMessageByID(ctx, msg.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsRead)
}

func TestOpenConversation_MessagesInCreationOrder(t *testing.T) {
	f := newMessagingFixture(t)
	ctx := context.Background()

	contents := []string{"one", "two", "three"}
	var convID primitive.ObjectID
	for i, c := range contents {
		from, to := f.u1, f.u2
		if i%2 == 1 {
			from, to = f.u2, f.u1
		}
		msg, err := f.svc.SendMessage(ctx, from.ID, to.ID.Hex(), c)
		require.NoError(t, err)
		convID = msg.ConversationID
	}

	msgs, err := f.svc.OpenConversation(ctx, convID.Hex(), f.u1.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	for i, m := range msgs {
		assert.Equal(t, contents[i], m.Content)
	}
}

func TestListConversations_PopulatesParticipants(t *testing.T) {
	f := newMessagingFixture(t)
	ctx := context.Background()

	_, err := f.svc.SendMessage(ctx, f.u2.ID, f.u1.ID.Hex(), "first")
	require.NoError(t, err)
	_, err = f.svc.SendMessage(ctx, f.u3.ID, f.u1.ID.Hex(), "second")
	require.NoError(t, err)

	views, err := f.svc.ListConversations(ctx, f.u1.ID)
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "second", views[0].LastMessage)
	assert.Equal(t, 1, views[0].UnreadCount)
	require.NotNil(t, views[0].ParticipantAUser)
	require.NotNil(t, views[0].ParticipantBUser)
	assert.Empty(t, views[0].ParticipantAUser.Email)

	views, err = f.svc.ListConversations(ctx, f.u2.ID)
	require.NoError(t, err)
	assert.Len(t, views, 1)
}

func TestDeleteMessage(t *testing.T) {
	f := newMessagingFixture(t)
	ctx := context.Background()

	msg, err := f.svc.SendMessage(ctx, f.u2.ID, f.u1.ID.Hex(), "oops")
	require.NoError(t, err)

	err = f.svc.DeleteMessage(ctx, msg.ID.Hex(), f.u1.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	err = f.svc.DeleteMessage(ctx, primitive.NewObjectID().Hex(), f.u2.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, f.svc.DeleteMessage(ctx, msg.ID.Hex(), f.u2.ID))
	_, err = f.messages.GetMessageByID(ctx, msg.ID)
	assert.Error(t, err)

	conv, err := f.conversations.GetByID(ctx, msg.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, "oops", conv.LastMessage)
	assert.Equal(t, 1, conv.UnreadCountFor(f.u1.ID))
}

func TestReconcileUnreadCounts(t *testing.T) {
	f := newMessagingFixture(t)
	ctx := context.Background()

	msg, err := f.svc.SendMessage(ctx, f.u2.ID, f.u1.ID.Hex(), "hello")
	require.NoError(t, err)
	_, err = f.svc.SendMessage(ctx, f.u2.ID, f.u1.ID.Hex(), "again")
	require.NoError(t, err)

	// Simulate a crash after the counter reset but before messages were flagged.
	conv, err := f.conversations.GetByID(ctx, msg.ConversationID)
	require.NoError(t, err)
	require.NoError(t, f.conversations.ResetUnread(ctx, conv.ID, conv.UnreadFieldFor(f.u1.ID)))

	fixed, err := f.svc.ReconcileUnreadCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, fixed)

	conv, err = f.conversations.GetByID(ctx, msg.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, 2, conv.UnreadCountFor(f.u1.ID))

	fixed, err = f.svc.ReconcileUnreadCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, fixed)
}

// racingMessages sends a message the first time the reconciler counts, the
// way a concurrent SendMessage would land between the count and the write.
type racingMessages struct {
	*testutil.MessageStore
	once  sync.Once
	raced func()
}

func (m *racingMessages) CountUnread(ctx context.Context, conversationID, receiverID primitive.ObjectID) (int64, error) {
	n, err := m.MessageStore.CountUnread(ctx, conversationID, receiverID)
	m.once.Do(m.raced)
	return n, err
}

func TestReconcileUnreadCounts_SkipsCountersMovedMeanwhile(t *testing.T) {
	f := newMessagingFixture(t)
	ctx := context.Background()

	msg, err := f.svc.SendMessage(ctx, f.u2.ID, f.u1.ID.Hex(), "hello")
	require.NoError(t, err)
	conv, err := f.conversations.GetByID(ctx, msg.ConversationID)
	require.NoError(t, err)
	require.NoError(t, f.conversations.ResetUnread(ctx, conv.ID, conv.UnreadFieldFor(f.u1.ID)))

	racing := &racingMessages{MessageStore: f.messages}
	svc := NewMessagingService(f.conversations, racing, f.users, nil, f.tx)
	racing.raced = func() {
		_, err := svc.SendMessage(ctx, f.u2.ID, f.u1.ID.Hex(), "still there?")
		require.NoError(t, err)
	}

	fixed, err := svc.ReconcileUnreadCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, fixed)

	// The concurrent increment is kept; the next run repairs the rest.
	conv, err = f.conversations.GetByID(ctx, msg.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, 1, conv.UnreadCountFor(f.u1.ID))

	fixed, err = svc.ReconcileUnreadCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, fixed)
	conv, err = f.conversations.GetByID(ctx, msg.ConversationID)
	require.NoError(t, err)
	assert.Equal(t, 2, conv.UnreadCountFor(f.u1.ID))
}

type failingMarkRead struct {
	*testutil.MessageStore
}

func (failingMarkRead) MarkReadForReceiver(ctx context.Context, conversationID, receiverID primitive.ObjectID) (int64, error) {
	return 0, errors.New("write conflict")
}

func TestOpenConversation_MarkReadFailureReachesCaller(t *testing.T) {
	f := newMessagingFixture(t)
	ctx := context.Background()

	msg, err := f.svc.SendMessage(ctx, f.u2.ID, f.u1.ID.Hex(), "hello")
	require.NoError(t, err)

	svc := NewMessagingService(f.conversations, failingMarkRead{f.messages}, f.users, nil, f.tx)
	_, err = svc.OpenConversation(ctx, msg.ConversationID.Hex(), f.u1.ID)
	assert.EqualError(t, err, "write conflict")
	assert.Equal(t, 1, f.tx.Calls)

	stored, err := f.messages.GetMessageByID(ctx, msg.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsRead)
}
