package repository

import (
	"context"
	"testing"

	"github.com/iamvtyagi/99acres/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func conversationDoc(id, a, b primitive.ObjectID, unreadA, unreadB int) bson.D {
	return bson.D{
		{Key: "_id", Value: id},
		{Key: "participant_a", Value: a},
		{Key: "participant_b", Value: b},
		{Key: "last_message", Value: "hi"},
		{Key: "unread_count_a", Value: unreadA},
		{Key: "unread_count_b", Value: unreadB},
	}
}

func TestConversationRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("find or create returns upserted document", func(mt *mtest.T) {
		repo := NewConversationRepository(mt.DB)
		id, a, b := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
		lo, hi := models.CanonicalPair(a, b)

		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: conversationDoc(id, lo, hi, 0, 0)},
		))

		conv, err := repo.FindOrCreate(ctx, b, a)
		require.NoError(mt, err)
		assert.Equal(mt, id, conv.ID)
		assert.Equal(mt, lo, conv.ParticipantA)
		assert.Equal(mt, hi, conv.ParticipantB)
	})

	mt.Run("find or create falls back to lookup on duplicate key", func(mt *mtest.T) {
		repo := NewConversationRepository(mt.DB)
		id, a, b := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()

		mt.AddMockResponses(
			mtest.CreateCommandErrorResponse(mtest.CommandError{
				Code:    11000,
				Name:    "DuplicateKey",
				Message: "E11000 duplicate key error",
			}),
			mtest.CreateCursorResponse(0, "test.conversations", mtest.FirstBatch, conversationDoc(id, a, b, 0, 0)),
		)

		conv, err := repo.FindOrCreate(ctx, a, b)
		require.NoError(mt, err)
		assert.Equal(mt, id, conv.ID)
	})

	mt.Run("get by id maps no documents to ErrNotFound", func(mt *mtest.T) {
		repo := NewConversationRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.conversations", mtest.FirstBatch))

		_, err := repo.GetByID(ctx, primitive.NewObjectID())
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("record message returns incremented counters", func(mt *mtest.T) {
		repo := NewConversationRepository(mt.DB)
		id, a, b := primitive.NewObjectID(), primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "value", Value: conversationDoc(id, a, b, 0, 3)},
		))

		conv, err := repo.RecordMessage(ctx, id, "hi", "unread_count_b")
		require.NoError(mt, err)
		assert.Equal(mt, 3, conv.UnreadCountB)
		assert.Equal(mt, "hi", conv.LastMessage)
	})

	mt.Run("list for user decodes all conversations", func(mt *mtest.T) {
		repo := NewConversationRepository(mt.DB)
		user := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.conversations", mtest.FirstBatch,
			conversationDoc(primitive.NewObjectID(), user, primitive.NewObjectID(), 1, 0),
			conversationDoc(primitive.NewObjectID(), primitive.NewObjectID(), user, 0, 2),
		))

		convs, err := repo.ListForUser(ctx, user)
		require.NoError(mt, err)
		assert.Len(mt, convs, 2)
	})

	mt.Run("reset unread", func(mt *mtest.T) {
		repo := NewConversationRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		assert.NoError(mt, repo.ResetUnread(ctx, primitive.NewObjectID(), "unread_count_a"))
	})

	mt.Run("set unread counts applies when counters are unchanged", func(mt *mtest.T) {
		repo := NewConversationRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		applied, err := repo.SetUnreadCounts(ctx, primitive.NewObjectID(), 0, 0, 2, 0)
		require.NoError(mt, err)
		assert.True(mt, applied)
	})

	mt.Run("set unread counts skips when counters moved", func(mt *mtest.T) {
		repo := NewConversationRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))

		applied, err := repo.SetUnreadCounts(ctx, primitive.NewObjectID(), 0, 0, 2, 0)
		require.NoError(mt, err)
		assert.False(mt, applied)
	})
}
