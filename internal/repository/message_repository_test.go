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

func TestMessageRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("create assigns id and timestamp", func(mt *mtest.T) {
		repo := NewMessageRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		msg, err := repo.CreateMessage(ctx, &models.Message{
			ConversationID: primitive.NewObjectID(),
			SenderID:       primitive.NewObjectID(),
			ReceiverID:     primitive.NewObjectID(),
			Content:        "Is this available?",
		})
		require.NoError(mt, err)
		assert.False(mt, msg.ID.IsZero())
		assert.False(mt, msg.CreatedAt.IsZero())
		assert.False(mt, msg.IsRead)
	})

	mt.Run("list by conversation keeps server order", func(mt *mtest.T) {
		repo := NewMessageRepository(mt.DB)
		conv := primitive.NewObjectID()
		first, second := primitive.NewObjectID(), primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "test.messages", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: first}, {Key: "conversation_id", Value: conv}, {Key: "content", Value: "one"}},
			bson.D{{Key: "_id", Value: second}, {Key: "conversation_id", Value: conv}, {Key: "content", Value: "two"}},
		))

		msgs, err := repo.ListByConversation(ctx, conv)
		require.NoError(mt, err)
		require.Len(mt, msgs, 2)
		assert.Equal(mt, first, msgs[0].ID)
		assert.Equal(mt, second, msgs[1].ID)
	})

	mt.Run("mark read reports modified count", func(mt *mtest.T) {
		repo := NewMessageRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 2}, bson.E{Key: "nModified", Value: 2}))

		n, err := repo.MarkReadForReceiver(ctx, primitive.NewObjectID(), primitive.NewObjectID())
		require.NoError(mt, err)
		assert.Equal(mt, int64(2), n)
	})

	mt.Run("delete of missing message is ErrNotFound", func(mt *mtest.T) {
		repo := NewMessageRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := repo.DeleteMessage(ctx, primitive.NewObjectID())
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("delete existing message", func(mt *mtest.T) {
		repo := NewMessageRepository(mt.DB)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		assert.NoError(mt, repo.DeleteMessage(ctx, primitive.NewObjectID()))
	})
}
