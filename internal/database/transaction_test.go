package database

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestTransactorWithoutClientRunsCallbackDirectly(t *testing.T) {
	tx := NewTransactor(nil, true)

	calls := 0
	err := tx.WithinTransaction(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestTransactorDisabledPropagatesCallbackError(t *testing.T) {
	tx := NewTransactor(nil, false)
	boom := errors.New("boom")

	err := tx.WithinTransaction(context.Background(), func(ctx context.Context) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
}

func startedCommands(mt *mtest.T) []string {
	names := []string{}
	for _, evt := range mt.GetAllStartedEvents() {
		names = append(names, evt.CommandName)
	}
	return names
}

func TestTransactorWithinTransaction(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("disabled transactor does not open a session", func(mt *mtest.T) {
		tx := NewTransactor(mt.Client, false)

		err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
			assert.Nil(mt, mongo.SessionFromContext(ctx))
			return nil
		})
		assert.NoError(mt, err)
	})

	mt.Run("commits the callback writes", func(mt *mtest.T) {
		tx := NewTransactor(mt.Client, true)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(),
		)

		err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
			require.NotNil(mt, mongo.SessionFromContext(ctx))
			_, err := mt.Coll.InsertOne(ctx, bson.M{"x": 1})
			return err
		})
		require.NoError(mt, err)

		assert.Equal(mt, []string{"insert", "commitTransaction"}, startedCommands(mt))
	})

	mt.Run("aborts and returns the callback error", func(mt *mtest.T) {
		tx := NewTransactor(mt.Client, true)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(),
		)
		boom := errors.New("mark read failed")

		err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
			if _, err := mt.Coll.InsertOne(ctx, bson.M{"x": 1}); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(mt, err, boom)

		assert.Equal(mt, []string{"insert", "abortTransaction"}, startedCommands(mt))
	})

	mt.Run("retries a transient transaction error", func(mt *mtest.T) {
		tx := NewTransactor(mt.Client, true)

		attempts := 0
		err := tx.WithinTransaction(ctx, func(ctx context.Context) error {
			attempts++
			if attempts == 1 {
				return fmt.Errorf("failed to reset unread counter: %w", mongo.CommandError{
					Code:   112,
					Name:   "WriteConflict",
					Labels: []string{"TransientTransactionError"},
				})
			}
			return nil
		})

		require.NoError(mt, err)
		assert.Equal(mt, 2, attempts)
	})
}
