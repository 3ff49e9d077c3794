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

func TestWishlist(t *testing.T) {
	props := testutil.NewPropertyStore()
	svc := NewWishlistService(testutil.NewWishlistStore(), props)
	ctx := context.Background()
	user := primitive.NewObjectID()
	p1 := props.Add(models.Property{Title: "One"})
	p2 := props.Add(models.Property{Title: "Two"})

	_, err := svc.RemoveProperty(ctx, user, p1.ID.Hex())
	assert.ErrorIs(t, err, ErrNotFound)

	view, err := svc.GetWishlist(ctx, user)
	require.NoError(t, err)
	assert.Empty(t, view.Properties)

	_, err = svc.AddProperty(ctx, user, p1.ID.Hex())
	require.NoError(t, err)
	view, err = svc.AddProperty(ctx, user, p2.ID.Hex())
	require.NoError(t, err)
	require.Len(t, view.Properties, 2)
	assert.Equal(t, "One", view.Properties[0].Title)

	_, err = svc.AddProperty(ctx, user, p1.ID.Hex())
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.AddProperty(ctx, user, primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, ErrNotFound)

	view, err = svc.RemoveProperty(ctx, user, p1.ID.Hex())
	require.NoError(t, err)
	require.Len(t, view.Properties, 1)
	assert.Equal(t, "Two", view.Properties[0].Title)

	_, err = svc.RemoveProperty(ctx, user, p1.ID.Hex())
	assert.ErrorIs(t, err, ErrValidation)
}
