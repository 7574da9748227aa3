package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_DeleteAuthor(t *testing.T) {
	ctx := context.Background()
	r, _ := tempRepo(t)
	a := seedAuthor(t, r, "Franz", "Kafka")
	b := seedBook(t, r, a.ID, "The Trial", "Fiction", 1)

	_, err := r.DeleteAuthor(ctx, a.ID)
	assert.ErrorIs(t, err, ErrAuthorHasBooks)
	_, err = r.FindAuthorByID(ctx, a.ID)
	require.NoError(t, err)

	require.NoError(t, r.DeleteBook(ctx, b.ID))
	deleted, err := r.DeleteAuthor(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.Photo, deleted.Photo)

	_, err = r.FindAuthorByID(ctx, a.ID)
	assert.ErrorIs(t, err, ErrAuthorNotFound)
	_, err = r.DeleteAuthor(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func Test_UpdateAuthorNames_IgnoresEmpty(t *testing.T) {
	ctx := context.Background()
	r, _ := tempRepo(t)
	a := seedAuthor(t, r, "Virginia", "Woolf")

	got, err := r.UpdateAuthorNames(ctx, a.ID, "Adeline", "")
	require.NoError(t, err)
	assert.Equal(t, "Adeline", got.Firstname)
	assert.Equal(t, "Woolf", got.Lastname)

	_, err = r.UpdateAuthorNames(ctx, "00000000-0000-0000-0000-000000000000", "x", "y")
	assert.ErrorIs(t, err, ErrAuthorNotFound)
}

func Test_ReplaceAuthorPhoto_ReturnsPrevious(t *testing.T) {
	ctx := context.Background()
	r, _ := tempRepo(t)
	a := seedAuthor(t, r, "Albert", "Camus")

	got, old, err := r.ReplaceAuthorPhoto(ctx, a.ID, "/uploads/new.png")
	require.NoError(t, err)
	assert.Equal(t, a.Photo, old)
	assert.Equal(t, "/uploads/new.png", got.Photo)

	_, _, err = r.ReplaceAuthorPhoto(ctx, "00000000-0000-0000-0000-000000000000", "/uploads/x.png")
	assert.ErrorIs(t, err, ErrAuthorNotFound)
}
