package db

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_TopAuthorsAndGenres(t *testing.T) {
	ctx := context.Background()
	r, _ := tempRepo(t)

	herbert := seedAuthor(t, r, "Frank", "Herbert")
	asimov := seedAuthor(t, r, "Isaac", "Asimov")
	christie := seedAuthor(t, r, "Agatha", "Christie")
	doyle := seedAuthor(t, r, "Arthur", "Doyle")
	seedAuthor(t, r, "Never", "Borrowed")

	dune := seedBook(t, r, herbert.ID, "Dune", "SF", 10)
	found := seedBook(t, r, asimov.ID, "Foundation", "SF", 10)
	orient := seedBook(t, r, christie.ID, "Orient Express", "Mystery", 10)
	hound := seedBook(t, r, doyle.ID, "Hound", "Mystery", 10)

	borrow := func(bookID string, n int) {
		for i := 0; i < n; i++ {
			_, err := r.CreateBorrow(ctx, bookID, "reader")
			require.NoError(t, err)
		}
	}
	borrow(dune.ID, 3)
	borrow(found.ID, 1)
	borrow(orient.ID, 2)
	borrow(hound.ID, 2)

	// returned records still count
	rec, err := r.CreateBorrow(ctx, found.ID, "reader")
	require.NoError(t, err)
	_, err = r.ReturnBorrow(ctx, rec.ID)
	require.NoError(t, err)

	top, err := r.TopAuthors(ctx, 0)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, "Frank Herbert", top[0].AuthorName)
	assert.EqualValues(t, 3, top[0].BorrowCount)
	// tie on 2 broken by name
	assert.Equal(t, "Agatha Christie", top[1].AuthorName)
	assert.Equal(t, "Arthur Doyle", top[2].AuthorName)
	assert.Equal(t, christie.Photo, top[1].Photo)

	genres, err := r.TopGenres(ctx)
	require.NoError(t, err)
	require.Len(t, genres, 2)
	assert.Equal(t, TopGenreRow{Genre: "SF", BorrowCount: 5}, genres[0])
	assert.Equal(t, TopGenreRow{Genre: "Mystery", BorrowCount: 4}, genres[1])
}

func Test_TopAuthors_Empty(t *testing.T) {
	r, _ := tempRepo(t)
	top, err := r.TopAuthors(context.Background(), 3)
	require.NoError(t, err)
	assert.Empty(t, top)
	assert.NotNil(t, top)
}
