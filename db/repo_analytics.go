package db

import (
	"context"

	"Gin_postgres_redis_library_api/models"
)

type TopAuthorRow struct {
	AuthorID    string `json:"authorId"`
	AuthorName  string `json:"authorName"`
	Photo       string `json:"photo"`
	BorrowCount int64  `json:"borrowCount"`
}

type TopGenreRow struct {
	Genre       string `json:"genre"`
	BorrowCount int64  `json:"borrowCount"`
}

const DefaultTopAuthors = 3

// TopAuthors counts every borrow record (active or returned) per author.
// Records whose book is gone drop out of the inner join.
func (r *Repo) TopAuthors(ctx context.Context, limit int) ([]TopAuthorRow, error) {
	if limit <= 0 {
		limit = DefaultTopAuthors
	}
	rows := []TopAuthorRow{}
	err := r.DB.WithContext(ctx).
		Table(models.BorrowTable+" br").
		Select(`
			a.id AS author_id,
			a.firstname || ' ' || a.lastname AS author_name,
			a.photo,
			COUNT(br.id) AS borrow_count
		`).
		Joins("JOIN "+models.BookTable+" b ON b.id = br.book_id").
		Joins("JOIN "+models.AuthorTable+" a ON a.id = b.author_id").
		Group("a.id, a.firstname, a.lastname, a.photo").
		Order("borrow_count DESC, author_name ASC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *Repo) TopGenres(ctx context.Context) ([]TopGenreRow, error) {
	rows := []TopGenreRow{}
	err := r.DB.WithContext(ctx).
		Table(models.BorrowTable+" br").
		Select("b.genre, COUNT(br.id) AS borrow_count").
		Joins("JOIN "+models.BookTable+" b ON b.id = br.book_id").
		Group("b.genre").
		Order("borrow_count DESC, b.genre ASC").
		Scan(&rows).Error
	return rows, err
}
