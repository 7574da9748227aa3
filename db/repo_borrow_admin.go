// db/repo_borrow_admin.go
package db

import (
	"context"
	"strings"
	"time"

	"Gin_postgres_redis_library_api/models"

	"gorm.io/gorm"
)

// BorrowHistoryRow is one borrow record joined with its book and author.
type BorrowHistoryRow struct {
	ID         string     `json:"id"`
	BookID     string     `json:"bookId"`
	Person     string     `json:"person"`
	BorrowedAt time.Time  `json:"borrowedAt"`
	ReturnedAt *time.Time `json:"returnedAt"`

	// book and author (nullable for orphaned records)
	Title      *string `json:"title,omitempty"`
	Genre      *string `json:"genre,omitempty"`
	AuthorName *string `json:"authorName,omitempty"`
}

type BorrowHistoryQuery struct {
	Q      string // person or title, case-insensitive substring
	Status string // "", "active", "returned"
	BookID string
	Page   int
	Size   int
}

type PagedBorrows struct {
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Size  int                `json:"size"`
	Items []BorrowHistoryRow `json:"items"`
}

func (q *BorrowHistoryQuery) normalize() {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Size <= 0 || q.Size > 200 {
		q.Size = 20
	}
}

func (r *Repo) borrowHistoryBase(ctx context.Context, q BorrowHistoryQuery) *gorm.DB {
	qry := r.DB.WithContext(ctx).
		Table(models.BorrowTable+" br").
		Joins("LEFT JOIN "+models.BookTable+" b ON b.id = br.book_id").
		Joins("LEFT JOIN "+models.AuthorTable+" a ON a.id = b.author_id")

	if s := strings.TrimSpace(q.Q); s != "" {
		pat := "%" + strings.ToLower(s) + "%"
		qry = qry.Where("LOWER(br.person) LIKE ? OR LOWER(b.title) LIKE ?", pat, pat)
	}
	if q.BookID != "" {
		qry = qry.Where("br.book_id = ?", q.BookID)
	}
	switch q.Status {
	case "active":
		qry = qry.Where("br.returned_at IS NULL")
	case "returned":
		qry = qry.Where("br.returned_at IS NOT NULL")
	}
	return qry
}

// ListBorrowHistory pages through all borrow records, newest first.
func (r *Repo) ListBorrowHistory(ctx context.Context, q BorrowHistoryQuery) (*PagedBorrows, error) {
	q.normalize()

	var total int64
	if err := r.borrowHistoryBase(ctx, q).Count(&total).Error; err != nil {
		return nil, err
	}

	rows := []BorrowHistoryRow{}
	err := r.borrowHistoryBase(ctx, q).
		Select(`
			br.id, br.book_id, br.person, br.borrowed_at, br.returned_at,
			b.title, b.genre,
			a.firstname || ' ' || a.lastname AS author_name
		`).
		Order("br.borrowed_at DESC").
		Offset((q.Page - 1) * q.Size).
		Limit(q.Size).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return &PagedBorrows{Total: total, Page: q.Page, Size: q.Size, Items: rows}, nil
}
