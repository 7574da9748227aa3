package db

import (
	"context"
	"fmt"
	"strings"

	"Gin_postgres_redis_library_api/events"
	"Gin_postgres_redis_library_api/models"

	"gorm.io/gorm"
)

type BooksQuery struct {
	Genre    string
	AuthorID string
}

// BookPatch holds the fields of an update; nil means unchanged.
type BookPatch struct {
	Title           *string
	Genre           *string
	AuthorID        *string
	AvailableCopies *int
}

func (p BookPatch) changes() map[string]any {
	m := map[string]any{}
	if p.Title != nil {
		m["title"] = strings.TrimSpace(*p.Title)
	}
	if p.Genre != nil {
		m["genre"] = strings.TrimSpace(*p.Genre)
	}
	if p.AuthorID != nil {
		m["author_id"] = *p.AuthorID
	}
	if p.AvailableCopies != nil {
		m["available_copies"] = *p.AvailableCopies
	}
	return m
}

// CreateBook inserts a book after checking its author exists. The author row
// is share-locked on Postgres so DeleteAuthor cannot slip in between.
func (r *Repo) CreateBook(ctx context.Context, b *models.Book) error {
	if b.AvailableCopies < 0 {
		return ErrNegativeCopies
	}
	b.Title = strings.TrimSpace(b.Title)
	b.Genre = strings.TrimSpace(b.Genre)

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var a models.Author
		if err := lockRow(tx, "SHARE").First(&a, "id = ?", b.AuthorID).Error; err != nil {
			return notFound(err, ErrAuthorNotFound)
		}
		if err := tx.Create(b).Error; err != nil {
			return err
		}
		b.Author = &a
		return nil
	})
}

func (r *Repo) ListBooks(ctx context.Context, q BooksQuery) ([]models.Book, error) {
	tx := r.DB.WithContext(ctx).Preload("Author").Order("created_at DESC")
	if g := strings.TrimSpace(q.Genre); g != "" {
		tx = tx.Where("genre = ?", g)
	}
	if a := strings.TrimSpace(q.AuthorID); a != "" {
		tx = tx.Where("author_id = ?", a)
	}
	books := []models.Book{}
	if err := tx.Find(&books).Error; err != nil {
		return nil, err
	}
	return books, nil
}

func (r *Repo) FindBookByID(ctx context.Context, id string) (*models.Book, error) {
	var b models.Book
	if err := r.DB.WithContext(ctx).Preload("Author").First(&b, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrBookNotFound)
	}
	return &b, nil
}

// UpdateBook applies a partial update. Setting availableCopies directly is an
// administrative correction and bypasses the borrow accounting.
func (r *Repo) UpdateBook(ctx context.Context, id string, p BookPatch) (*models.Book, error) {
	if p.AvailableCopies != nil && *p.AvailableCopies < 0 {
		return nil, ErrNegativeCopies
	}
	var b models.Book
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockRow(tx, "UPDATE").First(&b, "id = ?", id).Error; err != nil {
			return notFound(err, ErrBookNotFound)
		}
		if p.AuthorID != nil && *p.AuthorID != b.AuthorID {
			var a models.Author
			if err := lockRow(tx, "SHARE").First(&a, "id = ?", *p.AuthorID).Error; err != nil {
				return notFound(err, ErrAuthorNotFound)
			}
		}
		changes := p.changes()
		if len(changes) == 0 {
			return nil
		}
		if err := tx.Model(&b).Updates(changes).Error; err != nil {
			return err
		}
		return tx.First(&b, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// DeleteBook removes a book with no active borrows, then all of its returned
// records. The active-borrow check and the delete run as one statement.
func (r *Repo) DeleteBook(ctx context.Context, id string) error {
	var purged int64
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b models.Book
		if err := lockRow(tx, "UPDATE").First(&b, "id = ?", id).Error; err != nil {
			return notFound(err, ErrBookNotFound)
		}
		res := tx.Exec(fmt.Sprintf(`
		  DELETE FROM %s
		  WHERE id = ? AND NOT EXISTS (SELECT 1 FROM %s WHERE book_id = ? AND returned_at IS NULL)
		`, models.BookTable, models.BorrowTable), id, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrBookBorrowed
		}
		res = tx.Where("book_id = ?", id).Delete(&models.BorrowRecord{})
		purged = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return err
	}
	r.Log.Debug().Str("book", id).Int64("records", purged).Msg("book deleted")
	r.publish(ctx, events.BorrowEvent{Type: events.BookDeleted, BookID: id, At: nowUTC()})
	return nil
}
