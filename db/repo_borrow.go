// db/repo_borrow.go
package db

import (
	"context"

	"Gin_postgres_redis_library_api/events"
	"Gin_postgres_redis_library_api/models"

	"gorm.io/gorm"
)

// CreateBorrow takes one copy of the book and opens a borrow record for
// person. The decrement only succeeds while copies remain, so two callers
// racing for the last copy cannot both win.
func (r *Repo) CreateBorrow(ctx context.Context, bookID, person string) (*models.BorrowRecord, error) {
	var rec *models.BorrowRecord
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := nowUTC()
		res := tx.Model(&models.Book{}).
			Where("id = ? AND available_copies > 0", bookID).
			Updates(map[string]any{
				"available_copies": gorm.Expr("available_copies - ?", 1),
				"updated_at":       now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			ok, err := exists(tx, &models.Book{}, "id = ?", bookID)
			if err != nil {
				return err
			}
			if !ok {
				return ErrBookNotFound
			}
			return ErrNoCopiesAvailable
		}

		rec = &models.BorrowRecord{BookID: bookID, Person: person, BorrowedAt: now}
		return tx.Create(rec).Error
	})
	if err != nil {
		return nil, err
	}

	r.publish(ctx, events.BorrowEvent{
		Type:     events.BorrowCreated,
		RecordID: rec.ID,
		BookID:   rec.BookID,
		Person:   rec.Person,
		At:       rec.BorrowedAt,
	})
	return rec, nil
}

// ReturnBorrow closes an active record and puts the copy back. A record whose
// book has since been deleted is still closed; there is nothing to increment.
func (r *Repo) ReturnBorrow(ctx context.Context, recordID string) (*models.BorrowRecord, error) {
	var (
		rec    models.BorrowRecord
		orphan bool
	)
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := nowUTC()
		res := tx.Model(&models.BorrowRecord{}).
			Where("id = ? AND returned_at IS NULL", recordID).
			Updates(map[string]any{"returned_at": now, "updated_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			ok, err := exists(tx, &models.BorrowRecord{}, "id = ?", recordID)
			if err != nil {
				return err
			}
			if !ok {
				return ErrBorrowNotFound
			}
			return ErrAlreadyReturned
		}

		if err := tx.First(&rec, "id = ?", recordID).Error; err != nil {
			return err
		}

		res = tx.Model(&models.Book{}).
			Where("id = ?", rec.BookID).
			Updates(map[string]any{
				"available_copies": gorm.Expr("available_copies + ?", 1),
				"updated_at":       now,
			})
		if res.Error != nil {
			return res.Error
		}
		orphan = res.RowsAffected == 0
		return nil
	})
	if err != nil {
		return nil, err
	}

	if orphan {
		r.Log.Warn().Str("record", rec.ID).Str("book", rec.BookID).Msg("returned borrow for missing book")
	}
	r.publish(ctx, events.BorrowEvent{
		Type:     events.BorrowReturned,
		RecordID: rec.ID,
		BookID:   rec.BookID,
		Person:   rec.Person,
		Orphan:   orphan,
		At:       *rec.ReturnedAt,
	})
	return &rec, nil
}

// ListActiveBorrows returns open records, newest first, with book and author.
func (r *Repo) ListActiveBorrows(ctx context.Context) ([]models.BorrowRecord, error) {
	recs := []models.BorrowRecord{}
	err := r.DB.WithContext(ctx).
		Preload("Book.Author").
		Where("returned_at IS NULL").
		Order("borrowed_at DESC").
		Find(&recs).Error
	return recs, err
}

// CountActiveBorrows is the number of open records for a book.
func (r *Repo) CountActiveBorrows(ctx context.Context, bookID string) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).Model(&models.BorrowRecord{}).
		Where("book_id = ? AND returned_at IS NULL", bookID).
		Count(&n).Error
	return n, err
}
