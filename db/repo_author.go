package db

import (
	"context"
	"fmt"

	"Gin_postgres_redis_library_api/models"

	"gorm.io/gorm"
)

func (r *Repo) CreateAuthor(ctx context.Context, a *models.Author) error {
	return r.DB.WithContext(ctx).Create(a).Error
}

func (r *Repo) ListAuthors(ctx context.Context) ([]models.Author, error) {
	authors := []models.Author{}
	err := r.DB.WithContext(ctx).Order("created_at DESC").Find(&authors).Error
	return authors, err
}

func (r *Repo) FindAuthorByID(ctx context.Context, id string) (*models.Author, error) {
	var a models.Author
	if err := r.DB.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		return nil, notFound(err, ErrAuthorNotFound)
	}
	return &a, nil
}

// UpdateAuthorNames changes the non-empty name fields only.
func (r *Repo) UpdateAuthorNames(ctx context.Context, id, firstname, lastname string) (*models.Author, error) {
	changes := map[string]any{}
	if firstname != "" {
		changes["firstname"] = firstname
	}
	if lastname != "" {
		changes["lastname"] = lastname
	}

	var a models.Author
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockRow(tx, "UPDATE").First(&a, "id = ?", id).Error; err != nil {
			return notFound(err, ErrAuthorNotFound)
		}
		if len(changes) == 0 {
			return nil
		}
		return tx.Model(&a).Updates(changes).Error
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ReplaceAuthorPhoto stores the new photo path and returns the previous one so
// the caller can remove the old file.
func (r *Repo) ReplaceAuthorPhoto(ctx context.Context, id, photo string) (*models.Author, string, error) {
	var (
		a   models.Author
		old string
	)
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockRow(tx, "UPDATE").First(&a, "id = ?", id).Error; err != nil {
			return notFound(err, ErrAuthorNotFound)
		}
		old = a.Photo
		return tx.Model(&a).Update("photo", photo).Error
	})
	if err != nil {
		return nil, "", err
	}
	return &a, old, nil
}

// DeleteAuthor removes the author only if no book references it. The check
// and the delete are one statement, so a concurrent CreateBook either sees the
// author gone or blocks the delete.
func (r *Repo) DeleteAuthor(ctx context.Context, id string) (*models.Author, error) {
	var a models.Author
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockRow(tx, "UPDATE").First(&a, "id = ?", id).Error; err != nil {
			return notFound(err, ErrAuthorNotFound)
		}
		res := tx.Exec(fmt.Sprintf(`
		  DELETE FROM %s
		  WHERE id = ? AND NOT EXISTS (SELECT 1 FROM %s WHERE author_id = ?)
		`, models.AuthorTable, models.BookTable), id, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAuthorHasBooks
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &a, nil
}
