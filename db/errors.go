package db

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("not found")

	ErrBookNotFound   = fmt.Errorf("book %w", ErrNotFound)
	ErrAuthorNotFound = fmt.Errorf("author %w", ErrNotFound)
	ErrBorrowNotFound = fmt.Errorf("borrow record %w", ErrNotFound)
	ErrUserNotFound   = fmt.Errorf("user %w", ErrNotFound)

	// ErrNoCopiesAvailable: the book exists but availableCopies is 0.
	ErrNoCopiesAvailable = errors.New("no copies available for borrowing")
	// ErrAlreadyReturned: the borrow record is no longer active.
	ErrAlreadyReturned = errors.New("book already returned")
	// ErrBookBorrowed: a book cannot be deleted while any record is active.
	ErrBookBorrowed = errors.New("cannot delete book that is currently borrowed")
	// ErrAuthorHasBooks: an author cannot be deleted while books reference it.
	ErrAuthorHasBooks = errors.New("cannot delete author with associated books")

	ErrDuplicateUser  = errors.New("user already exists")
	ErrNegativeCopies = errors.New("available copies cannot be negative")
)

// notFound maps gorm's missing-row error to the entity sentinel.
func notFound(err, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
