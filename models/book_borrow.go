// models/book_borrow.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	AuthorTable = "lib_authors"
	BookTable   = "lib_books"
	BorrowTable = "lib_borrow_records"
)

type Author struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Firstname string    `gorm:"size:120;not null" json:"firstname"`
	Lastname  string    `gorm:"size:120;not null" json:"lastname"`
	Photo     string    `gorm:"size:255;not null" json:"photo"` // public path under /uploads
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (a Author) FullName() string { return a.Firstname + " " + a.Lastname }

type Book struct {
	ID              string    `gorm:"type:uuid;primaryKey" json:"id"`
	Title           string    `gorm:"size:255;not null" json:"title"`
	Genre           string    `gorm:"size:120;not null;index" json:"genre"`
	AuthorID        string    `gorm:"type:uuid;not null;index" json:"authorId"`
	Author          *Author   `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	AvailableCopies int       `gorm:"not null;default:0;check:chk_books_available_copies,available_copies >= 0" json:"availableCopies"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// BorrowRecord is Active while ReturnedAt is nil. It is written once on
// creation and once more on return, never after.
type BorrowRecord struct {
	ID         string     `gorm:"type:uuid;primaryKey" json:"id"`
	BookID     string     `gorm:"type:uuid;not null;index:idx_borrow_book_returned,priority:1" json:"bookId"`
	Book       *Book      `gorm:"foreignKey:BookID" json:"book,omitempty"`
	Person     string     `gorm:"size:255;not null" json:"person"`
	BorrowedAt time.Time  `gorm:"not null;index" json:"borrowedAt"`
	ReturnedAt *time.Time `gorm:"index:idx_borrow_book_returned,priority:2" json:"returnedAt"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func (r BorrowRecord) Active() bool { return r.ReturnedAt == nil }

func (Author) TableName() string       { return AuthorTable }
func (Book) TableName() string         { return BookTable }
func (BorrowRecord) TableName() string { return BorrowTable }

func (a *Author) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

func (b *Book) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

func (r *BorrowRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
