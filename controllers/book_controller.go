package controllers

import (
	"net/http"
	"strings"

	"Gin_postgres_redis_library_api/app"
	"Gin_postgres_redis_library_api/db"
	"Gin_postgres_redis_library_api/models"

	"github.com/gin-gonic/gin"
)

type BookController struct{ *Srv }

func GetBookController(s *Srv) *BookController { return &BookController{Srv: s} }

// authorRef accepts both "authorId" and the older "author" key.
type authorRef struct {
	AuthorID string `json:"authorId"`
	Author   string `json:"author"`
}

func (r authorRef) id() string {
	if r.AuthorID != "" {
		return strings.TrimSpace(r.AuthorID)
	}
	return strings.TrimSpace(r.Author)
}

// POST /api/books
func (bc *BookController) CreateBook(c *gin.Context) {
	var in struct {
		Title           string `json:"title" binding:"required"`
		Genre           string `json:"genre" binding:"required"`
		AvailableCopies *int   `json:"availableCopies" binding:"required,min=0"`
		authorRef
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badInput(c, err)
		return
	}
	title, genre := strings.TrimSpace(in.Title), strings.TrimSpace(in.Genre)
	switch {
	case title == "":
		app.Fail(c, http.StatusBadRequest, "title is required")
		return
	case genre == "":
		app.Fail(c, http.StatusBadRequest, "genre is required")
		return
	case in.id() == "":
		app.Fail(c, http.StatusBadRequest, "authorId is required")
		return
	}
	if !validID(in.id()) {
		bc.fail(c, db.ErrAuthorNotFound)
		return
	}

	b := &models.Book{Title: title, Genre: genre, AuthorID: in.id(), AvailableCopies: *in.AvailableCopies}
	if err := bc.Repo.CreateBook(c.Request.Context(), b); err != nil {
		bc.fail(c, err)
		return
	}
	app.OK(c, http.StatusCreated, b)
}

// GET /api/books?genre=&author=
func (bc *BookController) ListBooks(c *gin.Context) {
	q := db.BooksQuery{Genre: c.Query("genre"), AuthorID: c.Query("author")}
	if q.AuthorID == "" {
		q.AuthorID = c.Query("authorId")
	}
	if q.AuthorID != "" && !validID(q.AuthorID) {
		app.OKList(c, 0, []models.Book{})
		return
	}
	books, err := bc.Repo.ListBooks(c.Request.Context(), q)
	if err != nil {
		bc.fail(c, err)
		return
	}
	app.OKList(c, len(books), books)
}

// PUT /api/books/:id
func (bc *BookController) UpdateBook(c *gin.Context) {
	id := c.Param("id")
	if !validID(id) {
		bc.fail(c, db.ErrBookNotFound)
		return
	}
	var in struct {
		Title           *string `json:"title"`
		Genre           *string `json:"genre"`
		AvailableCopies *int    `json:"availableCopies" binding:"omitempty,min=0"`
		authorRef
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badInput(c, err)
		return
	}

	patch := db.BookPatch{Title: in.Title, Genre: in.Genre, AvailableCopies: in.AvailableCopies}
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		app.Fail(c, http.StatusBadRequest, "title cannot be empty")
		return
	}
	if in.Genre != nil && strings.TrimSpace(*in.Genre) == "" {
		app.Fail(c, http.StatusBadRequest, "genre cannot be empty")
		return
	}
	if ref := in.id(); ref != "" {
		if !validID(ref) {
			bc.fail(c, db.ErrAuthorNotFound)
			return
		}
		patch.AuthorID = &ref
	}

	b, err := bc.Repo.UpdateBook(c.Request.Context(), id, patch)
	if err != nil {
		bc.fail(c, err)
		return
	}
	app.OK(c, http.StatusOK, b)
}

// DELETE /api/books/:id
func (bc *BookController) DeleteBook(c *gin.Context) {
	id := c.Param("id")
	if !validID(id) {
		bc.fail(c, db.ErrBookNotFound)
		return
	}
	if err := bc.Repo.DeleteBook(c.Request.Context(), id); err != nil {
		bc.fail(c, err)
		return
	}
	bc.audit(c, models.AuditBookDeleted, id)
	c.JSON(http.StatusOK, app.Response{Success: true, Message: "Book deleted successfully"})
}
