// controllers/borrow_controller.go
package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"Gin_postgres_redis_library_api/app"
	"Gin_postgres_redis_library_api/db"

	"github.com/gin-gonic/gin"
)

type BorrowController struct{ *Srv }

func GetBorrowController(s *Srv) *BorrowController { return &BorrowController{Srv: s} }

// POST /api/borrow {bookId, person}
func (bc *BorrowController) Borrow(c *gin.Context) {
	var in struct {
		BookID string `json:"bookId"`
		Book   string `json:"book"` // 兼容旧字段
		Person string `json:"person" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badInput(c, err)
		return
	}
	bookID := strings.TrimSpace(in.BookID)
	if bookID == "" {
		bookID = strings.TrimSpace(in.Book)
	}
	person := strings.TrimSpace(in.Person)
	switch {
	case bookID == "":
		app.Fail(c, http.StatusBadRequest, "bookId is required")
		return
	case person == "":
		app.Fail(c, http.StatusBadRequest, "person is required")
		return
	}
	if !validID(bookID) {
		bc.fail(c, db.ErrBookNotFound)
		return
	}

	rec, err := bc.Repo.CreateBorrow(c.Request.Context(), bookID, person)
	if err != nil {
		bc.fail(c, err)
		return
	}
	app.OK(c, http.StatusCreated, rec)
}

// POST /api/borrow/return/:id
func (bc *BorrowController) Return(c *gin.Context) {
	id := c.Param("id")
	if !validID(id) {
		bc.fail(c, db.ErrBorrowNotFound)
		return
	}
	rec, err := bc.Repo.ReturnBorrow(c.Request.Context(), id)
	if err != nil {
		bc.fail(c, err)
		return
	}
	app.OK(c, http.StatusOK, rec)
}

// GET /api/borrow
func (bc *BorrowController) ListBorrowed(c *gin.Context) {
	recs, err := bc.Repo.ListActiveBorrows(c.Request.Context())
	if err != nil {
		bc.fail(c, err)
		return
	}
	app.OKList(c, len(recs), recs)
}

// GET /api/borrow/history?status=active|returned&q=&bookId=&page=&size=
func (bc *BorrowController) History(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	q := db.BorrowHistoryQuery{
		Q:      c.Query("q"),
		Status: c.Query("status"),
		BookID: c.Query("bookId"),
		Page:   page,
		Size:   size,
	}
	switch q.Status {
	case "", "active", "returned":
	default:
		app.Fail(c, http.StatusBadRequest, "status must be active or returned")
		return
	}
	if q.BookID != "" && !validID(q.BookID) {
		bc.fail(c, db.ErrBookNotFound)
		return
	}

	res, err := bc.Repo.ListBorrowHistory(c.Request.Context(), q)
	if err != nil {
		bc.fail(c, err)
		return
	}
	app.OK(c, http.StatusOK, res)
}
