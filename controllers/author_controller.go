package controllers

import (
	"errors"
	"net/http"
	"strings"

	"Gin_postgres_redis_library_api/app"
	"Gin_postgres_redis_library_api/db"
	"Gin_postgres_redis_library_api/models"
	"Gin_postgres_redis_library_api/upload"

	"github.com/gin-gonic/gin"
)

type AuthorController struct{ *Srv }

func GetAuthorController(s *Srv) *AuthorController { return &AuthorController{Srv: s} }

func (ac *AuthorController) photo(c *gin.Context) (string, error) {
	fh, err := c.FormFile("photo")
	if errors.Is(err, http.ErrMissingFile) {
		return "", upload.ErrMissingFile
	}
	if err != nil {
		return "", err
	}
	return ac.Photos.SaveFile(fh)
}

// removePhoto is best effort: a stale file is not worth failing a request.
func (ac *AuthorController) removePhoto(p string) {
	if p == "" {
		return
	}
	if err := ac.Photos.Remove(p); err != nil {
		ac.Log.Warn().Err(err).Str("photo", p).Msg("remove author photo")
	}
}

// POST /api/authors (multipart: firstname, lastname, photo)
func (ac *AuthorController) CreateAuthor(c *gin.Context) {
	first := strings.TrimSpace(c.PostForm("firstname"))
	last := strings.TrimSpace(c.PostForm("lastname"))
	switch {
	case first == "":
		app.Fail(c, http.StatusBadRequest, "firstname is required")
		return
	case last == "":
		app.Fail(c, http.StatusBadRequest, "lastname is required")
		return
	}

	photo, err := ac.photo(c)
	if err != nil {
		ac.fail(c, err)
		return
	}

	a := &models.Author{Firstname: first, Lastname: last, Photo: photo}
	if err := ac.Repo.CreateAuthor(c.Request.Context(), a); err != nil {
		ac.removePhoto(photo)
		ac.fail(c, err)
		return
	}
	app.OK(c, http.StatusCreated, a)
}

// GET /api/authors
func (ac *AuthorController) ListAuthors(c *gin.Context) {
	authors, err := ac.Repo.ListAuthors(c.Request.Context())
	if err != nil {
		ac.fail(c, err)
		return
	}
	app.OKList(c, len(authors), authors)
}

// PUT /api/authors/:id
func (ac *AuthorController) UpdateAuthor(c *gin.Context) {
	id := c.Param("id")
	if !validID(id) {
		ac.fail(c, db.ErrAuthorNotFound)
		return
	}
	var in struct {
		Firstname string `json:"firstname" form:"firstname"`
		Lastname  string `json:"lastname" form:"lastname"`
	}
	if err := c.ShouldBind(&in); err != nil {
		badInput(c, err)
		return
	}

	a, err := ac.Repo.UpdateAuthorNames(c.Request.Context(), id,
		strings.TrimSpace(in.Firstname), strings.TrimSpace(in.Lastname))
	if err != nil {
		ac.fail(c, err)
		return
	}
	app.OK(c, http.StatusOK, a)
}

// PUT /api/authors/:id/photo
func (ac *AuthorController) UpdateAuthorPhoto(c *gin.Context) {
	id := c.Param("id")
	photo, err := ac.photo(c)
	if err != nil {
		ac.fail(c, err)
		return
	}
	if !validID(id) {
		ac.removePhoto(photo)
		ac.fail(c, db.ErrAuthorNotFound)
		return
	}

	a, old, err := ac.Repo.ReplaceAuthorPhoto(c.Request.Context(), id, photo)
	if err != nil {
		ac.removePhoto(photo)
		ac.fail(c, err)
		return
	}
	ac.removePhoto(old)
	app.OK(c, http.StatusOK, a)
}

// DELETE /api/authors/:id
func (ac *AuthorController) DeleteAuthor(c *gin.Context) {
	id := c.Param("id")
	if !validID(id) {
		ac.fail(c, db.ErrAuthorNotFound)
		return
	}
	a, err := ac.Repo.DeleteAuthor(c.Request.Context(), id)
	if err != nil {
		ac.fail(c, err)
		return
	}
	ac.removePhoto(a.Photo)
	ac.audit(c, models.AuditAuthorDeleted, id)
	c.JSON(http.StatusOK, app.Response{Success: true, Message: "Author deleted successfully"})
}
