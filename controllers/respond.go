package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"Gin_postgres_redis_library_api/app"
	"Gin_postgres_redis_library_api/auth"
	"Gin_postgres_redis_library_api/db"
	"Gin_postgres_redis_library_api/session"
	"Gin_postgres_redis_library_api/upload"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const msgInternal = "Internal server error"

func init() {
	// report fields by their json/form name
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
				if name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
	}
}

// errStatus maps domain errors to a status and a client message. ok is false
// for errors the client should not see.
func (s *Srv) errStatus(err error) (status int, msg string, ok bool) {
	switch {
	case errors.Is(err, db.ErrBookNotFound):
		return http.StatusNotFound, "Book not found", true
	case errors.Is(err, db.ErrAuthorNotFound):
		return http.StatusNotFound, "Author not found", true
	case errors.Is(err, db.ErrBorrowNotFound):
		return http.StatusNotFound, "Borrow record not found", true
	case errors.Is(err, db.ErrUserNotFound):
		return http.StatusNotFound, "User not found", true
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound, "Not found", true

	case errors.Is(err, db.ErrNoCopiesAvailable):
		return http.StatusBadRequest, "No copies available for borrowing", true
	case errors.Is(err, db.ErrAlreadyReturned):
		return http.StatusBadRequest, "Book already returned", true
	case errors.Is(err, db.ErrBookBorrowed):
		return http.StatusBadRequest, "Cannot delete book that is currently borrowed", true
	case errors.Is(err, db.ErrAuthorHasBooks):
		return http.StatusBadRequest, "Cannot delete author with associated books. Delete books first.", true
	case errors.Is(err, db.ErrNegativeCopies):
		return http.StatusBadRequest, "Available copies cannot be negative", true
	case errors.Is(err, db.ErrDuplicateUser):
		return http.StatusBadRequest, "User already exists", true

	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "Invalid credentials", true
	case errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized, "Not authorized to access this route", true
	case errors.Is(err, session.ErrResetTokenInvalid):
		return http.StatusBadRequest, "Invalid or expired reset token", true

	case errors.Is(err, upload.ErrMissingFile):
		return http.StatusBadRequest, "Photo is required", true
	case errors.Is(err, upload.ErrNotImage):
		return http.StatusBadRequest, "Only image files are allowed!", true
	case errors.Is(err, upload.ErrTooLarge):
		return http.StatusBadRequest, "Photo must be at most " + s.Photos.Limit(), true
	}
	return http.StatusInternalServerError, msgInternal, false
}

func (s *Srv) fail(c *gin.Context, err error) {
	status, msg, ok := s.errStatus(err)
	if !ok {
		s.Log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		_ = c.Error(err)
	}
	app.Fail(c, status, msg)
}

// badInput answers a binding failure with the first problem in plain words.
func badInput(c *gin.Context, err error) {
	app.Fail(c, http.StatusBadRequest, inputMessage(err))
}

func inputMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request body"
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "Please provide a valid email"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// validID reports whether id can be a row key. Malformed ids are treated as
// missing rows rather than passed to the database.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
