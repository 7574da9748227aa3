package app

import (
	"errors"
	"net/http"
	"strings"

	"Gin_postgres_redis_library_api/db"
	"Gin_postgres_redis_library_api/models"
	"Gin_postgres_redis_library_api/session"

	"github.com/gin-gonic/gin"
)

const (
	ctxUserID  = "userID"
	ctxTokenID = "tokenID"
	ctxUser    = "user"

	msgNotAuthorized = "Not authorized to access this route"
)

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// AuthRequired accepts a request when the bearer token verifies, its session
// is still registered and the user still exists.
func AuthRequired(a *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		raw := bearerToken(c)
		if raw == "" {
			Fail(c, http.StatusUnauthorized, msgNotAuthorized)
			return
		}
		claims, err := a.Issuer.Verify(raw)
		if err != nil {
			Fail(c, http.StatusUnauthorized, msgNotAuthorized)
			return
		}

		ts, err := a.Tokens.Get(ctx, claims.ID)
		if errors.Is(err, session.ErrSessionNotFound) {
			Fail(c, http.StatusUnauthorized, msgNotAuthorized)
			return
		}
		if err != nil {
			a.Log.Error().Err(err).Msg("load token session")
			Fail(c, http.StatusInternalServerError, "Internal server error")
			return
		}
		if ts.UserID != claims.Subject {
			Fail(c, http.StatusUnauthorized, msgNotAuthorized)
			return
		}

		// 确认用户仍存在
		u, err := a.Repo.FindUserByID(ctx, claims.Subject)
		if errors.Is(err, db.ErrNotFound) {
			_ = a.Tokens.Delete(ctx, claims.ID)
			Fail(c, http.StatusUnauthorized, msgNotAuthorized)
			return
		}
		if err != nil {
			a.Log.Error().Err(err).Msg("load user")
			Fail(c, http.StatusInternalServerError, "Internal server error")
			return
		}

		c.Set(ctxUserID, u.ID)
		c.Set(ctxTokenID, claims.ID)
		c.Set(ctxUser, u)
		c.Next()
	}
}

func UserID(c *gin.Context) string { return c.GetString(ctxUserID) }

func TokenID(c *gin.Context) string { return c.GetString(ctxTokenID) }

func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(ctxUser)
	if !ok {
		return nil
	}
	u, _ := v.(*models.User)
	return u
}
