// controllers/srv.go
package controllers

import (
	"context"

	"Gin_postgres_redis_library_api/app"
	"Gin_postgres_redis_library_api/auth"
	"Gin_postgres_redis_library_api/config"
	"Gin_postgres_redis_library_api/db"
	"Gin_postgres_redis_library_api/models"
	"Gin_postgres_redis_library_api/session"
	"Gin_postgres_redis_library_api/upload"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type Srv struct {
	Repo   *db.Repo
	Issuer *auth.Issuer
	Tokens *session.TokenStore
	Resets *session.ResetStore
	Photos *upload.PhotoStore
	Mail   Mailer
	Cfg    config.Config
	Log    zerolog.Logger
}

func GetSrv(a *app.App) *Srv {
	return &Srv{
		Repo:   a.Repo,
		Issuer: a.Issuer,
		Tokens: a.Tokens,
		Resets: a.Resets,
		Photos: a.Photos,
		Mail:   NewSMTPMailer(a.Config, a.Log),
		Cfg:    a.Config,
		Log:    a.Log,
	}
}

// issueToken signs a JWT for u and registers its session.
func (s *Srv) issueToken(ctx context.Context, u *models.User) (string, error) {
	token, jti, exp, err := s.Issuer.Issue(u.ID)
	if err != nil {
		return "", err
	}
	if err := s.Tokens.Create(ctx, jti, u.ID, exp); err != nil {
		return "", err
	}
	return token, nil
}

// audit records a destructive action by the current user. Failures are only
// logged; the action itself already happened.
func (s *Srv) audit(c *gin.Context, action, targetID string) {
	entry := &models.AuditLog{ActorID: app.UserID(c), Action: action, TargetID: targetID}
	if u := app.CurrentUser(c); u != nil {
		entry.ActorUsername = u.Username
	}
	if entry.ActorID == "" {
		entry.ActorID = targetID
	}
	if err := s.Repo.LogAudit(c.Request.Context(), entry); err != nil {
		s.Log.Warn().Err(err).Str("action", action).Msg("audit")
	}
}
