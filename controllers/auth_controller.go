package controllers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"Gin_postgres_redis_library_api/app"
	"Gin_postgres_redis_library_api/auth"
	"Gin_postgres_redis_library_api/db"
	"Gin_postgres_redis_library_api/models"

	"github.com/gin-gonic/gin"
)

type AuthController struct{ *Srv }

func GetAuthController(s *Srv) *AuthController { return &AuthController{Srv: s} }

// POST /api/auth/signup
func (ac *AuthController) Signup(c *gin.Context) {
	var in struct {
		Username string `json:"username" binding:"required,min=3"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badInput(c, err)
		return
	}
	if len(strings.TrimSpace(in.Username)) < 3 {
		app.Fail(c, http.StatusBadRequest, "username must be at least 3 characters")
		return
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		ac.fail(c, err)
		return
	}
	u := &models.User{Username: in.Username, Email: in.Email, Password: hash}
	if err := ac.Repo.CreateUser(c.Request.Context(), u); err != nil {
		ac.fail(c, err)
		return
	}

	token, err := ac.issueToken(c.Request.Context(), u)
	if err != nil {
		ac.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, app.Response{Success: true, Token: token, Data: u})
}

// POST /api/auth/login
func (ac *AuthController) Login(c *gin.Context) {
	var in struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		app.Fail(c, http.StatusBadRequest, "Please provide email and password")
		return
	}

	ctx := c.Request.Context()
	u, err := ac.Repo.FindUserByEmail(ctx, in.Email)
	if errors.Is(err, db.ErrNotFound) {
		err = auth.ErrInvalidCredentials
	}
	if err == nil {
		err = auth.CheckPassword(u.Password, in.Password)
	}
	if err != nil {
		ac.fail(c, err)
		return
	}

	if err := ac.Repo.TouchUserLogin(ctx, u.ID, c.ClientIP()); err != nil {
		ac.Log.Warn().Err(err).Str("user", u.ID).Msg("record login")
	}
	token, err := ac.issueToken(ctx, u)
	if err != nil {
		ac.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.Response{Success: true, Token: token, Data: u})
}

const msgResetSent = "If that email is registered, a password reset link has been sent"

// POST /api/auth/forgot-password
// Always answers 200 so the endpoint cannot be used to probe for accounts.
func (ac *AuthController) ForgotPassword(c *gin.Context) {
	var in struct {
		Email string `json:"email" binding:"required,email"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badInput(c, err)
		return
	}

	ctx := c.Request.Context()
	u, err := ac.Repo.FindUserByEmail(ctx, in.Email)
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusOK, app.Response{Success: true, Message: msgResetSent})
		return
	}
	if err != nil {
		ac.fail(c, err)
		return
	}

	token, err := ac.Resets.Issue(ctx, u.ID)
	if err != nil {
		ac.fail(c, err)
		return
	}
	if err := ac.Mail.SendPasswordReset(u.Email, ac.resetLink(token), ac.Resets.TTL()); err != nil {
		ac.Log.Error().Err(err).Str("user", u.ID).Msg("send reset mail")
	}

	resp := app.Response{Success: true, Message: msgResetSent}
	if ac.Cfg.EchoResetToken && !ac.Cfg.Production() {
		resp.Data = app.H{"resetToken": token}
	}
	c.JSON(http.StatusOK, resp)
}

func (ac *AuthController) resetLink(token string) string {
	origin := "http://localhost:" + ac.Cfg.Port
	if len(ac.Cfg.WebOrigins) > 0 {
		origin = ac.Cfg.WebOrigins[0]
	}
	return strings.TrimRight(origin, "/") + "/reset-password?token=" + url.QueryEscape(token)
}

// POST /api/auth/reset-password
func (ac *AuthController) ResetPassword(c *gin.Context) {
	var in struct {
		Token    string `json:"token" binding:"required"`
		Password string `json:"password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		badInput(c, err)
		return
	}

	ctx := c.Request.Context()
	uid, err := ac.Resets.Consume(ctx, in.Token)
	if err != nil {
		ac.fail(c, err)
		return
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		ac.fail(c, err)
		return
	}
	if err := ac.Repo.UpdateUserPassword(ctx, uid, hash); err != nil {
		ac.fail(c, err)
		return
	}
	// old tokens must not outlive the old password
	if err := ac.Tokens.RevokeAllForUser(ctx, uid); err != nil {
		ac.Log.Error().Err(err).Str("user", uid).Msg("revoke sessions after reset")
	}
	ac.audit(c, models.AuditPasswordReset, uid)
	c.JSON(http.StatusOK, app.Response{Success: true, Message: "Password has been reset"})
}

// POST /api/auth/refresh-token
func (ac *AuthController) RefreshToken(c *gin.Context) {
	ctx := c.Request.Context()
	u := app.CurrentUser(c)
	token, err := ac.issueToken(ctx, u)
	if err != nil {
		ac.fail(c, err)
		return
	}
	if err := ac.Tokens.Delete(ctx, app.TokenID(c)); err != nil {
		ac.Log.Warn().Err(err).Msg("revoke refreshed token")
	}
	c.JSON(http.StatusOK, app.Response{Success: true, Token: token, Data: u})
}

// POST /api/auth/logout
func (ac *AuthController) Logout(c *gin.Context) {
	if err := ac.Tokens.Delete(c.Request.Context(), app.TokenID(c)); err != nil {
		ac.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.Response{Success: true, Message: "Logged out"})
}

// GET /api/auth/me
func (ac *AuthController) Me(c *gin.Context) {
	app.OK(c, http.StatusOK, app.CurrentUser(c))
}
