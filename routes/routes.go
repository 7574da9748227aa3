package routes

import (
	"context"
	"net/http"
	"time"

	"Gin_postgres_redis_library_api/app"
	"Gin_postgres_redis_library_api/controllers"
	"Gin_postgres_redis_library_api/upload"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, a *app.App) {
	// 控制器与依赖
	s := controllers.GetSrv(a)
	authCtl := controllers.GetAuthController(s)
	authorCtl := controllers.GetAuthorController(s)
	bookCtl := controllers.GetBookController(s)
	borrowCtl := controllers.GetBorrowController(s)
	analyticsCtl := controllers.GetAnalyticsController(s)
	auditCtl := controllers.GetAuditController(s)

	// 复用的中间件
	authMW := app.AuthRequired(a)
	apiLimit := app.RateLimit(a.RDB, app.Limit{
		Name: "api", Max: a.Config.APIRateLimit, Window: a.Config.APIRateWindow, Message: app.APILimitMessage,
	}, a.Log)
	authLimit := app.RateLimit(a.RDB, app.Limit{
		Name: "auth", Max: a.Config.AuthRateLimit, Window: a.Config.AuthRateWindow, Message: app.AuthLimitMessage,
	}, a.Log)

	r.GET("/", func(c *app.Ctx) { c.String(http.StatusOK, "Library Book Management API is running!") })
	r.GET("/healthz", health(a))
	r.Static(upload.PublicPrefix, a.Photos.Root())

	api := r.Group("/api", apiLimit)

	// ------------------------------
	// Auth
	// ------------------------------
	authGrp := api.Group("/auth")
	{
		authGrp.POST("/signup", authLimit, authCtl.Signup)
		authGrp.POST("/login", authLimit, authCtl.Login)
		authGrp.POST("/forgot-password", authLimit, authCtl.ForgotPassword)
		authGrp.POST("/reset-password", authLimit, authCtl.ResetPassword)

		authGrp.POST("/refresh-token", authMW, authCtl.RefreshToken)
		authGrp.POST("/logout", authMW, authCtl.Logout)
		authGrp.GET("/me", authMW, authCtl.Me)
	}

	// ------------------------------
	// Authors
	// ------------------------------
	authors := api.Group("/authors")
	{
		authors.GET("", authorCtl.ListAuthors)
		authors.POST("", authMW, authorCtl.CreateAuthor)
		authors.PUT("/:id", authMW, authorCtl.UpdateAuthor)
		authors.PUT("/:id/photo", authMW, authorCtl.UpdateAuthorPhoto)
		authors.DELETE("/:id", authMW, authorCtl.DeleteAuthor)
	}

	// ------------------------------
	// Books
	// ------------------------------
	books := api.Group("/books")
	{
		books.GET("", bookCtl.ListBooks) // ?genre=&author=
		books.POST("", authMW, bookCtl.CreateBook)
		books.PUT("/:id", authMW, bookCtl.UpdateBook)
		books.DELETE("/:id", authMW, bookCtl.DeleteBook)
	}

	// ------------------------------
	// 借还
	// ------------------------------
	borrow := api.Group("/borrow", authMW)
	{
		borrow.POST("", borrowCtl.Borrow)
		borrow.POST("/return/:id", borrowCtl.Return)
		borrow.GET("", borrowCtl.ListBorrowed)
		borrow.GET("/history", borrowCtl.History)
	}

	// ------------------------------
	// Analytics
	// ------------------------------
	stats := api.Group("", authMW)
	{
		stats.GET("/top-authors", analyticsCtl.TopAuthors)
		stats.GET("/top-genres", analyticsCtl.TopGenres)
		stats.GET("/audit-log", auditCtl.List) // ?action=&limit=
	}
}

func health(a *app.App) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := app.H{"db": "ok", "redis": "ok"}
		code := http.StatusOK
		if sqlDB, err := a.DB.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			status["db"] = "down"
			code = http.StatusServiceUnavailable
		}
		if err := a.RDB.Ping(ctx).Err(); err != nil {
			status["redis"] = "down"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, app.H{"ok": code == http.StatusOK, "checks": status})
	}
}
