package controllers

import (
	"net/http"
	"strconv"

	"Gin_postgres_redis_library_api/app"
	"Gin_postgres_redis_library_api/db"

	"github.com/gin-gonic/gin"
)

type AnalyticsController struct{ *Srv }

func GetAnalyticsController(s *Srv) *AnalyticsController { return &AnalyticsController{Srv: s} }

// GET /api/top-authors
func (ac *AnalyticsController) TopAuthors(c *gin.Context) {
	limit := db.DefaultTopAuthors
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 50 {
			app.Fail(c, http.StatusBadRequest, "limit must be between 1 and 50")
			return
		}
		limit = n
	}
	rows, err := ac.Repo.TopAuthors(c.Request.Context(), limit)
	if err != nil {
		ac.fail(c, err)
		return
	}
	app.OK(c, http.StatusOK, rows)
}

// GET /api/top-genres
func (ac *AnalyticsController) TopGenres(c *gin.Context) {
	rows, err := ac.Repo.TopGenres(c.Request.Context())
	if err != nil {
		ac.fail(c, err)
		return
	}
	app.OK(c, http.StatusOK, rows)
}
