package controllers

import (
	"strconv"

	"Gin_postgres_redis_library_api/app"

	"github.com/gin-gonic/gin"
)

type AuditController struct{ *Srv }

func GetAuditController(s *Srv) *AuditController { return &AuditController{Srv: s} }

// GET /api/audit-log?action=&limit=
func (ac *AuditController) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	logs, err := ac.Repo.ListAudit(c.Request.Context(), c.Query("action"), limit)
	if err != nil {
		ac.fail(c, err)
		return
	}
	app.OKList(c, len(logs), logs)
}

