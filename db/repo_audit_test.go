package db

import (
	"context"
	"testing"

	"Gin_postgres_redis_library_api/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_AuditLog(t *testing.T) {
	ctx := context.Background()
	r, _ := tempRepo(t)

	reason := "weeded"
	require.NoError(t, r.LogAudit(ctx, &models.AuditLog{ActorUsername: "ann", Action: models.AuditBookDeleted, TargetID: "b1", Detail: &reason}))
	require.NoError(t, r.LogAudit(ctx, &models.AuditLog{ActorUsername: "ann", Action: models.AuditAuthorDeleted, TargetID: "a1"}))

	all, err := r.ListAudit(ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, models.AuditAuthorDeleted, all[0].Action)

	books, err := r.ListAudit(ctx, models.AuditBookDeleted, 10)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "weeded", *books[0].Detail)
}
