package db

import (
	"context"
	"fmt"

	"Gin_postgres_redis_library_api/models"
)

func (r *Repo) LogAudit(ctx context.Context, entry *models.AuditLog) error {
	if err := r.DB.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// ListAudit returns the newest entries first, optionally for one action.
func (r *Repo) ListAudit(ctx context.Context, action string, limit int) ([]models.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	q := r.DB.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if action != "" {
		q = q.Where("action = ?", action)
	}
	logs := []models.AuditLog{}
	err := q.Find(&logs).Error
	return logs, err
}
