package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const AuditTable = "lib_audit_log"

// AuditLog records who performed a destructive action and on what.
type AuditLog struct {
	ID            string    `gorm:"type:uuid;primaryKey" json:"id"`
	ActorID       string    `gorm:"type:uuid;index" json:"actorId"`
	ActorUsername string    `gorm:"size:255" json:"actorUsername"`
	Action        string    `gorm:"size:64;index;not null" json:"action"`
	TargetID      string    `gorm:"size:64" json:"targetId,omitempty"`
	Detail        *string   `json:"detail,omitempty"`
	CreatedAt     time.Time `gorm:"index" json:"createdAt"`
}

const (
	AuditBookDeleted   = "book.deleted"
	AuditAuthorDeleted = "author.deleted"
	AuditPasswordReset = "user.password_reset"
)

func (AuditLog) TableName() string { return AuditTable }

func (l *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
