package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuditLog records a mutation performed by a staff member through this client
type AuditLog struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserEmail    string    `gorm:"type:varchar(255);index" json:"user_email"`
	Action       string    `gorm:"type:varchar(100);not null;index" json:"action"`
	ResourceType string    `gorm:"type:varchar(50);index" json:"resource_type"`
	ResourceID   string    `gorm:"type:varchar(64);index" json:"resource_id"`
	Status       string    `gorm:"type:varchar(20);index" json:"status"` // success, failure
	ErrorMessage string    `gorm:"type:text" json:"error_message,omitempty"`
	Duration     int64     `json:"duration_ms"`
	CreatedAt    time.Time `gorm:"index" json:"timestamp"`
}

// TableName overrides the table name
func (AuditLog) TableName() string {
	return "client_audit_logs"
}

// BeforeCreate hook
func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

const (
	AuditStatusSuccess = "success"
	AuditStatusFailure = "failure"
)
