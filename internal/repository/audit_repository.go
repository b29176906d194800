package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/otcheredev/clinic-desk/internal/models"
)

// AuditRepository handles audit log database operations
type AuditRepository struct {
	db *gorm.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *gorm.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

// Record creates a new audit log entry
func (r *AuditRepository) Record(ctx context.Context, entry *models.AuditLog) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create audit log: %w", err)
	}
	return nil
}

// ListRecent retrieves the newest audit logs, optionally for one user
func (r *AuditRepository) ListRecent(ctx context.Context, userEmail string, limit, offset int) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	query := r.db.WithContext(ctx).Order("created_at DESC")

	if userEmail != "" {
		query = query.Where("user_email = ?", userEmail)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	if err := query.Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to get audit logs: %w", err)
	}
	return logs, nil
}

// ListByResource retrieves audit logs for one appointment or patient
func (r *AuditRepository) ListByResource(ctx context.Context, resourceType, resourceID string) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	if err := r.db.WithContext(ctx).
		Where("resource_type = ? AND resource_id = ?", resourceType, resourceID).
		Order("created_at DESC").
		Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to get audit logs: %w", err)
	}
	return logs, nil
}
