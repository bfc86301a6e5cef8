package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"autoparts/internal/models"
)

func (s *Store) RecordAudit(ctx context.Context, entry *models.AuditLog) error {
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("store.RecordAudit: %w", err)
	}
	return nil
}

// AuditLogs returns the newest entries first, optionally only those of one
// user.
func (s *Store) AuditLogs(ctx context.Context, userID *uuid.UUID, limit int) ([]models.AuditLog, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC, id DESC").Limit(limit)
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}
	var logs []models.AuditLog
	if err := q.Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("store.AuditLogs: %w", err)
	}
	return logs, nil
}
