package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/pageza/alchemorsel-import/backend/internal/models"
)

const maxLedgerPage = 100

// UploadLedger persists a row per uploaded image
type UploadLedger struct {
	db *gorm.DB
}

// NewUploadLedger creates a new UploadLedger instance
func NewUploadLedger(db *gorm.DB) *UploadLedger {
	return &UploadLedger{db: db}
}

// Record stores an upload
func (l *UploadLedger) Record(ctx context.Context, upload *models.Upload) error {
	if err := l.db.WithContext(ctx).Create(upload).Error; err != nil {
		return fmt.Errorf("failed to record upload: %w", err)
	}
	return nil
}

// ListByUser returns a user's uploads, newest first
func (l *UploadLedger) ListByUser(ctx context.Context, userID string, limit int) ([]*models.Upload, error) {
	if limit <= 0 || limit > maxLedgerPage {
		limit = maxLedgerPage
	}
	var uploads []*models.Upload
	err := l.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&uploads).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}
	return uploads, nil
}
