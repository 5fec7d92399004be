package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/rubnab73/School/internal/models"
	"github.com/rubnab73/School/internal/repositories"
)

type ActivityPostgreSQL struct {
	db *gorm.DB
}

func NewActivityPostgreSQL(db *gorm.DB) repositories.ActivityRepository {
	return &ActivityPostgreSQL{db: db}
}

func (a *ActivityPostgreSQL) Create(ctx context.Context, tx *gorm.DB, entry *models.ActivityLog) error {
	if err := getDB(a.db, tx).WithContext(ctx).Create(entry).Error; err != nil {
		return handleDBError(err, "create activity log")
	}
	return nil
}

func (a *ActivityPostgreSQL) ListRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*models.ActivityLog, error) {
	if limit <= 0 {
		limit = 50
	}

	var entries []*models.ActivityLog
	if err := getDB(a.db, tx).WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, handleDBError(err, "list activity logs")
	}
	return entries, nil
}
