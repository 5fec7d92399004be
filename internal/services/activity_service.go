package services

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/rubnab73/School/internal/models"
	"github.com/rubnab73/School/internal/repositories"
)

const DefaultActivityLimit = 50

type activityService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
}

func NewActivityService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger) ActivityService {
	return &activityService{repo: repo, db: db, logger: logger}
}

func (s *activityService) Recent(ctx context.Context, limit int) ([]*models.ActivityLog, error) {
	if limit <= 0 || limit > DefaultActivityLimit {
		limit = DefaultActivityLimit
	}
	entries, err := s.repo.Activity().ListRecent(ctx, s.db, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	return entries, nil
}
