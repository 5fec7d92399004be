package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"github.com/rubnab73/School/internal/events"
	"github.com/rubnab73/School/internal/models"
	"github.com/rubnab73/School/internal/repositories"
	"github.com/rubnab73/School/internal/validator"
)

// DepartmentHasStudentsMessage is shown when a delete is refused.
const DepartmentHasStudentsMessage = "Cannot delete department! It has students assigned. Please reassign students first."

type departmentService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	activity  *activityRecorder
}

func NewDepartmentService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) DepartmentService {
	return &departmentService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		activity:  newActivityRecorder(repo, publisher, logger),
	}
}

func (s *departmentService) List(ctx context.Context) ([]*models.Department, error) {
	departments, err := s.repo.Department().List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	return departments, nil
}

func (s *departmentService) Create(ctx context.Context, req *DepartmentRequest, actor *Principal) (*models.Department, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, newValidationError(err)
	}

	department := &models.Department{Name: strings.TrimSpace(req.Name)}
	var published *events.Event

	err := s.withTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.Department().Create(ctx, tx, department); err != nil {
			return err
		}

		var err error
		published, err = s.activity.record(ctx, tx, models.ActivityDepartmentCreated, actor.actorID(), department.ID, map[string]any{
			"name": department.Name,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.repo.Department().InvalidateCache(ctx)
	s.activity.publish(ctx, published)
	s.logger.Info("Department created", "department_id", department.ID, "name", department.Name)

	return department, nil
}

func (s *departmentService) Delete(ctx context.Context, id uint, actor *Principal) error {
	var published *events.Event

	err := s.withTx(ctx, func(tx *gorm.DB) error {
		department, err := s.repo.Department().GetByID(ctx, tx, id)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return nil
			}
			return err
		}

		count, err := s.repo.Department().CountStudents(ctx, tx, id)
		if err != nil {
			return err
		}
		if count > 0 {
			return NewBusinessRuleError("department_has_students", DepartmentHasStudentsMessage, ErrDepartmentHasStudents)
		}

		if err := s.repo.Department().Delete(ctx, tx, id); err != nil {
			return err
		}

		published, err = s.activity.record(ctx, tx, models.ActivityDepartmentDeleted, actor.actorID(), id, map[string]any{
			"name": department.Name,
		})
		return err
	})
	if err != nil {
		return err
	}

	if published != nil {
		s.repo.Department().InvalidateCache(ctx)
		s.activity.publish(ctx, published)
		s.logger.Info("Department deleted", "department_id", id)
	}
	return nil
}

func (s *departmentService) withTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}
