package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"github.com/rubnab73/School/internal/config"
	"github.com/rubnab73/School/internal/events"
	"github.com/rubnab73/School/internal/models"
	"github.com/rubnab73/School/internal/repositories"
	"github.com/rubnab73/School/internal/validator"
)

type studentService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	activity  *activityRecorder

	// policy decides what Create and Update do with a department id that does not resolve
	policy string
}

func NewStudentService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher, policy string) StudentService {
	if policy == "" {
		policy = config.PolicyLegacy
	}
	return &studentService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		activity:  newActivityRecorder(repo, publisher, logger),
		policy:    policy,
	}
}

func (s *studentService) List(ctx context.Context) ([]*models.Student, error) {
	students, err := s.repo.Student().List(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	return students, nil
}

func (s *studentService) GetByID(ctx context.Context, id uint) (*models.Student, error) {
	student, err := s.repo.Student().GetByID(ctx, s.db, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}
	return student, nil
}

func (s *studentService) Create(ctx context.Context, req *StudentRequest, actor *Principal) (*models.Student, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, newValidationError(err)
	}

	var (
		student   *models.Student
		published *events.Event
	)

	err := s.withTx(ctx, func(tx *gorm.DB) error {
		department, err := s.resolveDepartment(ctx, tx, req.DepartmentID)
		if err != nil {
			return err
		}

		if department == nil {
			switch s.policy {
			case config.PolicyReject:
				return ErrDepartmentNotFound
			case config.PolicyLegacy:
				s.logger.Info("Student not created, department did not resolve", "department_id", req.DepartmentID)
				return nil
			}
		}

		student = &models.Student{
			Name:  strings.TrimSpace(req.Name),
			Email: strings.TrimSpace(req.Email),
		}
		if department != nil {
			student.DepartmentID = &department.ID
		}

		if err := s.repo.Student().Create(ctx, tx, student); err != nil {
			return err
		}

		published, err = s.activity.record(ctx, tx, models.ActivityStudentCreated, actor.actorID(), student.ID, map[string]any{
			"name":          student.Name,
			"department_id": student.DepartmentID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, nil
	}

	s.activity.publish(ctx, published)
	s.logger.Info("Student created", "student_id", student.ID)

	return s.GetByID(ctx, student.ID)
}

func (s *studentService) Update(ctx context.Context, id uint, req *StudentRequest, actor *Principal) (*models.Student, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, newValidationError(err)
	}

	var published *events.Event

	err := s.withTx(ctx, func(tx *gorm.DB) error {
		student, err := s.repo.Student().GetByID(ctx, tx, id)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrStudentNotFound
			}
			return err
		}

		department, err := s.resolveDepartment(ctx, tx, req.DepartmentID)
		if err != nil {
			return err
		}

		student.Name = strings.TrimSpace(req.Name)
		student.Email = strings.TrimSpace(req.Email)

		switch {
		case department != nil:
			student.DepartmentID = &department.ID
		case s.policy == config.PolicyReject:
			return ErrDepartmentNotFound
		case s.policy == config.PolicySkip:
			student.DepartmentID = nil
		}
		// legacy keeps the current department

		if err := s.repo.Student().Update(ctx, tx, student); err != nil {
			return err
		}

		published, err = s.activity.record(ctx, tx, models.ActivityStudentUpdated, actor.actorID(), student.ID, map[string]any{
			"name":          student.Name,
			"department_id": student.DepartmentID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.activity.publish(ctx, published)
	s.logger.Info("Student updated", "student_id", id)

	return s.GetByID(ctx, id)
}

func (s *studentService) Delete(ctx context.Context, id uint, actor *Principal) error {
	var published *events.Event

	err := s.withTx(ctx, func(tx *gorm.DB) error {
		student, err := s.repo.Student().GetByID(ctx, tx, id)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrStudentNotFound
			}
			return err
		}

		if err := s.repo.Student().Delete(ctx, tx, id); err != nil {
			return err
		}
		if student.UserID != nil {
			if err := s.repo.User().Delete(ctx, tx, *student.UserID); err != nil {
				return err
			}
		}

		published, err = s.activity.record(ctx, tx, models.ActivityStudentDeleted, actor.actorID(), id, map[string]any{
			"name":    student.Name,
			"user_id": student.UserID,
		})
		return err
	})
	if err != nil {
		return err
	}

	s.activity.publish(ctx, published)
	s.logger.Info("Student deleted", "student_id", id)

	return nil
}

// resolveDepartment returns nil without error when id is zero or unknown.
func (s *studentService) resolveDepartment(ctx context.Context, tx *gorm.DB, id uint) (*models.Department, error) {
	if id == 0 {
		return nil, nil
	}
	department, err := s.repo.Department().GetByID(ctx, tx, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}
	return department, nil
}

func (s *studentService) withTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}
