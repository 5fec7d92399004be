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

type courseService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	activity  *activityRecorder
}

func NewCourseService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, publisher events.EventPublisher) CourseService {
	return &courseService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		activity:  newActivityRecorder(repo, publisher, logger),
	}
}

func (s *courseService) List(ctx context.Context, viewer *Principal) (*CourseListResponse, error) {
	courses, err := s.repo.Course().List(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}

	resp := &CourseListResponse{Courses: courses}
	if !viewer.HasRole(models.RoleStudent) {
		return resp, nil
	}

	student, err := s.repo.Student().GetByUserID(ctx, s.db, viewer.UserID)
	switch {
	case err == nil:
		resp.Student = student
	case repositories.IsNotFoundError(err):
		s.logger.Warn("Student user has no profile", "user_id", viewer.UserID)
	default:
		return nil, fmt.Errorf("failed to load student profile: %w", err)
	}
	return resp, nil
}

func (s *courseService) Create(ctx context.Context, req *CourseRequest, actor *Principal) (*models.Course, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, newValidationError(err)
	}

	course := &models.Course{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
	}
	var published *events.Event

	err := s.withTx(ctx, func(tx *gorm.DB) error {
		// A teacher without a profile still creates an unowned course.
		if actor != nil {
			teacher, err := s.repo.Teacher().GetByUserID(ctx, tx, actor.UserID)
			if err != nil && !repositories.IsNotFoundError(err) {
				return err
			}
			if teacher != nil {
				course.TeacherID = &teacher.ID
			}
		}

		if err := s.repo.Course().Create(ctx, tx, course); err != nil {
			return err
		}

		var err error
		published, err = s.activity.record(ctx, tx, models.ActivityCourseCreated, actor.actorID(), course.ID, map[string]any{
			"title":      course.Title,
			"teacher_id": course.TeacherID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.activity.publish(ctx, published)
	s.logger.Info("Course created", "course_id", course.ID, "teacher_id", course.TeacherID)

	return course, nil
}

// ToggleEnrollment removes the (student, course) pair if present, otherwise inserts it.
func (s *courseService) ToggleEnrollment(ctx context.Context, courseID uint, actor *Principal) (*EnrollmentResult, error) {
	if actor == nil {
		return nil, ErrUnauthorized
	}

	var (
		result    *EnrollmentResult
		published *events.Event
	)

	err := s.withTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.Course().GetByID(ctx, tx, courseID); err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrCourseNotFound
			}
			return err
		}

		student, err := s.repo.Student().GetByUserID(ctx, tx, actor.UserID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrProfileNotFound
			}
			return err
		}

		removed, err := s.repo.Course().Unenroll(ctx, tx, student.ID, courseID)
		if err != nil {
			return err
		}

		activity := models.ActivityUnenrolled
		if !removed {
			if err := s.repo.Course().Enroll(ctx, tx, student.ID, courseID); err != nil {
				if repositories.IsDuplicateKeyError(err) {
					return ErrEnrollmentConflict
				}
				return err
			}
			activity = models.ActivityEnrolled
		}

		result = &EnrollmentResult{CourseID: courseID, StudentID: student.ID, Enrolled: !removed}
		published, err = s.activity.record(ctx, tx, activity, actor.actorID(), courseID, map[string]any{
			"student_id": student.ID,
			"course_id":  courseID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.activity.publish(ctx, published)
	s.logger.Info("Enrollment toggled", "course_id", courseID, "student_id", result.StudentID, "enrolled", result.Enrolled)

	return result, nil
}

func (s *courseService) withTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}
