package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/rubnab73/School/internal/models"
	"github.com/rubnab73/School/internal/repositories"
)

type CoursePostgreSQL struct {
	db *gorm.DB
}

func NewCoursePostgreSQL(db *gorm.DB) repositories.CourseRepository {
	return &CoursePostgreSQL{db: db}
}

func (c *CoursePostgreSQL) Create(ctx context.Context, tx *gorm.DB, course *models.Course) error {
	if err := getDB(c.db, tx).WithContext(ctx).
		Omit("Teacher", "Students").
		Create(course).Error; err != nil {
		return handleDBError(err, "create course")
	}
	return nil
}

func (c *CoursePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error) {
	var course models.Course
	if err := getDB(c.db, tx).WithContext(ctx).
		Preload("Teacher").
		Preload("Students").
		First(&course, id).Error; err != nil {
		return nil, handleDBError(err, "get course by id")
	}
	return &course, nil
}

func (c *CoursePostgreSQL) List(ctx context.Context, tx *gorm.DB) ([]*models.Course, error) {
	var courses []*models.Course
	if err := getDB(c.db, tx).WithContext(ctx).
		Preload("Teacher").
		Preload("Students", func(db *gorm.DB) *gorm.DB {
			return db.Order("students.id ASC")
		}).
		Order("courses.id ASC").
		Find(&courses).Error; err != nil {
		return nil, handleDBError(err, "list courses")
	}
	return courses, nil
}

func (c *CoursePostgreSQL) Enroll(ctx context.Context, tx *gorm.DB, studentID, courseID uint) error {
	enrollment := &models.Enrollment{StudentID: studentID, CourseID: courseID}
	if err := getDB(c.db, tx).WithContext(ctx).Create(enrollment).Error; err != nil {
		return handleDBError(err, "enroll student")
	}
	return nil
}

func (c *CoursePostgreSQL) Unenroll(ctx context.Context, tx *gorm.DB, studentID, courseID uint) (bool, error) {
	result := getDB(c.db, tx).WithContext(ctx).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Delete(&models.Enrollment{})
	if result.Error != nil {
		return false, handleDBError(result.Error, "unenroll student")
	}
	return result.RowsAffected > 0, nil
}
