package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/rubnab73/School/internal/models"
)

// Every method takes an optional transaction; a nil tx runs against the base connection.

// DepartmentRepository interface for department operations
type DepartmentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, department *models.Department) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Department, error)
	List(ctx context.Context, tx *gorm.DB) ([]*models.Department, error)
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// CountStudents counts students whose department is id.
	CountStudents(ctx context.Context, tx *gorm.DB, id uint) (int64, error)

	// InvalidateCache drops cached listings. Call it after the writing transaction commits.
	InvalidateCache(ctx context.Context)
}

// StudentRepository interface for student profile operations
type StudentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, student *models.Student) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Student, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uint) (*models.Student, error)
	List(ctx context.Context, tx *gorm.DB) ([]*models.Student, error)

	// Update saves scalar fields and the department reference only.
	Update(ctx context.Context, tx *gorm.DB, student *models.Student) error

	// Delete removes the student and its enrollment rows.
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
}

// TeacherRepository reads teacher profiles. Teacher rows are created through the User aggregate.
type TeacherRepository interface {
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uint) (*models.Teacher, error)
}

// CourseRepository interface for course and enrollment operations
type CourseRepository interface {
	Create(ctx context.Context, tx *gorm.DB, course *models.Course) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error)
	List(ctx context.Context, tx *gorm.DB) ([]*models.Course, error)

	// Enroll inserts the (student, course) pair. A duplicate pair violates the primary key.
	Enroll(ctx context.Context, tx *gorm.DB, studentID, courseID uint) error
	// Unenroll deletes the pair and reports whether a row was removed.
	Unenroll(ctx context.Context, tx *gorm.DB, studentID, courseID uint) (bool, error)
}

// ActivityRepository interface for the append-only activity log
type ActivityRepository interface {
	Create(ctx context.Context, tx *gorm.DB, entry *models.ActivityLog) error
	ListRecent(ctx context.Context, tx *gorm.DB, limit int) ([]*models.ActivityLog, error)
}
