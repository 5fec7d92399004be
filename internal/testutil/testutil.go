// Package testutil provides an in-memory database and fixtures for tests.
package testutil

import (
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rubnab73/School/internal/models"
	"github.com/rubnab73/School/pkg"
)

// NewTestDB opens an isolated in-memory SQLite database with the full schema.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get test database handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := pkg.Migrate(db); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}

// NewLogger returns a logger that discards output.
func NewLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// CreateDepartment inserts a department.
func CreateDepartment(t *testing.T, db *gorm.DB, name string) *models.Department {
	t.Helper()
	d := &models.Department{Name: name}
	if err := db.Create(d).Error; err != nil {
		t.Fatalf("create department: %v", err)
	}
	return d
}

// CreateUser inserts a user with the profile its role requires and the given password.
func CreateUser(t *testing.T, db *gorm.DB, username, password string, role models.Role) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	u := &models.User{Username: username, Password: string(hash), Role: role}
	profile, err := models.NewProfileFor(role, username, nil)
	if err != nil {
		t.Fatalf("build profile: %v", err)
	}
	if err := u.AttachProfile(profile); err != nil {
		t.Fatalf("attach profile: %v", err)
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// CreateStudent inserts a student without a linked user.
func CreateStudent(t *testing.T, db *gorm.DB, name string, departmentID *uint) *models.Student {
	t.Helper()
	s := &models.Student{Name: name, Email: name + "@school.test", DepartmentID: departmentID}
	if err := db.Omit("Department", "Courses").Create(s).Error; err != nil {
		t.Fatalf("create student: %v", err)
	}
	return s
}

// CreateCourse inserts a course owned by teacherID, which may be nil.
func CreateCourse(t *testing.T, db *gorm.DB, title string, teacherID *uint) *models.Course {
	t.Helper()
	c := &models.Course{Title: title, Description: title + " description", TeacherID: teacherID}
	if err := db.Omit("Teacher", "Students").Create(c).Error; err != nil {
		t.Fatalf("create course: %v", err)
	}
	return c
}
