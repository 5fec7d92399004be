package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/rubnab73/School/internal/models"
	"github.com/rubnab73/School/internal/repositories"
)

type StudentPostgreSQL struct {
	db *gorm.DB
}

func NewStudentPostgreSQL(db *gorm.DB) repositories.StudentRepository {
	return &StudentPostgreSQL{db: db}
}

func (s *StudentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, student *models.Student) error {
	if err := getDB(s.db, tx).WithContext(ctx).
		Omit("Department", "Courses").
		Create(student).Error; err != nil {
		return handleDBError(err, "create student")
	}
	return nil
}

func (s *StudentPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Student, error) {
	var student models.Student
	if err := studentPreloads(getDB(s.db, tx).WithContext(ctx)).First(&student, id).Error; err != nil {
		return nil, handleDBError(err, "get student by id")
	}
	return &student, nil
}

func (s *StudentPostgreSQL) GetByUserID(ctx context.Context, tx *gorm.DB, userID uint) (*models.Student, error) {
	var student models.Student
	if err := studentPreloads(getDB(s.db, tx).WithContext(ctx)).
		Where("user_id = ?", userID).
		First(&student).Error; err != nil {
		return nil, handleDBError(err, "get student by user id")
	}
	return &student, nil
}

func (s *StudentPostgreSQL) List(ctx context.Context, tx *gorm.DB) ([]*models.Student, error) {
	var students []*models.Student
	if err := studentPreloads(getDB(s.db, tx).WithContext(ctx)).
		Order("students.id ASC").
		Find(&students).Error; err != nil {
		return nil, handleDBError(err, "list students")
	}
	return students, nil
}

func (s *StudentPostgreSQL) Update(ctx context.Context, tx *gorm.DB, student *models.Student) error {
	if err := getDB(s.db, tx).WithContext(ctx).
		Model(student).
		Select("Name", "Email", "DepartmentID").
		Updates(student).Error; err != nil {
		return handleDBError(err, "update student")
	}
	return nil
}

func (s *StudentPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if err := getDB(s.db, tx).WithContext(ctx).
		Select("Courses").
		Delete(&models.Student{ID: id}).Error; err != nil {
		return handleDBError(err, "delete student")
	}
	return nil
}
