package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/rubnab73/School/internal/models"
	"github.com/rubnab73/School/internal/repositories"
)

type TeacherPostgreSQL struct {
	db *gorm.DB
}

func NewTeacherPostgreSQL(db *gorm.DB) repositories.TeacherRepository {
	return &TeacherPostgreSQL{db: db}
}

func (t *TeacherPostgreSQL) GetByUserID(ctx context.Context, tx *gorm.DB, userID uint) (*models.Teacher, error) {
	var teacher models.Teacher
	if err := getDB(t.db, tx).WithContext(ctx).
		Preload("Department").
		Where("user_id = ?", userID).
		First(&teacher).Error; err != nil {
		return nil, handleDBError(err, "get teacher by user id")
	}
	return &teacher, nil
}
