package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/rubnab73/School/internal/cache"
	"github.com/rubnab73/School/internal/models"
	"github.com/rubnab73/School/internal/repositories"
)

type DepartmentPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewDepartmentPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.DepartmentRepository {
	return &DepartmentPostgreSQL{db: db, cacheManager: cacheManager}
}

func (d *DepartmentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, department *models.Department) error {
	if err := getDB(d.db, tx).WithContext(ctx).Create(department).Error; err != nil {
		return handleDBError(err, "create department")
	}
	return nil
}

func (d *DepartmentPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Department, error) {
	var department models.Department
	if err := getDB(d.db, tx).WithContext(ctx).First(&department, id).Error; err != nil {
		return nil, handleDBError(err, "get department by id")
	}
	return &department, nil
}

func (d *DepartmentPostgreSQL) List(ctx context.Context, tx *gorm.DB) ([]*models.Department, error) {
	load := func() ([]*models.Department, error) {
		var departments []*models.Department
		if err := getDB(d.db, tx).WithContext(ctx).Order("id ASC").Find(&departments).Error; err != nil {
			return nil, handleDBError(err, "list departments")
		}
		return departments, nil
	}

	if tx != nil {
		return load()
	}

	var departments []*models.Department
	err := d.cacheManager.Department.CacheOrExecute(ctx, "list:all", &departments, cache.DepartmentCacheConfig.TTL, func() (interface{}, error) {
		return load()
	})
	if err != nil {
		return nil, err
	}
	return departments, nil
}

// Delete removes the department and detaches its teachers. Callers check for students first.
func (d *DepartmentPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := getDB(d.db, tx).WithContext(ctx)
	if err := db.Model(&models.Teacher{}).
		Where("department_id = ?", id).
		Update("department_id", nil).Error; err != nil {
		return handleDBError(err, "detach department teachers")
	}
	if err := db.Delete(&models.Department{}, id).Error; err != nil {
		return handleDBError(err, "delete department")
	}
	return nil
}

func (d *DepartmentPostgreSQL) InvalidateCache(ctx context.Context) {
	cache.InvalidateDepartmentCache(ctx, d.cacheManager)
}

func (d *DepartmentPostgreSQL) CountStudents(ctx context.Context, tx *gorm.DB, id uint) (int64, error) {
	var count int64
	if err := getDB(d.db, tx).WithContext(ctx).
		Model(&models.Student{}).
		Where("department_id = ?", id).
		Count(&count).Error; err != nil {
		return 0, handleDBError(err, "count department students")
	}
	return count, nil
}
