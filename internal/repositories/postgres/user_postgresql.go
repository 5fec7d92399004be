package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/rubnab73/School/internal/cache"
	"github.com/rubnab73/School/internal/models"
	"github.com/rubnab73/School/internal/repositories"
)

type UserPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewUserPostgreSQL(db *gorm.DB, cacheManager *cache.CacheManager) repositories.UserRepository {
	return &UserPostgreSQL{db: db, cacheManager: cacheManager}
}

func (u *UserPostgreSQL) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	if err := getDB(u.db, tx).WithContext(ctx).Create(user).Error; err != nil {
		return handleDBError(err, "create user")
	}
	return nil
}

func (u *UserPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	load := func() (*models.User, error) {
		var user models.User
		if err := getDB(u.db, tx).WithContext(ctx).
			Preload("Student").
			Preload("Teacher").
			First(&user, id).Error; err != nil {
			return nil, handleDBError(err, "get user by id")
		}
		return &user, nil
	}

	// Reads inside a transaction must see uncommitted state.
	if tx != nil {
		return load()
	}

	var user models.User
	err := u.cacheManager.User.CacheOrExecute(ctx, fmt.Sprintf("id:%d", id), &user, cache.UserCacheConfig.TTL, func() (interface{}, error) {
		return load()
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserPostgreSQL) GetByUsername(ctx context.Context, tx *gorm.DB, username string) (*models.User, error) {
	var user models.User
	if err := getDB(u.db, tx).WithContext(ctx).
		Preload("Student").
		Preload("Teacher").
		Where("username = ?", username).
		First(&user).Error; err != nil {
		return nil, handleDBError(err, "get user by username")
	}
	return &user, nil
}

func (u *UserPostgreSQL) ExistsByUsername(ctx context.Context, tx *gorm.DB, username string) (bool, error) {
	var count int64
	if err := getDB(u.db, tx).WithContext(ctx).
		Model(&models.User{}).
		Where("username = ?", username).
		Count(&count).Error; err != nil {
		return false, handleDBError(err, "check username exists")
	}
	return count > 0, nil
}

func (u *UserPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	if err := getDB(u.db, tx).WithContext(ctx).Delete(&models.User{}, id).Error; err != nil {
		return handleDBError(err, "delete user")
	}
	cache.InvalidateUserCache(ctx, u.cacheManager, id)
	return nil
}
