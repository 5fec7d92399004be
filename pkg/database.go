package pkg

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rubnab73/School/internal/config"
	"github.com/rubnab73/School/internal/models"
)

// InitDatabase opens the PostgreSQL connection and migrates the schema when enabled.
func InitDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger:         newGormLogger(cfg.Environment),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.DBConnMaxLife)

	if cfg.DBAutoMigrate {
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}

	return db, nil
}

// Migrate creates or updates every table the application owns.
func Migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&models.Student{}, "Courses", &models.Enrollment{}); err != nil {
		return fmt.Errorf("failed to setup enrollment join table: %w", err)
	}
	if err := db.SetupJoinTable(&models.Course{}, "Students", &models.Enrollment{}); err != nil {
		return fmt.Errorf("failed to setup enrollment join table: %w", err)
	}

	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func newGormLogger(environment string) logger.Interface {
	level := logger.Info
	if environment == "production" {
		level = logger.Warn
	}
	return logger.New(log.New(os.Stdout, "\r\n", log.LstdFlags), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}
