package postgres

import (
	"fmt"

	"gorm.io/gorm"
)

// getDB returns tx when the caller is inside a transaction, otherwise the base connection.
func getDB(base, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return base
}

// handleDBError wraps a database error with the failed operation
func handleDBError(err error, operation string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s failed: %w", operation, err)
}

// studentPreloads loads what student listings and forms display.
func studentPreloads(db *gorm.DB) *gorm.DB {
	return db.Preload("Department").Preload("Courses", func(db *gorm.DB) *gorm.DB {
		return db.Order("courses.id ASC")
	})
}
