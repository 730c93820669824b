package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/pageza/alchemorsel-import/backend/internal/models"
)

// RunMigrations brings the schema up to date. The ledger is a single table,
// so GORM auto-migration is used for both Postgres and SQLite.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Upload{}); err != nil {
		return fmt.Errorf("failed to migrate uploads table: %w", err)
	}
	return nil
}
