package database

import (
	"fmt"
	"log/slog"

	"posterr/internal/middleware"
	"posterr/internal/models"

	"gorm.io/gorm"
)

// PersistentModels returns the authoritative set of schema-managed GORM models.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Post{},
	}
}

// Migrate creates or updates the users and posts tables together with the
// quota, repost-count and repost-uniqueness indexes declared on the models.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(PersistentModels()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	middleware.Logger.Info("Database migration completed", slog.String("driver", db.Dialector.Name()))
	return nil
}
