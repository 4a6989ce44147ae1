package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/levelup-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(types.AllModels()...)
}

// EnsureProgressIndexes adds postgres-only constraints and partial indexes the models cannot declare.
func EnsureProgressIndexes(db *gorm.DB) error {
	if db.Dialector.Name() != DriverPostgres {
		return nil
	}
	// Credited points scan for totals and recomputation.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_activity_progress_user_completed
		ON activity_progress (user_id, activity_id)
		WHERE is_completed;
	`).Error; err != nil {
		return fmt.Errorf("create idx_activity_progress_user_completed: %w", err)
	}
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_activities_level_position
		ON activities (level_id, position, id);
	`).Error; err != nil {
		return fmt.Errorf("create idx_activities_level_position: %w", err)
	}
	if err := db.Exec(`
		DO $$
		BEGIN
			IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_users_current_level') THEN
				ALTER TABLE users ADD CONSTRAINT chk_users_current_level CHECK (current_level >= 1);
			END IF;
		END $$;
	`).Error; err != nil {
		return fmt.Errorf("create chk_users_current_level: %w", err)
	}
	return nil
}
