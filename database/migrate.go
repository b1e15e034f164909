package database

import (
	"fmt"

	"github.com/yeremiapane/photobooth-app/models"
	"github.com/yeremiapane/photobooth-app/utils"
	"gorm.io/gorm"
)

// Migrate membuat/menyesuaikan semua tabel lalu menjalankan statement pasca-migrasi.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Room{},
		&models.RoomParticipant{},
		&models.Photo{},
		&models.PhotoLibraryEntry{},
		&models.Notification{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")

	for _, stmt := range postMigrationStatements(db.Dialector.Name()) {
		if err := db.Exec(stmt).Error; err != nil {
			utils.ErrorLogger.Printf("Error executing post-migration statement: %v\nStatement: %s", err, stmt)
			continue
		}
	}
	return nil
}

// postMigrationStatements mengembalikan statement yang tergantung dialek.
func postMigrationStatements(dialect string) []string {
	// Room lama tanpa settings memakai nilai default
	backfill := fmt.Sprintf(
		`UPDATE rooms SET settings = '{"interval":%d,"photo_retention_days":%d}' WHERE settings IS NULL`,
		models.DefaultReminderInterval, models.DefaultPhotoRetentionDays)

	switch dialect {
	case "postgres":
		return []string{
			backfill,
			// Drainer hanya membaca baris pending
			`CREATE INDEX IF NOT EXISTS idx_notifications_pending_due ON notifications (scheduled_for) WHERE status = 'pending'`,
		}
	case "sqlite":
		return []string{
			backfill,
			`CREATE INDEX IF NOT EXISTS idx_notifications_pending_due ON notifications (scheduled_for) WHERE status = 'pending'`,
		}
	default:
		return []string{backfill}
	}
}
