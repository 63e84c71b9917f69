package dao

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func InitTables(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&User{},
		&Event{},
		&Registration{},
	); err != nil {
		return err
	}

	// One active row per (user, event, user_type). The index backs the
	// ON CONFLICT clause in InsertRegistered; cancelled and attended rows
	// stay out of its way.
	return db.Exec(`
CREATE UNIQUE INDEX IF NOT EXISTS idx_registrations_active
ON registrations (user_id, event_id, user_type)
WHERE status = 'registered'`).Error
}

func forUpdate() clause.Locking {
	return clause.Locking{Strength: "UPDATE"}
}
