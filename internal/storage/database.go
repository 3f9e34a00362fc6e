package storage

import (
	"os"
	"path/filepath"

	"github.com/letphil/dbz-auto-arena/internal/battle"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// OpenAndMigrate opens the sqlite database at dataSourceName, creating the
// parent directory if needed, and keeps the schema updated via AutoMigrate.
func OpenAndMigrate(dataSourceName string) (*gorm.DB, error) {
	if dir := filepath.Dir(dataSourceName); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := gorm.Open(sqlite.Open(dataSourceName), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&battle.Battle{}, &battle.CombatantStats{}); err != nil {
		return nil, err
	}
	return db, nil
}
