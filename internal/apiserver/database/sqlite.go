package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/amoylab/nextcrm/internal/common/config"

	"github.com/glebarez/sqlite"
	cgosqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func ensureSQLiteDir(path string) error {
	if path == ":memory:" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	return nil
}

// sqliteDialector uses the pure-Go driver; the default for local setups
func sqliteDialector(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	if err := ensureSQLiteDir(cfg.DBName); err != nil {
		return nil, err
	}
	return sqlite.Open(cfg.DBName), nil
}

// sqliteCgoDialector uses mattn/go-sqlite3 and needs a cgo build
func sqliteCgoDialector(cfg *config.DatabaseConfig) (gorm.Dialector, error) {
	if err := ensureSQLiteDir(cfg.DBName); err != nil {
		return nil, err
	}
	return cgosqlite.Open(cfg.DBName), nil
}
