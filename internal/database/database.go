// Package database opens the GORM connection and runs migrations and seeds
// for the kv_entries keyspace table.
package database

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to PostgreSQL via GORM.
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return db, nil
}

// findDir locates a repo-relative directory from the working directory or
// its parent (for binaries launched from bin/).
func findDir(parts ...string) string {
	cwd, _ := os.Getwd()
	candidates := []string{
		filepath.Join(append([]string{cwd}, parts...)...),
		filepath.Join(append([]string{cwd, ".."}, parts...)...),
	}
	for _, d := range candidates {
		if _, err := os.Stat(d); err == nil {
			abs, _ := filepath.Abs(d)
			return abs
		}
	}
	return ""
}
