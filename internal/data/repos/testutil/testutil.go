// Package testutil provides an in-memory database and seed helpers for
// repository and detector tests.
package testutil

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/courtpulse/courtpulse-backend/internal/data/db"
	"github.com/courtpulse/courtpulse-backend/internal/platform/logger"
)

// DB opens a fresh in-memory database with the full schema migrated.
// A single connection keeps every statement on the same in-memory store.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		tb.Fatalf("open test db: %v", err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		tb.Fatalf("unwrap test db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(gdb); err != nil {
		tb.Fatalf("migrate test db: %v", err)
	}
	return gdb
}

// Logger returns a no-op logger for repository construction in tests.
func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	return logger.Nop()
}
