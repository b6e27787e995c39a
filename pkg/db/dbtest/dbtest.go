// Package dbtest 为各包测试提供基于 sqlite 文件的独立数据库
package dbtest

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/iceymoss/go-press/internal/conf"
	"github.com/iceymoss/go-press/pkg/db"

	"gorm.io/gorm"
)

// New 每个测试一个临时库，已完成迁移
func New(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "press.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	conn, err := db.Open(conf.DatabaseConfig{
		Driver:        db.DriverSQLite,
		DSN:           dsn,
		LogLevel:      "error",
		SlowThreshold: time.Second,
		AutoMigrate:   true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	t.Cleanup(func() {
		if sqlDB, err := conn.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return conn
}
