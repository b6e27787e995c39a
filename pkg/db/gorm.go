package db

import (
	"fmt"
	"strconv"

	"github.com/iceymoss/go-press/internal/conf"
	"github.com/iceymoss/go-press/pkg/db/objects"
	"github.com/iceymoss/go-press/pkg/logger"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Dialector 根据配置选择驱动
func Dialector(c conf.DatabaseConfig) (gorm.Dialector, error) {
	dsn := c.DSN
	port := strconv.Itoa(c.Port)
	switch c.Driver {
	case DriverMySQL, "":
		if dsn == "" {
			dsn = c.User + ":" + c.Password + "@tcp(" + c.Host + ":" + port + ")/" + c.DbName + "?charset=utf8mb4&parseTime=True&loc=Local"
		}
		return mysql.Open(dsn), nil
	case DriverPostgres:
		if dsn == "" {
			dsn = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
				c.Host, port, c.User, c.Password, c.DbName)
		}
		return postgres.Open(dsn), nil
	case DriverSQLite:
		if dsn == "" {
			dsn = c.DbName + ".db"
		}
		return sqlite.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", c.Driver)
}

// gormLevel 把配置中的日志级别映射到 gorm 级别
func gormLevel(lv string) gormLogger.LogLevel {
	switch lv {
	case "debug", "info":
		return gormLogger.Info
	case "warning", "warn":
		return gormLogger.Warn
	case "silent":
		return gormLogger.Silent
	default:
		return gormLogger.Error
	}
}

// Open 建立连接；TranslateError 打开后唯一索引冲突会转成 gorm.ErrDuplicatedKey
func Open(c conf.DatabaseConfig) (*gorm.DB, error) {
	dialector, err := Dialector(c)
	if err != nil {
		return nil, err
	}

	dbConn, err := gorm.Open(dialector, &gorm.Config{
		Logger: &ZapGormLogger{
			Logger: logger.With(zap.String("agg_type", "gorm")),
			Config: gormLogger.Config{
				LogLevel:                  gormLevel(c.LogLevel),
				IgnoreRecordNotFoundError: true,
				SlowThreshold:             c.SlowThreshold,
			},
		},
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", c.Driver, err)
	}

	pool, err := dbConn.DB()
	if err != nil {
		return nil, err
	}
	if c.MaxOpenConns > 0 {
		pool.SetMaxOpenConns(c.MaxOpenConns)
	}
	if c.MaxIdleConns > 0 {
		pool.SetMaxIdleConns(c.MaxIdleConns)
	}

	if c.AutoMigrate {
		if err := dbConn.AutoMigrate(objects.Models()...); err != nil {
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
	}

	logger.Debug("db connected", zap.String("driver", c.Driver), zap.String("dbname", c.DbName))
	return dbConn, nil
}
