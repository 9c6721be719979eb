// Package store is the persistence layer: the users table and the refresh token table.
//
// The *gorm.DB handle is constructed once by the caller and passed down; nothing in this
// package holds global state.
package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"healthdiary/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config describes the postgres connection pool.
type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogLevel        logger.LogLevel
}

// GormConfig is shared by the postgres handle and test databases. Timestamps are UTC.
func GormConfig(level logger.LogLevel) *gorm.Config {
	if level == 0 {
		level = logger.Warn
	}
	return &gorm.Config{
		NowFunc:        func() time.Time { return time.Now().UTC() },
		TranslateError: true,
		Logger:         logger.Default.LogMode(level),
	}
}

// Open connects to postgres through the pgx stdlib driver and wraps the pool with gorm.
func Open(cfg Config) (*gorm.DB, error) {
	if strings.TrimSpace(cfg.DSN) == "" {
		return nil, fmt.Errorf("open db: empty DSN")
	}
	pgxCfg, err := pgx.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}
	sqlDB := stdlib.OpenDB(*pgxCfg)
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	} else {
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), GormConfig(cfg.LogLevel))
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("open gorm: %w", err)
	}
	return gdb, nil
}

// Migrate creates or updates the schema. Users go first so the refresh token FK can be applied.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}); err != nil {
		return fmt.Errorf("migrate users: %w", err)
	}
	if err := db.AutoMigrate(&models.RefreshToken{}); err != nil {
		return fmt.Errorf("migrate refresh_tokens: %w", err)
	}
	return nil
}

// Ping checks the connection within the given timeout.
func Ping(ctx context.Context, db *gorm.DB, timeout time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

// Close releases the underlying pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
