package main

import (
	"errors"

	"healthdiary/pkg/store"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var errNoDSN = errors.New("DB_DSN is not set. This project requires a Postgres DSN in DB_DSN")

// openDB connects to postgres and, when DB_AUTO_MIGRATE allows it, brings the schema up to date.
// Migration failures are logged and ignored so a read-only role can still serve.
func openDB(cfg Config, log *zap.Logger) (*gorm.DB, error) {
	if cfg.DB.DSN == "" {
		return nil, errNoDSN
	}
	db, err := store.Open(cfg.DB)
	if err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := store.Migrate(db); err != nil {
			log.Warn("migration warning", zap.Error(err))
		}
	}
	return db, nil
}
