package main

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"healthdiary/pkg/store"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"gorm.io/gorm/logger"
)

const devJWTSecret = "dev-insecure-secret-change" // development fallback

// Config is the resolved service configuration.
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	Locale        string
	JWTSecret     []byte
	DevSecret     bool
	DB            store.Config
	AutoMigrate   bool
	CORSOrigins   []string
	SweepInterval time.Duration
	BcryptCost    int
}

// envConfig mirrors the environment variables one to one.
type envConfig struct {
	Port            string        `env:"PORT" env-default:"3000"`
	Env             string        `env:"APP_ENV" env-default:"development"`
	LogLevel        string        `env:"LOG_LEVEL"`
	Locale          string        `env:"APP_LOCALE" env-default:"en"`
	JWTSecret       string        `env:"JWT_SECRET"`
	DSN             string        `env:"DB_DSN"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" env-default:"10"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" env-default:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"1h"`
	// kept as text: false, 0 and no all disable migration
	AutoMigrate   string        `env:"DB_AUTO_MIGRATE" env-default:"true"`
	CORSOrigins   []string      `env:"CORS_ORIGINS" env-separator:","`
	SweepInterval time.Duration `env:"TOKEN_SWEEP_INTERVAL" env-default:"24h"`
	BcryptCost    int           `env:"BCRYPT_COST" env-default:"10"`
}

// loadDotEnv fills unset variables from path. A missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func loadConfig() (Config, error) {
	var raw envConfig
	if err := cleanenv.ReadEnv(&raw); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}
	if raw.Port == "" {
		raw.Port = "3000"
	}
	if raw.Env == "" {
		raw.Env = "development"
	}
	if raw.LogLevel == "" {
		raw.LogLevel = "debug"
		if raw.Env == "production" {
			raw.LogLevel = "info"
		}
	}
	if raw.Locale == "" {
		raw.Locale = "en"
	}

	cfg := Config{
		Port:     raw.Port,
		Env:      raw.Env,
		LogLevel: raw.LogLevel,
		Locale:   raw.Locale,
		DB: store.Config{
			DSN:             raw.DSN,
			MaxOpenConns:    raw.MaxOpenConns,
			MaxIdleConns:    raw.MaxIdleConns,
			ConnMaxLifetime: raw.ConnMaxLifetime,
			LogLevel:        logger.Warn,
		},
		AutoMigrate:   parseFlag(raw.AutoMigrate, true),
		SweepInterval: raw.SweepInterval,
		BcryptCost:    raw.BcryptCost,
	}
	if raw.JWTSecret == "" {
		raw.JWTSecret = devJWTSecret
		cfg.DevSecret = true
	}
	cfg.JWTSecret = []byte(raw.JWTSecret)

	for _, o := range raw.CORSOrigins {
		if o = strings.TrimSpace(o); o == "" {
			continue
		}
		if err := validateOrigin(o); err != nil {
			return Config{}, fmt.Errorf("CORS_ORIGINS: %w", err)
		}
		cfg.CORSOrigins = append(cfg.CORSOrigins, o)
	}
	return cfg, nil
}

// validateOrigin accepts scheme://host[:port] with an http or https scheme.
func validateOrigin(o string) error {
	u, err := url.Parse(o)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("origin %q must look like https://host[:port]", o)
	}
	if (u.Path != "" && u.Path != "/") || u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("origin %q must not carry a path, query or fragment", o)
	}
	return nil
}

// parseFlag treats false/0/no (any case) as false; anything else set is true.
func parseFlag(v string, def bool) bool {
	v = strings.TrimSpace(v)
	if v == "" {
		return def
	}
	switch strings.ToLower(v) {
	case "false", "0", "no":
		return false
	}
	return true
}
