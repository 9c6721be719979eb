package main

import (
	"fmt"

	"healthdiary/pkg/i18n"
	"healthdiary/pkg/password"
	"healthdiary/pkg/session"
	"healthdiary/pkg/store"
	"healthdiary/pkg/users"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const version = "1.0.0"

// server holds the request handlers' dependencies. It is built once in main.
type server struct {
	db       *gorm.DB
	sessions *session.Manager
	users    *users.Directory
	catalog  *i18n.Catalog
	log      *zap.Logger
	cors     []string
}

func newServer(db *gorm.DB, cfg Config, log *zap.Logger) (*server, error) {
	catalog, err := i18n.New(cfg.Locale)
	if err != nil {
		return nil, err
	}
	// gin's validator reads the binding tag, the same tag users.NewUser is written in
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil, fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	if err := catalog.RegisterValidator(v); err != nil {
		return nil, fmt.Errorf("register validation messages: %w", err)
	}

	st := store.New(db)
	hasher := password.NewHasher(cfg.BcryptCost)
	sessions, err := session.NewManager(st, st, hasher, session.Config{Secret: cfg.JWTSecret}, log.Named("session"))
	if err != nil {
		return nil, err
	}
	return &server{
		db:       db,
		sessions: sessions,
		users:    users.NewDirectory(st, hasher, v, log.Named("users")),
		catalog:  catalog,
		log:      log,
		cors:     cfg.CORSOrigins,
	}, nil
}

func (s *server) engine() *gin.Engine {
	r := gin.New()
	r.Use(requestLogger(s.log), s.recovery(), metricsMiddleware(), corsMiddleware(s.cors))
	s.setupRoutes(r)
	return r
}
