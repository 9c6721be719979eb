package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"healthdiary/pkg/logging"
	"healthdiary/pkg/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	// Auto-load ./.env if present before reading vars
	if err := loadDotEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, "reading .env:", err)
		os.Exit(2)
	}
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration:", err)
		os.Exit(2)
	}

	log := logging.New(cfg.LogLevel, cfg.Env)
	defer func() { _ = log.Sync() }()
	if cfg.DevSecret {
		log.Warn("JWT_SECRET is not set, using the development fallback secret")
	}

	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	if err := run(cmd, cfg, log); err != nil {
		log.Fatal("exiting", zap.String("command", cmd), zap.Error(err))
	}
}

// run executes one of the subcommands: serve (default), migrate or sweep.
func run(cmd string, cfg Config, log *zap.Logger) error {
	switch cmd {
	case "serve", "migrate", "sweep":
	default:
		return fmt.Errorf("unknown command %q (want serve, migrate or sweep)", cmd)
	}

	if cmd == "migrate" {
		// migrated explicitly below, whatever DB_AUTO_MIGRATE says
		cfg.AutoMigrate = false
	}
	db, err := openDB(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close(db) }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "migrate":
		if err := store.Migrate(db); err != nil {
			return err
		}
		fmt.Println("migration completed")
		return nil
	case "sweep":
		srv, err := newServer(db, cfg, log)
		if err != nil {
			return err
		}
		n, err := srv.sessions.SweepExpired(ctx)
		if err != nil {
			return err
		}
		log.Info("expired refresh tokens deleted", zap.Int64("count", n))
		return nil
	default:
		return serve(ctx, db, cfg, log)
	}
}

func serve(ctx context.Context, db *gorm.DB, cfg Config, log *zap.Logger) error {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv, err := newServer(db, cfg, log)
	if err != nil {
		return err
	}
	if err := store.Ping(ctx, db, 5*time.Second); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}

	go srv.sessions.RunSweeper(ctx, cfg.SweepInterval)

	httpSrv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.engine(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", httpSrv.Addr), zap.String("env", cfg.Env))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
