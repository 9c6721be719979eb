package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"healthdiary/pkg/logging"
	"healthdiary/pkg/password"
	"healthdiary/pkg/session"
	"healthdiary/pkg/store"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "only count expired refresh tokens")
	flag.Parse()

	_ = godotenv.Load()
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		fmt.Fprintln(os.Stderr, "DB_DSN not set; export DB_DSN and retry")
		os.Exit(2)
	}
	log := logging.New(os.Getenv("LOG_LEVEL"), os.Getenv("APP_ENV"))
	defer func() { _ = log.Sync() }()

	db, err := store.Open(store.Config{DSN: dsn})
	if err != nil {
		log.Fatal("open db", zap.Error(err))
	}
	defer func() { _ = store.Close(db) }()

	// only the refresh side of the manager is used, any non-empty secret will do
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "unused"
	}
	st := store.New(db)
	sessions, err := session.NewManager(st, st, password.NewHasher(password.DefaultCost), session.Config{Secret: []byte(secret)}, log)
	if err != nil {
		log.Fatal("session manager", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	if *dryRun {
		n, err := sessions.CountExpired(ctx)
		if err != nil {
			log.Fatal("count expired refresh tokens", zap.Error(err))
		}
		fmt.Printf("%d expired refresh token(s) would be deleted\n", n)
		return
	}
	n, err := sessions.SweepExpired(ctx)
	if err != nil {
		log.Fatal("delete expired refresh tokens", zap.Error(err))
	}
	fmt.Printf("deleted %d expired refresh token(s)\n", n)
}
