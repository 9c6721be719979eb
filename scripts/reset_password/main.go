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
	"healthdiary/pkg/users"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// reset_password sets a new password for a user and revokes every refresh token they hold,
// so existing sessions end once their access tokens expire.
func main() {
	email := flag.String("email", "", "email of the user to reset")
	plain := flag.String("password", "", "new plaintext password (min 6 chars)")
	keepSessions := flag.Bool("keep-sessions", false, "do not revoke existing refresh tokens")
	flag.Parse()
	if *email == "" || *plain == "" {
		fmt.Fprintln(os.Stderr, "--email and --password are required")
		os.Exit(2)
	}

	_ = godotenv.Load()
	log := logging.New(os.Getenv("LOG_LEVEL"), os.Getenv("APP_ENV"))
	defer func() { _ = log.Sync() }()

	db, err := store.Open(store.Config{DSN: os.Getenv("DB_DSN")})
	if err != nil {
		log.Fatal("open db", zap.Error(err))
	}
	defer func() { _ = store.Close(db) }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	st := store.New(db)
	hasher := password.NewHasher(password.DefaultCost)
	u, err := users.NewDirectory(st, hasher, nil, log).ResetPassword(ctx, *email, *plain)
	if err != nil {
		log.Fatal("reset failed", zap.String("email", *email), zap.Error(err))
	}
	fmt.Printf("Password reset for user %s\n", u.Email)
	if *keepSessions {
		return
	}

	// only the refresh side of the manager is used, any non-empty secret will do
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "unused"
	}
	sessions, err := session.NewManager(st, st, hasher, session.Config{Secret: []byte(secret)}, log)
	if err != nil {
		log.Fatal("session manager", zap.Error(err))
	}
	n, err := sessions.RevokeAllForUser(ctx, u.ID)
	if err != nil {
		log.Fatal("revoke refresh tokens", zap.Error(err))
	}
	fmt.Printf("revoked %d refresh token(s)\n", n)
}
