package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"healthdiary/models"
	"healthdiary/pkg/apperr"
	"healthdiary/pkg/logging"
	"healthdiary/pkg/password"
	"healthdiary/pkg/store"
	"healthdiary/pkg/users"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	name := flag.String("name", "", "full name (min 3 chars)")
	email := flag.String("email", "", "login email")
	plain := flag.String("password", "", "plaintext password (min 6 chars)")
	role := flag.String("type", string(models.RolePatient), "user type: doctor or patient")
	flag.Parse()
	if *email == "" || *plain == "" || *name == "" {
		fmt.Fprintln(os.Stderr, "usage: go run ./cmd/create_user -name <name> -email <email> -password <password> [-type doctor|patient]")
		os.Exit(2)
	}

	_ = godotenv.Load()
	log := logging.New(os.Getenv("LOG_LEVEL"), os.Getenv("APP_ENV"))
	defer func() { _ = log.Sync() }()

	db, err := store.Open(store.Config{DSN: os.Getenv("DB_DSN")})
	if err != nil {
		log.Fatal("failed to open db", zap.Error(err))
	}
	defer func() { _ = store.Close(db) }()
	if err := store.Migrate(db); err != nil {
		log.Warn("migration warning", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	dir := users.NewDirectory(store.New(db), password.NewHasher(password.DefaultCost), nil, log)
	u, err := dir.CreateUser(ctx, users.NewUser{Name: *name, Email: *email, Password: *plain, Role: models.Role(*role)})
	switch {
	case errors.Is(err, users.ErrEmailTaken):
		fmt.Printf("user %s already exists\n", *email)
		return
	case apperr.KindOf(err) == apperr.Validation:
		log.Fatal("invalid user", zap.Error(err))
	case err != nil:
		log.Fatal("failed to create user", zap.Error(err))
	}
	fmt.Printf("created %s %s id=%d\n", u.Role, u.Email, u.ID)
}
