package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"healthdiary/pkg/store"
	"healthdiary/process/report"

	"github.com/joho/godotenv"
)

func main() {
	email := flag.String("email", "", "report on one user instead of everyone")
	list := flag.Bool("list", false, "list the user's refresh tokens (needs -email)")
	flag.Parse()

	_ = godotenv.Load()
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		fmt.Fprintln(os.Stderr, "DB_DSN not set; export DB_DSN and retry")
		os.Exit(2)
	}
	db, err := store.Open(store.Config{DSN: dsn})
	if err != nil {
		fmt.Fprintln(os.Stderr, "open db:", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close(db) }()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := report.Run(ctx, os.Stdout, store.New(db), report.Options{Email: *email, List: *list}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
