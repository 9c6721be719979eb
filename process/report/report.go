// Package report prints account and session statistics for operators.
package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"healthdiary/models"
	"healthdiary/pkg/store"
)

// Options selects what Run prints. An empty Email reports on every user.
type Options struct {
	Email string
	List  bool
	Now   time.Time
}

// Run writes the report to w.
func Run(ctx context.Context, w io.Writer, st *store.Store, opt Options) error {
	if opt.Now.IsZero() {
		opt.Now = time.Now().UTC()
	}
	if opt.Email == "" {
		return overall(ctx, w, st, opt.Now)
	}
	return forUser(ctx, w, st, opt)
}

func overall(ctx context.Context, w io.Writer, st *store.Store, now time.Time) error {
	roles, err := st.UsersByRole(ctx)
	if err != nil {
		return err
	}
	stats, err := st.RefreshTokenStats(ctx, now, 0)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Report at %s (UTC):\n", now.Format(time.RFC3339))
	fmt.Fprintf(w, "  users doctor=%d patient=%d\n", roles[models.RoleDoctor], roles[models.RolePatient])
	printStats(w, stats)
	return nil
}

func forUser(ctx context.Context, w io.Writer, st *store.Store, opt Options) error {
	u, err := st.UserByEmail(ctx, models.NormalizeEmail(opt.Email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("user %s not found", opt.Email)
		}
		return err
	}
	stats, err := st.RefreshTokenStats(ctx, opt.Now, u.ID)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Report for user=%s id=%d type=%s (UTC):\n", u.Email, u.ID, u.Role)
	printStats(w, stats)
	if !opt.List {
		return nil
	}
	tokens, err := st.UserRefreshTokens(ctx, u.ID)
	if err != nil {
		return err
	}
	for _, rt := range tokens {
		// first 12 hex chars of the hash are enough to tell rows apart
		fmt.Fprintf(w, "%s|%s|%s|%s\n", rt.TokenHash[:min(12, len(rt.TokenHash))],
			rt.CreatedAt.UTC().Format(time.RFC3339), rt.ExpiresAt.UTC().Format(time.RFC3339), tokenState(rt, opt.Now))
	}
	return nil
}

func printStats(w io.Writer, s store.TokenStats) {
	fmt.Fprintf(w, "  refresh_tokens active=%d revoked=%d expired=%d\n", s.Active, s.Revoked, s.Expired)
}

func tokenState(rt models.RefreshToken, now time.Time) string {
	switch {
	case rt.Revoked:
		return "revoked"
	case rt.ExpiresAt.Before(now):
		return "expired"
	default:
		return "active"
	}
}
