// Package session issues and checks credentials: password login, stateless access
// tokens and stored refresh tokens.
//
// A refresh token is Active until it is revoked or its expiry passes. Revoked and
// Expired are terminal; expiry is detected when the token is presented, not by a
// background transition.
package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"healthdiary/models"
	"healthdiary/pkg/metrics"
	"healthdiary/pkg/store"

	"go.uber.org/zap"
)

const (
	DefaultAccessTTL  = time.Hour
	DefaultRefreshTTL = 90 * 24 * time.Hour

	// refreshTokenBytes of randomness, hex-encoded to twice as many characters.
	refreshTokenBytes = 64
)

// UserStore is the read side of the users table needed for authentication.
type UserStore interface {
	UserByEmail(ctx context.Context, email string) (models.User, error)
	UserByID(ctx context.Context, id uint) (models.User, error)
}

// TokenStore persists refresh tokens by the hash of their raw value.
type TokenStore interface {
	CreateRefreshToken(ctx context.Context, rt *models.RefreshToken) error
	RefreshToken(ctx context.Context, tokenHash string) (models.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) (int64, error)
	RevokeUserRefreshTokens(ctx context.Context, userID uint) (int64, error)
	CountExpiredRefreshTokens(ctx context.Context, before time.Time) (int64, error)
	DeleteExpiredRefreshTokens(ctx context.Context, before time.Time) (int64, error)
}

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) bool
}

// Config holds the signing secret and token lifetimes. Zero TTLs take the defaults.
type Config struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Now        func() time.Time
}

// Manager implements login and the token lifecycle.
type Manager struct {
	users      UserStore
	tokens     TokenStore
	hasher     PasswordHasher
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
	log        *zap.Logger
	// dummyHash is verified against when the email is unknown so both login
	// failures cost one bcrypt comparison.
	dummyHash string
}

// NewManager validates cfg and returns a Manager.
func NewManager(users UserStore, tokens TokenStore, hasher PasswordHasher, cfg Config, log *zap.Logger) (*Manager, error) {
	if len(cfg.Secret) == 0 {
		return nil, fmt.Errorf("%w: empty signing secret", ErrConfig)
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = DefaultAccessTTL
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = DefaultRefreshTTL
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	if log == nil {
		log = zap.NewNop()
	}
	dummy, err := hasher.Hash("login-timing-placeholder")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return &Manager{
		users:      users,
		tokens:     tokens,
		hasher:     hasher,
		secret:     cfg.Secret,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        cfg.Now,
		log:        log,
		dummyHash:  dummy,
	}, nil
}

// Login checks email and password and returns the user's public projection.
func (m *Manager) Login(ctx context.Context, email, plain string) (models.PublicUser, error) {
	u, err := m.users.UserByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			m.hasher.Verify(m.dummyHash, plain)
			return models.PublicUser{}, ErrInvalidCredentials
		}
		return models.PublicUser{}, fmt.Errorf("login: %w", err)
	}
	if !m.hasher.Verify(u.PasswordHash, plain) {
		return models.PublicUser{}, ErrInvalidCredentials
	}
	return u.Public(), nil
}

// IssueRefreshToken stores a new random refresh token for userID and returns its raw value.
func (m *Manager) IssueRefreshToken(ctx context.Context, userID uint) (string, error) {
	raw, err := newRefreshToken()
	if err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	now := m.now()
	rt := models.RefreshToken{
		TokenHash: hashRefreshToken(raw),
		CreatedAt: now,
		UserID:    userID,
		ExpiresAt: now.Add(m.refreshTTL),
	}
	if err := m.tokens.CreateRefreshToken(ctx, &rt); err != nil {
		return "", err
	}
	return raw, nil
}

// ValidateRefreshToken returns the owner of raw if the token exists, is not revoked
// and has not expired.
func (m *Manager) ValidateRefreshToken(ctx context.Context, raw string) (models.PublicUser, error) {
	if raw == "" {
		return models.PublicUser{}, ErrRefreshNotFound
	}
	rt, err := m.tokens.RefreshToken(ctx, hashRefreshToken(raw))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.PublicUser{}, ErrRefreshNotFound
		}
		return models.PublicUser{}, fmt.Errorf("load refresh token: %w", err)
	}
	if rt.Revoked {
		return models.PublicUser{}, ErrRefreshRevoked
	}
	if rt.ExpiresAt.Before(m.now()) {
		return models.PublicUser{}, ErrRefreshExpired
	}
	u, err := m.users.UserByID(ctx, rt.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.PublicUser{}, ErrRefreshNotFound
		}
		return models.PublicUser{}, fmt.Errorf("load refresh token owner: %w", err)
	}
	return u.Public(), nil
}

// RevokeToken marks raw as revoked. Unknown tokens are ignored.
func (m *Manager) RevokeToken(ctx context.Context, raw string) error {
	n, err := m.tokens.RevokeRefreshToken(ctx, hashRefreshToken(raw))
	if err != nil {
		return err
	}
	metrics.TokensRevoked.Add(float64(n))
	return nil
}

// RevokeAllForUser revokes every active refresh token of userID and reports how many changed.
func (m *Manager) RevokeAllForUser(ctx context.Context, userID uint) (int64, error) {
	n, err := m.tokens.RevokeUserRefreshTokens(ctx, userID)
	if err != nil {
		return 0, err
	}
	metrics.TokensRevoked.Add(float64(n))
	m.log.Info("revoked all refresh tokens", zap.Uint("user_id", userID), zap.Int64("count", n))
	return n, nil
}

// SweepExpired deletes refresh tokens whose expiry is before now.
func (m *Manager) SweepExpired(ctx context.Context) (int64, error) {
	n, err := m.tokens.DeleteExpiredRefreshTokens(ctx, m.now())
	if err != nil {
		return 0, err
	}
	metrics.TokensSwept.Add(float64(n))
	return n, nil
}

// CountExpired reports how many refresh tokens SweepExpired would delete now.
func (m *Manager) CountExpired(ctx context.Context) (int64, error) {
	return m.tokens.CountExpiredRefreshTokens(ctx, m.now())
}

// RunSweeper calls SweepExpired every interval until ctx is done.
// A non-positive interval disables it.
func (m *Manager) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := m.SweepExpired(ctx)
			if err != nil {
				if ctx.Err() == nil {
					m.log.Warn("refresh token sweep failed", zap.Error(err))
				}
				continue
			}
			m.log.Info("refresh token sweep", zap.Int64("deleted", n))
		}
	}
}

func newRefreshToken() (string, error) {
	b := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func hashRefreshToken(raw string) string {
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:])
}
