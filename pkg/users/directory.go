// Package users creates and reads user records.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"healthdiary/models"
	"healthdiary/pkg/apperr"
	"healthdiary/pkg/i18n"
	"healthdiary/pkg/pagination"
	"healthdiary/pkg/password"
	"healthdiary/pkg/store"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var (
	ErrEmailTaken   = apperr.New(apperr.Conflict, i18n.KeyUserEmailTaken)
	ErrInvalidUser  = apperr.New(apperr.Validation, i18n.KeyUserInvalid)
	ErrUserNotFound = apperr.New(apperr.NotFound, i18n.KeyUserNotFound)
	// ErrPasswordTooLong is a password bcrypt cannot hash.
	ErrPasswordTooLong = apperr.New(apperr.Validation, i18n.KeyPasswordTooLong)
)

// Store is the users table.
type Store interface {
	CreateUser(ctx context.Context, u *models.User) error
	EmailExists(ctx context.Context, email string) (bool, error)
	UserByID(ctx context.Context, id uint) (models.User, error)
	UserByEmail(ctx context.Context, email string) (models.User, error)
	UpdatePasswordHash(ctx context.Context, id uint, hash string) error
	ListUsers(ctx context.Context, offset, limit int) ([]models.User, int64, error)
}

// Hasher turns a plain password into a stored hash.
type Hasher interface {
	Hash(plain string) (string, error)
}

// ValidationTag is the struct tag NewUser rules are written in. It matches gin's binding
// tag so one validator instance serves request binding and the directory.
const ValidationTag = "binding"

// NewUser is a registration request. It doubles as the POST /users body.
type NewUser struct {
	Name     string      `json:"name" binding:"required,min=3"`
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required,min=6"`
	Role     models.Role `json:"type" binding:"required,oneof=doctor patient"`
}

// Directory implements user registration and lookup.
type Directory struct {
	store    Store
	hasher   Hasher
	validate *validator.Validate
	log      *zap.Logger
}

// NewDirectory returns a Directory. validate must read ValidationTag; nil builds one that does.
func NewDirectory(s Store, h Hasher, validate *validator.Validate, log *zap.Logger) *Directory {
	if validate == nil {
		validate = validator.New()
		validate.SetTagName(ValidationTag)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Directory{store: s, hasher: h, validate: validate, log: log}
}

// CreateUser validates in, rejects a taken email and stores the user with a hashed password.
func (d *Directory) CreateUser(ctx context.Context, in NewUser) (models.PublicUser, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = models.NormalizeEmail(in.Email)
	if err := d.validate.Struct(in); err != nil {
		return models.PublicUser{}, apperr.Wrap(ErrInvalidUser, err)
	}
	if len(in.Password) > password.MaxBytes {
		return models.PublicUser{}, ErrPasswordTooLong
	}

	exists, err := d.store.EmailExists(ctx, in.Email)
	if err != nil {
		return models.PublicUser{}, err
	}
	if exists {
		return models.PublicUser{}, ErrEmailTaken
	}

	hash, err := d.hasher.Hash(in.Password)
	if err != nil {
		return models.PublicUser{}, err
	}
	u := models.User{Name: in.Name, Email: in.Email, PasswordHash: hash, Role: in.Role}
	if err := d.store.CreateUser(ctx, &u); err != nil {
		// lost a race with a concurrent registration after the pre-check
		if errors.Is(err, store.ErrDuplicate) {
			return models.PublicUser{}, ErrEmailTaken
		}
		return models.PublicUser{}, err
	}
	d.log.Info("user created", zap.Uint("user_id", u.ID), zap.String("role", u.Role.String()))
	return u.Public(), nil
}

// ListUsers returns one page of users, newest first.
func (d *Directory) ListUsers(ctx context.Context, p pagination.Params) (pagination.Page[models.PublicUser], error) {
	// re-validate so callers that build Params by hand cannot reach the database with bad bounds
	p, err := pagination.New(p.Page, p.Limit)
	if err != nil {
		return pagination.Page[models.PublicUser]{}, err
	}
	rows, total, err := d.store.ListUsers(ctx, p.Offset(), p.Limit)
	if err != nil {
		return pagination.Page[models.PublicUser]{}, fmt.Errorf("list users: %w", err)
	}
	out := make([]models.PublicUser, 0, len(rows))
	for _, u := range rows {
		out = append(out, u.Public())
	}
	return pagination.NewPage(out, p, total), nil
}

// GetUserByID returns the user or ErrUserNotFound.
func (d *Directory) GetUserByID(ctx context.Context, id uint) (models.PublicUser, error) {
	u, err := d.store.UserByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.PublicUser{}, ErrUserNotFound
		}
		return models.PublicUser{}, err
	}
	return u.Public(), nil
}

// ResetPassword replaces the password of the user registered under email.
// Outstanding refresh tokens are not touched here; callers revoke them through the session manager.
func (d *Directory) ResetPassword(ctx context.Context, email, plain string) (models.PublicUser, error) {
	if err := d.validate.Var(plain, "required,min=6"); err != nil {
		return models.PublicUser{}, apperr.Wrap(ErrInvalidUser, err)
	}
	if len(plain) > password.MaxBytes {
		return models.PublicUser{}, ErrPasswordTooLong
	}
	u, err := d.store.UserByEmail(ctx, models.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.PublicUser{}, ErrUserNotFound
		}
		return models.PublicUser{}, err
	}
	hash, err := d.hasher.Hash(plain)
	if err != nil {
		return models.PublicUser{}, err
	}
	if err := d.store.UpdatePasswordHash(ctx, u.ID, hash); err != nil {
		return models.PublicUser{}, err
	}
	d.log.Info("password reset", zap.Uint("user_id", u.ID))
	return u.Public(), nil
}
