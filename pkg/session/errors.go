package session

import (
	"errors"

	"healthdiary/pkg/apperr"
	"healthdiary/pkg/i18n"
)

var (
	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = apperr.New(apperr.InvalidCredentials, i18n.KeyBadCredentials)

	// ErrInvalidAccessToken is returned for any access token that fails verification.
	ErrInvalidAccessToken = apperr.New(apperr.Unauthorized, i18n.KeyTokenInvalid)

	// ErrRefreshNotFound is returned when no stored refresh token matches.
	ErrRefreshNotFound = apperr.New(apperr.Unauthorized, i18n.KeyRefreshNotFound)

	// ErrRefreshRevoked is returned for a refresh token that has been revoked.
	ErrRefreshRevoked = apperr.New(apperr.Unauthorized, i18n.KeyRefreshRevoked)

	// ErrRefreshExpired is returned for a refresh token past its expiry.
	ErrRefreshExpired = apperr.New(apperr.Unauthorized, i18n.KeyRefreshExpired)

	// ErrConfig is returned by NewManager for an unusable configuration.
	ErrConfig = errors.New("invalid session config")
)
