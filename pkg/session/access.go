package session

import (
	"strconv"

	"healthdiary/models"
	"healthdiary/pkg/apperr"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload of an access token and the identity attached to an
// authenticated request.
type Claims struct {
	UserID uint        `json:"id"`
	Email  string      `json:"email"`
	Role   models.Role `json:"type"`
	jwt.RegisteredClaims
}

// IssueAccessToken signs a short-lived HS256 token for u. No state is stored.
func (m *Manager) IssueAccessToken(u models.PublicUser) (string, error) {
	now := m.now()
	claims := Claims{
		UserID: u.ID,
		Email:  u.Email,
		Role:   u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(u.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// ExpiresIn is the access token lifetime in seconds.
func (m *Manager) ExpiresIn() int {
	return int(m.accessTTL.Seconds())
}

// ParseAccessToken verifies signature and expiry and returns the claims.
// Every failure is ErrInvalidAccessToken.
func (m *Manager) ParseAccessToken(raw string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return Claims{}, apperr.Wrap(ErrInvalidAccessToken, err)
	}
	if claims.UserID == 0 || !claims.Role.Valid() {
		return Claims{}, ErrInvalidAccessToken
	}
	return claims, nil
}
