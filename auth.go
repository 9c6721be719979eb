package main

import (
	"net/http"
	"slices"
	"strings"

	"healthdiary/models"
	"healthdiary/pkg/i18n"
	"healthdiary/pkg/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const claimsKey = "auth.claims"

// authenticate requires a valid bearer access token and stores its claims on the context.
func (s *server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			s.abort(c, http.StatusUnauthorized, i18n.KeyTokenInvalid)
			return
		}
		claims, err := s.sessions.ParseAccessToken(raw)
		if err != nil {
			reqLogger(c, s.log).Debug("access token rejected", zap.Error(err))
			s.abort(c, http.StatusUnauthorized, i18n.KeyTokenInvalid)
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// requireRole lets the request through only when the authenticated role is in allowed.
// It must run after authenticate.
func (s *server) requireRole(allowed ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsFrom(c)
		if !ok {
			s.abort(c, http.StatusUnauthorized, i18n.KeyTokenInvalid)
			return
		}
		if !roleAllowed(claims.Role, allowed) {
			s.abort(c, http.StatusForbidden, i18n.KeyForbidden)
			return
		}
		c.Next()
	}
}

func roleAllowed(r models.Role, allowed []models.Role) bool {
	switch r {
	case models.RoleDoctor, models.RolePatient:
		return slices.Contains(allowed, r)
	default:
		return false
	}
}

func claimsFrom(c *gin.Context) (session.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return session.Claims{}, false
	}
	claims, ok := v.(session.Claims)
	return claims, ok
}

// bearerToken extracts the token from "Bearer <token>". The scheme is case-insensitive.
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
