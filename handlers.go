package main

import (
	"errors"
	"net/http"
	"time"

	"healthdiary/models"
	"healthdiary/pkg/apperr"
	"healthdiary/pkg/i18n"
	"healthdiary/pkg/metrics"
	"healthdiary/pkg/pagination"
	"healthdiary/pkg/store"
	"healthdiary/pkg/users"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func (s *server) setupRoutes(r *gin.Engine) {
	r.GET("/", s.healthHandler)
	r.GET("/readyz", s.readyHandler)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/users", s.createUserHandler)
	r.GET("/users", s.listUsersHandler)
	r.POST("/login", s.loginHandler)
	r.POST("/refresh", s.refreshHandler)
	r.POST("/logout", s.logoutHandler)

	authGroup := r.Group("")
	authGroup.Use(s.authenticate())
	authGroup.GET("/profile", s.profileHandler)
	authGroup.POST("/logout-all", s.logoutAllHandler)
	authGroup.GET("/doctors/dashboard", s.requireRole(models.RoleDoctor), s.dashboardHandler(i18n.KeyDoctorWelcome))
	authGroup.GET("/patients/dashboard", s.requireRole(models.RolePatient), s.dashboardHandler(i18n.KeyPatientWelcome))
}

func (s *server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": s.catalog.T(i18n.KeyAPIName),
		"version": version,
		"status":  "running",
	})
}

func (s *server) readyHandler(c *gin.Context) {
	if err := store.Ping(c.Request.Context(), s.db, 2*time.Second); err != nil {
		reqLogger(c, s.log).Warn("readiness check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (s *server) createUserHandler(c *gin.Context) {
	var req users.NewUser
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.Registrations.WithLabelValues(metrics.StatusFailure).Inc()
		s.bindError(c, err)
		return
	}
	u, err := s.users.CreateUser(c.Request.Context(), req)
	if err != nil {
		metrics.Registrations.WithLabelValues(metrics.StatusFailure).Inc()
		s.fail(c, err, i18n.KeyUserCreateFail)
		return
	}
	metrics.Registrations.WithLabelValues(metrics.StatusSuccess).Inc()
	c.JSON(http.StatusCreated, gin.H{"message": s.catalog.T(i18n.KeyUserCreated), "user": u})
}

type listUsersQuery struct {
	Page  int `form:"page,default=1" binding:"min=1"`
	Limit int `form:"limit,default=10" binding:"min=1,max=100"`
}

func (s *server) listUsersHandler(c *gin.Context) {
	var q listUsersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		s.bindError(c, err)
		return
	}
	params, err := pagination.New(q.Page, q.Limit)
	if err != nil {
		s.paramError(c, err)
		return
	}
	page, err := s.users.ListUsers(c.Request.Context(), params)
	if err != nil {
		s.fail(c, err, i18n.KeyUserListFailed)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (s *server) profileHandler(c *gin.Context) {
	claims, ok := claimsFrom(c)
	if !ok {
		s.abort(c, http.StatusUnauthorized, i18n.KeyTokenInvalid)
		return
	}
	u, err := s.users.GetUserByID(c.Request.Context(), claims.UserID)
	if err != nil {
		s.fail(c, err, i18n.KeyProfileFailed)
		return
	}
	c.JSON(http.StatusOK, u)
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

func (s *server) loginHandler(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.bindError(c, err)
		return
	}
	ctx := c.Request.Context()
	u, err := s.sessions.Login(ctx, req.Email, req.Password)
	if err != nil {
		metrics.LoginAttempts.WithLabelValues(metrics.StatusFailure).Inc()
		s.fail(c, err, i18n.KeyLoginFailed)
		return
	}
	access, err := s.sessions.IssueAccessToken(u)
	if err != nil {
		metrics.LoginAttempts.WithLabelValues(metrics.StatusFailure).Inc()
		s.fail(c, err, i18n.KeyLoginFailed)
		return
	}
	refresh, err := s.sessions.IssueRefreshToken(ctx, u.ID)
	if err != nil {
		metrics.LoginAttempts.WithLabelValues(metrics.StatusFailure).Inc()
		s.fail(c, err, i18n.KeyLoginFailed)
		return
	}
	metrics.LoginAttempts.WithLabelValues(metrics.StatusSuccess).Inc()
	c.JSON(http.StatusOK, gin.H{
		"message":      s.catalog.T(i18n.KeyLoginSuccess),
		"accessToken":  access,
		"refreshToken": refresh,
		"expiresIn":    s.sessions.ExpiresIn(),
		"user":         u,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// refreshHandler exchanges a refresh token for a new access token. The refresh token
// itself is not rotated.
func (s *server) refreshHandler(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.bindError(c, err)
		return
	}
	u, err := s.sessions.ValidateRefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		metrics.TokenRefreshes.WithLabelValues(metrics.StatusFailure).Inc()
		if apperr.KindOf(err) == apperr.Unauthorized {
			// not found, revoked and expired all look the same to the client
			reqLogger(c, s.log).Debug("refresh rejected", zap.Error(err))
			s.abort(c, http.StatusUnauthorized, i18n.KeyRefreshInvalid)
			return
		}
		s.fail(c, err, i18n.KeyRefreshInvalid)
		return
	}
	access, err := s.sessions.IssueAccessToken(u)
	if err != nil {
		metrics.TokenRefreshes.WithLabelValues(metrics.StatusFailure).Inc()
		s.fail(c, err, i18n.KeyRefreshInvalid)
		return
	}
	metrics.TokenRefreshes.WithLabelValues(metrics.StatusSuccess).Inc()
	c.JSON(http.StatusOK, gin.H{
		"message":     s.catalog.T(i18n.KeyRefreshSuccess),
		"accessToken": access,
		"expiresIn":   s.sessions.ExpiresIn(),
	})
}

// logoutHandler revokes the given refresh token. Unknown tokens succeed.
func (s *server) logoutHandler(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.bindError(c, err)
		return
	}
	if err := s.sessions.RevokeToken(c.Request.Context(), req.RefreshToken); err != nil {
		reqLogger(c, s.log).Error("logout failed", zap.Error(err))
		s.abort(c, http.StatusBadRequest, i18n.KeyLogoutFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": s.catalog.T(i18n.KeyLogoutSuccess)})
}

func (s *server) logoutAllHandler(c *gin.Context) {
	claims, ok := claimsFrom(c)
	if !ok {
		s.abort(c, http.StatusUnauthorized, i18n.KeyTokenInvalid)
		return
	}
	if _, err := s.sessions.RevokeAllForUser(c.Request.Context(), claims.UserID); err != nil {
		reqLogger(c, s.log).Error("logout-all failed", zap.Uint("user_id", claims.UserID), zap.Error(err))
		s.abort(c, http.StatusBadRequest, i18n.KeyLogoutFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": s.catalog.T(i18n.KeyLogoutAllOK)})
}

type dashboardUser struct {
	ID    uint        `json:"id"`
	Email string      `json:"email"`
	Role  models.Role `json:"type"`
}

func (s *server) dashboardHandler(welcomeKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsFrom(c)
		if !ok {
			s.abort(c, http.StatusUnauthorized, i18n.KeyTokenInvalid)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": s.catalog.T(welcomeKey),
			"user":    dashboardUser{ID: claims.UserID, Email: claims.Email, Role: claims.Role},
		})
	}
}

// abort writes {message} with status and stops the handler chain.
func (s *server) abort(c *gin.Context, status int, key string) {
	c.AbortWithStatusJSON(status, gin.H{"message": s.catalog.T(key)})
}

// fail answers a service error. Classified errors use their own message; anything
// else is logged and answered with fallbackKey as a 500.
func (s *server) fail(c *gin.Context, err error, fallbackKey string) {
	e, ok := apperr.As(err)
	if !ok || e.Kind == apperr.Internal {
		reqLogger(c, s.log).Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		s.abort(c, http.StatusInternalServerError, fallbackKey)
		return
	}
	body := gin.H{"message": s.catalog.T(e.Key)}
	if fields, ok := s.catalog.ValidationErrors(err); ok {
		body["errors"] = fields
	}
	c.AbortWithStatusJSON(apperr.Status(e.Kind), body)
}

// paramError answers a pagination error with the offending query field.
func (s *server) paramError(c *gin.Context, err error) {
	field, key := "limit", i18n.KeyInvalidLimit
	if errors.Is(err, pagination.ErrInvalidPage) {
		field, key = "page", i18n.KeyInvalidPage
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"message": s.catalog.T(i18n.KeyValidation),
		"errors":  map[string]string{field: s.catalog.T(key)},
	})
}

// bindError answers a request that could not be decoded or failed its binding rules.
func (s *server) bindError(c *gin.Context, err error) {
	fields, ok := s.catalog.ValidationErrors(err)
	if !ok {
		reqLogger(c, s.log).Debug("request decode failed", zap.Error(err))
		fields = map[string]string{"body": err.Error()}
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"message": s.catalog.T(i18n.KeyValidation),
		"errors":  fields,
	})
}
