// Package metrics holds the service's prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal counts HTTP responses by method, route and status.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "healthdiary_http_requests_total",
		Help: "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	// RequestDuration observes HTTP handling time by method and route.
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "healthdiary_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	// LoginAttempts counts logins by outcome.
	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "healthdiary_login_attempts_total",
		Help: "Login attempts by outcome.",
	}, []string{"status"})

	// Registrations counts user registrations by outcome.
	Registrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "healthdiary_registrations_total",
		Help: "User registrations by outcome.",
	}, []string{"status"})

	// TokenRefreshes counts refresh token exchanges by outcome.
	TokenRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "healthdiary_token_refresh_total",
		Help: "Refresh token exchanges by outcome.",
	}, []string{"status"})

	// TokensRevoked counts refresh tokens flipped to revoked.
	TokensRevoked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "healthdiary_refresh_tokens_revoked_total",
		Help: "Refresh tokens revoked.",
	})

	// TokensSwept counts expired refresh token rows deleted by the sweeper.
	TokensSwept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "healthdiary_refresh_tokens_swept_total",
		Help: "Expired refresh tokens deleted.",
	})
)

// Outcome labels.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)
