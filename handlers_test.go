package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"healthdiary/models"
	"healthdiary/pkg/store"
	"healthdiary/pkg/store/storetest"
	"healthdiary/pkg/users"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// performRequest sends body (marshalled to JSON unless nil) with an optional bearer token.
func performRequest(r http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	var rd io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func newTestServer(t *testing.T) (*server, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := Config{Locale: "en", JWTSecret: []byte("test-secret"), BcryptCost: bcrypt.MinCost}
	srv, err := newServer(storetest.Open(t), cfg, zap.NewNop())
	require.NoError(t, err)
	return srv, srv.engine()
}

func createUser(t *testing.T, srv *server, email string, role models.Role) models.PublicUser {
	t.Helper()
	u, err := srv.users.CreateUser(context.Background(), users.NewUser{
		Name: "Test User", Email: email, Password: "secret123", Role: role,
	})
	require.NoError(t, err)
	return u
}

type tokens struct {
	Access  string `json:"accessToken"`
	Refresh string `json:"refreshToken"`
}

func login(t *testing.T, r http.Handler, email string) tokens {
	t.Helper()
	rec := performRequest(r, http.MethodPost, "/login", gin.H{"email": email, "password": "secret123"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var tk tokens
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tk))
	return tk
}

func TestHealthAndReadiness(t *testing.T) {
	srv, r := newTestServer(t)

	rec := performRequest(r, http.MethodGet, "/", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	body := decodeBody(t, rec)
	assert.Equal(t, "Health Diary Monitoring API", body["message"])
	assert.Equal(t, version, body["version"])
	assert.Equal(t, "running", body["status"])

	rec = performRequest(r, http.MethodGet, "/readyz", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, store.Close(srv.db))
	rec = performRequest(r, http.MethodGet, "/readyz", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRequestIDIsEchoed(t *testing.T) {
	_, r := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestCreateUser(t *testing.T) {
	_, r := newTestServer(t)

	rec := performRequest(r, http.MethodPost, "/users", gin.H{
		"name": "Dr. House", "email": "House@Example.com", "password": "vicodin", "type": "doctor",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "vicodin")
	assert.NotContains(t, strings.ToLower(rec.Body.String()), "passwordhash")

	body := decodeBody(t, rec)
	assert.Equal(t, "User created successfully", body["message"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "house@example.com", user["email"])
	assert.Equal(t, "doctor", user["type"])
	assert.NotZero(t, user["id"])
	assert.NotEmpty(t, user["createdAt"])

	rec = performRequest(r, http.MethodPost, "/users", gin.H{
		"name": "Impostor", "email": "house@example.com", "password": "secret123", "type": "patient",
	}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email is already in use", decodeBody(t, rec)["message"])
}

func TestCreateUserValidation(t *testing.T) {
	_, r := newTestServer(t)

	rec := performRequest(r, http.MethodPost, "/users", gin.H{
		"name": "Al", "email": "not-an-email", "password": "123", "type": "nurse",
	}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Validation error", body["message"])
	errs := body["errors"].(map[string]any)
	for _, field := range []string{"name", "email", "password", "type"} {
		assert.Contains(t, errs, field)
	}

	req := httptest.NewRequest(http.MethodPost, "/users", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["errors"], "body")
}

func TestCreateUserPasswordByteLimit(t *testing.T) {
	_, r := newTestServer(t)

	rec := performRequest(r, http.MethodPost, "/users", gin.H{
		"name": "Long Pass", "email": "long@example.com", "password": strings.Repeat("a", 73), "type": "patient",
	}, "")
	require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Equal(t, "Password must be at most 72 bytes", decodeBody(t, rec)["message"])

	// 24 three-byte runes: 72 bytes
	rec = performRequest(r, http.MethodPost, "/users", gin.H{
		"name": "Edge Pass", "email": "edge@example.com", "password": strings.Repeat("€", 24), "type": "patient",
	}, "")
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestListUsers(t *testing.T) {
	srv, r := newTestServer(t)
	for i := 0; i < 3; i++ {
		createUser(t, srv, fmt.Sprintf("user%d@example.com", i), models.RolePatient)
	}

	rec := performRequest(r, http.MethodGet, "/users?page=1&limit=2", nil, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotContains(t, strings.ToLower(rec.Body.String()), "password")
	body := decodeBody(t, rec)
	assert.Len(t, body["data"], 2)
	meta := body["meta"].(map[string]any)
	assert.EqualValues(t, 1, meta["currentPage"])
	assert.EqualValues(t, 2, meta["itemsPerPage"])
	assert.EqualValues(t, 3, meta["totalItems"])
	assert.EqualValues(t, 2, meta["totalPages"])
	assert.Equal(t, true, meta["hasNextPage"])
	assert.Equal(t, false, meta["hasPreviousPage"])

	rec = performRequest(r, http.MethodGet, "/users", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	meta = decodeBody(t, rec)["meta"].(map[string]any)
	assert.EqualValues(t, 1, meta["currentPage"])
	assert.EqualValues(t, 10, meta["itemsPerPage"])

	rec = performRequest(r, http.MethodGet, "/users?page=5", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody(t, rec)["data"])
}

func TestListUsersRejectsBadParams(t *testing.T) {
	_, r := newTestServer(t)
	cases := map[string]string{
		"/users?page=0":     "page",
		"/users?limit=0":    "limit",
		"/users?limit=101":  "limit",
		"/users?page=-3":    "page",
		"/users?limit=many": "body",
		"/users?page=100000000000000000&limit=100": "page",
	}
	for path, field := range cases {
		t.Run(path, func(t *testing.T) {
			rec := performRequest(r, http.MethodGet, path, nil, "")
			require.Equal(t, http.StatusBadRequest, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, "Validation error", body["message"])
			assert.Contains(t, body["errors"], field)
		})
	}
}

func TestLoginAndRefresh(t *testing.T) {
	srv, r := newTestServer(t)
	u := createUser(t, srv, "pat@example.com", models.RolePatient)

	rec := performRequest(r, http.MethodPost, "/login", gin.H{"email": "PAT@example.com", "password": "secret123"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotContains(t, strings.ToLower(rec.Body.String()), "password")
	body := decodeBody(t, rec)
	assert.Equal(t, "Login successful", body["message"])
	assert.EqualValues(t, 3600, body["expiresIn"])
	assert.Len(t, body["refreshToken"], 128)
	user := body["user"].(map[string]any)
	assert.EqualValues(t, u.ID, user["id"])
	assert.Equal(t, "patient", user["type"])

	refresh := body["refreshToken"].(string)
	rec = performRequest(r, http.MethodPost, "/refresh", gin.H{"refreshToken": refresh}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body = decodeBody(t, rec)
	assert.Equal(t, "Token refreshed successfully", body["message"])
	assert.EqualValues(t, 3600, body["expiresIn"])
	assert.NotContains(t, body, "refreshToken")

	// the new access token works
	rec = performRequest(r, http.MethodGet, "/profile", nil, body["accessToken"].(string))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	srv, r := newTestServer(t)
	createUser(t, srv, "doc@example.com", models.RoleDoctor)

	wrongPassword := performRequest(r, http.MethodPost, "/login", gin.H{"email": "doc@example.com", "password": "nope"}, "")
	unknownEmail := performRequest(r, http.MethodPost, "/login", gin.H{"email": "ghost@example.com", "password": "nope"}, "")

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, wrongPassword.Body.String(), unknownEmail.Body.String())
	assert.Equal(t, "Invalid credentials", decodeBody(t, wrongPassword)["message"])

	for _, body := range []gin.H{
		{"email": "doc@example.com"},
		{"email": "doc@example.com", "password": "12345"},
	} {
		rec := performRequest(r, http.MethodPost, "/login", body, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeBody(t, rec)["errors"], "password")
	}
}

func TestRefreshFailuresAreOpaque(t *testing.T) {
	srv, r := newTestServer(t)
	createUser(t, srv, "pat@example.com", models.RolePatient)
	tk := login(t, r, "pat@example.com")

	require.Equal(t, http.StatusOK, performRequest(r, http.MethodPost, "/logout", gin.H{"refreshToken": tk.Refresh}, "").Code)

	revoked := performRequest(r, http.MethodPost, "/refresh", gin.H{"refreshToken": tk.Refresh}, "")
	unknown := performRequest(r, http.MethodPost, "/refresh", gin.H{"refreshToken": strings.Repeat("ab", 64)}, "")
	assert.Equal(t, http.StatusUnauthorized, revoked.Code)
	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, revoked.Body.String(), unknown.Body.String())
	assert.Equal(t, "Invalid or expired refresh token", decodeBody(t, revoked)["message"])

	rec := performRequest(r, http.MethodPost, "/refresh", gin.H{}, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogout(t *testing.T) {
	_, r := newTestServer(t)

	rec := performRequest(r, http.MethodPost, "/logout", gin.H{"refreshToken": "never-issued"}, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Logged out successfully", decodeBody(t, rec)["message"])

	rec = performRequest(r, http.MethodPost, "/logout", nil, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogoutAll(t *testing.T) {
	srv, r := newTestServer(t)
	createUser(t, srv, "doc@example.com", models.RoleDoctor)
	createUser(t, srv, "other@example.com", models.RoleDoctor)
	first := login(t, r, "doc@example.com")
	second := login(t, r, "doc@example.com")
	other := login(t, r, "other@example.com")

	assert.Equal(t, http.StatusUnauthorized, performRequest(r, http.MethodPost, "/logout-all", nil, "").Code)

	rec := performRequest(r, http.MethodPost, "/logout-all", nil, first.Access)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Logged out from all devices", decodeBody(t, rec)["message"])

	for _, tk := range []tokens{first, second} {
		rec := performRequest(r, http.MethodPost, "/refresh", gin.H{"refreshToken": tk.Refresh}, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	rec = performRequest(r, http.MethodPost, "/refresh", gin.H{"refreshToken": other.Refresh}, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	// access tokens are stateless and stay valid until they expire
	assert.Equal(t, http.StatusOK, performRequest(r, http.MethodGet, "/profile", nil, first.Access).Code)
}

func TestDashboardAccess(t *testing.T) {
	srv, r := newTestServer(t)
	doc := createUser(t, srv, "doc@example.com", models.RoleDoctor)
	createUser(t, srv, "pat@example.com", models.RolePatient)
	docToken := login(t, r, "doc@example.com").Access
	patToken := login(t, r, "pat@example.com").Access

	cases := []struct {
		name  string
		path  string
		token string
		want  int
	}{
		{"doctor on doctor dashboard", "/doctors/dashboard", docToken, http.StatusOK},
		{"patient on doctor dashboard", "/doctors/dashboard", patToken, http.StatusForbidden},
		{"no token on doctor dashboard", "/doctors/dashboard", "", http.StatusUnauthorized},
		{"garbage on doctor dashboard", "/doctors/dashboard", "garbage", http.StatusUnauthorized},
		{"patient on patient dashboard", "/patients/dashboard", patToken, http.StatusOK},
		{"doctor on patient dashboard", "/patients/dashboard", docToken, http.StatusForbidden},
		{"no token on patient dashboard", "/patients/dashboard", "", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := performRequest(r, http.MethodGet, tc.path, nil, tc.token)
			assert.Equal(t, tc.want, rec.Code, rec.Body.String())
		})
	}

	rec := performRequest(r, http.MethodGet, "/doctors/dashboard", nil, docToken)
	body := decodeBody(t, rec)
	assert.Equal(t, "Welcome to the doctor dashboard", body["message"])
	assert.Equal(t, map[string]any{"id": float64(doc.ID), "email": "doc@example.com", "type": "doctor"}, body["user"])

	rec = performRequest(r, http.MethodGet, "/doctors/dashboard", nil, patToken)
	assert.Equal(t, "Access denied. You do not have permission to access this resource.", decodeBody(t, rec)["message"])
}

func TestProfile(t *testing.T) {
	srv, r := newTestServer(t)
	u := createUser(t, srv, "pat@example.com", models.RolePatient)
	tk := login(t, r, "pat@example.com")

	rec := performRequest(r, http.MethodGet, "/profile", nil, tk.Access)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.EqualValues(t, u.ID, body["id"])
	assert.Equal(t, "Test User", body["name"])
	assert.NotContains(t, body, "passwordHash")

	assert.Equal(t, http.StatusUnauthorized, performRequest(r, http.MethodGet, "/profile", nil, "").Code)

	ghost, err := srv.sessions.IssueAccessToken(models.PublicUser{ID: 9999, Email: "ghost@example.com", Role: models.RolePatient})
	require.NoError(t, err)
	rec = performRequest(r, http.MethodGet, "/profile", nil, ghost)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", decodeBody(t, rec)["message"])
}

func TestPanicIsRecovered(t *testing.T) {
	srv, _ := newTestServer(t)
	r := gin.New()
	r.Use(requestLogger(srv.log), srv.recovery())
	r.GET("/boom", func(*gin.Context) { panic("boom") })

	rec := performRequest(r, http.MethodGet, "/boom", nil, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal server error", decodeBody(t, rec)["message"])
}

func TestCORSReflectsOrigin(t *testing.T) {
	_, r := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestMetricsEndpoint(t *testing.T) {
	_, r := newTestServer(t)
	performRequest(r, http.MethodGet, "/", nil, "")
	rec := performRequest(r, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthdiary_http_requests_total")
}

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Bearer   abc  ", "abc", true},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"Basic abc", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		token, ok := bearerToken(tc.header)
		assert.Equal(t, tc.ok, ok, tc.header)
		assert.Equal(t, tc.token, token, tc.header)
	}
}

func TestRoleAllowed(t *testing.T) {
	assert.True(t, roleAllowed(models.RoleDoctor, []models.Role{models.RoleDoctor}))
	assert.False(t, roleAllowed(models.RolePatient, []models.Role{models.RoleDoctor}))
	assert.True(t, roleAllowed(models.RolePatient, []models.Role{models.RoleDoctor, models.RolePatient}))
	assert.False(t, roleAllowed(models.Role("admin"), []models.Role{models.Role("admin")}))
	assert.False(t, roleAllowed(models.RoleDoctor, nil))
}
