package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cg-naveen/sukha-pms-new-sub000/internal/config"
	"github.com/cg-naveen/sukha-pms-new-sub000/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIdentityServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/user" || r.Header.Get("apikey") != "anon-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		token, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok || !strings.HasSuffix(token, "-token") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		payload := map[string]interface{}{
			"id":            token,
			"email":         token + "@sukha.test",
			"user_metadata": map[string]interface{}{"full_name": "User " + token},
		}
		switch token {
		case "admin-token":
			payload["app_metadata"] = map[string]interface{}{"role": "Admin"}
		case "staff-token":
			payload["user_metadata"] = map[string]interface{}{"name": "Desk", "role": "staff"}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(payload)
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestAuth(t *testing.T) *Auth {
	t.Helper()
	server := newIdentityServer(t)
	return NewAuth(config.AuthConfig{URL: server.URL, APIKey: "anon-key", Timeout: 2 * time.Second}, logger.Nop())
}

func echoUser(w http.ResponseWriter, r *http.Request) {
	user, _ := UserFromContext(r.Context())
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(user)
}

func serve(handler http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeUser(t *testing.T, rec *httptest.ResponseRecorder) User {
	t.Helper()
	var user User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &user))
	return user
}

func TestMiddlewareResolvesRoles(t *testing.T) {
	auth := newTestAuth(t)
	handler := auth.Middleware(http.HandlerFunc(echoUser))

	cases := map[string]User{
		"admin-token":  {ID: "admin-token", Email: "admin-token@sukha.test", Name: "User admin-token", Role: RoleAdmin},
		"staff-token":  {ID: "staff-token", Email: "staff-token@sukha.test", Name: "Desk", Role: RoleStaff},
		"viewer-token": {ID: "viewer-token", Email: "viewer-token@sukha.test", Name: "User viewer-token", Role: RoleViewer},
	}
	for token, want := range cases {
		rec := serve(handler, token)
		require.Equal(t, http.StatusOK, rec.Code, token)
		assert.Equal(t, want, decodeUser(t, rec), token)
	}
}

func TestMiddlewareRejectsBadTokens(t *testing.T) {
	auth := newTestAuth(t)
	handler := auth.Middleware(http.HandlerFunc(echoUser))

	for _, token := range []string{"", "expired"} {
		rec := serve(handler, token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, token)
		assert.JSONEq(t, `{"error":"invalid token","code":"invalid_token"}`, rec.Body.String())
	}
}

func TestMiddlewareIdentityProviderUnavailable(t *testing.T) {
	down := httptest.NewServer(http.NotFoundHandler())
	down.Close()
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(failing.Close)

	for _, url := range []string{down.URL, failing.URL} {
		auth := NewAuth(config.AuthConfig{URL: url, APIKey: "anon-key", Timeout: time.Second}, logger.Nop())
		rec := serve(auth.Middleware(http.HandlerFunc(echoUser)), "admin-token")
		assert.Equal(t, http.StatusInternalServerError, rec.Code, url)
		assert.JSONEq(t, `{"error":"identity provider unavailable","code":"auth_unavailable"}`, rec.Body.String())
	}
}

func TestMiddlewareNotConfigured(t *testing.T) {
	auth := NewAuth(config.AuthConfig{}, nil)
	rec := serve(auth.Middleware(http.HandlerFunc(echoUser)), "token")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestMiddlewareSkipAuthUsesMockUser(t *testing.T) {
	auth := NewAuth(config.AuthConfig{SkipAuth: true, MockUserID: "local", MockUserName: "Local", MockUserRole: "STAFF"}, nil)
	rec := serve(auth.Middleware(http.HandlerFunc(echoUser)), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, User{ID: "local", Name: "Local", Role: RoleStaff}, decodeUser(t, rec))
}

func TestRequireRole(t *testing.T) {
	auth := newTestAuth(t)
	handler := auth.Middleware(RequireRole(RoleAdmin)(http.HandlerFunc(echoUser)))

	assert.Equal(t, http.StatusOK, serve(handler, "admin-token").Code)
	assert.Equal(t, http.StatusForbidden, serve(handler, "staff-token").Code)

	unauthenticated := RequireRole(RoleAdmin)(http.HandlerFunc(echoUser))
	assert.Equal(t, http.StatusUnauthorized, serve(unauthenticated, "").Code)
}

func TestCronOrRoles(t *testing.T) {
	auth := newTestAuth(t)
	handler := auth.CronOrRoles("s3cret", RoleAdmin, RoleStaff)(http.HandlerFunc(echoUser))

	rec := serve(handler, "s3cret")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, RoleSystem, decodeUser(t, rec).Role)

	assert.Equal(t, http.StatusOK, serve(handler, "staff-token").Code)
	assert.Equal(t, http.StatusForbidden, serve(handler, "viewer-token").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(handler, "s3cre").Code)

	noSecret := auth.CronOrRoles("", RoleAdmin)(http.HandlerFunc(echoUser))
	assert.Equal(t, http.StatusUnauthorized, serve(noSecret, "").Code)
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusTeapot) })
	handler := NewCORS([]string{"https://desk.sukha.test/", " "})(next)

	req := httptest.NewRequest(http.MethodOptions, "/api/rooms", nil)
	req.Header.Set("Origin", "https://desk.sukha.test")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://desk.sukha.test", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/rooms", nil)
	req.Header.Set("Origin", "https://evil.test")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	open := NewCORS([]string{"*"})(next)
	req = httptest.NewRequest(http.MethodGet, "/api/public/visitors", nil)
	req.Header.Set("Origin", "https://evil.test")
	rec = httptest.NewRecorder()
	open.ServeHTTP(rec, req)
	assert.Equal(t, "https://evil.test", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestLoggerSkipsHealth(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&buf, slog.LevelInfo, "text")
	handler := RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/boom" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Zero(t, buf.Len())

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/rooms", nil))
	assert.Contains(t, buf.String(), "http: request")
	assert.Contains(t, buf.String(), "status=200")

	buf.Reset()
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/boom", nil))
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "status=500")
}
