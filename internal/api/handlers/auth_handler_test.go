package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotflare/slotflare/backend/internal/api/handlers"
	"github.com/slotflare/slotflare/backend/internal/api/middleware"
	"github.com/slotflare/slotflare/backend/internal/models"
	"github.com/slotflare/slotflare/backend/internal/services"
)

func setupAuthTest(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := handlers.OpenTestDB(t)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	authService := services.NewAuthService(db, "test-secret")
	handler := handlers.NewAuthHandler(authService)

	r := gin.New()
	api := r.Group("/api/v1")
	api.POST("/auth/register", handler.Register)
	api.POST("/auth/login", handler.Login)

	protected := api.Group("/")
	protected.Use(middleware.Auth(authService))
	protected.GET("/auth/me", handler.Me)
	protected.GET("/alerts/preference", handler.GetAlertPreference)
	protected.POST("/alerts/preference", handler.UpdateAlertPreference)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, payload interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req, _ := http.NewRequest(http.MethodPost, path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRegisterLoginAndMe(t *testing.T) {
	r := setupAuthTest(t)

	w := postJSON(t, r, "/api/v1/auth/register", map[string]string{
		"email": "admin@example.com", "password": "super-secret-pw", "name": "Admin",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w = postJSON(t, r, "/api/v1/auth/login", map[string]string{
		"email": "admin@example.com", "password": "super-secret-pw",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)

	var loginResp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loginResp))
	require.NotEmpty(t, loginResp.Token)

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+loginResp.Token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "admin@example.com")
}

func TestAlertPreferenceRoundTrip(t *testing.T) {
	r := setupAuthTest(t)

	postJSON(t, r, "/api/v1/auth/register", map[string]string{
		"email": "admin@example.com", "password": "super-secret-pw",
	}, "")
	w := postJSON(t, r, "/api/v1/auth/login", map[string]string{
		"email": "admin@example.com", "password": "super-secret-pw",
	}, "")
	var loginResp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loginResp))

	w = postJSON(t, r, "/api/v1/alerts/preference", map[string]bool{"enabled": true}, loginResp.Token)
	require.Equal(t, http.StatusOK, w.Code)

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/alerts/preference", nil)
	req.Header.Set("Authorization", "Bearer "+loginResp.Token)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"enabled":true}`, rec.Body.String())
}

func TestAuthMeRequiresToken(t *testing.T) {
	r := setupAuthTest(t)

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req, _ = http.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer bogus-token")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthLoginBadCredentials(t *testing.T) {
	r := setupAuthTest(t)

	postJSON(t, r, "/api/v1/auth/register", map[string]string{
		"email": "admin@example.com", "password": "super-secret-pw",
	}, "")

	w := postJSON(t, r, "/api/v1/auth/login", map[string]string{
		"email": "admin@example.com", "password": "wrong-password",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
