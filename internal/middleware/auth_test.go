package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/queueflow/queueflow-api/internal/handler"
	"github.com/queueflow/queueflow-api/internal/model"
	"github.com/queueflow/queueflow-api/pkg/auth"
)

func setupRouter(jwtSvc auth.JWTService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	m := NewAuthMiddleware(jwtSvc)

	r := gin.New()
	protected := r.Group("", m.Authenticate())
	protected.GET("/me", func(c *gin.Context) {
		claims, _ := handler.Claims(c)
		c.JSON(http.StatusOK, gin.H{"user_id": claims.UserID})
	})
	admin := protected.Group("", m.RequireAdmin())
	admin.GET("/users", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return r
}

func tokenFor(t *testing.T, jwtSvc auth.JWTService, role string) string {
	t.Helper()
	u := &model.User{Role: role}
	u.ID = uuid.New()
	token, err := jwtSvc.GenerateToken(u)
	require.NoError(t, err)
	return token
}

func doRequest(r *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthenticate(t *testing.T) {
	jwtSvc := auth.NewJWTService("test-secret", time.Hour)
	r := setupRouter(jwtSvc)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid token", "Bearer " + tokenFor(t, jwtSvc, model.RoleUser), http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"malformed header", "Bearer", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-token", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(r, "/me", tt.header)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	jwtSvc := auth.NewJWTService("test-secret", time.Hour)
	r := setupRouter(jwtSvc)

	w := doRequest(r, "/users", "Bearer "+tokenFor(t, jwtSvc, model.RoleUser))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(r, "/users", "Bearer "+tokenFor(t, jwtSvc, model.RoleAdmin))
	assert.Equal(t, http.StatusOK, w.Code)
}
