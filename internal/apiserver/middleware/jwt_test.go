package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jsvc "github.com/amoylab/nextcrm/internal/auth/jwt"
	"github.com/amoylab/nextcrm/internal/common/config"
	"github.com/amoylab/nextcrm/internal/common/errorx"
	"github.com/amoylab/nextcrm/internal/crm/scope"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var hdrSvc = func() *jsvc.Service {
	s, _ := jsvc.NewService(config.JWTConfig{SecretKey: "this-is-a-very-long-secret-key-for-testing", Duration: time.Hour})
	return s
}()

func performRequest(t *testing.T, headers map[string]string) (*httptest.ResponseRecorder, *scope.Caller) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	var seen *scope.Caller
	r := gin.New()
	r.GET("/p", JWTAuthMiddleware(hdrSvc, errorx.NewErrorHandler(zap.NewNop(), nil)), func(c *gin.Context) {
		caller := CallerFrom(c)
		seen = &caller
		c.Status(http.StatusNoContent)
	})
	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w, seen
}

func TestJWTAuthMiddleware_Rejects(t *testing.T) {
	for name, headers := range map[string]map[string]string{
		"missing header": nil,
		"bad prefix":     {"Authorization": "Token abc"},
		"invalid token":  {"Authorization": "Bearer invalid"},
	} {
		t.Run(name, func(t *testing.T) {
			w, seen := performRequest(t, headers)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Nil(t, seen)
		})
	}
}

func TestJWTAuthMiddleware_Valid(t *testing.T) {
	caller := scope.Caller{UserID: "u-7", Name: "Una", Role: "counselor", BranchID: "b-1"}
	tok, err := hdrSvc.GenerateToken(caller)
	require.NoError(t, err)

	w, seen := performRequest(t, map[string]string{"Authorization": "Bearer " + tok})
	assert.Equal(t, http.StatusNoContent, w.Code)
	require.NotNil(t, seen)
	assert.Equal(t, caller, *seen)
}

func TestCallerFromWithoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, scope.Caller{}, CallerFrom(c))
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS(config.CORSConfig{AllowOrigins: []string{"https://app.example.com"}}))
	r.GET("/p", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/p", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
