package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/3Eeeecho/memoryshare/internal/config"
	"github.com/3Eeeecho/memoryshare/internal/pkg/utils"
)

var testJWT = &config.JWTConfig{SecretKey: "test-secret", Issuer: "memoryshare"}

func newAuthRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/whoami", mw, func(c *gin.Context) {
		c.String(http.StatusOK, utils.OptionalUserID(c))
	})
	return r
}

func get(r http.Handler, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	r := newAuthRouter(AuthMiddleware(testJWT))
	token, err := utils.GenerateToken("uid-1", "a@b.c", testJWT.SecretKey, testJWT.Issuer, time.Hour)
	require.NoError(t, err)

	w := get(r, "/whoami", map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "uid-1", w.Body.String())

	w = get(r, "/whoami", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = get(r, "/whoami", map[string]string{"Authorization": "Token " + token})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	other, err := utils.GenerateToken("uid-1", "a@b.c", "another-secret", testJWT.Issuer, time.Hour)
	require.NoError(t, err)
	w = get(r, "/whoami", map[string]string{"Authorization": "Bearer " + other})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestOptionalAuth(t *testing.T) {
	r := newAuthRouter(OptionalAuth(testJWT))
	token, err := utils.GenerateToken("uid-2", "", testJWT.SecretKey, testJWT.Issuer, time.Hour)
	require.NoError(t, err)

	w := get(r, "/whoami", map[string]string{"Authorization": "Bearer " + token})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "uid-2", w.Body.String())

	w = get(r, "/whoami", map[string]string{"Authorization": "Bearer garbage"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestIPRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewIPRateLimiter(&config.RateLimitConfig{UploadsPerMinute: 1, Burst: 2})
	r := gin.New()
	r.GET("/", limiter.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusOK, send("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, send("10.0.0.1"))
	// 不同 IP 独立计数
	assert.Equal(t, http.StatusOK, send("10.0.0.2"))
}

func TestCors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Cors([]string{"https://memoryshare.app/"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := get(r, "/", map[string]string{"Origin": "https://memoryshare.app"})
	assert.Equal(t, "https://memoryshare.app", w.Header().Get("Access-Control-Allow-Origin"))

	w = get(r, "/", map[string]string{"Origin": "https://evil.example"})
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://memoryshare.app")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
