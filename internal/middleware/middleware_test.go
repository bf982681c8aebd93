package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })
	r.POST("/orders", func(c *gin.Context) { c.Status(http.StatusCreated) })
	return r
}

func TestRateLimiter_WindowAndReset(t *testing.T) {
	mock := clock.NewMock()
	rl := NewRateLimiter(mock, 2, time.Minute)

	assert.True(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("1.1.1.1"))
	assert.False(t, rl.Allow("1.1.1.1"))
	assert.True(t, rl.Allow("2.2.2.2"), "keys are independent")

	mock.Add(time.Minute)
	assert.True(t, rl.Allow("1.1.1.1"))
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := NewRateLimiter(clock.NewMock(), 0, time.Minute)
	for i := 0; i < 100; i++ {
		assert.True(t, rl.Allow("ip"))
	}
}

func TestRateLimiter_Prune(t *testing.T) {
	mock := clock.NewMock()
	rl := NewRateLimiter(mock, 1, time.Minute)
	rl.Allow("a")
	mock.Add(2 * time.Minute)
	rl.Allow("b")
	rl.prune()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.NotContains(t, rl.attempts, "a")
	assert.Contains(t, rl.attempts, "b")
}

func TestRateLimiter_Middleware(t *testing.T) {
	r := newRouter(NewRateLimiter(clock.NewMock(), 1, time.Minute).Handle())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/orders", nil))
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/orders", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "TOO_MANY_REQUESTS")
}

func TestCORSMiddleware(t *testing.T) {
	r := newRouter(CORSMiddleware([]string{"loja.example.com", "https://admin.example.com:443"}))

	tests := []struct {
		name   string
		origin string
		want   string
	}{
		{"allowed host", "https://loja.example.com", "https://loja.example.com"},
		{"allowed with default port", "https://admin.example.com:443", "https://admin.example.com:443"},
		{"unknown host", "https://evil.example.com", ""},
		{"no origin", "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	r := newRouter(CORSMiddleware(nil))
	r.OPTIONS("/orders", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/orders", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestLoggingMiddleware_RequestID(t *testing.T) {
	r := newRouter(LoggingMiddleware())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Len(t, w.Body.String(), 8)
	assert.Equal(t, w.Body.String(), w.Header().Get("X-Request-Id"))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-Id", "abc123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc123", w.Body.String())
}
