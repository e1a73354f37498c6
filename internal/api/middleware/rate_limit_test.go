package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// performRequest 發送測試請求並回傳記錄器
func performRequest(r http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	return got
}

// ==========================
// Token Bucket Tests
// ==========================

func TestRateLimiter_Allow(t *testing.T) {
	limiter := NewRateLimiter(3, time.Minute)

	// 容量內的請求全部放行
	assert.True(t, limiter.Allow())
	assert.True(t, limiter.Allow())
	assert.True(t, limiter.Allow())

	// 令牌用盡後拒絕
	assert.False(t, limiter.Allow())
}

func TestRateLimiter_Refill(t *testing.T) {
	limiter := NewRateLimiter(2, 100*time.Millisecond)

	require.True(t, limiter.Allow())
	require.True(t, limiter.Allow())
	require.False(t, limiter.Allow())

	// 等待超過一個窗口，令牌應補滿
	time.Sleep(150 * time.Millisecond)
	assert.True(t, limiter.Allow())
}

// ==========================
// Middleware Tests
// ==========================

func TestRateLimit_ExceededReturns429(t *testing.T) {
	router := gin.New()
	router.Use(RateLimit(2, time.Minute))
	router.GET("/limited", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	assert.Equal(t, http.StatusOK, performRequest(router, http.MethodGet, "/limited", nil).Code)
	assert.Equal(t, http.StatusOK, performRequest(router, http.MethodGet, "/limited", nil).Code)

	w := performRequest(router, http.MethodGet, "/limited", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "60", w.Header().Get("Retry-After"))

	got := decodeBody(t, w)
	assert.Equal(t, "Too many requests", got["error"])
	assert.InDelta(t, 60.0, got["retry_after"], 0.001)
}

func TestRateLimit_LimiterIsSharedAcrossRoutes(t *testing.T) {
	router := gin.New()
	router.Use(RateLimit(1, time.Minute))
	router.GET("/a", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/b", func(c *gin.Context) { c.Status(http.StatusOK) })

	// 同一個限流器對所有路由生效
	assert.Equal(t, http.StatusOK, performRequest(router, http.MethodGet, "/a", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, performRequest(router, http.MethodGet, "/b", nil).Code)
}
