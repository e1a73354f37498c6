package middleware

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// 去重快取是套件層級的共享狀態，每個測試使用獨立路徑避免互相干擾
func newDedupRouter(window time.Duration, path string) *gin.Engine {
	router := gin.New()
	router.Use(Deduplication(window))
	router.POST(path, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	router.GET(path, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

// ==========================
// Deduplication Tests
// ==========================

func TestDeduplication_RejectsRepeatedPost(t *testing.T) {
	router := newDedupRouter(500*time.Millisecond, "/dedup-repeat")
	body := []byte(`{"ingredients":["sugar"]}`)

	assert.Equal(t, http.StatusOK, performRequest(router, http.MethodPost, "/dedup-repeat", body).Code)

	w := performRequest(router, http.MethodPost, "/dedup-repeat", body)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	got := decodeBody(t, w)
	assert.Equal(t, "Request too frequent", got["error"])
	assert.Equal(t, "TOO_MANY_REQUESTS", got["code"])
}

func TestDeduplication_AllowsAfterWindow(t *testing.T) {
	router := newDedupRouter(50*time.Millisecond, "/dedup-expire")
	body := []byte(`{"ingredients":["salt"]}`)

	assert.Equal(t, http.StatusOK, performRequest(router, http.MethodPost, "/dedup-expire", body).Code)

	// 窗口過後同樣的請求重新放行
	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, http.StatusOK, performRequest(router, http.MethodPost, "/dedup-expire", body).Code)
}

func TestDeduplication_DifferentBodiesPass(t *testing.T) {
	router := newDedupRouter(500*time.Millisecond, "/dedup-body")

	assert.Equal(t, http.StatusOK, performRequest(router, http.MethodPost, "/dedup-body", []byte(`{"a":1}`)).Code)
	assert.Equal(t, http.StatusOK, performRequest(router, http.MethodPost, "/dedup-body", []byte(`{"a":2}`)).Code)
}

func TestDeduplication_IgnoresGet(t *testing.T) {
	router := newDedupRouter(500*time.Millisecond, "/dedup-get")

	// GET 請求不做去重
	assert.Equal(t, http.StatusOK, performRequest(router, http.MethodGet, "/dedup-get", nil).Code)
	assert.Equal(t, http.StatusOK, performRequest(router, http.MethodGet, "/dedup-get", nil).Code)
}

func TestDeduplication_BodyRemainsReadable(t *testing.T) {
	router := gin.New()
	router.Use(Deduplication(500 * time.Millisecond))
	router.POST("/dedup-read", func(c *gin.Context) {
		var payload struct {
			Name string `json:"name"`
		}
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"name": payload.Name})
	})

	// 中間件讀取過的請求體要能被後續處理器再次讀取
	w := performRequest(router, http.MethodPost, "/dedup-read", []byte(`{"name":"banana bread"}`))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "banana bread", decodeBody(t, w)["name"])
}
