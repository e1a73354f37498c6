package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"health-recipe-api/internal/core/rules"
	"health-recipe-api/internal/infrastructure/config"
	"health-recipe-api/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime"`
	RuleCache map[string]interface{} `json:"rule_cache,omitempty"`
}

// HealthCheck 健康檢查處理器
func HealthCheck(c *gin.Context) {
	// 獲取配置
	cfg, exists := c.Get("config")
	if !exists {
		common.LogError("Configuration not found in context")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Configuration not found",
		})
		return
	}
	conf, ok := cfg.(*config.Config)
	if !ok {
		common.LogError("Invalid configuration type in context")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Invalid configuration type",
		})
		return
	}

	// 獲取運行時信息
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   conf.App.Version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}

	// 規則快取統計（若已注入）
	if store, exists := c.Get("rule_store"); exists {
		if ruleStore, ok := store.(*rules.Store); ok {
			response.RuleCache = ruleStore.Stats()
		}
	}

	common.LogInfo("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查處理器
// 規則庫連線失敗回 503；生成服務未設定只降級，不影響就緒
func ReadinessCheck(c *gin.Context) {
	checks := gin.H{}
	ready := true

	if client, exists := c.Get("redis"); exists {
		if rdb, ok := client.(*redis.Client); ok {
			ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
			defer cancel()
			if err := rdb.Ping(ctx).Err(); err != nil {
				checks["redis"] = "unreachable"
				ready = false
			} else {
				checks["redis"] = "ok"
			}
		}
	}

	if cfg, exists := c.Get("config"); exists {
		if conf, ok := cfg.(*config.Config); ok {
			if conf.OpenRouter.Enabled && conf.OpenRouter.APIKey != "" {
				checks["generation"] = "ok"
			} else {
				checks["generation"] = "fallback-only"
			}
		}
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"checks": checks,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"checks": checks,
	})
}

// LivenessCheck 存活檢查處理器
func LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
