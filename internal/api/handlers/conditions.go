package handlers

import (
	"net/http"

	"health-recipe-api/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TipsResponse 病症健康建議回應
type TipsResponse struct {
	Condition        string   `json:"condition"`
	General          string   `json:"general"`
	FoodsToAvoid     []string `json:"foods_to_avoid"`
	RecommendedFoods []string `json:"recommended_foods"`
	Fallback         bool     `json:"fallback"`
}

// ListConditions 列出規則涵蓋的所有病症
func (h *Handler) ListConditions(c *gin.Context) {
	conditions := h.ruleStore.Conditions(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"conditions": conditions,
		"count":      len(conditions),
	})
}

// ConditionTips 取得病症的飲食建議
func (h *Handler) ConditionTips(c *gin.Context) {
	requestID := ensureRequestID(c)
	condition := c.Param("condition")

	tips, err := h.tipsService.TipsFor(c.Request.Context(), condition)
	if err != nil {
		common.LogWarn("健康建議取得失敗",
			zap.Error(err),
			zap.String("request_id", requestID),
			zap.String("condition", condition),
		)
		respondServiceError(c, err, "Health tips unavailable")
		return
	}

	common.LogInfo("健康建議請求完成",
		zap.String("request_id", requestID),
		zap.String("condition", tips.Condition),
		zap.Bool("fallback", tips.Fallback),
	)

	c.JSON(http.StatusOK, TipsResponse{
		Condition:        tips.Condition,
		General:          tips.General,
		FoodsToAvoid:     tips.FoodsToAvoid,
		RecommendedFoods: tips.RecommendedFoods,
		Fallback:         tips.Fallback,
	})
}
