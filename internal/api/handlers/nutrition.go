package handlers

import (
	"net/http"

	"health-recipe-api/internal/core/nutrition"
	"health-recipe-api/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AnalyzeNutritionRequest 營養分析請求
type AnalyzeNutritionRequest struct {
	Ingredients []string `json:"ingredients" binding:"required"`
	Condition   string   `json:"condition,omitempty"` // 省略時不做門檻檢查
	Servings    int      `json:"servings,omitempty"`  // 預設 1
}

// NutritionResponse 營養彙總回應
type NutritionResponse struct {
	Condition       string                `json:"condition,omitempty"`
	Servings        int                   `json:"servings"`
	Totals          map[string]float64    `json:"totals"`
	PerServing      map[string]float64    `json:"per_serving"`
	DailyValuePct   map[string]float64    `json:"daily_value_pct"`
	Warnings        []common.WarningEvent `json:"warnings"`
	Matched         []string              `json:"matched"`
	Unmatched       []string              `json:"unmatched"`
	Accuracy        string                `json:"accuracy"`
	DataUnavailable bool                  `json:"data_unavailable"`
}

// nutritionResponseFrom 轉換彙總結果為回應結構
func nutritionResponseFrom(profile *common.NutritionProfile) *NutritionResponse {
	return &NutritionResponse{
		Condition:       profile.Condition,
		Servings:        profile.Servings,
		Totals:          profile.Totals,
		PerServing:      profile.PerServing,
		DailyValuePct:   profile.DailyValuePct,
		Warnings:        profile.Warnings,
		Matched:         profile.Matched,
		Unmatched:       profile.Unmatched,
		Accuracy:        profile.Accuracy,
		DataUnavailable: profile.DataUnavailable,
	}
}

// AnalyzeNutrition 營養分析
func (h *Handler) AnalyzeNutrition(c *gin.Context) {
	requestID := ensureRequestID(c)

	common.LogInfo("開始處理營養分析請求",
		zap.String("request_id", requestID),
		zap.String("client_ip", c.ClientIP()),
	)

	var req AnalyzeNutritionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogError("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	servings := req.Servings
	if servings == 0 {
		servings = 1
	}

	profile, err := h.aggregator.Aggregate(c.Request.Context(), req.Ingredients, req.Condition, servings)
	if err != nil {
		common.LogWarn("營養分析失敗",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		respondServiceError(c, err, "Nutrition analysis failed")
		return
	}

	common.LogInfo("營養分析完成",
		zap.String("request_id", requestID),
		zap.Int("matched", len(profile.Matched)),
		zap.Int("unmatched", len(profile.Unmatched)),
		zap.Bool("data_unavailable", profile.DataUnavailable),
	)

	c.JSON(http.StatusOK, gin.H{
		"nutrition": nutritionResponseFrom(profile),
		"summary":   nutrition.FormatSummary(profile),
	})
}
