package handlers

import (
	"net/http"

	"health-recipe-api/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CheckIngredientsRequest 食材分類請求
type CheckIngredientsRequest struct {
	Ingredients []string `json:"ingredients" binding:"required"` // 原始食材清單
	Condition   string   `json:"condition" binding:"required"`   // 病症識別字
}

// CheckIngredientsResponse 食材分類回應
type CheckIngredientsResponse struct {
	Condition           string            `json:"condition"`
	Ingredients         []string          `json:"ingredients"`
	Harmful             []string          `json:"harmful"`
	Safe                []string          `json:"safe"`
	Replacements        map[string]string `json:"replacements"`
	ModifiedIngredients []string          `json:"modified_ingredients"`
}

// ExtractIngredientsRequest 食材萃取請求
type ExtractIngredientsRequest struct {
	Text string `json:"text" binding:"required"` // 菜名或食譜描述
}

// ExtractIngredientsResponse 食材萃取回應
type ExtractIngredientsResponse struct {
	Ingredients []string `json:"ingredients"`
	Strategy    string   `json:"strategy"`
	Confident   bool     `json:"confident"`
}

// CheckIngredients 依病症分類食材
func (h *Handler) CheckIngredients(c *gin.Context) {
	requestID := ensureRequestID(c)

	common.LogInfo("開始處理食材分類請求",
		zap.String("request_id", requestID),
		zap.String("client_ip", c.ClientIP()),
	)

	var req CheckIngredientsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogError("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	result, err := h.classifier.Classify(c.Request.Context(), req.Ingredients, req.Condition)
	if err != nil {
		common.LogWarn("食材分類失敗",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		respondServiceError(c, err, "Ingredient classification failed")
		return
	}

	common.LogInfo("食材分類完成",
		zap.String("request_id", requestID),
		zap.String("condition", result.Condition),
		zap.Int("harmful", len(result.Harmful)),
	)

	c.JSON(http.StatusOK, CheckIngredientsResponse{
		Condition:           result.Condition,
		Ingredients:         result.Ingredients,
		Harmful:             result.Harmful,
		Safe:                result.Safe,
		Replacements:        result.Replacements,
		ModifiedIngredients: result.ModifiedIngredients(),
	})
}

// ExtractIngredients 從菜名或描述萃取食材
func (h *Handler) ExtractIngredients(c *gin.Context) {
	requestID := ensureRequestID(c)

	common.LogInfo("開始處理食材萃取請求",
		zap.String("request_id", requestID),
		zap.String("client_ip", c.ClientIP()),
	)

	var req ExtractIngredientsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogError("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	result, err := h.extractor.Extract(c.Request.Context(), req.Text)
	if err != nil {
		common.LogWarn("食材萃取失敗",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		respondServiceError(c, err, "Ingredient extraction failed")
		return
	}

	common.LogInfo("食材萃取完成",
		zap.String("request_id", requestID),
		zap.String("strategy", string(result.Strategy)),
		zap.Int("ingredients", len(result.Ingredients)),
		zap.Bool("confident", result.Confident),
	)

	c.JSON(http.StatusOK, ExtractIngredientsResponse{
		Ingredients: result.Ingredients,
		Strategy:    string(result.Strategy),
		Confident:   result.Confident,
	})
}

// ListIngredients 列出所有食材規則
func (h *Handler) ListIngredients(c *gin.Context) {
	rules := h.ruleStore.ListRules(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{
		"ingredients": rules,
		"count":       len(rules),
	})
}
