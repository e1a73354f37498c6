package handlers

import (
	"errors"
	"net/http"

	"health-recipe-api/internal/core/extraction"
	"health-recipe-api/internal/core/nutrition"
	"health-recipe-api/internal/core/recipe"
	"health-recipe-api/internal/core/rules"
	"health-recipe-api/internal/core/tips"
	"health-recipe-api/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// Handler 管線處理程序
type Handler struct {
	classifier  *rules.Classifier
	ruleStore   *rules.Store
	extractor   *extraction.Orchestrator
	generator   *recipe.Generator
	aggregator  *nutrition.Aggregator
	tipsService *tips.Service
}

// NewHandler 創建管線處理程序
func NewHandler(
	classifier *rules.Classifier,
	ruleStore *rules.Store,
	extractor *extraction.Orchestrator,
	generator *recipe.Generator,
	aggregator *nutrition.Aggregator,
	tipsService *tips.Service,
) *Handler {
	return &Handler{
		classifier:  classifier,
		ruleStore:   ruleStore,
		extractor:   extractor,
		generator:   generator,
		aggregator:  aggregator,
		tipsService: tipsService,
	}
}

// ensureRequestID 取得或補發請求 ID
func ensureRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = common.GenerateUUID()
		c.Header("X-Request-ID", requestID)
	}
	return requestID
}

// respondServiceError 將服務層錯誤轉為 HTTP 回應
// 驗證錯誤回 400 並帶原始訊息，已分類錯誤帶狀態碼與代碼，其餘一律回 500 與固定訊息
func respondServiceError(c *gin.Context, err error, fallback string) {
	if common.IsValidationError(err) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var ce *common.CustomError
	if errors.As(err, &ce) {
		c.JSON(ce.Status, common.ErrorResponse{Code: ce.Code, Message: ce.Message})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
}
