package handlers

import (
	"net/http"
	"strings"

	"health-recipe-api/internal/core/nutrition"
	"health-recipe-api/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GenerateRecipeRequest 健康食譜生成請求
// ingredients 與 dish_name 至少擇一；只給 dish_name 時先走萃取
type GenerateRecipeRequest struct {
	Ingredients []string `json:"ingredients,omitempty"` // 原始食材清單
	DishName    string   `json:"dish_name,omitempty"`   // 菜名或食譜描述
	Condition   string   `json:"condition" binding:"required"`
	Servings    int      `json:"servings,omitempty"` // 預設 1
}

// RecipeBlock 食譜文字與來源旗標
type RecipeBlock struct {
	Text      string `json:"text"`
	Key       string `json:"key"`
	FromCache bool   `json:"from_cache"`
	Fallback  bool   `json:"fallback"`
}

// GenerateRecipeResponse 健康食譜生成回應
type GenerateRecipeResponse struct {
	Condition        string                      `json:"condition"`
	Extraction       *ExtractIngredientsResponse `json:"extraction,omitempty"`
	Classification   CheckIngredientsResponse    `json:"classification"`
	Recipe           RecipeBlock                 `json:"recipe"`
	Nutrition        *NutritionResponse          `json:"nutrition,omitempty"`
	NutritionSummary string                      `json:"nutrition_summary,omitempty"`
}

// GenerateRecipe 完整管線：萃取（可選）→ 分類 → 替換 → 生成 → 營養彙總
func (h *Handler) GenerateRecipe(c *gin.Context) {
	requestID := ensureRequestID(c)

	common.LogInfo("開始處理食譜生成請求",
		zap.String("request_id", requestID),
		zap.String("client_ip", c.ClientIP()),
	)

	var req GenerateRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogError("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if len(req.Ingredients) == 0 && strings.TrimSpace(req.DishName) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ingredients or dish_name is required"})
		return
	}

	response := GenerateRecipeResponse{}
	ingredients := req.Ingredients

	// 只給菜名時先萃取食材
	if len(ingredients) == 0 {
		extracted, err := h.extractor.Extract(c.Request.Context(), req.DishName)
		if err != nil {
			common.LogWarn("食材萃取失敗",
				zap.Error(err),
				zap.String("request_id", requestID),
			)
			respondServiceError(c, err, "Ingredient extraction failed")
			return
		}
		if len(extracted.Ingredients) == 0 {
			common.LogWarn("萃取不到任何食材",
				zap.String("request_id", requestID),
				zap.String("dish_name", req.DishName),
			)
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not extract ingredients from dish name"})
			return
		}
		ingredients = extracted.Ingredients
		response.Extraction = &ExtractIngredientsResponse{
			Ingredients: extracted.Ingredients,
			Strategy:    string(extracted.Strategy),
			Confident:   extracted.Confident,
		}
	}

	// 分類並以替代品取代有害食材
	classification, err := h.classifier.Classify(c.Request.Context(), ingredients, req.Condition)
	if err != nil {
		common.LogWarn("食材分類失敗",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		respondServiceError(c, err, "Ingredient classification failed")
		return
	}
	modified := classification.ModifiedIngredients()

	response.Condition = classification.Condition
	response.Classification = CheckIngredientsResponse{
		Condition:           classification.Condition,
		Ingredients:         classification.Ingredients,
		Harmful:             classification.Harmful,
		Safe:                classification.Safe,
		Replacements:        classification.Replacements,
		ModifiedIngredients: modified,
	}

	// 生成（或取快取）食譜
	recipeResult, err := h.generator.GetOrGenerate(c.Request.Context(), modified, classification.Harmful, classification.Condition)
	if err != nil {
		common.LogError("食譜生成失敗",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		respondServiceError(c, err, "Recipe generation failed")
		return
	}
	response.Recipe = RecipeBlock{
		Text:      recipeResult.Text,
		Key:       recipeResult.Key,
		FromCache: recipeResult.FromCache,
		Fallback:  recipeResult.Fallback,
	}

	// 營養彙總失敗不阻斷回應，食譜本身仍可用
	servings := req.Servings
	if servings == 0 {
		servings = 1
	}
	profile, err := h.aggregator.Aggregate(c.Request.Context(), modified, classification.Condition, servings)
	if err != nil {
		common.LogWarn("營養彙總失敗，回應不含營養資料",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
	} else {
		response.Nutrition = nutritionResponseFrom(profile)
		response.NutritionSummary = nutrition.FormatSummary(profile)
	}

	common.LogInfo("食譜生成請求完成",
		zap.String("request_id", requestID),
		zap.String("condition", classification.Condition),
		zap.Bool("from_cache", recipeResult.FromCache),
		zap.Bool("fallback", recipeResult.Fallback),
		zap.Int("harmful", len(classification.Harmful)),
	)

	c.JSON(http.StatusOK, response)
}
