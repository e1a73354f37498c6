package common

import (
	"strings"
	"time"
)

// IngredientRule 食材規則
// 以正規化後的食材名稱為唯一鍵，缺少規則時視為對所有病症安全
type IngredientRule struct {
	Name        string   `json:"name"`
	HarmfulFor  []string `json:"harmful_for"`
	Alternative string   `json:"alternative"`
	Category    string   `json:"category"`
}

// HarmfulForCondition 判斷規則是否對指定病症有害
func (r *IngredientRule) HarmfulForCondition(condition string) bool {
	for _, c := range r.HarmfulFor {
		if c == condition {
			return true
		}
	}
	return false
}

// ClassificationResult 分類結果（單次請求，不持久化）
type ClassificationResult struct {
	Condition    string            `json:"condition"`
	Ingredients  []string          `json:"ingredients"`  // 正規化後、依首次出現排序、去除重複
	Harmful      []string          `json:"harmful"`      // 有害食材
	Safe         []string          `json:"safe"`         // 安全食材
	Replacements map[string]string `json:"replacements"` // 有害食材 → 替代品
}

// ModifiedIngredients 回傳以替代品取代有害食材後的清單
func (c *ClassificationResult) ModifiedIngredients() []string {
	modified := make([]string, 0, len(c.Ingredients))
	for _, ing := range c.Ingredients {
		if alt, ok := c.Replacements[ing]; ok && alt != "" && alt != NoSubstituteFound {
			modified = append(modified, alt)
			continue
		}
		modified = append(modified, ing)
	}
	return modified
}

// NoSubstituteFound 規則缺少替代品時的預設值
const NoSubstituteFound = "no substitute found"

// ExtractionStrategy 食材萃取策略標籤
type ExtractionStrategy string

const (
	StrategyGenerative ExtractionStrategy = "generative"
	StrategyRepository ExtractionStrategy = "repository"
	StrategyExternal   ExtractionStrategy = "external"
	StrategyHeuristic  ExtractionStrategy = "heuristic"
)

// ExtractionResult 食材萃取結果
type ExtractionResult struct {
	Ingredients []string           `json:"ingredients"`
	Strategy    ExtractionStrategy `json:"strategy"`
	Confident   bool               `json:"confident"`
}

// RecipeCacheEntry 食譜快取條目
// 以 (condition, signature) 為複合鍵，寫入後僅允許整筆覆寫
type RecipeCacheEntry struct {
	Condition   string             `json:"condition"`
	Signature   string             `json:"signature"`
	Ingredients []string           `json:"ingredients"`
	Text        string             `json:"text"`
	Source      ExtractionStrategy `json:"source,omitempty"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// RecipeResult 食譜取得結果
type RecipeResult struct {
	Text      string `json:"text"`
	Key       string `json:"key"`
	FromCache bool   `json:"from_cache"`
	Fallback  bool   `json:"fallback"` // true 表示由固定模板產生，未寫入快取
}

// WarningSeverity 警告嚴重程度
type WarningSeverity string

const (
	SeverityWarning WarningSeverity = "warning" // 超標但在 1.5 倍以內
	SeverityDanger  WarningSeverity = "danger"  // 超過門檻 1.5 倍
)

// WarningEvent 營養警告事件
type WarningEvent struct {
	Nutrient  string          `json:"nutrient"`
	Value     float64         `json:"value"` // 每份觀測值
	Threshold float64         `json:"threshold"`
	Message   string          `json:"message"`
	Severity  WarningSeverity `json:"severity"`
}

// NutritionProfile 營養彙總結果
// Totals 只累計查詢成功的食材，失敗的列於 Unmatched，不得默默當作零
type NutritionProfile struct {
	Condition       string             `json:"condition"`
	Servings        int                `json:"servings"`
	Totals          map[string]float64 `json:"totals"`
	PerServing      map[string]float64 `json:"per_serving"`
	DailyValuePct   map[string]float64 `json:"daily_value_pct"`
	Warnings        []WarningEvent     `json:"warnings"`
	Matched         []string           `json:"matched"`
	Unmatched       []string           `json:"unmatched"`
	Accuracy        string             `json:"accuracy"` // calculated | estimated
	DataUnavailable bool               `json:"data_unavailable"`
}

// HealthTips 病症健康建議
type HealthTips struct {
	Condition        string   `json:"condition"`
	General          string   `json:"general"`
	FoodsToAvoid     []string `json:"foods_to_avoid"`
	RecommendedFoods []string `json:"recommended_foods"`
	Fallback         bool     `json:"fallback"`
}

// ConditionTitle 將病症識別字轉為顯示用標題（heart_disease → Heart Disease）
func ConditionTitle(condition string) string {
	words := strings.Split(strings.ReplaceAll(condition, "_", " "), " ")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// FormatIngredientList 格式化食材清單為項目符號文字
func FormatIngredientList(ingredients []string) string {
	var sb strings.Builder
	for _, ing := range ingredients {
		sb.WriteString("- ")
		sb.WriteString(ing)
		sb.WriteString("\n")
	}
	return sb.String()
}
