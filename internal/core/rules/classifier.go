package rules

import (
	"context"

	"health-recipe-api/internal/pkg/common"

	"go.uber.org/zap"
)

// UnknownPolicy 未知食材的分類策略
type UnknownPolicy string

const (
	// UnknownSafe 查無規則視為安全（開放世界預設）
	UnknownSafe UnknownPolicy = "safe"
	// UnknownHarmful 查無規則視為有害（保守策略，設定檔啟用）
	UnknownHarmful UnknownPolicy = "harmful"
)

// Classifier 食材分類器
type Classifier struct {
	store      *Store
	normalizer *Normalizer
	policy     UnknownPolicy
}

// NewClassifier 創建分類器
func NewClassifier(store *Store, normalizer *Normalizer, policy UnknownPolicy) *Classifier {
	if policy != UnknownHarmful {
		policy = UnknownSafe
	}
	return &Classifier{
		store:      store,
		normalizer: normalizer,
		policy:     policy,
	}
}

// Classify 對單一病症分類食材清單
// 輸出依輸入首次出現順序排列，重複項目折疊；
// 給定固定的規則快照，結果具決定性
func (c *Classifier) Classify(ctx context.Context, ingredients []string, condition string) (*common.ClassificationResult, error) {
	normalizedCondition := NormalizeCondition(condition)
	if normalizedCondition == "" {
		return nil, common.NewValidationError("condition is required")
	}

	normalized := common.UniqueStrings(c.normalizer.NormalizeAll(ingredients))
	if len(normalized) == 0 {
		return nil, common.NewValidationError("ingredient list is empty")
	}

	result := &common.ClassificationResult{
		Condition:    normalizedCondition,
		Ingredients:  normalized,
		Harmful:      make([]string, 0, len(normalized)),
		Safe:         make([]string, 0, len(normalized)),
		Replacements: make(map[string]string),
	}

	for _, ingredient := range normalized {
		rule, found, err := c.store.Lookup(ctx, ingredient)
		if err != nil {
			return nil, err
		}

		if !found {
			// 查無規則：依策略分類，預設為安全
			if c.policy == UnknownHarmful {
				result.Harmful = append(result.Harmful, ingredient)
				result.Replacements[ingredient] = common.NoSubstituteFound
				continue
			}
			result.Safe = append(result.Safe, ingredient)
			continue
		}

		if rule.HarmfulForCondition(normalizedCondition) {
			result.Harmful = append(result.Harmful, ingredient)
			alternative := rule.Alternative
			if alternative == "" {
				alternative = common.NoSubstituteFound
			}
			result.Replacements[ingredient] = alternative
			continue
		}

		result.Safe = append(result.Safe, ingredient)
	}

	common.LogInfo("食材分類完成",
		zap.String("condition", normalizedCondition),
		zap.Int("total", len(normalized)),
		zap.Int("harmful", len(result.Harmful)),
		zap.Int("safe", len(result.Safe)),
	)

	return result, nil
}
