package extraction

import (
	"context"
	"strings"

	"health-recipe-api/internal/core/rules"
	"health-recipe-api/internal/pkg/common"

	"go.uber.org/zap"
)

// Strategy 食材萃取策略
// 統一「嘗試 → 成功/略過」契約：回傳空清單或錯誤都視為無結果，
// 由協調器換下一個策略，錯誤不會外洩給呼叫端
type Strategy interface {
	Name() common.ExtractionStrategy
	Extract(ctx context.Context, text string) ([]string, error)
}

// Orchestrator 萃取協調器
// 依序評估策略鏈，採用第一個有結果的策略
type Orchestrator struct {
	strategies []Strategy
	normalizer *rules.Normalizer
}

// NewOrchestrator 創建萃取協調器，策略依傳入順序評估
func NewOrchestrator(normalizer *rules.Normalizer, strategies ...Strategy) *Orchestrator {
	return &Orchestrator{
		strategies: strategies,
		normalizer: normalizer,
	}
}

// Extract 從菜名或自由文字解析食材清單
// 唯一的失敗形態是四個策略都無結果，此時回傳空清單與 Confident=false 而非錯誤
func (o *Orchestrator) Extract(ctx context.Context, text string) (*common.ExtractionResult, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, common.NewValidationError("text is required")
	}

	for _, strategy := range o.strategies {
		ingredients, err := strategy.Extract(ctx, trimmed)
		if err != nil {
			common.LogWarn("萃取策略失敗，換下一個策略",
				zap.String("strategy", string(strategy.Name())),
				zap.Error(err),
			)
			continue
		}
		if len(ingredients) == 0 {
			continue
		}

		normalized := common.UniqueStrings(o.normalizer.NormalizeAll(ingredients))
		if len(normalized) == 0 {
			continue
		}

		common.LogInfo("食材萃取成功",
			zap.String("strategy", string(strategy.Name())),
			zap.Int("count", len(normalized)),
		)
		return &common.ExtractionResult{
			Ingredients: normalized,
			Strategy:    strategy.Name(),
			Confident:   true,
		}, nil
	}

	common.LogWarn("所有萃取策略皆無結果",
		zap.String("text_preview", common.TruncateString(trimmed, 60)),
	)
	return &common.ExtractionResult{
		Ingredients: []string{},
		Strategy:    common.StrategyHeuristic,
		Confident:   false,
	}, nil
}
