package extraction

import (
	"context"
	"fmt"
	"time"

	"health-recipe-api/internal/core/generation"
	"health-recipe-api/internal/pkg/common"

	"go.uber.org/zap"
)

// GenerativeStrategy 以生成服務做 few-shot 食材萃取
type GenerativeStrategy struct {
	provider    generation.Provider
	maxTokens   int
	temperature float64
	timeout     time.Duration
}

// NewGenerativeStrategy 創建生成式萃取策略
func NewGenerativeStrategy(provider generation.Provider, maxTokens int, temperature float64, timeout time.Duration) *GenerativeStrategy {
	if maxTokens <= 0 {
		maxTokens = 150
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &GenerativeStrategy{
		provider:    provider,
		maxTokens:   maxTokens,
		temperature: temperature,
		timeout:     timeout,
	}
}

// Name 策略標籤
func (s *GenerativeStrategy) Name() common.ExtractionStrategy {
	return common.StrategyGenerative
}

// Extract 提交 few-shot 提示詞並解析逗號分隔的回應
func (s *GenerativeStrategy) Extract(ctx context.Context, text string) ([]string, error) {
	if s.provider == nil {
		return nil, fmt.Errorf("generation provider not configured")
	}

	prompt := fmt.Sprintf(`Extract the main ingredients from this recipe name or description. Return ONLY a comma-separated list of basic ingredient names, without quantities or preparation notes.

Examples:
Recipe: puran poli
Ingredients: wheat flour, chana dal, jaggery, ghee, cardamom, turmeric, salt

Recipe: bread
Ingredients: flour, water, yeast, salt

Recipe: Banana Bread - A delicious moist bread made with ripe bananas
Ingredients: flour, banana, sugar, butter, eggs

Recipe: %s
Ingredients:`, text)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.provider.Generate(ctx, generation.NewUserRequest(prompt, s.maxTokens, s.temperature))
	if err != nil {
		return nil, fmt.Errorf("generation request failed: %w", err)
	}
	if resp == nil || resp.Content == "" {
		return nil, fmt.Errorf("empty generation response")
	}

	ingredients := ParseIngredientList(resp.Content)
	if len(ingredients) == 0 {
		return nil, fmt.Errorf("no ingredients parsed from response")
	}

	// 任一 token 未通過健全性檢查就放棄整份結果，避免把句子當食材
	for _, token := range ingredients {
		if !SaneToken(token) {
			common.LogDebug("生成式萃取結果含雜訊 token",
				zap.String("token", common.TruncateString(token, 60)),
			)
			return nil, fmt.Errorf("extraction result failed sanity check")
		}
	}

	return ingredients, nil
}
