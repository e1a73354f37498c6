package tips

import (
	"context"
	"fmt"
	"strings"
	"time"

	"health-recipe-api/internal/core/generation"
	"health-recipe-api/internal/core/rules"
	"health-recipe-api/internal/pkg/common"

	"go.uber.org/zap"
)

// ServiceOptions 健康建議服務設定
type ServiceOptions struct {
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// Service 健康建議服務
// 生成失敗或回應無法解析時退回靜態建議表，不把錯誤往上拋
type Service struct {
	provider generation.Provider
	opts     ServiceOptions
}

// NewService 創建健康建議服務，provider 可為 nil（僅用靜態建議表）
func NewService(provider generation.Provider, opts ServiceOptions) *Service {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 300
	}
	if opts.Temperature <= 0 {
		opts.Temperature = 0.7
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Service{provider: provider, opts: opts}
}

// looseTips 寬鬆版中繼結構，容忍生成回應多出的欄位
type looseTips struct {
	General          string   `json:"general"`
	FoodsToAvoid     []string `json:"foods_to_avoid"`
	RecommendedFoods []string `json:"recommended_foods"`
}

// TipsFor 取得病症的飲食建議
func (s *Service) TipsFor(ctx context.Context, condition string) (*common.HealthTips, error) {
	normalized := rules.NormalizeCondition(condition)
	if normalized == "" {
		return nil, common.NewValidationError("condition is required")
	}

	if s.provider == nil {
		return FallbackTips(normalized), nil
	}

	prompt := buildTipsPrompt(normalized)

	genCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()

	resp, err := s.provider.Generate(genCtx, generation.NewUserRequest(prompt, s.opts.MaxTokens, s.opts.Temperature))
	if err != nil {
		common.LogWarn("健康建議生成失敗，改用靜態建議",
			zap.String("condition", normalized),
			zap.Error(err),
		)
		return FallbackTips(normalized), nil
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		common.LogWarn("健康建議回應為空，改用靜態建議", zap.String("condition", normalized))
		return FallbackTips(normalized), nil
	}

	// 去除 markdown 圍欄與說明文字後再解析
	content := common.QuoteJSONKeys(common.ExtractJSONObject(resp.Content))
	var lt looseTips
	if err := common.ParseJSON(content, &lt); err != nil {
		common.LogWarn("健康建議回應解析失敗，改用靜態建議",
			zap.String("condition", normalized),
			zap.Error(err),
			zap.String("raw_response", common.TruncateString(resp.Content, 200)),
		)
		return FallbackTips(normalized), nil
	}

	tips := &common.HealthTips{
		Condition:        normalized,
		General:          strings.TrimSpace(lt.General),
		FoodsToAvoid:     cleanList(lt.FoodsToAvoid),
		RecommendedFoods: cleanList(lt.RecommendedFoods),
	}
	if tips.General == "" {
		common.LogWarn("健康建議內容不完整，改用靜態建議", zap.String("condition", normalized))
		return FallbackTips(normalized), nil
	}

	common.LogInfo("健康建議生成完成",
		zap.String("condition", normalized),
		zap.Int("foods_to_avoid", len(tips.FoodsToAvoid)),
		zap.Int("recommended_foods", len(tips.RecommendedFoods)),
	)
	return tips, nil
}

func buildTipsPrompt(condition string) string {
	return fmt.Sprintf(`As a nutritionist, provide brief, practical dietary guidance for someone managing %s.

Requirements:
1. Keep the general advice to 2-3 encouraging sentences specific to the condition
2. List 3-5 everyday foods to avoid and 3-5 recommended foods
3. All fields must use double quotes
4. Return a single compact JSON object and nothing else, no markdown fences

Return JSON in exactly this format:
{
    "general": "brief advice",
    "foods_to_avoid": ["food"],
    "recommended_foods": ["food"]
}`, common.ConditionTitle(condition))
}

func cleanList(items []string) []string {
	cleaned := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			cleaned = append(cleaned, item)
		}
	}
	return common.UniqueStrings(cleaned)
}
