package recipe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"health-recipe-api/internal/core/generation"
	"health-recipe-api/internal/core/rules"
	"health-recipe-api/internal/pkg/common"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// GeneratorOptions 食譜生成設定
type GeneratorOptions struct {
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
	MaxRetries  int
}

// Generator 食譜快取與生成服務
// 快取命中直接回傳儲存的文字；未命中時以 single-flight 保證
// 同一鍵同時間最多一個生成請求在途，其餘呼叫等待該結果
type Generator struct {
	provider generation.Provider
	store    Store
	opts     GeneratorOptions
	group    singleflight.Group
}

// NewGenerator 創建食譜生成服務
func NewGenerator(provider generation.Provider, store Store, opts GeneratorOptions) *Generator {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 800
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	return &Generator{
		provider: provider,
		store:    store,
		opts:     opts,
	}
}

// GetOrGenerate 取得或生成食譜
// ingredients 應為已替換有害食材後的清單；harmful 僅作為生成上下文。
// 集合成員（而非順序或重複）決定快取鍵
func (g *Generator) GetOrGenerate(ctx context.Context, ingredients []string, harmful []string, condition string) (*common.RecipeResult, error) {
	normalizedCondition := rules.NormalizeCondition(condition)
	if normalizedCondition == "" {
		return nil, common.NewValidationError("condition is required")
	}

	signature := Signature(ingredients)
	if signature == "" {
		return nil, common.NewValidationError("ingredient list is empty")
	}
	key := CacheKey(normalizedCondition, signature)

	// 快取命中：回傳儲存文字，不做任何再排序或新鮮度檢查
	entry, err := g.store.Get(ctx, normalizedCondition, signature)
	if err != nil {
		common.LogWarn("食譜儲存讀取失敗，視為未命中",
			zap.String("key", key),
			zap.String("code", common.ErrRecipeStoreUnavailable.Code),
			zap.Error(err),
		)
	}
	if entry != nil {
		common.LogCacheHit("recipe", key)
		return &common.RecipeResult{
			Text:      entry.Text,
			Key:       key,
			FromCache: true,
		}, nil
	}
	common.LogCacheMiss("recipe", key)

	// 同鍵併發未命中合併為一次生成
	v, err, shared := g.group.Do(key, func() (interface{}, error) {
		// 前一批在途請求可能已回填，進入 flight 後先重查儲存
		if entry, err := g.store.Get(ctx, normalizedCondition, signature); err == nil && entry != nil {
			return &common.RecipeResult{
				Text:      entry.Text,
				Key:       key,
				FromCache: true,
			}, nil
		}
		return g.generate(ctx, ingredients, harmful, normalizedCondition, signature, key), nil
	})
	if err != nil {
		// generate 不回傳錯誤，此分支僅為介面完整性
		return nil, err
	}
	if shared {
		common.LogDebug("食譜生成請求已合併", zap.String("key", key))
	}

	return v.(*common.RecipeResult), nil
}

// generate 呼叫生成服務，暫時性失敗重試一次，持續失敗退回固定模板
func (g *Generator) generate(ctx context.Context, ingredients []string, harmful []string, condition, signature, key string) *common.RecipeResult {
	prompt := BuildPrompt(ingredients, harmful, condition)

	var lastErr error
	for attempt := 0; attempt <= g.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			common.LogWarn("食譜生成重試",
				zap.String("key", key),
				zap.Int("attempt", attempt+1),
				zap.Error(lastErr),
			)
		}

		text, err := g.callProvider(ctx, prompt)
		if err == nil {
			if !ValidateText(text) {
				// 格式錯誤不重試，直接退回模板
				common.LogWarn("生成回應缺少必要小節，使用備援模板",
					zap.String("key", key),
					zap.String("code", common.ErrMalformedResponse.Code),
					zap.Int("response_length", len(text)),
				)
				break
			}

			g.persist(ctx, ingredients, condition, signature, key, text)
			return &common.RecipeResult{
				Text: text,
				Key:  key,
			}
		}

		lastErr = err
		if !generation.IsTransient(err) {
			break
		}
	}

	if lastErr != nil {
		code := common.ErrGenerationFailed.Code
		if errors.Is(lastErr, context.DeadlineExceeded) {
			code = common.ErrGenerationTimeout.Code
		}
		common.LogError("食譜生成失敗，使用備援模板",
			zap.String("key", key),
			zap.String("code", code),
			zap.Error(lastErr),
		)
	}

	// 備援模板不寫入快取，之後的成功生成仍可回填
	return &common.RecipeResult{
		Text:     FallbackText(ingredients, condition),
		Key:      key,
		Fallback: true,
	}
}

// callProvider 單次生成呼叫，附帶獨立逾時
func (g *Generator) callProvider(ctx context.Context, prompt string) (string, error) {
	if g.provider == nil {
		return "", fmt.Errorf("generation provider not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, g.opts.Timeout)
	defer cancel()

	resp, err := g.provider.Generate(ctx, generation.NewUserRequest(prompt, g.opts.MaxTokens, g.opts.Temperature))
	if err != nil {
		return "", err
	}
	if resp == nil || resp.Content == "" {
		return "", fmt.Errorf("empty generation response")
	}
	return resp.Content, nil
}

// persist 寫入成功生成的食譜，儲存端不可用時略過但不影響回傳
func (g *Generator) persist(ctx context.Context, ingredients []string, condition, signature, key, text string) {
	entry := &common.RecipeCacheEntry{
		Condition:   condition,
		Signature:   signature,
		Ingredients: ingredients,
		Text:        text,
		Source:      common.StrategyGenerative,
		UpdatedAt:   time.Now().UTC(),
	}
	if err := g.store.Put(ctx, entry); err != nil {
		common.LogWarn("食譜儲存寫入失敗，略過持久化",
			zap.String("key", key),
			zap.String("code", common.ErrRecipeStoreUnavailable.Code),
			zap.Error(err),
		)
		return
	}
	common.LogInfo("食譜已寫入快取", zap.String("key", key))
}
