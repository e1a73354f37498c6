package recipe

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"health-recipe-api/internal/core/generation"
	"health-recipe-api/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validRecipeText = "**Health Benefits**\nGentle on blood sugar.\n\n**Ingredients**\n- banana\n- almond flour\n\n**Instructions**\n1. Mix\n2. Bake\n\n**Cooking Tips**\n- Low heat\n\n**Serving Suggestions**\nServe warm.\n"

// ==========================
// Scripted Provider Implementation
// ==========================

type reply struct {
	content string
	err     error
}

// scriptedProvider 依序回放預先編排的回應，最後一筆重複使用
type scriptedProvider struct {
	mu      sync.Mutex
	replies []reply
	delay   time.Duration
	calls   int
}

func (p *scriptedProvider) Generate(ctx context.Context, req *generation.Request) (*generation.Response, error) {
	p.mu.Lock()
	p.calls++
	var r reply
	if len(p.replies) > 0 {
		r = p.replies[0]
		if len(p.replies) > 1 {
			p.replies = p.replies[1:]
		}
	}
	delay := p.delay
	p.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if r.err != nil {
		return nil, r.err
	}
	return &generation.Response{Content: r.content, Model: "test-model"}, nil
}

func (p *scriptedProvider) GetModel() string {
	return "test-model"
}

func (p *scriptedProvider) GetTimeout() time.Duration {
	return time.Second
}

func (p *scriptedProvider) Close() error {
	return nil
}

func (p *scriptedProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// ==========================
// Test Helpers
// ==========================

func newTestGenerator(t *testing.T, provider generation.Provider) (*Generator, *RedisStore) {
	t.Helper()
	store, _ := setupStore(t)
	gen := NewGenerator(provider, store, GeneratorOptions{
		MaxTokens:   800,
		Temperature: 0.7,
		Timeout:     time.Second,
		MaxRetries:  1,
	})
	return gen, store
}

// ==========================
// GetOrGenerate Tests
// ==========================

func TestGenerator_GetOrGenerate_CacheHit(t *testing.T) {
	provider := &scriptedProvider{replies: []reply{{content: validRecipeText}}}
	gen, store := newTestGenerator(t, provider)

	cached := testEntry()
	require.NoError(t, store.Put(context.Background(), cached))

	result, err := gen.GetOrGenerate(context.Background(), []string{"banana", "flour"}, nil, "diabetes")
	require.NoError(t, err)
	assert.True(t, result.FromCache)
	assert.False(t, result.Fallback)
	assert.Equal(t, cached.Text, result.Text)
	assert.Equal(t, "diabetes:banana,flour", result.Key)

	// 命中時不得呼叫生成服務
	assert.Equal(t, 0, provider.callCount())
}

func TestGenerator_GetOrGenerate_GeneratesAndPersists(t *testing.T) {
	provider := &scriptedProvider{replies: []reply{{content: validRecipeText}}}
	gen, store := newTestGenerator(t, provider)

	result, err := gen.GetOrGenerate(context.Background(), []string{"banana", "almond flour"}, []string{"flour"}, "diabetes")
	require.NoError(t, err)
	assert.False(t, result.FromCache)
	assert.False(t, result.Fallback)
	assert.Equal(t, validRecipeText, result.Text)
	assert.Equal(t, 1, provider.callCount())

	// 成功生成必須回填儲存
	entry, err := store.Get(context.Background(), "diabetes", Signature([]string{"banana", "almond flour"}))
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, validRecipeText, entry.Text)
	assert.Equal(t, common.StrategyGenerative, entry.Source)

	// 第二次呼叫直接命中
	again, err := gen.GetOrGenerate(context.Background(), []string{"banana", "almond flour"}, nil, "diabetes")
	require.NoError(t, err)
	assert.True(t, again.FromCache)
	assert.Equal(t, 1, provider.callCount())
}

func TestGenerator_GetOrGenerate_KeyIgnoresOrderAndDuplicates(t *testing.T) {
	provider := &scriptedProvider{replies: []reply{{content: validRecipeText}}}
	gen, _ := newTestGenerator(t, provider)

	_, err := gen.GetOrGenerate(context.Background(), []string{"banana", "flour"}, nil, "diabetes")
	require.NoError(t, err)

	result, err := gen.GetOrGenerate(context.Background(), []string{"Flour", "banana", "flour"}, nil, "diabetes")
	require.NoError(t, err)
	assert.True(t, result.FromCache)
	assert.Equal(t, 1, provider.callCount())
}

func TestGenerator_GetOrGenerate_RetriesTransientError(t *testing.T) {
	provider := &scriptedProvider{replies: []reply{
		{err: &generation.ProviderError{Status: http.StatusTooManyRequests, Body: "rate limited"}},
		{content: validRecipeText},
	}}
	gen, _ := newTestGenerator(t, provider)

	result, err := gen.GetOrGenerate(context.Background(), []string{"banana"}, nil, "diabetes")
	require.NoError(t, err)
	assert.False(t, result.Fallback)
	assert.Equal(t, validRecipeText, result.Text)
	assert.Equal(t, 2, provider.callCount())
}

func TestGenerator_GetOrGenerate_TransientFailuresExhaustRetries(t *testing.T) {
	provider := &scriptedProvider{replies: []reply{
		{err: &generation.ProviderError{Status: http.StatusInternalServerError, Body: "boom"}},
	}}
	gen, store := newTestGenerator(t, provider)

	result, err := gen.GetOrGenerate(context.Background(), []string{"banana"}, nil, "diabetes")
	require.NoError(t, err)
	assert.True(t, result.Fallback)
	// MaxRetries 為 1：原始呼叫加一次重試
	assert.Equal(t, 2, provider.callCount())

	// 備援結果不得寫入儲存
	entry, err := store.Get(context.Background(), "diabetes", "banana")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestGenerator_GetOrGenerate_NonTransientErrorNoRetry(t *testing.T) {
	provider := &scriptedProvider{replies: []reply{
		{err: errors.New("invalid api key")},
	}}
	gen, _ := newTestGenerator(t, provider)

	result, err := gen.GetOrGenerate(context.Background(), []string{"banana"}, nil, "diabetes")
	require.NoError(t, err)
	assert.True(t, result.Fallback)
	assert.Equal(t, 1, provider.callCount())
}

func TestGenerator_GetOrGenerate_MalformedResponseNoRetry(t *testing.T) {
	provider := &scriptedProvider{replies: []reply{
		{content: "here is a recipe without the required structure"},
	}}
	gen, store := newTestGenerator(t, provider)

	result, err := gen.GetOrGenerate(context.Background(), []string{"banana"}, nil, "diabetes")
	require.NoError(t, err)
	assert.True(t, result.Fallback)
	// 格式錯誤不重試
	assert.Equal(t, 1, provider.callCount())

	entry, err := store.Get(context.Background(), "diabetes", "banana")
	require.NoError(t, err)
	assert.Nil(t, entry)
}

func TestGenerator_GetOrGenerate_FallbackDoesNotPoisonCache(t *testing.T) {
	provider := &scriptedProvider{replies: []reply{
		{err: errors.New("provider down")},
		{content: validRecipeText},
	}}
	gen, _ := newTestGenerator(t, provider)

	first, err := gen.GetOrGenerate(context.Background(), []string{"banana"}, nil, "diabetes")
	require.NoError(t, err)
	assert.True(t, first.Fallback)

	// 備援未寫入快取，下一次呼叫仍會嘗試生成並成功回填
	second, err := gen.GetOrGenerate(context.Background(), []string{"banana"}, nil, "diabetes")
	require.NoError(t, err)
	assert.False(t, second.Fallback)
	assert.Equal(t, validRecipeText, second.Text)

	third, err := gen.GetOrGenerate(context.Background(), []string{"banana"}, nil, "diabetes")
	require.NoError(t, err)
	assert.True(t, third.FromCache)
}

func TestGenerator_GetOrGenerate_StoreDownStillGenerates(t *testing.T) {
	provider := &scriptedProvider{replies: []reply{{content: validRecipeText}}}
	store, mr := setupStore(t)
	gen := NewGenerator(provider, store, GeneratorOptions{Timeout: time.Second})

	mr.Close()

	result, err := gen.GetOrGenerate(context.Background(), []string{"banana"}, nil, "diabetes")
	require.NoError(t, err)
	assert.False(t, result.FromCache)
	assert.False(t, result.Fallback)
	assert.Equal(t, validRecipeText, result.Text)
}

func TestGenerator_GetOrGenerate_SingleFlight(t *testing.T) {
	provider := &scriptedProvider{
		replies: []reply{{content: validRecipeText}},
		delay:   100 * time.Millisecond,
	}
	gen, _ := newTestGenerator(t, provider)

	const workers = 10
	start := make(chan struct{})
	var wg sync.WaitGroup
	results := make([]*common.RecipeResult, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			<-start
			// 順序不同的同一組食材必須合併為同一個在途請求
			ingredients := []string{"banana", "flour"}
			if idx%2 == 1 {
				ingredients = []string{"flour", "banana"}
			}
			result, err := gen.GetOrGenerate(context.Background(), ingredients, nil, "diabetes")
			assert.NoError(t, err)
			results[idx] = result
		}(i)
	}

	close(start)
	wg.Wait()

	assert.Equal(t, 1, provider.callCount())
	for _, result := range results {
		require.NotNil(t, result)
		assert.Equal(t, validRecipeText, result.Text)
		assert.Equal(t, "diabetes:banana,flour", result.Key)
	}
}

func TestGenerator_GetOrGenerate_Validation(t *testing.T) {
	gen, _ := newTestGenerator(t, &scriptedProvider{})

	_, err := gen.GetOrGenerate(context.Background(), []string{"banana"}, nil, "  ")
	require.Error(t, err)
	assert.True(t, common.IsValidationError(err))

	_, err = gen.GetOrGenerate(context.Background(), []string{"", "  "}, nil, "diabetes")
	require.Error(t, err)
	assert.True(t, common.IsValidationError(err))
}

func TestGenerator_GetOrGenerate_NilProviderFallsBack(t *testing.T) {
	store, _ := setupStore(t)
	gen := NewGenerator(nil, store, GeneratorOptions{})

	result, err := gen.GetOrGenerate(context.Background(), []string{"banana"}, nil, "diabetes")
	require.NoError(t, err)
	assert.True(t, result.Fallback)
	assert.True(t, ValidateText(result.Text))
}
