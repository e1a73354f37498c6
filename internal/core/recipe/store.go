package recipe

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"health-recipe-api/internal/pkg/common"

	"github.com/go-redis/redis/v8"
)

// Signature 計算標準食材簽章：轉小寫、去重、字典序排序後以逗號串接
// 集合成員決定簽章，順序與重複不影響結果
func Signature(ingredients []string) string {
	unique := make(map[string]struct{}, len(ingredients))
	for _, ing := range ingredients {
		name := strings.ToLower(strings.TrimSpace(ing))
		if name == "" {
			continue
		}
		unique[name] = struct{}{}
	}

	names := make([]string, 0, len(unique))
	for name := range unique {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

// CacheKey 組合病症與食材簽章為完整快取鍵
func CacheKey(condition, signature string) string {
	return fmt.Sprintf("%s:%s", condition, signature)
}

// Store 食譜持久層介面
// Get 未命中時回傳 (nil, nil)；錯誤表示儲存端不可用，
// 呼叫端必須視為未命中並略過寫入
type Store interface {
	Get(ctx context.Context, condition, signature string) (*common.RecipeCacheEntry, error)
	Put(ctx context.Context, entry *common.RecipeCacheEntry) error
}

const recipeKeyPrefix = "recipe:"

// RedisStore Redis 食譜儲存
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore 創建 Redis 食譜儲存
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Get 讀取食譜快取條目
func (s *RedisStore) Get(ctx context.Context, condition, signature string) (*common.RecipeCacheEntry, error) {
	data, err := s.client.Get(ctx, s.key(condition, signature)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get recipe entry: %w", err)
	}

	var entry common.RecipeCacheEntry
	if err := common.ParseJSONBytes(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipe entry: %w", err)
	}
	return &entry, nil
}

// Put 寫入食譜快取條目（整筆覆寫，不設過期時間，淘汰是儲存層的事）
func (s *RedisStore) Put(ctx context.Context, entry *common.RecipeCacheEntry) error {
	if entry == nil {
		return common.NewValidationError("recipe entry is required")
	}

	data, err := common.ToJSON(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal recipe entry: %w", err)
	}

	if err := s.client.Set(ctx, s.key(entry.Condition, entry.Signature), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to put recipe entry: %w", err)
	}
	return nil
}

// key 生成儲存鍵
func (s *RedisStore) key(condition, signature string) string {
	return recipeKeyPrefix + CacheKey(condition, signature)
}
