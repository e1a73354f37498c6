package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"health-recipe-api/internal/pkg/common"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// DishRepository 本地菜名→食材表
// FindByName 查無時回傳 (nil, nil)，此協作者沒有失敗模式
type DishRepository interface {
	FindByName(ctx context.Context, name string) ([]string, error)
}

const (
	dishKeyPrefix = "dish:"
	dishIndexKey  = "dishes:index"
	dishSeedKey   = "dishes:seeded"
)

// SeedDishes 內建本地食譜表
func SeedDishes() map[string][]string {
	return map[string][]string{
		"banana bread":    {"flour", "banana", "sugar", "butter", "eggs"},
		"pancakes":        {"flour", "milk", "eggs", "butter", "salt", "sugar"},
		"peanut stir fry": {"soy", "peanuts", "salt", "corn", "butter"},
		"bread":           {"flour", "water", "yeast", "salt"},
		"puran poli":      {"wheat flour", "chana dal", "jaggery", "ghee", "cardamom", "turmeric", "salt"},
	}
}

// RedisDishRepository Redis 本地食譜表
// 每道菜存為 dish:<name> 的 JSON 清單；Redis 不可用時退回內建種子表，
// 維持「本地協作者不失敗」的契約
type RedisDishRepository struct {
	client *redis.Client
	seeds  map[string][]string
}

// NewRedisDishRepository 創建 Redis 本地食譜表
func NewRedisDishRepository(client *redis.Client) *RedisDishRepository {
	return &RedisDishRepository{
		client: client,
		seeds:  SeedDishes(),
	}
}

// FindByName 先做完全比對（不分大小寫），再做子字串比對
func (r *RedisDishRepository) FindByName(ctx context.Context, name string) ([]string, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return nil, nil
	}

	names, err := r.client.SMembers(ctx, dishIndexKey).Result()
	if err != nil {
		common.LogWarn("本地食譜表讀取失敗，退回種子表", zap.Error(err))
		return findInTable(r.seeds, key), nil
	}
	// SMembers 的順序不固定，排序以保證子字串比對結果可重現
	sort.Strings(names)

	// 完全比對
	for _, candidate := range names {
		if candidate == key {
			return r.dishIngredients(ctx, candidate)
		}
	}

	// 子字串比對：菜名包含查詢字或查詢字包含菜名
	for _, candidate := range names {
		if strings.Contains(candidate, key) || strings.Contains(key, candidate) {
			return r.dishIngredients(ctx, candidate)
		}
	}

	return nil, nil
}

// dishIngredients 讀出單道菜的食材清單
func (r *RedisDishRepository) dishIngredients(ctx context.Context, name string) ([]string, error) {
	data, err := r.client.Get(ctx, dishKeyPrefix+name).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		common.LogWarn("本地食譜表讀取失敗，退回種子表", zap.Error(err))
		return findInTable(r.seeds, name), nil
	}

	var ingredients []string
	if err := json.Unmarshal(data, &ingredients); err != nil {
		return nil, fmt.Errorf("failed to unmarshal dish %q: %w", name, err)
	}
	return ingredients, nil
}

// EnsureSeed 初次啟動時寫入種子食譜表
func (r *RedisDishRepository) EnsureSeed(ctx context.Context) error {
	ok, err := r.client.SetNX(ctx, dishSeedKey, "1", 0).Result()
	if err != nil {
		return fmt.Errorf("failed to check dish seed marker: %w", err)
	}
	if !ok {
		return nil
	}

	for name, ingredients := range r.seeds {
		data, err := json.Marshal(ingredients)
		if err != nil {
			return fmt.Errorf("failed to marshal dish %q: %w", name, err)
		}
		pipe := r.client.TxPipeline()
		pipe.Set(ctx, dishKeyPrefix+name, data, 0)
		pipe.SAdd(ctx, dishIndexKey, name)
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("failed to seed dish %q: %w", name, err)
		}
	}
	return nil
}

// findInTable 在記憶體表中先完全比對再子字串比對
func findInTable(table map[string][]string, key string) []string {
	if ingredients, ok := table[key]; ok {
		return append([]string(nil), ingredients...)
	}
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if strings.Contains(name, key) || strings.Contains(key, name) {
			return append([]string(nil), table[name]...)
		}
	}
	return nil
}

// RepositoryStrategy 本地食譜表策略
type RepositoryStrategy struct {
	repo DishRepository
}

// NewRepositoryStrategy 創建本地食譜表策略
func NewRepositoryStrategy(repo DishRepository) *RepositoryStrategy {
	return &RepositoryStrategy{repo: repo}
}

// Name 策略標籤
func (s *RepositoryStrategy) Name() common.ExtractionStrategy {
	return common.StrategyRepository
}

// Extract 查詢本地菜名表
func (s *RepositoryStrategy) Extract(ctx context.Context, text string) ([]string, error) {
	return s.repo.FindByName(ctx, text)
}
