package rules

import (
	"context"
	"encoding/json"
	"fmt"

	"health-recipe-api/internal/pkg/common"

	"github.com/go-redis/redis/v8"
)

// Repository 規則庫介面
// FetchRule 在規則不存在時回傳 (nil, nil)，錯誤僅表示規則庫本身不可用
type Repository interface {
	FetchRule(ctx context.Context, name string) (*common.IngredientRule, error)
	UpsertRule(ctx context.Context, rule *common.IngredientRule) error
	ListRules(ctx context.Context) ([]common.IngredientRule, error)
	Conditions(ctx context.Context) ([]string, error)
}

const (
	ruleKeyPrefix = "rule:"
	ruleIndexKey  = "rules:index"
	ruleSeedKey   = "rules:seeded"
)

// RedisRepository Redis 規則庫
// 每條規則存為 rule:<name> 雜湊，名稱另存於 rules:index 集合供列舉
type RedisRepository struct {
	client *redis.Client
}

// NewRedisRepository 創建 Redis 規則庫
func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

// FetchRule 取得單條規則
func (r *RedisRepository) FetchRule(ctx context.Context, name string) (*common.IngredientRule, error) {
	data, err := r.client.HGetAll(ctx, ruleKeyPrefix+name).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rule: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	return ruleFromHash(name, data)
}

// UpsertRule 新增或覆寫規則
func (r *RedisRepository) UpsertRule(ctx context.Context, rule *common.IngredientRule) error {
	if rule == nil || rule.Name == "" {
		return common.NewValidationError("rule name is required")
	}

	harmfulFor, err := json.Marshal(rule.HarmfulFor)
	if err != nil {
		return fmt.Errorf("failed to marshal harmful_for: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.HSet(ctx, ruleKeyPrefix+rule.Name, map[string]interface{}{
		"harmful_for": string(harmfulFor),
		"alternative": rule.Alternative,
		"category":    rule.Category,
	})
	pipe.SAdd(ctx, ruleIndexKey, rule.Name)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to upsert rule: %w", err)
	}
	return nil
}

// ListRules 列出全部規則
func (r *RedisRepository) ListRules(ctx context.Context) ([]common.IngredientRule, error) {
	names, err := r.client.SMembers(ctx, ruleIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list rule names: %w", err)
	}

	result := make([]common.IngredientRule, 0, len(names))
	for _, name := range names {
		rule, err := r.FetchRule(ctx, name)
		if err != nil {
			return nil, err
		}
		if rule == nil {
			continue
		}
		result = append(result, *rule)
	}
	return result, nil
}

// Conditions 列出規則中出現過的所有病症
func (r *RedisRepository) Conditions(ctx context.Context) ([]string, error) {
	ruleList, err := r.ListRules(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	conditions := make([]string, 0)
	for _, rule := range ruleList {
		for _, c := range rule.HarmfulFor {
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			conditions = append(conditions, c)
		}
	}
	return conditions, nil
}

// EnsureSeed 初次啟動時寫入種子規則，rules:seeded 旗標保證只執行一次
func (r *RedisRepository) EnsureSeed(ctx context.Context) error {
	ok, err := r.client.SetNX(ctx, ruleSeedKey, "1", 0).Result()
	if err != nil {
		return fmt.Errorf("failed to check seed marker: %w", err)
	}
	if !ok {
		return nil
	}

	for _, rule := range SeedRules() {
		seeded := rule
		if err := r.UpsertRule(ctx, &seeded); err != nil {
			return fmt.Errorf("failed to seed rule %q: %w", rule.Name, err)
		}
	}
	return nil
}

// ruleFromHash 將 Redis 雜湊轉回規則
func ruleFromHash(name string, data map[string]string) (*common.IngredientRule, error) {
	rule := &common.IngredientRule{
		Name:        name,
		Alternative: data["alternative"],
		Category:    data["category"],
	}
	if raw, ok := data["harmful_for"]; ok && raw != "" {
		if err := json.Unmarshal([]byte(raw), &rule.HarmfulFor); err != nil {
			return nil, fmt.Errorf("failed to unmarshal harmful_for for %q: %w", name, err)
		}
	}
	return rule, nil
}
