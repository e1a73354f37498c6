package extraction

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"health-recipe-api/internal/pkg/common"

	"github.com/go-resty/resty/v2"
)

// 外部食譜服務固定提供 strIngredient1..strIngredient20 欄位
const mealIngredientFields = 20

// MealLookupClient 外部食譜查詢客戶端（TheMealDB 形式的 API）
type MealLookupClient struct {
	client *resty.Client
}

// NewMealLookupClient 創建外部食譜查詢客戶端
func NewMealLookupClient(baseURL string, timeout time.Duration) *MealLookupClient {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout)
	return &MealLookupClient{client: client}
}

// LookupByName 以菜名查詢並攤平固定寬度的食材欄位
func (c *MealLookupClient) LookupByName(ctx context.Context, name string) ([]string, error) {
	start := time.Now()

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("s", name).
		Get("/search.php")

	if err != nil {
		common.LogProviderCall("meal_lookup", time.Since(start), err)
		return nil, fmt.Errorf("failed to query recipe lookup service: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		err := fmt.Errorf("recipe lookup service returned status %d", resp.StatusCode())
		common.LogProviderCall("meal_lookup", time.Since(start), err)
		return nil, err
	}

	var result struct {
		Meals []map[string]interface{} `json:"meals"`
	}
	if err := common.ParseJSONBytes(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse recipe lookup response: %w", err)
	}

	common.LogProviderCall("meal_lookup", time.Since(start), nil)

	if len(result.Meals) == 0 {
		return nil, nil
	}

	// 只取第一筆，過濾空欄位
	meal := result.Meals[0]
	ingredients := make([]string, 0, mealIngredientFields)
	for i := 1; i <= mealIngredientFields; i++ {
		raw, ok := meal[fmt.Sprintf("strIngredient%d", i)]
		if !ok {
			continue
		}
		value, ok := raw.(string)
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		ingredients = append(ingredients, value)
	}
	return ingredients, nil
}

// ExternalStrategy 外部食譜查詢策略
type ExternalStrategy struct {
	client *MealLookupClient
}

// NewExternalStrategy 創建外部食譜查詢策略
func NewExternalStrategy(client *MealLookupClient) *ExternalStrategy {
	return &ExternalStrategy{client: client}
}

// Name 策略標籤
func (s *ExternalStrategy) Name() common.ExtractionStrategy {
	return common.StrategyExternal
}

// Extract 查詢外部食譜服務
func (s *ExternalStrategy) Extract(ctx context.Context, text string) ([]string, error) {
	return s.client.LookupByName(ctx, text)
}
