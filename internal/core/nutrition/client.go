package nutrition

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"health-recipe-api/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Lookuper 營養查詢協作者
// 查無資料回傳 (nil, nil)；錯誤表示服務不可用或逾時，
// 該食材會被列入 Unmatched 並排除在總計之外
type Lookuper interface {
	LookupNutrients(ctx context.Context, name string) (map[string]float64, error)
}

// USDAClient 食品成分資料庫客戶端（FoodData Central 形式的 API）
type USDAClient struct {
	client *resty.Client
	apiKey string
}

// NewUSDAClient 創建營養查詢客戶端
func NewUSDAClient(baseURL, apiKey string, timeout time.Duration) *USDAClient {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout)
	return &USDAClient{
		client: client,
		apiKey: apiKey,
	}
}

// LookupNutrients 查詢單一食材的每 100g 營養向量
func (c *USDAClient) LookupNutrients(ctx context.Context, name string) (map[string]float64, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("nutrition api key is not configured")
	}

	start := time.Now()

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"query":    name,
			"dataType": "Foundation,SR Legacy,Survey (FNDDS)",
			"pageSize": "5",
			"api_key":  c.apiKey,
		}).
		Get("/v1/foods/search")

	if err != nil {
		common.LogProviderCall("nutrition", time.Since(start), err)
		return nil, fmt.Errorf("failed to query nutrition service: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		err := fmt.Errorf("nutrition service returned status %d", resp.StatusCode())
		common.LogProviderCall("nutrition", time.Since(start), err)
		return nil, err
	}

	var result struct {
		Foods []struct {
			Description   string `json:"description"`
			FoodNutrients []struct {
				NutrientID int     `json:"nutrientId"`
				Value      float64 `json:"value"`
			} `json:"foodNutrients"`
		} `json:"foods"`
	}
	if err := common.ParseJSONBytes(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse nutrition response: %w", err)
	}

	common.LogProviderCall("nutrition", time.Since(start), nil)

	if len(result.Foods) == 0 {
		common.LogDebug("營養查詢無結果", zap.String("ingredient", name))
		return nil, nil
	}

	// 只取第一筆，未知的營養素 ID 直接略過
	vector := make(map[string]float64)
	for _, fn := range result.Foods[0].FoodNutrients {
		nutrient, ok := NutrientByID(fn.NutrientID)
		if !ok {
			continue
		}
		vector[nutrient.Name] = fn.Value
	}
	if len(vector) == 0 {
		return nil, nil
	}
	return vector, nil
}
