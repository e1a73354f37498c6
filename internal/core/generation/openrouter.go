package generation

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"health-recipe-api/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// OpenRouterClient OpenRouter 生成服務客戶端
type OpenRouterClient struct {
	config Config
	client *resty.Client
}

// NewOpenRouterClient 創建 OpenRouter 客戶端
func NewOpenRouterClient(cfg Config) *OpenRouterClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://openrouter.ai/api/v1"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey)).
		SetHeader("HTTP-Referer", "https://health-recipe-api.com").
		SetHeader("X-Title", "Health Recipe API")

	return &OpenRouterClient{
		config: cfg,
		client: client,
	}
}

// Generate 生成文字回應
func (c *OpenRouterClient) Generate(ctx context.Context, req *Request) (*Response, error) {
	if req == nil || len(req.Messages) == 0 {
		return nil, fmt.Errorf("empty generation request")
	}

	// 構建請求
	body := map[string]interface{}{
		"model":    c.config.Model,
		"messages": req.Messages,
	}
	if req.MaxTokens > 0 {
		body["max_tokens"] = req.MaxTokens
	}
	if req.Temperature > 0 {
		body["temperature"] = req.Temperature
	}
	if len(req.Stop) > 0 {
		body["stop"] = req.Stop
	}

	start := time.Now()

	// 發送請求
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		Post("/chat/completions")

	if err != nil {
		common.LogProviderCall("openrouter", time.Since(start), err)
		return nil, fmt.Errorf("failed to send request to OpenRouter: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		perr := &ProviderError{Status: resp.StatusCode(), Body: common.TruncateString(resp.String(), 200)}
		common.LogProviderCall("openrouter", time.Since(start), perr)
		return nil, perr
	}

	// 解析回應
	var result struct {
		Model   string `json:"model"`
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			PromptTokens     int `json:"prompt_tokens"`
			CompletionTokens int `json:"completion_tokens"`
			TotalTokens      int `json:"total_tokens"`
		} `json:"usage"`
	}

	if err := common.ParseJSONBytes(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse OpenRouter response: %w", err)
	}

	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("no choices in OpenRouter response")
	}

	common.LogProviderCall("openrouter", time.Since(start), nil)
	common.LogDebug("生成回應",
		zap.Int("content_length", len(result.Choices[0].Message.Content)),
		zap.Int("total_tokens", result.Usage.TotalTokens),
	)

	out := &Response{
		Content: result.Choices[0].Message.Content,
		Model:   result.Model,
	}
	out.Usage = result.Usage
	return out, nil
}

// GetModel 獲取當前使用的模型名稱
func (c *OpenRouterClient) GetModel() string {
	return c.config.Model
}

// GetTimeout 獲取請求超時時間
func (c *OpenRouterClient) GetTimeout() time.Duration {
	return c.config.Timeout
}

// Close 關閉提供者連接
func (c *OpenRouterClient) Close() error {
	return nil
}
