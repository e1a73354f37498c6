package generation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Message 表示與生成模型的對話消息
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request 表示發送到生成提供者的請求
type Request struct {
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
	Stop        []string  `json:"stop,omitempty"`
}

// Response 表示從生成提供者收到的響應
type Response struct {
	Content string `json:"content"`
	Model   string `json:"model,omitempty"`
	Usage   struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Provider 定義文字生成提供者介面
type Provider interface {
	// Generate 生成文字回應
	Generate(ctx context.Context, req *Request) (*Response, error)

	// GetModel 獲取當前使用的模型名稱
	GetModel() string

	// GetTimeout 獲取請求超時時間
	GetTimeout() time.Duration

	// Close 關閉提供者連接
	Close() error
}

// Config 定義生成提供者配置
type Config struct {
	APIKey      string
	Model       string
	Timeout     time.Duration
	MaxRetries  int
	BaseURL     string
	MaxTokens   int
	Temperature float64
}

// ProviderError 表示提供者回傳的非 200 狀態
type ProviderError struct {
	Status int
	Body   string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.Status, e.Body)
}

// IsTransient 判斷錯誤是否屬於暫時性失敗（逾時、限流、伺服器錯誤），可安全重試
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Status == http.StatusTooManyRequests || pe.Status >= http.StatusInternalServerError
	}
	return false
}

// NewUserRequest 以單一使用者訊息構建請求
func NewUserRequest(prompt string, maxTokens int, temperature float64) *Request {
	return &Request{
		Messages: []Message{
			{Role: "user", Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}
}
