package common

import (
	"errors"
	"net/http"
)

// ErrorResponse 定義 API 錯誤響應結構
type ErrorResponse struct {
	Code    string `json:"code"`              // 錯誤代碼
	Message string `json:"message"`           // 錯誤信息
	Details string `json:"details,omitempty"` // 詳細信息（僅在開發模式顯示）
}

// CustomError 定義自定義錯誤類型
type CustomError struct {
	Code    string // 錯誤代碼
	Message string // 錯誤信息
	Err     error  // 原始錯誤
	Status  int    // HTTP 狀態碼
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap 回傳原始錯誤，支援 errors.Is / errors.As
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// ValidationError 表示驗證錯誤（無效輸入，唯一的硬失敗類別）
type ValidationError struct {
	message string
}

// Error 實現 error 介面
func (e *ValidationError) Error() string {
	return e.message
}

// NewValidationError 創建新的驗證錯誤
func NewValidationError(message string) error {
	return &ValidationError{
		message: message,
	}
}

// IsValidationError 檢查是否為驗證錯誤
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// 中介層錯誤代碼
// 驗證失敗等 4xx 由各處理程序直接回傳訊息，不走代碼表
const (
	ErrCodeRequestTimeout  = "REQUEST_TIMEOUT"   // 408
	ErrCodeTooManyRequests = "TOO_MANY_REQUESTS" // 429
	ErrCodeInternalError   = "INTERNAL_ERROR"    // 500
)

// 業務錯誤
// 協作者失敗一律就地降級（預設安全分類、啟發式萃取、模板食譜、部分營養），
// 這些錯誤只用於日誌分類與內部判斷，不會原樣傳給呼叫端
var (
	ErrRuleRepositoryUnavailable = NewError("RULE_REPOSITORY_UNAVAILABLE", "規則庫暫時不可用", http.StatusServiceUnavailable, nil)
	ErrRecipeStoreUnavailable    = NewError("RECIPE_STORE_UNAVAILABLE", "食譜儲存暫時不可用", http.StatusServiceUnavailable, nil)
	ErrGenerationFailed          = NewError("GENERATION_FAILED", "生成服務錯誤", http.StatusServiceUnavailable, nil)
	ErrGenerationTimeout         = NewError("GENERATION_TIMEOUT", "生成服務超時", http.StatusGatewayTimeout, nil)
	ErrNutritionUnavailable      = NewError("NUTRITION_UNAVAILABLE", "營養查詢服務不可用", http.StatusServiceUnavailable, nil)
	ErrMalformedResponse         = NewError("MALFORMED_RESPONSE", "協作者回應格式錯誤", http.StatusBadGateway, nil)
)
