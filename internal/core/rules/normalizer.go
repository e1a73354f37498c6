package rules

import (
	"strings"
)

// Normalizer 食材名稱正規化器
// 去除前後空白並轉為小寫；結尾為 s 且單數形式存在於規則鍵時折疊為單數，
// 不憑空創造單數形式（避免 gas → ga 之類的誤判）
type Normalizer struct {
	isKnownKey func(string) bool
}

// NewNormalizer 創建正規化器，isKnownKey 提供規則鍵的成員檢查
func NewNormalizer(isKnownKey func(string) bool) *Normalizer {
	return &Normalizer{isKnownKey: isKnownKey}
}

// Normalize 正規化單一食材名稱，冪等且無副作用
func (n *Normalizer) Normalize(raw string) string {
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == "" {
		return ""
	}

	if strings.HasSuffix(name, "s") && len(name) > 1 && n.isKnownKey != nil {
		singular := strings.TrimSuffix(name, "s")
		if n.isKnownKey(singular) {
			return singular
		}
	}

	return name
}

// NormalizeAll 正規化整份清單，去除空白項目並保留順序
func (n *Normalizer) NormalizeAll(items []string) []string {
	result := make([]string, 0, len(items))
	for _, item := range items {
		normalized := n.Normalize(item)
		if normalized == "" {
			continue
		}
		result = append(result, normalized)
	}
	return result
}

// NormalizeCondition 正規化病症識別字（小寫、空白折疊為底線）
func NormalizeCondition(condition string) string {
	c := strings.ToLower(strings.TrimSpace(condition))
	return strings.ReplaceAll(c, " ", "_")
}
