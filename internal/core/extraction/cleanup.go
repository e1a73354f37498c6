package extraction

import (
	"regexp"
	"strings"

	"health-recipe-api/internal/pkg/common"
)

var (
	// 項目符號與編號前綴（"- "、"* "、"1. "、"2) " 等）
	bulletPrefixPattern = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s*`)
	// 括號附註（"flour (sifted)" 的 "(sifted)"）
	parentheticalPattern = regexp.MustCompile(`\([^)]*\)`)
	// 句子型 token 的標點
	sentencePunctuation = ".!?;:"
)

// 處理方式與外觀描述詞，對規則比對沒有意義
var descriptorTokens = map[string]struct{}{
	"chopped": {}, "minced": {}, "sliced": {}, "diced": {},
	"fresh": {}, "ground": {}, "powder": {},
	"to": {}, "taste": {}, "optional": {},
	"ripe": {}, "large": {}, "small": {}, "medium": {},
}

// 數量單位，出現在數字後時一併剝除
var unitTokens = map[string]struct{}{
	"cup": {}, "cups": {}, "tsp": {}, "tbsp": {},
	"teaspoon": {}, "teaspoons": {}, "tablespoon": {}, "tablespoons": {},
	"g": {}, "kg": {}, "ml": {}, "l": {},
	"ounce": {}, "ounces": {}, "oz": {},
}

// ParseIngredientList 將生成回應解析為乾淨的食材清單
// 逐 token 清理：去除項目符號、括號附註、描述詞、數量與單位，
// 全部轉小寫並去重（保留首次出現順序）
func ParseIngredientList(raw string) []string {
	// 回應偶爾逐行列出而非逗號分隔，統一先斷行再斷逗號
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == '\n'
	})

	result := make([]string, 0, len(fields))
	for _, field := range fields {
		token := CleanToken(field)
		if token == "" {
			continue
		}
		result = append(result, token)
	}
	return common.UniqueStrings(result)
}

// CleanToken 清理單一食材 token
func CleanToken(raw string) string {
	token := strings.TrimSpace(raw)
	token = bulletPrefixPattern.ReplaceAllString(token, "")
	token = parentheticalPattern.ReplaceAllString(token, "")
	token = strings.ToLower(strings.TrimSpace(token))
	if token == "" {
		return ""
	}

	words := strings.Fields(token)
	kept := make([]string, 0, len(words))
	for i, word := range words {
		word = strings.Trim(word, ".,;:!?\"'")
		if word == "" {
			continue
		}
		// 前導的數量與單位（"2 cups flour" → "flour"）
		if len(kept) == 0 {
			if isNumericToken(word) {
				continue
			}
			if _, isUnit := unitTokens[word]; isUnit && i > 0 {
				continue
			}
		}
		if _, isDescriptor := descriptorTokens[word]; isDescriptor {
			continue
		}
		kept = append(kept, word)
	}

	return strings.Join(kept, " ")
}

// isNumericToken 判斷是否為數量 token（"2"、"1/2"、"3.5"）
func isNumericToken(word string) bool {
	if word == "" {
		return false
	}
	for _, r := range word {
		if (r < '0' || r > '9') && r != '.' && r != '/' && r != '-' {
			return false
		}
	}
	return true
}

// SaneToken 基本健全性檢查：過長或含句子標點的 token 視為雜訊
func SaneToken(token string) bool {
	if token == "" || len(token) > 40 {
		return false
	}
	if strings.ContainsAny(token, sentencePunctuation) {
		return false
	}
	return len(strings.Fields(token)) <= 4
}
