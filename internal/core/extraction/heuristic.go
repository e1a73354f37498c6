package extraction

import (
	"context"
	"strings"

	"health-recipe-api/internal/pkg/common"
)

// heuristicDish 常見菜式的預設食材
type heuristicDish struct {
	name        string
	ingredients []string
}

// 終端備援表，依序比對（先列出的優先）
var heuristicDishes = []heuristicDish{
	{"pasta", []string{"pasta", "tomato", "garlic", "olive oil", "basil"}},
	{"salad", []string{"lettuce", "tomato", "cucumber", "olive oil"}},
	{"sandwich", []string{"bread", "butter", "cheese", "lettuce"}},
	{"omelette", []string{"eggs", "butter", "salt", "milk"}},
	{"curry", []string{"onion", "tomato", "garlic", "ginger", "spices"}},
	{"soup", []string{"onion", "garlic", "carrot", "celery", "broth"}},
	{"cake", []string{"flour", "sugar", "butter", "eggs", "milk"}},
	{"smoothie", []string{"banana", "milk", "honey"}},
}

// HeuristicStrategy 靜態啟發式策略
// 策略鏈的終端備援：永不回傳錯誤，查無時回傳空清單
type HeuristicStrategy struct{}

// NewHeuristicStrategy 創建啟發式策略
func NewHeuristicStrategy() *HeuristicStrategy {
	return &HeuristicStrategy{}
}

// Name 策略標籤
func (s *HeuristicStrategy) Name() common.ExtractionStrategy {
	return common.StrategyHeuristic
}

// Extract 以子字串比對靜態菜式表
func (s *HeuristicStrategy) Extract(ctx context.Context, text string) ([]string, error) {
	lowered := strings.ToLower(text)
	for _, dish := range heuristicDishes {
		if strings.Contains(lowered, dish.name) {
			return append([]string(nil), dish.ingredients...), nil
		}
	}
	return nil, nil
}
