package tips

import "health-recipe-api/internal/pkg/common"

// 通用建議，生成不可用且查無病症建議時回傳
const genericAdvice = "Always consult with your healthcare provider for personalized dietary advice."

// 各病症的靜態建議表
var fallbackTable = map[string]common.HealthTips{
	"diabetes": {
		General:          "Keep portions consistent and pair carbohydrates with protein or fiber to slow glucose absorption.",
		FoodsToAvoid:     []string{"sugary drinks", "white bread", "pastries", "sweetened cereals"},
		RecommendedFoods: []string{"leafy greens", "whole grains", "legumes", "nuts"},
	},
	"hypertension": {
		General:          "Season with herbs and spices instead of salt, and check labels for hidden sodium.",
		FoodsToAvoid:     []string{"processed meats", "canned soups", "salted snacks", "pickled foods"},
		RecommendedFoods: []string{"bananas", "leafy greens", "beets", "oats"},
	},
	"heart_disease": {
		General:          "Favour unsaturated fats such as olive oil and keep fried or heavily processed foods occasional.",
		FoodsToAvoid:     []string{"fried foods", "fatty cuts of meat", "full-fat dairy", "trans fats"},
		RecommendedFoods: []string{"oily fish", "olive oil", "whole grains", "berries"},
	},
	"kidney_disease": {
		General:          "Watch potassium, sodium and protein portions, and review any diet change with your care team.",
		FoodsToAvoid:     []string{"bananas", "potatoes", "processed meats", "dark colas"},
		RecommendedFoods: []string{"apples", "cauliflower", "white rice", "egg whites"},
	},
	"obesity": {
		General:          "Build meals around vegetables and lean protein, and keep energy-dense snacks out of easy reach.",
		FoodsToAvoid:     []string{"sugary drinks", "fried foods", "refined snacks", "heavy sauces"},
		RecommendedFoods: []string{"vegetables", "lean protein", "whole grains", "fruit"},
	},
}

// FallbackTips 回傳病症的靜態建議，未知病症給通用建議
func FallbackTips(condition string) *common.HealthTips {
	if entry, ok := fallbackTable[condition]; ok {
		tips := entry
		tips.Condition = condition
		tips.Fallback = true
		// 避免呼叫端改動共用切片
		tips.FoodsToAvoid = append([]string(nil), entry.FoodsToAvoid...)
		tips.RecommendedFoods = append([]string(nil), entry.RecommendedFoods...)
		return &tips
	}
	return &common.HealthTips{
		Condition: condition,
		General:   genericAdvice,
		Fallback:  true,
	}
}
