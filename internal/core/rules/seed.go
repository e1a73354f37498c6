package rules

import (
	"health-recipe-api/internal/pkg/common"
)

// SeedRules 內建食材規則
// 名稱一律為正規化後的形式
func SeedRules() []common.IngredientRule {
	return []common.IngredientRule{
		{Name: "sugar", HarmfulFor: []string{"diabetes", "obesity"}, Alternative: "stevia", Category: "sweetener"},
		{Name: "salt", HarmfulFor: []string{"hypertension", "heart_disease"}, Alternative: "low-sodium salt", Category: "seasoning"},
		{Name: "flour", HarmfulFor: []string{"diabetes", "celiac", "gluten_intolerance"}, Alternative: "almond flour", Category: "baking"},
		{Name: "butter", HarmfulFor: []string{"hypertension", "cholesterol", "heart_disease"}, Alternative: "olive oil", Category: "fat"},
		{Name: "milk", HarmfulFor: []string{"lactose_intolerance"}, Alternative: "almond milk", Category: "dairy"},
		{Name: "eggs", HarmfulFor: []string{"egg_allergy"}, Alternative: "flaxseed meal", Category: "protein"},
		{Name: "peanuts", HarmfulFor: []string{"peanut_allergy"}, Alternative: "sunflower seeds", Category: "nuts"},
		{Name: "soy", HarmfulFor: []string{"soy_allergy"}, Alternative: "coconut aminos", Category: "protein"},
		{Name: "wheat", HarmfulFor: []string{"celiac", "gluten_intolerance"}, Alternative: "quinoa", Category: "grain"},
		{Name: "corn", HarmfulFor: []string{"corn_allergy"}, Alternative: "rice", Category: "grain"},
	}
}

// SeedRuleNames 種子規則名稱集合（正規化器的已知鍵）
func SeedRuleNames() map[string]struct{} {
	seeds := SeedRules()
	names := make(map[string]struct{}, len(seeds))
	for _, rule := range seeds {
		names[rule.Name] = struct{}{}
	}
	return names
}
