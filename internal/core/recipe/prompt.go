package recipe

import (
	"fmt"
	"strings"

	"health-recipe-api/internal/pkg/common"
)

// 生成回應必須包含的小節，缺少任一節視為格式錯誤
var requiredSections = []string{"**Ingredients**", "**Instructions**"}

// BuildPrompt 構建食譜生成提示詞
// ingredients 應為已替換有害食材後的清單，harmful 僅作為上下文
func BuildPrompt(ingredients []string, harmful []string, condition string) string {
	conditionTitle := common.ConditionTitle(condition)

	var context string
	if len(harmful) > 0 {
		context = fmt.Sprintf("\nThe following ingredients were replaced because they are unsuitable for %s: %s.",
			conditionTitle, strings.Join(harmful, ", "))
	}

	return fmt.Sprintf(`Create a healthy recipe using these ingredients: %s.
The recipe must be suitable for someone with %s.%s

Format the response in markdown with exactly these sections:
**Health Benefits** - why this recipe works for %s
**Ingredients** - the ingredient list with approximate quantities
**Instructions** - numbered cooking steps
**Cooking Tips** - practical preparation tips
**Serving Suggestions** - how to serve the dish

Keep the whole recipe between 200 and 300 words. Do not add ingredients that are not listed.`,
		strings.Join(ingredients, ", "),
		conditionTitle,
		context,
		conditionTitle,
	)
}

// ValidateText 檢查生成回應是否包含必要小節
func ValidateText(text string) bool {
	for _, section := range requiredSections {
		if !strings.Contains(text, section) {
			return false
		}
	}
	return true
}

// FallbackText 以固定模板合成食譜
// 生成服務持續失敗時的確定性備援：同樣的輸入永遠產生同樣的文字，
// 此結果絕不寫入快取
func FallbackText(ingredients []string, condition string) string {
	conditionTitle := common.ConditionTitle(condition)

	title := "Simple Healthy Recipe"
	if len(ingredients) > 0 {
		display := ingredients
		if len(display) > 3 {
			display = display[:3]
		}
		title = fmt.Sprintf("Simple %s Recipe", common.ConditionTitle(strings.Join(display, " ")))
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**%s**\n\n", title))
	sb.WriteString("**Health Benefits**\n")
	sb.WriteString(fmt.Sprintf("This recipe uses ingredients selected to be gentle for %s. Always consult your doctor or dietitian about your individual needs.\n\n", conditionTitle))
	sb.WriteString("**Ingredients**\n")
	sb.WriteString(common.FormatIngredientList(ingredients))
	sb.WriteString("\n**Instructions**\n")
	sb.WriteString("1. Combine all ingredients in a mixing bowl\n")
	sb.WriteString("2. Mix well until thoroughly combined\n")
	sb.WriteString("3. Cook in a non-stick pan over medium heat\n")
	sb.WriteString("4. Cook until golden brown and fully cooked through\n\n")
	sb.WriteString("**Cooking Tips**\n")
	sb.WriteString("- Taste and adjust seasoning as you go\n")
	sb.WriteString("- Keep the heat moderate to avoid burning\n\n")
	sb.WriteString("**Serving Suggestions**\n")
	sb.WriteString("Serve warm with a side of fresh vegetables or a light salad.\n")
	return sb.String()
}
