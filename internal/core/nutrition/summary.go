package nutrition

import (
	"fmt"
	"strings"

	"health-recipe-api/internal/pkg/common"
)

var summaryGroups = []struct {
	Title     string
	Nutrients []string
}{
	{
		Title: "Macronutrients",
		Nutrients: []string{
			"calories", "protein", "total_fat", "saturated_fat",
			"carbohydrates", "fiber", "sugar", "cholesterol",
		},
	},
	{
		Title:     "Minerals",
		Nutrients: []string{"sodium", "potassium", "calcium", "iron"},
	},
	{
		Title:     "Vitamins",
		Nutrients: []string{"vitamin_a", "vitamin_c", "vitamin_d", "vitamin_b12"},
	},
}

// FormatSummary 將營養彙總結果轉為 markdown 摘要
func FormatSummary(profile *common.NutritionProfile) string {
	var sb strings.Builder

	sb.WriteString("## Nutrition Summary")
	if profile.Condition != "" {
		sb.WriteString(fmt.Sprintf(" (%s)", common.ConditionTitle(profile.Condition)))
	}
	sb.WriteString("\n\n")

	if profile.DataUnavailable {
		sb.WriteString("Nutrition data is currently unavailable for the requested ingredients.\n")
		if len(profile.Unmatched) > 0 {
			sb.WriteString("\nUnmatched ingredients: ")
			sb.WriteString(common.StringSliceToString(profile.Unmatched))
			sb.WriteString("\n")
		}
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("Per serving (%d servings total):\n\n", profile.Servings))

	for _, group := range summaryGroups {
		var lines []string
		for _, name := range group.Nutrients {
			value, ok := profile.PerServing[name]
			if !ok {
				continue
			}
			nutrient, ok := NutrientByName(name)
			if !ok {
				continue
			}
			line := fmt.Sprintf("- %s: %.1f %s", common.ConditionTitle(name), value, nutrient.Unit)
			if pct, ok := profile.DailyValuePct[name]; ok {
				line += fmt.Sprintf(" (%.1f%% DV)", pct)
			}
			lines = append(lines, line)
		}
		if len(lines) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("### %s\n", group.Title))
		sb.WriteString(strings.Join(lines, "\n"))
		sb.WriteString("\n\n")
	}

	if len(profile.Warnings) > 0 {
		sb.WriteString("### Warnings\n")
		for _, warning := range profile.Warnings {
			sb.WriteString(fmt.Sprintf("- [%s] %s\n", warning.Severity, warning.Message))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("Matched %d of %d ingredients", len(profile.Matched), len(profile.Matched)+len(profile.Unmatched)))
	if len(profile.Unmatched) > 0 {
		sb.WriteString(fmt.Sprintf(" (no data: %s)", common.StringSliceToString(profile.Unmatched)))
	}
	sb.WriteString(".\n")

	if profile.Accuracy == "estimated" {
		sb.WriteString("Values are estimated; several ingredients lack nutrition data.\n")
	}

	return sb.String()
}
