package nutrition

import (
	"strings"
	"testing"

	"health-recipe-api/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// FormatSummary Tests
// ==========================

func TestFormatSummary(t *testing.T) {
	profile := &common.NutritionProfile{
		Condition: "heart_disease",
		Servings:  2,
		Totals:    map[string]float64{"calories": 480, "sodium": 900, "vitamin_c": 30},
		PerServing: map[string]float64{
			"calories":  240,
			"sodium":    450,
			"vitamin_c": 15,
		},
		DailyValuePct: map[string]float64{
			"calories":  12,
			"sodium":    19.6,
			"vitamin_c": 16.7,
		},
		Warnings: []common.WarningEvent{
			{
				Nutrient: "sodium", Value: 450, Threshold: 400,
				Message: "High sodium content - may strain the heart", Severity: common.SeverityWarning,
			},
		},
		Matched:   []string{"banana", "oats"},
		Unmatched: []string{"starfruit"},
		Accuracy:  "calculated",
	}

	summary := FormatSummary(profile)

	assert.Contains(t, summary, "## Nutrition Summary (Heart Disease)")
	assert.Contains(t, summary, "Per serving (2 servings total):")

	// 分組標題只在有資料時出現
	assert.Contains(t, summary, "### Macronutrients")
	assert.Contains(t, summary, "### Minerals")
	assert.Contains(t, summary, "### Vitamins")

	assert.Contains(t, summary, "- Calories: 240.0 kcal (12.0% DV)")
	assert.Contains(t, summary, "- Sodium: 450.0 mg (19.6% DV)")
	assert.Contains(t, summary, "- Vitamin C: 15.0 mg (16.7% DV)")

	assert.Contains(t, summary, "### Warnings")
	assert.Contains(t, summary, "- [warning] High sodium content - may strain the heart")

	assert.Contains(t, summary, "Matched 2 of 3 ingredients (no data: starfruit).")
	assert.NotContains(t, summary, "Values are estimated")
}

func TestFormatSummary_EstimatedNote(t *testing.T) {
	profile := &common.NutritionProfile{
		Condition:     "diabetes",
		Servings:      1,
		Totals:        map[string]float64{"calories": 100},
		PerServing:    map[string]float64{"calories": 100},
		DailyValuePct: map[string]float64{"calories": 5},
		Matched:       []string{"banana"},
		Unmatched:     []string{"a", "b", "c"},
		Accuracy:      "estimated",
	}

	summary := FormatSummary(profile)
	assert.Contains(t, summary, "Matched 1 of 4 ingredients")
	assert.Contains(t, summary, "Values are estimated")
}

func TestFormatSummary_DataUnavailable(t *testing.T) {
	profile := &common.NutritionProfile{
		Condition:       "diabetes",
		Servings:        1,
		Unmatched:       []string{"banana", "oats"},
		DataUnavailable: true,
		Accuracy:        "estimated",
	}

	summary := FormatSummary(profile)
	assert.Contains(t, summary, "Nutrition data is currently unavailable")
	assert.Contains(t, summary, "Unmatched ingredients: banana, oats")
	assert.NotContains(t, summary, "### Macronutrients")
	assert.NotContains(t, summary, "Per serving")
}

func TestFormatSummary_OmitsEmptyGroups(t *testing.T) {
	profile := &common.NutritionProfile{
		Condition:     "diabetes",
		Servings:      1,
		Totals:        map[string]float64{"calories": 100},
		PerServing:    map[string]float64{"calories": 100},
		DailyValuePct: map[string]float64{"calories": 5},
		Matched:       []string{"banana"},
		Accuracy:      "calculated",
	}

	summary := FormatSummary(profile)
	assert.Contains(t, summary, "### Macronutrients")
	assert.NotContains(t, summary, "### Minerals")
	assert.NotContains(t, summary, "### Vitamins")
	assert.Contains(t, summary, "Matched 1 of 1 ingredients.")
}

func TestFormatSummary_GroupOrderIsStable(t *testing.T) {
	profile := &common.NutritionProfile{
		Condition:     "diabetes",
		Servings:      1,
		Totals:        map[string]float64{"calories": 100, "sodium": 10, "vitamin_c": 5},
		PerServing:    map[string]float64{"calories": 100, "sodium": 10, "vitamin_c": 5},
		DailyValuePct: map[string]float64{},
		Matched:       []string{"banana"},
		Accuracy:      "calculated",
	}

	summary := FormatSummary(profile)
	macro := strings.Index(summary, "### Macronutrients")
	minerals := strings.Index(summary, "### Minerals")
	vitamins := strings.Index(summary, "### Vitamins")
	require.NotEqual(t, -1, macro)
	require.NotEqual(t, -1, minerals)
	require.NotEqual(t, -1, vitamins)
	assert.Less(t, macro, minerals)
	assert.Less(t, minerals, vitamins)
}
