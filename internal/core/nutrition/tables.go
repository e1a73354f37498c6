package nutrition

import (
	"math"

	"health-recipe-api/internal/pkg/common"
)

// Nutrient 營養素定義：供應商營養素 ID、單位與每日參考攝取量
type Nutrient struct {
	Name       string
	ID         int
	Unit       string
	DailyValue float64
}

// 固定順序的營養素表，彙總輸出依此排序
var Nutrients = []Nutrient{
	{"calories", 1008, "kcal", 2000},
	{"protein", 1003, "g", 50},
	{"total_fat", 1004, "g", 65},
	{"saturated_fat", 1258, "g", 20},
	{"carbohydrates", 1005, "g", 300},
	{"fiber", 1079, "g", 25},
	{"sugar", 2000, "g", 50},
	{"sodium", 1093, "mg", 2300},
	{"potassium", 1092, "mg", 4700},
	{"calcium", 1087, "mg", 1000},
	{"iron", 1089, "mg", 18},
	{"vitamin_a", 1106, "IU", 5000},
	{"vitamin_c", 1162, "mg", 90},
	{"vitamin_d", 1114, "IU", 800},
	{"vitamin_b12", 1178, "mcg", 2.4},
	{"cholesterol", 1253, "mg", 300},
}

var nutrientsByID = func() map[int]Nutrient {
	m := make(map[int]Nutrient, len(Nutrients))
	for _, n := range Nutrients {
		m[n.ID] = n
	}
	return m
}()

var nutrientsByName = func() map[string]Nutrient {
	m := make(map[string]Nutrient, len(Nutrients))
	for _, n := range Nutrients {
		m[n.Name] = n
	}
	return m
}()

// NutrientByID 依供應商營養素 ID 查詢定義
func NutrientByID(id int) (Nutrient, bool) {
	n, ok := nutrientsByID[id]
	return n, ok
}

// NutrientByName 依名稱查詢定義
func NutrientByName(name string) (Nutrient, bool) {
	n, ok := nutrientsByName[name]
	return n, ok
}

// Threshold 病症的每份營養門檻
type Threshold struct {
	Nutrient string
	Max      float64
	Message  string
}

// 各病症的門檻表，順序固定以保證警告輸出可重現
var conditionThresholds = map[string][]Threshold{
	"diabetes": {
		{"sugar", 25, "High sugar content - consider portion control"},
		{"carbohydrates", 45, "High carb content - monitor blood glucose"},
	},
	"hypertension": {
		{"sodium", 500, "High sodium content - may affect blood pressure"},
		{"saturated_fat", 7, "Limit saturated fat for heart health"},
	},
	"heart_disease": {
		{"cholesterol", 100, "High cholesterol content - limit intake"},
		{"saturated_fat", 5, "High saturated fat - choose lean alternatives"},
		{"sodium", 400, "High sodium content - may strain the heart"},
	},
	"kidney_disease": {
		{"potassium", 200, "High potassium content - monitor kidney load"},
		{"sodium", 300, "High sodium content - limit for kidney health"},
		{"protein", 20, "High protein content - consult your dietitian"},
	},
	"obesity": {
		{"calories", 400, "High calorie content - consider smaller portions"},
		{"total_fat", 15, "High fat content - choose lighter options"},
		{"sugar", 15, "High sugar content - limit added sugars"},
	},
}

// ThresholdsFor 取得病症的門檻表，未知病症回傳空表
func ThresholdsFor(condition string) []Threshold {
	return conditionThresholds[condition]
}

// severityFor 依超標倍數分級：1.5 倍以內為 warning，超過為 danger
func severityFor(value, max float64) common.WarningSeverity {
	if value > max*1.5 {
		return common.SeverityDanger
	}
	return common.SeverityWarning
}

// round1 四捨五入到一位小數
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
