package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"health-recipe-api/internal/core/rules"
)

// ==========================
// Check Ingredients Tests
// ==========================

func TestCheckIngredients(t *testing.T) {
	router := newTestRouter(t, nil, &stubLookuper{})

	body := []byte(`{"ingredients":["Sugar","butter","flour","banana"],"condition":"diabetes"}`)
	w := performRequest(router, http.MethodPost, "/api/ingredients/check", body)
	assert.Equal(t, http.StatusOK, w.Code)

	var got CheckIngredientsResponse
	decodeInto(t, w, &got)

	assert.Equal(t, "diabetes", got.Condition)
	assert.Equal(t, []string{"sugar", "butter", "flour", "banana"}, got.Ingredients)
	assert.Equal(t, []string{"sugar", "flour"}, got.Harmful)
	assert.Equal(t, []string{"butter", "banana"}, got.Safe)
	assert.Equal(t, map[string]string{"sugar": "stevia", "flour": "almond flour"}, got.Replacements)
	assert.Equal(t, []string{"stevia", "butter", "almond flour", "banana"}, got.ModifiedIngredients)
}

func TestCheckIngredients_NormalizesCondition(t *testing.T) {
	router := newTestRouter(t, nil, &stubLookuper{})

	body := []byte(`{"ingredients":["salt"],"condition":"Heart Disease"}`)
	w := performRequest(router, http.MethodPost, "/api/ingredients/check", body)
	assert.Equal(t, http.StatusOK, w.Code)

	var got CheckIngredientsResponse
	decodeInto(t, w, &got)

	assert.Equal(t, "heart_disease", got.Condition)
	assert.Equal(t, []string{"salt"}, got.Harmful)
}

func TestCheckIngredients_InvalidBody(t *testing.T) {
	router := newTestRouter(t, nil, &stubLookuper{})

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"ingredients": ["sugar"`},
		{"wrong field type", `{"ingredients": "sugar", "condition": "diabetes"}`},
		{"missing condition", `{"ingredients": ["sugar"]}`},
		{"empty ingredient array", `{"ingredients": [], "condition": "diabetes"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(router, http.MethodPost, "/api/ingredients/check", []byte(tt.body))
			assert.Equal(t, http.StatusBadRequest, w.Code)

			var got map[string]string
			decodeInto(t, w, &got)
			assert.Equal(t, "Invalid request format", got["error"])
		})
	}
}

func TestCheckIngredients_BlankListRejected(t *testing.T) {
	router := newTestRouter(t, nil, &stubLookuper{})

	// 通過欄位綁定但正規化後沒有任何食材
	body := []byte(`{"ingredients":["   ","\t"],"condition":"diabetes"}`)
	w := performRequest(router, http.MethodPost, "/api/ingredients/check", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var got map[string]string
	decodeInto(t, w, &got)
	assert.Equal(t, "ingredient list is empty", got["error"])
}

// ==========================
// Extract Ingredients Tests
// ==========================

func TestExtractIngredients(t *testing.T) {
	router := newTestRouter(t, nil, &stubLookuper{})

	body := []byte(`{"text":"Chicken Curry"}`)
	w := performRequest(router, http.MethodPost, "/api/ingredients/extract", body)
	assert.Equal(t, http.StatusOK, w.Code)

	var got ExtractIngredientsResponse
	decodeInto(t, w, &got)

	assert.Equal(t, "heuristic", got.Strategy)
	assert.True(t, got.Confident)
	assert.Contains(t, got.Ingredients, "onion")
	assert.Contains(t, got.Ingredients, "garlic")
}

func TestExtractIngredients_NoMatch(t *testing.T) {
	router := newTestRouter(t, nil, &stubLookuper{})

	body := []byte(`{"text":"completely unknown dish"}`)
	w := performRequest(router, http.MethodPost, "/api/ingredients/extract", body)
	assert.Equal(t, http.StatusOK, w.Code)

	var got ExtractIngredientsResponse
	decodeInto(t, w, &got)

	// 查無結果回傳空清單而非錯誤
	assert.False(t, got.Confident)
	assert.Empty(t, got.Ingredients)
}

func TestExtractIngredients_InvalidBody(t *testing.T) {
	router := newTestRouter(t, nil, &stubLookuper{})

	w := performRequest(router, http.MethodPost, "/api/ingredients/extract", []byte(`{}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var got map[string]string
	decodeInto(t, w, &got)
	assert.Equal(t, "Invalid request format", got["error"])
}

// ==========================
// List Ingredients Tests
// ==========================

func TestListIngredients(t *testing.T) {
	router := newTestRouter(t, nil, &stubLookuper{})

	w := performRequest(router, http.MethodGet, "/api/ingredients", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var got struct {
		Ingredients []struct {
			Name string `json:"name"`
		} `json:"ingredients"`
		Count int `json:"count"`
	}
	decodeInto(t, w, &got)

	assert.Equal(t, len(rules.SeedRules()), got.Count)
	assert.Len(t, got.Ingredients, got.Count)

	names := make([]string, 0, len(got.Ingredients))
	for _, rule := range got.Ingredients {
		names = append(names, rule.Name)
	}
	assert.Contains(t, names, "sugar")
	assert.Contains(t, names, "salt")
}
