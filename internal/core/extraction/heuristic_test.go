package extraction

import (
	"context"
	"testing"

	"health-recipe-api/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Heuristic Strategy Tests
// ==========================

func TestHeuristicStrategy_Extract(t *testing.T) {
	strategy := NewHeuristicStrategy()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "substring match",
			text: "Chicken Curry",
			want: []string{"onion", "tomato", "garlic", "ginger", "spices"},
		},
		{
			name: "case insensitive",
			text: "CURRY",
			want: []string{"onion", "tomato", "garlic", "ginger", "spices"},
		},
		{
			name: "embedded dish name",
			text: "grandma's vegetable soup recipe",
			want: []string{"onion", "garlic", "carrot", "celery", "broth"},
		},
		{
			name: "cake match",
			text: "chocolate cake",
			want: []string{"flour", "sugar", "butter", "eggs", "milk"},
		},
		{
			name: "no match",
			text: "sashimi",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := strategy.Extract(context.Background(), tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHeuristicStrategy_Extract_ReturnsCopy(t *testing.T) {
	strategy := NewHeuristicStrategy()

	first, err := strategy.Extract(context.Background(), "pasta")
	require.NoError(t, err)
	require.NotEmpty(t, first)

	first[0] = "mutated"

	second, err := strategy.Extract(context.Background(), "pasta")
	require.NoError(t, err)
	assert.Equal(t, "pasta", second[0])
}

func TestHeuristicStrategy_Name(t *testing.T) {
	assert.Equal(t, common.StrategyHeuristic, NewHeuristicStrategy().Name())
}
