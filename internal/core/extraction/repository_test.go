package extraction

import (
	"context"
	"testing"

	"health-recipe-api/internal/pkg/common"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helpers
// ==========================

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func setupDishRepo(t *testing.T) *RedisDishRepository {
	t.Helper()
	repo := NewRedisDishRepository(setupRedis(t))
	require.NoError(t, repo.EnsureSeed(context.Background()))
	return repo
}

// ==========================
// FindByName Tests
// ==========================

func TestRedisDishRepository_FindByName(t *testing.T) {
	repo := setupDishRepo(t)

	tests := []struct {
		name string
		dish string
		want []string
	}{
		{
			name: "exact match case insensitive",
			dish: "Banana Bread",
			want: []string{"flour", "banana", "sugar", "butter", "eggs"},
		},
		{
			name: "exact match beats substring",
			dish: "bread",
			want: []string{"flour", "water", "yeast", "salt"},
		},
		{
			name: "query contains dish name",
			dish: "homemade pancakes with syrup",
			want: []string{"flour", "milk", "eggs", "butter", "salt", "sugar"},
		},
		{
			name: "dish name contains query",
			dish: "puran poli",
			want: []string{"wheat flour", "chana dal", "jaggery", "ghee", "cardamom", "turmeric", "salt"},
		},
		{
			name: "no match",
			dish: "sashimi",
			want: nil,
		},
		{
			name: "blank query",
			dish: "   ",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.FindByName(context.Background(), tt.dish)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRedisDishRepository_RedisDownFallsBackToSeeds(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	repo := NewRedisDishRepository(client)

	mr.Close()

	got, err := repo.FindByName(context.Background(), "puran poli")
	require.NoError(t, err)
	assert.Equal(t, []string{"wheat flour", "chana dal", "jaggery", "ghee", "cardamom", "turmeric", "salt"}, got)
}

// ==========================
// Seed Tests
// ==========================

func TestRedisDishRepository_EnsureSeed_RunsOnce(t *testing.T) {
	client := setupRedis(t)
	repo := NewRedisDishRepository(client)

	require.NoError(t, repo.EnsureSeed(context.Background()))
	require.NoError(t, repo.EnsureSeed(context.Background()))

	got, err := repo.FindByName(context.Background(), "banana bread")
	require.NoError(t, err)
	assert.Len(t, got, 5)
}

// ==========================
// Strategy Wrapper Tests
// ==========================

func TestRepositoryStrategy_Extract(t *testing.T) {
	strategy := NewRepositoryStrategy(setupDishRepo(t))

	assert.Equal(t, common.StrategyRepository, strategy.Name())

	got, err := strategy.Extract(context.Background(), "banana bread")
	require.NoError(t, err)
	assert.Equal(t, []string{"flour", "banana", "sugar", "butter", "eggs"}, got)
}
