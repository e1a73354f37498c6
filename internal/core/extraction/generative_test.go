package extraction

import (
	"context"
	"errors"
	"testing"
	"time"

	"health-recipe-api/internal/core/generation"
	"health-recipe-api/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Fake Provider Implementation
// ==========================

type fakeProvider struct {
	content string
	err     error
	calls   int
	lastReq *generation.Request
}

func (p *fakeProvider) Generate(ctx context.Context, req *generation.Request) (*generation.Response, error) {
	p.calls++
	p.lastReq = req
	if p.err != nil {
		return nil, p.err
	}
	return &generation.Response{Content: p.content, Model: "test-model"}, nil
}

func (p *fakeProvider) GetModel() string {
	return "test-model"
}

func (p *fakeProvider) GetTimeout() time.Duration {
	return time.Second
}

func (p *fakeProvider) Close() error {
	return nil
}

// ==========================
// Generative Strategy Tests
// ==========================

func TestGenerativeStrategy_Extract(t *testing.T) {
	provider := &fakeProvider{content: "flour, banana, sugar"}
	strategy := NewGenerativeStrategy(provider, 150, 0.3, time.Second)

	got, err := strategy.Extract(context.Background(), "banana bread")
	require.NoError(t, err)
	assert.Equal(t, []string{"flour", "banana", "sugar"}, got)

	require.NotNil(t, provider.lastReq)
	assert.Equal(t, 150, provider.lastReq.MaxTokens)
	require.Len(t, provider.lastReq.Messages, 1)
	assert.Contains(t, provider.lastReq.Messages[0].Content, "banana bread")
	assert.Contains(t, provider.lastReq.Messages[0].Content, "comma-separated")
}

func TestGenerativeStrategy_Extract_CleansResponse(t *testing.T) {
	provider := &fakeProvider{content: "- 2 cups flour\n- 1 ripe banana\n- sugar (brown)"}
	strategy := NewGenerativeStrategy(provider, 150, 0.3, time.Second)

	got, err := strategy.Extract(context.Background(), "banana bread")
	require.NoError(t, err)
	assert.Equal(t, []string{"flour", "banana", "sugar"}, got)
}

func TestGenerativeStrategy_Extract_Failures(t *testing.T) {
	tests := []struct {
		name     string
		provider *fakeProvider
		errMsg   string
	}{
		{
			name:     "provider error",
			provider: &fakeProvider{err: errors.New("connection refused")},
			errMsg:   "generation request failed",
		},
		{
			name:     "empty response",
			provider: &fakeProvider{content: ""},
			errMsg:   "empty generation response",
		},
		{
			name:     "nothing parseable",
			provider: &fakeProvider{content: ", , ,"},
			errMsg:   "no ingredients parsed",
		},
		{
			name:     "prose instead of a list",
			provider: &fakeProvider{content: "I am not sure about this recipe. It could contain many different things depending on the region."},
			errMsg:   "sanity check",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			strategy := NewGenerativeStrategy(tt.provider, 150, 0.3, time.Second)

			_, err := strategy.Extract(context.Background(), "mystery dish")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestGenerativeStrategy_Extract_NilProvider(t *testing.T) {
	strategy := NewGenerativeStrategy(nil, 150, 0.3, time.Second)

	_, err := strategy.Extract(context.Background(), "banana bread")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestGenerativeStrategy_Name(t *testing.T) {
	strategy := NewGenerativeStrategy(&fakeProvider{}, 0, 0, 0)
	assert.Equal(t, common.StrategyGenerative, strategy.Name())
}
