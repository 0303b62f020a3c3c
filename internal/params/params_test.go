package params_test

import (
	"testing"

	"github.com/okairos/llm-bridge-api/internal/params"
	"github.com/okairos/llm-bridge-api/pkg/api"
	"github.com/stretchr/testify/assert"
)

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func TestMerge_OverridesWin(t *testing.T) {
	defaults := params.Options{
		Model:       "default-model",
		Temperature: floatPtr(0.7),
		MaxTokens:   intPtr(1024),
		Extra:       map[string]any{"search_mode": "fast", "region": "us"},
	}
	overrides := params.Options{
		Temperature: floatPtr(0.2),
		Extra:       map[string]any{"search_mode": "deep"},
	}

	merged := params.Merge(defaults, overrides)

	assert.Equal(t, "default-model", merged.Model)
	assert.Equal(t, 0.2, *merged.Temperature)
	assert.Equal(t, 1024, *merged.MaxTokens)
	assert.Equal(t, "deep", merged.Extra["search_mode"])
	assert.Equal(t, "us", merged.Extra["region"])
}

func TestMerge_Idempotent(t *testing.T) {
	defaults := params.Options{
		Temperature: floatPtr(0.9),
		Stop:        []string{"\n"},
		Extra:       map[string]any{"k": "v"},
	}
	overrides := params.Options{
		Model:     "m",
		MaxTokens: intPtr(64),
	}

	once := params.Merge(defaults, overrides)
	twice := params.Merge(once, overrides)

	assert.Equal(t, once.Model, twice.Model)
	assert.Equal(t, *once.Temperature, *twice.Temperature)
	assert.Equal(t, *once.MaxTokens, *twice.MaxTokens)
	assert.Equal(t, once.Stop, twice.Stop)
	assert.Equal(t, once.Extra, twice.Extra)
}

func TestMerge_NoAliasing(t *testing.T) {
	defaults := params.Options{
		Temperature: floatPtr(0.5),
		Stop:        []string{"END"},
		Extra:       map[string]any{"a": 1},
	}
	overrides := params.Options{
		TopP: floatPtr(0.8),
	}

	merged := params.Merge(defaults, overrides)

	*merged.Temperature = 99
	merged.Stop[0] = "changed"
	merged.Extra["a"] = 2

	assert.Equal(t, 0.5, *defaults.Temperature)
	assert.Equal(t, "END", defaults.Stop[0])
	assert.Equal(t, 1, defaults.Extra["a"])
	assert.Equal(t, 0.8, *overrides.TopP)
}

func TestResolveModelName(t *testing.T) {
	assert.Equal(t, "explicit", params.ResolveModelName(params.Options{Model: "explicit"}, "fallback"))
	assert.Equal(t, "fallback", params.ResolveModelName(params.Options{}, "fallback"))
	assert.Equal(t, "fallback", params.ResolveModelName(params.Options{Model: "   "}, "fallback"))
}

func TestFromChatRequest(t *testing.T) {
	req := &api.ChatRequest{
		Model:       "gpt-4o",
		Temperature: floatPtr(0.3),
		MaxTokens:   intPtr(256),
		Seed:        intPtr(42),
		Stream:      true,
		Extra:       map[string]any{"logit_bias": map[string]any{"50256": -100}},
	}

	opts := params.FromChatRequest(req)

	assert.Equal(t, "gpt-4o", opts.Model)
	assert.Equal(t, 0.3, *opts.Temperature)
	assert.Equal(t, 256, *opts.MaxTokens)
	assert.Equal(t, 42, *opts.Seed)
	assert.True(t, opts.Stream)
	assert.Contains(t, opts.Extra, "logit_bias")

	// absent fields stay unset so provider defaults can fill them
	assert.Nil(t, opts.TopP)
	assert.Nil(t, opts.FrequencyPenalty)

	// no aliasing back into the request
	*opts.Temperature = 99
	assert.Equal(t, 0.3, *req.Temperature)
}

func TestFromChatRequest_ExplicitZeroOverridesDefault(t *testing.T) {
	defaults := params.Options{
		Temperature: floatPtr(0.7),
		Seed:        intPtr(99),
	}
	req := &api.ChatRequest{
		Model:       "gpt-4o",
		Temperature: floatPtr(0),
		Seed:        intPtr(0),
	}

	merged := params.Merge(defaults, params.FromChatRequest(req))

	assert.Equal(t, 0.0, *merged.Temperature)
	assert.Equal(t, 0, *merged.Seed)
}
