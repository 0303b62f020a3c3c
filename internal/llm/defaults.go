package llm

import (
	"github.com/okairos/llm-bridge-api/internal/config"
	"github.com/okairos/llm-bridge-api/internal/params"
	"github.com/okairos/llm-bridge-api/internal/registry"
)

// DefaultsFromConfig builds the provider-level parameter set declared by the
// operator.
func DefaultsFromConfig(cfg config.ProviderConfig) params.Options {
	opts := params.Options{
		Model:       cfg.DefaultModel,
		Temperature: cfg.Defaults.Temperature,
		TopP:        cfg.Defaults.TopP,
		MaxTokens:   cfg.Defaults.MaxTokens,
	}
	if len(cfg.Defaults.Extra) > 0 {
		opts.Extra = make(map[string]any, len(cfg.Defaults.Extra))
		for k, v := range cfg.Defaults.Extra {
			opts.Extra[k] = v
		}
	}
	return opts.Clone()
}

// StaticModels converts operator-declared model entries into registry models
// for providers without a discovery endpoint.
func StaticModels(cfg config.ProviderConfig) []registry.Model {
	out := make([]registry.Model, 0, len(cfg.Models))
	for _, mc := range cfg.Models {
		caps := make([]registry.Capability, 0, len(mc.Capabilities))
		for _, c := range mc.Capabilities {
			caps = append(caps, registry.Capability(c))
		}
		out = append(out, registry.Model{
			Name:          mc.Name,
			Alias:         mc.Alias,
			ProviderID:    cfg.ID,
			ContextLength: mc.ContextLength,
			Capabilities:  caps,
		})
	}
	return out
}
