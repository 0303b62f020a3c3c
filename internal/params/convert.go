package params

import "github.com/okairos/llm-bridge-api/pkg/api"

// FromChatRequest lifts the caller-supplied request fields into an Options
// value suitable for merging over provider defaults. The request's pointer
// fields carry presence, so an explicit zero (temperature 0, seed 0) survives
// the merge and overrides a configured default.
func FromChatRequest(req *api.ChatRequest) Options {
	opts := Options{
		Model:            req.Model,
		Stream:           req.Stream,
		Temperature:      cloneFloat(req.Temperature),
		TopP:             cloneFloat(req.TopP),
		TopK:             cloneInt(req.TopK),
		MaxTokens:        cloneInt(req.MaxTokens),
		FrequencyPenalty: cloneFloat(req.FrequencyPenalty),
		PresencePenalty:  cloneFloat(req.PresencePenalty),
		Seed:             cloneInt(req.Seed),
	}

	if req.Stop != nil {
		opts.Stop = append([]string(nil), req.Stop.Val...)
	}
	if len(req.Extra) > 0 {
		opts.Extra = make(map[string]any, len(req.Extra))
		for k, v := range req.Extra {
			opts.Extra[k] = v
		}
	}

	return opts
}
