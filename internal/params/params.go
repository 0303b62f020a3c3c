package params

import "strings"

// Options is the effective parameter set for one request: the common tuning
// knobs every provider understands plus an overflow map for provider-specific
// keys (search filters, recency windows, domain lists). Overflow keys are
// carried opaquely; provider mappers decide what to do with them.
type Options struct {
	Model            string
	Temperature      *float64
	TopP             *float64
	TopK             *int
	MaxTokens        *int
	FrequencyPenalty *float64
	PresencePenalty  *float64
	Seed             *int
	Stop             []string
	Stream           bool

	Extra map[string]any
}

// Clone returns a deep enough copy that mutating the result never aliases
// the receiver.
func (o Options) Clone() Options {
	out := o
	out.Temperature = cloneFloat(o.Temperature)
	out.TopP = cloneFloat(o.TopP)
	out.FrequencyPenalty = cloneFloat(o.FrequencyPenalty)
	out.PresencePenalty = cloneFloat(o.PresencePenalty)
	out.TopK = cloneInt(o.TopK)
	out.MaxTokens = cloneInt(o.MaxTokens)
	out.Seed = cloneInt(o.Seed)
	if o.Stop != nil {
		out.Stop = append([]string(nil), o.Stop...)
	}
	if o.Extra != nil {
		out.Extra = make(map[string]any, len(o.Extra))
		for k, v := range o.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// Merge combines defaults with caller overrides into a fresh Options value.
// Every key set in overrides wins; keys only in defaults are copied through.
// Neither input is mutated, and merging is idempotent.
func Merge(defaults, overrides Options) Options {
	out := defaults.Clone()

	if overrides.Model != "" {
		out.Model = overrides.Model
	}
	if overrides.Temperature != nil {
		out.Temperature = cloneFloat(overrides.Temperature)
	}
	if overrides.TopP != nil {
		out.TopP = cloneFloat(overrides.TopP)
	}
	if overrides.TopK != nil {
		out.TopK = cloneInt(overrides.TopK)
	}
	if overrides.MaxTokens != nil {
		out.MaxTokens = cloneInt(overrides.MaxTokens)
	}
	if overrides.FrequencyPenalty != nil {
		out.FrequencyPenalty = cloneFloat(overrides.FrequencyPenalty)
	}
	if overrides.PresencePenalty != nil {
		out.PresencePenalty = cloneFloat(overrides.PresencePenalty)
	}
	if overrides.Seed != nil {
		out.Seed = cloneInt(overrides.Seed)
	}
	if overrides.Stop != nil {
		out.Stop = append([]string(nil), overrides.Stop...)
	}
	if overrides.Stream {
		out.Stream = true
	}

	if len(overrides.Extra) > 0 {
		if out.Extra == nil {
			out.Extra = make(map[string]any, len(overrides.Extra))
		}
		for k, v := range overrides.Extra {
			out.Extra[k] = v
		}
	}

	return out
}

// ResolveModelName returns the model from opts when present and non-blank,
// otherwise the configured fallback.
func ResolveModelName(opts Options, fallback string) string {
	if strings.TrimSpace(opts.Model) != "" {
		return opts.Model
	}
	return fallback
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
