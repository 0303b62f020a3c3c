package api

import "encoding/json"

type ChatRequest struct {
	// message array is required, dive in and deep validate
	Messages []ChatMessage `json:"messages" binding:"required,min=1,dive"`

	// the model to send the request to, generally in shape `<provider>/<model>`
	Model string `json:"model" binding:"required"`

	// Enable streaming, defaults to `false` (empty)
	Stream bool `json:"stream,omitempty"`

	StreamOptions *StreamOptions `json:"stream_options,omitempty"`

	// Can be string or []string
	Stop *Stop `json:"stop,omitempty"`

	// LLM parameters. Pointers so an explicit zero (greedy temperature,
	// seed 0) is distinguishable from absent and still overrides a default.
	MaxTokens        *int     `json:"max_tokens,omitempty"`
	Temperature      *float64 `json:"temperature,omitempty"`
	TopP             *float64 `json:"top_p,omitempty"`
	TopK             *int     `json:"top_k,omitempty"`
	FrequencyPenalty *float64 `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64 `json:"presence_penalty,omitempty"`
	Seed             *int     `json:"seed,omitempty"`

	// Provider-specific keys that are passed through opaquely (search filters,
	// recency windows, domain lists, ...). Mappers forward these verbatim
	// unless they declare a key unsupported for that endpoint. Filled from any
	// body keys outside the declared fields; not re-emitted on marshal.
	Extra map[string]any `json:"-"`
}

// chatRequestFields are the declared wire keys; anything else in the body
// lands in Extra.
var chatRequestFields = map[string]struct{}{
	"messages":          {},
	"model":             {},
	"stream":            {},
	"stream_options":    {},
	"stop":              {},
	"max_tokens":        {},
	"temperature":       {},
	"top_p":             {},
	"top_k":             {},
	"frequency_penalty": {},
	"presence_penalty":  {},
	"seed":              {},
}

func (r *ChatRequest) UnmarshalJSON(data []byte) error {
	type plain ChatRequest
	var known plain
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}
	*r = ChatRequest(known)

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key, val := range raw {
		if _, ok := chatRequestFields[key]; ok {
			continue
		}
		var v any
		if err := json.Unmarshal(val, &v); err != nil {
			return err
		}
		if r.Extra == nil {
			r.Extra = make(map[string]any)
		}
		r.Extra[key] = v
	}
	return nil
}

type ChatMessage struct {
	Role    string  `json:"role" binding:"required,oneof=user assistant system"`
	Content Content `json:"content"`
	Name    string  `json:"name,omitempty"`

	// Reasoning carries model "thinking" text on assistant messages. Populated
	// from whichever alternate wire key the provider used.
	Reasoning string `json:"reasoning,omitempty"`
}

// Content handles the union type: string | []ContentPart
type Content struct {
	Text  string
	Parts []ContentPart
}

func (c *Content) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &c.Text)
	}
	if len(data) > 0 && data[0] == '[' {
		return json.Unmarshal(data, &c.Parts)
	}
	return nil
}

func (c Content) MarshalJSON() ([]byte, error) {
	if c.Parts != nil {
		return json.Marshal(c.Parts)
	}
	return json.Marshal(c.Text)
}

type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

type Stop struct {
	Val []string
}

func (s *Stop) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '[' {
		return json.Unmarshal(data, &s.Val)
	}
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	s.Val = []string{str}
	return nil
}

func (s Stop) MarshalJSON() ([]byte, error) {
	if len(s.Val) == 1 {
		return json.Marshal(s.Val[0])
	}
	return json.Marshal(s.Val)
}

type StreamOptions struct {
	IncludeUsage bool `json:"include_usage,omitempty"`
}

type EmbeddingsRequest struct {
	Model string   `json:"model" binding:"required"`
	Input []string `json:"input" binding:"required,min=1"`

	EncodingFormat string `json:"encoding_format,omitempty"`
	Dimensions     int    `json:"dimensions,omitempty"`
}

type ImageRequest struct {
	Model  string `json:"model" binding:"required"`
	Prompt string `json:"prompt" binding:"required"`
	N      int    `json:"n,omitempty"`
	Size   string `json:"size,omitempty"`
}

// SearchRequest is a web-search query routed to a search-capable provider.
// Filters are provider-specific and passed through opaquely.
type SearchRequest struct {
	Model   string         `json:"model,omitempty"`
	Query   string         `json:"query" binding:"required"`
	Filters map[string]any `json:"filters,omitempty"`
}

type Role string

const (
	User      Role = "user"
	Assistant Role = "assistant"
	System    Role = "system"
	Anonymous Role = "anonymous"
	SystemApp Role = "internal"
)
