package openai

import (
	"encoding/json"
	"strings"

	"github.com/okairos/llm-bridge-api/internal/llm/processing"
	"github.com/okairos/llm-bridge-api/internal/params"
	"github.com/okairos/llm-bridge-api/pkg/api"
)

// EncodeRequest translates a chat history plus an optional trailing user
// query into the OpenAI chat-completions wire object. History order is
// preserved; the query is appended as the final user message when non-blank.
// Unrecognized option keys ride through opaquely unless the caller declares
// them unsupported for this endpoint.
func EncodeRequest(history []api.ChatMessage, query string, opts params.Options, unsupported map[string]struct{}) (map[string]any, error) {
	if strings.TrimSpace(opts.Model) == "" {
		return nil, api.NewError(api.ErrInvalidRequest, "model is required after parameter merge")
	}

	messages := make([]api.ChatMessage, 0, len(history)+1)
	messages = append(messages, history...)
	if strings.TrimSpace(query) != "" {
		messages = append(messages, api.ChatMessage{
			Role:    string(api.User),
			Content: api.Content{Text: query},
		})
	}

	body := map[string]any{
		"model":    opts.Model,
		"messages": messages,
	}

	if opts.Temperature != nil {
		body["temperature"] = *opts.Temperature
	}
	if opts.TopP != nil {
		body["top_p"] = *opts.TopP
	}
	if opts.TopK != nil {
		body["top_k"] = *opts.TopK
	}
	if opts.MaxTokens != nil {
		body["max_tokens"] = *opts.MaxTokens
	}
	if opts.FrequencyPenalty != nil {
		body["frequency_penalty"] = *opts.FrequencyPenalty
	}
	if opts.PresencePenalty != nil {
		body["presence_penalty"] = *opts.PresencePenalty
	}
	if opts.Seed != nil {
		body["seed"] = *opts.Seed
	}
	if len(opts.Stop) > 0 {
		body["stop"] = opts.Stop
	}
	if opts.Stream {
		body["stream"] = true
		body["stream_options"] = api.StreamOptions{IncludeUsage: true}
	}

	for k, v := range opts.Extra {
		if _, skip := unsupported[k]; skip {
			continue
		}
		if _, taken := body[k]; taken {
			continue
		}
		body[k] = v
	}

	return body, nil
}

// wireMessage carries the alternate reasoning keys different backends use.
// The first present key in the fixed order reasoning, reasoning_content,
// thinking wins.
type wireMessage struct {
	Role             string      `json:"role"`
	Content          api.Content `json:"content"`
	Reasoning        string      `json:"reasoning"`
	ReasoningContent string      `json:"reasoning_content"`
	Thinking         string      `json:"thinking"`
}

func (m *wireMessage) reasoningText() string {
	for _, v := range []string{m.Reasoning, m.ReasoningContent, m.Thinking} {
		if v != "" {
			return v
		}
	}
	return ""
}

type wireChoice struct {
	Index        int          `json:"index"`
	Message      *wireMessage `json:"message"`
	Delta        *wireMessage `json:"delta"`
	FinishReason string       `json:"finish_reason"`
}

type wireResponse struct {
	ID      string             `json:"id"`
	Object  string             `json:"object"`
	Created int64              `json:"created"`
	Model   string             `json:"model"`
	Choices []wireChoice       `json:"choices"`
	Usage   *api.ResponseUsage `json:"usage"`

	Citations        []string           `json:"citations"`
	SearchResults    []api.SearchResult `json:"search_results"`
	RelatedQuestions []string           `json:"related_questions"`
	Images           []api.SearchImage  `json:"images"`

	Error *api.ErrorResponse `json:"error"`
}

// DecodeResponse translates a synchronous wire payload into the normalized
// response. Structurally malformed payloads (missing choices, non-object
// message) fail with a parse error; a response is never partially populated.
func DecodeResponse(payload []byte) (*api.ChatResponse, error) {
	var probe struct {
		Choices *json.RawMessage `json:"choices"`
	}
	if err := json.Unmarshal(payload, &probe); err != nil {
		return nil, api.WrapError(api.ErrResponseParse, "malformed provider payload", err)
	}
	if probe.Choices == nil {
		return nil, api.NewError(api.ErrResponseParse, "provider payload missing choices")
	}

	var wire wireResponse
	if err := json.Unmarshal(payload, &wire); err != nil {
		return nil, api.WrapError(api.ErrResponseParse, "malformed provider payload", err)
	}

	return normalize(&wire, false)
}

// DecodeChunk translates one SSE data payload. Chunks are lenient about an
// empty choices array (usage-only trailers) but still reject structural
// garbage.
func DecodeChunk(payload []byte) (*api.ChatResponse, error) {
	var wire wireResponse
	if err := json.Unmarshal(payload, &wire); err != nil {
		return nil, api.WrapError(api.ErrResponseParse, "malformed stream chunk", err)
	}
	return normalize(&wire, true)
}

func normalize(wire *wireResponse, chunk bool) (*api.ChatResponse, error) {
	if wire.Error != nil {
		return nil, api.NewError(api.ErrGenericProvider, wire.Error.Message)
	}

	resp := &api.ChatResponse{
		ID:      wire.ID,
		Object:  wire.Object,
		Created: wire.Created,
		Model:   wire.Model,
		Usage:   wire.Usage,
	}

	// Extension fields only when the provider actually returned them.
	if len(wire.Citations) > 0 {
		resp.Citations = wire.Citations
	}
	if len(wire.SearchResults) > 0 {
		resp.SearchResults = wire.SearchResults
	}
	if len(wire.RelatedQuestions) > 0 {
		resp.RelatedQuestions = wire.RelatedQuestions
	}
	if len(wire.Images) > 0 {
		resp.Images = wire.Images
	}
	if wire.Usage != nil && wire.Usage.NumSearchQueries > 0 {
		n := wire.Usage.NumSearchQueries
		resp.NumSearchQueries = &n
	}

	for _, wc := range wire.Choices {
		choice := api.Choice{
			Index:        wc.Index,
			FinishReason: wc.FinishReason,
		}
		if wc.Message != nil {
			choice.Message = normalizeMessage(wc.Message)
		}
		if wc.Delta != nil {
			choice.Delta = normalizeMessage(wc.Delta)
		}
		if !chunk && choice.Message == nil {
			return nil, api.NewError(api.ErrResponseParse, "provider choice missing message object")
		}
		resp.Choices = append(resp.Choices, choice)
	}

	return resp, nil
}

func normalizeMessage(m *wireMessage) *api.ChatMessage {
	content := m.Content.Text
	reasoning := m.reasoningText()

	// Some backends inline reasoning into the content as <think> blocks
	// instead of a dedicated field.
	if reasoning == "" && content != "" {
		stripped, thought := processing.ExtractThinking(content)
		if thought != "" {
			content, reasoning = stripped, thought
		}
	}

	out := &api.ChatMessage{
		Role:      m.Role,
		Reasoning: reasoning,
	}
	if m.Content.Parts != nil {
		out.Content = m.Content
	} else {
		out.Content = api.Content{Text: content}
	}
	return out
}
