package api

type ChatResponse struct {
	ID      string         `json:"id"`
	Choices []Choice       `json:"choices"`
	Created int64          `json:"created"`
	Model   string         `json:"model"`
	Object  string         `json:"object"` // "chat.completion" or "chat.completion.chunk"
	Usage   *ResponseUsage `json:"usage,omitempty"`

	// Provider extension fields. A nil slice means the provider did not return
	// the field; it is never populated with an empty list in that case.
	Citations        []string       `json:"citations,omitempty"`
	SearchResults    []SearchResult `json:"search_results,omitempty"`
	RelatedQuestions []string       `json:"related_questions,omitempty"`
	Images           []SearchImage  `json:"images,omitempty"`
	NumSearchQueries *int           `json:"num_search_queries,omitempty"`

	Error *ErrorResponse `json:"error,omitempty"`
}

// Text returns the primary content of the first choice.
func (r *ChatResponse) Text() string {
	if len(r.Choices) == 0 {
		return ""
	}
	if m := r.Choices[0].Message; m != nil {
		return m.Content.Text
	}
	if d := r.Choices[0].Delta; d != nil {
		return d.Content.Text
	}
	return ""
}

// Reasoning returns the reasoning text of the first choice, if any.
func (r *ChatResponse) Reasoning() string {
	if len(r.Choices) == 0 {
		return ""
	}
	if m := r.Choices[0].Message; m != nil {
		return m.Reasoning
	}
	if d := r.Choices[0].Delta; d != nil {
		return d.Reasoning
	}
	return ""
}

// FinishReason returns the finish reason of the first choice.
func (r *ChatResponse) FinishReason() string {
	if len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].FinishReason
}

type Choice struct {
	Index        int            `json:"index"`
	Message      *ChatMessage   `json:"message,omitempty"` // For non-streaming
	Delta        *ChatMessage   `json:"delta,omitempty"`   // For streaming
	FinishReason string         `json:"finish_reason"`
	Error        *ErrorResponse `json:"error,omitempty"`
}

type ResponseUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`

	CompletionTokensDetails *CompletionTokensDetails `json:"completion_tokens_details,omitempty"`

	// Server tool usage reported by search-capable providers.
	NumSearchQueries int `json:"num_search_queries,omitempty"`
}

type CompletionTokensDetails struct {
	ReasoningTokens int `json:"reasoning_tokens,omitempty"`
}

type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Date    string `json:"date,omitempty"`
	Snippet string `json:"snippet,omitempty"`
}

type SearchImage struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
	Alt   string `json:"alt,omitempty"`
}

type ErrorResponse struct {
	Code     any            `json:"code,omitempty"`
	Message  string         `json:"message"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func (e *ErrorResponse) Error() string {
	return e.Message
}

type EmbeddingsResponse struct {
	Object string         `json:"object"`
	Model  string         `json:"model"`
	Data   []Embedding    `json:"data"`
	Usage  *ResponseUsage `json:"usage,omitempty"`
}

type Embedding struct {
	Object    string    `json:"object"`
	Index     int       `json:"index"`
	Embedding []float64 `json:"embedding"`
}

type ImageResponse struct {
	Created int64            `json:"created"`
	Data    []GeneratedImage `json:"data"`
}

type GeneratedImage struct {
	URL           string `json:"url,omitempty"`
	B64JSON       string `json:"b64_json,omitempty"`
	RevisedPrompt string `json:"revised_prompt,omitempty"`
}

// StreamResult is one unit of a provider stream: either a chunk or a terminal
// error, never both.
type StreamResult struct {
	Response *ChatResponse
	Err      error
}
