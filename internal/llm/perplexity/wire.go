package perplexity

import (
	"github.com/okairos/llm-bridge-api/internal/llm/openai"
	"github.com/okairos/llm-bridge-api/internal/params"
	"github.com/okairos/llm-bridge-api/pkg/api"
)

// Perplexity rejects requests carrying sampling keys it does not implement,
// so those are declared unsupported for this endpoint instead of passed
// through. Search filter keys (search_domain_filter, search_recency_filter,
// return_images, return_related_questions, web_search_options, ...) ride
// through opaquely like any other extension key.
var unsupportedKeys = map[string]struct{}{
	"seed":       {},
	"logit_bias": {},
}

// EncodeRequest builds the Perplexity chat-completions wire object. The
// dialect is OpenAI-shaped, so encoding delegates to the shared mapper after
// stripping typed options the API does not accept.
func EncodeRequest(history []api.ChatMessage, query string, opts params.Options) (map[string]any, error) {
	opts = opts.Clone()
	opts.Seed = nil

	return openai.EncodeRequest(history, query, opts, unsupportedKeys)
}
