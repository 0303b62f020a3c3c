package perplexity

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/okairos/llm-bridge-api/internal/config"
	"github.com/okairos/llm-bridge-api/internal/httpclient"
	"github.com/okairos/llm-bridge-api/internal/llm"
	"github.com/okairos/llm-bridge-api/internal/llm/openai"
	"github.com/okairos/llm-bridge-api/internal/params"
	"github.com/okairos/llm-bridge-api/internal/registry"
	"github.com/okairos/llm-bridge-api/pkg/api"
)

func init() {
	llm.Register(string(llm.Perplexity), NewAdapter)
}

// Adapter speaks the Perplexity dialect: OpenAI-shaped chat completions with
// web-search extension fields (citations, search results, related questions,
// images). Embeddings and image generation are not offered by the API; those
// operations fail before any network call.
type Adapter struct {
	config       config.ProviderConfig
	defaults     params.Options
	client       httpclient.HTTPClient
	streamClient httpclient.HTTPClient
}

func NewAdapter(cfg config.ProviderConfig) (llm.Provider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.perplexity.ai"
	}
	return &Adapter{
		config:       cfg,
		defaults:     llm.DefaultsFromConfig(cfg),
		client:       httpclient.New(),
		streamClient: httpclient.NewStreaming(),
	}, nil
}

func (a *Adapter) Name() string {
	return a.config.ID
}

func (a *Adapter) Type() string {
	return string(llm.Perplexity)
}

func (a *Adapter) Defaults() params.Options {
	return a.defaults.Clone()
}

func (a *Adapter) headers() map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + a.config.APIKey,
	}
}

func (a *Adapter) endpoint() string {
	return strings.TrimRight(a.config.BaseURL, "/") + "/chat/completions"
}

func (a *Adapter) Chat(ctx context.Context, req *api.ChatRequest) (*api.ChatResponse, error) {
	opts := params.Merge(a.defaults, params.FromChatRequest(req))
	opts.Stream = false

	body, err := EncodeRequest(req.Messages, "", opts)
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := httpclient.SendRequest(ctx, a.client, "POST", a.endpoint(), a.headers(), body, &raw); err != nil {
		return nil, err
	}

	return openai.DecodeResponse(raw)
}

func (a *Adapter) Stream(ctx context.Context, req *api.ChatRequest) (<-chan api.StreamResult, error) {
	opts := params.Merge(a.defaults, params.FromChatRequest(req))
	opts.Stream = true

	body, err := EncodeRequest(req.Messages, "", opts)
	if err != nil {
		return nil, err
	}

	ch := make(chan api.StreamResult)

	go func() {
		defer close(ch)

		err := httpclient.StreamRequest(ctx, a.streamClient, "POST", a.endpoint(), a.headers(), body, func(line string) error {
			if !strings.HasPrefix(line, "data:") {
				return nil
			}
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if data == "" || data == "[DONE]" {
				return nil
			}

			chunk, err := openai.DecodeChunk([]byte(data))
			if err != nil {
				return err
			}
			select {
			case ch <- api.StreamResult{Response: chunk}:
			case <-ctx.Done():
				return httpclient.ClassifyTransportError(ctx.Err(), a.endpoint())
			}
			return nil
		})

		if err != nil {
			select {
			case ch <- api.StreamResult{Err: err}:
			case <-ctx.Done():
			}
		}
	}()

	return ch, nil
}

func (a *Adapter) Embeddings(ctx context.Context, req *api.EmbeddingsRequest) (*api.EmbeddingsResponse, error) {
	return nil, api.NewError(api.ErrUnsupportedOp, "perplexity does not offer an embeddings endpoint")
}

func (a *Adapter) GenerateImage(ctx context.Context, req *api.ImageRequest) (*api.ImageResponse, error) {
	return nil, api.NewError(api.ErrUnsupportedOp, "perplexity does not offer image generation")
}

func (a *Adapter) Models(ctx context.Context) ([]registry.Model, error) {
	return llm.StaticModels(a.config), nil
}
