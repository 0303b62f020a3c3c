package openai

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/okairos/llm-bridge-api/internal/config"
	"github.com/okairos/llm-bridge-api/internal/httpclient"
	"github.com/okairos/llm-bridge-api/internal/llm"
	"github.com/okairos/llm-bridge-api/internal/params"
	"github.com/okairos/llm-bridge-api/internal/registry"
	"github.com/okairos/llm-bridge-api/pkg/api"
)

func init() {
	llm.Register(string(llm.OpenAI), NewAdapter)
}

// Adapter speaks the OpenAI wire dialect. It also serves as the base for
// other OpenAI-compatible backends.
type Adapter struct {
	config       config.ProviderConfig
	defaults     params.Options
	client       httpclient.HTTPClient
	streamClient httpclient.HTTPClient
}

func NewAdapter(cfg config.ProviderConfig) (llm.Provider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
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
	return string(llm.OpenAI)
}

func (a *Adapter) Defaults() params.Options {
	return a.defaults.Clone()
}

func (a *Adapter) headers() map[string]string {
	h := map[string]string{
		"Authorization": "Bearer " + a.config.APIKey,
	}
	if org, ok := a.config.Config["organization"]; ok {
		h["OpenAI-Organization"] = org
	}
	return h
}

func (a *Adapter) endpoint(path string) string {
	return strings.TrimRight(a.config.BaseURL, "/") + path
}

func (a *Adapter) Chat(ctx context.Context, req *api.ChatRequest) (*api.ChatResponse, error) {
	opts := params.Merge(a.defaults, params.FromChatRequest(req))
	opts.Stream = false

	body, err := EncodeRequest(req.Messages, "", opts, nil)
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := httpclient.SendRequest(ctx, a.client, "POST", a.endpoint("/chat/completions"), a.headers(), body, &raw); err != nil {
		return nil, err
	}

	return DecodeResponse(raw)
}

func (a *Adapter) Stream(ctx context.Context, req *api.ChatRequest) (<-chan api.StreamResult, error) {
	opts := params.Merge(a.defaults, params.FromChatRequest(req))
	opts.Stream = true

	body, err := EncodeRequest(req.Messages, "", opts, nil)
	if err != nil {
		return nil, err
	}

	ch := make(chan api.StreamResult)

	go func() {
		defer close(ch)

		err := httpclient.StreamRequest(ctx, a.streamClient, "POST", a.endpoint("/chat/completions"), a.headers(), body, func(line string) error {
			if !strings.HasPrefix(line, "data:") {
				return nil
			}
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if data == "" || data == "[DONE]" {
				return nil
			}

			chunk, err := DecodeChunk([]byte(data))
			if err != nil {
				return err
			}
			select {
			case ch <- api.StreamResult{Response: chunk}:
			case <-ctx.Done():
				return httpclient.ClassifyTransportError(ctx.Err(), a.endpoint("/chat/completions"))
			}
			return nil
		})

		if err != nil {
			// The receiver may have walked away after a client disconnect;
			// never block on the terminal send.
			select {
			case ch <- api.StreamResult{Err: err}:
			case <-ctx.Done():
			}
		}
	}()

	return ch, nil
}

func (a *Adapter) Embeddings(ctx context.Context, req *api.EmbeddingsRequest) (*api.EmbeddingsResponse, error) {
	if strings.TrimSpace(req.Model) == "" {
		return nil, api.NewError(api.ErrInvalidRequest, "model is required for embeddings")
	}

	var resp api.EmbeddingsResponse
	if err := httpclient.SendRequest(ctx, a.client, "POST", a.endpoint("/embeddings"), a.headers(), req, &resp); err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, api.NewError(api.ErrResponseParse, "embeddings payload missing data")
	}
	return &resp, nil
}

func (a *Adapter) GenerateImage(ctx context.Context, req *api.ImageRequest) (*api.ImageResponse, error) {
	if strings.TrimSpace(req.Model) == "" {
		return nil, api.NewError(api.ErrInvalidRequest, "model is required for image generation")
	}

	var resp api.ImageResponse
	if err := httpclient.SendRequest(ctx, a.client, "POST", a.endpoint("/images/generations"), a.headers(), req, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, api.NewError(api.ErrResponseParse, "image payload missing data")
	}
	return &resp, nil
}

func (a *Adapter) Models(ctx context.Context) ([]registry.Model, error) {
	// Static configuration is the source of truth; the /models endpoint does
	// not report capability tags.
	return llm.StaticModels(a.config), nil
}

