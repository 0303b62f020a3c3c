package ollama

import (
	"context"
	"fmt"
	"strings"

	"github.com/okairos/llm-bridge-api/internal/config"
	"github.com/okairos/llm-bridge-api/internal/httpclient"
	"github.com/okairos/llm-bridge-api/internal/llm"
	"github.com/okairos/llm-bridge-api/internal/llm/openai"
	"github.com/okairos/llm-bridge-api/internal/llm/processing"
	"github.com/okairos/llm-bridge-api/internal/registry"
	"github.com/okairos/llm-bridge-api/pkg/api"
)

func init() {
	llm.Register(string(llm.Ollama), NewAdapter)
}

// Adapter talks to a local Ollama daemon through its OpenAI-compatible /v1
// surface, embedding the OpenAI adapter for chat, streaming and embeddings.
// Model discovery goes through the native /api/tags and /api/show endpoints
// and feeds the registry's installed partition.
type Adapter struct {
	llm.Provider // embeds the OpenAI adapter for the wire dialect
	config       config.ProviderConfig
	client       httpclient.HTTPClient
}

func NewAdapter(cfg config.ProviderConfig) (llm.Provider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if !strings.HasSuffix(cfg.BaseURL, "/v1") {
		cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/") + "/v1"
	}

	oaAdapter, err := openai.NewAdapter(cfg)
	if err != nil {
		return nil, err
	}

	return &Adapter{
		Provider: oaAdapter,
		config:   cfg,
		client:   httpclient.New(),
	}, nil
}

func (a *Adapter) Name() string {
	return a.config.ID
}

func (a *Adapter) Type() string {
	return string(llm.Ollama)
}

func (a *Adapter) rootURL() string {
	return strings.TrimSuffix(strings.TrimRight(a.config.BaseURL, "/"), "/v1")
}

// Chat inlines remote image references before delegating: the daemon cannot
// fetch URLs itself, it only accepts data URIs.
func (a *Adapter) Chat(ctx context.Context, req *api.ChatRequest) (*api.ChatResponse, error) {
	inlined, err := inlineImages(req)
	if err != nil {
		return nil, err
	}
	return a.Provider.Chat(ctx, inlined)
}

func (a *Adapter) Stream(ctx context.Context, req *api.ChatRequest) (<-chan api.StreamResult, error) {
	inlined, err := inlineImages(req)
	if err != nil {
		return nil, err
	}
	return a.Provider.Stream(ctx, inlined)
}

func (a *Adapter) GenerateImage(ctx context.Context, req *api.ImageRequest) (*api.ImageResponse, error) {
	return nil, api.NewError(api.ErrUnsupportedOp, "ollama does not offer image generation")
}

func inlineImages(req *api.ChatRequest) (*api.ChatRequest, error) {
	touched := false
	messages := make([]api.ChatMessage, len(req.Messages))
	copy(messages, req.Messages)

	for i, msg := range messages {
		if msg.Content.Parts == nil {
			continue
		}
		parts := make([]api.ContentPart, len(msg.Content.Parts))
		copy(parts, msg.Content.Parts)
		for j, part := range parts {
			if part.ImageURL == nil || strings.HasPrefix(part.ImageURL.URL, "data:") {
				continue
			}
			img, err := processing.ProcessImageURL(part.ImageURL.URL)
			if err != nil {
				return nil, api.WrapError(api.ErrInvalidRequest, "failed to inline image "+part.ImageURL.URL, err)
			}
			parts[j].ImageURL = &api.ImageURL{
				URL: fmt.Sprintf("data:%s;base64,%s", img.MediaType, img.Data),
			}
			touched = true
		}
		messages[i].Content = api.Content{Parts: parts}
	}

	if !touched {
		return req, nil
	}
	clone := *req
	clone.Messages = messages
	return &clone, nil
}

// Models discovers what the daemon has pulled. Capability tags are inferred
// from the model family and name since Ollama has no tag metadata of its own.
func (a *Adapter) Models(ctx context.Context) ([]registry.Model, error) {
	tagsURL := a.rootURL() + "/api/tags"

	var resp struct {
		Models []struct {
			Name string `json:"name"`
			Size int64  `json:"size"`
		} `json:"models"`
	}

	if err := httpclient.SendRequest(ctx, a.client, "GET", tagsURL, nil, nil, &resp); err != nil {
		return nil, err
	}

	showURL := a.rootURL() + "/api/show"
	models := make([]registry.Model, 0, len(resp.Models))

	for _, m := range resp.Models {
		contextLength := 4096 // Default
		multimodal := false

		var showResp struct {
			Details struct {
				Families []string `json:"families"`
				Family   string   `json:"family"`
			} `json:"details"`
			ModelInfo map[string]any `json:"model_info"`
		}

		// Failures here degrade to defaults rather than breaking the list.
		reqBody := map[string]string{"name": m.Name}
		if err := httpclient.SendRequest(ctx, a.client, "POST", showURL, nil, reqBody, &showResp); err == nil {
			families := showResp.Details.Families
			if showResp.Details.Family != "" {
				families = append(families, showResp.Details.Family)
			}
			for _, f := range families {
				if f == "clip" || f == "mllama" {
					multimodal = true
					break
				}
			}
			// keys can be "llama.context_length", "context_length", etc.
			for k, v := range showResp.ModelInfo {
				if strings.Contains(k, "context_length") {
					if f, ok := v.(float64); ok {
						contextLength = int(f)
						break
					}
				}
			}
		}

		models = append(models, registry.Model{
			Name:          m.Name,
			Alias:         m.Name,
			ProviderID:    a.config.ID,
			ContextLength: contextLength,
			Capabilities:  inferCapabilities(m.Name, multimodal),
		})
	}

	return models, nil
}

func inferCapabilities(name string, multimodal bool) []registry.Capability {
	lower := strings.ToLower(name)

	if strings.Contains(lower, "embed") || strings.Contains(lower, "bge-") ||
		strings.Contains(lower, "minilm") {
		return []registry.Capability{registry.Embedding}
	}

	caps := []registry.Capability{registry.Language}
	if multimodal {
		caps = append(caps, registry.Image)
	}
	if strings.Contains(lower, "r1") || strings.Contains(lower, "qwq") ||
		strings.Contains(lower, "think") {
		caps = append(caps, registry.Reasoning)
	}
	return caps
}
