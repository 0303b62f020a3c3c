package llm

import (
	"context"

	"github.com/okairos/llm-bridge-api/internal/params"
	"github.com/okairos/llm-bridge-api/internal/registry"
	"github.com/okairos/llm-bridge-api/pkg/api"
)

type ProviderName string

const (
	Ollama     ProviderName = "ollama"
	OpenAI     ProviderName = "openai"
	Perplexity ProviderName = "perplexity"
)

// Provider is the uniform operation set one backend implements. Operations a
// backend cannot serve at all return an unsupported-operation error without
// touching the network.
type Provider interface {
	Name() string
	Type() string

	Chat(ctx context.Context, req *api.ChatRequest) (*api.ChatResponse, error)
	Stream(ctx context.Context, req *api.ChatRequest) (<-chan api.StreamResult, error)
	Embeddings(ctx context.Context, req *api.EmbeddingsRequest) (*api.EmbeddingsResponse, error)
	GenerateImage(ctx context.Context, req *api.ImageRequest) (*api.ImageResponse, error)

	// Models reports provider-discovered models for the registry's installed
	// partition. Providers without a discovery endpoint return their
	// statically configured models.
	Models(ctx context.Context) ([]registry.Model, error)

	// Defaults is the provider-level parameter set merged under every
	// caller-supplied option set.
	Defaults() params.Options
}
