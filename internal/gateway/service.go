package gateway

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/okairos/llm-bridge-api/internal/analytics"
	"github.com/okairos/llm-bridge-api/internal/llm"
	"github.com/okairos/llm-bridge-api/internal/llm/stream"
	"github.com/okairos/llm-bridge-api/internal/registry"
	"github.com/okairos/llm-bridge-api/internal/store/cache"
	"github.com/okairos/llm-bridge-api/internal/store/model"
	"github.com/okairos/llm-bridge-api/pkg/api"
	"go.uber.org/zap"
)

const modelCacheKey = "bridge:models"

// Service is the uniform operation set across all registered providers.
// Model resolution goes through the capability registry; every operation is
// capability-gated before a single byte leaves the process.
type Service interface {
	RegisterProvider(ctx context.Context, p llm.Provider, declared []registry.Model) error

	Chat(ctx context.Context, req *api.ChatRequest) (*api.ChatResponse, error)
	// ChatStream performs a streaming exchange, forwarding deltas to sink in
	// arrival order and blocking until the stream reaches a terminal state.
	ChatStream(ctx context.Context, req *api.ChatRequest, sink stream.Sink) (*api.ChatResponse, error)
	// StreamChat exposes the raw chunk channel for SSE passthrough serving.
	StreamChat(ctx context.Context, req *api.ChatRequest) (<-chan api.StreamResult, error)

	Complete(ctx context.Context, modelName, prompt string) (*api.ChatResponse, error)
	ChatWithSession(ctx context.Context, session *api.ChatSession, query string) (*api.ChatResponse, error)
	Summarize(ctx context.Context, modelName, text string) (*api.ChatResponse, error)
	Search(ctx context.Context, req *api.SearchRequest) (*api.ChatResponse, error)
	Embeddings(ctx context.Context, req *api.EmbeddingsRequest) (*api.EmbeddingsResponse, error)
	GenerateImage(ctx context.Context, req *api.ImageRequest) (*api.ImageResponse, error)

	Resolve(caps ...registry.Capability) (registry.Model, bool)
	ListModels(ctx context.Context) []registry.Model
}

type service struct {
	logger   *zap.Logger
	ingestor analytics.Ingestor
	cache    cache.CacheService
	registry *registry.Registry

	mu        sync.RWMutex
	providers map[string]llm.Provider
}

func NewService(logger *zap.Logger, reg *registry.Registry, ingestor analytics.Ingestor, cacheSvc cache.CacheService) Service {
	return &service{
		logger:    logger,
		ingestor:  ingestor,
		cache:     cacheSvc,
		registry:  reg,
		providers: make(map[string]llm.Provider),
	}
}

// RegisterProvider wires one provider in: declared models go to the
// registered partition, discovered models to the installed one. Called
// during setup, before concurrent traffic begins.
func (s *service) RegisterProvider(ctx context.Context, p llm.Provider, declared []registry.Model) error {
	s.mu.Lock()
	s.providers[p.Name()] = p
	s.mu.Unlock()

	for _, m := range declared {
		ok, err := s.registry.Register(m)
		if err != nil {
			return err
		}
		if !ok {
			s.logger.Warn("Duplicate model registration ignored",
				zap.String("model", m.Name), zap.String("provider", p.Name()))
		}
	}

	discovered, err := p.Models(ctx)
	if err != nil {
		// Discovery failure leaves the declared models usable.
		s.logger.Warn("Model discovery failed",
			zap.String("provider", p.Name()), zap.Error(err))
		return nil
	}
	for _, m := range discovered {
		if _, err := s.registry.Install(m); err != nil {
			return err
		}
	}

	s.invalidateModelCache(ctx)
	return nil
}

// route resolves a model name to its provider and upstream alias. Names are
// looked up in the registry first; a `provider/model` form addresses a
// provider directly.
func (s *service) route(modelName string) (llm.Provider, registry.Model, error) {
	if m, ok := s.registry.ByName(modelName); ok {
		s.mu.RLock()
		p, exists := s.providers[m.ProviderID]
		s.mu.RUnlock()
		if !exists {
			return nil, registry.Model{}, api.NewError(api.ErrConfiguration,
				fmt.Sprintf("provider '%s' configured but not active", m.ProviderID))
		}
		return p, m, nil
	}

	if providerID, rest, found := strings.Cut(modelName, "/"); found {
		s.mu.RLock()
		p, exists := s.providers[providerID]
		s.mu.RUnlock()
		if exists {
			return p, registry.Model{
				Name:       rest,
				Alias:      rest,
				ProviderID: providerID,
				Capabilities: []registry.Capability{
					registry.Language,
				},
			}, nil
		}
	}

	return nil, registry.Model{}, api.NewError(api.ErrInvalidRequest,
		fmt.Sprintf("no provider configured for model '%s'", modelName))
}

func (s *service) gate(m registry.Model, cap registry.Capability, op string) error {
	if !m.Has(cap) {
		return api.NewError(api.ErrUnsupportedOp,
			fmt.Sprintf("model '%s' does not support %s (missing %s capability)", m.Name, op, cap))
	}
	return nil
}

func (s *service) Chat(ctx context.Context, req *api.ChatRequest) (*api.ChatResponse, error) {
	provider, m, err := s.route(req.Model)
	if err != nil {
		return nil, err
	}
	if err := s.gate(m, registry.Language, "chat"); err != nil {
		return nil, err
	}

	reqClone := *req
	reqClone.Model = m.UpstreamName()

	start := time.Now()
	resp, err := provider.Chat(ctx, &reqClone)
	if err != nil {
		return nil, err
	}

	s.logUsage(provider, req.Model, m.UpstreamName(), resp, time.Since(start), false)
	return resp, nil
}

// ChatStream bridges the push-based chunk stream into one blocking call: the
// provider reads the transport on a background goroutine while reassembly
// and sink delivery run here, on the caller's goroutine.
func (s *service) ChatStream(ctx context.Context, req *api.ChatRequest, sink stream.Sink) (*api.ChatResponse, error) {
	ch, err := s.StreamChat(ctx, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := stream.New(sink).Consume(ch)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	provider := s.providers[s.providerIDFor(req.Model)]
	s.mu.RUnlock()
	if provider != nil {
		s.logUsage(provider, req.Model, resp.Model, resp, time.Since(start), true)
	}
	return resp, nil
}

func (s *service) providerIDFor(modelName string) string {
	if m, ok := s.registry.ByName(modelName); ok {
		return m.ProviderID
	}
	if providerID, _, found := strings.Cut(modelName, "/"); found {
		return providerID
	}
	return ""
}

func (s *service) StreamChat(ctx context.Context, req *api.ChatRequest) (<-chan api.StreamResult, error) {
	provider, m, err := s.route(req.Model)
	if err != nil {
		s.logger.Warn("Provider routing failed for stream",
			zap.String("model", req.Model), zap.Error(err))
		return nil, err
	}
	if err := s.gate(m, registry.Language, "streaming chat"); err != nil {
		return nil, err
	}

	reqClone := *req
	reqClone.Model = m.UpstreamName()
	reqClone.Stream = true

	return provider.Stream(ctx, &reqClone)
}

func (s *service) Complete(ctx context.Context, modelName, prompt string) (*api.ChatResponse, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, api.NewError(api.ErrInvalidRequest, "completion prompt must not be blank")
	}
	return s.Chat(ctx, &api.ChatRequest{
		Model: modelName,
		Messages: []api.ChatMessage{
			{Role: string(api.User), Content: api.Content{Text: prompt}},
		},
	})
}

// ChatWithSession runs one exchange against the session's model and appends
// both sides of it on success. A failed exchange leaves the session
// untouched.
func (s *service) ChatWithSession(ctx context.Context, session *api.ChatSession, query string) (*api.ChatResponse, error) {
	if strings.TrimSpace(query) == "" {
		return nil, api.NewError(api.ErrInvalidRequest, "session query must not be blank")
	}

	userMsg := api.ChatMessage{Role: string(api.User), Content: api.Content{Text: query}}

	messages := make([]api.ChatMessage, 0, len(session.Messages)+1)
	messages = append(messages, session.History()...)
	messages = append(messages, userMsg)

	resp, err := s.Chat(ctx, &api.ChatRequest{Model: session.Model, Messages: messages})
	if err != nil {
		return nil, err
	}

	session.Append(userMsg, "")
	if len(resp.Choices) > 0 && resp.Choices[0].Message != nil {
		session.Append(*resp.Choices[0].Message, resp.ID)
	}
	return resp, nil
}

func (s *service) Summarize(ctx context.Context, modelName, text string) (*api.ChatResponse, error) {
	if strings.TrimSpace(text) == "" {
		return nil, api.NewError(api.ErrInvalidRequest, "summarize input must not be blank")
	}
	return s.Chat(ctx, &api.ChatRequest{
		Model: modelName,
		Messages: []api.ChatMessage{
			{Role: string(api.System), Content: api.Content{Text: "Summarize the following text concisely. Preserve key facts and figures."}},
			{Role: string(api.User), Content: api.Content{Text: text}},
		},
	})
}

// Search routes a query to a web-search-capable model. When the request
// names no model, the registry resolves the best match for the WEBSEARCH
// capability.
func (s *service) Search(ctx context.Context, req *api.SearchRequest) (*api.ChatResponse, error) {
	modelName := req.Model
	if modelName == "" {
		m, ok := s.registry.Resolve(registry.WebSearch)
		if !ok {
			return nil, api.NewError(api.ErrUnsupportedOp, "no registered model supports web search")
		}
		modelName = m.Name
	}

	provider, m, err := s.route(modelName)
	if err != nil {
		return nil, err
	}
	if err := s.gate(m, registry.WebSearch, "web search"); err != nil {
		return nil, err
	}

	chatReq := &api.ChatRequest{
		Model: m.UpstreamName(),
		Messages: []api.ChatMessage{
			{Role: string(api.User), Content: api.Content{Text: req.Query}},
		},
		Extra: req.Filters,
	}

	start := time.Now()
	resp, err := provider.Chat(ctx, chatReq)
	if err != nil {
		return nil, err
	}
	s.logUsage(provider, modelName, m.UpstreamName(), resp, time.Since(start), false)
	return resp, nil
}

func (s *service) Embeddings(ctx context.Context, req *api.EmbeddingsRequest) (*api.EmbeddingsResponse, error) {
	provider, m, err := s.route(req.Model)
	if err != nil {
		return nil, err
	}
	if err := s.gate(m, registry.Embedding, "embeddings"); err != nil {
		return nil, err
	}

	reqClone := *req
	reqClone.Model = m.UpstreamName()
	return provider.Embeddings(ctx, &reqClone)
}

func (s *service) GenerateImage(ctx context.Context, req *api.ImageRequest) (*api.ImageResponse, error) {
	provider, m, err := s.route(req.Model)
	if err != nil {
		return nil, err
	}
	if err := s.gate(m, registry.Image, "image generation"); err != nil {
		return nil, err
	}

	reqClone := *req
	reqClone.Model = m.UpstreamName()
	return provider.GenerateImage(ctx, &reqClone)
}

func (s *service) Resolve(caps ...registry.Capability) (registry.Model, bool) {
	return s.registry.Resolve(caps...)
}

func (s *service) ListModels(ctx context.Context) []registry.Model {
	if s.cache != nil {
		var cached []registry.Model
		if err := s.cache.Get(ctx, modelCacheKey, &cached); err == nil && len(cached) > 0 {
			return cached
		}
	}

	models := s.registry.All()

	if s.cache != nil {
		if err := s.cache.Set(ctx, modelCacheKey, models, 5*time.Minute); err != nil {
			s.logger.Debug("Model cache write failed", zap.Error(err))
		}
	}
	return models
}

func (s *service) invalidateModelCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, modelCacheKey); err != nil {
		s.logger.Debug("Model cache invalidation failed", zap.Error(err))
	}
}

func (s *service) logUsage(provider llm.Provider, modelName, upstreamName string, resp *api.ChatResponse, latency time.Duration, streamed bool) {
	if s.ingestor == nil || resp == nil {
		return
	}

	log := &model.RequestLog{
		ID:           resp.ID,
		ProviderID:   provider.Name(),
		ModelID:      modelName,
		UpstreamID:   upstreamName,
		FinishReason: resp.FinishReason(),
		LatencyMS:    latency.Milliseconds(),
		IsStreamed:   streamed,
		CreatedAt:    time.Now(),
	}
	if resp.Usage != nil {
		log.InputTokens = resp.Usage.PromptTokens
		log.OutputTokens = resp.Usage.CompletionTokens
	}
	if resp.NumSearchQueries != nil {
		log.SearchQueries = *resp.NumSearchQueries
	}

	s.ingestor.Log(log)
}
