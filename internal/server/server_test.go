package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okairos/llm-bridge-api/internal/config"
	"github.com/okairos/llm-bridge-api/internal/gateway"
	"github.com/okairos/llm-bridge-api/internal/llm"
	"github.com/okairos/llm-bridge-api/internal/llm/stream"
	"github.com/okairos/llm-bridge-api/internal/registry"
	"github.com/okairos/llm-bridge-api/internal/server"
	"github.com/okairos/llm-bridge-api/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubService scripts the gateway responses so edge behavior can be tested
// without providers.
type stubService struct {
	chatResp *api.ChatResponse
	chatErr  error
	chunks   []api.StreamResult
	models   []registry.Model
}

func (s *stubService) RegisterProvider(context.Context, llm.Provider, []registry.Model) error {
	return nil
}

func (s *stubService) Chat(context.Context, *api.ChatRequest) (*api.ChatResponse, error) {
	return s.chatResp, s.chatErr
}

func (s *stubService) ChatStream(ctx context.Context, req *api.ChatRequest, sink stream.Sink) (*api.ChatResponse, error) {
	ch, err := s.StreamChat(ctx, req)
	if err != nil {
		return nil, err
	}
	return stream.New(sink).Consume(ch)
}

func (s *stubService) StreamChat(context.Context, *api.ChatRequest) (<-chan api.StreamResult, error) {
	if s.chatErr != nil {
		return nil, s.chatErr
	}
	ch := make(chan api.StreamResult, len(s.chunks))
	for _, c := range s.chunks {
		ch <- c
	}
	close(ch)
	return ch, nil
}

func (s *stubService) Complete(context.Context, string, string) (*api.ChatResponse, error) {
	return s.chatResp, s.chatErr
}

func (s *stubService) ChatWithSession(context.Context, *api.ChatSession, string) (*api.ChatResponse, error) {
	return s.chatResp, s.chatErr
}

func (s *stubService) Summarize(context.Context, string, string) (*api.ChatResponse, error) {
	return s.chatResp, s.chatErr
}

func (s *stubService) Search(context.Context, *api.SearchRequest) (*api.ChatResponse, error) {
	return s.chatResp, s.chatErr
}

func (s *stubService) Embeddings(context.Context, *api.EmbeddingsRequest) (*api.EmbeddingsResponse, error) {
	return nil, s.chatErr
}

func (s *stubService) GenerateImage(context.Context, *api.ImageRequest) (*api.ImageResponse, error) {
	return nil, s.chatErr
}

func (s *stubService) Resolve(...registry.Capability) (registry.Model, bool) {
	return registry.Model{}, false
}

func (s *stubService) ListModels(context.Context) []registry.Model {
	return s.models
}

var _ gateway.Service = (*stubService)(nil)

func newTestServer(svc gateway.Service, apiKeys ...string) *server.Server {
	cfg := &config.Config{}
	cfg.Server.Port = "0"
	cfg.Server.APIKeys = apiKeys
	return server.New(cfg, zap.NewNop(), svc, nil)
}

// closeNotifyRecorder implements http.CloseNotifier, which gin's Stream
// helper requires of the underlying ResponseWriter and which
// httptest.ResponseRecorder alone does not provide.
type closeNotifyRecorder struct {
	*httptest.ResponseRecorder
	closed chan bool
}

func newCloseNotifyRecorder() *closeNotifyRecorder {
	return &closeNotifyRecorder{httptest.NewRecorder(), make(chan bool, 1)}
}

func (r *closeNotifyRecorder) CloseNotify() <-chan bool { return r.closed }

func completion(text string) *api.ChatResponse {
	return &api.ChatResponse{
		ID:    "chatcmpl-1",
		Model: "gpt-4o",
		Choices: []api.Choice{{
			Message:      &api.ChatMessage{Role: "assistant", Content: api.Content{Text: text}},
			FinishReason: "stop",
		}},
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(&stubService{})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestChatCompletion_OK(t *testing.T) {
	srv := newTestServer(&stubService{chatResp: completion("hello there")})

	body := `{"model":"gpt-4o","messages":[{"role":"user","content":"hi"}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hello there")
}

func TestChatCompletion_ValidationProblem(t *testing.T) {
	srv := newTestServer(&stubService{})

	// messages missing entirely
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(`{"model":"gpt-4o"}`))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Validation Error")
	assert.Contains(t, rec.Body.String(), "messages")
}

func TestChatCompletion_ProviderErrorRendersProblem(t *testing.T) {
	srv := newTestServer(&stubService{
		chatErr: api.StatusError(api.ErrRateLimit, 429, "quota exhausted"),
	})

	body := `{"model":"gpt-4o","messages":[{"role":"user","content":"hi"}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "Rate Limit Exceeded")
}

func TestChatCompletion_StreamSSE(t *testing.T) {
	srv := newTestServer(&stubService{
		chunks: []api.StreamResult{
			{Response: &api.ChatResponse{Choices: []api.Choice{{Delta: &api.ChatMessage{Content: api.Content{Text: "Hel"}}}}}},
			{Response: &api.ChatResponse{Choices: []api.Choice{{Delta: &api.ChatMessage{Content: api.Content{Text: "lo"}}}}}},
		},
	})

	body := `{"model":"gpt-4o","stream":true,"messages":[{"role":"user","content":"hi"}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := newCloseNotifyRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	payload := rec.Body.String()
	assert.Contains(t, payload, `"Hel"`)
	assert.Contains(t, payload, `"lo"`)
	assert.Contains(t, payload, "data: [DONE]")

	// deltas arrive in order
	assert.Less(t, strings.Index(payload, `"Hel"`), strings.Index(payload, `"lo"`))
}

func TestChatCompletion_StreamRoutingErrorIsProblem(t *testing.T) {
	srv := newTestServer(&stubService{
		chatErr: api.NewError(api.ErrInvalidRequest, "no provider configured for model 'ghost'"),
	})

	body := `{"model":"ghost","stream":true,"messages":[{"role":"user","content":"hi"}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEqual(t, "text/event-stream", rec.Header().Get("Content-Type"))
}

func TestAuth_RejectsMissingAndWrongKey(t *testing.T) {
	srv := newTestServer(&stubService{models: nil}, "sk-valid")

	req := httptest.NewRequest(http.MethodGet, "/v1/models", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/models", nil)
	req.Header.Set("Authorization", "Bearer sk-wrong")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/models", nil)
	req.Header.Set("Authorization", "Bearer sk-valid")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListModels_FiltersByCapability(t *testing.T) {
	srv := newTestServer(&stubService{models: []registry.Model{
		{Name: "gpt-4o", ProviderID: "openai-main", Capabilities: []registry.Capability{registry.Language}},
		{Name: "sonar-pro", ProviderID: "pplx-main", Capabilities: []registry.Capability{registry.Language, registry.WebSearch}},
	}})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/models?capability=websearch", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sonar-pro")
	assert.NotContains(t, rec.Body.String(), "gpt-4o")
}

func TestEmbeddings_UnsupportedOpRendersProblem(t *testing.T) {
	srv := newTestServer(&stubService{
		chatErr: api.NewError(api.ErrUnsupportedOp, "model 'chat-only' does not support embeddings"),
	})

	body := `{"model":"chat-only","input":["text"]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/embeddings", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotImplemented, rec.Code)
	assert.Contains(t, rec.Body.String(), "does not support embeddings")
}
