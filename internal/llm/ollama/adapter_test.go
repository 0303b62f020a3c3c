package ollama_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okairos/llm-bridge-api/internal/config"
	"github.com/okairos/llm-bridge-api/internal/llm/ollama"
	"github.com/okairos/llm-bridge-api/internal/registry"
	"github.com/okairos/llm-bridge-api/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAdapter_AppendsV1Suffix(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
	}))
	defer srv.Close()

	p, err := ollama.NewAdapter(config.ProviderConfig{
		ID: "local-ollama", Type: "ollama", BaseURL: srv.URL,
	})
	require.NoError(t, err)

	_, err = p.Chat(context.Background(), &api.ChatRequest{
		Model:    "llama3.2",
		Messages: []api.ChatMessage{{Role: "user", Content: api.Content{Text: "hi"}}},
	})

	require.NoError(t, err)
	assert.Equal(t, "/v1/chat/completions", path)
}

func TestModels_DiscoveryWithCapabilityInference(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			_, _ = w.Write([]byte(`{"models":[
				{"name":"llama3.2:latest","size":1},
				{"name":"nomic-embed-text:latest","size":1},
				{"name":"deepseek-r1:8b","size":1},
				{"name":"llava:latest","size":1}
			]}`))
		case "/api/show":
			var body map[string]string
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["name"] == "llava:latest" {
				_, _ = w.Write([]byte(`{"details":{"families":["llama","clip"]},"model_info":{"llama.context_length":8192}}`))
				return
			}
			_, _ = w.Write([]byte(`{"details":{"family":"llama"},"model_info":{"llama.context_length":131072}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	p, err := ollama.NewAdapter(config.ProviderConfig{
		ID: "local-ollama", Type: "ollama", BaseURL: srv.URL,
	})
	require.NoError(t, err)

	models, err := p.Models(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 4)

	byName := make(map[string]registry.Model, len(models))
	for _, m := range models {
		byName[m.Name] = m
	}

	assert.True(t, byName["llama3.2:latest"].Has(registry.Language))
	assert.Equal(t, 131072, byName["llama3.2:latest"].ContextLength)
	assert.Equal(t, "local-ollama", byName["llama3.2:latest"].ProviderID)

	assert.True(t, byName["nomic-embed-text:latest"].Has(registry.Embedding))
	assert.False(t, byName["nomic-embed-text:latest"].Has(registry.Language))

	assert.True(t, byName["deepseek-r1:8b"].Has(registry.Reasoning))

	assert.True(t, byName["llava:latest"].Has(registry.Image))
	assert.Equal(t, 8192, byName["llava:latest"].ContextLength)
}

func TestModels_ShowFailureDegradesToDefaults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/tags":
			_, _ = w.Write([]byte(`{"models":[{"name":"mystery:latest","size":1}]}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	p, err := ollama.NewAdapter(config.ProviderConfig{
		ID: "local-ollama", Type: "ollama", BaseURL: srv.URL,
	})
	require.NoError(t, err)

	models, err := p.Models(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 1)
	assert.Equal(t, 4096, models[0].ContextLength)
	assert.True(t, models[0].Has(registry.Language))
}

func TestGenerateImage_Unsupported(t *testing.T) {
	p, err := ollama.NewAdapter(config.ProviderConfig{ID: "local-ollama", Type: "ollama"})
	require.NoError(t, err)

	_, err = p.GenerateImage(context.Background(), &api.ImageRequest{Model: "llama3.2", Prompt: "x"})
	assert.True(t, api.IsKind(err, api.ErrUnsupportedOp))
}
