package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/okairos/llm-bridge-api/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
server:
  port: "9090"
  env: production
  api_keys:
    - sk-bridge-test

providers:
  - id: openai-main
    type: openai
    enabled: true
    api_key: "ENV:TEST_OPENAI_KEY"
    default_model: gpt-4o-mini
    defaults:
      temperature: 0.7
    models:
      - name: gpt-4o-mini
        context_length: 128000
        capabilities: [LANGUAGE, FAST]
  - id: local-ollama
    type: ollama
    enabled: true
    base_url: http://localhost:11434
`

func TestLoadConfig_ResolvesEnvIndirection(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(sampleConfig), 0o644))
	t.Chdir(dir)
	t.Setenv("TEST_OPENAI_KEY", "sk-from-env")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "production", cfg.Server.Env)
	assert.Equal(t, []string{"sk-bridge-test"}, cfg.Server.APIKeys)

	require.Len(t, cfg.Providers, 2)
	assert.Equal(t, "sk-from-env", cfg.Providers[0].APIKey)
	assert.Equal(t, "gpt-4o-mini", cfg.Providers[0].DefaultModel)
	assert.Equal(t, 0.7, *cfg.Providers[0].Defaults.Temperature)

	require.Len(t, cfg.Providers[0].Models, 1)
	assert.Equal(t, []string{"LANGUAGE", "FAST"}, cfg.Providers[0].Models[0].Capabilities)
}

func TestLoadConfig_DefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.Server.Env)
	assert.False(t, cfg.Store.Enabled)
	assert.False(t, cfg.Redis.Enabled)
	assert.Equal(t, 10.0, cfg.RateLimit.RequestsPerSecond)
}
