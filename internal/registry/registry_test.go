package registry_test

import (
	"testing"

	"github.com/okairos/llm-bridge-api/internal/registry"
	"github.com/okairos/llm-bridge-api/pkg/api"
	"github.com/stretchr/testify/assert"
)

func TestRegister_Validation(t *testing.T) {
	reg := registry.New()

	_, err := reg.Register(registry.Model{Name: "  ", Capabilities: []registry.Capability{registry.Language}})
	assert.True(t, api.IsKind(err, api.ErrConfiguration))

	_, err = reg.Register(registry.Model{Name: "no-caps"})
	assert.True(t, api.IsKind(err, api.ErrConfiguration))
}

func TestRegister_DuplicateKeepsFirst(t *testing.T) {
	reg := registry.New()

	ok, err := reg.Register(registry.Model{
		Name: "sonar", ProviderID: "perplexity",
		Capabilities: []registry.Capability{registry.Language},
	})
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = reg.Register(registry.Model{
		Name: "sonar", ProviderID: "other",
		Capabilities: []registry.Capability{registry.Language},
	})
	assert.NoError(t, err)
	assert.False(t, ok)

	m, found := reg.ByName("sonar")
	assert.True(t, found)
	assert.Equal(t, "perplexity", m.ProviderID)
}

func TestResolve_MaximumCover(t *testing.T) {
	reg := registry.New()

	_, _ = reg.Register(registry.Model{
		Name: "text-only", ProviderID: "a",
		Capabilities: []registry.Capability{registry.Language},
	})
	_, _ = reg.Register(registry.Model{
		Name: "searcher", ProviderID: "b",
		Capabilities: []registry.Capability{registry.Language, registry.WebSearch, registry.Citations},
	})

	m, ok := reg.Resolve(registry.WebSearch, registry.Citations)
	assert.True(t, ok)
	assert.Equal(t, "searcher", m.Name)
}

func TestResolve_TieKeepsFirstRegistered(t *testing.T) {
	reg := registry.New()

	_, _ = reg.Register(registry.Model{
		Name: "first", ProviderID: "a",
		Capabilities: []registry.Capability{registry.Language, registry.Fast},
	})
	_, _ = reg.Register(registry.Model{
		Name: "second", ProviderID: "b",
		Capabilities: []registry.Capability{registry.Language, registry.Fast},
	})

	m, ok := reg.Resolve(registry.Language, registry.Fast)
	assert.True(t, ok)
	assert.Equal(t, "first", m.Name)
}

func TestResolve_NoMatch(t *testing.T) {
	reg := registry.New()

	_, _ = reg.Register(registry.Model{
		Name: "chat", ProviderID: "a",
		Capabilities: []registry.Capability{registry.Language},
	})

	_, ok := reg.Resolve(registry.Image)
	assert.False(t, ok)
}

func TestInstall_RegisteredShadowsInstalled(t *testing.T) {
	reg := registry.New()

	_, _ = reg.Register(registry.Model{
		Name: "llama3", ProviderID: "declared", Alias: "llama3-declared",
		Capabilities: []registry.Capability{registry.Language},
	})
	ok, err := reg.Install(registry.Model{
		Name: "llama3", ProviderID: "discovered",
		Capabilities: []registry.Capability{registry.Language},
	})
	assert.NoError(t, err)
	assert.True(t, ok)

	m, found := reg.ByName("llama3")
	assert.True(t, found)
	assert.Equal(t, "declared", m.ProviderID)

	all := reg.All()
	assert.Len(t, all, 1)
	assert.Equal(t, "declared", all[0].ProviderID)
}

func TestAll_IncludesInstalledOnly(t *testing.T) {
	reg := registry.New()

	_, _ = reg.Register(registry.Model{
		Name: "declared", ProviderID: "a",
		Capabilities: []registry.Capability{registry.Language},
	})
	_, _ = reg.Install(registry.Model{
		Name: "discovered", ProviderID: "a",
		Capabilities: []registry.Capability{registry.Language},
	})

	all := reg.All()
	assert.Len(t, all, 2)
}

func TestUpstreamName(t *testing.T) {
	withAlias := registry.Model{Name: "fast-chat", Alias: "gpt-4o-mini"}
	assert.Equal(t, "gpt-4o-mini", withAlias.UpstreamName())

	plain := registry.Model{Name: "gpt-4o"}
	assert.Equal(t, "gpt-4o", plain.UpstreamName())
}
