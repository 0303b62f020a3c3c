package registry

import (
	"strings"
	"sync"

	"github.com/okairos/llm-bridge-api/pkg/api"
)

// Capability is a label denoting an operation class a model supports.
type Capability string

const (
	Language     Capability = "LANGUAGE"
	Embedding    Capability = "EMBEDDING"
	WebSearch    Capability = "WEBSEARCH"
	Citations    Capability = "CITATIONS"
	Reasoning    Capability = "REASONING"
	Fast         Capability = "FAST"
	DeepResearch Capability = "DEEP_RESEARCH"
	Image        Capability = "IMAGE"
)

// Model is an immutable description of one model: identity, the alias the
// provider expects on the wire, its context window and its capability tags.
type Model struct {
	Name          string
	Alias         string
	ProviderID    string
	ContextLength int
	Capabilities  []Capability
}

// UpstreamName returns the identifier to put on the wire for this model.
func (m Model) UpstreamName() string {
	if m.Alias != "" {
		return m.Alias
	}
	return m.Name
}

// Has reports whether the model carries the given capability tag.
func (m Model) Has(cap Capability) bool {
	for _, c := range m.Capabilities {
		if c == cap {
			return true
		}
	}
	return false
}

func (m Model) coverCount(caps []Capability) int {
	n := 0
	for _, c := range caps {
		if m.Has(c) {
			n++
		}
	}
	return n
}

// Registry holds known models partitioned into "registered" (user-declared)
// and "installed" (provider-reported). Registration happens during setup;
// request handling only reads, so reads take the cheap RLock path and never
// contend once traffic starts.
type Registry struct {
	mu sync.RWMutex

	registered map[string]Model
	installed  map[string]Model

	// insertion order of the registered partition, used for deterministic
	// tie-breaking in Resolve: first registered wins.
	order []string
}

func New() *Registry {
	return &Registry{
		registered: make(map[string]Model),
		installed:  make(map[string]Model),
	}
}

// Register adds a user-declared model. It returns false when a model of the
// same name is already registered; existing entries are never overwritten.
func (r *Registry) Register(m Model) (bool, error) {
	if strings.TrimSpace(m.Name) == "" {
		return false, api.NewError(api.ErrConfiguration, "model registration requires a name")
	}
	if len(m.Capabilities) == 0 {
		return false, api.NewError(api.ErrConfiguration, "model "+m.Name+" registered without capabilities")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.registered[m.Name]; exists {
		return false, nil
	}
	r.registered[m.Name] = m
	r.order = append(r.order, m.Name)
	return true, nil
}

// Install adds a provider-discovered model. Duplicate names within the
// installed partition are rejected the same way as in the registered one.
func (r *Registry) Install(m Model) (bool, error) {
	if strings.TrimSpace(m.Name) == "" {
		return false, api.NewError(api.ErrConfiguration, "installed model requires a name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.installed[m.Name]; exists {
		return false, nil
	}
	r.installed[m.Name] = m
	return true, nil
}

// ByName looks a model up by name, registered entries shadowing installed
// ones.
func (r *Registry) ByName(name string) (Model, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if m, ok := r.registered[name]; ok {
		return m, true
	}
	m, ok := r.installed[name]
	return m, ok
}

// Resolve selects the registered model whose capability set covers the
// largest number of the requested tags. Ties keep the first-registered model
// so resolution is deterministic. Returns false when no model matches any
// requested tag.
func (r *Registry) Resolve(caps ...Capability) (Model, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var best Model
	bestCount := 0

	for _, name := range r.order {
		m := r.registered[name]
		if n := m.coverCount(caps); n > bestCount {
			best = m
			bestCount = n
		}
	}

	if bestCount == 0 {
		return Model{}, false
	}
	return best, true
}

// All returns the union of both partitions, registered entries shadowing
// installed entries of the same name. Installed-only models are always
// included.
func (r *Registry) All() []Model {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Model, 0, len(r.registered)+len(r.installed))
	for _, name := range r.order {
		out = append(out, r.registered[name])
	}
	for name, m := range r.installed {
		if _, shadowed := r.registered[name]; !shadowed {
			out = append(out, m)
		}
	}
	return out
}
