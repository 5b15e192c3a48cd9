package recap

import (
	"context"
	"sort"
	"sync"

	"github.com/tmc/langchaingo/llms"
)

// Provider is the boundary to a model backend. Implementations
// expose advertised model limits and generate completions.
//
// providers.LCG adapts any LangChainGo llms.Model to this
// interface; custom backends only need these two methods.
type Provider interface {
	// ModelLimit returns the advertised token budget for the
	// given model, or ok=false when the provider has no
	// metadata for it.
	ModelLimit(model string) (limit ModelLimit, ok bool)

	// GenerateContent issues a single generation call.
	GenerateContent(
		ctx context.Context,
		messages []llms.MessageContent,
		options ...llms.CallOption,
	) (*llms.ContentResponse, error)
}

// Registry maps provider names to Provider implementations.
// Safe for concurrent use; registration and lookup may happen
// while requests are in flight.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds or replaces a provider under the given name.
// Returns the registry for chaining.
func (r *Registry) Register(name string, p Provider) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = p
	return r
}

// Lookup returns the provider registered under name.
func (r *Registry) Lookup(name string) (Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[name]
	return p, ok
}

// Names returns the registered provider names in sorted order.
// Sorted so that resolution scans are deterministic.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}
