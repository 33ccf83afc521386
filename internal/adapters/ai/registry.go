package ai

import (
	"fmt"
	"sort"
	"sync"
)

// ProviderRegistry stores all available AI providers.
type ProviderRegistry struct {
	providers       map[string]Provider
	defaultProvider string
	mu              sync.RWMutex
}

// NewProviderRegistry creates an empty registry.
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		providers: make(map[string]Provider),
	}
}

// Register adds a provider to the registry.
func (r *ProviderRegistry) Register(provider Provider) error {
	if provider == nil {
		return fmt.Errorf("provider is nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	name := provider.Name()
	if _, exists := r.providers[name]; exists {
		return fmt.Errorf("provider %s already registered", name)
	}

	r.providers[name] = provider
	return nil
}

// Get returns the provider by name.
func (r *ProviderRegistry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %s not found", name)
	}

	return provider, nil
}

// MustGet returns the provider by name and panics if missing.
func (r *ProviderRegistry) MustGet(name string) Provider {
	provider, err := r.Get(name)
	if err != nil {
		panic(err)
	}

	return provider
}

// SetDefault marks a registered provider as the one agents use.
func (r *ProviderRegistry) SetDefault(name string) error {
	if _, err := r.Get(name); err != nil {
		return err
	}

	r.mu.Lock()
	r.defaultProvider = name
	r.mu.Unlock()
	return nil
}

// Default returns the provider selected with SetDefault.
func (r *ProviderRegistry) Default() (Provider, error) {
	r.mu.RLock()
	name := r.defaultProvider
	r.mu.RUnlock()

	if name == "" {
		return nil, fmt.Errorf("no default provider configured")
	}
	return r.Get(name)
}

// List returns all registered providers sorted by name.
func (r *ProviderRegistry) List() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	providers := make([]Provider, 0, len(r.providers))
	for _, p := range r.providers {
		providers = append(providers, p)
	}
	sort.Slice(providers, func(i, j int) bool { return providers[i].Name() < providers[j].Name() })

	return providers
}

// Names returns the registered provider names sorted.
func (r *ProviderRegistry) Names() []string {
	providers := r.List()
	names := make([]string, len(providers))
	for i, p := range providers {
		names[i] = p.Name()
	}
	return names
}
