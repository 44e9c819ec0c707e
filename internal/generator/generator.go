// Package generator defines the content-generation stage: a provider
// interface, a factory registry, the prompt template, and the character
// ceiling shared by all providers.
package generator

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"

	"github.com/postforge/postforge/internal/config"
	"github.com/postforge/postforge/internal/domain"
)

// DefaultMaxChars is the character ceiling applied when a spec does not
// set one. LinkedIn rejects posts over 3000 characters; the margin keeps
// truncation from landing exactly on the limit.
const DefaultMaxChars = 2900

// Generator produces post text for a content spec. Implementations are
// not deterministic: the same spec may yield different text across calls.
type Generator interface {
	Name() string
	Generate(ctx context.Context, spec *domain.ContentSpec) (*domain.GeneratedContent, error)
}

// Factory creates a generator from configuration. The HTTP client is
// shared so tests and callers can inject transports.
type Factory func(cfg config.GeneratorConfig, httpClient *http.Client) (Generator, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]Factory)
)

// RegisterFactory registers a provider factory under a type name.
// Registration is explicit (no init side effects); see the registration
// package for the built-in wiring.
func RegisterFactory(name string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = f
}

// IsRegistered reports whether a provider type is registered.
func IsRegistered(name string) bool {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	_, ok := factories[name]
	return ok
}

// ListProviders returns the registered provider type names, sorted.
func ListProviders() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates a generator from configuration using the registered factory.
func New(cfg config.GeneratorConfig, httpClient *http.Client) (Generator, error) {
	factoriesMu.RLock()
	f, ok := factories[cfg.Provider]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown generator provider %q (registered: %v)", cfg.Provider, ListProviders())
	}
	return f(cfg, httpClient)
}
