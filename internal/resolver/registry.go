package resolver

import (
	"errors"
	"fmt"
	"sync"
)

// Input sources that may each run one resolution at a time.
const (
	SourceAddressRegistration = "address-registration"
	SourceCheckout            = "checkout"
	SourceMapSearch           = "map-search"
	SourceDefault             = "default"
)

// ErrUnknownSource is returned when a caller asks for a source that was not declared.
var ErrUnknownSource = errors.New("unknown input source")

// DefaultSources are the sources served by the HTTP API.
func DefaultSources() []string {
	return []string{SourceAddressRegistration, SourceCheckout, SourceMapSearch, SourceDefault}
}

// Registry hands out one Resolver per input source, so that independent flows can
// resolve concurrently while each of them stays single-flight.
type Registry struct {
	mu        sync.Mutex
	factory   func() *Resolver
	allowed   map[string]bool
	resolvers map[string]*Resolver
}

// NewRegistry creates a registry for the given sources. Resolvers are built lazily.
func NewRegistry(factory func() *Resolver, sources ...string) *Registry {
	allowed := make(map[string]bool, len(sources))
	for _, source := range sources {
		allowed[source] = true
	}

	return &Registry{
		factory:   factory,
		allowed:   allowed,
		resolvers: make(map[string]*Resolver, len(sources)),
	}
}

// Get returns the Resolver bound to source, creating it on first use.
func (r *Registry) Get(source string) (*Resolver, error) {
	if source == "" {
		source = SourceDefault
	}
	if !r.allowed[source] {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, source)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	res, ok := r.resolvers[source]
	if !ok {
		res = r.factory()
		r.resolvers[source] = res
	}

	return res, nil
}
