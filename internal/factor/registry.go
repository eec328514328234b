package factor

import (
	"errors"
	"fmt"
	"sort"
)

// Registry errors.
var (
	ErrUnknownFactor   = errors.New("unknown factor")
	ErrDuplicateFactor = errors.New("factor already registered")
)

// Registry maps stable string identifiers to factor factories. It is
// populated once at startup and looked up by key; there is no dynamic
// discovery.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under id.
func (r *Registry) Register(id string, f Factory) error {
	if id == "" || f == nil {
		return fmt.Errorf("register factor: empty id or nil factory")
	}
	if _, exists := r.factories[id]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateFactor, id)
	}
	r.factories[id] = f
	return nil
}

// New instantiates the factor registered under id.
func (r *Registry) New(id string) (Factor, error) {
	f, ok := r.factories[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFactor, id)
	}
	return f(), nil
}

// Resolve instantiates every id in order.
func (r *Registry) Resolve(ids []string) ([]Factor, error) {
	out := make([]Factor, 0, len(ids))
	for _, id := range ids {
		f, err := r.New(id)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// IDs returns the registered identifiers, sorted.
func (r *Registry) IDs() []string {
	out := make([]string, 0, len(r.factories))
	for id := range r.factories {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
