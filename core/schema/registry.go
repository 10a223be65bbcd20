// Package schema implements chronicle's process-wide model-type registry:
// the mapping from a model type name to its attribute descriptors, used by
// Model construction and by Query.ModelSchema() lookups.
package schema

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aledsdavies/chronicle/core/attr"
	"github.com/aledsdavies/chronicle/core/errors"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// ModelSchema describes one registered model type: its attribute
// descriptors and their declaration order.
type ModelSchema struct {
	Name           string
	Attributes     map[string]*attr.Descriptor
	AttributeOrder []string
}

// Descriptor returns the named attribute's descriptor, or nil if undeclared.
func (s *ModelSchema) Descriptor(name string) (*attr.Descriptor, bool) {
	d, ok := s.Attributes[name]
	return d, ok
}

var (
	mu       sync.RWMutex
	registry = make(map[string]*ModelSchema)
)

// Register adds a model type to the process-wide registry. It is typically
// called from an init() in the package that declares the model type,
// mirroring how model types self-register once at program startup. The
// registry is never torn down during a run.
func Register(name string, descriptors ...*attr.Descriptor) (*ModelSchema, error) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := registry[name]; exists {
		return nil, errors.NewValue(fmt.Sprintf("model type %q already registered", name)).
			WithContext("name", name)
	}

	s := &ModelSchema{
		Name:       name,
		Attributes: make(map[string]*attr.Descriptor, len(descriptors)),
	}
	for _, d := range descriptors {
		s.Attributes[d.Name] = d
		s.AttributeOrder = append(s.AttributeOrder, d.Name)
	}
	registry[name] = s
	return s, nil
}

// Lookup retrieves a registered model type, failing with an unregistered-
// model error that carries up to 3 fuzzy-matched suggestions when the name
// is a near-miss of something registered.
func Lookup(name string) (*ModelSchema, error) {
	mu.RLock()
	defer mu.RUnlock()

	if s, ok := registry[name]; ok {
		return s, nil
	}

	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)

	err := errors.NewUnregisteredModel(fmt.Sprintf("unregistered model type %q", name)).
		WithContext("name", name)

	ranks := fuzzy.RankFindFold(name, names)
	sort.Sort(ranks)
	limit := len(ranks)
	if limit > 3 {
		limit = 3
	}
	if limit > 0 {
		suggestions := make([]string, limit)
		for i := 0; i < limit; i++ {
			suggestions[i] = ranks[i].Target
		}
		err = err.WithContext("suggestions", suggestions)
	}
	return nil, err
}

// MustLookup is Lookup for call sites that already guarantee registration
// (e.g. a Model constructed from a type that registered itself in init());
// an unregistered type there is a programming error, not a caller mistake.
func MustLookup(name string) *ModelSchema {
	s, err := Lookup(name)
	if err != nil {
		panic(fmt.Sprintf("schema: %v", err))
	}
	return s
}
