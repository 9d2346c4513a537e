// Package nlp turns normalized course text into the words and phrases that
// feed the word cloud. Extraction methods are looked up by name.
package nlp

import (
	"errors"
	"fmt"
	"sort"
)

// Method names understood by the default registry.
const (
	MethodSimple     = "simple"
	MethodEntities   = "use_entities"
	MethodKeyphrases = "keyphrases"
)

// ErrUnknownMethod is returned for an extraction method nobody registered.
var ErrUnknownMethod = errors.New("unrecognised extraction method")

// Extractor produces the list of words or phrases found in text. The same
// word may appear several times; callers count occurrences.
type Extractor interface {
	Name() string
	Extract(text string) []string
}

// ExtractorFactory creates an extractor from configuration parameters.
type ExtractorFactory func(params map[string]any) (Extractor, error)

// Registry manages the registration and creation of extractors
type Registry struct {
	factories map[string]ExtractorFactory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]ExtractorFactory),
	}
}

// Register adds an extractor factory to the registry
func (r *Registry) Register(name string, factory ExtractorFactory) error {
	if name == "" {
		return fmt.Errorf("extractor name cannot be empty")
	}
	if factory == nil {
		return fmt.Errorf("extractor factory cannot be nil")
	}
	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("extractor %s is already registered", name)
	}
	r.factories[name] = factory
	return nil
}

// Create instantiates an extractor by name with the given parameters
func (r *Registry) Create(name string, params map[string]any) (Extractor, error) {
	factory, exists := r.factories[name]
	if !exists {
		return nil, fmt.Errorf("%w (%s)", ErrUnknownMethod, name)
	}

	extractor, err := factory(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create extractor %s: %w", name, err)
	}

	return extractor, nil
}

// IsRegistered checks if an extractor with the given name is registered
func (r *Registry) IsRegistered(name string) bool {
	_, exists := r.factories[name]
	return exists
}

// GetRegisteredNames returns all registered method names, sorted.
func (r *Registry) GetRegisteredNames() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry holds the built-in methods.
var DefaultRegistry = NewRegistry()

func getStringSliceParam(params map[string]any, key string) []string {
	val, ok := params[key]
	if !ok {
		return nil
	}
	switch v := val.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func getFloatParam(params map[string]any, key string, defaultValue float64) float64 {
	if val, ok := params[key]; ok {
		switch v := val.(type) {
		case float64:
			return v
		case int:
			return float64(v)
		case int64:
			return float64(v)
		}
	}
	return defaultValue
}

func getIntParam(params map[string]any, key string, defaultValue int) int {
	if val, ok := params[key]; ok {
		switch v := val.(type) {
		case int:
			return v
		case int64:
			return int(v)
		case float64:
			return int(v)
		}
	}
	return defaultValue
}
