package loader

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/mitchellh/mapstructure"

	"github.com/goliatone/go-islands/pkg/renderer"
)

// Factory builds a renderer entry from the options a configuration file
// supplies for it. It plays the role of importing a renderer module.
type Factory func(ctx context.Context, options map[string]any) (renderer.Entry, error)

// Reference names a renderer module and the options to load it with.
type Reference struct {
	Name    string         `json:"name" yaml:"name"`
	Options map[string]any `json:"options,omitempty" yaml:"options,omitempty"`
}

// Registry stores renderer factories by name with duplicate safeguards.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a factory under name. Duplicate names return an error.
func (r *Registry) Register(name string, factory Factory) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("loader: renderer name is required")
	}
	if factory == nil {
		return fmt.Errorf("loader: factory for %q is required", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return fmt.Errorf("loader: renderer %q already registered", name)
	}
	r.factories[name] = factory
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(name string, factory Factory) {
	if err := r.Register(name, factory); err != nil {
		panic(err)
	}
}

// Get retrieves a factory by name.
func (r *Registry) Get(name string) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[strings.TrimSpace(name)]
	if !ok {
		return nil, fmt.Errorf("loader: renderer %q not found", name)
	}
	return factory, nil
}

// List returns the sorted factory names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether a factory is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.factories[strings.TrimSpace(name)]
	return ok
}

// Load runs the named factory. An entry without an explicit name takes the
// reference name.
func (r *Registry) Load(ctx context.Context, ref Reference) (renderer.Entry, error) {
	if ctx == nil {
		return renderer.Entry{}, errors.New("loader: context is required")
	}
	if err := ctx.Err(); err != nil {
		return renderer.Entry{}, err
	}
	factory, err := r.Get(ref.Name)
	if err != nil {
		return renderer.Entry{}, err
	}

	entry, err := factory(ctx, cloneOptions(ref.Options))
	if err != nil {
		return renderer.Entry{}, fmt.Errorf("loader: load %q: %w", ref.Name, err)
	}
	if strings.TrimSpace(entry.Name) == "" {
		entry.Name = strings.TrimSpace(ref.Name)
	}
	if entry.Options == nil && len(ref.Options) > 0 {
		entry.Options = cloneOptions(ref.Options)
	}
	return entry, nil
}

// LoadAll loads refs in order and stops at the first failure.
func (r *Registry) LoadAll(ctx context.Context, refs []Reference) ([]renderer.Entry, error) {
	entries := make([]renderer.Entry, 0, len(refs))
	for _, ref := range refs {
		entry, err := r.Load(ctx, ref)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Decode maps loose option values onto out using json tags. Unknown keys are
// rejected so typos in configuration surface early.
func Decode(input map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
	})
	if err != nil {
		return fmt.Errorf("loader: options decoder: %w", err)
	}
	if err := decoder.Decode(input); err != nil {
		return fmt.Errorf("loader: decode options: %w", err)
	}
	return nil
}

func cloneOptions(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = value
	}
	return out
}
