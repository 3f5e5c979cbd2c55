package renderer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"unicode"
)

// URLResolver translates a logical module path into a browser-loadable URL.
type URLResolver interface {
	ResolvePackageURL(ctx context.Context, logicalPath string) (string, error)
}

// URLResolverFunc adapts a function to URLResolver.
type URLResolverFunc func(ctx context.Context, logicalPath string) (string, error)

// ResolvePackageURL calls f.
func (f URLResolverFunc) ResolvePackageURL(ctx context.Context, logicalPath string) (string, error) {
	return f(ctx, logicalPath)
}

// Option customises a Resolver.
type Option func(*Resolver)

// WithLogger routes resolver diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// InitOption customises a single Initialize call.
type InitOption func(*initConfig)

type initConfig struct {
	fallback *Entry
	urls     URLResolver
}

// WithFallback installs the plain-HTML adapter used for custom elements that
// no other adapter claims.
func WithFallback(entry Entry) InitOption {
	return func(cfg *initConfig) {
		cfg.fallback = &entry
	}
}

// WithURLResolver translates client and polyfill paths while building records.
// Without one, paths are used verbatim.
func WithURLResolver(resolver URLResolver) InitOption {
	return func(cfg *initConfig) {
		cfg.urls = resolver
	}
}

// Resolver owns the active registry generation and its resolution cache.
type Resolver struct {
	current atomic.Pointer[Generation]
	seq     atomic.Uint64
	logger  *slog.Logger
}

// NewResolver returns a resolver whose registry holds only the self record.
func NewResolver(options ...Option) *Resolver {
	r := &Resolver{
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	r.current.Store(r.newGeneration(&Registry{records: []Record{selfRecord()}}))
	return r
}

// Generation is an immutable registry paired with the cache built against it.
// Callers that need a consistent view across several steps hold on to one.
type Generation struct {
	id       uint64
	registry *Registry
	cache    sync.Map
	logger   *slog.Logger
}

func (r *Resolver) newGeneration(registry *Registry) *Generation {
	return &Generation{
		id:       r.seq.Add(1),
		registry: registry,
		logger:   r.logger,
	}
}

// ID increases with every successful Initialize.
func (g *Generation) ID() uint64 { return g.id }

// Registry returns the generation's registry.
func (g *Generation) Registry() *Registry { return g.registry }

// Current returns the active generation.
func (r *Resolver) Current() *Generation {
	return r.current.Load()
}

// Registry returns the active registry.
func (r *Resolver) Registry() *Registry {
	return r.Current().registry
}

// Initialize validates entries, builds a new registry with the self record in
// front, and swaps it in together with an empty cache. On error the previous
// generation stays active.
func (r *Resolver) Initialize(ctx context.Context, entries []Entry, options ...InitOption) error {
	if ctx == nil {
		return errors.New("renderer: context is required")
	}
	cfg := initConfig{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	records := make([]Record, 0, len(entries)+1)
	records = append(records, selfRecord())
	seen := map[string]struct{}{SelfName: {}}

	for i, entry := range entries {
		rec, err := buildRecord(ctx, entry, cfg.urls)
		if err != nil {
			return fmt.Errorf("renderer: initialize entry %d: %w", i, err)
		}
		if _, dup := seen[rec.Name]; dup {
			return fmt.Errorf("renderer: initialize entry %d: adapter %q already registered", i, rec.Name)
		}
		seen[rec.Name] = struct{}{}
		records = append(records, rec)
	}

	registry := &Registry{records: records}
	if cfg.fallback != nil {
		rec, err := buildRecord(ctx, *cfg.fallback, cfg.urls)
		if err != nil {
			return fmt.Errorf("renderer: initialize fallback: %w", err)
		}
		registry.fallback = &rec
	}

	gen := r.newGeneration(registry)
	r.current.Store(gen)
	r.logger.Info("renderer registry initialized",
		"generation", gen.id,
		"renderers", registry.Names(),
		"fallback", cfg.fallback != nil,
	)
	return nil
}

// Resolve picks the adapter for component against the active generation.
func (r *Resolver) Resolve(ctx context.Context, component any, props map[string]any, children []string) (*Record, error) {
	return r.Current().Resolve(ctx, component, props, children)
}

// Resolve returns the cached record for component or scans the registry in
// order, one check at a time, and caches the first match. A nil record with a
// nil error means nothing matched. Check errors are swallowed while any
// installed adapter completes its check; otherwise the first one is returned.
func (g *Generation) Resolve(ctx context.Context, component any, props map[string]any, children []string) (*Record, error) {
	key := ComponentKey(component)
	if key != nil {
		if cached, ok := g.cache.Load(key); ok {
			return cached.(*Record), nil
		}
	}

	var (
		firstErr  error
		completed bool
	)
	for i := range g.registry.records {
		rec := &g.registry.records[i]
		ok, err := rec.Adapter.Check(ctx, component, props, children)
		if err != nil {
			if firstErr == nil {
				firstErr = &CheckError{Adapter: rec.Name, Err: err}
			}
			g.logger.Debug("renderer check failed", "renderer", rec.Name, "error", err)
			continue
		}
		if !rec.builtin {
			completed = true
		}
		if ok {
			if key != nil {
				g.cache.Store(key, rec)
			}
			return rec, nil
		}
	}

	if firstErr != nil && !completed {
		return nil, firstErr
	}
	return nil, nil
}

func buildRecord(ctx context.Context, entry Entry, urls URLResolver) (Record, error) {
	name := strings.TrimSpace(entry.Name)
	if entry.Adapter == nil {
		return Record{}, fmt.Errorf("adapter %q: adapter is required", name)
	}
	if name == "" {
		name = strings.TrimSpace(entry.Adapter.Name())
	}
	if name == "" {
		return Record{}, errors.New("adapter name is required")
	}
	if !isPathLike(entry.Server) {
		return Record{}, fmt.Errorf("adapter %q: server entry %q is not a module path", name, entry.Server)
	}
	if entry.Client != "" && !isPathLike(entry.Client) {
		return Record{}, fmt.Errorf("adapter %q: client entry %q is not a module path", name, entry.Client)
	}

	rec := Record{
		Name:    name,
		Adapter: entry.Adapter,
		Options: entry.Options,
	}

	if entry.Client != "" {
		client, err := resolveURL(ctx, urls, entry.Client)
		if err != nil {
			return Record{}, fmt.Errorf("adapter %q: resolve client %q: %w", name, entry.Client, err)
		}
		rec.ClientSource = client
	}

	for _, polyfill := range entry.Polyfills {
		if !isPathLike(polyfill) {
			return Record{}, fmt.Errorf("adapter %q: polyfill %q is not a module path", name, polyfill)
		}
		resolved, err := resolveURL(ctx, urls, polyfill)
		if err != nil {
			return Record{}, fmt.Errorf("adapter %q: resolve polyfill %q: %w", name, polyfill, err)
		}
		rec.Polyfills = append(rec.Polyfills, resolved)
	}

	return rec, nil
}

func resolveURL(ctx context.Context, urls URLResolver, path string) (string, error) {
	if urls == nil {
		return path, nil
	}
	resolved, err := urls.ResolvePackageURL(ctx, path)
	if err != nil {
		return "", err
	}
	if !isPathLike(resolved) {
		return "", fmt.Errorf("resolved url %q is not a module path", resolved)
	}
	return resolved, nil
}

func isPathLike(value string) bool {
	if value == "" {
		return false
	}
	for _, r := range value {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return false
		}
	}
	_, err := url.Parse(value)
	return err == nil
}
