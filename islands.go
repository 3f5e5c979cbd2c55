package islands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/goliatone/go-islands/pkg/adapters/html"
	"github.com/goliatone/go-islands/pkg/adapters/pongo"
	"github.com/goliatone/go-islands/pkg/component"
	"github.com/goliatone/go-islands/pkg/config"
	"github.com/goliatone/go-islands/pkg/hydrate"
	"github.com/goliatone/go-islands/pkg/loader"
	"github.com/goliatone/go-islands/pkg/page"
	"github.com/goliatone/go-islands/pkg/renderer"
)

// Props aliases component.Props for callers embedding components through the
// root package.
type Props = component.Props

// RenderFunc aliases component.RenderFunc.
type RenderFunc = component.RenderFunc

// Option configures a Session.
type Option func(*options)

type options struct {
	logger *slog.Logger
	loader *loader.Registry
}

// WithLogger routes session, registry and watcher diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithLoader supplies the renderer factories. The built-in html and pongo
// factories are added when missing.
func WithLoader(registry *loader.Registry) Option {
	return func(o *options) {
		if registry != nil {
			o.loader = registry
		}
	}
}

// NewLoader returns a loader registry holding the built-in renderers.
func NewLoader() *loader.Registry {
	registry := loader.NewRegistry()
	registerBuiltins(registry)
	return registry
}

func registerBuiltins(registry *loader.Registry) {
	if !registry.Has(html.Name) {
		registry.MustRegister(html.Name, html.Factory)
	}
	if !registry.Has(pongo.Name) {
		registry.MustRegister(pongo.Name, pongo.Factory)
	}
}

// Session owns one build or serve run: the renderer registry generation, its
// resolution cache, and the pipeline that embeds components into pages.
type Session struct {
	id       string
	logger   *slog.Logger
	loader   *loader.Registry
	resolver *renderer.Resolver

	mu    sync.Mutex
	state atomic.Pointer[state]
}

type state struct {
	cfg      *config.Config
	gen      *pinnedGeneration
	embedder *component.Embedder
	pages    *page.Renderer
}

// pinnedGeneration binds an embedder to the registry generation installed with
// its configuration, so a reconfigure never mixes old and new settings.
type pinnedGeneration struct {
	gen *renderer.Generation
}

func (p *pinnedGeneration) Current() *renderer.Generation { return p.gen }

// NewSession creates a session whose registry holds only the self adapter.
// Call Configure to install renderers.
func NewSession(opts ...Option) (*Session, error) {
	o := options{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&o)
	}
	if o.loader == nil {
		o.loader = loader.NewRegistry()
	}
	registerBuiltins(o.loader)

	id := uuid.NewString()
	logger := o.logger.With("session", id)
	s := &Session{
		id:       id,
		logger:   logger,
		loader:   o.loader,
		resolver: renderer.NewResolver(renderer.WithLogger(logger)),
	}

	st, err := s.buildState(&config.Config{})
	if err != nil {
		return nil, err
	}
	st.gen.gen = s.resolver.Current()
	s.state.Store(st)
	return s, nil
}

// Open creates a session and applies cfg.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (*Session, error) {
	s, err := NewSession(opts...)
	if err != nil {
		return nil, err
	}
	if err := s.Configure(ctx, cfg); err != nil {
		return nil, err
	}
	return s, nil
}

// Configure loads every renderer cfg names and swaps in a new registry
// generation. Any failure leaves the previous configuration in effect.
func (s *Session) Configure(ctx context.Context, cfg *config.Config) error {
	if cfg == nil {
		return errors.New("islands: configuration is required")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("islands: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	loadCtx := ctx
	if ctx != nil && cfg.Dir != "" {
		loadCtx = loader.WithBaseDir(ctx, cfg.Dir)
	}
	entries, err := s.loader.LoadAll(loadCtx, cfg.Renderers)
	if err != nil {
		return fmt.Errorf("islands: %w", err)
	}

	initOpts := []renderer.InitOption{
		renderer.WithURLResolver(config.NewPackageResolver(cfg.Packages)),
	}
	if cfg.Fallback != nil {
		fallback, err := s.loader.Load(loadCtx, *cfg.Fallback)
		if err != nil {
			return fmt.Errorf("islands: fallback: %w", err)
		}
		initOpts = append(initOpts, renderer.WithFallback(fallback))
	}

	st, err := s.buildState(cfg)
	if err != nil {
		return err
	}
	if err := s.resolver.Initialize(ctx, entries, initOpts...); err != nil {
		return fmt.Errorf("islands: %w", err)
	}
	// s.mu keeps other Configure calls from swapping in between.
	st.gen.gen = s.resolver.Current()
	s.state.Store(st)
	return nil
}

func (s *Session) buildState(cfg *config.Config) (*state, error) {
	scripts, err := hydrate.New(hydrate.WithSetupPrefix(cfg.Hydrate.SetupPrefix))
	if err != nil {
		return nil, fmt.Errorf("islands: %w", err)
	}
	gen := &pinnedGeneration{}
	embedder, err := component.New(gen, scripts, component.WithLogger(s.logger))
	if err != nil {
		return nil, fmt.Errorf("islands: %w", err)
	}
	pages, err := page.NewRenderer(embedder,
		page.WithConcurrency(cfg.Concurrency),
		page.WithLogger(s.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("islands: %w", err)
	}
	return &state{cfg: cfg, gen: gen, embedder: embedder, pages: pages}, nil
}

// Watch reconfigures the session whenever the file at path changes. It
// blocks until ctx is done.
func (s *Session) Watch(ctx context.Context, path string) error {
	return config.Watch(ctx, path, s.Configure, config.WithWatchLogger(s.logger))
}

// Embed validates component and returns its per-occurrence render function.
func (s *Session) Embed(c any, props Props) (RenderFunc, error) {
	return s.state.Load().embedder.Embed(c, props)
}

// RenderBlocks renders blocks in order with the configured concurrency.
func (s *Session) RenderBlocks(ctx context.Context, blocks []page.Block) (string, error) {
	return s.state.Load().pages.Render(ctx, blocks)
}

// RenderPage renders a full page document.
func (s *Session) RenderPage(ctx context.Context, doc *page.Document) (string, error) {
	return s.state.Load().pages.RenderDocument(ctx, doc)
}

// ID identifies the session in logs.
func (s *Session) ID() string { return s.id }

// Config returns the configuration currently in effect.
func (s *Session) Config() *config.Config { return s.state.Load().cfg }

// Resolver exposes the session's registry and resolution cache.
func (s *Session) Resolver() *renderer.Resolver { return s.resolver }

// Loader exposes the renderer factories.
func (s *Session) Loader() *loader.Registry { return s.loader }
