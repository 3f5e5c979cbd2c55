// Package pongo is a framework adapter for components written as pongo2
// templates. Child markup reaches templates as the safe `children` variable,
// wrapped in fragment markers so hydrated instances can locate it again.
package pongo

import (
	"context"
	"embed"
	"fmt"
	"strings"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-islands/pkg/loader"
	"github.com/goliatone/go-islands/pkg/markup"
	"github.com/goliatone/go-islands/pkg/render/template/gotemplate"
	"github.com/goliatone/go-islands/pkg/renderer"
)

const (
	// Name identifies the adapter in registries and logs.
	Name = "pongo"
	// ServerPath is the module path recorded for the adapter's server entry.
	ServerPath = "github.com/goliatone/go-islands/pkg/adapters/pongo"
	// DefaultClient is the logical path of the browser hydration helper.
	DefaultClient = "@goliatone/islands-pongo/client.js"

	childrenKey = "children"
)

// Template is a component stored as a template file, named relative to the
// adapter's template root.
type Template struct {
	Name string
}

// Inline is a component whose template source is given directly.
type Inline string

// Option configures the adapter.
type Option func(*config)

type config struct {
	engine       *gotemplate.Engine
	templatesDir string
	extension    string
	client       string
	polyfills    []string
}

// WithEngine renders through an existing engine.
func WithEngine(engine *gotemplate.Engine) Option {
	return func(cfg *config) {
		cfg.engine = engine
	}
}

// WithTemplatesDir loads Template components from dir.
func WithTemplatesDir(dir string) Option {
	return func(cfg *config) {
		cfg.templatesDir = strings.TrimSpace(dir)
	}
}

// WithExtension sets the extension appended to Template names.
func WithExtension(ext string) Option {
	return func(cfg *config) {
		cfg.extension = ext
	}
}

// WithClient overrides DefaultClient. An empty path disables client
// hydration for the adapter.
func WithClient(path string) Option {
	return func(cfg *config) {
		cfg.client = strings.TrimSpace(path)
	}
}

// WithPolyfills declares module scripts appended after every render.
func WithPolyfills(paths ...string) Option {
	return func(cfg *config) {
		cfg.polyfills = append(cfg.polyfills, paths...)
	}
}

// Adapter renders Template, Inline and parsed *pongo2.Template components.
type Adapter struct {
	engine *gotemplate.Engine
}

var _ renderer.Adapter = (*Adapter)(nil)

var noTemplates embed.FS

// New constructs the adapter and its template engine.
func New(options ...Option) (*Adapter, error) {
	cfg := newConfig(options)
	return newAdapter(cfg)
}

func newConfig(options []Option) *config {
	cfg := &config{client: DefaultClient}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}
	return cfg
}

func newAdapter(cfg *config) (*Adapter, error) {
	if cfg.engine != nil {
		return &Adapter{engine: cfg.engine}, nil
	}

	engineOpts := []gotemplate.Option{gotemplate.WithName(Name)}
	if cfg.templatesDir != "" {
		engineOpts = append(engineOpts, gotemplate.WithBaseDir(cfg.templatesDir))
	} else {
		engineOpts = append(engineOpts, gotemplate.WithFS(noTemplates))
	}
	if cfg.extension != "" {
		engineOpts = append(engineOpts, gotemplate.WithExtension(cfg.extension))
	}
	engine, err := gotemplate.New(engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("pongo: create engine: %w", err)
	}
	return &Adapter{engine: engine}, nil
}

// Entry builds the adapter and wraps it for Resolver.Initialize.
func Entry(options ...Option) (renderer.Entry, error) {
	cfg := newConfig(options)
	adapter, err := newAdapter(cfg)
	if err != nil {
		return renderer.Entry{}, err
	}
	return renderer.Entry{
		Name:      Name,
		Server:    ServerPath,
		Client:    cfg.client,
		Polyfills: append([]string(nil), cfg.polyfills...),
		Adapter:   adapter,
	}, nil
}

func (a *Adapter) Name() string { return Name }

func (a *Adapter) Check(_ context.Context, component any, _ map[string]any, _ []string) (bool, error) {
	switch c := component.(type) {
	case Template:
		return strings.TrimSpace(c.Name) != "", nil
	case *Template:
		return c != nil && strings.TrimSpace(c.Name) != "", nil
	case Inline:
		return true, nil
	case *pongo2.Template:
		return c != nil, nil
	default:
		return false, nil
	}
}

func (a *Adapter) RenderToStaticMarkup(ctx context.Context, component any, props map[string]any, children []string) (renderer.Markup, error) {
	if err := ctx.Err(); err != nil {
		return renderer.Markup{}, err
	}
	data := make(map[string]any, len(props)+1)
	for key, value := range props {
		data[key] = value
	}
	data[childrenKey] = pongo2.AsSafeValue(markup.WrapChildren(children))

	var (
		html string
		err  error
	)
	switch c := component.(type) {
	case Template:
		html, err = a.engine.RenderTemplate(c.Name, data)
	case *Template:
		html, err = a.engine.RenderTemplate(c.Name, data)
	case Inline:
		html, err = a.engine.RenderString(string(c), data)
	case *pongo2.Template:
		html, err = a.engine.Execute(c, data)
	default:
		return renderer.Markup{}, fmt.Errorf("pongo: unsupported component %T", component)
	}
	if err != nil {
		return renderer.Markup{}, fmt.Errorf("pongo: %w", err)
	}
	return renderer.Markup{HTML: html}, nil
}

// Settings are the loader options for the adapter.
type Settings struct {
	TemplatesDir string   `json:"templates_dir"`
	Extension    string   `json:"extension"`
	Client       *string  `json:"client"`
	Polyfills    []string `json:"polyfills"`
}

// Factory builds the adapter entry from configuration options.
func Factory(ctx context.Context, options map[string]any) (renderer.Entry, error) {
	var settings Settings
	if err := loader.Decode(options, &settings); err != nil {
		return renderer.Entry{}, fmt.Errorf("pongo: %w", err)
	}

	opts := []Option{
		WithTemplatesDir(loader.ResolvePath(ctx, settings.TemplatesDir)),
		WithExtension(settings.Extension),
		WithPolyfills(settings.Polyfills...),
	}
	if settings.Client != nil {
		opts = append(opts, WithClient(*settings.Client))
	}
	entry, err := Entry(opts...)
	if err != nil {
		return renderer.Entry{}, err
	}
	entry.Options = settings
	return entry, nil
}
