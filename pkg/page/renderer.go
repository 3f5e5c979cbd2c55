package page

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-islands/pkg/component"
	"github.com/goliatone/go-islands/pkg/render/template"
	"github.com/goliatone/go-islands/pkg/render/template/gotemplate"
)

const (
	layoutTemplate = "templates/layout"
	defaultLang    = "en"
)

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

// TemplatesFS exposes the embedded layout so callers can copy and customise it.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}

// Block is one slice of a page: literal markup or a component occurrence.
type Block struct {
	HTML      string
	Component *Occurrence
}

// Occurrence is a single placement of a component on a page.
type Occurrence struct {
	Component any
	Props     component.Props
	Values    map[string]any
	Children  []string
}

// Embedder is the component entry point the renderer drives.
type Embedder interface {
	Embed(component any, props component.Props) (component.RenderFunc, error)
}

// Option configures a Renderer.
type Option func(*config)

type config struct {
	concurrency int
	layout      template.TemplateRenderer
	layoutName  string
	logger      *slog.Logger
}

// WithConcurrency bounds how many occurrences render at once. Values below
// one fall back to GOMAXPROCS.
func WithConcurrency(limit int) Option {
	return func(cfg *config) {
		cfg.concurrency = limit
	}
}

// WithLayout renders documents through name in renderer instead of the
// embedded layout.
func WithLayout(renderer template.TemplateRenderer, name string) Option {
	return func(cfg *config) {
		if renderer != nil && strings.TrimSpace(name) != "" {
			cfg.layout = renderer
			cfg.layoutName = strings.TrimSpace(name)
		}
	}
}

// WithLogger routes page timing diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// Renderer assembles pages from blocks.
type Renderer struct {
	embedder    Embedder
	concurrency int
	layout      template.TemplateRenderer
	layoutName  string
	logger      *slog.Logger
}

// NewRenderer wires a page renderer to an embedder.
func NewRenderer(embedder Embedder, options ...Option) (*Renderer, error) {
	if embedder == nil {
		return nil, errors.New("page: embedder is required")
	}
	cfg := config{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if cfg.concurrency < 1 {
		cfg.concurrency = runtime.GOMAXPROCS(0)
	}
	if cfg.layout == nil {
		engine, err := gotemplate.New(
			gotemplate.WithName("page"),
			gotemplate.WithFS(embeddedTemplates),
		)
		if err != nil {
			return nil, fmt.Errorf("page: configure layout: %w", err)
		}
		cfg.layout = engine
		cfg.layoutName = layoutTemplate
	}
	return &Renderer{
		embedder:    embedder,
		concurrency: cfg.concurrency,
		layout:      cfg.layout,
		layoutName:  cfg.layoutName,
		logger:      cfg.logger,
	}, nil
}

// Render produces the concatenated markup of blocks. Component occurrences
// are validated up front, then rendered concurrently; output keeps block
// order. The first failure cancels the remaining renders.
func (r *Renderer) Render(ctx context.Context, blocks []Block) (string, error) {
	renders := make([]component.RenderFunc, len(blocks))
	for i, block := range blocks {
		if block.Component == nil {
			continue
		}
		fn, err := r.embedder.Embed(block.Component.Component, block.Component.Props)
		if err != nil {
			return "", fmt.Errorf("page: block %d: %w", i, err)
		}
		renders[i] = fn
	}

	out := make([]string, len(blocks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, block := range blocks {
		if renders[i] == nil {
			out[i] = block.HTML
			continue
		}
		occ := block.Component
		render := renders[i]
		g.Go(func() error {
			html, err := render(gctx, occ.Values, occ.Children...)
			if err != nil {
				return fmt.Errorf("page: block %d: %w", i, err)
			}
			out[i] = html
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}
	return strings.Join(out, ""), nil
}

// RenderDocument renders doc's blocks and places them in the layout.
func (r *Renderer) RenderDocument(ctx context.Context, doc *Document) (string, error) {
	if doc == nil {
		return "", errors.New("page: document is required")
	}
	started := time.Now()

	blocks, err := doc.ToBlocks()
	if err != nil {
		return "", err
	}
	body, err := r.Render(ctx, blocks)
	if err != nil {
		return "", err
	}

	lang := strings.TrimSpace(doc.Lang)
	if lang == "" {
		lang = defaultLang
	}
	data := map[string]any{
		"title": doc.Title,
		"lang":  lang,
		"head":  doc.Head,
		"body":  body,
		"data":  doc.Data,
	}
	html, err := r.layout.RenderTemplate(r.layoutName, data)
	if err != nil {
		return "", fmt.Errorf("page: render layout: %w", err)
	}

	r.logger.Debug("page rendered",
		"title", doc.Title,
		"blocks", len(blocks),
		"elapsed", time.Since(started),
	)
	return html, nil
}
