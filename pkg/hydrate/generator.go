package hydrate

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"strings"

	"github.com/goliatone/go-islands/pkg/render/template"
	"github.com/goliatone/go-islands/pkg/render/template/gotemplate"
	"github.com/goliatone/go-islands/pkg/renderer"
)

const (
	scriptTemplate = "templates/script"

	// DefaultSetupPrefix is where the per-mode setup helpers are served.
	DefaultSetupPrefix = "/_astro_frontend/hydrate/"
)

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

// TemplatesFS exposes the embedded bootstrap templates so callers can copy
// and customise them.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// Export identifies what the bootstrap pulls out of the component module.
type Export struct {
	Value       string
	IsNamespace bool
}

func (e Export) binding() (string, error) {
	if e.IsNamespace {
		return "Component", nil
	}
	name := strings.TrimSpace(e.Value)
	if name == "" {
		name = "default"
	}
	if identifierPattern.MatchString(name) {
		return "{ " + name + ": Component }", nil
	}
	quoted, err := gotemplate.QuoteJS(name)
	if err != nil {
		return "", err
	}
	return "{ " + quoted + ": Component }", nil
}

// Request is everything needed to bootstrap one hydrated instance.
type Request struct {
	Record       *renderer.Record
	AstroID      string
	Props        map[string]any
	Mode         Mode
	ComponentURL string
	Export       Export
}

// Option customises the generator.
type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer template.TemplateRenderer
	setupPrefix      string
}

// WithTemplatesFS swaps the embedded template bundle. The bundle must contain
// templates/script.tpl.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		if files != nil {
			cfg.templateFS = files
		}
	}
}

// WithTemplateRenderer injects a ready template renderer.
func WithTemplateRenderer(renderer template.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithSetupPrefix overrides DefaultSetupPrefix.
func WithSetupPrefix(prefix string) Option {
	return func(cfg *config) {
		if trimmed := strings.TrimSpace(prefix); trimmed != "" {
			cfg.setupPrefix = trimmed
		}
	}
}

// Generator synthesises the inline module script that hydrates a component
// once its mode's trigger fires.
type Generator struct {
	templates   template.TemplateRenderer
	setupPrefix string
}

// New builds a generator backed by the embedded templates.
func New(options ...Option) (*Generator, error) {
	cfg := config{
		templateFS:  embeddedTemplates,
		setupPrefix: DefaultSetupPrefix,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}
	if !strings.HasSuffix(cfg.setupPrefix, "/") {
		cfg.setupPrefix += "/"
	}

	templates := cfg.templateRenderer
	if templates == nil {
		engine, err := gotemplate.New(
			gotemplate.WithName("hydrate"),
			gotemplate.WithFS(cfg.templateFS),
		)
		if err != nil {
			return nil, fmt.Errorf("hydrate: configure template renderer: %w", err)
		}
		templates = engine
	}

	return &Generator{
		templates:   templates,
		setupPrefix: cfg.setupPrefix,
	}, nil
}

// SetupURL returns the setup helper path for mode.
func (g *Generator) SetupURL(mode Mode) string {
	return g.setupPrefix + string(mode) + ".js"
}

// Generate renders the bootstrap script for req. Records without a client
// source get a bootstrap that only imports the component module.
func (g *Generator) Generate(ctx context.Context, req Request) (string, error) {
	if ctx != nil {
		if err := ctx.Err(); err != nil {
			return "", err
		}
	}
	if req.Record == nil {
		return "", errors.New("hydrate: renderer record is required")
	}
	if !req.Mode.Valid() {
		return "", fmt.Errorf("hydrate: unknown mode %q", req.Mode)
	}
	if strings.TrimSpace(req.AstroID) == "" {
		return "", errors.New("hydrate: astro id is required")
	}
	if strings.TrimSpace(req.ComponentURL) == "" {
		return "", fmt.Errorf("hydrate: component url is required for %s hydration", req.Mode)
	}

	props, err := SerializeProps(req.Props)
	if err != nil {
		return "", err
	}
	binding, err := req.Export.binding()
	if err != nil {
		return "", fmt.Errorf("hydrate: export binding: %w", err)
	}

	data := map[string]any{
		"setup_url":         g.SetupURL(req.Mode),
		"astro_id":          req.AstroID,
		"client_source":     req.Record.ClientSource,
		"component_url":     req.ComponentURL,
		"component_binding": binding,
		"props":             props,
	}
	rendered, err := g.templates.RenderTemplate(scriptTemplate, data)
	if err != nil {
		return "", fmt.Errorf("hydrate: render script: %w", err)
	}
	return strings.TrimRight(rendered, "\n"), nil
}
