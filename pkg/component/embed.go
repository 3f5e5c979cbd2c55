package component

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"runtime"
	"strings"

	"github.com/goliatone/go-islands/pkg/hydrate"
	"github.com/goliatone/go-islands/pkg/markup"
	"github.com/goliatone/go-islands/pkg/renderer"
)

// Props describes how one component reference is embedded in a page.
type Props struct {
	DisplayName     string
	Hydrate         hydrate.Mode
	ComponentURL    string
	ComponentExport hydrate.Export
}

// RenderFunc renders one occurrence of an embedded component.
type RenderFunc func(ctx context.Context, props map[string]any, children ...string) (string, error)

// Resolver exposes the active registry generation.
type Resolver interface {
	Current() *renderer.Generation
}

// ScriptGenerator produces hydration bootstrap scripts.
type ScriptGenerator interface {
	Generate(ctx context.Context, req hydrate.Request) (string, error)
}

// Option customises an Embedder.
type Option func(*Embedder)

// WithLogger routes fallback diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Embedder) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Embedder is the entry point templates use to place components on a page.
type Embedder struct {
	resolver Resolver
	scripts  ScriptGenerator
	logger   *slog.Logger
}

// New wires an Embedder to a resolver and a hydration script generator.
func New(resolver Resolver, scripts ScriptGenerator, options ...Option) (*Embedder, error) {
	if resolver == nil {
		return nil, errors.New("component: resolver is required")
	}
	if scripts == nil {
		return nil, errors.New("component: script generator is required")
	}
	e := &Embedder{
		resolver: resolver,
		scripts:  scripts,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(e)
	}
	return e, nil
}

// Embed validates the component reference and returns the per-occurrence
// render function. Invalid references fail here, before any adapter runs.
func (e *Embedder) Embed(component any, props Props) (RenderFunc, error) {
	name := DisplayName(component, props.DisplayName)

	if isNil(component) {
		return nil, &renderer.InvalidComponentError{DisplayName: name, Reason: "component is nil"}
	}
	if tag, ok := component.(string); ok && !IsCustomElement(tag) {
		return nil, &renderer.InvalidComponentError{
			DisplayName: name,
			Reason:      fmt.Sprintf("%q is not a custom element tag", tag),
		}
	}
	if props.Hydrate.Enabled() && !props.Hydrate.Valid() {
		return nil, fmt.Errorf("component: %s: unknown hydrate mode %q", name, props.Hydrate)
	}
	if props.Hydrate.Enabled() && strings.TrimSpace(props.ComponentURL) == "" {
		return nil, fmt.Errorf("component: %s: %s hydration requires a component url", name, props.Hydrate)
	}

	return func(ctx context.Context, values map[string]any, children ...string) (string, error) {
		return e.render(ctx, component, name, props, values, children)
	}, nil
}

func (e *Embedder) render(ctx context.Context, component any, name string, props Props, values map[string]any, children []string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	gen := e.resolver.Current()

	rec, err := gen.Resolve(ctx, component, values, children)
	if err != nil {
		return "", fmt.Errorf("component: %s: %w", name, err)
	}
	if rec == nil {
		rec = e.fallback(gen.Registry(), component, name)
	}
	if rec == nil {
		return "", &renderer.NoRendererError{DisplayName: name}
	}

	html, err := markup.Render(ctx, rec, component, values, children)
	if err != nil {
		return "", fmt.Errorf("component: %s: %w", name, err)
	}
	if !props.Hydrate.Enabled() {
		return markup.StripWrapper(html), nil
	}

	id := hydrate.AstroID(html)
	script, err := e.scripts.Generate(ctx, hydrate.Request{
		Record:       rec,
		AstroID:      id,
		Props:        values,
		Mode:         props.Hydrate,
		ComponentURL: props.ComponentURL,
		Export:       props.ComponentExport,
	})
	if err != nil {
		return "", fmt.Errorf("component: %s: %w", name, err)
	}
	return hydrate.WrapRoot(id, html) + script, nil
}

// fallback applies the post-resolution defaults: custom elements go to the
// plain-HTML record, and a registry with a single user adapter defaults to it.
func (e *Embedder) fallback(registry *renderer.Registry, component any, name string) *renderer.Record {
	if tag, ok := component.(string); ok && IsCustomElement(tag) {
		if rec, ok := registry.Fallback(); ok {
			e.logger.Debug("component rendered by fallback", "component", name, "renderer", rec.Name)
			return rec
		}
	}
	if rec, ok := registry.Sole(); ok {
		e.logger.Debug("component defaulted to sole renderer", "component", name, "renderer", rec.Name)
		return rec
	}
	return nil
}

// IsCustomElement reports whether tag has the shape of a custom element name.
// It is the same test the html fallback applies.
func IsCustomElement(tag string) bool {
	return markup.IsCustomElement(tag)
}

// DisplayName picks the name used in errors and logs for component.
func DisplayName(component any, explicit string) string {
	if name := strings.TrimSpace(explicit); name != "" {
		return name
	}
	switch c := component.(type) {
	case nil:
		return "<nil>"
	case string:
		return c
	case fmt.Stringer:
		if !isNil(c) {
			return c.String()
		}
	}
	v := reflect.ValueOf(component)
	if v.Kind() == reflect.Func && !v.IsNil() {
		if fn := runtime.FuncForPC(v.Pointer()); fn != nil {
			name := fn.Name()
			if idx := strings.LastIndex(name, "/"); idx >= 0 {
				name = name[idx+1:]
			}
			return name
		}
	}
	return fmt.Sprintf("%T", component)
}

func isNil(component any) bool {
	if component == nil {
		return true
	}
	v := reflect.ValueOf(component)
	switch v.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Slice, reflect.Interface, reflect.Chan:
		return v.IsNil()
	}
	return false
}
