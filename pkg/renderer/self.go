package renderer

import (
	"context"
	"fmt"
)

// SelfName is the name of the adapter that renders components written against
// this module. It always occupies the first registry slot.
const SelfName = "islands"

// Func is a component implemented in Go. It usually closes over an embedder so
// it can nest further components of any installed framework.
type Func func(ctx context.Context, props map[string]any, children []string) (string, error)

// Component is the interface form of Func for stateful component values.
type Component interface {
	RenderComponent(ctx context.Context, props map[string]any, children []string) (string, error)
}

type selfAdapter struct{}

func (selfAdapter) Name() string { return SelfName }

func (selfAdapter) Check(_ context.Context, component any, _ map[string]any, _ []string) (bool, error) {
	switch component.(type) {
	case Func, Component, func(context.Context, map[string]any, []string) (string, error):
		return true, nil
	default:
		return false, nil
	}
}

func (selfAdapter) RenderToStaticMarkup(ctx context.Context, component any, props map[string]any, children []string) (Markup, error) {
	var (
		html string
		err  error
	)
	switch c := component.(type) {
	case Func:
		html, err = c(ctx, props, children)
	case func(context.Context, map[string]any, []string) (string, error):
		html, err = c(ctx, props, children)
	case Component:
		html, err = c.RenderComponent(ctx, props, children)
	default:
		return Markup{}, fmt.Errorf("renderer: %T is not an %s component", component, SelfName)
	}
	if err != nil {
		return Markup{}, err
	}
	return Markup{HTML: html}, nil
}

func selfRecord() Record {
	return Record{
		Name:    SelfName,
		Adapter: selfAdapter{},
		builtin: true,
	}
}
