package renderer

import (
	"context"
	"slices"
)

// Markup is the static output of a single adapter render call.
type Markup struct {
	HTML string
}

// Adapter knows how to detect and render the components of one UI framework.
// Adapters are configured at construction time, so the options each one needs
// are not threaded through the calls.
type Adapter interface {
	Name() string
	// Check reports whether the adapter can render component. It may block and
	// is only ever invoked by one resolution at a time per component.
	Check(ctx context.Context, component any, props map[string]any, children []string) (bool, error)
	RenderToStaticMarkup(ctx context.Context, component any, props map[string]any, children []string) (Markup, error)
}

// Entry is an adapter declaration as produced by a module loader. Server and
// Client are the module paths the adapter advertises; Client is empty for
// adapters without a client-side hydration helper.
type Entry struct {
	Name      string
	Server    string
	Client    string
	Polyfills []string
	Options   any
	Adapter   Adapter
}

// Record is an installed adapter. Records are immutable once a registry is
// built: ClientSource and Polyfills already hold browser-loadable URLs.
type Record struct {
	Name         string
	Adapter      Adapter
	Polyfills    []string
	ClientSource string
	Options      any

	builtin bool
}

// HasClient reports whether the record ships a client-side hydration helper.
func (r *Record) HasClient() bool {
	return r != nil && r.ClientSource != ""
}

// Builtin reports whether the record is the self-referential adapter.
func (r *Record) Builtin() bool {
	return r != nil && r.builtin
}

func (r Record) clone() Record {
	r.Polyfills = slices.Clone(r.Polyfills)
	return r
}
