// Package html renders custom elements as plain markup. It is the fallback for
// tag-name components that no framework adapter claims and it ships no client
// hydration helper.
package html

import (
	"context"
	"encoding/json"
	"fmt"
	stdhtml "html"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-islands/pkg/loader"
	"github.com/goliatone/go-islands/pkg/markup"
	"github.com/goliatone/go-islands/pkg/renderer"
)

const (
	// Name identifies the adapter in registries and logs.
	Name = "html"
	// ServerPath is the module path recorded for the adapter's server entry.
	ServerPath = "github.com/goliatone/go-islands/pkg/adapters/html"
)

var attributePattern = regexp.MustCompile(`^[a-zA-Z_:][a-zA-Z0-9_.:-]*$`)

// Option configures the adapter.
type Option func(*Adapter)

// WithSanitizer filters child markup through policy before it is emitted.
func WithSanitizer(policy *bluemonday.Policy) Option {
	return func(a *Adapter) {
		a.policy = policy
	}
}

// WithPolyfills declares module scripts appended after every rendered element.
func WithPolyfills(paths ...string) Option {
	return func(a *Adapter) {
		a.polyfills = append(a.polyfills, paths...)
	}
}

// Adapter renders `<tag attrs>children</tag>` for custom element names.
type Adapter struct {
	policy    *bluemonday.Policy
	polyfills []string
}

var _ renderer.Adapter = (*Adapter)(nil)

// New constructs the adapter.
func New(options ...Option) *Adapter {
	a := &Adapter{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(a)
	}
	return a
}

// Entry wraps the adapter for renderer.WithFallback or Resolver.Initialize.
func Entry(options ...Option) renderer.Entry {
	a := New(options...)
	return renderer.Entry{
		Name:      Name,
		Server:    ServerPath,
		Polyfills: append([]string(nil), a.polyfills...),
		Adapter:   a,
	}
}

func (a *Adapter) Name() string { return Name }

// Check accepts tag names shaped like custom elements.
func (a *Adapter) Check(_ context.Context, component any, _ map[string]any, _ []string) (bool, error) {
	tag, ok := component.(string)
	return ok && markup.IsCustomElement(tag), nil
}

// RenderToStaticMarkup writes the element with props as attributes in sorted
// order. true renders a bare attribute, false and nil are omitted, and
// composite values are JSON encoded.
func (a *Adapter) RenderToStaticMarkup(_ context.Context, component any, props map[string]any, children []string) (renderer.Markup, error) {
	tag, ok := component.(string)
	if !ok || !markup.IsCustomElement(tag) {
		return renderer.Markup{}, fmt.Errorf("html: %v is not a custom element tag", component)
	}

	keys := make([]string, 0, len(props))
	for key := range props {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString("<")
	b.WriteString(tag)
	for _, key := range keys {
		if !attributePattern.MatchString(key) {
			return renderer.Markup{}, fmt.Errorf("html: invalid attribute name %q on <%s>", key, tag)
		}
		value, present, err := attributeValue(props[key])
		if err != nil {
			return renderer.Markup{}, fmt.Errorf("html: attribute %q on <%s>: %w", key, tag, err)
		}
		if !present {
			continue
		}
		b.WriteString(" ")
		b.WriteString(key)
		if value != nil {
			b.WriteString(`="`)
			b.WriteString(stdhtml.EscapeString(*value))
			b.WriteString(`"`)
		}
	}
	b.WriteString(">")

	inner := strings.Join(children, "")
	if a.policy != nil {
		inner = a.policy.Sanitize(inner)
	}
	b.WriteString(inner)
	b.WriteString("</")
	b.WriteString(tag)
	b.WriteString(">")
	return renderer.Markup{HTML: b.String()}, nil
}

func attributeValue(raw any) (*string, bool, error) {
	var s string
	switch v := raw.(type) {
	case nil:
		return nil, false, nil
	case bool:
		return nil, v, nil
	case string:
		s = v
	case int:
		s = strconv.Itoa(v)
	case int64:
		s = strconv.FormatInt(v, 10)
	case float64:
		s = strconv.FormatFloat(v, 'f', -1, 64)
	case fmt.Stringer:
		s = v.String()
	default:
		payload, err := json.Marshal(v)
		if err != nil {
			return nil, false, err
		}
		s = string(payload)
	}
	return &s, true, nil
}

// Settings are the loader options for the adapter.
type Settings struct {
	// Sanitize selects a child markup policy: "", "ugc" or "strict".
	Sanitize  string   `json:"sanitize"`
	Polyfills []string `json:"polyfills"`
}

// Factory builds the adapter entry from configuration options.
func Factory(_ context.Context, options map[string]any) (renderer.Entry, error) {
	var settings Settings
	if err := loader.Decode(options, &settings); err != nil {
		return renderer.Entry{}, fmt.Errorf("html: %w", err)
	}

	opts := []Option{WithPolyfills(settings.Polyfills...)}
	switch strings.ToLower(strings.TrimSpace(settings.Sanitize)) {
	case "":
	case "ugc":
		opts = append(opts, WithSanitizer(bluemonday.UGCPolicy()))
	case "strict":
		opts = append(opts, WithSanitizer(bluemonday.StrictPolicy()))
	default:
		return renderer.Entry{}, fmt.Errorf("html: unknown sanitize policy %q", settings.Sanitize)
	}

	entry := Entry(opts...)
	entry.Options = settings
	return entry, nil
}
