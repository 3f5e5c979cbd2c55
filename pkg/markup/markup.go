package markup

import (
	"context"
	"errors"
	"html"
	"regexp"
	"strings"

	"github.com/goliatone/go-islands/pkg/renderer"
)

// FragmentTag delimits child markup handed to framework adapters. It never
// reaches static output.
const FragmentTag = "astro-fragment"

// Quoted attribute values may contain '>'.
var fragmentPattern = regexp.MustCompile(`(?i)</?` + FragmentTag + `(?:\s(?:[^>"']|"[^"]*"|'[^']*')*)?/?>`)

var customElementPattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9._]*-[a-zA-Z0-9._-]*$`)

// IsCustomElement reports whether tag has the shape of a custom element name:
// a leading letter and at least one hyphen, no whitespace.
func IsCustomElement(tag string) bool {
	return customElementPattern.MatchString(tag)
}

// Render invokes the record's adapter and appends one module script per
// polyfill, in declared order. Adapter failures come back as
// *renderer.RenderError wrapping the original error.
func Render(ctx context.Context, rec *renderer.Record, component any, props map[string]any, children []string) (string, error) {
	if rec == nil || rec.Adapter == nil {
		return "", errors.New("markup: renderer record is required")
	}

	out, err := rec.Adapter.RenderToStaticMarkup(ctx, component, props, children)
	if err != nil {
		return "", &renderer.RenderError{Adapter: rec.Name, Err: err}
	}
	if len(rec.Polyfills) == 0 {
		return out.HTML, nil
	}

	var b strings.Builder
	b.WriteString(out.HTML)
	for _, src := range rec.Polyfills {
		b.WriteString(`<script type="module" src="`)
		b.WriteString(html.EscapeString(src))
		b.WriteString(`"></script>`)
	}
	return b.String(), nil
}

// StripWrapper removes every fragment marker tag, opening or closing, and
// leaves the content between them untouched.
func StripWrapper(markup string) string {
	if !strings.Contains(strings.ToLower(markup), FragmentTag) {
		return markup
	}
	return fragmentPattern.ReplaceAllString(markup, "")
}

// WrapChildren joins child fragments inside a single marker pair.
func WrapChildren(children []string) string {
	return "<" + FragmentTag + ">" + strings.Join(children, "") + "</" + FragmentTag + ">"
}
