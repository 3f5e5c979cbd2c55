package gotemplate_test

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-islands/pkg/render/template/gotemplate"
)

func newEngine(t *testing.T, options ...gotemplate.Option) *gotemplate.Engine {
	t.Helper()

	files := fstest.MapFS{
		"hello.tpl":      {Data: []byte(`Hello {{ name }}!`)},
		"use-global.tpl": {Data: []byte(`env={{ settings.env }}`)},
		"use-filter.tpl": {Data: []byte(`{{ name|islands_shout }}`)},
		"children.tpl":   {Data: []byte(`<div>{{ children }}</div>`)},
		"quote.tpl":      {Data: []byte(`import({{ url|jsstring }});`)},
	}
	opts := append([]gotemplate.Option{gotemplate.WithFS(files)}, options...)
	engine, err := gotemplate.New(opts...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func TestEngine_RenderTemplateWritesToWriters(t *testing.T) {
	engine := newEngine(t)

	var buf bytes.Buffer
	got, err := engine.RenderTemplate("hello", map[string]any{"name": "Ada"}, &buf)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "Hello Ada!" {
		t.Fatalf("unexpected output %q", got)
	}
	if buf.String() != got {
		t.Fatalf("writer mismatch: %q", buf.String())
	}
}

func TestEngine_RenderDispatchesInlineContent(t *testing.T) {
	engine := newEngine(t)

	got, err := engine.Render("{{ a }}-{{ b }}", map[string]any{"a": 1, "b": "two"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "1-two" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestEngine_GlobalContext(t *testing.T) {
	engine := newEngine(t, gotemplate.WithGlobalData(map[string]any{
		"settings": map[string]any{"env": "staging"},
	}))

	got, err := engine.RenderTemplate("use-global", nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "env=staging" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestEngine_RegisterFilter(t *testing.T) {
	engine := newEngine(t)
	err := engine.RegisterFilter("islands_shout", func(input any, _ any) (any, error) {
		return fmt.Sprintf("%s!", strings.ToUpper(fmt.Sprint(input))), nil
	})
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("register filter: %v", err)
	}

	got, err := engine.RenderTemplate("use-filter", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "ADA!" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestEngine_SafeValuesSurviveContextConversion(t *testing.T) {
	engine := newEngine(t)

	got, err := engine.RenderTemplate("children", map[string]any{
		"children": pongo2.AsSafeValue("<b>kept</b>"),
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "<div><b>kept</b></div>" {
		t.Fatalf("unexpected output %q", got)
	}

	escaped, err := engine.RenderTemplate("children", map[string]any{"children": "<b>escaped</b>"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if escaped != "<div>&lt;b&gt;escaped&lt;/b&gt;</div>" {
		t.Fatalf("plain strings should be autoescaped, got %q", escaped)
	}
}

func TestEngine_StructDataIsConverted(t *testing.T) {
	engine := newEngine(t)
	data := struct {
		Name string `json:"name"`
	}{Name: "Grace"}

	got, err := engine.RenderTemplate("hello", data)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "Hello Grace!" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestEngine_JSStringFilter(t *testing.T) {
	engine := newEngine(t)

	got, err := engine.RenderTemplate("quote", map[string]any{"url": `/c/x.js?a="b"</script>`})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := `import("/c/x.js?a=\"b\"\u003c/script\u003e");`
	if got != want {
		t.Fatalf("jsstring mismatch\nwant: %s\n got: %s", want, got)
	}
}

func TestNew_RequiresSource(t *testing.T) {
	if _, err := gotemplate.New(); err == nil {
		t.Fatalf("expected error without templates")
	}
}
