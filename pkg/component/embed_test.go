package component_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/goliatone/go-islands/pkg/component"
	"github.com/goliatone/go-islands/pkg/hydrate"
	"github.com/goliatone/go-islands/pkg/renderer"
	"github.com/goliatone/go-islands/pkg/testsupport"
)

type widget struct{ name string }

func newEmbedder(t *testing.T, entries []renderer.Entry, options ...renderer.InitOption) *component.Embedder {
	t.Helper()
	resolver := renderer.NewResolver()
	if err := resolver.Initialize(testsupport.Context(), entries, options...); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	scripts, err := hydrate.New()
	if err != nil {
		t.Fatalf("hydrate.New: %v", err)
	}
	embedder, err := component.New(resolver, scripts)
	if err != nil {
		t.Fatalf("component.New: %v", err)
	}
	return embedder
}

func TestEmbed_NilComponentFailsBeforeChecks(t *testing.T) {
	stub := testsupport.NewStub("pongo", "<p/>")
	embedder := newEmbedder(t, []renderer.Entry{stub.Entry("")})

	var typedNil renderer.Func
	for _, value := range []any{nil, typedNil, (*widget)(nil)} {
		_, err := embedder.Embed(value, component.Props{DisplayName: "Broken"})
		if !errors.Is(err, renderer.ErrInvalidComponent) {
			t.Fatalf("Embed(%#v) error = %v, want ErrInvalidComponent", value, err)
		}
		if !strings.Contains(err.Error(), "Broken") {
			t.Fatalf("error should name the component: %v", err)
		}
	}
	if stub.Checks() != 0 {
		t.Fatalf("expected no checks, got %d", stub.Checks())
	}
}

func TestEmbed_PlainTagIsInvalid(t *testing.T) {
	for _, tag := range []string{"div", "-x", "1-a", "my widget-x"} {
		t.Run(tag, func(t *testing.T) {
			stub := testsupport.NewStub("pongo", "<p/>")
			embedder := newEmbedder(t, []renderer.Entry{stub.Entry("")})

			_, err := embedder.Embed(tag, component.Props{})
			var invalid *renderer.InvalidComponentError
			if !errors.As(err, &invalid) {
				t.Fatalf("expected InvalidComponentError, got %v", err)
			}
			if invalid.DisplayName != tag {
				t.Fatalf("unexpected display name %q", invalid.DisplayName)
			}
			if stub.Checks() != 0 {
				t.Fatalf("expected no checks, got %d", stub.Checks())
			}
		})
	}
}

func TestEmbed_HydrateValidation(t *testing.T) {
	embedder := newEmbedder(t, nil)

	if _, err := embedder.Embed("x-a", component.Props{Hydrate: "hover"}); err == nil {
		t.Fatalf("expected unknown mode error")
	}
	if _, err := embedder.Embed("x-a", component.Props{Hydrate: hydrate.ModeLoad}); err == nil {
		t.Fatalf("expected missing component url error")
	}
}

func TestEmbed_CustomElementFallsBackToHTML(t *testing.T) {
	framework := testsupport.NewStub("pongo", "unused")
	framework.Accepts = false
	other := testsupport.NewStub("other", "unused")
	other.Accepts = false
	fallback := testsupport.NewStub("html", "")
	fallback.Render = func(component any, _ map[string]any, _ []string) (string, error) {
		return "<" + component.(string) + "></" + component.(string) + ">", nil
	}

	embedder := newEmbedder(t,
		[]renderer.Entry{framework.Entry(""), other.Entry("")},
		renderer.WithFallback(fallback.Entry("")),
	)

	render, err := embedder.Embed("my-widget", component.Props{})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	got, err := render(testsupport.Context(), nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "<my-widget></my-widget>" {
		t.Fatalf("unexpected markup %q", got)
	}
	if fallback.Checks() != 0 {
		t.Fatalf("fallback should not take part in resolution")
	}
}

func TestEmbed_SoleUserAdapterIsDefault(t *testing.T) {
	only := testsupport.NewStub("pongo", "<p>sole</p>")
	only.Accepts = false
	embedder := newEmbedder(t, []renderer.Entry{only.Entry("")})

	render, err := embedder.Embed(widget{name: "w"}, component.Props{})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	got, err := render(testsupport.Context(), nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "<p>sole</p>" {
		t.Fatalf("unexpected markup %q", got)
	}
}

func TestEmbed_NoRendererNamesComponent(t *testing.T) {
	a := testsupport.NewStub("a", "")
	a.Accepts = false
	b := testsupport.NewStub("b", "")
	b.Accepts = false
	embedder := newEmbedder(t, []renderer.Entry{a.Entry(""), b.Entry("")})

	render, err := embedder.Embed(widget{name: "w"}, component.Props{DisplayName: "Gallery"})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	_, err = render(testsupport.Context(), nil)
	var missing *renderer.NoRendererError
	if !errors.As(err, &missing) || !errors.Is(err, renderer.ErrNoRenderer) {
		t.Fatalf("expected NoRendererError, got %v", err)
	}
	if missing.DisplayName != "Gallery" {
		t.Fatalf("unexpected display name %q", missing.DisplayName)
	}
}

func TestEmbed_StaticOutputHasNoWrapperMarkers(t *testing.T) {
	stub := testsupport.NewStub("pongo", `<astro-fragment><p>a</p><ASTRO-FRAGMENT data-x="1"><i>b</i></astro-fragment></Astro-Fragment>`)
	embedder := newEmbedder(t, []renderer.Entry{stub.Entry("")})

	render, err := embedder.Embed(widget{name: "w"}, component.Props{})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	got, err := render(testsupport.Context(), nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "<p>a</p><i>b</i>" {
		t.Fatalf("unexpected markup %q", got)
	}
}

func TestEmbed_VisibleHydration(t *testing.T) {
	stub := testsupport.NewStub("pongo", "")
	stub.Render = func(_ any, props map[string]any, _ []string) (string, error) {
		return "<button>1</button>", nil
	}
	embedder := newEmbedder(t, []renderer.Entry{stub.Entry("/_snowpack/pkg/pongo/client.js")})

	render, err := embedder.Embed(widget{name: "counter"}, component.Props{
		Hydrate:         hydrate.ModeVisible,
		ComponentURL:    "/components/Counter.js",
		ComponentExport: hydrate.Export{Value: "Counter"},
	})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	got, err := render(testsupport.Context(), map[string]any{"count": 1})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	id := hydrate.AstroID("<button>1</button>")
	wantPrefix := `<astro-root uid="` + id + `"><button>1</button></astro-root><script type="module">`
	if !strings.HasPrefix(got, wantPrefix) {
		t.Fatalf("unexpected root element:\n%s", got)
	}
	for _, fragment := range []string{
		`import setup from "/_astro_frontend/hydrate/visible.js";`,
		`setup("` + id + `", async () => {`,
		`import("/_snowpack/pkg/pongo/client.js")`,
		`hydrate(el)(Component, {"count":1}, children)`,
	} {
		if !strings.Contains(got, fragment) {
			t.Fatalf("expected %q in output:\n%s", fragment, got)
		}
	}
}

func TestEmbed_IdenticalMarkupSharesID(t *testing.T) {
	stub := testsupport.NewStub("pongo", "<span>same</span>")
	embedder := newEmbedder(t, []renderer.Entry{stub.Entry("")})

	props := component.Props{Hydrate: hydrate.ModeLoad, ComponentURL: "/c.js"}
	first, err := embedder.Embed(widget{name: "a"}, props)
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	second, err := embedder.Embed(widget{name: "b"}, props)
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	a, err := first(testsupport.Context(), nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	b, err := second(testsupport.Context(), nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if a != b {
		t.Fatalf("identical markup should produce identical output\n%s\n%s", a, b)
	}
}

func TestEmbed_ThrowingCheckIsSkipped(t *testing.T) {
	broken := testsupport.NewStub("broken", "")
	broken.CheckErr = errors.New("boom")
	good := testsupport.NewStub("good", "<em>ok</em>")
	embedder := newEmbedder(t, []renderer.Entry{broken.Entry(""), good.Entry("")})

	render, err := embedder.Embed(widget{name: "w"}, component.Props{})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	got, err := render(testsupport.Context(), nil)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "<em>ok</em>" {
		t.Fatalf("unexpected markup %q", got)
	}
}

func TestEmbed_RenderFailureIsFatal(t *testing.T) {
	cause := errors.New("template exploded")
	first := testsupport.NewStub("first", "")
	first.RenderErr = cause
	second := testsupport.NewStub("second", "<p>never</p>")
	embedder := newEmbedder(t, []renderer.Entry{first.Entry(""), second.Entry("")})

	render, err := embedder.Embed(widget{name: "w"}, component.Props{})
	if err != nil {
		t.Fatalf("embed: %v", err)
	}
	_, err = render(testsupport.Context(), nil)
	if !errors.Is(err, renderer.ErrRender) || !errors.Is(err, cause) {
		t.Fatalf("expected wrapped render error, got %v", err)
	}
	if second.Renders() != 0 || second.Checks() != 0 {
		t.Fatalf("matched render failure must not fall back")
	}
}

func TestEmbed_GoComponentsNestOtherComponents(t *testing.T) {
	stub := testsupport.NewStub("pongo", "<b>inner</b>")
	stub.Match = func(c any) bool {
		_, ok := c.(widget)
		return ok
	}
	embedder := newEmbedder(t, []renderer.Entry{stub.Entry("")})

	inner, err := embedder.Embed(widget{name: "inner"}, component.Props{})
	if err != nil {
		t.Fatalf("embed inner: %v", err)
	}
	outer := renderer.Func(func(ctx context.Context, props map[string]any, children []string) (string, error) {
		html, err := inner(ctx, props)
		if err != nil {
			return "", err
		}
		return "<section>" + html + strings.Join(children, "") + "</section>", nil
	})

	render, err := embedder.Embed(outer, component.Props{})
	if err != nil {
		t.Fatalf("embed outer: %v", err)
	}
	got, err := render(testsupport.Context(), nil, "<i>child</i>")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got != "<section><b>inner</b><i>child</i></section>" {
		t.Fatalf("unexpected markup %q", got)
	}
}

func TestDisplayName(t *testing.T) {
	cases := []struct {
		name      string
		component any
		explicit  string
		want      string
	}{
		{name: "explicit", component: widget{}, explicit: " Card ", want: "Card"},
		{name: "tag", component: "x-card", want: "x-card"},
		{name: "struct", component: widget{}, want: "component_test.widget"},
		{name: "func", component: TestDisplayName, want: "component_test.TestDisplayName"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := component.DisplayName(tc.component, tc.explicit); got != tc.want {
				t.Fatalf("DisplayName = %q, want %q", got, tc.want)
			}
		})
	}
}
