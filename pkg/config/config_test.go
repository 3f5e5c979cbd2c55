package config_test

import (
	"context"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-islands/pkg/config"
	"github.com/goliatone/go-islands/pkg/loader"
	"github.com/goliatone/go-islands/pkg/testsupport"
)

const sampleYAML = `
renderers:
  - name: pongo
    options:
      templates_dir: ./components
  - name: html
fallback: null
packages:
  base_url: /web_modules
  aliases:
    "@islands": /vendor/islands
hydrate:
  setup_prefix: /hydrate/
concurrency: 4
`

func TestParse_YAML(t *testing.T) {
	cfg, err := config.Parse([]byte(sampleYAML), "islands.yaml")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	want := &config.Config{
		Renderers: []loader.Reference{
			{Name: "pongo", Options: map[string]any{"templates_dir": "./components"}},
			{Name: "html"},
		},
		Packages: config.Packages{
			BaseURL: "/web_modules",
			Aliases: map[string]string{"@islands": "/vendor/islands"},
		},
		Hydrate:     config.Hydrate{SetupPrefix: "/hydrate/"},
		Concurrency: 4,
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_JSONKeepsDefaults(t *testing.T) {
	cfg, err := config.Parse([]byte(`{"renderers":[{"name":"pongo"}]}`), "islands.json")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Fallback == nil || cfg.Fallback.Name != config.DefaultFallback {
		t.Fatalf("expected default fallback, got %+v", cfg.Fallback)
	}
	if cfg.Packages.BaseURL != config.DefaultBaseURL {
		t.Fatalf("expected default base url, got %q", cfg.Packages.BaseURL)
	}
}

func TestParse_Invalid(t *testing.T) {
	cases := map[string]string{
		"empty":            "  ",
		"syntax":           "renderers: [",
		"missing name":     "renderers:\n  - options: {}\n",
		"duplicate":        "renderers:\n  - name: a\n  - name: a\n",
		"negative workers": "concurrency: -1\n",
		"empty alias":      "packages:\n  aliases:\n    x: \"\"\n",
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := config.Parse([]byte(input), "bad.yaml"); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestLoadFS(t *testing.T) {
	files := fstest.MapFS{
		"site/islands.yaml": {Data: []byte("renderers:\n  - name: pongo\n")},
	}
	cfg, err := config.LoadFS(files, "site/islands.yaml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cfg.Renderers) != 1 || cfg.Renderers[0].Name != "pongo" {
		t.Fatalf("unexpected renderers %+v", cfg.Renderers)
	}

	missing, err := config.LoadFS(files, "")
	if err != nil {
		t.Fatalf("load missing: %v", err)
	}
	if diff := cmp.Diff(config.Default(), missing); diff != "" {
		t.Fatalf("expected defaults (-want +got):\n%s", diff)
	}
}

func TestLoadAndMarshalRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := testsupport.WriteFile(t, dir, config.DefaultFile, sampleYAML)

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Dir != dir {
		t.Fatalf("expected dir %q, got %q", dir, cfg.Dir)
	}
	data, err := cfg.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	again, err := config.Parse(data, "roundtrip.yaml")
	if err != nil {
		t.Fatalf("parse marshalled: %v", err)
	}
	again.Dir = cfg.Dir
	if diff := cmp.Diff(cfg, again); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	if _, err := config.Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatalf("expected missing file error")
	}
}

func TestPackageResolver(t *testing.T) {
	resolver := config.NewPackageResolver(config.Packages{
		BaseURL: "/web_modules",
		Aliases: map[string]string{
			"@islands":       "/vendor/islands",
			"@islands/pongo": "https://cdn.example.com/pongo",
			"lib":            "shared/lib",
		},
	})

	cases := []struct {
		in   string
		want string
	}{
		{in: "preact/hooks.js", want: "/web_modules/preact/hooks.js"},
		{in: "@scope/pkg/client.js", want: "/web_modules/@scope/pkg/client.js"},
		{in: "/already/rooted.js", want: "/already/rooted.js"},
		{in: "https://cdn.example.com/x.js", want: "https://cdn.example.com/x.js"},
		{in: "@islands/core/setup.js", want: "/vendor/islands/core/setup.js"},
		{in: "@islands/pongo/client.js", want: "https://cdn.example.com/pongo/client.js"},
		{in: "lib/x.js", want: "/web_modules/shared/lib/x.js"},
		{in: "library/x.js", want: "/web_modules/library/x.js"},
	}
	for _, tc := range cases {
		got, err := resolver.ResolvePackageURL(testsupport.Context(), tc.in)
		if err != nil {
			t.Fatalf("resolve %q: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("resolve %q = %q, want %q", tc.in, got, tc.want)
		}
	}

	for _, bad := range []string{"", "./local.js", "../up.js"} {
		if _, err := resolver.ResolvePackageURL(testsupport.Context(), bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}

	ctx, cancel := context.WithCancel(testsupport.Context())
	cancel()
	if _, err := resolver.ResolvePackageURL(ctx, "x.js"); err == nil {
		t.Fatalf("expected cancelled context error")
	}
}

func TestPackageResolver_DefaultBase(t *testing.T) {
	resolver := config.NewPackageResolver(config.Packages{})
	got, err := resolver.ResolvePackageURL(testsupport.Context(), "@goliatone/islands-pongo/client.js")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != "/_snowpack/pkg/@goliatone/islands-pongo/client.js" {
		t.Fatalf("unexpected url %q", got)
	}
}
