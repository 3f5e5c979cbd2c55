package testsupport

import (
	"context"
	"sync"

	"github.com/goliatone/go-islands/pkg/renderer"
)

// StubAdapter is a renderer.Adapter whose behaviour is driven by plain fields
// and which counts every call. It is safe for concurrent use.
type StubAdapter struct {
	AdapterName string

	// Match decides Check results. When nil, Accepts is consulted instead.
	Match    func(component any) bool
	Accepts  bool
	CheckErr error

	HTML      string
	RenderErr error
	// Render overrides HTML and RenderErr when set.
	Render func(component any, props map[string]any, children []string) (string, error)

	mu      sync.Mutex
	checks  int
	renders int
	order   *[]string
}

// NewStub returns a stub that accepts everything and renders html.
func NewStub(name, html string) *StubAdapter {
	return &StubAdapter{AdapterName: name, Accepts: true, HTML: html}
}

// Record calls into order so tests can assert invocation sequence across stubs.
func (s *StubAdapter) Record(order *[]string) *StubAdapter {
	s.order = order
	return s
}

func (s *StubAdapter) Name() string { return s.AdapterName }

func (s *StubAdapter) Check(_ context.Context, component any, _ map[string]any, _ []string) (bool, error) {
	s.mu.Lock()
	s.checks++
	if s.order != nil {
		*s.order = append(*s.order, s.AdapterName)
	}
	s.mu.Unlock()

	if s.CheckErr != nil {
		return false, s.CheckErr
	}
	if s.Match != nil {
		return s.Match(component), nil
	}
	return s.Accepts, nil
}

func (s *StubAdapter) RenderToStaticMarkup(_ context.Context, component any, props map[string]any, children []string) (renderer.Markup, error) {
	s.mu.Lock()
	s.renders++
	s.mu.Unlock()

	if s.Render != nil {
		html, err := s.Render(component, props, children)
		return renderer.Markup{HTML: html}, err
	}
	if s.RenderErr != nil {
		return renderer.Markup{}, s.RenderErr
	}
	return renderer.Markup{HTML: s.HTML}, nil
}

// Checks returns how many times Check ran.
func (s *StubAdapter) Checks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checks
}

// Renders returns how many times RenderToStaticMarkup ran.
func (s *StubAdapter) Renders() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renders
}

// Entry wraps the stub in a loader entry with a server path and optional client.
func (s *StubAdapter) Entry(client string) renderer.Entry {
	return renderer.Entry{
		Name:    s.AdapterName,
		Server:  "testsupport/" + s.AdapterName + "/server.js",
		Client:  client,
		Adapter: s,
	}
}
