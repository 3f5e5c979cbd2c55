package renderer

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidComponent reports a nil component or a tag name that is not
	// shaped like a custom element.
	ErrInvalidComponent = errors.New("renderer: invalid component reference")
	// ErrNoRenderer reports that resolution and every fallback came up empty.
	ErrNoRenderer = errors.New("renderer: no renderer found")
	// ErrAdapterCheck marks a capability check failure surfaced by Resolve.
	ErrAdapterCheck = errors.New("renderer: adapter check failed")
	// ErrRender marks a failure returned by the matched adapter's render call.
	ErrRender = errors.New("renderer: render failed")
)

// InvalidComponentError is returned before any adapter is consulted.
type InvalidComponentError struct {
	DisplayName string
	Reason      string
}

func (e *InvalidComponentError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("renderer: invalid component reference %q", e.DisplayName)
	}
	return fmt.Sprintf("renderer: invalid component reference %q: %s", e.DisplayName, e.Reason)
}

// Is lets errors.Is match ErrInvalidComponent.
func (e *InvalidComponentError) Is(target error) bool {
	return target == ErrInvalidComponent
}

// NoRendererError names the component no adapter accepted.
type NoRendererError struct {
	DisplayName string
}

func (e *NoRendererError) Error() string {
	return fmt.Sprintf("renderer: no renderer found for %q", e.DisplayName)
}

// Is lets errors.Is match ErrNoRenderer.
func (e *NoRendererError) Is(target error) bool {
	return target == ErrNoRenderer
}

// CheckError wraps the first error thrown by an adapter check when no
// installed adapter completed its check.
type CheckError struct {
	Adapter string
	Err     error
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("renderer: adapter %q check: %v", e.Adapter, e.Err)
}

func (e *CheckError) Unwrap() error { return e.Err }

// Is lets errors.Is match ErrAdapterCheck.
func (e *CheckError) Is(target error) bool {
	return target == ErrAdapterCheck
}

// RenderError wraps the matched adapter's render failure verbatim.
type RenderError struct {
	Adapter string
	Err     error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("renderer: adapter %q render: %v", e.Adapter, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Is lets errors.Is match ErrRender.
func (e *RenderError) Is(target error) bool {
	return target == ErrRender
}
