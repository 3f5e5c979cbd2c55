package template

import (
	"io"
)

// TemplateRenderer is the engine contract shared by the hydration script
// generator and the page layout. Every render method returns the output and
// also writes it to any writers passed in.
type TemplateRenderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(templateContent string, data any, out ...io.Writer) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}
