package islands

import (
	"io/fs"

	"github.com/goliatone/go-islands/pkg/hydrate"
	"github.com/goliatone/go-islands/pkg/page"
)

// HydrateTemplates exposes the built-in bootstrap script templates so callers
// can copy them and pass a modified bundle through hydrate.WithTemplatesFS.
func HydrateTemplates() fs.FS {
	return hydrate.TemplatesFS()
}

// PageTemplates exposes the built-in page layout.
func PageTemplates() fs.FS {
	return page.TemplatesFS()
}
