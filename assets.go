package islands

import (
	"embed"
	"io/fs"
)

//go:embed assets/hydrate/*.js
var embeddedHydrateAssets embed.FS

// HydrateAssetsFS exposes the browser setup helpers that generated bootstrap
// scripts import, one module per hydration mode plus their shared runtime.
//
// Typical mount, matching hydrate.DefaultSetupPrefix:
//
//	mux.Handle("/_astro_frontend/hydrate/",
//	  http.StripPrefix("/_astro_frontend/hydrate/",
//	    http.FileServerFS(islands.HydrateAssetsFS()),
//	  ),
//	)
func HydrateAssetsFS() fs.FS {
	sub, err := fs.Sub(embeddedHydrateAssets, "assets/hydrate")
	if err != nil {
		return embeddedHydrateAssets
	}
	return sub
}
