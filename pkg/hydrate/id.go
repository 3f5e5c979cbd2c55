package hydrate

import (
	"encoding/hex"
	"html"

	"golang.org/x/crypto/blake2b"
)

const astroIDSize = 16

// AstroID derives the hydration id from rendered markup. Identical markup
// always yields the same id, so visually identical instances share one.
func AstroID(markup string) string {
	h, err := blake2b.New(astroIDSize, nil)
	if err != nil {
		// Only reachable with an invalid size or key.
		panic(err)
	}
	h.Write([]byte(markup))
	return hex.EncodeToString(h.Sum(nil))
}

// WrapRoot wraps markup in the root element the bootstrap script targets.
func WrapRoot(astroID, markup string) string {
	return `<astro-root uid="` + html.EscapeString(astroID) + `">` + markup + `</astro-root>`
}
