package hydrate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// SerializeProps renders props as a JavaScript literal that can be embedded
// verbatim inside an inline script. Values must be JSON encodable; funcs,
// channels and cycles are rejected.
func SerializeProps(props map[string]any) (string, error) {
	if props == nil {
		return "{}", nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(true)
	if err := enc.Encode(props); err != nil {
		return "", fmt.Errorf("hydrate: serialize props: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
