package gotemplate

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/flosch/pongo2/v6"
)

func registerDefaultFilters() {
	if !pongo2.FilterExists("jsstring") {
		_ = pongo2.RegisterFilter("jsstring", filterJSString)
	}
}

// filterJSString renders the input as a double-quoted JavaScript string
// literal that is safe inside an inline script element.
func filterJSString(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	quoted, err := QuoteJS(in.String())
	if err != nil {
		return nil, &pongo2.Error{Sender: "filter:jsstring", OrigError: err}
	}
	return pongo2.AsSafeValue(quoted), nil
}

// QuoteJS encodes s as a JSON string, which is also a valid JavaScript string
// literal. <, >, & and the U+2028/U+2029 separators are escaped.
func QuoteJS(s string) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(true)
	if err := enc.Encode(s); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
