package musictext

import (
	"encoding/json"
	"io"
)

// EncodeJSON writes doc as the JSON tree renderers consume. indent selects
// two-space pretty printing.
func EncodeJSON(w io.Writer, doc *Document, indent bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(doc)
}
