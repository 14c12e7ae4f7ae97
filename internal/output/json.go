package output

import (
	"encoding/json"
	"io"

	"github.com/eweitz/homology/internal/homology"
)

// WriteJSON writes the full result set as indented JSON.
func WriteJSON(w io.Writer, results []homology.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}
