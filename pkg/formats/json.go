package formats

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/Faultbox/midgard-heightfield/pkg/heightfield"
)

var json = jsoniter.Config{
	EscapeHTML:             false,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
}.Froze()

// GridJSON is the JSON document for an exported grid.
type GridJSON struct {
	Resolution int       `json:"resolution"`
	Samples    []float64 `json:"samples"`
}

// MarshalGridJSON encodes a grid as JSON.
func MarshalGridJSON(grid *heightfield.Grid) ([]byte, error) {
	return json.Marshal(GridJSON{
		Resolution: grid.Resolution(),
		Samples:    grid.Samples(),
	})
}

// UnmarshalGridJSON decodes a grid previously written by MarshalGridJSON.
func UnmarshalGridJSON(data []byte) (*heightfield.Grid, error) {
	var doc GridJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding grid JSON: %w", err)
	}
	return heightfield.NewGrid(doc.Resolution, doc.Samples)
}
