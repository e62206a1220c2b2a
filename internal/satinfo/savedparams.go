package satinfo

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Range is a saved (min, max) normalization pair for one satellite.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Saved normalization values estimated from typical full-disk data. Dynamic
// normalization is only valid on full-disk input; sub-sector processing must
// use these instead.
var savedRanges = map[Satellite]Range{
	GOES16:     {Min: 0.0, Max: 0.78},
	GOES17:     {Min: 0.0, Max: 0.84},
	GOES18:     {Min: 0.0, Max: 0.84},
	Himawari8:  {Min: 0.0, Max: 0.79},
	Himawari9:  {Min: 0.0, Max: 0.79},
	Meteosat9:  {Min: 0.0, Max: 0.78},
	Meteosat10: {Min: 0.0, Max: 0.78},
	Meteosat11: {Min: 0.0, Max: 0.78},
}

// SavedParams is a read-only lookup table of normalization ranges keyed by
// satellite. Build one at process start and share it; nothing mutates it
// after construction.
type SavedParams map[Satellite]Range

// DefaultSavedParams returns a copy of the built-in operational table.
func DefaultSavedParams() SavedParams {
	p := make(SavedParams, len(savedRanges))
	for k, v := range savedRanges {
		p[k] = v
	}
	return p
}

// LoadSavedParams reads a JSON file of satellite→range overrides and merges
// it over the built-in table. The file maps satellite names to {"min": x,
// "max": y} objects; unknown satellite names are rejected.
func LoadSavedParams(path string) (SavedParams, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading saved params: %w", err)
	}

	var raw map[string]Range
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing saved params %s: %w", path, err)
	}

	params := DefaultSavedParams()
	for name, r := range raw {
		sat, err := Parse(name)
		if err != nil {
			return nil, fmt.Errorf("saved params %s: %w", path, err)
		}
		if r.Max <= r.Min {
			return nil, fmt.Errorf("saved params %s: satellite %s: max %g <= min %g", path, sat, r.Max, r.Min)
		}
		params[sat] = r
	}
	return params, nil
}

// Range looks up the saved normalization pair for the given satellite.
func (p SavedParams) Range(sat Satellite) (Range, error) {
	r, ok := p[sat]
	if !ok {
		return Range{}, &UnsupportedSatelliteError{Name: string(sat)}
	}
	return r, nil
}

func sanitize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
