// Package satinfo holds the static per-satellite configuration that feeds the
// ProxyVis pipeline: the supported satellite set, saved normalization ranges,
// and the maps from instrument channel names to algorithm argument names.
package satinfo

import "fmt"

// Satellite identifies a supported geostationary satellite.
type Satellite string

const (
	GOES16     Satellite = "goes16"
	GOES17     Satellite = "goes17"
	GOES18     Satellite = "goes18"
	Himawari8  Satellite = "himawari8"
	Himawari9  Satellite = "himawari9"
	Meteosat9  Satellite = "meteosat-9"
	Meteosat10 Satellite = "meteosat-10"
	Meteosat11 Satellite = "meteosat-11"
)

// Satellites lists every supported satellite.
var Satellites = []Satellite{
	GOES16, GOES17, GOES18,
	Himawari8, Himawari9,
	Meteosat9, Meteosat10, Meteosat11,
}

// UnsupportedSatelliteError reports a satellite name outside the supported set.
type UnsupportedSatelliteError struct {
	Name string
}

func (e *UnsupportedSatelliteError) Error() string {
	return fmt.Sprintf("satellite %q is not supported", e.Name)
}

// Parse sanitizes a satellite name (lowercase, trimmed) and validates it
// against the supported set.
func Parse(name string) (Satellite, error) {
	s := Satellite(sanitize(name))
	for _, known := range Satellites {
		if s == known {
			return s, nil
		}
	}
	return "", &UnsupportedSatelliteError{Name: name}
}

// FieldType is the physical calibration of a channel array.
type FieldType string

const (
	BTTemp    FieldType = "bt_temp"
	Radiances FieldType = "radiances"
)

// ChannelRef locates one channel array in a scan's input mapping.
type ChannelRef struct {
	Type    FieldType
	Channel string
}

// ArgMap maps an algorithm argument name (c07, c11, ...) to the channel that
// supplies it. One map per (instrument, algorithm family); pure configuration.
type ArgMap map[string]ChannelRef

// clone keeps the package tables immutable from the caller's point of view.
func (m ArgMap) clone() ArgMap {
	c := make(ArgMap, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// Channel-to-argument tables per instrument. Channel names are the ones the
// common satellite readers use (ABI C-numbers, AHI B-numbers, SEVIRI IR/VIS
// band labels).
var (
	abiMain = ArgMap{
		"c07": {BTTemp, "C07"},
		"c11": {BTTemp, "C11"},
		"c13": {BTTemp, "C13"},
		"c15": {BTTemp, "C15"},
	}
	abiSimple = ArgMap{"c07": {BTTemp, "C07"}}
	abiVis    = ArgMap{"c02": {Radiances, "C02"}}

	ahiMain = ArgMap{
		"c07": {BTTemp, "B07"},
		"c11": {BTTemp, "B11"},
		"c13": {BTTemp, "B13"},
		"c15": {BTTemp, "B15"},
	}
	ahiSimple = ArgMap{"c07": {BTTemp, "B07"}}
	ahiVis    = ArgMap{"c02": {Radiances, "B03"}}

	seviriMain = ArgMap{
		"c07": {BTTemp, "IR_039"},
		"c11": {BTTemp, "IR_087"},
		"c13": {BTTemp, "IR_108"},
		"c15": {BTTemp, "IR_120"},
	}
	seviriSimple = ArgMap{"c07": {BTTemp, "IR_039"}}
	seviriVis    = ArgMap{"c02": {Radiances, "VIS006"}}
)

// instrument groups the three argument maps of one imager family.
type instrument struct {
	main, simple, vis ArgMap
}

var instruments = map[Satellite]instrument{
	GOES16:     {abiMain, abiSimple, abiVis},
	GOES17:     {abiMain, abiSimple, abiVis},
	GOES18:     {abiMain, abiSimple, abiVis},
	Himawari8:  {ahiMain, ahiSimple, ahiVis},
	Himawari9:  {ahiMain, ahiSimple, ahiVis},
	Meteosat9:  {seviriMain, seviriSimple, seviriVis},
	Meteosat10: {seviriMain, seviriSimple, seviriVis},
	Meteosat11: {seviriMain, seviriSimple, seviriVis},
}

// MainArgs returns the channel map for the multi-channel ProxyVis algorithms.
func MainArgs(sat Satellite) (ArgMap, error) {
	inst, ok := instruments[sat]
	if !ok {
		return nil, &UnsupportedSatelliteError{Name: string(sat)}
	}
	return inst.main.clone(), nil
}

// SimpleArgs returns the channel map for the single-channel ProxyVis algorithms.
func SimpleArgs(sat Satellite) (ArgMap, error) {
	inst, ok := instruments[sat]
	if !ok {
		return nil, &UnsupportedSatelliteError{Name: string(sat)}
	}
	return inst.simple.clone(), nil
}

// VisArgs returns the channel map for the daytime visible algorithm.
func VisArgs(sat Satellite) (ArgMap, error) {
	inst, ok := instruments[sat]
	if !ok {
		return nil, &UnsupportedSatelliteError{Name: string(sat)}
	}
	return inst.vis.clone(), nil
}
