package pvis

import (
	"math"
	"time"

	"github.com/galina-cira/ProxyVis/internal/field"
	"github.com/galina-cira/ProxyVis/internal/solargeo"
)

// Valid range for visible reflectance. Finite values outside it are clamped
// before adjustment.
const (
	visValidMin = 0.0
	visValidMax = 1.3
)

// VisResult is the output of the daytime visible adjustment.
type VisResult struct {
	// Vis is the adjusted reflectance, display-comparable to the nighttime
	// proxy. Valid only where the solar zenith angle indicates day.
	Vis *field.Field
	// Min and Max are the clamped reflectance data range, ignoring NaN.
	Min, Max float64
}

// VisFunc computes the daytime part of the composite from resolved channel
// arguments. t must be the mid-scan time; lons/lats are the grids at the
// visible channel's resolution.
type VisFunc func(t time.Time, lons, lats *field.Field, args ChannelArgs) (VisResult, error)

// VisDispSZA rescales visible reflectance by 1/cos(SZA) to correct the
// illumination falloff toward the day/night terminator, then takes the square
// root for display. This is the daytime half of GeoProxyVis.
func VisDispSZA(t time.Time, lons, lats *field.Field, args ChannelArgs) (VisResult, error) {
	chans, err := resolveArgs(VisDisp, args, "c02")
	if err != nil {
		return VisResult{}, err
	}
	c02 := chans[0]

	if err := field.CheckSameShape(VisDisp, lons, c02); err != nil {
		return VisResult{}, err
	}

	sza, err := solargeo.ZenithAngleGrid(t, lons, lats)
	if err != nil {
		return VisResult{}, err
	}

	refl := c02.Data()
	szaData := sza.Data()
	rows, cols := c02.Dims()
	out := make([]float64, len(refl))

	min, max := math.NaN(), math.NaN()
	field.ParallelRange(len(refl), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			v := refl[i]
			if !math.IsNaN(v) {
				if v > visValidMax {
					v = visValidMax
				} else if v < visValidMin {
					v = visValidMin
				}
			}
			out[i] = math.Sqrt(v / math.Cos(szaData[i]*math.Pi/180.0))
		}
	})

	// Data range of the clamped reflectance, reported for downstream use.
	for _, v := range refl {
		if math.IsNaN(v) {
			continue
		}
		if v > visValidMax {
			v = visValidMax
		} else if v < visValidMin {
			v = visValidMin
		}
		if math.IsNaN(min) || v < min {
			min = v
		}
		if math.IsNaN(max) || v > max {
			max = v
		}
	}

	return VisResult{
		Vis: field.FromSlice(rows, cols, out),
		Min: min,
		Max: max,
	}, nil
}
