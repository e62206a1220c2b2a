package pvis

import (
	"math"

	"github.com/galina-cira/ProxyVis/internal/field"
	"github.com/galina-cira/ProxyVis/internal/satinfo"
)

// GammaCorrection is applied after min/max scaling to make the nighttime and
// daytime halves of the composite look alike. See Chirokova et al. (2023).
const GammaCorrection = 1.0 / 1.5

// midRange is the output for every pixel when the scaling range is degenerate
// (max == min); scaling is undefined there, and a constant mid-range value
// avoids dividing by zero.
const midRange = 0.5

// Rescale linearly maps raw onto the unit range using the given (min, max).
// NaN pixels stay NaN. When max == min every finite pixel maps to the
// mid-range constant. The input is not modified.
func Rescale(raw *field.Field, min, max float64) *field.Field {
	span := max - min
	return raw.Apply(func(v float64) float64 {
		if math.IsNaN(v) {
			return v
		}
		if span == 0 {
			return midRange
		}
		return (v - min) / span
	})
}

// Normalize maps raw ProxyVis regression output onto the display range.
//
// Negative raw values (a handful of noisy 3.9 μm pixels on a typical full
// disk) are forced to zero both before the min/max estimate and in the output.
// With useSaved the supplied range is used as-is; otherwise min/max are taken
// from the data, ignoring NaN. Dynamic min/max is only meaningful on
// full-disk input. Remaining NaN pixels are set to the max so they do not
// show as black dots in the composite. The (min, max) actually used are
// returned for downstream persistence.
//
// The input field is not modified.
func Normalize(raw *field.Field, saved satinfo.Range, useSaved bool) (*field.Field, float64, float64) {
	clamped := raw.Clone()
	data := clamped.Data()

	negative := make([]bool, len(data))
	field.ParallelRange(len(data), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			if data[i] < 0 {
				negative[i] = true
				data[i] = 0
			}
		}
	})

	var min, max float64
	if useSaved {
		min, max = saved.Min, saved.Max
	} else {
		min, max = clamped.Min(), clamped.Max()
	}

	norm := Rescale(clamped, min, max)
	out := norm.Data()
	field.ParallelRange(len(out), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			v := out[i]
			if negative[i] {
				v = 0
			}
			if math.IsNaN(v) {
				v = max
			}
			out[i] = math.Pow(v, GammaCorrection)
		}
	})

	return norm, min, max
}
