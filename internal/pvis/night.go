// Package pvis implements the ProxyVis radiometric algorithms: the four
// nighttime infrared regressions, the daytime visible adjustment, and the
// min/max display normalization shared by all of them.
package pvis

import (
	"math"

	"github.com/galina-cira/ProxyVis/internal/field"
	"github.com/galina-cira/ProxyVis/internal/satinfo"
)

// minLogVal floors the channel-difference term before the log so noisy
// near-zero differences do not blow up to large negative values.
const minLogVal = 3e-05

// lowCloudThresholdK separates the low-cloud and high-cloud regression
// branches on the 3.9 μm brightness temperature.
const lowCloudThresholdK = 273.0

// Regression coefficients, in the order [b0, b1, b2, b3] matching the terms
// b0*|c13-c15|^0.4 + b1*ln|c11-c07| + b2*c07^5 + b3.
var (
	// main two-equation: low clouds (c07 >= threshold).
	mainTwoLow = [4]float64{-2.26927370e-02, -2.78297171e-02, -3.62361624e-13, 1.01373644e00}
	// main two-equation: high clouds.
	mainTwoHigh = [4]float64{-6.59761768e-02, -1.43734340e-02, -2.73490168e-13, 8.64012688e-01}
	// main one-equation: all clouds.
	mainOne = [4]float64{-3.44571376e-02, -2.50124844e-02, -2.95821592e-13, 8.82291378e-01}
)

// Simple (single-channel) coefficients in the order [b0, b1] matching
// b0*c07^5 + b1.
var (
	simpleOne     = [2]float64{-3.04491517e-13, 8.16054268e-01}
	simpleTwoLow  = [2]float64{-3.87681489e-13, 9.92978382e-01}
	simpleTwoHigh = [2]float64{-2.99123569e-13, 7.98853747e-01}
)

// ChannelArgs maps algorithm argument names (c07, c11, ...) to the channel
// fields resolved for them.
type ChannelArgs map[string]*field.Field

// NightResult is the output of one nighttime ProxyVis computation.
type NightResult struct {
	// ProxyVis is the normalized, gamma-corrected proxy-visible field,
	// valid only where the true solar zenith angle indicates night.
	ProxyVis *field.Field
	// Regression is the raw regression output before normalization,
	// kept for development and tuning.
	Regression *field.Field
	// Min and Max are the normalization range actually used.
	Min, Max float64
}

// NightFunc computes a nighttime ProxyVis field from resolved channel
// arguments. saved supplies the per-satellite normalization range used when
// useSaved is true.
type NightFunc func(saved satinfo.Range, args ChannelArgs, useSaved bool) (NightResult, error)

// resolveArgs pulls the named arguments out of args in order, failing with
// MissingChannelError on an absent argument and ShapeMismatchError when the
// channels disagree on grid shape.
func resolveArgs(function string, args ChannelArgs, names ...string) ([]*field.Field, error) {
	out := make([]*field.Field, 0, len(names))
	var first *field.Field
	for _, n := range names {
		f, ok := args[n]
		if !ok || f == nil {
			return nil, &MissingChannelError{Function: function, Argument: n}
		}
		if first == nil {
			first = f
		} else if err := field.CheckSameShape(function, first, f); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

// mainRegression evaluates the four-term regression for one pixel.
func mainRegression(p [4]float64, v07, v11, v13, v15 float64) float64 {
	diff := math.Abs(v11 - v07)
	if diff < minLogVal {
		diff = minLogVal
	}
	return p[3] +
		p[2]*math.Pow(v07, 5) +
		p[1]*math.Log(diff) +
		p[0]*math.Pow(math.Abs(v13-v15), 0.4)
}

// MainTwoEq is the main multi-channel two-regressions ProxyVis algorithm used
// in National Weather Service operations. Pixels are split into low and high
// cloud classes on the 3.9 μm brightness temperature, each with its own
// regression fit.
func MainTwoEq(saved satinfo.Range, args ChannelArgs, useSaved bool) (NightResult, error) {
	chans, err := resolveArgs(NightMainTwoEq, args, "c07", "c11", "c13", "c15")
	if err != nil {
		return NightResult{}, err
	}
	c07, c11, c13, c15 := chans[0].Data(), chans[1].Data(), chans[2].Data(), chans[3].Data()

	rows, cols := chans[0].Dims()
	raw := make([]float64, len(c07))
	field.ParallelRange(len(c07), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			// NaN c07 compares false and falls through to the high-cloud
			// branch, where the arithmetic propagates the NaN.
			p := mainTwoHigh
			if c07[i] >= lowCloudThresholdK {
				p = mainTwoLow
			}
			raw[i] = mainRegression(p, c07[i], c11[i], c13[i], c15[i])
		}
	})

	return finishNight(field.FromSlice(rows, cols, raw), saved, useSaved), nil
}

// MainOneEq is the multi-channel single-regression ProxyVis algorithm. Not
// the operational algorithm; see MainTwoEq for that.
func MainOneEq(saved satinfo.Range, args ChannelArgs, useSaved bool) (NightResult, error) {
	chans, err := resolveArgs(NightMainOneEq, args, "c07", "c11", "c13", "c15")
	if err != nil {
		return NightResult{}, err
	}
	c07, c11, c13, c15 := chans[0].Data(), chans[1].Data(), chans[2].Data(), chans[3].Data()

	rows, cols := chans[0].Dims()
	raw := make([]float64, len(c07))
	field.ParallelRange(len(c07), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			raw[i] = mainRegression(mainOne, c07[i], c11[i], c13[i], c15[i])
		}
	})

	return finishNight(field.FromSlice(rows, cols, raw), saved, useSaved), nil
}

// SimpleTwoEq is the single-channel two-regressions ProxyVis algorithm.
func SimpleTwoEq(saved satinfo.Range, args ChannelArgs, useSaved bool) (NightResult, error) {
	chans, err := resolveArgs(NightSimpleTwoEq, args, "c07")
	if err != nil {
		return NightResult{}, err
	}
	c07 := chans[0].Data()

	rows, cols := chans[0].Dims()
	raw := make([]float64, len(c07))
	field.ParallelRange(len(c07), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			p := simpleTwoHigh
			if c07[i] >= lowCloudThresholdK {
				p = simpleTwoLow
			}
			raw[i] = p[1] + p[0]*math.Pow(c07[i], 5)
		}
	})

	return finishNight(field.FromSlice(rows, cols, raw), saved, useSaved), nil
}

// SimpleOneEq is the single-channel single-regression ProxyVis algorithm.
func SimpleOneEq(saved satinfo.Range, args ChannelArgs, useSaved bool) (NightResult, error) {
	chans, err := resolveArgs(NightSimpleOneEq, args, "c07")
	if err != nil {
		return NightResult{}, err
	}
	c07 := chans[0].Data()

	rows, cols := chans[0].Dims()
	raw := make([]float64, len(c07))
	field.ParallelRange(len(c07), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			raw[i] = simpleOne[1] + simpleOne[0]*math.Pow(c07[i], 5)
		}
	})

	return finishNight(field.FromSlice(rows, cols, raw), saved, useSaved), nil
}

func finishNight(raw *field.Field, saved satinfo.Range, useSaved bool) NightResult {
	normalized, min, max := Normalize(raw, saved, useSaved)
	return NightResult{
		ProxyVis:   normalized,
		Regression: raw,
		Min:        min,
		Max:        max,
	}
}
