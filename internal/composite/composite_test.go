package composite

import (
	"errors"
	"log/slog"
	"math"
	"os"
	"testing"
	"time"

	"github.com/galina-cira/ProxyVis/internal/field"
	"github.com/galina-cira/ProxyVis/internal/pvis"
	"github.com/galina-cira/ProxyVis/internal/satinfo"
	"github.com/galina-cira/ProxyVis/internal/solargeo"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func testCombiner() *Combiner {
	return New(satinfo.DefaultSavedParams(), testLogger())
}

// nightRequest builds a small all-night scene: mid-scan 00:00 UTC near the
// prime meridian puts every pixel far beyond the 89° threshold. The same
// grids serve both resolutions so regridding reduces to a copy.
func nightRequest(btValue float64) Request {
	lons := field.FromSlice(2, 2, []float64{-0.02, -0.01, 0.01, 0.02})
	lats := field.FromSlice(2, 2, []float64{0.01, 0.01, -0.01, -0.01})

	// Scan start 23:55 + 10 min interval → mid-scan at midnight UTC.
	start := time.Date(2023, 3, 21, 23, 55, 0, 0, time.UTC)

	return Request{
		Satellite: "goes16",
		ScanStart: start,
		Channels: ChannelSet{
			satinfo.BTTemp: {
				"C07": field.Full(2, 2, btValue),
				"C11": field.Full(2, 2, btValue-1.5),
				"C13": field.Full(2, 2, btValue-3),
				"C15": field.Full(2, 2, btValue-5),
			},
			satinfo.Radiances: {
				"C02": field.Full(2, 2, 0.0),
			},
		},
		PvisArgs:            mustArgs(satinfo.MainArgs, satinfo.GOES16),
		VisArgs:             mustArgs(satinfo.VisArgs, satinfo.GOES16),
		Lons2km:             lons,
		Lats2km:             lats,
		Lons05km:            lons,
		Lats05km:            lats,
		ScanIntervalMinutes: 10,
		PvisAlg:             pvis.NightMainTwoEq,
		VisAlg:              pvis.VisDisp,
		UseSavedParams:      false,
		OutputResolution:    OutputResBoth,
	}
}

func mustArgs(fn func(satinfo.Satellite) (satinfo.ArgMap, error), sat satinfo.Satellite) satinfo.ArgMap {
	m, err := fn(sat)
	if err != nil {
		panic(err)
	}
	return m
}

func TestCombineValidatesBeforeComputing(t *testing.T) {
	c := testCombiner()

	// Grids and channels are nil: validation failures must fire before
	// anything touches them.
	_, err := c.Combine(Request{OutputResolution: "1.0km"})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
	if ve.Field != "output_resolution" {
		t.Errorf("error field = %q, want output_resolution", ve.Field)
	}

	_, err = c.Combine(Request{OutputResolution: OutputResBoth, Satellite: "goes19"})
	var use *satinfo.UnsupportedSatelliteError
	if !errors.As(err, &use) {
		t.Fatalf("error = %v, want *UnsupportedSatelliteError", err)
	}

	_, err = c.Combine(Request{OutputResolution: OutputResBoth, Satellite: "goes16", PvisAlg: "bogus"})
	var ufe *pvis.UnknownFunctionError
	if !errors.As(err, &ufe) {
		t.Fatalf("error = %v, want *UnknownFunctionError", err)
	}

	_, err = c.Combine(Request{
		OutputResolution: OutputResBoth,
		Satellite:        "goes16",
		PvisAlg:          pvis.NightMainTwoEq,
		VisAlg:           "bogus",
	})
	if !errors.As(err, &ufe) {
		t.Fatalf("error = %v, want *UnknownFunctionError for vis alg", err)
	}
}

func TestCombineOutputResolutionCaseInsensitive(t *testing.T) {
	req := nightRequest(250)
	req.OutputResolution = " BOTH "

	if _, err := testCombiner().Combine(req); err != nil {
		t.Fatalf("Combine with padded uppercase keyword: %v", err)
	}
}

func TestCombineMissingChannel(t *testing.T) {
	req := nightRequest(250)
	delete(req.Channels[satinfo.BTTemp], "C11")

	_, err := testCombiner().Combine(req)
	var mce *pvis.MissingChannelError
	if !errors.As(err, &mce) {
		t.Fatalf("error = %v, want *MissingChannelError", err)
	}
	if mce.Function != pvis.NightMainTwoEq || mce.Argument != "c11" {
		t.Errorf("error identifies %s/%s, want %s/c11", mce.Function, mce.Argument, pvis.NightMainTwoEq)
	}
}

func TestCombineShapeMismatch(t *testing.T) {
	req := nightRequest(250)
	req.Channels[satinfo.BTTemp]["C15"] = field.New(3, 3)

	_, err := testCombiner().Combine(req)
	var sme *field.ShapeMismatchError
	if !errors.As(err, &sme) {
		t.Fatalf("error = %v, want *field.ShapeMismatchError", err)
	}
}

func TestCombineOutputResolutionSelection(t *testing.T) {
	tests := []struct {
		res      string
		want05km bool
		want2km  bool
	}{
		{OutputRes05km, true, false},
		{OutputRes2km, false, true},
		{OutputResBoth, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.res, func(t *testing.T) {
			req := nightRequest(250)
			req.OutputResolution = tt.res

			result, err := testCombiner().Combine(req)
			if err != nil {
				t.Fatalf("Combine: %v", err)
			}

			if got := result.Composite05km != nil; got != tt.want05km {
				t.Errorf("Composite05km present = %v, want %v", got, tt.want05km)
			}
			if got := result.Composite2km != nil; got != tt.want2km {
				t.Errorf("Composite2km present = %v, want %v", got, tt.want2km)
			}
		})
	}
}

// TestCombineFullNight covers the uniform all-night scenario: a constant
// brightness-temperature scene at night must produce a constant composite
// equal to the scaled ProxyVis value, with min == max.
func TestCombineFullNight(t *testing.T) {
	req := nightRequest(250)

	result, err := testCombiner().Combine(req)
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}

	if result.Min != result.Max {
		t.Errorf("(min, max) = (%v, %v), want equal for uniform input", result.Min, result.Max)
	}

	// Uniform raw value → degenerate normalization → mid-range constant,
	// gamma-corrected, scaled by 1.3 on the night branch.
	want := visScalingFactor * math.Pow(0.5, pvis.GammaCorrection)
	for _, composite := range []*field.Field{result.Composite2km, result.Composite05km} {
		if composite == nil {
			t.Fatal("requested composite is nil")
		}
		for i, v := range composite.Data() {
			if math.Abs(v-want) > 1e-9 {
				t.Errorf("pixel %d = %v, want %v (night branch)", i, v, want)
			}
		}
	}
}

// TestCombineDayNightSelection builds a scene straddling the terminator and
// verifies each pixel takes the branch its solar zenith angle dictates.
func TestCombineDayNightSelection(t *testing.T) {
	// Mid-scan 06:00 UTC: subsolar longitude ≈ 90°E, terminator near the
	// prime meridian. Longitudes well east are day, well west are night.
	start := time.Date(2023, 3, 21, 5, 55, 0, 0, time.UTC)
	lons := field.FromSlice(1, 4, []float64{-120, -60, 60, 120})
	lats := field.FromSlice(1, 4, []float64{0, 0, 0, 0})

	req := Request{
		Satellite: "goes16",
		ScanStart: start,
		Channels: ChannelSet{
			satinfo.BTTemp: {
				"C07": field.Full(1, 4, 250.0),
				"C11": field.Full(1, 4, 248.0),
				"C13": field.Full(1, 4, 247.0),
				"C15": field.Full(1, 4, 245.0),
			},
			satinfo.Radiances: {
				"C02": field.Full(1, 4, 0.5),
			},
		},
		PvisArgs:            mustArgs(satinfo.MainArgs, satinfo.GOES16),
		VisArgs:             mustArgs(satinfo.VisArgs, satinfo.GOES16),
		Lons2km:             lons,
		Lats2km:             lats,
		Lons05km:            lons,
		Lats05km:            lats,
		ScanIntervalMinutes: 10,
		PvisAlg:             pvis.NightMainTwoEq,
		VisAlg:              pvis.VisDisp,
		UseSavedParams:      true,
		OutputResolution:    OutputRes2km,
	}

	result, err := testCombiner().Combine(req)
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}
	if result.Composite05km != nil {
		t.Error("Composite05km present for 2.0km-only request")
	}

	mid := solargeo.MidScanTime(start, 10)
	var sawDay, sawNight bool
	for j := 0; j < 4; j++ {
		sza := solargeo.ZenithAngle(mid, lons.At(0, j), lats.At(0, j))
		got := result.Composite2km.At(0, j)
		switch {
		case solargeo.IsNight(sza):
			sawNight = true
			// All-constant ProxyVis input: the night branch carries the
			// scaled normalized value, identical across night pixels.
			if math.IsNaN(got) {
				t.Errorf("night pixel %d is NaN", j)
			}
		case solargeo.IsDay(sza):
			sawDay = true
			want := math.Sqrt(0.5 / math.Cos(sza*math.Pi/180.0))
			if math.Abs(got-want) > 1e-9 {
				t.Errorf("day pixel %d = %v, want VIS value %v", j, got, want)
			}
		}
	}
	if !sawDay || !sawNight {
		t.Fatalf("scene did not straddle the terminator: day=%v night=%v", sawDay, sawNight)
	}

	// Night pixels must all carry the same scaled ProxyVis constant, and it
	// must differ from the day value at the same reflectance.
	nightVals := map[float64]bool{}
	for j := 0; j < 4; j++ {
		sza := solargeo.ZenithAngle(mid, lons.At(0, j), lats.At(0, j))
		if solargeo.IsNight(sza) {
			nightVals[result.Composite2km.At(0, j)] = true
		}
	}
	if len(nightVals) != 1 {
		t.Errorf("night pixels not uniform: %v", nightVals)
	}
}

func TestCombineCrossResolution(t *testing.T) {
	// IR at 2×2 and VIS at 4×4 over the same small extent; both outputs
	// must come back at their native shapes.
	irLons := field.FromSlice(2, 2, []float64{0, 0.01, 0, 0.01})
	irLats := field.FromSlice(2, 2, []float64{0.01, 0.01, 0, 0})

	visLons := field.New(4, 4)
	visLats := field.New(4, 4)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			visLons.Set(i, j, float64(j)*0.01/3)
			visLats.Set(i, j, 0.01-float64(i)*0.01/3)
		}
	}

	req := Request{
		Satellite: "himawari9",
		ScanStart: time.Date(2023, 3, 21, 23, 55, 0, 0, time.UTC),
		Channels: ChannelSet{
			satinfo.BTTemp: {
				"B07": field.Full(2, 2, 260.0),
			},
			satinfo.Radiances: {
				"B03": field.Full(4, 4, 0.4),
			},
		},
		PvisArgs:            mustArgs(satinfo.SimpleArgs, satinfo.Himawari9),
		VisArgs:             mustArgs(satinfo.VisArgs, satinfo.Himawari9),
		Lons2km:             irLons,
		Lats2km:             irLats,
		Lons05km:            visLons,
		Lats05km:            visLats,
		ScanIntervalMinutes: 10,
		PvisAlg:             pvis.NightSimpleOneEq,
		VisAlg:              pvis.VisDisp,
		UseSavedParams:      true,
		OutputResolution:    OutputResBoth,
	}

	result, err := testCombiner().Combine(req)
	if err != nil {
		t.Fatalf("Combine: %v", err)
	}

	rows, cols := result.Composite05km.Dims()
	if rows != 4 || cols != 4 {
		t.Errorf("0.5 km composite %dx%d, want 4x4", rows, cols)
	}
	rows, cols = result.Composite2km.Dims()
	if rows != 2 || cols != 2 {
		t.Errorf("2 km composite %dx%d, want 2x2", rows, cols)
	}

	// Saved-params normalization range for himawari9.
	if result.Min != 0.0 || result.Max != 0.79 {
		t.Errorf("(min, max) = (%v, %v), want saved (0, 0.79)", result.Min, result.Max)
	}
}
