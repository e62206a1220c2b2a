// Package composite implements the day/night combination orchestrator: it
// computes the nighttime ProxyVis and daytime adjusted-visible fields, blends
// them per pixel on the solar zenith angle, and resamples between the IR and
// visible grids as requested.
package composite

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/galina-cira/ProxyVis/internal/field"
	"github.com/galina-cira/ProxyVis/internal/metrics"
	"github.com/galina-cira/ProxyVis/internal/pvis"
	"github.com/galina-cira/ProxyVis/internal/regrid"
	"github.com/galina-cira/ProxyVis/internal/satinfo"
	"github.com/galina-cira/ProxyVis/internal/solargeo"
)

// Output resolution keywords.
const (
	OutputRes2km  = "2.0km"
	OutputRes05km = "0.5km"
	OutputResBoth = "both"
)

// visScalingFactor aligns the two halves before merging: adjusted visible
// reflectance spans 0–1.3 while normalized ProxyVis spans 0–1.
const visScalingFactor = 1.3

// ValidationError reports a bad enumerated request argument.
type ValidationError struct {
	Field   string
	Value   string
	Allowed []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q, must be one of %s",
		e.Field, e.Value, strings.Join(e.Allowed, ", "))
}

// ChannelSet is a scan's input mapping: field type → channel name → array.
// Arrays under bt_temp share the IR grid shape; arrays under radiances share
// the visible grid shape.
type ChannelSet map[satinfo.FieldType]map[string]*field.Field

// Request carries one scan's data and the algorithm selection for a single
// composite invocation. Inputs are treated as immutable.
type Request struct {
	Satellite string
	ScanStart time.Time
	Channels  ChannelSet

	// Channel-argument maps for the selected nighttime and visible
	// algorithms, usually from satinfo.MainArgs/SimpleArgs/VisArgs.
	PvisArgs satinfo.ArgMap
	VisArgs  satinfo.ArgMap

	// Navigation grids at the IR (2 km) and visible (0.5 km) resolutions.
	Lons2km, Lats2km   *field.Field
	Lons05km, Lats05km *field.Field

	// ScanIntervalMinutes is the full-disk scan duration; the solar zenith
	// angle is evaluated at scan start plus half this interval.
	ScanIntervalMinutes int

	PvisAlg string // one of the pvis.Night* names
	VisAlg  string // currently only pvis.VisDisp

	UseSavedParams   bool
	OutputResolution string // "2.0km", "0.5km", or "both"
}

// Result is one composite invocation's output. A resolution that was not
// requested has a nil field. Min and Max are the ProxyVis normalization
// range actually used.
type Result struct {
	Composite05km *field.Field
	Composite2km  *field.Field
	Min, Max      float64
}

// Combiner orchestrates composite generation. Safe for concurrent use; it
// holds only read-only configuration.
type Combiner struct {
	saved      satinfo.SavedParams
	logger     *slog.Logger
	regridOpts regrid.Options
}

// New creates a Combiner with the given saved normalization table.
func New(saved satinfo.SavedParams, logger *slog.Logger) *Combiner {
	return &Combiner{
		saved:  saved,
		logger: logger,
	}
}

// Combine produces the day/night composite(s) for one scan.
//
// Enumerated arguments are validated before any array data is touched. The
// nighttime and daytime branches are independent and run concurrently; the
// merge waits on both. Per-pixel invalid data propagates as NaN and never
// fails the invocation.
func (c *Combiner) Combine(req Request) (*Result, error) {
	outRes := strings.ToLower(strings.TrimSpace(req.OutputResolution))
	if outRes != OutputRes2km && outRes != OutputRes05km && outRes != OutputResBoth {
		return nil, &ValidationError{
			Field:   "output_resolution",
			Value:   req.OutputResolution,
			Allowed: []string{OutputRes2km, OutputRes05km, OutputResBoth},
		}
	}

	sat, err := satinfo.Parse(req.Satellite)
	if err != nil {
		return nil, err
	}

	nightFn, err := pvis.LookupNight(req.PvisAlg)
	if err != nil {
		return nil, err
	}
	visFn, err := pvis.LookupVis(req.VisAlg)
	if err != nil {
		return nil, err
	}

	savedRange, err := c.saved.Range(sat)
	if err != nil {
		return nil, err
	}

	nightArgs, err := resolveChannels(req.Channels, req.PvisArgs, req.PvisAlg)
	if err != nil {
		return nil, err
	}
	visArgs, err := resolveChannels(req.Channels, req.VisArgs, req.VisAlg)
	if err != nil {
		return nil, err
	}

	mid := solargeo.MidScanTime(req.ScanStart, req.ScanIntervalMinutes)

	start := time.Now()
	c.logger.Debug("generating composite",
		"satellite", sat,
		"pvis_alg", req.PvisAlg,
		"vis_alg", req.VisAlg,
		"output_resolution", outRes,
		"mid_scan", mid.UTC().Format(time.RFC3339),
	)

	// The two branches share no state; run them concurrently.
	var (
		wg       sync.WaitGroup
		night    pvis.NightResult
		nightErr error
		day      pvis.VisResult
		dayErr   error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		t0 := time.Now()
		night, nightErr = nightFn(savedRange, nightArgs, req.UseSavedParams)
		metrics.RecordStage("proxyvis", time.Since(t0))
	}()
	go func() {
		defer wg.Done()
		t0 := time.Now()
		day, dayErr = visFn(mid, req.Lons05km, req.Lats05km, visArgs)
		metrics.RecordStage("vis_adjust", time.Since(t0))
	}()
	wg.Wait()

	if nightErr != nil {
		metrics.RecordCompositeError(string(sat))
		return nil, nightErr
	}
	if dayErr != nil {
		metrics.RecordCompositeError(string(sat))
		return nil, dayErr
	}

	result := &Result{Min: night.Min, Max: night.Max}

	if outRes == OutputRes05km || outRes == OutputResBoth {
		t0 := time.Now()
		pvis05km, err := regrid.NearestNeighbor(
			req.Lons2km, req.Lats2km, night.ProxyVis,
			req.Lons05km, req.Lats05km, c.regridOpts,
		)
		metrics.RecordStage("regrid", time.Since(t0))
		if err != nil {
			metrics.RecordCompositeError(string(sat))
			return nil, err
		}

		combined, err := mergeDayNight(pvis05km, day.Vis, mid, req.Lons05km, req.Lats05km)
		if err != nil {
			metrics.RecordCompositeError(string(sat))
			return nil, err
		}
		result.Composite05km = combined
	}

	if outRes == OutputRes2km || outRes == OutputResBoth {
		t0 := time.Now()
		vis2km, err := regrid.NearestNeighbor(
			req.Lons05km, req.Lats05km, day.Vis,
			req.Lons2km, req.Lats2km, c.regridOpts,
		)
		metrics.RecordStage("regrid", time.Since(t0))
		if err != nil {
			metrics.RecordCompositeError(string(sat))
			return nil, err
		}

		combined, err := mergeDayNight(night.ProxyVis, vis2km, mid, req.Lons2km, req.Lats2km)
		if err != nil {
			metrics.RecordCompositeError(string(sat))
			return nil, err
		}
		result.Composite2km = combined
	}

	duration := time.Since(start)
	metrics.RecordComposite(string(sat), req.PvisAlg, duration)
	c.logger.Debug("composite complete",
		"satellite", sat,
		"duration_ms", duration.Milliseconds(),
		"pvis_min", result.Min,
		"pvis_max", result.Max,
	)

	return result, nil
}

// resolveChannels builds the algorithm's argument mapping from the scan's
// channel set, failing when a required channel is absent.
func resolveChannels(channels ChannelSet, argMap satinfo.ArgMap, function string) (pvis.ChannelArgs, error) {
	args := make(pvis.ChannelArgs, len(argMap))
	for arg, ref := range argMap {
		byName := channels[ref.Type]
		f, ok := byName[ref.Channel]
		if !ok || f == nil {
			return nil, &pvis.MissingChannelError{Function: function, Argument: arg}
		}
		args[arg] = f
	}
	return args, nil
}

// mergeDayNight blends the two halves at one resolution: night pixels take
// the scaled ProxyVis value, day pixels the adjusted visible value. Pixels
// that end up non-finite (invalid SZA or invalid inputs on both sides) are
// filled with the composite's max.
func mergeDayNight(proxyVis, visDisp *field.Field, mid time.Time, lons, lats *field.Field) (*field.Field, error) {
	if err := field.CheckSameShape("day/night merge", proxyVis, visDisp); err != nil {
		return nil, err
	}
	if err := field.CheckSameShape("day/night merge", proxyVis, lons); err != nil {
		return nil, err
	}

	t0 := time.Now()
	defer func() { metrics.RecordStage("merge", time.Since(t0)) }()

	sza, err := solargeo.ZenithAngleGrid(mid, lons, lats)
	if err != nil {
		return nil, err
	}

	pv := proxyVis.Data()
	vd := visDisp.Data()
	zen := sza.Data()
	rows, cols := proxyVis.Dims()
	out := make([]float64, len(pv))

	field.ParallelRange(len(out), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			switch {
			case solargeo.IsNight(zen[i]):
				out[i] = visScalingFactor * pv[i]
			case solargeo.IsDay(zen[i]):
				out[i] = vd[i]
			default:
				out[i] = math.NaN()
			}
		}
	})

	combined := field.FromSlice(rows, cols, out)

	// Residual invalid pixels would show as black dots; fill with the max.
	max := combined.Max()
	if !math.IsNaN(max) {
		for i, v := range out {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				out[i] = max
			}
		}
	}

	return combined, nil
}
