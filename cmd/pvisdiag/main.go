// pvisdiag runs the GeoProxyVis pipeline over a synthetic full-disk scene and
// prints per-stage results. Useful for eyeballing the pipeline without real
// satellite data or a reader.
package main

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/galina-cira/ProxyVis/internal/composite"
	"github.com/galina-cira/ProxyVis/internal/field"
	"github.com/galina-cira/ProxyVis/internal/satinfo"
	"github.com/galina-cira/ProxyVis/internal/solargeo"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	saved := satinfo.DefaultSavedParams()
	if path := os.Getenv("PVIS_SAVED_PARAMS"); path != "" {
		var err error
		saved, err = satinfo.LoadSavedParams(path)
		if err != nil {
			logger.Error("invalid saved params file", "path", path, "error", err)
			os.Exit(1)
		}
		logger.Info("loaded saved params overrides", "path", path)
	}

	const (
		irSize  = 128
		visSize = 256
	)

	scanStart := time.Date(2023, 3, 21, 17, 0, 0, 0, time.UTC)
	lons2km, lats2km := syntheticGrid(irSize, -60, 60, -55, 55)
	lons05km, lats05km := syntheticGrid(visSize, -60, 60, -55, 55)

	mainArgs, err := satinfo.MainArgs(satinfo.GOES16)
	if err != nil {
		fmt.Println("ERROR resolving main args:", err)
		os.Exit(1)
	}
	visArgs, err := satinfo.VisArgs(satinfo.GOES16)
	if err != nil {
		fmt.Println("ERROR resolving vis args:", err)
		os.Exit(1)
	}

	req := composite.Request{
		Satellite: string(satinfo.GOES16),
		ScanStart: scanStart,
		Channels: composite.ChannelSet{
			satinfo.BTTemp: {
				"C07": syntheticBT(irSize, 285, 40),
				"C11": syntheticBT(irSize, 282, 38),
				"C13": syntheticBT(irSize, 280, 42),
				"C15": syntheticBT(irSize, 278, 41),
			},
			satinfo.Radiances: {
				"C02": syntheticReflectance(visSize),
			},
		},
		PvisArgs:            mainArgs,
		VisArgs:             visArgs,
		Lons2km:             lons2km,
		Lats2km:             lats2km,
		Lons05km:            lons05km,
		Lats05km:            lats05km,
		ScanIntervalMinutes: 10,
		PvisAlg:             "nighttime_pvis_main_two_eq",
		VisAlg:              "vis_disp_sza",
		UseSavedParams:      true,
		OutputResolution:    composite.OutputResBoth,
	}

	start := time.Now()
	result, err := composite.New(saved, logger).Combine(req)
	if err != nil {
		fmt.Println("ERROR generating composite:", err)
		os.Exit(1)
	}
	fmt.Printf("Composite generated in %v\n", time.Since(start))
	fmt.Printf("ProxyVis normalization range: min=%.3f max=%.3f\n", result.Min, result.Max)

	printStats("0.5 km composite", result.Composite05km)
	printStats("2.0 km composite", result.Composite2km)

	mid := solargeo.MidScanTime(scanStart, 10)
	sza, err := solargeo.ZenithAngleGrid(mid, lons2km, lats2km)
	if err != nil {
		fmt.Println("ERROR computing SZA:", err)
		os.Exit(1)
	}
	var day, night int
	for _, v := range sza.Data() {
		if solargeo.IsNight(v) {
			night++
		} else if solargeo.IsDay(v) {
			day++
		}
	}
	fmt.Printf("Day/night split at 2 km: %d day, %d night pixels\n", day, night)
}

// syntheticGrid builds size×size lon/lat grids spanning the given extents.
func syntheticGrid(size int, lonMin, lonMax, latMin, latMax float64) (lons, lats *field.Field) {
	lons = field.New(size, size)
	lats = field.New(size, size)
	for i := 0; i < size; i++ {
		lat := latMax - (latMax-latMin)*float64(i)/float64(size-1)
		for j := 0; j < size; j++ {
			lon := lonMin + (lonMax-lonMin)*float64(j)/float64(size-1)
			lons.Set(i, j, lon)
			lats.Set(i, j, lat)
		}
	}
	return lons, lats
}

// syntheticBT builds a brightness-temperature field with a smooth gradient
// and a cold "cloud" blob, in Kelvin.
func syntheticBT(size int, base, amplitude float64) *field.Field {
	f := field.New(size, size)
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			x := float64(j) / float64(size-1)
			y := float64(i) / float64(size-1)
			v := base - amplitude*math.Exp(-((x-0.3)*(x-0.3)+(y-0.4)*(y-0.4))/0.02)
			v += 5 * math.Sin(6*x) * math.Cos(4*y)
			f.Set(i, j, v)
		}
	}
	return f
}

// syntheticReflectance builds a visible reflectance field in [0, 1].
func syntheticReflectance(size int) *field.Field {
	f := field.New(size, size)
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			x := float64(j) / float64(size-1)
			y := float64(i) / float64(size-1)
			v := 0.25 + 0.6*math.Exp(-((x-0.3)*(x-0.3)+(y-0.4)*(y-0.4))/0.02)
			f.Set(i, j, v)
		}
	}
	return f
}

func printStats(name string, f *field.Field) {
	if f == nil {
		fmt.Printf("%s: not requested\n", name)
		return
	}
	rows, cols := f.Dims()
	fmt.Printf("%s: %dx%d min=%.3f max=%.3f\n", name, rows, cols, f.Min(), f.Max())
}
