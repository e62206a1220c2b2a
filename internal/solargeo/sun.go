// Package solargeo computes per-pixel solar zenith angles and the day/night
// classification used to combine the visible and proxy-visible halves of a
// composite.
package solargeo

import (
	"math"
	"time"

	"github.com/galina-cira/ProxyVis/internal/field"
)

// NightThresholdDeg is the solar zenith angle above which a pixel is treated
// as night. 89° rather than 90° keeps the daytime cos(SZA) correction away
// from its singularity at the terminator.
const NightThresholdDeg = 89.0

const (
	deg2rad = math.Pi / 180.0
	rad2deg = 180.0 / math.Pi
)

// sunRADec returns the Sun's right ascension and declination in radians for
// the given UTC time, using the low-precision ephemeris from the Astronomical
// Almanac (accurate to ~0.01°, good through 2050).
func sunRADec(t time.Time) (ra, dec float64) {
	n := JulianDate(t.UTC()) - j2000

	// Mean longitude and mean anomaly of the Sun, degrees.
	L := math.Mod(280.460+0.9856474*n, 360.0)
	g := math.Mod(357.528+0.9856003*n, 360.0) * deg2rad

	// Ecliptic longitude with equation-of-center correction, degrees.
	lambda := (L + 1.915*math.Sin(g) + 0.020*math.Sin(2*g)) * deg2rad

	// Obliquity of the ecliptic, degrees.
	eps := (23.439 - 0.0000004*n) * deg2rad

	ra = math.Atan2(math.Cos(eps)*math.Sin(lambda), math.Cos(lambda))
	dec = math.Asin(math.Sin(eps) * math.Sin(lambda))
	return ra, dec
}

// ZenithAngle returns the solar zenith angle in degrees at one point.
// Longitude is degrees East, latitude degrees North.
func ZenithAngle(t time.Time, lonDeg, latDeg float64) float64 {
	ra, dec := sunRADec(t)
	gmst := GMST(t)
	return zenithAt(gmst, ra, dec, lonDeg, latDeg)
}

func zenithAt(gmst, ra, dec, lonDeg, latDeg float64) float64 {
	// Local hour angle of the Sun.
	h := gmst + lonDeg*deg2rad - ra

	lat := latDeg * deg2rad
	cosZ := math.Sin(lat)*math.Sin(dec) + math.Cos(lat)*math.Cos(dec)*math.Cos(h)
	if cosZ > 1 {
		cosZ = 1
	} else if cosZ < -1 {
		cosZ = -1
	}
	return math.Acos(cosZ) * rad2deg
}

// ZenithAngleGrid returns the solar zenith angle in degrees for every pixel
// of the given longitude/latitude grids. The output has the grids' shape;
// pixels with NaN coordinates yield NaN. The grids must match shapes.
func ZenithAngleGrid(t time.Time, lons, lats *field.Field) (*field.Field, error) {
	if err := field.CheckSameShape("solar zenith grid", lons, lats); err != nil {
		return nil, err
	}

	// Sun position and sidereal time are constant across the grid; compute once.
	ra, dec := sunRADec(t)
	gmst := GMST(t)

	rows, cols := lons.Dims()
	lonData := lons.Data()
	latData := lats.Data()
	out := make([]float64, len(lonData))

	field.ParallelRange(len(lonData), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			lon, lat := lonData[i], latData[i]
			if math.IsNaN(lon) || math.IsNaN(lat) {
				out[i] = math.NaN()
				continue
			}
			out[i] = zenithAt(gmst, ra, dec, lon, lat)
		}
	})

	return field.FromSlice(rows, cols, out), nil
}

// MidScanTime returns the scan start time advanced by half the scan interval.
// Full-disk scans take minutes; the mid-scan time gives the SZA most
// representative of the whole disk.
func MidScanTime(start time.Time, minutesInterval int) time.Time {
	return start.Add(time.Duration(minutesInterval) * time.Minute / 2)
}

// IsDay reports whether the zenith angle classifies a pixel as day.
// A pixel exactly at the threshold belongs to the day side.
func IsDay(szaDeg float64) bool {
	return szaDeg <= NightThresholdDeg
}

// IsNight reports whether the zenith angle classifies a pixel as night.
// NaN is neither day nor night.
func IsNight(szaDeg float64) bool {
	return szaDeg > NightThresholdDeg
}
