// Package regrid resamples fields between lon/lat swaths, replacing what a
// geospatial resampling library provides in the reference pipeline: a k-d
// tree nearest-neighbor lookup with a radius of influence in meters.
package regrid

import (
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/galina-cira/ProxyVis/internal/field"
)

// DefaultRadiusOfInfluenceM is the default search radius. Source points
// farther than this from a destination pixel do not contribute; the pixel
// gets the fill value.
const DefaultRadiusOfInfluenceM = 10000.0

const earthRadiusM = 6371000.0

// Options control a resampling run. The zero value means the 10 km default
// radius and NaN fill.
type Options struct {
	RadiusOfInfluenceM float64
	FillValue          float64 // used when zero-valued Fill is false
	Fill               bool    // set to use FillValue instead of NaN
}

func (o Options) radius() float64 {
	if o.RadiusOfInfluenceM > 0 {
		return o.RadiusOfInfluenceM
	}
	return DefaultRadiusOfInfluenceM
}

func (o Options) fill() float64 {
	if o.Fill {
		return o.FillValue
	}
	return math.NaN()
}

// swathPoint is one source pixel on the unit sphere scaled to meters, tagged
// with its index into the source data.
type swathPoint struct {
	x, y, z float64
	idx     int
}

func (p swathPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(swathPoint)
	switch d {
	case 0:
		return p.x - q.x
	case 1:
		return p.y - q.y
	default:
		return p.z - q.z
	}
}

func (p swathPoint) Dims() int { return 3 }

// Distance returns the squared Euclidean chord distance in meters².
func (p swathPoint) Distance(c kdtree.Comparable) float64 {
	q := c.(swathPoint)
	dx := p.x - q.x
	dy := p.y - q.y
	dz := p.z - q.z
	return dx*dx + dy*dy + dz*dz
}

type swathPoints []swathPoint

func (p swathPoints) Index(i int) kdtree.Comparable { return p[i] }

func (p swathPoints) Len() int { return len(p) }

func (p swathPoints) Pivot(d kdtree.Dim) int { return plane{points: p, dim: d}.Pivot() }

func (p swathPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

// plane sorts swathPoints along one dimension for tree construction.
type plane struct {
	points swathPoints
	dim    kdtree.Dim
}

func (p plane) Len() int { return len(p.points) }

func (p plane) Less(i, j int) bool { return p.points[i].Compare(p.points[j], p.dim) < 0 }

func (p plane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }

func (p plane) Slice(start, end int) kdtree.SortSlicer {
	p.points = p.points[start:end]
	return p
}

func (p plane) Swap(i, j int) { p.points[i], p.points[j] = p.points[j], p.points[i] }

// toCartesian projects geographic coordinates onto a sphere of Earth radius,
// so chord distances approximate great-circle distances in meters.
func toCartesian(lonDeg, latDeg float64) (x, y, z float64) {
	lon := lonDeg * math.Pi / 180.0
	lat := latDeg * math.Pi / 180.0
	cosLat := math.Cos(lat)
	x = earthRadiusM * cosLat * math.Cos(lon)
	y = earthRadiusM * cosLat * math.Sin(lon)
	z = earthRadiusM * math.Sin(lat)
	return x, y, z
}

// NearestNeighbor resamples data from the source swath onto the destination
// swath, assigning each destination pixel the value of the nearest source
// pixel within the radius of influence. Destination pixels with no source
// point in range, or with NaN coordinates, get the fill value.
func NearestNeighbor(srcLons, srcLats, data, dstLons, dstLats *field.Field, opts Options) (*field.Field, error) {
	if err := field.CheckSameShape("regrid source", srcLons, srcLats); err != nil {
		return nil, err
	}
	if err := field.CheckSameShape("regrid source", srcLons, data); err != nil {
		return nil, err
	}
	if err := field.CheckSameShape("regrid destination", dstLons, dstLats); err != nil {
		return nil, err
	}

	if identical(srcLons, srcLats, dstLons, dstLats) {
		return data.Clone(), nil
	}

	srcLonData := srcLons.Data()
	srcLatData := srcLats.Data()
	points := make(swathPoints, 0, len(srcLonData))
	for i := range srcLonData {
		if math.IsNaN(srcLonData[i]) || math.IsNaN(srcLatData[i]) {
			continue
		}
		x, y, z := toCartesian(srcLonData[i], srcLatData[i])
		points = append(points, swathPoint{x: x, y: y, z: z, idx: i})
	}

	fill := opts.fill()
	rows, cols := dstLons.Dims()
	out := make([]float64, rows*cols)

	if len(points) == 0 {
		for i := range out {
			out[i] = fill
		}
		return field.FromSlice(rows, cols, out), nil
	}

	tree := kdtree.New(points, false)
	srcData := data.Data()
	dstLonData := dstLons.Data()
	dstLatData := dstLats.Data()
	maxDistSq := opts.radius() * opts.radius()

	// Tree lookups are read-only; destination pixels are independent.
	field.ParallelRange(len(out), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			if math.IsNaN(dstLonData[i]) || math.IsNaN(dstLatData[i]) {
				out[i] = fill
				continue
			}
			x, y, z := toCartesian(dstLonData[i], dstLatData[i])
			got, distSq := tree.Nearest(swathPoint{x: x, y: y, z: z})
			if got == nil || distSq > maxDistSq {
				out[i] = fill
				continue
			}
			out[i] = srcData[got.(swathPoint).idx]
		}
	})

	return field.FromSlice(rows, cols, out), nil
}

// identical reports whether the two swaths are the same grid, allowing the
// copy shortcut when no actual resampling is needed.
func identical(srcLons, srcLats, dstLons, dstLats *field.Field) bool {
	if !srcLons.SameShape(dstLons) {
		return false
	}
	sl, st := srcLons.Data(), srcLats.Data()
	dl, dt := dstLons.Data(), dstLats.Data()
	for i := range sl {
		if sl[i] != dl[i] || st[i] != dt[i] {
			return false
		}
	}
	return true
}
