// Package geo provides the geometry primitives shared by the grid, boundary,
// and scorer packages: great-circle distance, bounding boxes, planar polygon
// area, and point-in-polygon tests.
//
// All coordinates are WGS84 degrees. Area calculations use an equirectangular
// approximation anchored at a reference latitude, which is only valid for
// city-scale regions.
package geo

import (
	"math"

	"github.com/rotisserie/eris"
)

// Taxonomy errors. Callers match these with eris.Is.
var (
	// ErrEmptyInput indicates that at least one point or segment was required.
	ErrEmptyInput = eris.New("geo: empty input")

	// ErrInvalidCoordinate indicates a non-finite or out-of-range lat/lon.
	ErrInvalidCoordinate = eris.New("geo: invalid coordinate")

	// ErrDegenerateGeometry indicates a ring that collapses to fewer than
	// three distinct points after cleaning.
	ErrDegenerateGeometry = eris.New("geo: degenerate geometry")
)

const (
	// EarthRadiusKm is the mean Earth radius used for haversine distance.
	EarthRadiusKm = 6371.0

	// KmPerDegreeLat is the approximate length of one degree of latitude.
	KmPerDegreeLat = 111.0

	// CoordMatchToleranceDeg is the default tolerance for treating two
	// coordinates as the same point (~10 m at mid-latitudes).
	CoordMatchToleranceDeg = 1e-4

	// MinAreaKm2 is the floor returned for degenerate polygon area input so
	// downstream density calculations never divide by zero.
	MinAreaKm2 = 0.01
)

// Point is an immutable lat/lon pair in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate checks that the point has finite, in-range coordinates.
func (p Point) Validate() error {
	if math.IsNaN(p.Lat) || math.IsInf(p.Lat, 0) || math.IsNaN(p.Lon) || math.IsInf(p.Lon, 0) {
		return eris.Wrapf(ErrInvalidCoordinate, "non-finite point (%v, %v)", p.Lat, p.Lon)
	}
	if p.Lat < -90 || p.Lat > 90 || p.Lon < -180 || p.Lon > 180 {
		return eris.Wrapf(ErrInvalidCoordinate, "out-of-range point (%v, %v)", p.Lat, p.Lon)
	}
	return nil
}

// NearlyEqual reports whether both components of p and q are within tol degrees.
func (p Point) NearlyEqual(q Point, tol float64) bool {
	return math.Abs(p.Lat-q.Lat) <= tol && math.Abs(p.Lon-q.Lon) <= tol
}

// Polygon is an ordered coordinate ring. When Closed is true the first and
// last points coincide within tolerance.
type Polygon struct {
	Ring   []Point `json:"ring"`
	Closed bool    `json:"closed"`
}

// DistanceKm returns the great-circle (haversine) distance between a and b
// in kilometers. It is symmetric, and zero for coincident points.
func DistanceKm(a, b Point) float64 {
	la1 := a.Lat * math.Pi / 180
	la2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	sinLat := math.Sin(dLat / 2)
	sinLon := math.Sin(dLon / 2)

	h := sinLat*sinLat + math.Cos(la1)*math.Cos(la2)*sinLon*sinLon
	return EarthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

// PolygonAreaKm2 computes the planar shoelace area of ring in degree-space
// and scales it to square kilometers using 111 km per degree of latitude and
// 111*cos(refLat) km per degree of longitude. refLat should be the northern
// bound of the enclosing region. Degenerate input (<3 points) returns
// MinAreaKm2 rather than zero.
func PolygonAreaKm2(ring []Point, refLat float64) float64 {
	if len(ring) < 3 {
		return MinAreaKm2
	}

	var sum float64
	n := len(ring)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += ring[i].Lon*ring[j].Lat - ring[j].Lon*ring[i].Lat
	}
	areaDeg2 := math.Abs(sum) / 2

	kmPerDegLon := KmPerDegreeLat * math.Cos(refLat*math.Pi/180)
	area := areaDeg2 * KmPerDegreeLat * kmPerDegLon
	if area < MinAreaKm2 {
		return MinAreaKm2
	}
	return area
}

// PointInPolygon reports whether p is inside ring using the standard
// ray-casting parity test. The ring need not be explicitly closed; the edge
// from the last point back to the first is implied. Membership of points
// exactly on the boundary is unspecified.
func PointInPolygon(p Point, ring []Point) bool {
	if len(ring) < 3 {
		return false
	}

	inside := false
	j := len(ring) - 1
	for i := 0; i < len(ring); i++ {
		if (ring[i].Lon > p.Lon) != (ring[j].Lon > p.Lon) &&
			p.Lat < (ring[j].Lat-ring[i].Lat)*(p.Lon-ring[i].Lon)/
				(ring[j].Lon-ring[i].Lon)+ring[i].Lat {
			inside = !inside
		}
		j = i
	}
	return inside
}
