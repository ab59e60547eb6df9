package geo

import "github.com/rotisserie/eris"

// BBox is a geographic bounding box. It is always derived from point data or
// region configuration, never assembled field-by-field at call sites.
type BBox struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLon float64 `json:"min_lon"`
	MaxLon float64 `json:"max_lon"`
}

// BoundingBox returns the componentwise min/max box of points.
func BoundingBox(points []Point) (BBox, error) {
	if len(points) == 0 {
		return BBox{}, eris.Wrap(ErrEmptyInput, "bounding box of no points")
	}

	b := BBox{
		MinLat: points[0].Lat,
		MaxLat: points[0].Lat,
		MinLon: points[0].Lon,
		MaxLon: points[0].Lon,
	}
	for _, p := range points[1:] {
		if p.Lat < b.MinLat {
			b.MinLat = p.Lat
		}
		if p.Lat > b.MaxLat {
			b.MaxLat = p.Lat
		}
		if p.Lon < b.MinLon {
			b.MinLon = p.Lon
		}
		if p.Lon > b.MaxLon {
			b.MaxLon = p.Lon
		}
	}
	return b, nil
}

// Contains reports whether p falls within the box, bounds inclusive. A point
// exactly on a shared edge between two adjacent boxes is contained by both.
func (b BBox) Contains(p Point) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat &&
		p.Lon >= b.MinLon && p.Lon <= b.MaxLon
}

// Center returns the midpoint of the box.
func (b BBox) Center() Point {
	return Point{
		Lat: (b.MinLat + b.MaxLat) / 2,
		Lon: (b.MinLon + b.MaxLon) / 2,
	}
}

// Validate checks the box has in-range coordinates and positive extent.
func (b BBox) Validate() error {
	for _, p := range []Point{{Lat: b.MinLat, Lon: b.MinLon}, {Lat: b.MaxLat, Lon: b.MaxLon}} {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	if b.MinLat >= b.MaxLat || b.MinLon >= b.MaxLon {
		return eris.Wrapf(ErrInvalidCoordinate, "empty extent (%v..%v, %v..%v)",
			b.MinLat, b.MaxLat, b.MinLon, b.MaxLon)
	}
	return nil
}
