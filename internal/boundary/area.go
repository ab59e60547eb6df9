package boundary

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/geodensity/internal/geo"
)

// NamedArea is a reconstructed neighborhood: a closed boundary ring with its
// derived bounds and approximate area. Built once per reconstruction and
// immutable afterward; a data refresh replaces areas wholesale.
type NamedArea struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Boundary      geo.Polygon `json:"boundary"`
	Bounds        geo.BBox    `json:"bounds"`
	AreaKm2       float64     `json:"area_km2"`
	SegmentsUsed  int         `json:"segments_used"`
	SegmentsTotal int         `json:"segments_total"`
}

// BuildArea reconstructs a NamedArea from one segment group. The area
// calculation uses the ring's northern bound as its reference latitude.
func BuildArea(group SegmentGroup, rec *Reconstructor) (*NamedArea, error) {
	result, err := rec.Assemble(group.Segments)
	if err != nil {
		return nil, eris.Wrapf(err, "boundary: area %q", group.Name)
	}

	bounds, err := geo.BoundingBox(result.Ring.Ring)
	if err != nil {
		return nil, eris.Wrapf(err, "boundary: area %q bounds", group.Name)
	}

	return &NamedArea{
		ID:            group.ID,
		Name:          group.Name,
		Boundary:      result.Ring,
		Bounds:        bounds,
		AreaKm2:       geo.PolygonAreaKm2(result.Ring.Ring, bounds.MaxLat),
		SegmentsUsed:  result.SegmentsUsed,
		SegmentsTotal: result.SegmentsTotal,
	}, nil
}

// Contains reports whether p lies inside the area's boundary ring.
func (a *NamedArea) Contains(p geo.Point) bool {
	return geo.PointInPolygon(p, a.Boundary.Ring)
}
