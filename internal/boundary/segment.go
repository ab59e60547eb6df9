// Package boundary reconstructs closed neighborhood polygons from the
// fragmented line segments delivered by relation-based boundary sources.
// Segments arrive unordered and arbitrarily oriented; chaining them back
// into a ring is a best-effort graph-matching problem.
package boundary

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/geodensity/internal/geo"
)

// ErrUnreconstructable indicates that no usable ring could be connected from
// the supplied segments. Callers should fall back to an alternative area
// source such as the uniform grid.
var ErrUnreconstructable = eris.New("boundary: unreconstructable")

// Segment is one fragment of a boundary ring: an ordered coordinate run
// whose first and last points are its endpoints.
type Segment struct {
	ID     string      `json:"id"`
	Coords []geo.Point `json:"coords"`
}

// Validate checks the segment has at least two coordinates.
func (s Segment) Validate() error {
	if len(s.Coords) < 2 {
		return eris.Wrapf(geo.ErrDegenerateGeometry, "segment %s has %d coords", s.ID, len(s.Coords))
	}
	return nil
}

// Start returns the segment's first coordinate.
func (s Segment) Start() geo.Point {
	return s.Coords[0]
}

// End returns the segment's last coordinate.
func (s Segment) End() geo.Point {
	return s.Coords[len(s.Coords)-1]
}

// SegmentGroup is the set of segments belonging to one named area.
type SegmentGroup struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Segments []Segment `json:"segments"`
}
