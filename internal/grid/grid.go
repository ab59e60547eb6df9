// Package grid partitions a fixed bounding region into uniform rectangular
// cells for proximity scoring.
package grid

import (
	"math"

	"github.com/rotisserie/eris"

	"github.com/sells-group/geodensity/internal/geo"
	"github.com/sells-group/geodensity/internal/model"
)

// Cell is one rectangular grid cell. Geometry fields are fixed at build
// time; score and containment fields are recomputed in full by every
// scoring pass. Cells have no identity across runs beyond (Row, Col).
type Cell struct {
	ID      int         `json:"id"`
	Row     int         `json:"row"`
	Col     int         `json:"col"`
	Center  geo.Point   `json:"center"`
	Ring    geo.Polygon `json:"ring"`
	Bounds  geo.BBox    `json:"bounds"`
	AreaKm2 float64     `json:"area_km2"`

	Score      float64                               `json:"score"`
	NearestKm  float64                               `json:"nearest_km"`
	Nearest    *model.Business                       `json:"nearest,omitempty"`
	Contained  []model.Business                      `json:"contained,omitempty"`
	ByCategory map[model.CategoryID][]model.Business `json:"by_category,omitempty"`
}

// Grid is the cell collection for one region/cell-size configuration.
type Grid struct {
	Region geo.BBox `json:"region"`
	CellKm float64  `json:"cell_km"`
	Rows   int      `json:"rows"`
	Cols   int      `json:"cols"`
	Cells  []*Cell  `json:"cells"`
}

// Build partitions region into ceil(latRange/latStep) x ceil(lonRange/lonStep)
// cells of roughly cellKm per side, in row-major order with id = row*cols+col.
//
// Degree steps are precomputed once at the region's northern bound, not
// per-cell, so cells drift slightly narrower in ground longitude toward the
// top of the region. Cell area is the constant nominal cellKm squared.
func Build(region geo.BBox, cellKm float64) (*Grid, error) {
	if err := region.Validate(); err != nil {
		return nil, eris.Wrap(err, "grid: region")
	}
	if cellKm <= 0 {
		return nil, eris.Errorf("grid: cell_km must be positive, got %v", cellKm)
	}

	latStep := cellKm / geo.KmPerDegreeLat
	lonStep := cellKm / (geo.KmPerDegreeLat * math.Cos(region.MaxLat*math.Pi/180))

	rows := int(math.Ceil((region.MaxLat - region.MinLat) / latStep))
	cols := int(math.Ceil((region.MaxLon - region.MinLon) / lonStep))

	cells := make([]*Cell, 0, rows*cols)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			bounds := geo.BBox{
				MinLat: region.MinLat + float64(row)*latStep,
				MaxLat: region.MinLat + float64(row+1)*latStep,
				MinLon: region.MinLon + float64(col)*lonStep,
				MaxLon: region.MinLon + float64(col+1)*lonStep,
			}
			cells = append(cells, &Cell{
				ID:      row*cols + col,
				Row:     row,
				Col:     col,
				Center:  bounds.Center(),
				Ring:    rectangleRing(bounds),
				Bounds:  bounds,
				AreaKm2: cellKm * cellKm,
			})
		}
	}

	return &Grid{
		Region: region,
		CellKm: cellKm,
		Rows:   rows,
		Cols:   cols,
		Cells:  cells,
	}, nil
}

// rectangleRing returns the closed five-point corner ring of a box,
// counter-clockwise from the southwest corner.
func rectangleRing(b geo.BBox) geo.Polygon {
	sw := geo.Point{Lat: b.MinLat, Lon: b.MinLon}
	return geo.Polygon{
		Ring: []geo.Point{
			sw,
			{Lat: b.MinLat, Lon: b.MaxLon},
			{Lat: b.MaxLat, Lon: b.MaxLon},
			{Lat: b.MaxLat, Lon: b.MinLon},
			sw,
		},
		Closed: true,
	}
}
