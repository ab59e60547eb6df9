// Package export renders scored grids and areas as GeoJSON feature
// collections for downstream mapping tools.
package export

import (
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	geopkg "github.com/sells-group/geodensity/internal/geo"
	"github.com/sells-group/geodensity/internal/grid"
	"github.com/sells-group/geodensity/internal/scorer"
)

// WriteGridGeoJSON writes one Polygon feature per cell. Cells keep their
// score ordering from the scoring pass.
func WriteGridGeoJSON(w io.Writer, g *grid.Grid) error {
	fc := geojson.FeatureCollection{}
	for _, cell := range g.Cells {
		fc.Features = append(fc.Features, &geojson.Feature{
			Geometry:   ringPolygon(cell.Ring.Ring),
			Properties: cellProperties(cell),
		})
	}
	return writeFeatureCollection(w, &fc, "grid")
}

// WriteAreasGeoJSON writes one Polygon feature per scored area.
func WriteAreasGeoJSON(w io.Writer, areas []*scorer.ScoredArea) error {
	fc := geojson.FeatureCollection{}
	for _, sa := range areas {
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         sa.Area.ID,
			Geometry:   ringPolygon(sa.Area.Boundary.Ring),
			Properties: areaProperties(sa),
		})
	}
	return writeFeatureCollection(w, &fc, "areas")
}

func writeFeatureCollection(w io.Writer, fc *geojson.FeatureCollection, what string) error {
	raw, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return eris.Wrapf(err, "export: marshal %s", what)
	}
	if _, err := w.Write(raw); err != nil {
		return eris.Wrapf(err, "export: write %s", what)
	}
	_, err = w.Write([]byte("\n"))
	return eris.Wrapf(err, "export: write %s", what)
}

func cellProperties(cell *grid.Cell) map[string]interface{} {
	props := map[string]interface{}{
		"id":         cell.ID,
		"row":        cell.Row,
		"col":        cell.Col,
		"score":      cell.Score,
		"nearest_km": cell.NearestKm,
		"businesses": len(cell.Contained),
	}
	if cell.Nearest != nil {
		props["nearest_id"] = cell.Nearest.ID
		props["nearest_name"] = cell.Nearest.Name
	}
	if len(cell.ByCategory) > 0 {
		counts := make(map[string]int, len(cell.ByCategory))
		for cat, members := range cell.ByCategory {
			counts[string(cat)] = len(members)
		}
		props["category_counts"] = counts
	}
	return props
}

func areaProperties(sa *scorer.ScoredArea) map[string]interface{} {
	props := map[string]interface{}{
		"name":           sa.Area.Name,
		"area_km2":       sa.Area.AreaKm2,
		"segments_used":  sa.Area.SegmentsUsed,
		"segments_total": sa.Area.SegmentsTotal,
		"score":          sa.Score,
		"nearest_km":     sa.NearestKm,
		"businesses":     len(sa.Contained),
	}
	if sa.Nearest != nil {
		props["nearest_id"] = sa.Nearest.ID
		props["nearest_name"] = sa.Nearest.Name
	}
	if len(sa.ByCategory) > 0 {
		counts := make(map[string]int, len(sa.ByCategory))
		for cat, members := range sa.ByCategory {
			counts[string(cat)] = len(members)
		}
		props["category_counts"] = counts
	}
	return props
}

// ringPolygon converts a lat/lon corner ring to a GeoJSON polygon in
// [lon, lat] position order.
func ringPolygon(ring []geopkg.Point) *geom.Polygon {
	coords := make([]geom.Coord, 0, len(ring))
	for _, p := range ring {
		coords = append(coords, geom.Coord{p.Lon, p.Lat})
	}
	return geom.NewPolygon(geom.XY).MustSetCoords([][]geom.Coord{coords})
}
