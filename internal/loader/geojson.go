package loader

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/sells-group/geodensity/internal/boundary"
	geomodel "github.com/sells-group/geodensity/internal/geo"
)

// ReadSegmentGroupsGeoJSON parses boundary segment groups from a GeoJSON
// FeatureCollection. Each feature carries one area's fragments: a
// MultiLineString becomes one segment per member line, a LineString becomes
// a single segment. Features sharing a "name" property are merged into one
// group. GeoJSON positions are [lon, lat].
func ReadSegmentGroupsGeoJSON(r io.Reader) ([]boundary.SegmentGroup, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "loader: read geojson")
	}

	var fc geojson.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, eris.Wrap(err, "loader: parse geojson")
	}

	byName := make(map[string]int)
	var groups []boundary.SegmentGroup

	for fi, feature := range fc.Features {
		name := featureName(feature, fi)

		var lines []*geom.LineString
		switch g := feature.Geometry.(type) {
		case *geom.LineString:
			lines = []*geom.LineString{g}
		case *geom.MultiLineString:
			for i := 0; i < g.NumLineStrings(); i++ {
				lines = append(lines, g.LineString(i))
			}
		default:
			return nil, eris.Errorf("loader: feature %q has unsupported geometry %T", name, feature.Geometry)
		}

		gi, ok := byName[name]
		if !ok {
			gi = len(groups)
			byName[name] = gi
			groups = append(groups, boundary.SegmentGroup{
				ID:   featureID(feature, fi),
				Name: name,
			})
		}

		for _, line := range lines {
			seg := boundary.Segment{
				ID: fmt.Sprintf("%s/%d", groups[gi].ID, len(groups[gi].Segments)),
			}
			coords := line.Coords()
			seg.Coords = make([]geomodel.Point, len(coords))
			for i, c := range coords {
				seg.Coords[i] = geomodel.Point{Lat: c.Y(), Lon: c.X()}
			}
			groups[gi].Segments = append(groups[gi].Segments, seg)
		}
	}

	if len(groups) == 0 {
		return nil, eris.Wrap(geomodel.ErrEmptyInput, "loader: geojson has no line features")
	}
	return groups, nil
}

func featureName(f *geojson.Feature, i int) string {
	if name, ok := f.Properties["name"].(string); ok && name != "" {
		return name
	}
	return fmt.Sprintf("area-%d", i)
}

func featureID(f *geojson.Feature, i int) string {
	if f.ID != "" {
		return f.ID
	}
	if id, ok := f.Properties["id"].(string); ok && id != "" {
		return id
	}
	return fmt.Sprintf("area-%d", i)
}
