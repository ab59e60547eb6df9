package loader

import (
	"fmt"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/geodensity/internal/boundary"
	"github.com/sells-group/geodensity/internal/geo"
)

// ReadSegmentGroupsShapefile parses boundary segment groups from a polyline
// shapefile. Each polyline part becomes one segment; records sharing the
// value of nameField are merged into one group. Records with unsupported
// shapes are skipped and counted.
func ReadSegmentGroupsShapefile(shpPath, nameField string) ([]boundary.SegmentGroup, error) {
	reader, err := shp.Open(shpPath)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: open shapefile %s", shpPath)
	}
	defer reader.Close()

	// Build field name → index map.
	nameIdx := -1
	for i, f := range reader.Fields() {
		name := strings.TrimRight(f.String(), "\x00")
		if strings.EqualFold(name, nameField) {
			nameIdx = i
			break
		}
	}
	if nameIdx < 0 {
		return nil, eris.Errorf("loader: shapefile has no %q field", nameField)
	}

	byName := make(map[string]int)
	var groups []boundary.SegmentGroup
	record := 0
	skipped := 0

	for reader.Next() {
		_, shape := reader.Shape()
		record++

		pl, ok := shape.(*shp.PolyLine)
		if !ok || pl.NumParts == 0 || len(pl.Points) == 0 {
			skipped++
			continue
		}

		name := strings.TrimSpace(strings.TrimRight(reader.Attribute(nameIdx), "\x00"))
		if name == "" {
			name = fmt.Sprintf("area-%d", record)
		}

		gi, found := byName[name]
		if !found {
			gi = len(groups)
			byName[name] = gi
			groups = append(groups, boundary.SegmentGroup{
				ID:   fmt.Sprintf("shp-%d", len(groups)),
				Name: name,
			})
		}

		for part := int32(0); part < pl.NumParts; part++ {
			start := pl.Parts[part]
			end := int32(len(pl.Points))
			if part+1 < pl.NumParts {
				end = pl.Parts[part+1]
			}

			coords := make([]geo.Point, 0, end-start)
			for j := start; j < end; j++ {
				coords = append(coords, geo.Point{Lat: pl.Points[j].Y, Lon: pl.Points[j].X})
			}
			if len(coords) < 2 {
				skipped++
				continue
			}

			groups[gi].Segments = append(groups[gi].Segments, boundary.Segment{
				ID:     fmt.Sprintf("%s/%d", groups[gi].ID, len(groups[gi].Segments)),
				Coords: coords,
			})
		}
	}

	if skipped > 0 {
		zap.L().Debug("loader: skipped shapefile records",
			zap.String("path", shpPath),
			zap.Int("skipped", skipped),
		)
	}
	if len(groups) == 0 {
		return nil, eris.Wrap(geo.ErrEmptyInput, "loader: shapefile has no polylines")
	}
	return groups, nil
}
