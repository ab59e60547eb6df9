package loader

import (
	"path/filepath"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestShapefile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "areas.shp")

	w, err := shp.Create(path, shp.POLYLINE)
	require.NoError(t, err)
	w.SetFields([]shp.Field{shp.StringField("NAME", 25)})

	// Two parts of one area plus a second single-part area.
	riverside := shp.NewPolyLine([][]shp.Point{
		{{X: -87.70, Y: 41.80}, {X: -87.68, Y: 41.80}},
		{{X: -87.68, Y: 41.80}, {X: -87.68, Y: 41.82}},
	})
	oldTown := shp.NewPolyLine([][]shp.Point{
		{{X: -87.65, Y: 41.85}, {X: -87.64, Y: 41.85}},
	})

	n := w.Write(riverside)
	require.NoError(t, w.WriteAttribute(int(n), 0, "Riverside"))
	n = w.Write(oldTown)
	require.NoError(t, w.WriteAttribute(int(n), 0, "Old Town"))

	w.Close()
	return path
}

func TestReadSegmentGroupsShapefile(t *testing.T) {
	path := writeTestShapefile(t)

	groups, err := ReadSegmentGroupsShapefile(path, "NAME")
	require.NoError(t, err)
	require.Len(t, groups, 2)

	assert.Equal(t, "Riverside", groups[0].Name)
	require.Len(t, groups[0].Segments, 2, "one segment per polyline part")
	assert.Equal(t, 41.80, groups[0].Segments[0].Coords[0].Lat)
	assert.Equal(t, -87.70, groups[0].Segments[0].Coords[0].Lon)

	assert.Equal(t, "Old Town", groups[1].Name)
	assert.Len(t, groups[1].Segments, 1)
}

func TestReadSegmentGroupsShapefile_MissingField(t *testing.T) {
	path := writeTestShapefile(t)

	_, err := ReadSegmentGroupsShapefile(path, "NEIGHBORHOOD")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no \"NEIGHBORHOOD\" field")
}

func TestReadSegmentGroupsShapefile_MissingFile(t *testing.T) {
	_, err := ReadSegmentGroupsShapefile(filepath.Join(t.TempDir(), "nope.shp"), "NAME")
	assert.Error(t, err)
}
