package loader

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const segmentGeoJSON = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"name": "Riverside", "id": "riverside"},
      "geometry": {
        "type": "MultiLineString",
        "coordinates": [
          [[-87.70, 41.80], [-87.68, 41.80]],
          [[-87.68, 41.80], [-87.68, 41.82]],
          [[-87.68, 41.82], [-87.70, 41.82], [-87.70, 41.80]]
        ]
      }
    },
    {
      "type": "Feature",
      "properties": {"name": "Old Town"},
      "geometry": {
        "type": "LineString",
        "coordinates": [[-87.65, 41.85], [-87.64, 41.85]]
      }
    },
    {
      "type": "Feature",
      "properties": {"name": "Old Town"},
      "geometry": {
        "type": "LineString",
        "coordinates": [[-87.64, 41.85], [-87.64, 41.86]]
      }
    }
  ]
}`

func TestReadSegmentGroupsGeoJSON(t *testing.T) {
	groups, err := ReadSegmentGroupsGeoJSON(strings.NewReader(segmentGeoJSON))
	require.NoError(t, err)
	require.Len(t, groups, 2)

	riverside := groups[0]
	assert.Equal(t, "riverside", riverside.ID)
	assert.Equal(t, "Riverside", riverside.Name)
	require.Len(t, riverside.Segments, 3)

	// GeoJSON positions are [lon, lat].
	first := riverside.Segments[0]
	assert.Equal(t, 41.80, first.Coords[0].Lat)
	assert.Equal(t, -87.70, first.Coords[0].Lon)

	oldTown := groups[1]
	assert.Equal(t, "Old Town", oldTown.Name)
	assert.Len(t, oldTown.Segments, 2, "features sharing a name merge into one group")
}

func TestReadSegmentGroupsGeoJSON_UnsupportedGeometry(t *testing.T) {
	payload := `{
	  "type": "FeatureCollection",
	  "features": [
	    {
	      "type": "Feature",
	      "properties": {"name": "Point"},
	      "geometry": {"type": "Point", "coordinates": [-87.65, 41.85]}
	    }
	  ]
	}`
	_, err := ReadSegmentGroupsGeoJSON(strings.NewReader(payload))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported geometry")
}

func TestReadSegmentGroupsGeoJSON_NoFeatures(t *testing.T) {
	_, err := ReadSegmentGroupsGeoJSON(strings.NewReader(`{"type":"FeatureCollection","features":[]}`))
	assert.Error(t, err)
}

func TestReadSegmentGroupsGeoJSON_Invalid(t *testing.T) {
	_, err := ReadSegmentGroupsGeoJSON(strings.NewReader(`not json`))
	assert.Error(t, err)
}
