package pipeline

import (
	"context"
	"math"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/geodensity/internal/boundary"
	"github.com/sells-group/geodensity/internal/geo"
	"github.com/sells-group/geodensity/internal/model"
)

func testOptions() Options {
	return Options{
		Region: geo.BBox{MinLat: 41.80, MaxLat: 41.90, MinLon: -87.70, MaxLon: -87.60},
		CellKm: 2.0,
		Categories: model.NewCategorySet(map[model.CategoryID]string{
			"cafe":    "Cafes",
			"grocery": "Groceries",
		}),
	}
}

func testBusinesses() []model.Business {
	return []model.Business{
		{ID: "b1", Name: "Cafe One", Location: geo.Point{Lat: 41.85, Lon: -87.65}, Category: "cafe"},
		{ID: "b2", Name: "Grocer", Location: geo.Point{Lat: 41.88, Lon: -87.62}, Category: "grocery"},
		{ID: "b3", Name: "Cafe Two", Location: geo.Point{Lat: 41.81, Lon: -87.69}, Category: "cafe"},
	}
}

func TestRun_SortedRanking(t *testing.T) {
	p := New(testOptions())

	g, err := p.Run(context.Background(), testBusinesses())
	require.NoError(t, err)
	require.NotEmpty(t, g.Cells)

	for i := 1; i < len(g.Cells); i++ {
		assert.GreaterOrEqual(t, g.Cells[i-1].Score, g.Cells[i].Score)
	}
}

func TestRun_IdempotentAcrossRuns(t *testing.T) {
	p := New(testOptions())
	businesses := testBusinesses()

	first, err := p.Run(context.Background(), businesses)
	require.NoError(t, err)
	second, err := p.Run(context.Background(), businesses)
	require.NoError(t, err)

	require.Equal(t, len(first.Cells), len(second.Cells))
	for i := range first.Cells {
		assert.Equal(t, first.Cells[i].ID, second.Cells[i].ID, "ordering is reproducible")
		assert.Equal(t, first.Cells[i].Score, second.Cells[i].Score)
		assert.Equal(t, first.Cells[i].NearestKm, second.Cells[i].NearestKm)
	}
}

func TestRun_RejectsInvalidCoordinates(t *testing.T) {
	p := New(testOptions())

	businesses := append(testBusinesses(), model.Business{
		ID:       "bad",
		Location: geo.Point{Lat: math.NaN(), Lon: 0},
	})

	_, err := p.Run(context.Background(), businesses)
	require.Error(t, err)
	assert.True(t, eris.Is(err, geo.ErrInvalidCoordinate))
}

func TestRun_EmptyPointSet(t *testing.T) {
	p := New(testOptions())

	g, err := p.Run(context.Background(), nil)
	require.NoError(t, err, "an empty data feed is an expected operating condition")
	for _, cell := range g.Cells {
		assert.Zero(t, cell.Score)
	}
}

func TestBuildAreas_SkipsFailedArea(t *testing.T) {
	p := New(testOptions())

	good := boundary.SegmentGroup{
		ID:   "good",
		Name: "Riverside",
		Segments: []boundary.Segment{
			{ID: "s1", Coords: []geo.Point{{Lat: 41.80, Lon: -87.70}, {Lat: 41.80, Lon: -87.68}}},
			{ID: "s2", Coords: []geo.Point{{Lat: 41.80, Lon: -87.68}, {Lat: 41.82, Lon: -87.68}}},
			{ID: "s3", Coords: []geo.Point{{Lat: 41.82, Lon: -87.68}, {Lat: 41.80, Lon: -87.70}}},
		},
	}
	bad := boundary.SegmentGroup{ID: "bad", Name: "Nowhere"} // no segments

	areas, err := p.BuildAreas(context.Background(), []boundary.SegmentGroup{bad, good})
	require.NoError(t, err, "one failed area must not abort the rest")
	require.Len(t, areas, 1)
	assert.Equal(t, "Riverside", areas[0].Name)
	assert.True(t, areas[0].Boundary.Closed)
}

func TestScoreAreas_EndToEnd(t *testing.T) {
	p := New(testOptions())

	group := boundary.SegmentGroup{
		ID:   "a1",
		Name: "Downtown",
		Segments: []boundary.Segment{
			{ID: "s1", Coords: []geo.Point{{Lat: 41.84, Lon: -87.66}, {Lat: 41.84, Lon: -87.64}}},
			{ID: "s2", Coords: []geo.Point{{Lat: 41.84, Lon: -87.64}, {Lat: 41.86, Lon: -87.64}}},
			{ID: "s3", Coords: []geo.Point{{Lat: 41.86, Lon: -87.64}, {Lat: 41.86, Lon: -87.66}}},
			{ID: "s4", Coords: []geo.Point{{Lat: 41.86, Lon: -87.66}, {Lat: 41.84, Lon: -87.66}}},
		},
	}
	areas, err := p.BuildAreas(context.Background(), []boundary.SegmentGroup{group})
	require.NoError(t, err)
	require.Len(t, areas, 1)

	scored, err := p.ScoreAreas(context.Background(), areas, testBusinesses())
	require.NoError(t, err)
	require.Len(t, scored, 1)

	// b1 sits at the area's center.
	assert.Equal(t, 100.0, scored[0].Score)
	require.Len(t, scored[0].Contained, 1)
	assert.Equal(t, "b1", scored[0].Contained[0].ID)
}

func TestCategories(t *testing.T) {
	p := New(testOptions())
	assert.True(t, p.Categories().Has("cafe"))
	assert.False(t, p.Categories().Has("nightclub"))
}
