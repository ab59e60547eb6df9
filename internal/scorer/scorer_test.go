package scorer

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/geodensity/internal/geo"
	"github.com/sells-group/geodensity/internal/grid"
	"github.com/sells-group/geodensity/internal/model"
)

func business(id string, lat, lon float64, cat model.CategoryID) model.Business {
	return model.Business{
		ID:       id,
		Name:     id,
		Location: geo.Point{Lat: lat, Lon: lon},
		Category: cat,
	}
}

func buildGrid(t *testing.T) *grid.Grid {
	t.Helper()
	region := geo.BBox{MinLat: 41.80, MaxLat: 41.90, MinLon: -87.70, MaxLon: -87.60}
	g, err := grid.Build(region, 2.0)
	require.NoError(t, err)
	return g
}

func TestScore_PointAtCellCenter(t *testing.T) {
	g := buildGrid(t)
	center := g.Cells[0].Center

	businesses := []model.Business{business("b1", center.Lat, center.Lon, "cafe")}
	require.NoError(t, New(0, 1).Score(context.Background(), g.Cells, businesses))

	// After sorting the co-located cell ranks first with exactly 100.
	top := g.Cells[0]
	assert.Equal(t, 100.0, top.Score)
	assert.Zero(t, top.NearestKm)
	require.NotNil(t, top.Nearest)
	assert.Equal(t, "b1", top.Nearest.ID)
}

func TestScore_HalfKilometerScoresNear37(t *testing.T) {
	// Two hand-built cells: one centered on the point, one 0.5 km north.
	center := geo.Point{Lat: 41.85, Lon: -87.65}
	offsetLat := 0.5 / geo.KmPerDegreeLat

	cells := []*grid.Cell{
		{ID: 0, Center: center, Bounds: geo.BBox{MinLat: 41.84, MaxLat: 41.86, MinLon: -87.66, MaxLon: -87.64}},
		{ID: 1, Center: geo.Point{Lat: center.Lat + offsetLat, Lon: center.Lon}, Bounds: geo.BBox{MinLat: 41.86, MaxLat: 41.88, MinLon: -87.66, MaxLon: -87.64}},
	}
	businesses := []model.Business{business("b1", center.Lat, center.Lon, "cafe")}

	require.NoError(t, New(0, 1).Score(context.Background(), cells, businesses))

	// Cells are sorted: co-located first, half-km cell second.
	assert.Equal(t, 100.0, cells[0].Score)
	assert.InDelta(t, 100*math.Exp(-1), cells[1].Score, 0.5)
	assert.InDelta(t, 0.5, cells[1].NearestKm, 0.01)
}

func TestScore_EmptyPointSet(t *testing.T) {
	region := geo.BBox{MinLat: 41.80, MaxLat: 41.836, MinLon: -87.70, MaxLon: -87.652}
	g, err := grid.Build(region, 2.0)
	require.NoError(t, err)
	require.Len(t, g.Cells, 4, "2x2 grid")

	require.NoError(t, New(0, 2).Score(context.Background(), g.Cells, nil))

	for _, cell := range g.Cells {
		assert.Zero(t, cell.Score)
		assert.Nil(t, cell.Nearest)
		assert.Empty(t, cell.Contained)
	}
}

func TestScore_RangeAndMonotonicity(t *testing.T) {
	g := buildGrid(t)
	businesses := []model.Business{
		business("b1", 41.85, -87.65, "cafe"),
		business("b2", 41.88, -87.62, "grocery"),
	}
	require.NoError(t, New(0, 4).Score(context.Background(), g.Cells, businesses))

	for i, cell := range g.Cells {
		assert.GreaterOrEqual(t, cell.Score, 0.0)
		assert.LessOrEqual(t, cell.Score, 100.0)
		if i > 0 {
			prev := g.Cells[i-1]
			assert.GreaterOrEqual(t, prev.Score, cell.Score, "descending order")
			assert.LessOrEqual(t, prev.NearestKm, cell.NearestKm, "score non-increasing in distance")
		}
	}
}

func TestScore_ContainmentBuckets(t *testing.T) {
	g := buildGrid(t)
	cell := g.Cells[0]
	inside := cell.Bounds.Center()

	businesses := []model.Business{
		business("cafe-1", inside.Lat, inside.Lon, "cafe"),
		business("cafe-2", inside.Lat, inside.Lon, "cafe"),
		business("grocery-1", inside.Lat, inside.Lon, "grocery"),
		business("far", 41.8999, -87.6001, "cafe"),
	}
	require.NoError(t, New(0, 1).Score(context.Background(), g.Cells, businesses))

	// The containing cell is ranked first after sorting.
	top := g.Cells[0]
	require.Len(t, top.Contained, 3)
	assert.Len(t, top.ByCategory["cafe"], 2)
	assert.Len(t, top.ByCategory["grocery"], 1)
}

func TestScore_SharedEdgeDoubleCount(t *testing.T) {
	g := buildGrid(t)

	// A business exactly on the edge shared by cells (0,0) and (0,1).
	edgeLon := g.Cells[0].Bounds.MaxLon
	edgeLat := g.Cells[0].Bounds.Center().Lat
	businesses := []model.Business{business("edge", edgeLat, edgeLon, "cafe")}

	require.NoError(t, New(0, 1).Score(context.Background(), g.Cells, businesses))

	count := 0
	for _, cell := range g.Cells {
		for _, b := range cell.Contained {
			if b.ID == "edge" {
				count++
			}
		}
	}
	assert.Equal(t, 2, count, "edge-inclusive bounds count the point in both cells")
}

func TestScore_Idempotent(t *testing.T) {
	businesses := []model.Business{
		business("b1", 41.85, -87.65, "cafe"),
		business("b2", 41.82, -87.68, "grocery"),
		business("b3", 41.89, -87.61, "pharmacy"),
	}

	run := func() []*grid.Cell {
		g := buildGrid(t)
		require.NoError(t, New(0, 3).Score(context.Background(), g.Cells, businesses))
		return g.Cells
	}

	first := run()
	second := run()
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.Equal(t, first[i].Score, second[i].Score)
	}
}

func TestDecayScore(t *testing.T) {
	assert.Equal(t, 100.0, DecayScore(0, 0.5))
	assert.InDelta(t, 36.8, DecayScore(0.5, 0.5), 0.1)
	assert.InDelta(t, 13.5, DecayScore(1.0, 0.5), 0.1)
	assert.Less(t, DecayScore(10, 0.5), 1e-6)
}
