package scorer

import (
	"context"
	"math"
	"runtime"
	"sort"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/geodensity/internal/boundary"
	"github.com/sells-group/geodensity/internal/geo"
	"github.com/sells-group/geodensity/internal/model"
)

// ScoredArea pairs an immutable NamedArea with the proximity fields of one
// scoring pass. Areas themselves are never mutated; a new pass produces new
// ScoredArea values.
type ScoredArea struct {
	Area       *boundary.NamedArea                   `json:"area"`
	Score      float64                               `json:"score"`
	NearestKm  float64                               `json:"nearest_km"`
	Nearest    *model.Business                       `json:"nearest,omitempty"`
	Contained  []model.Business                      `json:"contained,omitempty"`
	ByCategory map[model.CategoryID][]model.Business `json:"by_category,omitempty"`
}

// ScoreAreas scores reconstructed areas the same way cells are scored: the
// nearest business to the area's bounds center drives the decayed score, and
// containment uses the actual boundary ring rather than the bounding box.
// Returns areas sorted descending by score.
func (s *Scorer) ScoreAreas(ctx context.Context, areas []*boundary.NamedArea, businesses []model.Business) ([]*ScoredArea, error) {
	workers := s.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	scored := make([]*ScoredArea, len(areas))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, area := range areas {
		i, area := i, area
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return eris.Wrap(err, "scorer: cancelled")
			}
			scored[i] = s.scoreArea(area, businesses)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	return scored, nil
}

func (s *Scorer) scoreArea(area *boundary.NamedArea, businesses []model.Business) *ScoredArea {
	sa := &ScoredArea{Area: area}
	if len(businesses) == 0 {
		return sa
	}

	center := area.Bounds.Center()
	nearest := -1
	nearestKm := math.MaxFloat64

	for i := range businesses {
		b := &businesses[i]

		if d := geo.DistanceKm(center, b.Location); d < nearestKm {
			nearestKm = d
			nearest = i
		}

		if area.Contains(b.Location) {
			sa.Contained = append(sa.Contained, *b)
			if sa.ByCategory == nil {
				sa.ByCategory = make(map[model.CategoryID][]model.Business)
			}
			sa.ByCategory[b.Category] = append(sa.ByCategory[b.Category], *b)
		}
	}

	sa.NearestKm = nearestKm
	sa.Nearest = &businesses[nearest]
	sa.Score = DecayScore(nearestKm, s.DecayKm)
	return sa
}
