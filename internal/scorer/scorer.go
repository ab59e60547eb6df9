// Package scorer computes distance-decayed proximity scores for grid cells
// and named areas against the full business point set.
package scorer

import (
	"context"
	"math"
	"runtime"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/geodensity/internal/geo"
	"github.com/sells-group/geodensity/internal/grid"
	"github.com/sells-group/geodensity/internal/model"
)

// DefaultDecayLengthKm is the characteristic decay length: a cell whose
// nearest business is 0.5 km away scores ~37, 1 km ~14.
const DefaultDecayLengthKm = 0.5

// Scorer scores cells against a read-only point set. Workers bounds the
// parallel fan-out across cells; zero means GOMAXPROCS.
type Scorer struct {
	DecayKm float64
	Workers int
}

// New returns a Scorer with the given decay length, falling back to
// DefaultDecayLengthKm when decayKm is not positive.
func New(decayKm float64, workers int) *Scorer {
	if decayKm <= 0 {
		decayKm = DefaultDecayLengthKm
	}
	return &Scorer{DecayKm: decayKm, Workers: workers}
}

// Score recomputes every cell's score and containment fields against
// businesses, then sorts cells descending by score. Ties keep their prior
// relative order; there is no secondary key.
//
// Every record is considered regardless of any display-time category
// selection: the score reflects the whole point universe. An empty point set
// is an expected operating condition and degrades to all-zero scores.
//
// Cells are mutated independently and businesses are read-only for the
// duration of the pass, so cells are partitioned across workers without
// locking.
func (s *Scorer) Score(ctx context.Context, cells []*grid.Cell, businesses []model.Business) error {
	workers := s.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, cell := range cells {
		cell := cell
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return eris.Wrap(err, "scorer: cancelled")
			}
			s.scoreCell(cell, businesses)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	sort.SliceStable(cells, func(i, j int) bool {
		return cells[i].Score > cells[j].Score
	})

	zap.L().Debug("scored cells",
		zap.Int("cells", len(cells)),
		zap.Int("businesses", len(businesses)),
	)
	return nil
}

// scoreCell scans the full point set once: it tracks the nearest business to
// the cell center and buckets every business inside the cell's bounds.
// A business exactly on a shared edge is counted by both adjacent cells.
func (s *Scorer) scoreCell(cell *grid.Cell, businesses []model.Business) {
	cell.Score = 0
	cell.NearestKm = 0
	cell.Nearest = nil
	cell.Contained = nil
	cell.ByCategory = nil

	if len(businesses) == 0 {
		return
	}

	nearest := -1
	nearestKm := math.MaxFloat64

	for i := range businesses {
		b := &businesses[i]

		if d := geo.DistanceKm(cell.Center, b.Location); d < nearestKm {
			nearestKm = d
			nearest = i
		}

		if cell.Bounds.Contains(b.Location) {
			cell.Contained = append(cell.Contained, *b)
			if cell.ByCategory == nil {
				cell.ByCategory = make(map[model.CategoryID][]model.Business)
			}
			cell.ByCategory[b.Category] = append(cell.ByCategory[b.Category], *b)
		}
	}

	cell.NearestKm = nearestKm
	cell.Nearest = &businesses[nearest]
	cell.Score = DecayScore(nearestKm, s.DecayKm)
}

// DecayScore maps a nearest-point distance to a 0..100 proximity score via
// exponential decay: 100*exp(-d/decayKm).
func DecayScore(distanceKm, decayKm float64) float64 {
	if decayKm <= 0 {
		decayKm = DefaultDecayLengthKm
	}
	score := 100 * math.Exp(-distanceKm/decayKm)
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
