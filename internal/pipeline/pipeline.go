// Package pipeline orchestrates the aggregate computation: grid building,
// proximity scoring, and independent boundary reconstruction. Every run
// recomputes every cell from scratch; there is no incremental update path
// and no score caching across runs.
package pipeline

import (
	"context"
	"runtime"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/geodensity/internal/boundary"
	"github.com/sells-group/geodensity/internal/geo"
	"github.com/sells-group/geodensity/internal/grid"
	"github.com/sells-group/geodensity/internal/model"
	"github.com/sells-group/geodensity/internal/scorer"
)

// Options fixes one pipeline configuration: the region, cell size, decay
// length, chaining tolerance, worker bound, and the category set. All state
// the pipeline reads arrives here; nothing is read from globals.
type Options struct {
	Region       geo.BBox
	CellKm       float64
	DecayKm      float64
	ToleranceDeg float64
	Workers      int
	Categories   model.CategorySet
}

// Pipeline runs aggregate computations for one fixed configuration.
type Pipeline struct {
	opts Options
	sc   *scorer.Scorer
	rec  *boundary.Reconstructor
}

// New builds a Pipeline. Zero-valued options fall back to package defaults
// (0.5 km decay, 1e-4 degree tolerance, GOMAXPROCS workers).
func New(opts Options) *Pipeline {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	return &Pipeline{
		opts: opts,
		sc:   scorer.New(opts.DecayKm, opts.Workers),
		rec:  boundary.NewReconstructor(opts.ToleranceDeg),
	}
}

// Run builds the grid and scores it against businesses, returning the cell
// collection sorted descending by score. Inputs are borrowed read-only for
// the duration of the call. Records with invalid coordinates fail the run;
// they are expected to be filtered by the data layer.
func (p *Pipeline) Run(ctx context.Context, businesses []model.Business) (*grid.Grid, error) {
	if err := model.ValidateAll(businesses); err != nil {
		return nil, eris.Wrap(err, "pipeline: validate businesses")
	}

	g, err := grid.Build(p.opts.Region, p.opts.CellKm)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: build grid")
	}

	if err := p.sc.Score(ctx, g.Cells, businesses); err != nil {
		return nil, eris.Wrap(err, "pipeline: score grid")
	}

	zap.L().Info("grid pipeline complete",
		zap.Int("rows", g.Rows),
		zap.Int("cols", g.Cols),
		zap.Int("businesses", len(businesses)),
	)
	return g, nil
}

// BuildAreas reconstructs one NamedArea per segment group. Independent areas
// are reconstructed in parallel; an area that cannot be reconstructed is
// logged and skipped so one bad boundary never blocks the rest. The returned
// slice preserves group order for the areas that succeeded.
func (p *Pipeline) BuildAreas(ctx context.Context, groups []boundary.SegmentGroup) ([]*boundary.NamedArea, error) {
	results := make([]*boundary.NamedArea, len(groups))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)

	for i, group := range groups {
		i, group := i, group
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return eris.Wrap(err, "pipeline: cancelled")
			}
			area, err := boundary.BuildArea(group, p.rec)
			if err != nil {
				zap.L().Warn("area reconstruction failed, skipping",
					zap.String("area", group.Name),
					zap.Error(err),
				)
				return nil
			}
			if area.SegmentsUsed < area.SegmentsTotal {
				zap.L().Info("best-effort area",
					zap.String("area", group.Name),
					zap.Int("segments_used", area.SegmentsUsed),
					zap.Int("segments_total", area.SegmentsTotal),
				)
			}
			results[i] = area
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	areas := make([]*boundary.NamedArea, 0, len(groups))
	for _, area := range results {
		if area != nil {
			areas = append(areas, area)
		}
	}
	return areas, nil
}

// ScoreAreas scores reconstructed areas against businesses with the same
// decay formula used for grid cells.
func (p *Pipeline) ScoreAreas(ctx context.Context, areas []*boundary.NamedArea, businesses []model.Business) ([]*scorer.ScoredArea, error) {
	if err := model.ValidateAll(businesses); err != nil {
		return nil, eris.Wrap(err, "pipeline: validate businesses")
	}
	return p.sc.ScoreAreas(ctx, areas, businesses)
}

// Categories returns the immutable category set this pipeline was built with.
func (p *Pipeline) Categories() model.CategorySet {
	return p.opts.Categories
}
