package main

import (
	"context"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/geodensity/internal/geo"
	"github.com/sells-group/geodensity/internal/model"
	"github.com/sells-group/geodensity/internal/pipeline"
	"github.com/sells-group/geodensity/internal/store"
)

func newPipeline() (*pipeline.Pipeline, error) {
	opts := pipeline.Options{
		Region: geo.BBox{
			MinLat: cfg.Region.MinLat,
			MaxLat: cfg.Region.MaxLat,
			MinLon: cfg.Region.MinLon,
			MaxLon: cfg.Region.MaxLon,
		},
		CellKm:       cfg.Grid.CellKm,
		DecayKm:      cfg.Scoring.DecayKm,
		ToleranceDeg: cfg.Boundary.ToleranceDeg,
		Workers:      cfg.Grid.Workers,
	}

	if cfg.Categories != "" {
		cats, err := model.LoadCategories(cfg.Categories)
		if err != nil {
			return nil, eris.Wrap(err, "load categories")
		}
		opts.Categories = cats
	}

	return pipeline.New(opts), nil
}

// loadSnapshot reads all business records from the configured SQLite store.
func loadSnapshot(ctx context.Context) ([]model.Business, error) {
	st, err := store.NewSQLite(cfg.Store.Path)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		return nil, eris.Wrap(err, "migrate store")
	}

	businesses, err := st.ListBusinesses(ctx, store.Filter{})
	if err != nil {
		return nil, err
	}

	zap.L().Debug("snapshot loaded",
		zap.Int("businesses", len(businesses)),
		zap.String("store", cfg.Store.Path),
	)
	return businesses, nil
}

// openOutput opens path for writing, or stdout when path is empty.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return os.Stdout, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, eris.Wrapf(err, "create %s", path)
	}
	return f, nil
}

func closeOutput(w io.WriteCloser) {
	if w != os.Stdout {
		_ = w.Close()
	}
}
