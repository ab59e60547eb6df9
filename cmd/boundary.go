package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/geodensity/internal/boundary"
	"github.com/sells-group/geodensity/internal/export"
	"github.com/sells-group/geodensity/internal/loader"
	"github.com/sells-group/geodensity/internal/scorer"
)

var (
	boundaryGeoJSONPath string
	boundaryShpPath     string
	boundaryNameField   string
	boundaryOutPath     string
	boundaryScore       bool
)

var boundaryCmd = &cobra.Command{
	Use:   "boundary",
	Short: "Reconstruct named area boundaries from segments",
	Long:  "Chains fragmented boundary segments into closed rings, one named area per segment group, and writes the areas as GeoJSON. With --score, areas are scored against the business snapshot.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("boundary"); err != nil {
			return err
		}
		if (boundaryGeoJSONPath == "") == (boundaryShpPath == "") {
			return eris.New("exactly one of --geojson or --shapefile is required")
		}

		var (
			groups []boundary.SegmentGroup
			err    error
		)
		if boundaryGeoJSONPath != "" {
			f, openErr := os.Open(boundaryGeoJSONPath)
			if openErr != nil {
				return eris.Wrapf(openErr, "open %s", boundaryGeoJSONPath)
			}
			defer f.Close()

			groups, err = loader.ReadSegmentGroupsGeoJSON(f)
			if err != nil {
				return eris.Wrap(err, "read geojson")
			}
		} else {
			groups, err = loader.ReadSegmentGroupsShapefile(boundaryShpPath, boundaryNameField)
			if err != nil {
				return eris.Wrap(err, "read shapefile")
			}
		}

		p, err := newPipeline()
		if err != nil {
			return err
		}

		areas, err := p.BuildAreas(ctx, groups)
		if err != nil {
			return err
		}
		if len(areas) == 0 {
			return eris.New("no area could be reconstructed")
		}

		var scored []*scorer.ScoredArea
		if boundaryScore {
			businesses, err := loadSnapshot(ctx)
			if err != nil {
				return err
			}
			scored, err = p.ScoreAreas(ctx, areas, businesses)
			if err != nil {
				return err
			}
		} else {
			for _, area := range areas {
				scored = append(scored, &scorer.ScoredArea{Area: area})
			}
		}

		out, err := openOutput(boundaryOutPath)
		if err != nil {
			return err
		}
		defer closeOutput(out)

		if err := export.WriteAreasGeoJSON(out, scored); err != nil {
			return err
		}

		zap.L().Info("boundaries reconstructed",
			zap.Int("groups", len(groups)),
			zap.Int("areas", len(areas)),
			zap.Bool("scored", boundaryScore),
		)
		return nil
	},
}

func init() {
	boundaryCmd.Flags().StringVar(&boundaryGeoJSONPath, "geojson", "", "path to segment GeoJSON file")
	boundaryCmd.Flags().StringVar(&boundaryShpPath, "shapefile", "", "path to segment polyline shapefile")
	boundaryCmd.Flags().StringVar(&boundaryNameField, "name-field", "NAME", "shapefile attribute holding the area name")
	boundaryCmd.Flags().StringVar(&boundaryOutPath, "out", "", "output GeoJSON path (default: stdout)")
	boundaryCmd.Flags().BoolVar(&boundaryScore, "score", false, "score reconstructed areas against the business snapshot")
	rootCmd.AddCommand(boundaryCmd)
}
