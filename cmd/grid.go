package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/geodensity/internal/export"
	"github.com/sells-group/geodensity/internal/loader"
	"github.com/sells-group/geodensity/internal/model"
)

var (
	gridCSVPath string
	gridOutPath string
)

var gridCmd = &cobra.Command{
	Use:   "grid",
	Short: "Build and score the density grid",
	Long:  "Partitions the configured region into cells, scores each cell against the business snapshot, and writes the result as GeoJSON.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("grid"); err != nil {
			return err
		}

		var (
			businesses []model.Business
			err        error
		)
		if gridCSVPath != "" {
			f, err := os.Open(gridCSVPath)
			if err != nil {
				return eris.Wrapf(err, "open %s", gridCSVPath)
			}
			defer f.Close()

			businesses, err = loader.ReadBusinessesCSV(f, loader.CSVOptions{})
			if err != nil {
				return eris.Wrap(err, "read csv")
			}
		} else {
			businesses, err = loadSnapshot(ctx)
			if err != nil {
				return err
			}
		}

		p, err := newPipeline()
		if err != nil {
			return err
		}

		g, err := p.Run(ctx, businesses)
		if err != nil {
			return err
		}

		out, err := openOutput(gridOutPath)
		if err != nil {
			return err
		}
		defer closeOutput(out)

		if err := export.WriteGridGeoJSON(out, g); err != nil {
			return err
		}

		if len(g.Cells) > 0 {
			top := g.Cells[0]
			zap.L().Info("grid scored",
				zap.Int("cells", len(g.Cells)),
				zap.Int("top_cell", top.ID),
				zap.Float64("top_score", top.Score),
			)
		}
		return nil
	},
}

func init() {
	gridCmd.Flags().StringVar(&gridCSVPath, "csv", "", "score records from a CSV file instead of the snapshot")
	gridCmd.Flags().StringVar(&gridOutPath, "out", "", "output GeoJSON path (default: stdout)")
	rootCmd.AddCommand(gridCmd)
}
