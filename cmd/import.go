package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/geodensity/internal/loader"
	"github.com/sells-group/geodensity/internal/model"
	"github.com/sells-group/geodensity/internal/store"
)

var (
	importCSVPath  string
	importXLSXPath string
	importSheet    string
	importCharset  string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import business records into the local snapshot",
	Long:  "Reads business records from a CSV or XLSX file and upserts them into the SQLite snapshot the scoring commands read from.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := cfg.Validate("import"); err != nil {
			return err
		}
		if (importCSVPath == "") == (importXLSXPath == "") {
			return eris.New("exactly one of --csv or --xlsx is required")
		}

		var (
			businesses []model.Business
			source     string
		)
		switch {
		case importCSVPath != "":
			f, err := os.Open(importCSVPath)
			if err != nil {
				return eris.Wrapf(err, "open %s", importCSVPath)
			}
			defer f.Close()

			businesses, err = loader.ReadBusinessesCSV(f, loader.CSVOptions{Charset: importCharset})
			if err != nil {
				return eris.Wrap(err, "read csv")
			}
			source = importCSVPath
		default:
			var err error
			businesses, err = loader.ReadBusinessesXLSX(importXLSXPath, loader.XLSXOptions{SheetName: importSheet})
			if err != nil {
				return eris.Wrap(err, "read xlsx")
			}
			source = importXLSXPath
		}

		st, err := store.NewSQLite(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		written, err := st.InsertBusinesses(ctx, businesses)
		if err != nil {
			return eris.Wrap(err, "insert businesses")
		}

		zap.L().Info("import complete",
			zap.Int("written", written),
			zap.String("source", source),
			zap.String("store", cfg.Store.Path),
		)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importCSVPath, "csv", "", "path to CSV file")
	importCmd.Flags().StringVar(&importXLSXPath, "xlsx", "", "path to XLSX file")
	importCmd.Flags().StringVar(&importSheet, "sheet", "", "XLSX sheet name (default: first sheet)")
	importCmd.Flags().StringVar(&importCharset, "charset", "", "CSV character set (default: UTF-8)")
	rootCmd.AddCommand(importCmd)
}
