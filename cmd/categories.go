package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/geodensity/internal/model"
)

var categoriesCheck bool

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the configured category set",
	Long:  "Lists the category set from the configured categories file. With --check, reports snapshot records whose category is not in the set.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if cfg.Categories == "" {
			return eris.New("categories file is required (set categories in config or GEODENSITY_CATEGORIES)")
		}

		cats, err := model.LoadCategories(cfg.Categories)
		if err != nil {
			return eris.Wrap(err, "load categories")
		}

		for _, id := range cats.IDs() {
			fmt.Printf("%s\t%s\n", id, cats.Label(id))
		}

		if !categoriesCheck {
			return nil
		}

		businesses, err := loadSnapshot(ctx)
		if err != nil {
			return err
		}

		unknown := 0
		for _, b := range businesses {
			if b.Category != "" && !cats.Has(b.Category) {
				unknown++
				zap.L().Warn("unknown category",
					zap.String("business", b.ID),
					zap.String("category", string(b.Category)),
				)
			}
		}
		if unknown > 0 {
			return eris.Errorf("%d records with categories outside the set", unknown)
		}

		zap.L().Info("category check passed",
			zap.Int("categories", cats.Len()),
			zap.Int("businesses", len(businesses)),
		)
		return nil
	},
}

func init() {
	categoriesCmd.Flags().BoolVar(&categoriesCheck, "check", false, "verify snapshot records against the category set")
	rootCmd.AddCommand(categoriesCmd)
}
