package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-sb-features/internal/logger"
	"github.com/pable/go-sb-features/internal/report"
	"github.com/pable/go-sb-features/internal/storage"
)

var (
	exportMatches []int
	exportFormat  string
	exportOut     string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored shot features as JSON or CSV",
	Long: `Dump the stored shot feature rows of one or more matches, one row per shot,
ordered by match and match clock. Absent features are written as null (JSON) or an
empty cell (CSV). Without --match every stored match is exported.

Example:
  sbfeatures export --match 3788741 --format csv --out shots.csv`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().IntSliceVar(&exportMatches, "match", nil, "match id to export (repeatable)")
	exportCmd.Flags().StringVar(&exportFormat, "format", report.FormatJSON, "output format: json or csv")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file (default stdout)")
}

func runExport(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	ids := exportMatches
	if len(ids) == 0 {
		matches, err := db.ListMatches()
		if err != nil {
			return fmt.Errorf("list matches: %w", err)
		}
		for _, m := range matches {
			ids = append(ids, m.MatchID)
		}
	}
	feats, err := db.ShotFeaturesForMatches(ids)
	if err != nil {
		return fmt.Errorf("get shot features: %w", err)
	}

	var w io.Writer = os.Stdout
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("create %s: %w", exportOut, err)
		}
		defer f.Close()
		w = f
	}
	if err := report.WriteFeatures(w, exportFormat, feats); err != nil {
		return fmt.Errorf("export: %w", err)
	}
	if exportOut != "" {
		logger.WithComponent("export").WithField("rows", len(feats)).Infof("wrote %s", exportOut)
	}
	return nil
}
