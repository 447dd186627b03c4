package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pable/go-sb-features/internal/logger"
	"github.com/pable/go-sb-features/internal/metrics"
	"github.com/pable/go-sb-features/internal/model"
	"github.com/pable/go-sb-features/internal/pipeline"
	"github.com/pable/go-sb-features/internal/report"
	"github.com/pable/go-sb-features/internal/statsbomb"
	"github.com/pable/go-sb-features/internal/storage"
)

var (
	deriveNoStore bool
	deriveForce   bool
	deriveMetrics bool
	deriveQuiet   bool
)

var deriveCmd = &cobra.Command{
	Use:   "derive <events.json|dir>...",
	Short: "Derive shot features from StatsBomb event files and store them",
	Long: `Load one or more StatsBomb open-data event files (<match_id>.json, optionally
.gz or .zst compressed), derive location, goalkeeper, shot angle, freeze-frame,
elapsed time and possession features, print them and store them.

Directories are walked for event files. A match already in the database is
shown from the cache unless --force is set.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDerive,
}

func init() {
	deriveCmd.Flags().BoolVar(&deriveNoStore, "no-store", false, "do not write features to the database")
	deriveCmd.Flags().BoolVar(&deriveForce, "force", false, "re-derive matches that are already stored")
	deriveCmd.Flags().BoolVar(&deriveMetrics, "metrics", false, "print pipeline metrics after deriving")
	deriveCmd.Flags().BoolVarP(&deriveQuiet, "quiet", "q", false, "print only the match summaries")
}

func runDerive(cmd *cobra.Command, args []string) error {
	paths, err := statsbomb.ExpandPaths(args)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no event files found in %v", args)
	}

	var db *storage.DB
	if cfg.Store && !deriveNoStore {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
			return fmt.Errorf("create db dir: %w", err)
		}
		db, err = storage.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		defer db.Close()
	}

	rec := metrics.NewRecorder()
	p := pipeline.New(
		pipeline.WithWorkers(cfg.Workers),
		pipeline.WithObserver(rec),
		pipeline.WithLogger(logger.WithComponent("pipeline")),
	)

	for _, path := range paths {
		if err := deriveFile(cmd.Context(), p, db, path); err != nil {
			return err
		}
	}

	if deriveMetrics {
		samples, err := rec.Snapshot()
		if err != nil {
			return fmt.Errorf("gather metrics: %w", err)
		}
		fmt.Fprintln(os.Stdout)
		report.PrintMetrics(os.Stdout, samples)
	}
	return nil
}

func deriveFile(ctx context.Context, p *pipeline.Pipeline, db *storage.DB, path string) error {
	matchID, err := statsbomb.MatchIDFromPath(path)
	if err != nil {
		return err
	}
	log := logger.WithMatch(matchID).WithField("path", path)

	if db != nil && !deriveForce {
		exists, err := db.MatchExists(matchID)
		if err != nil {
			return fmt.Errorf("check match: %w", err)
		}
		if exists {
			fmt.Fprintf(os.Stdout, "Match %d already stored — showing cached results.\n", matchID)
			return showMatch(db, matchID)
		}
	}

	log.Info("loading events")
	mf, err := statsbomb.LoadFile(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}

	start := time.Now()
	batch, err := p.Run(ctx, mf.Events)
	if err != nil {
		return fmt.Errorf("derive match %d: %w", matchID, err)
	}
	feats := batch.ShotFeatures()
	summary := model.MatchSummary{
		MatchID:   matchID,
		Source:    path,
		Events:    len(batch.Records),
		Shots:     len(feats),
		Failed:    len(batch.Diagnostics()),
		DerivedAt: time.Now(),
	}
	log.WithFields(logrus.Fields{
		"events":  summary.Events,
		"shots":   summary.Shots,
		"failed":  summary.Failed,
		"elapsed": time.Since(start),
	}).Info("match derived")

	if db != nil {
		if err := db.InsertMatch(summary); err != nil {
			return fmt.Errorf("insert match: %w", err)
		}
		if err := db.InsertShotFeatures(feats); err != nil {
			return fmt.Errorf("insert shot features: %w", err)
		}
	}

	printMatch(summary, feats)
	return nil
}

func printMatch(summary model.MatchSummary, feats []model.ShotFeatures) {
	report.PrintMatchSummary(os.Stdout, summary)
	if deriveQuiet {
		return
	}
	report.PrintShotTable(os.Stdout, feats)
	fmt.Fprintln(os.Stdout)
	report.PrintDefenderTable(os.Stdout, feats)
	fmt.Fprintln(os.Stdout)
	report.PrintFeatureSummary(os.Stdout, feats)
}

func showMatch(db *storage.DB, matchID int) error {
	match, err := db.GetMatch(matchID)
	if err != nil {
		return fmt.Errorf("query match: %w", err)
	}
	if match == nil {
		return fmt.Errorf("match not found: %d", matchID)
	}
	feats, err := db.GetShotFeatures(matchID)
	if err != nil {
		return fmt.Errorf("get shot features: %w", err)
	}
	printMatch(*match, feats)
	return nil
}
