package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pable/go-sb-features/internal/logger"
	"github.com/pable/go-sb-features/internal/opendata"
	"github.com/pable/go-sb-features/internal/pipeline"
	"github.com/pable/go-sb-features/internal/statsbomb"
	"github.com/pable/go-sb-features/internal/storage"
)

var (
	fetchDerive      bool
	fetchRefresh     bool
	fetchCompetition int
	fetchSeason      int
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [match-id]...",
	Short: "Download match event files from the StatsBomb open-data repository",
	Long: `Download the events file of each match into the cache directory as
<match_id>.json.zst. Files already cached are skipped unless --refresh is set.

With --competition and --season and no match ids, the matches of that
competition season are listed instead. With --derive each fetched file is
derived and stored as by the derive command.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().BoolVar(&fetchDerive, "derive", false, "derive and store each fetched match")
	fetchCmd.Flags().BoolVar(&fetchRefresh, "refresh", false, "download even when the file is cached")
	fetchCmd.Flags().IntVar(&fetchCompetition, "competition", 0, "competition id to list matches for")
	fetchCmd.Flags().IntVar(&fetchSeason, "season", 0, "season id to list matches for")
}

func runFetch(cmd *cobra.Command, args []string) error {
	client := opendata.NewClient(opendata.WithBaseURL(cfg.OpenDataURL))
	ctx := cmd.Context()

	if len(args) == 0 {
		if fetchCompetition == 0 || fetchSeason == 0 {
			return fmt.Errorf("give match ids, or --competition and --season to list matches")
		}
		matches, err := client.Matches(ctx, fetchCompetition, fetchSeason)
		if err != nil {
			return fmt.Errorf("list matches: %w", err)
		}
		fmt.Fprintf(os.Stdout, "%-10s  %-10s  %s\n", "MATCH", "DATE", "FIXTURE")
		for _, m := range matches {
			fmt.Fprintf(os.Stdout, "%-10d  %-10s  %s %d-%d %s\n",
				m.MatchID, m.MatchDate, m.HomeTeam.Name, m.HomeScore, m.AwayScore, m.AwayTeam.Name)
		}
		return nil
	}

	ids := make([]int, 0, len(args))
	for _, a := range args {
		id, err := strconv.Atoi(a)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid match id %q", a)
		}
		ids = append(ids, id)
	}

	if err := os.MkdirAll(cfg.CacheDir, 0755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	var (
		p  *pipeline.Pipeline
		db *storage.DB
	)
	if fetchDerive {
		p = pipeline.New(
			pipeline.WithWorkers(cfg.Workers),
			pipeline.WithLogger(logger.WithComponent("pipeline")),
		)
		if cfg.Store {
			if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
				return fmt.Errorf("create db dir: %w", err)
			}
			var err error
			db, err = storage.Open(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open storage: %w", err)
			}
			defer db.Close()
		}
	}

	for _, id := range ids {
		path, err := fetchMatch(cmd, client, id)
		if err != nil {
			return err
		}
		if p != nil {
			if err := deriveFile(ctx, p, db, path); err != nil {
				return err
			}
		}
	}
	return nil
}

// fetchMatch downloads one events file into the cache and returns its path.
func fetchMatch(cmd *cobra.Command, client *opendata.Client, matchID int) (string, error) {
	path := filepath.Join(cfg.CacheDir, strconv.Itoa(matchID)+".json.zst")
	log := logger.WithMatch(matchID).WithField("path", path)

	if !fetchRefresh {
		if _, err := os.Stat(path); err == nil {
			log.Debug("events file cached")
			return path, nil
		}
	}

	raw, err := client.EventsRaw(cmd.Context(), matchID)
	if err != nil {
		return "", fmt.Errorf("fetch match %d: %w", matchID, err)
	}
	if err := statsbomb.SaveFile(path, raw); err != nil {
		return "", fmt.Errorf("save match %d: %w", matchID, err)
	}
	log.WithField("bytes", len(raw)).Info("events file fetched")
	return path, nil
}
