package cmd

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/pable/go-sb-features/internal/report"
	"github.com/pable/go-sb-features/internal/storage"
)

// summaryCmd is the cobra command for displaying a high-level database overview.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show a high-level overview of the database",
	Long: `Display aggregate statistics about all matches stored in the database:
match and shot counts, per-team shot totals, the most frequent shooters and the
distribution of every shot feature.`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func runSummary(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()
	return printSummary(db)
}

func printSummary(db *storage.DB) error {
	ov, err := db.Overview()
	if err != nil {
		return fmt.Errorf("get overview: %w", err)
	}
	if ov.Matches == 0 {
		fmt.Fprintln(os.Stdout, "No matches stored yet. Run 'sbfeatures derive <events.json>' to add one.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "\n=== Database Summary ===\n\n")
	fmt.Fprintf(os.Stdout, "  Matches stored : %d\n", ov.Matches)
	fmt.Fprintf(os.Stdout, "  Derived        : %s → %s\n", ov.FirstDerived, ov.LatestDerived)
	fmt.Fprintf(os.Stdout, "  Events         : %d\n", ov.Events)
	fmt.Fprintf(os.Stdout, "  Shots          : %d\n", ov.Shots)
	fmt.Fprintf(os.Stdout, "  Failed shots   : %d\n", ov.FailedShots)

	matches, err := db.ListMatches()
	if err != nil {
		return fmt.Errorf("list matches: %w", err)
	}
	ids := make([]int, len(matches))
	for i, m := range matches {
		ids[i] = m.MatchID
	}

	totals, err := db.TeamTotals(ids)
	if err != nil {
		return fmt.Errorf("get team totals: %w", err)
	}
	fmt.Fprintf(os.Stdout, "\n--- Teams ---\n\n")
	report.PrintTeamTotals(os.Stdout, totals)

	shooters, err := db.TopShooters(10)
	if err != nil {
		return fmt.Errorf("get top shooters: %w", err)
	}
	fmt.Fprintf(os.Stdout, "\n--- Most Frequent Shooters ---\n\n")
	st := tablewriter.NewTable(os.Stdout, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))
	st.Header("PLAYER", "TEAM", "SHOTS", "GOALS", "XG", "AVG DIST")
	for _, s := range shooters {
		st.Append(
			s.Player,
			s.Team,
			fmt.Sprintf("%d", s.Shots),
			fmt.Sprintf("%d", s.Goals),
			fmt.Sprintf("%.2f", s.TotalXG),
			fmt.Sprintf("%.1f", s.AvgDist),
		)
	}
	st.Render()

	feats, err := db.ShotFeaturesForMatches(ids)
	if err != nil {
		return fmt.Errorf("get shot features: %w", err)
	}
	fmt.Fprintf(os.Stdout, "\n--- Feature Distributions ---\n\n")
	report.PrintFeatureSummary(os.Stdout, feats)
	return nil
}
