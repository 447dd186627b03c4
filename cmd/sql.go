package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/go-sb-features/internal/report"
	"github.com/pable/go-sb-features/internal/storage"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <query>",
	Short: "Run a raw SQL query against the feature database",
	Long: `Query the feature store directly. Results print as a table.

Tables:
  matches(match_id, source, events, shots, failed, derived_at)
  shot_features(event_id, match_id, idx, period, minute, second, possession,
    team, player, outcome, xg, x, y, end_x, end_y, end_z,
    keeper_id, keeper_name, keeper_x, keeper_y,
    shooter_x, shooter_y, keeper_corr_x, keeper_corr_y,
    dist_to_goal, angle_to_goal, dist_to_keeper, angle_to_keeper, angle_deviation,
    avg_shot_velocity, dist_shooter_to_keeper,
    density, density_in_cone, defenders_in_cone, nearest_defender,
    second_nearest_defender, keeper_cone_defenders, attackers_behind_ball,
    defenders_behind_ball, defended_area,
    elapsed_time, start_of_possession, time_in_possession, time_to_possession_end,
    diagnostic)

Absent features are NULL. Example:
  sbfeatures sql "SELECT player, AVG(density) FROM shot_features GROUP BY player"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSQL,
}

func runSQL(_ *cobra.Command, args []string) error {
	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	cols, rows, err := db.QueryRaw(strings.Join(args, " "))
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}
	if len(rows) == 0 {
		fmt.Fprintln(os.Stdout, "(no rows)")
		return nil
	}
	report.PrintRows(os.Stdout, cols, rows)
	return nil
}
