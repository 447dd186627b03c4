package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pable/go-sb-features/internal/storage"
)

var (
	dropForce bool
	dropAll   bool
)

// dropCmd deletes one stored match, or the whole database with --all.
var dropCmd = &cobra.Command{
	Use:   "drop [match-id]",
	Short: "Delete a stored match, or the whole feature database",
	Long: `Delete one match and its shot features from the database. With --all,
permanently delete the SQLite database file; re-derive your event files afterwards
to rebuild it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDrop,
}

func init() {
	dropCmd.Flags().BoolVarP(&dropForce, "force", "f", false, "skip confirmation prompt")
	dropCmd.Flags().BoolVar(&dropAll, "all", false, "delete the whole database file")
}

func runDrop(cmd *cobra.Command, args []string) error {
	if dropAll {
		return dropDatabase()
	}
	if len(args) != 1 {
		return fmt.Errorf("drop needs a match id, or --all")
	}
	matchID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid match id %q: %w", args[0], err)
	}

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	deleted, err := db.DeleteMatch(matchID)
	if err != nil {
		return fmt.Errorf("delete match: %w", err)
	}
	if !deleted {
		fmt.Fprintf(os.Stdout, "Match %d is not stored, nothing to drop.\n", matchID)
		return nil
	}
	fmt.Fprintf(os.Stdout, "Deleted match %d\n", matchID)
	return nil
}

func dropDatabase() error {
	if !dropForce {
		fmt.Fprintf(os.Stderr, "This will permanently delete: %s\n", cfg.DBPath)
		fmt.Fprintf(os.Stderr, "Re-run with --force to confirm.\n")
		return nil
	}
	if err := os.Remove(cfg.DBPath); err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(os.Stdout, "Database does not exist, nothing to drop.")
			return nil
		}
		return fmt.Errorf("remove database: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Deleted: %s\n", cfg.DBPath)
	return nil
}
