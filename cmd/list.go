package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-sb-features/internal/report"
	"github.com/pable/go-sb-features/internal/storage"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored matches",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	matches, err := db.ListMatches()
	if err != nil {
		return fmt.Errorf("list matches: %w", err)
	}
	if len(matches) == 0 {
		fmt.Fprintln(os.Stdout, "No matches stored yet. Run 'sbfeatures derive <events.json>' to add one.")
		return nil
	}
	report.PrintMatchList(os.Stdout, matches)
	return nil
}
