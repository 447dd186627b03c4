package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pable/go-sb-features/internal/storage"
)

var showCmd = &cobra.Command{
	Use:   "show <match-id>",
	Short: "Show stored shot features for a match",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	showCmd.Flags().BoolVarP(&deriveQuiet, "quiet", "q", false, "print only the match summary")
}

func runShow(cmd *cobra.Command, args []string) error {
	matchID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid match id %q: %w", args[0], err)
	}

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	exists, err := db.MatchExists(matchID)
	if err != nil {
		return fmt.Errorf("query match: %w", err)
	}
	if !exists {
		fmt.Fprintf(os.Stderr, "No match %d stored\n", matchID)
		return nil
	}
	return showMatch(db, matchID)
}
