package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/go-sb-features/internal/report"
	"github.com/pable/go-sb-features/internal/storage"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cMuted    = color.New(color.Faint)
	cError    = color.New(color.FgRed, color.Bold)
	cWarn     = color.New(color.FgYellow)
	cCmd      = color.New(color.FgYellow, color.Bold)
	cGreeting = color.New(color.Bold)
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive REPL session",
	Long:  "Open a persistent session against the database. Type 'help' for available commands.",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

func runShell(_ *cobra.Command, _ []string) error {
	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	cGreeting.Println("sbfeatures shell")
	cMuted.Println("type 'help' or 'exit'")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		cPrompt.Print("sbfeatures")
		cMuted.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		tokens := strings.Fields(line)
		cmd, args := tokens[0], tokens[1:]

		switch cmd {
		case "exit", "quit":
			return nil
		case "help":
			shellHelp()
		case "list":
			shellList(db)
		case "show":
			if len(args) == 0 {
				cError.Fprintln(os.Stderr, "usage: show <match-id>")
				continue
			}
			shellShow(db, args[0])
		case "summary":
			if err := printSummary(db); err != nil {
				cError.Fprintf(os.Stderr, "error: %v\n", err)
			}
		case "sql":
			shellSQL(db, strings.TrimSpace(strings.TrimPrefix(line, cmd)))
		default:
			cWarn.Fprintf(os.Stderr, "unknown command %q — type 'help'\n", cmd)
		}
	}
	return nil
}

func shellHelp() {
	fmt.Println()
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"list", "list all stored matches"},
		{"show <match-id>", "show a match's shot features"},
		{"summary", "database overview and feature distributions"},
		{"sql <query>", "run a raw SQL query"},
		{"help", "show this message"},
		{"exit / quit", "close the session"},
	}
	for _, r := range rows {
		fmt.Print("  ")
		cCmd.Printf("%-24s", r.cmd)
		fmt.Println(r.desc)
	}
	fmt.Println()
}

func shellList(db *storage.DB) {
	matches, err := db.ListMatches()
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if len(matches) == 0 {
		cMuted.Println("No matches stored yet.")
		return
	}
	report.PrintMatchList(os.Stdout, matches)
}

func shellShow(db *storage.DB, arg string) {
	matchID, err := strconv.Atoi(arg)
	if err != nil {
		cError.Fprintf(os.Stderr, "invalid match id %q\n", arg)
		return
	}
	exists, err := db.MatchExists(matchID)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if !exists {
		cWarn.Fprintf(os.Stderr, "no match %d stored\n", matchID)
		return
	}
	if err := showMatch(db, matchID); err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
	}
}

func shellSQL(db *storage.DB, query string) {
	if query == "" {
		cError.Fprintln(os.Stderr, "usage: sql <query>")
		return
	}
	cols, rows, err := db.QueryRaw(query)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if len(rows) == 0 {
		cMuted.Println("(no rows)")
		return
	}
	report.PrintRows(os.Stdout, cols, rows)
}
