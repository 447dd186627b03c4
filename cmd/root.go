package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/pable/go-sb-features/internal/config"
	"github.com/pable/go-sb-features/internal/logger"
)

var (
	cfg        = config.New()
	configPath string
	dbPath     string
	logLevel   string
	workers    int
)

var rootCmd = &cobra.Command{
	Use:   "sbfeatures",
	Short: "StatsBomb shot feature tool",
	Long:  "Derive shot and possession features from StatsBomb event files and store them for analysis.",
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		loaded, err := config.Load(cmd.Context(), configPath)
		if err != nil {
			return err
		}
		flags := cmd.Flags()
		if flags.Changed("db") {
			loaded.DBPath = dbPath
		}
		if flags.Changed("log-level") {
			loaded.LogLevel = logLevel
		}
		if flags.Changed("workers") {
			loaded.Workers = workers
		}
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = loaded
		logger.Init(cfg.LogLevel, cfg.LogFormat)
		return nil
	},
	SilenceUsage: true,
}

// Execute runs the root command. An interrupt cancels the running derivation.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	defaults := config.New()
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "YAML config file (default $SBF_CONFIG)")
	pf.StringVar(&dbPath, "db", defaults.DBPath, "path to SQLite database")
	pf.StringVar(&logLevel, "log-level", defaults.LogLevel, "log level: debug, info, warn, error")
	pf.IntVar(&workers, "workers", defaults.Workers, "concurrent shot geometry workers")

	rootCmd.AddCommand(deriveCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(dropCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(fetchCmd)
}
