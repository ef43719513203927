package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/dyluth/hive/internal/config"
	"github.com/dyluth/hive/internal/logging"
	"github.com/dyluth/hive/internal/printer"
)

var (
	version string
	commit  string
	date    string
)

// Global flags
var (
	configPath string
	verbose    bool
	statePath  string
	outputDir  string
	feedOrder  string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "hive",
	Short: "hive - validate and publish the hive state",
	Long: `hive turns the canonical hive state document into the JSON artifacts
the static site reads.

It normalizes docs/hive_state.json, refuses to continue on structural
errors, derives the sorted roster, merged activity feed and task board,
and writes status.json, feed.json, minions.json, agora.json and build.json.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// If no subcommand is specified, show help
		return cmd.Help()
	},
	// Enable strict flag parsing - unknown flags will cause an error
	FParseErrWhitelist: cobra.FParseErrWhitelist{},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// We print formatted colored errors directly in the printer package
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	return rootCmd.ExecuteContext(ctx)
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "f", config.FileName, "Path to hive.yml")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Log each build stage")
	rootCmd.PersistentFlags().StringVar(&statePath, "state", "", "Override the hive state document path")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "", "Override the artifact output directory")
	rootCmd.PersistentFlags().StringVar(&feedOrder, "feed-order", "", "Override feed ordering: legacy or strict")
}

// loadConfig reads the configuration and applies flag overrides. A missing
// hive.yml is fine unless --config was given explicitly.
func loadConfig(cmd *cobra.Command) (*config.HiveConfig, error) {
	var (
		cfg *config.HiveConfig
		err error
	)
	if cmd.Flags().Changed("config") {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadOrDefault(configPath)
	}
	if err != nil {
		return nil, printer.Error(
			"invalid configuration",
			err.Error(),
			[]string{fmt.Sprintf("Fix %s or run 'hive init --force' to regenerate it", configPath)},
		)
	}

	if statePath != "" {
		cfg.State = statePath
	}
	if outputDir != "" {
		cfg.Output = outputDir
	}
	if feedOrder != "" {
		cfg.Feed.Order = feedOrder
	}
	if err := cfg.Validate(); err != nil {
		return nil, printer.Error("invalid flags", err.Error(), []string{"Valid feed orders: legacy, strict"})
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command) logging.Logger {
	level := logging.WarnLevel
	if verbose {
		level = logging.DebugLevel
	}
	return logging.New(cmd.ErrOrStderr(), level)
}
