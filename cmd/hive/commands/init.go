package commands

import (
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/dyluth/hive/internal/printer"
	"github.com/dyluth/hive/internal/scaffold"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new hive project",
	Long: `Initialize a new hive project in the current directory.

Creates:
  • hive.yml - Project configuration file
  • docs/hive_state.json - Seed hive state that validates cleanly

Use --force to rewrite hive.yml. An existing hive state document is never
overwritten.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&forceInit, "force", false, "Rewrite an existing hive.yml")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	outcome, err := scaffold.NewInitializer(afero.NewOsFs(), ".").Initialize(forceInit)
	if err != nil {
		return printer.Error("initialization failed", err.Error(), nil)
	}

	scaffold.PrintSuccess(outcome)
	return nil
}
