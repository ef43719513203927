package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/dyluth/hive/internal/printer"
	"github.com/dyluth/hive/internal/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the hive state document",
	Long: `Normalize the hive state document and report what was found.

Warnings (defaulted or migrated fields) are printed and do not fail.
Errors (missing schema or updatedAt, bad max_minions or roster shape,
roster over capacity, duplicate minion ids, absolute avatar URLs) are
printed and exit with status 1.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	_, err = validate.Run(afero.NewOsFs(), cfg.State)
	if err == nil {
		return nil
	}
	if errors.Is(err, validate.ErrInvalidState) {
		// Each error has already been printed
		return err
	}
	return printer.Error(
		"cannot read hive state",
		err.Error(),
		[]string{fmt.Sprintf("Check that %s exists and is valid JSON", cfg.State), "Run 'hive init' to create a seed document"},
	)
}
