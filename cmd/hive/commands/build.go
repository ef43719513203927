package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dyluth/hive/internal/build"
	"github.com/dyluth/hive/internal/printer"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Validate the hive state and write the site artifacts",
	Long: `Run the full build:

  validate → derive → write artifacts → site generator → build.json

Validation errors stop the build before anything is written. The
artifacts are replaced atomically. The site generator runs only when
site.command is set in hive.yml. build.json records the build time, the
short Git revision (or "unknown") and the configured notes.

Only one build may write an output directory at a time.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	builder, err := build.New(cfg.BuildOptions(), build.WithLogger(newLogger(cmd)))
	if err != nil {
		return printer.Error("invalid build configuration", err.Error(), []string{"Check site.command in hive.yml"})
	}

	res, err := builder.Run(cmd.Context())
	if err != nil {
		var abort *build.AbortError
		var stageErr *build.StageError
		switch {
		case errors.As(err, &abort):
			return printer.Error(
				"build aborted",
				fmt.Sprintf("%d validation error(s) in %s; nothing was written.", len(abort.Errors), cfg.State),
				[]string{"Fix the errors above and run 'hive build' again"},
			)
		case errors.Is(err, build.ErrLocked):
			return printer.Error(
				"output directory is locked",
				err.Error(),
				[]string{"Wait for the other build to finish", "Raise lock.timeout in hive.yml"},
			)
		case errors.As(err, &stageErr):
			return printer.Error(fmt.Sprintf("build failed at %s", stageErr.Stage), stageErr.Err.Error(), nil)
		default:
			return printer.Error("build failed", err.Error(), nil)
		}
	}

	for _, path := range res.Artifacts {
		printer.Step("wrote %s\n", path)
	}
	printer.Success("build complete %s gitSha=%s\n", res.Meta.BuiltAt, res.Meta.GitSha)
	return nil
}
