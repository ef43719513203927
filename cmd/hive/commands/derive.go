package commands

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/dyluth/hive/internal/derive"
	"github.com/dyluth/hive/internal/filter"
	"github.com/dyluth/hive/internal/printer"
	"github.com/dyluth/hive/internal/report"
	"github.com/dyluth/hive/internal/timespec"
	"github.com/dyluth/hive/internal/validate"
)

var (
	deriveOutputFormat string
	deriveSince        string
	deriveUntil        string
	deriveTopic        string
	deriveWho          string
)

var deriveCmd = &cobra.Command{
	Use:   "derive",
	Short: "Print the derived view without writing anything",
	Long: `Derive the site view from the hive state and print it.

Output Formats:
  table - Feed, roster and task board as aligned tables (default)
  json  - The complete derived state, including warnings and errors
  jsonl - One feed item per line

Feed Filters (applied to the feed in every format):
  --since  - Items at or after this time (duration or timestamp)
  --until  - Items at or before this time
  --topic  - Topic glob pattern ("*_RESULT", "TXN")
  --who    - Author, case-insensitive

Derivation never fails on validation errors; they are included in the
output. Use 'hive validate' to gate on them.

Examples:
  # Inspect the merged feed with strict timestamp ordering
  hive derive --feed-order=strict

  # Ledger activity from the last day
  hive derive --who=LEDGER --since=24h

  # Pipe feed items to jq
  hive derive -o jsonl | jq 'select(.who=="LEDGER")'`,
	Args: cobra.NoArgs,
	RunE: runDerive,
}

func init() {
	deriveCmd.Flags().StringVarP(&deriveOutputFormat, "output", "o", "table", "Output format: table, json or jsonl")
	deriveCmd.Flags().StringVar(&deriveSince, "since", "", "Show feed items after time (duration or timestamp)")
	deriveCmd.Flags().StringVar(&deriveUntil, "until", "", "Show feed items before time (duration or timestamp)")
	deriveCmd.Flags().StringVar(&deriveTopic, "topic", "", "Filter feed by topic (glob pattern)")
	deriveCmd.Flags().StringVar(&deriveWho, "who", "", "Filter feed by author")
	rootCmd.AddCommand(deriveCmd)
}

func runDerive(cmd *cobra.Command, args []string) error {
	switch deriveOutputFormat {
	case "table", "json", "jsonl":
	default:
		return printer.Error(
			"invalid output format",
			fmt.Sprintf("Unknown format: %s", deriveOutputFormat),
			[]string{"Valid formats: table, json, jsonl"},
		)
	}

	since, until, err := timespec.ParseRange(deriveSince, deriveUntil, timespec.Now())
	if err != nil {
		return printer.Error("invalid time filter", err.Error(), []string{"Use a duration like '2h' or a timestamp like '2024-03-01T12:00:00Z'"})
	}
	criteria := filter.Criteria{Since: since, Until: until, TopicGlob: deriveTopic, Who: deriveWho}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	raw, err := validate.Load(afero.NewOsFs(), cfg.State)
	if err != nil {
		return printer.Error("cannot read hive state", err.Error(), nil)
	}
	state := derive.Derive(raw, cfg.DeriveOptions())
	if criteria.HasFilters() {
		state.FeedItems = criteria.Apply(state.FeedItems)
	}

	out := cmd.OutOrStdout()
	switch deriveOutputFormat {
	case "json":
		return report.FormatJSON(out, state)
	case "jsonl":
		return report.FormatJSONL(out, state.FeedItems)
	default:
		report.FormatTable(out, state)
		return nil
	}
}
