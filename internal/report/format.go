// Package report renders a derived hive view for people: a compact text
// table for the terminal and pretty or line-delimited JSON for tools.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/dyluth/hive/internal/artifact"
	"github.com/dyluth/hive/internal/derive"
	"github.com/dyluth/hive/pkg/hivestate"
)

const textWidth = 40

// FormatTable writes the feed, roster and task board of d as aligned tables.
func FormatTable(w io.Writer, d derive.State) {
	fmt.Fprintf(w, "Hive state as of %s\n", d.LastUpdated)
	fmt.Fprintf(w, "Meters: voltage=%s entropy=%s loop_risk=%s\n\n",
		hivestate.FormatNumber(d.Meters.VirtualVoltage),
		hivestate.FormatNumber(d.Meters.Entropy),
		hivestate.FormatNumber(d.Meters.LoopRisk))

	formatFeed(w, d.FeedItems)
	formatRoster(w, d.RosterFull)
	formatTasks(w, d.Tasks)

	if len(d.Warnings) > 0 || len(d.Errors) > 0 {
		fmt.Fprintf(w, "%s, %s\n", plural(len(d.Warnings), "warning"), plural(len(d.Errors), "error"))
	}
}

func formatFeed(w io.Writer, items []derive.FeedItem) {
	if len(items) == 0 {
		fmt.Fprintf(w, "No feed items\n\n")
		return
	}
	fmt.Fprintf(w, "%-17s %-10s %-14s %-8s %s\n", "WHEN", "WHO", "TOPIC", "STATUS", "TEXT")
	fmt.Fprintf(w, "%-17s %-10s %-14s %-8s %s\n",
		"-----------------", "----------", "--------------", "--------", "----------------------------------------")
	for _, item := range items {
		fmt.Fprintf(w, "%-17s %-10s %-14s %-8s %s\n",
			orDash(item.When), clip(item.Who, 10), clip(item.Topic, 14), orDash(item.Status), formatText(item.Text))
	}
	fmt.Fprintf(w, "\n%s\n\n", plural(len(items), "feed item"))
}

func formatRoster(w io.Writer, roster []hivestate.Minion) {
	if len(roster) == 0 {
		fmt.Fprintf(w, "No minions\n\n")
		return
	}
	fmt.Fprintf(w, "%-12s %-5s %-14s %-10s %s\n", "ID", "TIER", "ROLE", "MODE", "AVATAR")
	fmt.Fprintf(w, "%-12s %-5s %-14s %-10s %s\n",
		"------------", "-----", "--------------", "----------", "--------------------")
	for _, m := range roster {
		fmt.Fprintf(w, "%-12s %-5s %-14s %-10s %s\n",
			clip(m.ID, 12), hivestate.FormatNumber(m.Tier), clip(m.Role, 14), clip(m.Mode, 10), orDash(m.AvatarURL))
	}
	fmt.Fprintf(w, "\n%s\n\n", plural(len(roster), "minion"))
}

func formatTasks(w io.Writer, tasks []hivestate.Task) {
	if len(tasks) == 0 {
		fmt.Fprintf(w, "No tasks\n\n")
		return
	}
	fmt.Fprintf(w, "%-10s %-8s %-10s %s\n", "ID", "STATUS", "OWNER", "TITLE")
	fmt.Fprintf(w, "%-10s %-8s %-10s %s\n", "----------", "--------", "----------", "----------------------------------------")
	for _, task := range tasks {
		fmt.Fprintf(w, "%-10s %-8s %-10s %s\n",
			clip(task.ID, 10), orDash(task.Status), clip(task.Owner, 10), formatText(task.Title))
	}
	fmt.Fprintf(w, "\n%s\n\n", plural(len(tasks), "task"))
}

// FormatJSON writes v as indented JSON, encoded exactly like the artifacts.
func FormatJSON(w io.Writer, v any) error {
	data, err := artifact.Encode(v)
	if err != nil {
		return fmt.Errorf("failed to marshal to JSON: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}
	return nil
}

// FormatJSONL writes one compact JSON object per feed item.
// This format is ideal for streaming into tools like jq.
func FormatJSONL(w io.Writer, items []derive.FeedItem) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, item := range items {
		if err := enc.Encode(item); err != nil {
			return fmt.Errorf("failed to write JSONL output: %w", err)
		}
	}
	return nil
}

// formatText keeps the first non-empty line and cuts it to textWidth runes.
// Empty text renders as "-".
func formatText(text string) string {
	var firstLine string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			firstLine = trimmed
			break
		}
	}
	if firstLine == "" {
		return "-"
	}
	return clip(firstLine, textWidth)
}

// clip shortens s to width runes, marking the cut with "...".
func clip(s string, width int) string {
	if s == "" {
		return "-"
	}
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	return string([]rune(s)[:width-3]) + "..."
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
