package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/hpstore/internal/journal"
)

// HistoryResult is the JSON payload of the history command.
type HistoryResult struct {
	Table   string          `json:"table"`
	Entries []journal.Entry `json:"entries"`
	Total   int             `json:"total"`
}

// ReplayResult is the JSON payload of the replay command.
type ReplayResult struct {
	Table   string `json:"table"`
	Applied int    `json:"applied"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [time]",
		Short: "List journaled writes",
		Long: `List the writes recorded in the journal for the time-series file, oldest
first. With [time], only writes to that row are listed.

Examples:
  hpstore history --journal ./journal.db
  hpstore history 202512071900 --journal ./journal.db --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			key := ""
			if len(args) == 1 {
				key = args[0]
			}
			return runHistory(rootOpts, key, cmd)
		},
	}

	return cmd
}

func runHistory(opts *RootOptions, key string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	a, closeFn, err := opts.openAccessor(cmd)
	if err != nil {
		return formatter.Fail(err)
	}
	defer closeFn()

	entries, err := a.History(context.Background(), key)
	if err != nil {
		return formatter.Fail(err)
	}

	result := HistoryResult{
		Table:   a.Paths().Timeseries,
		Entries: entries,
		Total:   len(entries),
	}
	return formatter.Success(result, historyText(result))
}

func historyText(result HistoryResult) string {
	if result.Total == 0 {
		return "No writes recorded."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "History: %d write(s)\n", result.Total)
	for _, e := range result.Entries {
		parts := make([]string, len(e.Cells))
		for i, c := range e.Cells {
			parts[i] = c.Column + "=" + c.Value
		}
		fmt.Fprintf(&b, "\n%4d  %s  %s  %s", e.Seq, e.RecordedAt.Format(time.RFC3339), e.Key, strings.Join(parts, " "))
	}
	return b.String()
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-apply journaled writes to the time-series file",
		Long: `Re-apply every write recorded in the journal for the time-series file, in
the order they were made, and rewrite the file once.

Use this after the upstream producer re-provisions the file and the solver
outputs have to be restored. Replay does not record new journal entries.

Exit codes:
  0 - All writes re-applied
  1 - A journaled row no longer exists (the file is left untouched)
  2 - Command error (no journal configured, missing file, etc.)

Examples:
  hpstore replay --journal ./journal.db
  hpstore replay --journal ./journal.db --timeseries ./timeseries.csv --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(rootOpts, cmd)
		},
	}

	return cmd
}

func runReplay(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	a, closeFn, err := opts.openAccessor(cmd)
	if err != nil {
		return formatter.Fail(err)
	}
	defer closeFn()

	n, err := a.Replay(context.Background())
	if err != nil {
		return formatter.Fail(err)
	}

	result := ReplayResult{Table: a.Paths().Timeseries, Applied: n}
	text := fmt.Sprintf("✓ Replayed %d write(s) onto %s", n, result.Table)
	if n == 0 {
		text = "No writes recorded."
	}
	return formatter.Success(result, text)
}
