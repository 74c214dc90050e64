package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/hpstore/internal/timeseries"
)

// WriteOptions holds flags for the write command.
type WriteOptions struct {
	*RootOptions
	Values map[string]*float64 // output column -> flag value
}

// WriteResult is the JSON payload of the write command.
type WriteResult struct {
	Time  string            `json:"time"`
	Cells []timeseries.Cell `json:"cells"`
}

// outputFlag returns the flag name for an output column (hp1_load -> hp1-load).
func outputFlag(column string) string {
	return strings.ReplaceAll(column, "_", "-")
}

// NewWriteCommand creates the write command.
func NewWriteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WriteOptions{RootOptions: rootOpts, Values: map[string]*float64{}}

	cmd := &cobra.Command{
		Use:   "write <time>",
		Short: "Write solver outputs into a row",
		Long: `Write solver outputs into the row keyed by <time>.

Only the flags given are written; every other cell of the row keeps its value.
The row must already exist. With --journal the write is also recorded.

Exit codes:
  0 - Row updated
  1 - No row has that key
  2 - Command error (missing file, unknown column, etc.)

Examples:
  hpstore write 202512071900 --hp1-load 80 --hp1-power 18.4
  hpstore write 202512071900 --total-heat-load 45.2 --journal ./journal.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWrite(opts, args[0], cmd)
		},
	}

	for _, column := range timeseries.OutputColumns {
		opts.Values[column] = cmd.Flags().Float64(outputFlag(column), 0, fmt.Sprintf("value for %s", column))
	}

	return cmd
}

func runWrite(opts *WriteOptions, key string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	var outputs timeseries.Outputs
	for _, column := range timeseries.OutputColumns {
		if !cmd.Flags().Changed(outputFlag(column)) {
			continue
		}
		if err := outputs.Set(column, *opts.Values[column]); err != nil {
			return formatter.Fail(NewExitError(ExitCommandError, err.Error()))
		}
	}
	if outputs.Empty() {
		formatter.VerboseLog("no output flags given; the row is only checked")
	}

	a, closeFn, err := opts.openAccessor(cmd)
	if err != nil {
		return formatter.Fail(err)
	}
	defer closeFn()

	if err := a.WriteTimeseries(context.Background(), key, outputs); err != nil {
		return formatter.Fail(err)
	}

	cells := outputs.Cells()
	if cells == nil {
		cells = []timeseries.Cell{}
	}
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = c.Column + "=" + c.Value
	}
	text := fmt.Sprintf("✓ %s updated (%d field(s))", key, len(cells))
	if len(parts) > 0 {
		text += ": " + strings.Join(parts, " ")
	}
	return formatter.Success(WriteResult{Time: key, Cells: cells}, text)
}
