package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/hpstore/internal/accessor"
	"github.com/roach88/hpstore/internal/timeseries"
)

// CountResult is the JSON payload of the count command.
type CountResult struct {
	Count int `json:"count"`
}

// PairResult is the JSON payload of the pair, t2 and f2 commands.
// t2 and f2 leave the other field out.
type PairResult struct {
	Time string  `json:"time"`
	T2   *Number `json:"t2,omitempty"`
	F2   *Number `json:"F2,omitempty"`
}

func number(v float64) *Number {
	n := Number(v)
	return &n
}

// HPResult is the JSON payload of the hp command.
type HPResult struct {
	PowerConsumption  []float64 `json:"power_consumption"`
	SupplyTemperature float64   `json:"supply_temperature"`
	LoadMin           float64   `json:"load_min"`
	LoadMax           float64   `json:"load_max"`
}

// PumpResult is the JSON payload of the pump command.
type PumpResult struct {
	RatedPower float64 `json:"rated_power"`
}

// readCommand builds a command that opens the accessor, runs fn and reports
// its result or error.
func readCommand(opts *RootOptions, use, short, long string, args cobra.PositionalArgs,
	fn func(a *accessor.Accessor, args []string) (data interface{}, text string, err error)) *cobra.Command {
	return &cobra.Command{
		Use:           use,
		Short:         short,
		Long:          long,
		Args:          args,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := opts.formatter(cmd)
			a, closeFn, err := opts.openAccessor(cmd)
			if err != nil {
				return formatter.Fail(err)
			}
			defer closeFn()

			data, text, err := fn(a, args)
			if err != nil {
				return formatter.Fail(err)
			}
			return formatter.Success(data, text)
		},
	}
}

// NewCountCommand creates the count command.
func NewCountCommand(opts *RootOptions) *cobra.Command {
	return readCommand(opts, "count", "Print the number of heat pumps",
		`Print heat_pumps.count from the equipment configuration.

Example:
  hpstore count --equipment ./equipment_config.json`,
		cobra.NoArgs,
		func(a *accessor.Accessor, _ []string) (interface{}, string, error) {
			n, err := a.UnitCount()
			if err != nil {
				return nil, "", err
			}
			return CountResult{Count: n}, fmt.Sprint(n), nil
		})
}

// NewPairCommand creates the pair command.
func NewPairCommand(opts *RootOptions) *cobra.Command {
	return readCommand(opts, "pair <time>", "Print the t2 and F2 inputs of a row",
		`Print the temperature and flow of the row keyed by <time> (YYYYMMDDHHMM).

Exit codes:
  0 - Row found
  1 - No row has that key
  2 - Command error (missing file, malformed value, etc.)

Example:
  hpstore pair 202512071900`,
		cobra.ExactArgs(1),
		func(a *accessor.Accessor, args []string) (interface{}, string, error) {
			p, err := a.TimeseriesPair(args[0])
			if err != nil {
				return nil, "", err
			}
			text := fmt.Sprintf("t2=%s F2=%s", timeseries.FormatValue(p.T2), timeseries.FormatValue(p.F2))
			return PairResult{Time: args[0], T2: number(p.T2), F2: number(p.F2)}, text, nil
		})
}

// NewT2Command creates the t2 command.
func NewT2Command(opts *RootOptions) *cobra.Command {
	return readCommand(opts, "t2 <time>", "Print the t2 input of a row", "", cobra.ExactArgs(1),
		func(a *accessor.Accessor, args []string) (interface{}, string, error) {
			v, err := a.TimeseriesT2(args[0])
			if err != nil {
				return nil, "", err
			}
			return PairResult{Time: args[0], T2: number(v)}, timeseries.FormatValue(v), nil
		})
}

// NewF2Command creates the f2 command.
func NewF2Command(opts *RootOptions) *cobra.Command {
	return readCommand(opts, "f2 <time>", "Print the F2 input of a row", "", cobra.ExactArgs(1),
		func(a *accessor.Accessor, args []string) (interface{}, string, error) {
			v, err := a.TimeseriesF2(args[0])
			if err != nil {
				return nil, "", err
			}
			return PairResult{Time: args[0], F2: number(v)}, timeseries.FormatValue(v), nil
		})
}

// NewHPCommand creates the hp command.
func NewHPCommand(opts *RootOptions) *cobra.Command {
	return readCommand(opts, "hp", "Print the heat pump characteristics",
		`Print the six-point power curve (load 0, 20, 40, 60, 80, 100 %), the
supply temperature and the load limits.`,
		cobra.NoArgs,
		func(a *accessor.Accessor, _ []string) (interface{}, string, error) {
			c, err := a.HeatPumpCharacteristics()
			if err != nil {
				return nil, "", err
			}
			power := make([]string, len(c.Power))
			for i, v := range c.Power {
				power[i] = timeseries.FormatValue(v)
			}
			text := fmt.Sprintf("power_consumption=[%s] supply_temperature=%s load_min=%s load_max=%s",
				strings.Join(power, " "),
				timeseries.FormatValue(c.SupplyTemperature),
				timeseries.FormatValue(c.LoadMin),
				timeseries.FormatValue(c.LoadMax))
			return HPResult{
				PowerConsumption:  c.Power[:],
				SupplyTemperature: c.SupplyTemperature,
				LoadMin:           c.LoadMin,
				LoadMax:           c.LoadMax,
			}, text, nil
		})
}

// NewPumpCommand creates the pump command.
func NewPumpCommand(opts *RootOptions) *cobra.Command {
	return readCommand(opts, "pump", "Print the circulation pump rated power", "", cobra.NoArgs,
		func(a *accessor.Accessor, _ []string) (interface{}, string, error) {
			p, err := a.PumpRatedPower()
			if err != nil {
				return nil, "", err
			}
			return PumpResult{RatedPower: p}, timeseries.FormatValue(p), nil
		})
}
