package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/roach88/hpstore/internal/accessor"
	"github.com/roach88/hpstore/internal/config"
	"github.com/roach88/hpstore/internal/equipment"
	"github.com/roach88/hpstore/internal/journal"
	"github.com/roach88/hpstore/internal/storeerr"
	"github.com/roach88/hpstore/internal/testutil"
	"github.com/roach88/hpstore/internal/timeseries"
)

// journalEpoch is the first recorded_at time of every scenario journal.
var journalEpoch = time.Date(2025, 12, 7, 0, 0, 0, 0, time.UTC)

// Harness is the scenario execution engine.
type Harness struct {
	scenario *Scenario
	accessor *accessor.Accessor
	logger   *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against fresh copies of its fixtures in a temporary
// directory, which is removed before Run returns.
//
// Execution flow:
// 1. Copy fixtures into a temporary directory
// 2. Open a journal there if the scenario asks for one
// 3. Execute steps, checking each outcome against its expectation
// 4. Capture the final time-series bytes
func Run(scenario *Scenario) (*Result, error) {
	dir, err := os.MkdirTemp("", "hpstore-scenario-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scenario dir: %w", err)
	}
	defer os.RemoveAll(dir)

	cfg := config.Config{
		Equipment:  filepath.Join(dir, equipmentName(scenario)),
		Timeseries: filepath.Join(dir, filepath.Base(scenario.Timeseries)),
	}
	if scenario.Equipment != "" {
		if err := copyFile(scenario.Equipment, cfg.Equipment); err != nil {
			return nil, err
		}
	}
	if err := copyFile(scenario.Timeseries, cfg.Timeseries); err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	opts := []accessor.Option{accessor.WithLogger(logger)}
	if scenario.Journal {
		cfg.Journal = filepath.Join(dir, "journal.db")
		j, err := journal.Open(cfg.Journal,
			journal.WithIDGenerator(testutil.NewSequentialIDGenerator("entry")),
			journal.WithClock(testutil.NewSteppingClock(journalEpoch, time.Second)),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to open journal: %w", err)
		}
		defer j.Close()
		opts = append(opts, accessor.WithJournal(j))
	}

	h := &Harness{
		scenario: scenario,
		accessor: accessor.New(cfg, opts...),
		logger:   logger,
	}

	ctx := context.Background()
	result := NewResult()
	for i, step := range scenario.Steps {
		outcome, err := h.execute(ctx, step)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i, step.Op, err)
		}
		result.AddOutcome(outcome)
		if err := checkOutcome(i, step, outcome); err != nil {
			result.AddError(err.Error())
		}
		h.logger.Info("step completed", "step", i, "op", step.Op, "time", step.Time, "error", outcome.Error)
	}

	result.Table, err = os.ReadFile(cfg.Timeseries)
	if err != nil {
		return nil, fmt.Errorf("failed to read final table: %w", err)
	}
	return result, nil
}

// execute runs one step. Store errors become part of the outcome; only
// harness failures are returned.
func (h *Harness) execute(ctx context.Context, step Step) (Outcome, error) {
	a := h.accessor
	out := Outcome{Op: step.Op, Time: step.Time}

	var err error
	switch step.Op {
	case OpUnitCount:
		var n int
		if n, err = a.UnitCount(); err == nil {
			out.Count = &n
		}
	case OpPair:
		var p timeseries.Pair
		if p, err = a.TimeseriesPair(step.Time); err == nil {
			out.Values = []float64{p.T2, p.F2}
		}
	case OpT2:
		var v float64
		if v, err = a.TimeseriesT2(step.Time); err == nil {
			out.Values = []float64{v}
		}
	case OpF2:
		var v float64
		if v, err = a.TimeseriesF2(step.Time); err == nil {
			out.Values = []float64{v}
		}
	case OpHPCharacteristics:
		var c equipment.HeatPumpCharacteristics
		if c, err = a.HeatPumpCharacteristics(); err == nil {
			t := c.Tuple()
			out.Values = t[:]
		}
	case OpPumpRatedPower:
		var v float64
		if v, err = a.PumpRatedPower(); err == nil {
			out.Values = []float64{v}
		}
	case OpWrite:
		o, convErr := timeseries.OutputsFromMap(step.Outputs)
		if convErr != nil {
			return out, convErr
		}
		err = a.WriteTimeseries(ctx, step.Time, o)
	case OpHistory:
		var entries []journal.Entry
		if entries, err = a.History(ctx, step.Time); err == nil {
			n := len(entries)
			out.Count = &n
		}
	case OpReplay:
		var n int
		if n, err = a.Replay(ctx); err == nil {
			out.Count = &n
		}
	case OpResetTimeseries:
		return out, copyFile(h.scenario.Timeseries, a.Paths().Timeseries)
	default:
		return out, fmt.Errorf("unknown op %q", step.Op)
	}

	if err != nil {
		kind, ok := errorKind(err)
		if !ok {
			return out, err
		}
		out.Error = kind
	}
	return out, nil
}

// errorKind maps store errors onto scenario error kinds.
func errorKind(err error) (string, bool) {
	switch {
	case storeerr.IsNotFound(err):
		return ErrorNotFound, true
	case storeerr.IsParse(err):
		return ErrorParse, true
	case storeerr.IsIO(err):
		return ErrorIO, true
	}
	return "", false
}

func equipmentName(s *Scenario) string {
	if s.Equipment == "" {
		return "equipment_config.json"
	}
	return filepath.Base(s.Equipment)
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("failed to read fixture: %w", err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("failed to copy fixture: %w", err)
	}
	return nil
}
