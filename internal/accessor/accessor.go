// Package accessor is the record store surface called by the solver.
//
// Each operation opens the resource it needs, does a full scan (and, for
// writes, a full rewrite), and closes it before returning. Nothing is cached
// and no handle is held between calls. Operations are not coordinated with
// each other: a caller running several writers at once against the same table
// can lose updates.
package accessor

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/hpstore/internal/config"
	"github.com/roach88/hpstore/internal/equipment"
	"github.com/roach88/hpstore/internal/journal"
	"github.com/roach88/hpstore/internal/timeseries"
)

// Journal records applied patches and lists them back for replay.
// *journal.Journal satisfies it.
type Journal interface {
	Record(ctx context.Context, table, key string, cells []timeseries.Cell) (journal.Entry, error)
	Entries(ctx context.Context, table, key string) ([]journal.Entry, error)
}

// Option configures an Accessor.
type Option func(*Accessor)

// WithJournal records every successful write in j.
func WithJournal(j Journal) Option {
	return func(a *Accessor) { a.journal = j }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(a *Accessor) { a.logger = l }
}

// Accessor performs point lookups and point updates against the equipment
// document and the time-series table named by its configuration.
type Accessor struct {
	paths   config.Config
	journal Journal
	logger  *slog.Logger
}

// New creates an Accessor. Empty paths in cfg fall back to config.Default.
func New(cfg config.Config, opts ...Option) *Accessor {
	a := &Accessor{
		paths:  cfg.WithDefaults(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Paths returns the resolved configuration.
func (a *Accessor) Paths() config.Config {
	return a.paths
}

// UnitCount returns the number of heat pumps.
func (a *Accessor) UnitCount() (int, error) {
	n, err := equipment.UnitCount(a.paths.Equipment)
	if err != nil {
		return 0, err
	}
	a.logger.Debug("unit count read", "path", a.paths.Equipment, "count", n)
	return n, nil
}

// TimeseriesPair returns the (t2, F2) inputs for the row keyed by key.
func (a *Accessor) TimeseriesPair(key string) (timeseries.Pair, error) {
	p, err := timeseries.ReadPair(a.paths.Timeseries, key)
	if err != nil {
		return timeseries.Pair{}, err
	}
	a.logger.Debug("timeseries pair read", "path", a.paths.Timeseries, "time", key, "t2", p.T2, "F2", p.F2)
	return p, nil
}

// TimeseriesT2 returns only the temperature for key.
func (a *Accessor) TimeseriesT2(key string) (float64, error) {
	p, err := a.TimeseriesPair(key)
	return p.T2, err
}

// TimeseriesF2 returns only the flow for key.
func (a *Accessor) TimeseriesF2(key string) (float64, error) {
	p, err := a.TimeseriesPair(key)
	return p.F2, err
}

// HeatPumpCharacteristics returns the power curve, supply temperature and load limits.
func (a *Accessor) HeatPumpCharacteristics() (equipment.HeatPumpCharacteristics, error) {
	c, err := equipment.ReadHeatPumpCharacteristics(a.paths.Equipment)
	if err != nil {
		return equipment.HeatPumpCharacteristics{}, err
	}
	a.logger.Debug("heat pump characteristics read", "path", a.paths.Equipment)
	return c, nil
}

// PumpRatedPower returns the circulation-pump rated power.
func (a *Accessor) PumpRatedPower() (float64, error) {
	p, err := equipment.PumpRatedPower(a.paths.Equipment)
	if err != nil {
		return 0, err
	}
	a.logger.Debug("pump rated power read", "path", a.paths.Equipment, "rated_power", p)
	return p, nil
}

// WriteTimeseries overwrites the supplied output fields of the row keyed by
// key and rewrites the table. Fields left nil in o are untouched.
//
// When a journal is configured the applied cells are recorded after the
// table has been saved. A journal failure is returned but the table keeps
// the new values.
func (a *Accessor) WriteTimeseries(ctx context.Context, key string, o timeseries.Outputs) error {
	cells, err := timeseries.WriteOutputs(a.paths.Timeseries, key, o)
	if err != nil {
		return err
	}
	if len(cells) == 0 {
		a.logger.Debug("empty patch, table not rewritten", "path", a.paths.Timeseries, "time", key)
		return nil
	}
	a.logger.Info("timeseries row updated", "path", a.paths.Timeseries, "time", key, "fields", len(cells))

	if a.journal == nil {
		return nil
	}
	entry, err := a.journal.Record(ctx, a.paths.Timeseries, key, cells)
	if err != nil {
		return fmt.Errorf("journal write: %w", err)
	}
	a.logger.Debug("patch journaled", "id", entry.ID, "seq", entry.Seq, "hash", entry.Hash)
	return nil
}

// History lists the journaled patches for the table, optionally for one key.
func (a *Accessor) History(ctx context.Context, key string) ([]journal.Entry, error) {
	if a.journal == nil {
		return nil, ErrNoJournal
	}
	return a.journal.Entries(ctx, a.paths.Timeseries, key)
}

// Replay re-applies every journaled patch for the table, in seq order, and
// rewrites the table once. It returns the number of entries applied.
// Replay does not record new entries.
func (a *Accessor) Replay(ctx context.Context) (int, error) {
	if a.journal == nil {
		return 0, ErrNoJournal
	}
	entries, err := a.journal.Entries(ctx, a.paths.Timeseries, "")
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}

	t, err := timeseries.Load(a.paths.Timeseries)
	if err != nil {
		return 0, err
	}
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if err := t.ApplyCells(e.Key, e.Cells); err != nil {
			return 0, fmt.Errorf("replay entry %s (seq %d): %w", e.ID, e.Seq, err)
		}
	}
	if err := t.Save(a.paths.Timeseries); err != nil {
		return 0, err
	}

	a.logger.Info("journal replayed", "path", a.paths.Timeseries, "entries", len(entries))
	return len(entries), nil
}
