package timeseries

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Column names.
const (
	ColumnTime = "time"
	ColumnT2   = "t2"
	ColumnF2   = "F2"

	ColumnTotalHeatLoad = "total_heat_load"
	ColumnTotalPower    = "total_power"
	ColumnHP1Load       = "hp1_load"
	ColumnHP1Power      = "hp1_power"
	ColumnHP2Load       = "hp2_load"
	ColumnHP2Power      = "hp2_power"
	ColumnPump1Load     = "pump1_load"
	ColumnPump1Power    = "pump1_power"
	ColumnPump2Load     = "pump2_load"
	ColumnPump2Power    = "pump2_power"
)

// OutputColumns lists the solver output columns in canonical order.
var OutputColumns = []string{
	ColumnTotalHeatLoad,
	ColumnTotalPower,
	ColumnHP1Load,
	ColumnHP1Power,
	ColumnHP2Load,
	ColumnHP2Power,
	ColumnPump1Load,
	ColumnPump1Power,
	ColumnPump2Load,
	ColumnPump2Power,
}

// Outputs is a patch of solver results for one row.
// A nil field leaves the corresponding cell untouched.
type Outputs struct {
	TotalHeatLoad *float64 // required heat load (kW)
	TotalPower    *float64 // total power consumption (kW)
	HP1Load       *float64 // heat pump 1 load fraction (%)
	HP1Power      *float64 // heat pump 1 power (kW)
	HP2Load       *float64 // heat pump 2 load fraction (%)
	HP2Power      *float64 // heat pump 2 power (kW)
	Pump1Load     *float64 // circulation pump 1 load fraction (0-1)
	Pump1Power    *float64 // circulation pump 1 power (kW)
	Pump2Load     *float64 // circulation pump 2 load fraction (0-1)
	Pump2Power    *float64 // circulation pump 2 power (kW)
}

// Cell is one column value to be written, already formatted.
type Cell struct {
	Column string `json:"column"`
	Value  string `json:"value"`
}

// Some returns a pointer to v, for building Outputs literals.
func Some(v float64) *float64 {
	return &v
}

type outputSlot struct {
	column string
	value  **float64
}

func (o *Outputs) slots() []outputSlot {
	return []outputSlot{
		{ColumnTotalHeatLoad, &o.TotalHeatLoad},
		{ColumnTotalPower, &o.TotalPower},
		{ColumnHP1Load, &o.HP1Load},
		{ColumnHP1Power, &o.HP1Power},
		{ColumnHP2Load, &o.HP2Load},
		{ColumnHP2Power, &o.HP2Power},
		{ColumnPump1Load, &o.Pump1Load},
		{ColumnPump1Power, &o.Pump1Power},
		{ColumnPump2Load, &o.Pump2Load},
		{ColumnPump2Power, &o.Pump2Power},
	}
}

// Set assigns the field backing the named output column.
func (o *Outputs) Set(column string, v float64) error {
	for _, s := range o.slots() {
		if s.column == column {
			*s.value = Some(v)
			return nil
		}
	}
	return fmt.Errorf("unknown output column %q", column)
}

// OutputsFromMap builds a patch from column name → value.
func OutputsFromMap(values map[string]float64) (Outputs, error) {
	var o Outputs
	for column, v := range values {
		if err := o.Set(column, v); err != nil {
			return Outputs{}, err
		}
	}
	return o, nil
}

// Cells returns the supplied fields in canonical column order.
func (o Outputs) Cells() []Cell {
	var cells []Cell
	for _, s := range o.slots() {
		if *s.value != nil {
			cells = append(cells, Cell{Column: s.column, Value: FormatValue(**s.value)})
		}
	}
	return cells
}

// Empty reports whether no field is supplied.
func (o Outputs) Empty() bool {
	return len(o.Cells()) == 0
}

// FormatValue renders v the way the table stores numbers: the shortest
// decimal that round-trips, with ".0" on integral values and exponent form
// below 1e-4 or from 1e16 upward.
func FormatValue(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}

	if abs := math.Abs(v); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		return strconv.FormatFloat(v, 'e', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
