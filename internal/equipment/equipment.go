package equipment

import (
	"fmt"

	"github.com/roach88/hpstore/internal/storeerr"
)

// HeatPumpCharacteristics describes one heat-pump model.
type HeatPumpCharacteristics struct {
	// Power is the power consumption (kW) at load 0, 20, 40, 60, 80 and 100 %.
	Power [CurvePoints]float64

	// SupplyTemperature is the outlet temperature (°C).
	SupplyTemperature float64

	// LoadMin and LoadMax bound the permitted load fraction (%).
	LoadMin float64
	LoadMax float64
}

// Tuple returns the nine scalars in fixed order:
// p0, p20, p40, p60, p80, p100, supply temperature, load min, load max.
func (c HeatPumpCharacteristics) Tuple() [9]float64 {
	var out [9]float64
	copy(out[:CurvePoints], c.Power[:])
	out[6] = c.SupplyTemperature
	out[7] = c.LoadMin
	out[8] = c.LoadMax
	return out
}

// UnitCount returns the number of heat pumps, which is also the number of
// circulation pumps.
func (d *Document) UnitCount() (int, error) {
	return d.Int(FieldUnitCount)
}

// HeatPumpCharacteristics extracts the power curve, supply temperature and load limits.
func (d *Document) HeatPumpCharacteristics() (HeatPumpCharacteristics, error) {
	var c HeatPumpCharacteristics

	curve, err := d.Floats(FieldPowerCurve)
	if err != nil {
		return c, err
	}
	if len(curve) != CurvePoints {
		return c, storeerr.Parse(d.path, FieldPowerCurve.String(),
			fmt.Sprintf("power curve has %d points, expected %d", len(curve), CurvePoints), nil)
	}
	copy(c.Power[:], curve)

	if c.SupplyTemperature, err = d.Float(FieldSupplyTemperature); err != nil {
		return c, err
	}
	if c.LoadMin, err = d.Float(FieldLoadMin); err != nil {
		return c, err
	}
	if c.LoadMax, err = d.Float(FieldLoadMax); err != nil {
		return c, err
	}
	return c, nil
}

// PumpRatedPower returns the circulation-pump rated power A (kW).
// Pump consumption is A·x³ for load fraction x; that calculation belongs to the solver.
func (d *Document) PumpRatedPower() (float64, error) {
	return d.Float(FieldPumpRatedPower)
}

// UnitCount loads the document at path and returns the heat-pump unit count.
func UnitCount(path string) (int, error) {
	doc, err := Load(path)
	if err != nil {
		return 0, err
	}
	return doc.UnitCount()
}

// ReadHeatPumpCharacteristics loads the document at path and returns the heat-pump characteristics.
func ReadHeatPumpCharacteristics(path string) (HeatPumpCharacteristics, error) {
	doc, err := Load(path)
	if err != nil {
		return HeatPumpCharacteristics{}, err
	}
	return doc.HeatPumpCharacteristics()
}

// PumpRatedPower loads the document at path and returns the pump rated power.
func PumpRatedPower(path string) (float64, error) {
	doc, err := Load(path)
	if err != nil {
		return 0, err
	}
	return doc.PumpRatedPower()
}
