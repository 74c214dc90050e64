// Package equipment reads the equipment-configuration document.
//
// The document is JSON produced by an upstream provisioning step. It is
// parsed strictly as JSON and then evaluated with CUE, which gives precise
// "field does not exist" answers for nested lookups. CUE-only syntax
// (comments, trailing commas, bare labels, expressions) is rejected. The
// document is re-read on every call; nothing is cached.
package equipment

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cuejson "cuelang.org/go/encoding/json"

	"github.com/roach88/hpstore/internal/storeerr"
)

// DefaultPath is the configuration file used when the caller does not name one.
const DefaultPath = "equipment_config.json"

// CurvePoints is the number of points on the power-consumption curve
// (load 0, 20, 40, 60, 80 and 100 %).
const CurvePoints = 6

// Field paths inside the document.
var (
	FieldUnitCount         = FieldPath{"heat_pumps", "count"}
	FieldPowerCurve        = FieldPath{"heat_pumps", "characteristics", "power_consumption"}
	FieldSupplyTemperature = FieldPath{"heat_pumps", "supply_temperature"}
	FieldLoadMin           = FieldPath{"heat_pumps", "load_limits", "min"}
	FieldLoadMax           = FieldPath{"heat_pumps", "load_limits", "max"}
	FieldPumpRatedPower    = FieldPath{"pumps", "rated_power"}
)

// FieldPath is a sequence of object keys from the document root.
type FieldPath []string

// String returns the dotted form, e.g. "heat_pumps.count".
func (p FieldPath) String() string {
	return strings.Join(p, ".")
}

func (p FieldPath) cuePath() cue.Path {
	sels := make([]cue.Selector, len(p))
	for i, label := range p {
		// cue.Str quotes the label so keys like "min" never parse as identifiers.
		sels[i] = cue.Str(label)
	}
	return cue.MakePath(sels...)
}

// Document is an evaluated equipment-configuration document.
type Document struct {
	path  string
	value cue.Value
}

// Load reads and evaluates the document at path.
//
// A missing file is reported as a NotFound error that still satisfies
// errors.Is(err, fs.ErrNotExist). Malformed content is a Parse error.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			nf := storeerr.NotFound(path, "", "equipment configuration not found")
			nf.Err = err
			return nil, nf
		}
		return nil, storeerr.IO(path, "read equipment configuration", err)
	}

	expr, err := cuejson.Extract(path, data)
	if err != nil {
		return nil, storeerr.Parse(path, "", "invalid equipment configuration", err)
	}
	value := cuecontext.New().BuildExpr(expr)
	if err := value.Err(); err != nil {
		return nil, storeerr.Parse(path, "", "invalid equipment configuration", err)
	}

	return &Document{path: path, value: value}, nil
}

// Path returns the file the document was loaded from.
func (d *Document) Path() string {
	return d.path
}

// Float returns the number stored at field.
func (d *Document) Float(field FieldPath) (float64, error) {
	v, err := d.lookup(field)
	if err != nil {
		return 0, err
	}
	f, err := v.Float64()
	if err != nil {
		return 0, storeerr.Parse(d.path, field.String(), "expected a number", err)
	}
	return f, nil
}

// Int returns the integer stored at field.
func (d *Document) Int(field FieldPath) (int, error) {
	v, err := d.lookup(field)
	if err != nil {
		return 0, err
	}
	n, err := v.Int64()
	if err != nil {
		return 0, storeerr.Parse(d.path, field.String(), "expected an integer", err)
	}
	return int(n), nil
}

// Floats returns the list of numbers stored at field, in document order.
func (d *Document) Floats(field FieldPath) ([]float64, error) {
	v, err := d.lookup(field)
	if err != nil {
		return nil, err
	}
	iter, err := v.List()
	if err != nil {
		return nil, storeerr.Parse(d.path, field.String(), "expected a list", err)
	}

	var out []float64
	for i := 0; iter.Next(); i++ {
		f, err := iter.Value().Float64()
		if err != nil {
			return nil, storeerr.Parse(d.path, fmt.Sprintf("%s[%d]", field, i), "expected a number", err)
		}
		out = append(out, f)
	}
	return out, nil
}

func (d *Document) lookup(field FieldPath) (cue.Value, error) {
	v := d.value.LookupPath(field.cuePath())
	if !v.Exists() {
		return cue.Value{}, storeerr.NotFound(d.path, field.String(), "configuration field not found")
	}
	return v, nil
}
