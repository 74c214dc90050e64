package timeseries

// Pair holds the solver inputs for one timestamp.
type Pair struct {
	T2 float64 // temperature (°C)
	F2 float64 // flow (L/min)
}

// Pair returns the t2/F2 inputs of the first row keyed by key.
func (t *Table) Pair(key string) (Pair, error) {
	row, err := t.Find(key)
	if err != nil {
		return Pair{}, err
	}
	t2, err := t.Float(row, ColumnT2)
	if err != nil {
		return Pair{}, err
	}
	f2, err := t.Float(row, ColumnF2)
	if err != nil {
		return Pair{}, err
	}
	return Pair{T2: t2, F2: f2}, nil
}

// ApplyOutputs writes the supplied output fields into the row keyed by key
// and returns the cells that were written.
func (t *Table) ApplyOutputs(key string, o Outputs) ([]Cell, error) {
	cells := o.Cells()
	if err := t.ApplyCells(key, cells); err != nil {
		return nil, err
	}
	return cells, nil
}

// ReadPair loads the table at path and returns the inputs for key.
func ReadPair(path, key string) (Pair, error) {
	t, err := Load(path)
	if err != nil {
		return Pair{}, err
	}
	return t.Pair(key)
}

// ReadT2 returns only the temperature for key.
func ReadT2(path, key string) (float64, error) {
	p, err := ReadPair(path, key)
	return p.T2, err
}

// ReadF2 returns only the flow for key.
func ReadF2(path, key string) (float64, error) {
	p, err := ReadPair(path, key)
	return p.F2, err
}

// WriteOutputs patches the row keyed by key and rewrites the table at path.
//
// Only supplied fields change. An empty patch still fails with NotFound for
// an unknown key but leaves the file untouched.
func WriteOutputs(path, key string, o Outputs) ([]Cell, error) {
	t, err := Load(path)
	if err != nil {
		return nil, err
	}
	cells, err := t.ApplyOutputs(key, o)
	if err != nil {
		return nil, err
	}
	if len(cells) == 0 {
		return nil, nil
	}
	if err := t.Save(path); err != nil {
		return nil, err
	}
	return cells, nil
}
