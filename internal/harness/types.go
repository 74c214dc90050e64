package harness

// Outcome records what one step actually produced.
type Outcome struct {
	Op     string    `json:"op"`
	Time   string    `json:"time,omitempty"`
	Values []float64 `json:"values,omitempty"`
	Count  *int      `json:"count,omitempty"`
	Error  string    `json:"error,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every step matched its expectation.
	Pass bool `json:"pass"`

	// Outcomes holds one entry per step, in order.
	Outcomes []Outcome `json:"outcomes"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Table holds the final bytes of the time-series copy.
	Table []byte `json:"-"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:     true,
		Outcomes: []Outcome{},
		Errors:   []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddOutcome appends a step outcome.
func (r *Result) AddOutcome(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
}
