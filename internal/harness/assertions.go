package harness

import (
	"fmt"
	"strings"
)

// AssertionError is returned when a step outcome does not match its expectation.
type AssertionError struct {
	Step     int    // Zero-based step index
	Op       string // Operation name
	Expected string // Human-readable expected outcome
	Actual   string // Human-readable actual outcome
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: steps[%d] %s\n", e.Step, e.Op)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

// checkOutcome compares an outcome with the step's expectation.
// Only the fields set in expect are compared; a nil expect requires success.
func checkOutcome(index int, step Step, got Outcome) error {
	fail := func(expected, actual string) error {
		return &AssertionError{Step: index, Op: step.Op, Expected: expected, Actual: actual}
	}

	e := step.Expect
	if e == nil || e.Error == "" {
		if got.Error != "" {
			return fail("success", "error "+got.Error)
		}
	}
	if e == nil {
		return nil
	}

	if e.Error != "" {
		if got.Error != e.Error {
			return fail("error "+e.Error, describe(got))
		}
		return nil
	}

	if e.Value != nil {
		if len(got.Values) != 1 || got.Values[0] != *e.Value {
			return fail(fmt.Sprintf("value %v", *e.Value), describe(got))
		}
	}
	if e.Values != nil && !floatsEqual(e.Values, got.Values) {
		return fail(fmt.Sprintf("values %v", e.Values), describe(got))
	}
	if e.Count != nil && (got.Count == nil || *got.Count != *e.Count) {
		return fail(fmt.Sprintf("count %d", *e.Count), describe(got))
	}
	return nil
}

func describe(o Outcome) string {
	switch {
	case o.Error != "":
		return "error " + o.Error
	case o.Count != nil:
		return fmt.Sprintf("count %d", *o.Count)
	case o.Values != nil:
		return fmt.Sprintf("values %v", o.Values)
	default:
		return "success"
	}
}

func floatsEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
