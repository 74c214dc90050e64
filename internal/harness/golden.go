package harness

import (
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// RunWithGolden executes a scenario, fails the test on any step mismatch and
// compares the final time-series bytes against a golden file.
// The golden file is stored in testdata/golden/{scenario.Name}.golden
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if !result.Pass {
		t.Errorf("scenario %s failed:\n%s", scenario.Name, strings.Join(result.Errors, "\n"))
	}

	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares a result's final table against a golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()
	if result == nil {
		t.Fatalf("nil result for %s", name)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, result.Table)
}
