package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/hpstore/internal/timeseries"
)

// Scenario defines a conformance test scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Equipment is the equipment document fixture.
	// Optional for scenarios that only touch the time-series file.
	Equipment string `yaml:"equipment,omitempty"`

	// Timeseries is the time-series fixture.
	Timeseries string `yaml:"timeseries"`

	// Journal enables the write journal for the run.
	Journal bool `yaml:"journal,omitempty"`

	// Steps run in order against the copied fixtures.
	Steps []Step `yaml:"steps"`
}

// Step is one accessor operation.
type Step struct {
	// Op is the operation name (see package docs).
	Op string `yaml:"op"`

	// Time is the row key for pair, t2, f2, write and history.
	Time string `yaml:"time,omitempty"`

	// Outputs maps output column names to values (write only).
	Outputs map[string]float64 `yaml:"outputs,omitempty"`

	// Expect specifies the expected outcome.
	// If nil, the step must succeed.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect specifies an expected step outcome.
type Expect struct {
	Value  *float64  `yaml:"value,omitempty"`
	Values []float64 `yaml:"values,omitempty"`
	Count  *int      `yaml:"count,omitempty"`

	// Error is the expected error kind: not_found, parse or io.
	Error string `yaml:"error,omitempty"`
}

// Operation names.
const (
	OpUnitCount         = "unit_count"
	OpPair              = "pair"
	OpT2                = "t2"
	OpF2                = "f2"
	OpHPCharacteristics = "hp_characteristics"
	OpPumpRatedPower    = "pump_rated_power"
	OpWrite             = "write"
	OpHistory           = "history"
	OpReplay            = "replay"
	OpResetTimeseries   = "reset_timeseries"
)

// Expected error kinds.
const (
	ErrorNotFound = "not_found"
	ErrorParse    = "parse"
	ErrorIO       = "io"
)

// LoadScenario reads and parses a scenario YAML file.
// Fixture paths are resolved relative to the scenario file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	base := filepath.Dir(path)
	scenario.Equipment = resolve(base, scenario.Equipment)
	scenario.Timeseries = resolve(base, scenario.Timeseries)

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Timeseries == "" {
		return fmt.Errorf("timeseries fixture is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for _, p := range []string{s.Equipment, s.Timeseries} {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return fmt.Errorf("fixture not found: %s", p)
		}
	}

	for i, step := range s.Steps {
		if err := validateStep(i, s, &step); err != nil {
			return err
		}
	}
	return nil
}

func validateStep(index int, s *Scenario, step *Step) error {
	switch step.Op {
	case OpPair, OpT2, OpF2:
		if step.Time == "" {
			return fmt.Errorf("steps[%d]: time is required for %s", index, step.Op)
		}
	case OpWrite:
		if step.Time == "" {
			return fmt.Errorf("steps[%d]: time is required for write", index)
		}
		if _, err := timeseries.OutputsFromMap(step.Outputs); err != nil {
			return fmt.Errorf("steps[%d]: %w", index, err)
		}
	case OpHistory, OpReplay:
		if !s.Journal {
			return fmt.Errorf("steps[%d]: %s requires journal: true", index, step.Op)
		}
	case OpUnitCount, OpHPCharacteristics, OpPumpRatedPower, OpResetTimeseries:
	case "":
		return fmt.Errorf("steps[%d]: op is required", index)
	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, step.Op)
	}

	if step.Op != OpWrite && len(step.Outputs) > 0 {
		return fmt.Errorf("steps[%d]: outputs only apply to write", index)
	}
	if e := step.Expect; e != nil {
		switch e.Error {
		case "", ErrorNotFound, ErrorParse, ErrorIO:
		default:
			return fmt.Errorf("steps[%d].expect: unknown error kind %q", index, e.Error)
		}
	}
	return nil
}
