// Package harness runs conformance scenarios against the record store.
//
// A scenario names an equipment document and a time-series file, then runs
// a list of accessor operations against private copies of them and checks
// each outcome. The final bytes of the time-series copy can be compared with
// a golden file.
//
// # Scenario Format
//
// Scenarios are YAML files with the following structure:
//
//	name: scenario_name
//	description: "What this scenario validates"
//	equipment: fixtures/equipment_config.json
//	timeseries: fixtures/timeseries.csv
//	journal: true
//	steps:
//	  - op: pair
//	    time: "202512071900"
//	    expect:
//	      values: [45.0, 120.0]
//	  - op: write
//	    time: "202512071900"
//	    outputs: { hp1_load: 80, hp1_power: 18.4 }
//	  - op: t2
//	    time: "209901010000"
//	    expect:
//	      error: not_found
//
// Fixture paths are relative to the scenario file.
//
// # Operations
//
//   - unit_count: expect.count
//   - pair, hp_characteristics: expect.values
//   - t2, f2, pump_rated_power: expect.value
//   - write: no value; outputs maps output column names to numbers
//   - history: expect.count is the number of entries (time optional)
//   - replay: expect.count is the number of entries applied
//   - reset_timeseries: restores the time-series copy from the fixture
//
// Every step may set expect.error to not_found, parse or io instead of a value.
// A step without expect must succeed.
//
// # Deterministic Testing
//
// Journal entries use sequential IDs and a stepping clock, so reruns of a
// scenario produce the same journal and the same final table.
package harness
