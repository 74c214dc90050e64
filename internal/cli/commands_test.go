package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hpstore/internal/testutil"
)

// provision writes both fixtures into a temp dir and returns the path flags.
func provision(t *testing.T) (dir string, flags []string) {
	t.Helper()
	dir = t.TempDir()
	eq := testutil.WriteFixtureIn(t, dir, "equipment_config.json", testutil.EquipmentJSON)
	ts := testutil.WriteFixtureIn(t, dir, "timeseries.csv", testutil.TimeseriesCSV)
	return dir, []string{"--equipment", eq, "--timeseries", ts}
}

func decode(t *testing.T, out string) CLIResponse {
	t.Helper()
	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	return resp
}

func TestReadCommandsText(t *testing.T) {
	_, flags := provision(t)

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"count"}, "2\n"},
		{[]string{"pair", "202512071900"}, "t2=45.0 F2=120.0\n"},
		{[]string{"t2", "202512072000"}, "46.5\n"},
		{[]string{"f2", "202512072000"}, "118.5\n"},
		{[]string{"pump"}, "2.2\n"},
		{[]string{"hp"}, "power_consumption=[3.5 8.2 13.1 18.4 24.0 30.5] supply_temperature=7.0 load_min=20.0 load_max=100.0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.args[0], func(t *testing.T) {
			out, _, err := runCLI(t, append(tt.args, flags...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestReadCommandsJSON(t *testing.T) {
	_, flags := provision(t)

	out, _, err := runCLI(t, append([]string{"pair", "202512071900", "--format", "json"}, flags...)...)
	require.NoError(t, err)
	resp := decode(t, out)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, map[string]interface{}{"time": "202512071900", "t2": 45.0, "F2": 120.0}, resp.Data)

	out, _, err = runCLI(t, append([]string{"t2", "202512071900", "--format", "json"}, flags...)...)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"time": "202512071900", "t2": 45.0}, decode(t, out).Data)

	out, _, err = runCLI(t, append([]string{"hp", "--format", "json"}, flags...)...)
	require.NoError(t, err)
	data := decode(t, out).Data.(map[string]interface{})
	assert.Equal(t, []interface{}{3.5, 8.2, 13.1, 18.4, 24.0, 30.5}, data["power_consumption"])
	assert.Equal(t, 7.0, data["supply_temperature"])
}

func TestReadNonFiniteJSON(t *testing.T) {
	dir, flags := provision(t)
	ts := testutil.WriteFixtureIn(t, dir, "specials.csv", "time,t2,F2\n202512071900,nan,-inf\n")

	out, _, err := runCLI(t, "pair", "202512071900", "--format", "json", "--equipment", flags[1], "--timeseries", ts)
	require.NoError(t, err)
	resp := decode(t, out)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, map[string]interface{}{"time": "202512071900", "t2": "nan", "F2": "-inf"}, resp.Data)

	out, _, err = runCLI(t, "pair", "202512071900", "--equipment", flags[1], "--timeseries", ts)
	require.NoError(t, err)
	assert.Equal(t, "t2=nan F2=-inf\n", out)
}

func TestReadNotFound(t *testing.T) {
	_, flags := provision(t)

	out, _, err := runCLI(t, append([]string{"pair", "209901010000", "--format", "json"}, flags...)...)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp := decode(t, out)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	assert.Equal(t, map[string]interface{}{"resource": flags[3], "key": "209901010000"}, resp.Error.Details)
}

func TestReadMissingFile(t *testing.T) {
	dir := t.TempDir()

	_, stderr, err := runCLI(t, "count", "--equipment", filepath.Join(dir, "none.json"))
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, stderr, "Error [NOT_FOUND]")
}

func TestReadParseError(t *testing.T) {
	dir, _ := provision(t)
	ts := testutil.WriteFixtureIn(t, dir, "bad.csv", testutil.TimeseriesHeader+"\n202512071900,warm,120.0,,,,,,,,,,\n")

	_, stderr, err := runCLI(t, "t2", "202512071900", "--timeseries", ts)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stderr, "Error [PARSE]")
}

func TestWriteCommand(t *testing.T) {
	_, flags := provision(t)
	ts := flags[3]

	out, stderr, err := runCLI(t, append([]string{"write", "202512071900", "--hp1-load", "80", "--hp1-power", "18.4"}, flags...)...)
	require.NoError(t, err)
	assert.Equal(t, "✓ 202512071900 updated (2 field(s)): hp1_load=80.0 hp1_power=18.4\n", out)
	assert.Contains(t, stderr, "timeseries row updated")

	want := testutil.TimeseriesHeader + "\n" +
		"202512071800,44.0,110.0,,,,,,,,,,\n" +
		"202512071900,45.0,120.0,,,80.0,18.4,,,,,,\n" +
		"202512072000,46.5,118.5,,,,,,,,,,\n"
	assert.Equal(t, want, testutil.ReadFile(t, ts))
}

func TestWriteCommandZeroIsApplied(t *testing.T) {
	_, flags := provision(t)

	out, _, err := runCLI(t, append([]string{"write", "202512071800", "--pump2-power", "0", "--format", "json"}, flags...)...)
	require.NoError(t, err)
	data := decode(t, out).Data.(map[string]interface{})
	assert.Equal(t, []interface{}{map[string]interface{}{"column": "pump2_power", "value": "0.0"}}, data["cells"])
}

func TestWriteCommandNoFlags(t *testing.T) {
	_, flags := provision(t)

	out, _, err := runCLI(t, append([]string{"write", "202512071900"}, flags...)...)
	require.NoError(t, err)
	assert.Equal(t, "✓ 202512071900 updated (0 field(s))\n", out)
	assert.Equal(t, testutil.TimeseriesCSV, testutil.ReadFile(t, flags[3]))
}

func TestWriteCommandNotFound(t *testing.T) {
	_, flags := provision(t)

	_, _, err := runCLI(t, append([]string{"write", "209901010000", "--hp1-load", "1"}, flags...)...)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Equal(t, testutil.TimeseriesCSV, testutil.ReadFile(t, flags[3]))
}

func TestHistoryWithoutJournal(t *testing.T) {
	_, flags := provision(t)

	out, _, err := runCLI(t, append([]string{"history", "--format", "json"}, flags...)...)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, ErrCodeNoJournal, decode(t, out).Error.Code)
}

func TestJournalRoundTrip(t *testing.T) {
	dir, flags := provision(t)
	flags = append(flags, "--journal", filepath.Join(dir, "journal.db"))
	ts := flags[3]

	_, _, err := runCLI(t, append([]string{"write", "202512071900", "--hp1-load", "50"}, flags...)...)
	require.NoError(t, err)
	_, _, err = runCLI(t, append([]string{"write", "202512072000", "--total-power", "25"}, flags...)...)
	require.NoError(t, err)
	_, _, err = runCLI(t, append([]string{"write", "202512071900", "--hp1-load", "80"}, flags...)...)
	require.NoError(t, err)
	written := testutil.ReadFile(t, ts)

	out, _, err := runCLI(t, append([]string{"history", "--format", "json"}, flags...)...)
	require.NoError(t, err)
	data := decode(t, out).Data.(map[string]interface{})
	assert.Equal(t, float64(3), data["total"])

	out, _, err = runCLI(t, append([]string{"history", "202512071900"}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "History: 2 write(s)")
	assert.Contains(t, out, "hp1_load=80.0")

	// Upstream re-provisions the inputs.
	testutil.WriteFixtureIn(t, dir, "timeseries.csv", testutil.TimeseriesCSV)

	out, _, err = runCLI(t, append([]string{"replay"}, flags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "Replayed 3 write(s)")
	assert.Equal(t, written, testutil.ReadFile(t, ts))
}

func TestConfigFile(t *testing.T) {
	dir, _ := provision(t)
	cfg := testutil.WriteFixtureIn(t, dir, "hpstore.yaml", "equipment: equipment_config.json\ntimeseries: timeseries.csv\n")

	out, _, err := runCLI(t, "count", "--config", cfg)
	require.NoError(t, err)
	assert.Equal(t, "2\n", out)

	// Flags override the file.
	other := filepath.Join(dir, "other.json")
	require.NoError(t, os.WriteFile(other, []byte(`{"heat_pumps": {"count": 4}}`), 0o644))
	out, _, err = runCLI(t, "count", "--config", cfg, "--equipment", other)
	require.NoError(t, err)
	assert.Equal(t, "4\n", out)
}

func TestConfigFileInvalid(t *testing.T) {
	dir := t.TempDir()
	cfg := testutil.WriteFixtureIn(t, dir, "hpstore.yaml", "equipmnt: x.json\n")

	_, stderr, err := runCLI(t, "count", "--config", cfg)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, stderr, "failed to load config")
}

func TestTestCommand(t *testing.T) {
	dir := t.TempDir()
	scenarios := filepath.Join(dir, "scenarios")
	require.NoError(t, os.MkdirAll(scenarios, 0o755))
	testutil.WriteFixtureIn(t, dir, "timeseries.csv", testutil.TimeseriesCSV)
	testutil.WriteFixtureIn(t, dir, "equipment_config.json", testutil.EquipmentJSON)
	testutil.WriteFixtureIn(t, scenarios, "write.yaml", `
name: write
description: "write one output"
equipment: ../equipment_config.json
timeseries: ../timeseries.csv
steps:
  - op: write
    time: "202512071900"
    outputs: { hp1_load: 80 }
  - op: t2
    time: "202512071900"
    expect: { value: 45.0 }
`)

	// No golden file yet: step expectations only.
	out, _, err := runCLI(t, "test", scenarios)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ write\n")
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")

	out, _, err = runCLI(t, "test", scenarios, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "golden updated")
	golden := testutil.ReadFile(t, filepath.Join(dir, "golden", "write.golden"))
	assert.Contains(t, golden, "202512071900,45.0,120.0,,,80.0,,,,,,,\n")

	_, _, err = runCLI(t, "test", scenarios)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "golden", "write.golden"), []byte("stale"), 0o644))
	out, _, err = runCLI(t, "test", scenarios, "--format", "json")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	resp := decode(t, out)
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "TEST_FAILED", resp.Error.Code)
}

func TestTestCommandFailingScenario(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFixtureIn(t, dir, "timeseries.csv", testutil.TimeseriesCSV)
	testutil.WriteFixtureIn(t, dir, "bad.yaml", `
name: bad
description: "wrong expectation"
timeseries: timeseries.csv
steps:
  - op: t2
    time: "202512071900"
    expect: { value: 1.0 }
`)

	out, _, err := runCLI(t, "test", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ bad")
	assert.Contains(t, out, "Expected: value 1")
}

func TestTestCommandMissingDir(t *testing.T) {
	_, _, err := runCLI(t, "test", "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "scenarios directory not found")
}

func TestTestCommandEmptyDir(t *testing.T) {
	out, _, err := runCLI(t, "test", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found")
}
