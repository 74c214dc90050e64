package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// EquipmentJSON is a complete equipment-configuration document for two heat pumps.
const EquipmentJSON = `{
  "heat_pumps": {
    "count": 2,
    "characteristics": {
      "power_consumption": [3.5, 8.2, 13.1, 18.4, 24.0, 30.5]
    },
    "supply_temperature": 7.0,
    "load_limits": {
      "min": 20.0,
      "max": 100.0
    }
  },
  "pumps": {
    "rated_power": 2.2
  }
}
`

// TimeseriesHeader is the full column layout of a time-series file.
const TimeseriesHeader = "time,t2,F2,total_heat_load,total_power,hp1_load,hp1_power,hp2_load,hp2_power,pump1_load,pump1_power,pump2_load,pump2_power"

// TimeseriesCSV is a three-row time-series file with empty outputs.
const TimeseriesCSV = TimeseriesHeader + "\n" +
	"202512071800,44.0,110.0,,,,,,,,,,\n" +
	"202512071900,45.0,120.0,,,,,,,,,,\n" +
	"202512072000,46.5,118.5,,,,,,,,,,\n"

// WriteFixture writes content to name inside a fresh temporary directory
// and returns the file path. The directory is removed when the test ends.
func WriteFixture(t testing.TB, name, content string) string {
	t.Helper()
	return WriteFixtureIn(t, t.TempDir(), name, content)
}

// WriteFixtureIn writes content to name inside dir and returns the file path.
func WriteFixtureIn(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture %s: %v", name, err)
	}
	return path
}

// ReadFile returns the content of path, failing the test on error.
func ReadFile(t testing.TB, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}
