package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/hpstore/internal/testutil"
)

var testEpoch = time.Date(2025, 12, 7, 19, 0, 0, 0, time.UTC)

// createTestJournal opens a journal in a temp dir with deterministic IDs and clock.
func createTestJournal(t *testing.T) *Journal {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(path,
		WithIDGenerator(testutil.NewSequentialIDGenerator("entry")),
		WithClock(testutil.NewSteppingClock(testEpoch, time.Second)),
	)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}
