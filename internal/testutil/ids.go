package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDGenerator returns "<prefix>-0001", "<prefix>-0002", ...
//
// This enables deterministic journal entries and golden snapshot comparison.
//
// Thread-safety: SequentialIDGenerator is safe for concurrent use via internal mutex.
type SequentialIDGenerator struct {
	mu     sync.Mutex
	prefix string
	n      int
}

// NewSequentialIDGenerator creates a generator with the given prefix.
// If prefix is empty, "entry" is used.
func NewSequentialIDGenerator(prefix string) *SequentialIDGenerator {
	if prefix == "" {
		prefix = "entry"
	}
	return &SequentialIDGenerator{prefix: prefix}
}

// Generate returns the next ID.
func (g *SequentialIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", g.prefix, g.n)
}
