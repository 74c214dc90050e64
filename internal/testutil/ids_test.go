package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSequentialIDGenerator(t *testing.T) {
	gen := NewSequentialIDGenerator("patch")

	assert.Equal(t, "patch-0001", gen.Generate())
	assert.Equal(t, "patch-0002", gen.Generate())
}

func TestSequentialIDGenerator_DefaultPrefix(t *testing.T) {
	gen := NewSequentialIDGenerator("")
	assert.Equal(t, "entry-0001", gen.Generate())
}
