package journal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hpstore/internal/timeseries"
)

func TestMarshalCanonical_SortsKeys(t *testing.T) {
	got, err := marshalCanonical(map[string]any{
		"time":  "202512071900",
		"cells": []any{map[string]any{"value": "80.0", "column": "hp1_load"}},
	})
	require.NoError(t, err)
	assert.Equal(t, `{"cells":[{"column":"hp1_load","value":"80.0"}],"time":"202512071900"}`, string(got))
}

func TestMarshalCanonical_NoHTMLEscape(t *testing.T) {
	got, err := marshalCanonical("a<b>&c")
	require.NoError(t, err)
	assert.Equal(t, `"a<b>&c"`, string(got))
}

func TestMarshalCanonical_LineSeparators(t *testing.T) {
	got, err := marshalCanonical("x\u2028y\u2029z")
	require.NoError(t, err)
	assert.Equal(t, "\"x\u2028y\u2029z\"", string(got))

	// A literal backslash followed by "u2028" stays escaped.
	got, err = marshalCanonical(`\u2028`)
	require.NoError(t, err)
	assert.Equal(t, `"\\u2028"`, string(got))
}

func TestMarshalCanonical_NFC(t *testing.T) {
	decomposed := "e\u0301"
	got, err := marshalCanonical(decomposed)
	require.NoError(t, err)
	assert.Equal(t, "\"\u00e9\"", string(got))
}

func TestMarshalCanonical_RejectsNumbers(t *testing.T) {
	_, err := marshalCanonical(80.0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported type")
}

func TestLessUTF16(t *testing.T) {
	// U+FF61 sorts before U+1F600 in UTF-8 byte order but after it in UTF-16.
	assert.True(t, lessUTF16("\U0001F600", "\uFF61"))
	assert.True(t, lessUTF16("a", "ab"))
	assert.False(t, lessUTF16("b", "a"))
}

func TestPatchHash_StableAndOrderSensitive(t *testing.T) {
	a := []timeseries.Cell{{Column: "hp1_load", Value: "80.0"}, {Column: "hp2_load", Value: "60.0"}}
	b := []timeseries.Cell{{Column: "hp2_load", Value: "60.0"}, {Column: "hp1_load", Value: "80.0"}}

	h1, err := PatchHash("202512071900", a)
	require.NoError(t, err)
	h2, err := PatchHash("202512071900", a)
	require.NoError(t, err)
	h3, err := PatchHash("202512071900", b)
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 64)
}
