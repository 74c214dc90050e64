package journal

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/hpstore/internal/timeseries"
)

// DomainPatch prefixes patch hashes. Version suffix enables future algorithm migration.
const DomainPatch = "hpstore/patch/v1"

// PatchHash computes the content hash of a patch applied to the row keyed by key.
// The table path is excluded: the same patch on a copied table hashes the same.
func PatchHash(key string, cells []timeseries.Cell) (string, error) {
	canonical, err := marshalCanonical(map[string]any{
		"time":  key,
		"cells": cellsValue(cells),
	})
	if err != nil {
		return "", fmt.Errorf("PatchHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainPatch, canonical), nil
}

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

func cellsValue(cells []timeseries.Cell) []any {
	out := make([]any, len(cells))
	for i, c := range cells {
		out[i] = map[string]any{"column": c.Column, "value": c.Value}
	}
	return out
}

func cellsFromValue(raw []byte) ([]timeseries.Cell, error) {
	var cells []timeseries.Cell
	if err := json.Unmarshal(raw, &cells); err != nil {
		return nil, err
	}
	return cells, nil
}

// marshalCanonical produces RFC 8785 canonical JSON for the subset of values
// the journal stores: strings, arrays and objects. Numbers never appear;
// cell values are kept as the text written to the table.
func marshalCanonical(v any) ([]byte, error) {
	switch val := v.(type) {
	case string:
		return marshalCanonicalString(val)
	case []any:
		var buf bytes.Buffer
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			b, err := marshalCanonical(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			buf.Write(b)
		}
		buf.WriteByte(']')
		return buf.Bytes(), nil
	case map[string]any:
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, k := range sortedKeys(val) {
			if i > 0 {
				buf.WriteByte(',')
			}
			kb, err := marshalCanonicalString(k)
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			buf.Write(kb)
			buf.WriteByte(':')
			vb, err := marshalCanonical(val[k])
			if err != nil {
				return nil, fmt.Errorf("value for key %q: %w", k, err)
			}
			buf.Write(vb)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
}

// sortedKeys orders keys by UTF-16 code units as RFC 8785 requires.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return lessUTF16(keys[i], keys[j])
	})
	return keys
}

func lessUTF16(a, b string) bool {
	ua := utf16.Encode([]rune(a))
	ub := utf16.Encode([]rune(b))
	for i := 0; i < len(ua) && i < len(ub); i++ {
		if ua[i] != ub[i] {
			return ua[i] < ub[i]
		}
	}
	return len(ua) < len(ub)
}

// marshalCanonicalString produces a canonical JSON string: NFC normalized,
// no HTML escaping, and U+2028/U+2029 left literal.
func marshalCanonicalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(norm.NFC.String(s)); err != nil {
		return nil, err
	}
	return unescapeLineSeparators(bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})), nil
}

// unescapeLineSeparators rewrites the \u2028 and \u2029 escapes emitted by
// encoding/json as literal characters. Escape sequences are consumed in pairs,
// so an escaped backslash followed by "u2028" is left alone.
func unescapeLineSeparators(data []byte) []byte {
	if !bytes.Contains(data, []byte(`\u202`)) {
		return data
	}

	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] != '\\' || i+1 >= len(data) {
			out = append(out, data[i])
			continue
		}
		if data[i+1] == 'u' && i+6 <= len(data) {
			switch string(data[i+2 : i+6]) {
			case "2028":
				out = append(out, "\u2028"...)
				i += 5
				continue
			case "2029":
				out = append(out, "\u2029"...)
				i += 5
				continue
			}
		}
		out = append(out, data[i], data[i+1])
		i++
	}
	return out
}
