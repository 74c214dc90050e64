// Package timeseries reads and patches the CSV time-series table.
//
// The table has a header row and one row per timestamp key. The file bytes
// are kept alongside the decoded rows, and a rewrite re-encodes only the rows
// that changed. Every other line, blank lines and quoting included, is
// written back byte for byte, together with the byte-order mark.
package timeseries

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/roach88/hpstore/internal/storeerr"
)

// DefaultPath is the time-series file used when the caller does not name one.
const DefaultPath = "timeseries.csv"

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Table is an in-memory copy of a time-series file.
type Table struct {
	// Header holds the column names in file order.
	Header []string

	// Rows holds the data rows in file order. Rows may be shorter than Header.
	Rows [][]string

	source  string
	timeCol int
	bom     bool
	crlf    bool

	// text is the file content without the byte-order mark. header and
	// spans locate each parsed record in it; tail is whatever follows the
	// last record.
	text   []byte
	header span
	spans  []span
	tail   int
}

// span is the byte range of one record in the file text, with the fields
// it decoded to. The range starts where the previous record ended, so it
// includes any blank lines the CSV reader skipped.
type span struct {
	start, end int
	fields     []string
}

// Load reads the table at path.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			nf := storeerr.NotFound(path, "", "time-series file not found")
			nf.Err = err
			return nil, nf
		}
		return nil, storeerr.IO(path, "read time-series file", err)
	}
	return Parse(data, path)
}

// Parse decodes table bytes. source names the origin in error messages.
func Parse(data []byte, source string) (*Table, error) {
	if !utf8.Valid(data) {
		return nil, storeerr.Parse(source, "", "time-series file is not valid UTF-8", nil)
	}

	t := &Table{
		source: source,
		bom:    bytes.HasPrefix(data, utf8BOM),
	}
	if i := bytes.IndexByte(data, '\n'); i > 0 && data[i-1] == '\r' {
		t.crlf = true
	}

	text, err := unicode.UTF8BOM.NewDecoder().Bytes(data)
	if err != nil {
		return nil, storeerr.Parse(source, "", "decode time-series file", err)
	}

	r := csv.NewReader(bytes.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	t.text = text

	header, err := r.Read()
	if err == io.EOF {
		return nil, storeerr.Parse(source, "", "missing header row", nil)
	}
	if err != nil {
		return nil, storeerr.Parse(source, "", "read header row", err)
	}
	t.Header = header
	t.header = span{start: 0, end: int(r.InputOffset()), fields: slices.Clone(header)}
	t.tail = t.header.end

	t.timeCol = t.ColumnIndex(ColumnTime)
	if t.timeCol < 0 {
		return nil, storeerr.Parse(source, ColumnTime, "header has no time column", nil)
	}

	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, storeerr.Parse(source, "", "read row", err)
		}
		end := int(r.InputOffset())
		t.spans = append(t.spans, span{start: t.tail, end: end, fields: slices.Clone(record)})
		t.Rows = append(t.Rows, record)
		t.tail = end
	}

	return t, nil
}

// Source returns the path or name the table was parsed from.
func (t *Table) Source() string {
	return t.source
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Find returns the index of the first row whose time column equals key.
func (t *Table) Find(key string) (int, error) {
	for i, row := range t.Rows {
		if t.timeCol < len(row) && row[t.timeCol] == key {
			return i, nil
		}
	}
	return -1, storeerr.NotFound(t.source, key, "timestamp not found")
}

// Value returns the raw text of a cell. Cells missing from a short row read as "".
func (t *Table) Value(row int, column string) (string, error) {
	col := t.ColumnIndex(column)
	if col < 0 {
		return "", storeerr.Parse(t.source, column, "no such column", nil)
	}
	if col >= len(t.Rows[row]) {
		return "", nil
	}
	return t.Rows[row][col], nil
}

// Float parses a cell as a number. Surrounding whitespace is ignored.
func (t *Table) Float(row int, column string) (float64, error) {
	raw, err := t.Value(row, column)
	if err != nil {
		return 0, err
	}
	key := t.keyOf(t.Rows[row])
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, storeerr.Parse(t.source, key, fmt.Sprintf("column %s is empty", column), nil)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, storeerr.Parse(t.source, key, fmt.Sprintf("column %s is not a number", column), err)
	}
	return f, nil
}

// ApplyCells overwrites the given cells of the row keyed by key.
// Every column must exist in the header; otherwise nothing is changed.
func (t *Table) ApplyCells(key string, cells []Cell) error {
	row, err := t.Find(key)
	if err != nil {
		return err
	}

	idx := make([]int, len(cells))
	for i, c := range cells {
		idx[i] = t.ColumnIndex(c.Column)
		if idx[i] < 0 {
			return storeerr.Parse(t.source, key, fmt.Sprintf("header has no %s column", c.Column), nil)
		}
	}

	for i, c := range cells {
		if idx[i] >= len(t.Rows[row]) {
			t.Rows[row] = pad(t.Rows[row], len(t.Header))
		}
		t.Rows[row][idx[i]] = c.Value
	}
	return nil
}

// Encode writes the table in CSV form, restoring the byte-order mark.
//
// Records that still hold the fields they were parsed from are copied from
// the original bytes. Changed records are re-encoded with their original
// line terminator; blank lines before them are kept.
func (t *Table) Encode(w io.Writer) error {
	for _, row := range t.Rows {
		if len(row) > len(t.Header) {
			return storeerr.Parse(t.source, t.keyOf(row),
				fmt.Sprintf("row has %d fields, header has %d", len(row), len(t.Header)), nil)
		}
	}

	out := w
	var tw *transform.Writer
	if t.bom {
		tw = transform.NewWriter(w, unicode.UTF8BOM.NewEncoder())
		out = tw
	}

	if err := t.writeRecord(out, t.header, true, t.Header); err != nil {
		return err
	}
	for i, row := range t.Rows {
		var sp span
		parsed := i < len(t.spans)
		if parsed {
			sp = t.spans[i]
		}
		if err := t.writeRecord(out, sp, parsed, row); err != nil {
			return err
		}
	}
	if _, err := out.Write(t.text[t.tail:]); err != nil {
		return err
	}

	if tw != nil {
		return tw.Close()
	}
	return nil
}

// writeRecord copies the bytes of sp when fields are unchanged and
// re-encodes fields otherwise.
func (t *Table) writeRecord(w io.Writer, sp span, parsed bool, fields []string) error {
	raw := t.text[sp.start:sp.end]
	if parsed && slices.Equal(sp.fields, fields) {
		_, err := w.Write(raw)
		return err
	}

	term := "\n"
	if t.crlf {
		term = "\r\n"
	}
	var lead []byte
	if parsed {
		body := bytes.TrimLeft(raw, "\r\n")
		lead = raw[:len(raw)-len(body)]
		switch {
		case bytes.HasSuffix(body, []byte("\r\n")):
			term = "\r\n"
		case bytes.HasSuffix(body, []byte("\n")):
			term = "\n"
		default:
			term = ""
		}
	}

	var buf bytes.Buffer
	buf.Write(lead)
	cw := csv.NewWriter(&buf)
	if err := cw.Write(pad(fields, len(t.Header))); err != nil {
		return err
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	buf.Truncate(buf.Len() - 1)
	buf.WriteString(term)

	_, err := w.Write(buf.Bytes())
	return err
}

// Save rewrites the whole table to path.
//
// The content goes to a sibling temporary file that is renamed over path,
// so readers see either the old or the new table. Concurrent writers are
// not coordinated; the last rename wins.
func (t *Table) Save(path string) error {
	var buf bytes.Buffer
	if err := t.Encode(&buf); err != nil {
		if storeerr.CodeOf(err) != "" {
			return err
		}
		return storeerr.IO(path, "encode time-series table", err)
	}
	if err := writeFileAtomic(path, buf.Bytes()); err != nil {
		return storeerr.IO(path, "write time-series file", err)
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	mode := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	dir, base := filepath.Split(path)
	tmp := filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", base, uuid.NewString()))

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
	if err != nil {
		return err
	}
	cleanup := func() { _ = os.Remove(tmp) }

	if _, err := f.Write(data); err != nil {
		f.Close()
		cleanup()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		cleanup()
		return err
	}
	if err := f.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Chmod(tmp, mode); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		cleanup()
		return err
	}
	return nil
}

func (t *Table) keyOf(row []string) string {
	if t.timeCol < len(row) {
		return row[t.timeCol]
	}
	return ""
}

func pad(row []string, n int) []string {
	if len(row) >= n {
		return row
	}
	out := make([]string, n)
	copy(out, row)
	return out
}
