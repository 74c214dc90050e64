package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/roach88/hpstore/internal/timeseries"
)

// Entry is one recorded output patch.
type Entry struct {
	ID         string            `json:"id"`
	Seq        int64             `json:"seq"`
	Table      string            `json:"table"`
	Key        string            `json:"time"`
	Cells      []timeseries.Cell `json:"cells"`
	Hash       string            `json:"patch_hash"`
	RecordedAt time.Time         `json:"recorded_at"`
}

// Record appends a patch applied to the row keyed by key in table.
// Uses ON CONFLICT(id) DO NOTHING - a duplicate ID is silently ignored.
func (j *Journal) Record(ctx context.Context, table, key string, cells []timeseries.Cell) (Entry, error) {
	tablePath, err := tableKey(table)
	if err != nil {
		return Entry{}, fmt.Errorf("record entry: %w", err)
	}

	hash, err := PatchHash(key, cells)
	if err != nil {
		return Entry{}, fmt.Errorf("record entry: %w", err)
	}
	cellsJSON, err := marshalCanonical(cellsValue(cells))
	if err != nil {
		return Entry{}, fmt.Errorf("record entry: %w", err)
	}

	entry := Entry{
		ID:         j.ids.Generate(),
		Table:      tablePath,
		Key:        key,
		Cells:      cells,
		Hash:       hash,
		RecordedAt: j.clock.Now().UTC(),
	}

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return Entry{}, fmt.Errorf("record entry: begin: %w", err)
	}
	defer tx.Rollback()

	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM entries`).Scan(&entry.Seq); err != nil {
		return Entry{}, fmt.Errorf("record entry: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO entries
		(id, seq, table_path, time_key, cells, patch_hash, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		entry.ID,
		entry.Seq,
		entry.Table,
		entry.Key,
		string(cellsJSON),
		entry.Hash,
		entry.RecordedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("record entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return Entry{}, fmt.Errorf("record entry: commit: %w", err)
	}
	return entry, nil
}

// Entries returns the entries recorded for table, ordered by seq ASC, id ASC.
// If key is non-empty only entries for that row are returned.
//
// Returns an empty slice (not nil) if nothing was recorded.
func (j *Journal) Entries(ctx context.Context, table, key string) ([]Entry, error) {
	tablePath, err := tableKey(table)
	if err != nil {
		return nil, fmt.Errorf("read entries: %w", err)
	}

	query := `
		SELECT id, seq, table_path, time_key, cells, patch_hash, recorded_at
		FROM entries
		WHERE table_path = ?`
	args := []any{tablePath}
	if key != "" {
		query += ` AND time_key = ?`
		args = append(args, key)
	}
	query += `
		ORDER BY seq ASC, id COLLATE BINARY ASC`

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return entries, nil
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var (
		e          Entry
		cellsJSON  string
		recordedAt string
	)
	if err := rows.Scan(&e.ID, &e.Seq, &e.Table, &e.Key, &cellsJSON, &e.Hash, &recordedAt); err != nil {
		return Entry{}, fmt.Errorf("scan entry: %w", err)
	}

	cells, err := cellsFromValue([]byte(cellsJSON))
	if err != nil {
		return Entry{}, fmt.Errorf("entry %s: decode cells: %w", e.ID, err)
	}
	e.Cells = cells

	e.RecordedAt, err = time.Parse(time.RFC3339Nano, recordedAt)
	if err != nil {
		return Entry{}, fmt.Errorf("entry %s: parse recorded_at: %w", e.ID, err)
	}
	return e, nil
}
