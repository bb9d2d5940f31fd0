// JSONL loading for Attach.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// errSkipRecord marks a record that decodes but cannot be loaded.
var errSkipRecord = errors.New("skip record")

// jsonlTableMapping maps JSONL files to their SQLite tables. Order matters:
// entries reference sequences and must load after them.
var jsonlTableMapping = []struct {
	file    string
	table   string
	columns []string
	args    func(json.RawMessage) ([]any, error)
}{
	{sequencesJSONL, "sequences", []string{"seq_id", "name", "created_at", "updated_at"}, sequenceArgs},
	{entriesJSONL, "entries", []string{"seq_id", "position", "name", "value"}, entryArgs},
}

func sequenceArgs(rec json.RawMessage) ([]any, error) {
	var s sequenceJSON
	if err := json.Unmarshal(rec, &s); err != nil {
		return nil, err
	}
	if s.SeqID == "" || s.Name == "" {
		return nil, errSkipRecord
	}
	return []any{s.SeqID, s.Name, s.CreatedAt, s.UpdatedAt}, nil
}

func entryArgs(rec json.RawMessage) ([]any, error) {
	var e entryJSON
	if err := json.Unmarshal(rec, &e); err != nil {
		return nil, err
	}
	if e.SeqID == "" || e.Position < 0 || len(e.Value) == 0 {
		return nil, errSkipRecord
	}
	return []any{e.SeqID, e.Position, e.Name, string(e.Value)}, nil
}

// loadAllJSONL reads each JSONL file from dataDir and inserts its records into
// the corresponding table. Loading is transactional: all files load or the
// database stays empty. Malformed records, records missing required fields,
// and records that violate constraints are skipped; unknown fields are
// ignored.
func loadAllJSONL(db *sql.DB, dataDir string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning load transaction: %w", err)
	}
	defer tx.Rollback()

	for _, mapping := range jsonlTableMapping {
		records, err := readJSONL(filepath.Join(dataDir, mapping.file))
		if err != nil {
			return fmt.Errorf("reading %s: %w", mapping.file, err)
		}
		if len(records) == 0 {
			continue
		}
		if err := insertRecords(tx, mapping.table, mapping.columns, mapping.args, records); err != nil {
			return fmt.Errorf("loading %s into %s: %w", mapping.file, mapping.table, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing load transaction: %w", err)
	}
	return nil
}

// insertRecords inserts decoded records into table, skipping any record that
// fails to decode or to insert.
func insertRecords(tx *sql.Tx, table string, columns []string, args func(json.RawMessage) ([]any, error), records []json.RawMessage) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	insertSQL := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(columns, ", "),
		placeholders,
	)

	stmt, err := tx.Prepare(insertSQL)
	if err != nil {
		return fmt.Errorf("preparing insert for %s: %w", table, err)
	}
	defer stmt.Close()

	for _, rec := range records {
		values, err := args(rec)
		if err != nil {
			continue
		}
		if _, err := stmt.Exec(values...); err != nil {
			continue
		}
	}
	return nil
}
