// JSONL read/write helpers with atomic persistence.
package sqlite

import (
	"bufio"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// readJSONL reads a JSONL file and returns each non-empty, parseable line as
// a json.RawMessage. Malformed lines are skipped.
func readJSONL(path string) ([]json.RawMessage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var records []json.RawMessage
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		if !json.Valid(line) {
			continue
		}
		cp := make([]byte, len(line))
		copy(cp, line)
		records = append(records, json.RawMessage(cp))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", path, err)
	}
	return records, nil
}

// writeJSONL atomically writes records to a JSONL file using the temp-file,
// fsync, rename pattern.
func writeJSONL(path string, records []json.RawMessage) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".jsonl-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	fail := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}

	w := bufio.NewWriter(tmp)
	for _, rec := range records {
		if _, err := w.Write(rec); err != nil {
			return fail(fmt.Errorf("writing record: %w", err))
		}
		if err := w.WriteByte('\n'); err != nil {
			return fail(fmt.Errorf("writing newline: %w", err))
		}
	}
	if err := w.Flush(); err != nil {
		return fail(fmt.Errorf("flushing buffer: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		return fail(fmt.Errorf("syncing temp file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// initJSONLFiles creates empty data files that do not exist yet.
func initJSONLFiles(dataDir string) error {
	for _, name := range []string{sequencesJSONL, entriesJSONL} {
		path := filepath.Join(dataDir, name)
		_, err := os.Stat(path)
		if err == nil {
			continue
		}
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("stat %s: %w", name, err)
		}
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			return fmt.Errorf("creating %s: %w", name, err)
		}
	}
	return nil
}

// persistJSONL rewrites both data files from the current SQLite contents.
func persistJSONL(db *sql.DB, dataDir string) error {
	seqs, err := dumpSequences(db)
	if err != nil {
		return err
	}
	entries, err := dumpEntries(db)
	if err != nil {
		return err
	}
	if err := writeJSONL(filepath.Join(dataDir, sequencesJSONL), seqs); err != nil {
		return fmt.Errorf("persisting %s: %w", sequencesJSONL, err)
	}
	if err := writeJSONL(filepath.Join(dataDir, entriesJSONL), entries); err != nil {
		return fmt.Errorf("persisting %s: %w", entriesJSONL, err)
	}
	return nil
}

func dumpSequences(db *sql.DB) ([]json.RawMessage, error) {
	rows, err := db.Query("SELECT seq_id, name, created_at, updated_at FROM sequences ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("querying sequences: %w", err)
	}
	defer rows.Close()

	var records []json.RawMessage
	for rows.Next() {
		var rec sequenceJSON
		if err := rows.Scan(&rec.SeqID, &rec.Name, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning sequence: %w", err)
		}
		b, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("marshaling sequence: %w", err)
		}
		records = append(records, b)
	}
	return records, rows.Err()
}

func dumpEntries(db *sql.DB) ([]json.RawMessage, error) {
	rows, err := db.Query("SELECT seq_id, position, name, value FROM entries ORDER BY seq_id, position")
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var records []json.RawMessage
	for rows.Next() {
		var (
			rec   entryJSON
			value string
		)
		if err := rows.Scan(&rec.SeqID, &rec.Position, &rec.Name, &value); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		rec.Value = json.RawMessage(value)
		b, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("marshaling entry: %w", err)
		}
		records = append(records, b)
	}
	return records, rows.Err()
}
