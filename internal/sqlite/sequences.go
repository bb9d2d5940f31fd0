package sqlite

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/namedseq/pkg/namedseq"
	"github.com/mesh-intelligence/namedseq/pkg/types"
)

// cloneValue copies the bytes of one element so that the cache and its
// callers never share value memory.
func cloneValue(v json.RawMessage) json.RawMessage {
	return bytes.Clone(v)
}

// Get returns a clone of the named sequence, loading it into the cache on
// first access.
// Returns ErrInvalidName, ErrSequenceNotFound or ErrStoreDetached.
func (b *Backend) Get(name string) (*types.Record, error) {
	if err := types.ValidateName(name); err != nil {
		return nil, err
	}

	b.mu.RLock()
	if !b.attached {
		b.mu.RUnlock()
		return nil, types.ErrStoreDetached
	}
	if seq, ok := b.cache[name]; ok {
		c := seq.CloneWith(cloneValue)
		b.mu.RUnlock()
		return c, nil
	}
	b.mu.RUnlock()

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}
	if seq, ok := b.cache[name]; ok {
		return seq.CloneWith(cloneValue), nil
	}

	seq, err := b.loadSequence(name)
	if err != nil {
		return nil, err
	}
	b.cache[name] = seq
	b.logger.Debug("loaded sequence", "name", name, "size", seq.Len())
	return seq.CloneWith(cloneValue), nil
}

// loadSequence reads a sequence from SQLite. The caller must hold b.mu.
func (b *Backend) loadSequence(name string) (*types.Record, error) {
	seqID, err := b.lookupID(b.db, name)
	if err != nil {
		return nil, err
	}

	var size int
	if err := b.db.QueryRow("SELECT COUNT(*) FROM entries WHERE seq_id = ?", seqID).Scan(&size); err != nil {
		return nil, fmt.Errorf("counting entries: %w", err)
	}

	rows, err := b.db.Query(
		"SELECT name, value FROM entries WHERE seq_id = ? ORDER BY position", seqID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	seq := namedseq.New[json.RawMessage]()
	seq.Reserve(size)
	for rows.Next() {
		var entryName, value string
		if err := rows.Scan(&entryName, &value); err != nil {
			return nil, fmt.Errorf("scanning entry: %w", err)
		}
		seq.Append(json.RawMessage(value), entryName)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entries: %w", err)
	}
	return seq, nil
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryRow(query string, args ...any) *sql.Row
}

// lookupID returns the seq_id for name or ErrSequenceNotFound.
func (b *Backend) lookupID(q querier, name string) (string, error) {
	var seqID string
	err := q.QueryRow("SELECT seq_id FROM sequences WHERE name = ?", name).Scan(&seqID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %q", types.ErrSequenceNotFound, name)
	}
	if err != nil {
		return "", fmt.Errorf("looking up sequence %q: %w", name, err)
	}
	return seqID, nil
}

// Put creates or replaces the named sequence. A new sequence receives a
// UUID v7 id; a replaced sequence keeps its id and creation time. Every
// element value must be valid JSON.
func (b *Backend) Put(name string, seq *types.Record) (types.SequenceInfo, error) {
	if err := types.ValidateName(name); err != nil {
		return types.SequenceInfo{}, err
	}
	if seq == nil {
		return types.SequenceInfo{}, fmt.Errorf("%w: nil sequence", types.ErrInvalidValue)
	}
	for i, v := range seq.All() {
		if !json.Valid(v) {
			return types.SequenceInfo{}, fmt.Errorf("%w: element %d", types.ErrInvalidValue, i)
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.SequenceInfo{}, types.ErrStoreDetached
	}

	info, err := b.writeSequence(name, seq)
	if err != nil {
		return types.SequenceInfo{}, err
	}

	if old, ok := b.cache[name]; ok {
		old.Release()
	}
	b.cache[name] = seq.CloneWith(cloneValue)

	if err := b.persist(); err != nil {
		return types.SequenceInfo{}, err
	}
	b.logger.Debug("stored sequence", "name", name, "id", info.SequenceID, "size", info.Size)
	return info, nil
}

// writeSequence replaces the rows for name in one transaction. The caller
// must hold b.mu.
func (b *Backend) writeSequence(name string, seq *types.Record) (types.SequenceInfo, error) {
	tx, err := b.db.Begin()
	if err != nil {
		return types.SequenceInfo{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Truncate(time.Second)
	nowStr := now.Format(time.RFC3339)
	info := types.SequenceInfo{Name: name, Size: seq.Len(), UpdatedAt: now}

	var createdAtStr string
	err = tx.QueryRow(
		"SELECT seq_id, created_at FROM sequences WHERE name = ?", name,
	).Scan(&info.SequenceID, &createdAtStr)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		info.SequenceID = generateUUID()
		info.CreatedAt = now
		_, err = tx.Exec(
			"INSERT INTO sequences (seq_id, name, created_at, updated_at) VALUES (?, ?, ?, ?)",
			info.SequenceID, name, nowStr, nowStr,
		)
	case err == nil:
		info.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
		if err != nil {
			return types.SequenceInfo{}, fmt.Errorf("parsing created_at: %w", err)
		}
		_, err = tx.Exec("UPDATE sequences SET updated_at = ? WHERE seq_id = ?", nowStr, info.SequenceID)
	}
	if err != nil {
		return types.SequenceInfo{}, fmt.Errorf("persisting sequence: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM entries WHERE seq_id = ?", info.SequenceID); err != nil {
		return types.SequenceInfo{}, fmt.Errorf("clearing entries: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO entries (seq_id, position, name, value) VALUES (?, ?, ?, ?)")
	if err != nil {
		return types.SequenceInfo{}, fmt.Errorf("preparing entry insert: %w", err)
	}
	defer stmt.Close()

	for i := range seq.Len() {
		e, err := seq.At(i)
		if err != nil {
			return types.SequenceInfo{}, err
		}
		if _, err := stmt.Exec(info.SequenceID, i, e.Name, string(e.Value)); err != nil {
			return types.SequenceInfo{}, fmt.Errorf("inserting entry %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return types.SequenceInfo{}, fmt.Errorf("committing sequence: %w", err)
	}
	return info, nil
}

// Delete removes the named sequence and its entries.
func (b *Backend) Delete(name string) error {
	if err := types.ValidateName(name); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrStoreDetached
	}

	seqID, err := b.lookupID(b.db, name)
	if err != nil {
		return err
	}

	tx, err := b.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM entries WHERE seq_id = ?", seqID); err != nil {
		return fmt.Errorf("deleting entries: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM sequences WHERE seq_id = ?", seqID); err != nil {
		return fmt.Errorf("deleting sequence: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete: %w", err)
	}

	if seq, ok := b.cache[name]; ok {
		seq.Release()
		delete(b.cache, name)
	}

	if err := b.persist(); err != nil {
		return err
	}
	b.logger.Debug("deleted sequence", "name", name, "id", seqID)
	return nil
}

// List returns metadata for every stored sequence ordered by name.
func (b *Backend) List() ([]types.SequenceInfo, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrStoreDetached
	}

	rows, err := b.db.Query(`SELECT s.seq_id, s.name, s.created_at, s.updated_at, COUNT(e.position)
FROM sequences s LEFT JOIN entries e ON e.seq_id = s.seq_id
GROUP BY s.seq_id, s.name, s.created_at, s.updated_at
ORDER BY s.name`)
	if err != nil {
		return nil, fmt.Errorf("querying sequences: %w", err)
	}
	defer rows.Close()

	infos := []types.SequenceInfo{}
	for rows.Next() {
		var (
			info                 types.SequenceInfo
			createdAt, updatedAt string
		)
		if err := rows.Scan(&info.SequenceID, &info.Name, &createdAt, &updatedAt, &info.Size); err != nil {
			return nil, fmt.Errorf("scanning sequence: %w", err)
		}
		// Timestamps from hand-edited JSONL may not parse; report zero times.
		info.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		info.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		infos = append(infos, info)
	}
	return infos, rows.Err()
}
