package sqlite

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/namedseq/pkg/types"
)

func TestWriteReadJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.jsonl")
	records := []json.RawMessage{
		json.RawMessage(`{"a":1}`),
		json.RawMessage(`{"b":"two"}`),
	}

	require.NoError(t, writeJSONL(path, records))

	got, err := readJSONL(path)
	require.NoError(t, err)
	assert.Equal(t, records, got)

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), ".jsonl-*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers, "temp files must be renamed away")
}

func TestReadJSONLSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.jsonl")
	content := strings.Join([]string{`{"a":1}`, ``, `{broken`, `{"b":2}`}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	got, err := readJSONL(path)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.JSONEq(t, `{"a":1}`, string(got[0]))
	assert.JSONEq(t, `{"b":2}`, string(got[1]))
}

func TestReadJSONLMissingFile(t *testing.T) {
	_, err := readJSONL(filepath.Join(t.TempDir(), "absent.jsonl"))
	assert.Error(t, err)
}

func TestInitJSONLFilesKeepsExisting(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, sequencesJSONL)
	require.NoError(t, os.WriteFile(existing, []byte(`{"seq_id":"x"}`+"\n"), 0o644))

	require.NoError(t, initJSONLFiles(dir))

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"seq_id":"x"`)

	info, err := os.Stat(filepath.Join(dir, entriesJSONL))
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestPutWritesJSONL(t *testing.T) {
	b, dir := attachTemp(t)

	info, err := b.Put("tasks", record("a", `{"k": 1}`, "b", `2`))
	require.NoError(t, err)

	seqs, err := readJSONL(filepath.Join(dir, sequencesJSONL))
	require.NoError(t, err)
	require.Len(t, seqs, 1)
	var s sequenceJSON
	require.NoError(t, json.Unmarshal(seqs[0], &s))
	assert.Equal(t, info.SequenceID, s.SeqID)
	assert.Equal(t, "tasks", s.Name)

	ents, err := readJSONL(filepath.Join(dir, entriesJSONL))
	require.NoError(t, err)
	require.Len(t, ents, 2)
	var e entryJSON
	require.NoError(t, json.Unmarshal(ents[0], &e))
	assert.Equal(t, 0, e.Position)
	assert.Equal(t, "a", e.Name)
	assert.JSONEq(t, `{"k":1}`, string(e.Value))
}

func TestAttachLoadsJSONL(t *testing.T) {
	dir := t.TempDir()
	seqs := strings.Join([]string{
		`{"seq_id":"s1","name":"tasks","created_at":"2026-01-02T03:04:05Z","updated_at":"2026-01-02T03:04:05Z","extra":"ignored"}`,
		`{"seq_id":"","name":"no-id"}`,
		`not json`,
	}, "\n")
	ents := strings.Join([]string{
		`{"seq_id":"s1","position":1,"name":"b","value":[1,2]}`,
		`{"seq_id":"s1","position":0,"name":"a","value":"first"}`,
		`{"seq_id":"orphan","position":0,"name":"x","value":1}`,
		`{"seq_id":"s1","position":2,"name":"c"}`,
	}, "\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, sequencesJSONL), []byte(seqs), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, entriesJSONL), []byte(ents), 0o644))

	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir}))
	defer b.Detach()

	infos, err := b.List()
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "s1", infos[0].SequenceID)
	assert.Equal(t, 2, infos[0].Size)
	assert.Equal(t, 2026, infos[0].CreatedAt.Year())

	got, err := b.Get("tasks")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", `"first"`, "b", `[1,2]`}, entries(t, got))
}
