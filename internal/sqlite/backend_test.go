package sqlite

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/namedseq/pkg/namedseq"
	"github.com/mesh-intelligence/namedseq/pkg/types"
)

// attachTemp attaches a new backend to a temporary data directory.
func attachTemp(t *testing.T) (*Backend, string) {
	t.Helper()
	dir := t.TempDir()
	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{Backend: types.BackendSQLite, DataDir: dir}))
	t.Cleanup(func() { _ = b.Detach() })
	return b, dir
}

// record builds a sequence of raw JSON values from name/value pairs.
func record(pairs ...string) *types.Record {
	s := namedseq.New[json.RawMessage]()
	for i := 0; i+1 < len(pairs); i += 2 {
		s.Append(json.RawMessage(pairs[i+1]), pairs[i])
	}
	return s
}

// entries flattens a sequence into name/value pairs.
func entries(t *testing.T, s *types.Record) []string {
	t.Helper()
	var out []string
	for i := range s.Len() {
		e, err := s.At(i)
		require.NoError(t, err)
		out = append(out, e.Name, string(e.Value))
	}
	return out
}

func TestBackend_Attach(t *testing.T) {
	dir := t.TempDir()
	b := NewBackend()
	cfg := types.Config{Backend: types.BackendSQLite, DataDir: dir}

	require.NoError(t, b.Attach(cfg))
	defer b.Detach()

	for _, name := range []string{dbFileName, sequencesJSONL, entriesJSONL} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, "%s should exist", name)
	}

	assert.ErrorIs(t, b.Attach(cfg), types.ErrAlreadyAttached)
}

func TestBackend_AttachInvalidConfig(t *testing.T) {
	b := NewBackend()
	assert.ErrorIs(t, b.Attach(types.Config{}), types.ErrBackendEmpty)
	assert.ErrorIs(t, b.Attach(types.Config{Backend: "postgres"}), types.ErrBackendUnknown)
}

func TestBackend_Detach(t *testing.T) {
	b, _ := attachTemp(t)

	require.NoError(t, b.Detach())
	require.NoError(t, b.Detach(), "detach is idempotent")

	_, err := b.Get("tasks")
	assert.ErrorIs(t, err, types.ErrStoreDetached)
	_, err = b.Put("tasks", record())
	assert.ErrorIs(t, err, types.ErrStoreDetached)
	assert.ErrorIs(t, b.Delete("tasks"), types.ErrStoreDetached)
	_, err = b.List()
	assert.ErrorIs(t, err, types.ErrStoreDetached)
}

func TestBackend_PutGet(t *testing.T) {
	b, _ := attachTemp(t)

	info, err := b.Put("tasks", record("a", `1`, "b", `{"x":true}`, "a", `"two"`))
	require.NoError(t, err)
	assert.NotEmpty(t, info.SequenceID)
	assert.Equal(t, "tasks", info.Name)
	assert.Equal(t, 3, info.Size)
	assert.False(t, info.CreatedAt.IsZero())

	got, err := b.Get("tasks")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", `1`, "b", `{"x":true}`, "a", `"two"`}, entries(t, got))

	v, err := got.Lookup("a")
	require.NoError(t, err)
	assert.JSONEq(t, `1`, string(v))
}

func TestBackend_GetReturnsSharedClone(t *testing.T) {
	b, _ := attachTemp(t)
	_, err := b.Put("tasks", record("a", `1`, "b", `2`))
	require.NoError(t, err)

	got, err := b.Get("tasks")
	require.NoError(t, err)
	cached := b.cache["tasks"]
	assert.True(t, got.SharesNamesWith(cached))
	assert.True(t, got.IsShared())

	ref, err := got.Ref(0)
	require.NoError(t, err)
	*ref.Name = "changed"
	got.Append(json.RawMessage(`3`), "c")

	assert.False(t, got.SharesNamesWith(cached))
	again, err := b.Get("tasks")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", `1`, "b", `2`}, entries(t, again))
}

func TestBackend_PutKeepsCallerIndependent(t *testing.T) {
	b, _ := attachTemp(t)
	seq := record("a", `1`)

	_, err := b.Put("tasks", seq)
	require.NoError(t, err)
	seq.Append(json.RawMessage(`2`), "b")

	got, err := b.Get("tasks")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Len())
}

func TestBackend_ValueBytesNotShared(t *testing.T) {
	b, _ := attachTemp(t)
	seq := record("a", `1`)

	_, err := b.Put("tasks", seq)
	require.NoError(t, err)
	ref, err := seq.Ref(0)
	require.NoError(t, err)
	(*ref.Value)[0] = '7'

	got, err := b.Get("tasks")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", `1`}, entries(t, got))

	ref, err = got.Ref(0)
	require.NoError(t, err)
	(*ref.Value)[0] = '8'

	again, err := b.Get("tasks")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", `1`}, entries(t, again))
}

func TestBackend_GetLoadsFromDatabase(t *testing.T) {
	b, _ := attachTemp(t)
	_, err := b.Put("tasks", record("a", `1`))
	require.NoError(t, err)

	b.cache["tasks"].Release()
	delete(b.cache, "tasks")

	got, err := b.Get("tasks")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", `1`}, entries(t, got))
	assert.Contains(t, b.cache, "tasks")
}

func TestBackend_GetNotFound(t *testing.T) {
	b, _ := attachTemp(t)

	_, err := b.Get("missing")
	assert.ErrorIs(t, err, types.ErrSequenceNotFound)
}

func TestBackend_InvalidName(t *testing.T) {
	b, _ := attachTemp(t)

	_, err := b.Get("")
	assert.ErrorIs(t, err, types.ErrInvalidName)
	_, err = b.Put("a b", record())
	assert.ErrorIs(t, err, types.ErrInvalidName)
	assert.ErrorIs(t, b.Delete("x/y"), types.ErrInvalidName)
}

func TestBackend_PutInvalidValue(t *testing.T) {
	b, _ := attachTemp(t)

	_, err := b.Put("tasks", record("a", `1`, "b", `{not json`))
	assert.ErrorIs(t, err, types.ErrInvalidValue)

	_, err = b.Put("tasks", nil)
	assert.ErrorIs(t, err, types.ErrInvalidValue)

	_, err = b.Get("tasks")
	assert.ErrorIs(t, err, types.ErrSequenceNotFound)
}

func TestBackend_PutReplace(t *testing.T) {
	b, _ := attachTemp(t)

	first, err := b.Put("tasks", record("a", `1`, "b", `2`))
	require.NoError(t, err)
	second, err := b.Put("tasks", record("c", `3`))
	require.NoError(t, err)

	assert.Equal(t, first.SequenceID, second.SequenceID)
	assert.True(t, first.CreatedAt.Equal(second.CreatedAt))
	assert.Equal(t, 1, second.Size)

	got, err := b.Get("tasks")
	require.NoError(t, err)
	assert.Equal(t, []string{"c", `3`}, entries(t, got))
}

func TestBackend_Delete(t *testing.T) {
	b, _ := attachTemp(t)
	_, err := b.Put("tasks", record("a", `1`))
	require.NoError(t, err)
	held, err := b.Get("tasks")
	require.NoError(t, err)

	require.NoError(t, b.Delete("tasks"))

	_, err = b.Get("tasks")
	assert.ErrorIs(t, err, types.ErrSequenceNotFound)
	assert.ErrorIs(t, b.Delete("tasks"), types.ErrSequenceNotFound)
	assert.False(t, held.IsShared(), "cache released its share")
	assert.Equal(t, []string{"a", `1`}, entries(t, held))
}

func TestBackend_List(t *testing.T) {
	b, _ := attachTemp(t)

	infos, err := b.List()
	require.NoError(t, err)
	assert.Empty(t, infos)

	_, err = b.Put("zeta", record("a", `1`))
	require.NoError(t, err)
	_, err = b.Put("alpha", record("a", `1`, "b", `2`))
	require.NoError(t, err)
	_, err = b.Put("empty", record())
	require.NoError(t, err)

	infos, err = b.List()
	require.NoError(t, err)
	require.Len(t, infos, 3)
	assert.Equal(t, "alpha", infos[0].Name)
	assert.Equal(t, 2, infos[0].Size)
	assert.Equal(t, "empty", infos[1].Name)
	assert.Equal(t, 0, infos[1].Size)
	assert.Equal(t, "zeta", infos[2].Name)
	assert.Equal(t, 1, infos[2].Size)
}

func TestBackend_PersistsAcrossAttach(t *testing.T) {
	dir := t.TempDir()
	cfg := types.Config{Backend: types.BackendSQLite, DataDir: dir}

	b := NewBackend()
	require.NoError(t, b.Attach(cfg))
	info, err := b.Put("tasks", record("a", `1`, "b", `[1,2]`))
	require.NoError(t, err)
	_, err = b.Put("gone", record("x", `0`))
	require.NoError(t, err)
	require.NoError(t, b.Delete("gone"))
	require.NoError(t, b.Detach())

	b2 := NewBackend()
	require.NoError(t, b2.Attach(cfg))
	defer b2.Detach()

	got, err := b2.Get("tasks")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", `1`, "b", `[1,2]`}, entries(t, got))

	infos, err := b2.List()
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, info.SequenceID, infos[0].SequenceID)
}
