package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/namedseq/pkg/namedseq"
	"github.com/mesh-intelligence/namedseq/pkg/sqlite"
	"github.com/mesh-intelligence/namedseq/pkg/types"
)

// openStore resolves the data directory, creates a SQLite backend, and
// attaches it. The caller must defer store.Detach().
func (a *app) openStore() (types.Store, error) {
	dataDir, err := a.resolveDataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}

	backend := a.config.GetString(cfgKeyBackend)
	store := sqlite.NewBackend(sqlite.WithLogger(a.logger))
	if err := store.Attach(types.Config{Backend: backend, DataDir: dataDir}); err != nil {
		return nil, fmt.Errorf("attach store: %w", err)
	}
	return store, nil
}

// withStore opens the store, runs fn, and detaches.
func (a *app) withStore(fn func(types.Store) error) (err error) {
	store, err := a.openStore()
	if err != nil {
		return err
	}
	defer func() {
		if derr := store.Detach(); derr != nil && err == nil {
			err = fmt.Errorf("detach store: %w", derr)
		}
	}()
	return fn(store)
}

// getOrNew returns the named sequence, or a new empty one if it does not exist.
func getOrNew(store types.Store, name string) (*types.Record, error) {
	seq, err := store.Get(name)
	if errors.Is(err, types.ErrSequenceNotFound) {
		return namedseq.New[json.RawMessage](), nil
	}
	return seq, err
}

// parseValue interprets arg as JSON, falling back to a JSON string.
func parseValue(arg string) (json.RawMessage, error) {
	if json.Valid([]byte(arg)) {
		return json.RawMessage(arg), nil
	}
	b, err := json.Marshal(arg)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", types.ErrInvalidValue, err)
	}
	return b, nil
}

// parseIndex parses a non-negative position argument.
func parseIndex(arg string) (int, error) {
	i, err := strconv.Atoi(arg)
	if err != nil {
		return 0, userError{fmt.Errorf("invalid index %q", arg)}
	}
	return i, nil
}

// keyIsIndex reports whether key addresses a position rather than a name.
func keyIsIndex(key string, byName bool) (int, bool) {
	if byName {
		return 0, false
	}
	i, err := strconv.Atoi(key)
	if err != nil {
		return 0, false
	}
	return i, true
}

// exactArgs is cobra.ExactArgs with errors reported as user errors.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return userError{err}
		}
		return nil
	}
}

// maxArgs is cobra.MaximumNArgs with errors reported as user errors.
func maxArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.MaximumNArgs(n)(cmd, args); err != nil {
			return userError{err}
		}
		return nil
	}
}

// printJSON writes v as indented JSON to the command's output.
func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

// entryOutput is the JSON form of one positional lookup.
type entryOutput struct {
	Index int             `json:"index"`
	Name  string          `json:"name"`
	Value json.RawMessage `json:"value"`
}
