package types

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mesh-intelligence/namedseq/pkg/namedseq"
)

// Record is a persisted named sequence. Values are kept as raw JSON so that a
// store can hold sequences of any payload type.
type Record = namedseq.NamedSequence[json.RawMessage]

// Store persists named sequences under a unique sequence name.
// Callers attach to a backend, read and write sequences, and detach when done.
type Store interface {
	// Attach connects the Store to the backend described by config.
	// Returns ErrAlreadyAttached if called while already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, other operations return ErrStoreDetached.
	Detach() error

	// Get returns a copy of the named sequence. The copy shares its name
	// buffer with the stored sequence until the caller mutates it.
	// Returns ErrSequenceNotFound if no sequence has that name.
	Get(name string) (*Record, error)

	// Put creates or replaces the named sequence and returns its metadata.
	// The store keeps its own copy; later changes to seq are not persisted.
	Put(name string, seq *Record) (SequenceInfo, error)

	// Delete removes the named sequence.
	// Returns ErrSequenceNotFound if no sequence has that name.
	Delete(name string) error

	// List returns metadata for every stored sequence ordered by name.
	List() ([]SequenceInfo, error)
}

// SequenceInfo describes a stored sequence.
type SequenceInfo struct {
	// SequenceID is a UUID v7, generated when the sequence is first stored.
	SequenceID string `json:"sequence_id" yaml:"sequence_id"`

	// Name is the unique sequence name.
	Name string `json:"name" yaml:"name"`

	// Size is the number of elements.
	Size int `json:"size" yaml:"size"`

	// CreatedAt is the timestamp of the first Put.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	// UpdatedAt is the timestamp of the latest Put.
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// Store lifecycle errors.
var (
	ErrStoreDetached   = errors.New("store is detached")
	ErrAlreadyAttached = errors.New("store is already attached")
)

// Store operation errors.
var (
	ErrSequenceNotFound = errors.New("sequence not found")
	ErrInvalidName      = errors.New("invalid sequence name")
	ErrInvalidValue     = errors.New("invalid element value")
)

// MaxNameLength bounds sequence names.
const MaxNameLength = 128

// ValidateName checks a sequence name: non-empty, at most MaxNameLength
// bytes, and free of whitespace and path separators.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty", ErrInvalidName)
	case len(name) > MaxNameLength:
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidName, MaxNameLength)
	case strings.ContainsAny(name, " \t\r\n/\\"):
		return fmt.Errorf("%w: %q contains whitespace or a path separator", ErrInvalidName, name)
	}
	return nil
}
