package namedseq

import (
	"errors"
	"fmt"
)

// Lookup errors. IndexError and NameError unwrap to these.
var (
	ErrOutOfRange = errors.New("index out of range")
	ErrNotFound   = errors.New("name not found")
)

// IndexError reports a positional access outside [0, Len).
type IndexError struct {
	Index int
	Len   int
}

func (e IndexError) Error() string {
	return fmt.Sprintf("index %d out of range [0, %d)", e.Index, e.Len)
}

func (e IndexError) Unwrap() error { return ErrOutOfRange }

// NameError reports a name lookup with no matching element.
type NameError struct {
	Name string
}

func (e NameError) Error() string {
	return fmt.Sprintf("%q: %s", e.Name, ErrNotFound)
}

func (e NameError) Unwrap() error { return ErrNotFound }
