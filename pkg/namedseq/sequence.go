package namedseq

import (
	"iter"
	"runtime"
	"slices"

	"github.com/mesh-intelligence/namedseq/internal/cow"
)

// NamedSequence is an ordered sequence of elements, each paired with a name.
// The elements are owned by the sequence; the names live in a buffer that is
// shared with copies until one of them mutates.
//
// The zero value is an empty sequence ready to use. Sequences created with
// New, Clone or Move release their share of the name buffer automatically
// when they become unreachable; Release does the same eagerly.
//
// A NamedSequence must not be copied by value: a copy would share the name
// handle without owning it. Use Clone or Assign to copy.
type NamedSequence[T any] struct {
	noCopy noCopy
	elems  []T
	names  *cow.Handle[string]
}

// noCopy lets go vet's copylocks check flag value copies of NamedSequence.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Entry is a read-only paired view of an element and its name.
type Entry[T any] struct {
	Value T
	Name  string
}

// EntryRef points at an element and its name inside a sequence. The pointers
// stay valid until the sequence grows, is cleared, or is released.
type EntryRef[T any] struct {
	Value *T
	Name  *string
}

// New returns an empty sequence that exclusively owns a fresh name buffer.
func New[T any]() *NamedSequence[T] {
	return track(&NamedSequence[T]{names: cow.New[string]()})
}

// track registers the release of s's name handle for when s is collected.
func track[T any](s *NamedSequence[T]) *NamedSequence[T] {
	runtime.AddCleanup(s, releaseHandle, s.names)
	return s
}

func releaseHandle(h *cow.Handle[string]) {
	h.Release()
}

// handle returns the name handle, creating it for a zero-value sequence.
func (s *NamedSequence[T]) handle() *cow.Handle[string] {
	if s.names == nil {
		s.names = &cow.Handle[string]{}
	}
	return s.names
}

// nameItems returns the current names without binding a handle.
func (s *NamedSequence[T]) nameItems() []string {
	if s.names == nil {
		return nil
	}
	return s.names.Items()
}

// detach gives s a private name buffer if the current one is shared.
func (s *NamedSequence[T]) detach() {
	s.handle().Detach()
}

// Clone returns a copy of s. The elements are copied; the name buffer is
// shared until either sequence mutates.
func (s *NamedSequence[T]) Clone() *NamedSequence[T] {
	c := &NamedSequence[T]{
		elems: slices.Clone(s.elems),
		names: s.handle().Share(),
	}
	return track(c)
}

// CloneWith is like Clone but copies each element with copyElem. Use it
// when T refers to memory that Clone would otherwise share, such as a
// byte slice.
func (s *NamedSequence[T]) CloneWith(copyElem func(T) T) *NamedSequence[T] {
	elems := make([]T, len(s.elems), cap(s.elems))
	for i, v := range s.elems {
		elems[i] = copyElem(v)
	}
	c := &NamedSequence[T]{
		elems: elems,
		names: s.handle().Share(),
	}
	return track(c)
}

// Move returns a new sequence holding the contents of s and leaves s empty.
// No name buffer changes owner count.
func (s *NamedSequence[T]) Move() *NamedSequence[T] {
	m := &NamedSequence[T]{
		elems: s.elems,
		names: &cow.Handle[string]{},
	}
	m.names.MoveFrom(s.handle())
	s.elems = nil
	return track(m)
}

// Assign makes s a copy of src, sharing src's name buffer and releasing the
// one s held before. Assigning a sequence to itself does nothing.
func (s *NamedSequence[T]) Assign(src *NamedSequence[T]) {
	if s == src {
		return
	}
	elems := slices.Clone(src.elems)
	s.handle().Assign(src.handle())
	s.elems = elems
}

// MoveAssign transfers the contents of src to s and leaves src empty.
// Moving a sequence into itself does nothing.
func (s *NamedSequence[T]) MoveAssign(src *NamedSequence[T]) {
	if s == src {
		return
	}
	s.handle().MoveFrom(src.handle())
	s.elems = src.elems
	src.elems = nil
}

// Release drops s's share of the name buffer and empties s. The sequence may
// be used again afterwards.
func (s *NamedSequence[T]) Release() {
	if s.names != nil {
		s.names.Release()
	}
	s.elems = nil
}

// Append adds value under name at the end of the sequence.
func (s *NamedSequence[T]) Append(value T, name string) {
	h := s.handle()
	h.Detach()
	elems := append(s.elems, value)
	h.Update(func(names []string) []string {
		return append(names, name)
	})
	s.elems = elems
}

// Reserve ensures capacity for at least n elements and names without
// further allocation.
func (s *NamedSequence[T]) Reserve(n int) {
	h := s.handle()
	h.Detach()
	if n <= cap(s.elems) && n <= cap(h.Items()) {
		return
	}
	elems := slices.Grow(s.elems, n-len(s.elems))
	h.Update(func(names []string) []string {
		return slices.Grow(names, n-len(names))
	})
	s.elems = elems
}

// Clear removes all elements and names. Capacity is retained.
func (s *NamedSequence[T]) Clear() {
	h := s.handle()
	h.Update(func(names []string) []string {
		clear(names)
		return names[:0]
	})
	clear(s.elems)
	s.elems = s.elems[:0]
}

// Len returns the number of elements.
func (s *NamedSequence[T]) Len() int { return len(s.elems) }

// Empty reports whether the sequence has no elements.
func (s *NamedSequence[T]) Empty() bool { return len(s.elems) == 0 }

// Cap returns the element capacity.
func (s *NamedSequence[T]) Cap() int { return cap(s.elems) }

// checkIndex returns an IndexError if i is not a valid position.
func (s *NamedSequence[T]) checkIndex(i int) error {
	if i < 0 || i >= len(s.elems) {
		return IndexError{Index: i, Len: len(s.elems)}
	}
	return nil
}

// At returns the element and name at position i.
func (s *NamedSequence[T]) At(i int) (Entry[T], error) {
	if err := s.checkIndex(i); err != nil {
		return Entry[T]{}, err
	}
	return Entry[T]{Value: s.elems[i], Name: s.nameItems()[i]}, nil
}

// Ref returns pointers to the element and name at position i. The name buffer
// is made private first, whether or not the caller writes through the result.
func (s *NamedSequence[T]) Ref(i int) (EntryRef[T], error) {
	if err := s.checkIndex(i); err != nil {
		return EntryRef[T]{}, err
	}
	s.detach()
	return EntryRef[T]{Value: &s.elems[i], Name: &s.names.Items()[i]}, nil
}

// Index returns the position of the first element named name, or -1.
func (s *NamedSequence[T]) Index(name string) int {
	return slices.Index(s.nameItems(), name)
}

// Lookup returns the first element named name.
func (s *NamedSequence[T]) Lookup(name string) (T, error) {
	i := s.Index(name)
	if i < 0 {
		var zero T
		return zero, NameError{Name: name}
	}
	return s.elems[i], nil
}

// LookupRef returns a pointer to the first element named name, after making
// the name buffer private.
func (s *NamedSequence[T]) LookupRef(name string) (*T, error) {
	i := s.Index(name)
	if i < 0 {
		return nil, NameError{Name: name}
	}
	s.detach()
	return &s.elems[i], nil
}

// All yields each position and element in order.
func (s *NamedSequence[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i, v := range s.elems {
			if !yield(i, v) {
				return
			}
		}
	}
}

// Values yields each element in order.
func (s *NamedSequence[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, v := range s.elems {
			if !yield(v) {
				return
			}
		}
	}
}

// Backward yields each position and element from last to first.
func (s *NamedSequence[T]) Backward() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := len(s.elems) - 1; i >= 0; i-- {
			if !yield(i, s.elems[i]) {
				return
			}
		}
	}
}

// IsShared reports whether s currently shares its name buffer.
func (s *NamedSequence[T]) IsShared() bool {
	return s.names != nil && s.names.IsShared()
}

// SharesNamesWith reports whether s and other use the same name buffer.
func (s *NamedSequence[T]) SharesNamesWith(other *NamedSequence[T]) bool {
	if s.names == nil || other.names == nil {
		return false
	}
	return s.names.Same(other.names)
}
