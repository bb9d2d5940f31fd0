// Package cow provides a reference-counted, copy-on-write buffer handle.
//
// A Handle binds to a cell holding a slice and an owner count. Several
// handles may bind to the same cell; a handle that is about to write calls
// Detach, which gives it a private copy when the cell is shared.
//
// Handles are not safe for concurrent use. The owner count is updated
// atomically only so that a garbage-collection cleanup releasing an
// unreachable owner cannot corrupt it; the buffer contents carry no such
// guarantee.
package cow

import (
	"slices"
	"sync/atomic"
)

// cell is one generation of a shared buffer together with its owner count.
type cell[E any] struct {
	items []E
	refs  atomic.Int64
}

func newCell[E any](items []E) *cell[E] {
	c := &cell[E]{items: items}
	c.refs.Store(1)
	return c
}

// release drops one owner. The last owner clears the items so the backing
// array can be collected even if a stale pointer to the cell survives.
func (c *cell[E]) release() {
	if c == nil {
		return
	}
	if c.refs.Add(-1) == 0 {
		c.items = nil
	}
}

// Handle is one owner's binding to a shared buffer. The zero value is an
// unbound handle that behaves as an exclusively owned empty buffer and binds
// to a fresh cell on first use.
type Handle[E any] struct {
	c *cell[E]
}

// New returns a handle to a fresh, empty buffer with an owner count of 1.
func New[E any]() *Handle[E] {
	return &Handle[E]{c: newCell[E](nil)}
}

// bound returns the current cell, binding to a fresh one if necessary.
func (h *Handle[E]) bound() *cell[E] {
	if h.c == nil {
		h.c = newCell[E](nil)
	}
	return h.c
}

// Share returns a new handle bound to the same buffer and increments the
// owner count.
func (h *Handle[E]) Share() *Handle[E] {
	c := h.bound()
	c.refs.Add(1)
	return &Handle[E]{c: c}
}

// Assign rebinds h to the buffer held by src. The new buffer is acquired
// before the old one is released, and assigning a handle to itself or to a
// handle already bound to the same buffer does nothing.
func (h *Handle[E]) Assign(src *Handle[E]) {
	if h == src {
		return
	}
	c := src.bound()
	if h.c == c {
		return
	}
	c.refs.Add(1)
	old := h.c
	h.c = c
	old.release()
}

// MoveFrom transfers src's binding to h without touching the moved buffer's
// owner count, then releases the buffer h held before. src is left unbound.
func (h *Handle[E]) MoveFrom(src *Handle[E]) {
	if h == src {
		return
	}
	old := h.c
	h.c = src.c
	src.c = nil
	old.release()
}

// IsShared reports whether more than one owner is bound to h's buffer.
func (h *Handle[E]) IsShared() bool {
	return h.c != nil && h.c.refs.Load() > 1
}

// Refs returns the owner count of h's buffer, or 0 for an unbound handle.
func (h *Handle[E]) Refs() int {
	if h.c == nil {
		return 0
	}
	return int(h.c.refs.Load())
}

// Same reports whether h and other are bound to the same buffer.
func (h *Handle[E]) Same(other *Handle[E]) bool {
	return h.c != nil && h.c == other.c
}

// Detach makes h the exclusive owner of its buffer. When the buffer is
// shared the items are copied into a new cell first, and only then is the
// old cell released.
func (h *Handle[E]) Detach() {
	c := h.bound()
	if c.refs.Load() <= 1 {
		return
	}
	fresh := newCell(slices.Clone(c.items))
	h.c = fresh
	c.release()
}

// Release unbinds h and drops its ownership. It is safe to call more than
// once; a released handle rebinds to a fresh empty buffer on next use.
func (h *Handle[E]) Release() {
	old := h.c
	h.c = nil
	old.release()
}

// Items returns the current contents. The slice must be treated as read-only:
// other owners may observe it.
func (h *Handle[E]) Items() []E {
	if h.c == nil {
		return nil
	}
	return h.c.items
}

// Len returns the number of items in the buffer.
func (h *Handle[E]) Len() int {
	return len(h.Items())
}

// Update detaches h and replaces its contents with the result of fn. fn
// receives the private slice and may modify it in place.
func (h *Handle[E]) Update(fn func([]E) []E) {
	h.Detach()
	h.c.items = fn(h.c.items)
}
