// Package ordmap implements an in-memory ordered map keyed by a totally
// ordered key type, as a height-balanced binary search tree (AVL). It is
// grounded on the treap-based github.com/jba/omap, generalized from a
// random-priority balanced tree to an explicit AVL with a slab-backed
// entry allocator: the field layout (parent/left/right in the node,
// key/val in the entry, cached first/last on the map), the rotate-and-fix
// three-pointer relinking, and the Range/iterator surface all follow that
// package's shape.
package ordmap

import (
	"cmp"
	"iter"
	"unsafe"

	"github.com/jba/ixmap/internal/avltree"
	"github.com/jba/ixmap/internal/fastbin"
	"github.com/jba/ixmap/rng"
)

const (
	defaultFastbinPageInitial = 32
	defaultFastbinPageCap     = 4096
)

// ordEntry is the AVL node's enclosing record: key, value, and the
// intrusive node, embedded (not promoted) so recovery from a *avltree.Node
// back to *ordEntry is a real pointer-offset computation (§4.6), not a Go
// struct-embedding shortcut.
type ordEntry[K cmp.Ordered, V any] struct {
	key  K
	val  V
	node avltree.Node
}

// entryFromNode recovers the ordEntry enclosing n by subtracting the
// compile-time byte offset of its node field. n must be nil or a node
// that was linked in by this instantiation of Map[K, V]; the offset is
// fixed for the lifetime of the program, since Go's generic instantiation
// gives every distinct (K, V) pair its own ordEntry layout.
func entryFromNode[K cmp.Ordered, V any](n *avltree.Node) *ordEntry[K, V] {
	if n == nil {
		return nil
	}
	var zero ordEntry[K, V]
	return (*ordEntry[K, V])(unsafe.Pointer(uintptr(unsafe.Pointer(n)) - unsafe.Offsetof(zero.node)))
}

// Option configures a Map at construction time.
type Option func(*config)

type config struct {
	pageInitial int
	pageCap     int
}

// WithFastbinPageInitial sets the block count of the entry allocator's
// first page (default 32).
func WithFastbinPageInitial(n int) Option {
	return func(c *config) { c.pageInitial = n }
}

// WithFastbinPageCap sets the maximum block count of later allocator pages
// (default 4096); pages double in size, capped at this value.
func WithFastbinPageCap(n int) Option {
	return func(c *config) { c.pageCap = n }
}

// Map is an ordered map[K]V. The zero value is an empty Map ready to use
// with default options; use [New] to apply non-default [Option]s.
type Map[K cmp.Ordered, V any] struct {
	cfg   config
	root  *avltree.Node
	count int
	first *avltree.Node
	last  *avltree.Node
	fb    *fastbin.Fastbin[ordEntry[K, V]]
}

// New returns an empty Map configured by opts.
func New[K cmp.Ordered, V any](opts ...Option) *Map[K, V] {
	m := &Map[K, V]{}
	for _, opt := range opts {
		opt(&m.cfg)
	}
	return m
}

func (m *Map[K, V]) fastbin() *fastbin.Fastbin[ordEntry[K, V]] {
	if m.fb == nil {
		pi, pc := m.cfg.pageInitial, m.cfg.pageCap
		if pi == 0 {
			pi = defaultFastbinPageInitial
		}
		if pc == 0 {
			pc = defaultFastbinPageCap
		}
		m.fb = fastbin.New[ordEntry[K, V]](pi, pc)
	}
	return m.fb
}

// findNode returns the node holding key, or nil.
func (m *Map[K, V]) findNode(key K) *avltree.Node {
	n := m.root
	for n != nil {
		e := entryFromNode[K, V](n)
		switch {
		case key == e.key:
			return n
		case key < e.key:
			n = n.Left()
		default:
			n = n.Right()
		}
	}
	return nil
}

// findInsertPos descends for key, returning either the existing node (if
// present) or the (parent, side) at which a new node belongs.
func (m *Map[K, V]) findInsertPos(key K) (parent *avltree.Node, left bool, existing *avltree.Node) {
	n := m.root
	for n != nil {
		e := entryFromNode[K, V](n)
		switch {
		case key == e.key:
			return parent, left, n
		case key < e.key:
			parent, left = n, true
			n = n.Left()
		default:
			parent, left = n, false
			n = n.Right()
		}
	}
	return parent, left, nil
}

// findGE returns the node with the least key k such that k >= lo (or k >
// lo if incl is false), or nil if none.
func (m *Map[K, V]) findGE(lo K, incl bool) *avltree.Node {
	var candidate *avltree.Node
	n := m.root
	for n != nil {
		e := entryFromNode[K, V](n)
		switch {
		case e.key == lo:
			if incl {
				return n
			}
			return avltree.Next(n)
		case e.key < lo:
			n = n.Right()
		default:
			candidate = n
			n = n.Left()
		}
	}
	return candidate
}

// findLE returns the node with the greatest key k such that k <= hi (or k
// < hi if incl is false), or nil if none.
func (m *Map[K, V]) findLE(hi K, incl bool) *avltree.Node {
	var candidate *avltree.Node
	n := m.root
	for n != nil {
		e := entryFromNode[K, V](n)
		switch {
		case e.key == hi:
			if incl {
				return n
			}
			return avltree.Prev(n)
		case e.key > hi:
			n = n.Left()
		default:
			candidate = n
			n = n.Right()
		}
	}
	return candidate
}

func (m *Map[K, V]) touchFirstLast(key K, n *avltree.Node) {
	if m.first == nil || key < entryFromNode[K, V](m.first).key {
		m.first = n
	}
	if m.last == nil || key > entryFromNode[K, V](m.last).key {
		m.last = n
	}
}

// Insert sets m[key] = val. If key was already present, Insert returns its
// former value and true; otherwise it returns the zero value and false.
func (m *Map[K, V]) Insert(key K, val V) (prev V, hadPrev bool) {
	parent, left, existing := m.findInsertPos(key)
	if existing != nil {
		e := entryFromNode[K, V](existing)
		prev = e.val
		e.val = val
		return prev, true
	}
	e := m.fastbin().Alloc()
	e.key, e.val = key, val
	avltree.SmartLink(&m.root, parent, left, &e.node)
	avltree.RebalanceInsert(&m.root, &e.node)
	m.count++
	m.touchFirstLast(key, &e.node)
	var zero V
	return zero, false
}

// Get returns m[key] and reports whether it is present.
func (m *Map[K, V]) Get(key K) (V, bool) {
	n := m.findNode(key)
	if n == nil {
		var zero V
		return zero, false
	}
	return entryFromNode[K, V](n).val, true
}

// GetPointer returns a pointer to m[key]'s value for in-place mutation, or
// nil if key is not present. The pointer is valid until the next call
// that could remove key (Remove, Clear) or reallocate its entry.
func (m *Map[K, V]) GetPointer(key K) *V {
	n := m.findNode(key)
	if n == nil {
		return nil
	}
	return &entryFromNode[K, V](n).val
}

// Contains reports whether key is present in m.
func (m *Map[K, V]) Contains(key K) bool {
	return m.findNode(key) != nil
}

// Remove deletes m[key] if present, returning its former value and true;
// otherwise it returns the zero value and false.
func (m *Map[K, V]) Remove(key K) (V, bool) {
	n := m.findNode(key)
	if n == nil {
		var zero V
		return zero, false
	}
	e := entryFromNode[K, V](n)
	val := e.val
	if m.first == n {
		m.first = avltree.Next(n)
	}
	if m.last == n {
		m.last = avltree.Prev(n)
	}
	avltree.Erase(&m.root, n)
	m.fb.Free(e)
	m.count--
	return val, true
}

// Len returns the number of entries in m.
func (m *Map[K, V]) Len() int { return m.count }

// IsEmpty reports whether m has no entries.
func (m *Map[K, V]) IsEmpty() bool { return m.count == 0 }

// First returns the entry with the smallest key, and true, or the zero
// entry and false if m is empty. O(1).
func (m *Map[K, V]) First() (key K, val V, ok bool) {
	if m.first == nil {
		return key, val, false
	}
	e := entryFromNode[K, V](m.first)
	return e.key, e.val, true
}

// Last returns the entry with the largest key, and true, or the zero
// entry and false if m is empty. O(1).
func (m *Map[K, V]) Last() (key K, val V, ok bool) {
	if m.last == nil {
		return key, val, false
	}
	e := entryFromNode[K, V](m.last)
	return e.key, e.val, true
}

// Cursor is a stable reference to one entry of a Map, usable to walk
// forward or backward from a known position without a fresh descent.
type Cursor[K cmp.Ordered, V any] struct {
	node *avltree.Node
}

// Valid reports whether c refers to an entry (false for the cursor
// returned by stepping past either end).
func (c Cursor[K, V]) Valid() bool { return c.node != nil }

// Key and Value return the entry c refers to. c must be Valid.
func (c Cursor[K, V]) Key() K   { return entryFromNode[K, V](c.node).key }
func (c Cursor[K, V]) Value() V { return entryFromNode[K, V](c.node).val }

// Next returns a cursor to the in-order successor of c.
func (c Cursor[K, V]) Next() Cursor[K, V] { return Cursor[K, V]{avltree.Next(c.node)} }

// Prev returns a cursor to the in-order predecessor of c.
func (c Cursor[K, V]) Prev() Cursor[K, V] { return Cursor[K, V]{avltree.Prev(c.node)} }

// FirstCursor returns a cursor to the smallest entry, or an invalid cursor
// if m is empty.
func (m *Map[K, V]) FirstCursor() Cursor[K, V] { return Cursor[K, V]{m.first} }

// LastCursor returns a cursor to the largest entry, or an invalid cursor
// if m is empty.
func (m *Map[K, V]) LastCursor() Cursor[K, V] { return Cursor[K, V]{m.last} }

// CursorAt returns a cursor to key, or an invalid cursor if key is absent.
func (m *Map[K, V]) CursorAt(key K) Cursor[K, V] { return Cursor[K, V]{m.findNode(key)} }

// All returns an iterator over m from smallest to largest key.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for n := m.first; n != nil; n = avltree.Next(n) {
			e := entryFromNode[K, V](n)
			if !yield(e.key, e.val) {
				return
			}
		}
	}
}

// Backward returns an iterator over m from largest to smallest key.
func (m *Map[K, V]) Backward() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for n := m.last; n != nil; n = avltree.Prev(n) {
			e := entryFromNode[K, V](n)
			if !yield(e.key, e.val) {
				return
			}
		}
	}
}

// Range returns an iterator over the entries of m whose keys fall within
// r, in ascending order (or descending, if r.IsBackwards()).
func (m *Map[K, V]) Range(r rng.Range[K]) iter.Seq2[K, V] {
	lo, infLo, inclLo := r.Low()
	hi, infHi, inclHi := r.High()
	inHi := func(k K) bool {
		if infHi {
			return true
		}
		if inclHi {
			return k <= hi
		}
		return k < hi
	}
	inLo := func(k K) bool {
		if infLo {
			return true
		}
		if inclLo {
			return k >= lo
		}
		return k > lo
	}
	start := func() *avltree.Node {
		if infLo {
			return m.first
		}
		return m.findGE(lo, inclLo)
	}
	if r.IsBackwards() {
		return func(yield func(K, V) bool) {
			var n *avltree.Node
			if infHi {
				n = m.last
			} else {
				n = m.findLE(hi, inclHi)
			}
			for n != nil {
				e := entryFromNode[K, V](n)
				if !inLo(e.key) {
					return
				}
				if !yield(e.key, e.val) {
					return
				}
				n = avltree.Prev(n)
			}
		}
	}
	return func(yield func(K, V) bool) {
		for n := start(); n != nil; n = avltree.Next(n) {
			e := entryFromNode[K, V](n)
			if !inHi(e.key) {
				return
			}
			if !yield(e.key, e.val) {
				return
			}
		}
	}
}

// Clear removes every entry from m. O(n).
func (m *Map[K, V]) Clear() {
	if m.fb != nil {
		t := avltree.NewTearer(m.root)
		for n := t.Next(); n != nil; n = t.Next() {
			m.fb.Free(entryFromNode[K, V](n))
		}
	}
	m.root, m.first, m.last, m.count = nil, nil, nil, 0
}

// Entry returns a handle for key that avoids a second tree descent when
// the caller goes on to read or insert. See [Entry.OrInsert].
func (m *Map[K, V]) Entry(key K) Entry[K, V] {
	parent, left, existing := m.findInsertPos(key)
	return Entry[K, V]{m: m, key: key, node: existing, parent: parent, left: left}
}

// Entry is a handle produced by [Map.Entry], caching the location a new
// node would be linked into so a subsequent OrInsert avoids re-descending
// the tree.
type Entry[K cmp.Ordered, V any] struct {
	m      *Map[K, V]
	key    K
	node   *avltree.Node
	parent *avltree.Node
	left   bool
}

// Occupied reports whether the key was present when the Entry was
// obtained.
func (e Entry[K, V]) Occupied() bool { return e.node != nil }

// Get returns the entry's current value and true if occupied, or the zero
// value and false if vacant.
func (e Entry[K, V]) Get() (V, bool) {
	if e.node == nil {
		var zero V
		return zero, false
	}
	return entryFromNode[K, V](e.node).val, true
}

// OrInsert returns a pointer to the entry's value, inserting val first if
// the entry was vacant. Using the cached link position from [Map.Entry],
// insertion here does not re-descend the tree.
func (e *Entry[K, V]) OrInsert(val V) *V {
	if e.node == nil {
		ent := e.m.fastbin().Alloc()
		ent.key, ent.val = e.key, val
		avltree.SmartLink(&e.m.root, e.parent, e.left, &ent.node)
		avltree.RebalanceInsert(&e.m.root, &ent.node)
		e.m.count++
		e.m.touchFirstLast(e.key, &ent.node)
		e.node = &ent.node
	}
	return &entryFromNode[K, V](e.node).val
}
