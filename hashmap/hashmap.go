// Package hashmap implements an in-memory unordered map keyed by a hashable,
// totally ordered key type. It is grounded on ordmap's AVL machinery (itself
// adapted from the treap-based github.com/jba/omap): a bucket array indexed
// by a power-of-two mask, each bucket holding an AVL tree ordered first by
// hash then by key, with non-empty buckets threaded onto an intrusive
// doubly linked list (internal/dlist) for O(occupied buckets) iteration.
// The bucket-sizing and load-factor shape — a load-factor constant gating a
// power-of-two doubling, exposed as a constructor option — follows
// github.com/llxisdsh/pb's MapOf, adapted from its atomic flat-array design
// down to this package's single-threaded bucket-of-trees design.
package hashmap

import (
	"cmp"
	"iter"
	"unsafe"

	"github.com/jba/ixmap/internal/avltree"
	"github.com/jba/ixmap/internal/dlist"
	"github.com/jba/ixmap/internal/fastbin"
)

const (
	defaultFastbinPageInitial = 32
	defaultFastbinPageCap     = 4096
	defaultInitialBuckets     = 8
	defaultMaxLoadNum         = 1
	defaultMaxLoadDen         = 1
)

// hashEntry is the AVL node's enclosing record. Unlike ordmap's entry, it
// caches the key's hash so resize can re-bucket without rehashing, and
// carries no list_node of its own: the non-empty-bucket list threads
// buckets, not entries (§3's HashEntry/Bucket split is resolved that way
// here — see DESIGN.md).
type hashEntry[K cmp.Ordered, V any] struct {
	key  K
	val  V
	hash uint64
	node avltree.Node
}

func entryFromNode[K cmp.Ordered, V any](n *avltree.Node) *hashEntry[K, V] {
	if n == nil {
		return nil
	}
	var zero hashEntry[K, V]
	return (*hashEntry[K, V])(unsafe.Pointer(uintptr(unsafe.Pointer(n)) - unsafe.Offsetof(zero.node)))
}

// bucket is one slot of the bucket array: an AVL tree ordered by (hash,
// key), threaded onto the map's non-empty-bucket list when count > 0.
// bucket itself carries no type parameter, since avltree.Node doesn't
// either; only entryFromNode's instantiation ties a lookup back to K, V.
type bucket struct {
	root  *avltree.Node
	list  dlist.Node
	count int
}

func bucketFromListNode(n *dlist.Node) *bucket {
	var zero bucket
	return (*bucket)(unsafe.Pointer(uintptr(unsafe.Pointer(n)) - unsafe.Offsetof(zero.list)))
}

// Option configures a Map at construction time.
type Option func(*config)

type config struct {
	pageInitial    int
	pageCap        int
	initialBuckets int
	maxLoadNum     int
	maxLoadDen     int
	hasher         func(any) uint64
}

// WithFastbinPageInitial sets the block count of the entry allocator's
// first page (default 32).
func WithFastbinPageInitial(n int) Option {
	return func(c *config) { c.pageInitial = n }
}

// WithFastbinPageCap sets the maximum block count of later allocator pages
// (default 4096).
func WithFastbinPageCap(n int) Option {
	return func(c *config) { c.pageCap = n }
}

// WithInitialBuckets sets the bucket array's size on first insertion
// (default 8). Rounded up to the next power of two.
func WithInitialBuckets(n int) Option {
	return func(c *config) { c.initialBuckets = n }
}

// WithMaxLoad sets the load factor that triggers a resize: a resize occurs
// when count*den > bucketCount*num (default 1/1).
func WithMaxLoad(num, den int) Option {
	return func(c *config) { c.maxLoadNum, c.maxLoadDen = num, den }
}

// WithHasher replaces the default FNV-1a hasher with h.
func WithHasher[K any](h Hasher[K]) Option {
	return func(c *config) {
		c.hasher = func(k any) uint64 { return h(k.(K)) }
	}
}

// Map is an unordered map[K]V backed by a power-of-two bucket array of AVL
// trees. Use [New] to construct one; the zero Map is not ready to use (its
// bucket-list sentinel needs Init, unlike ordmap.Map's zero value).
type Map[K cmp.Ordered, V any] struct {
	cfg     config
	hasher  func(K) uint64
	buckets []bucket
	mask    uint64
	head    dlist.Node
	count   int
	fb      *fastbin.Fastbin[hashEntry[K, V]]
}

// New returns an empty Map configured by opts.
func New[K cmp.Ordered, V any](opts ...Option) *Map[K, V] {
	m := &Map[K, V]{}
	for _, opt := range opts {
		opt(&m.cfg)
	}
	m.head.Init()
	if m.cfg.hasher != nil {
		h := m.cfg.hasher
		m.hasher = func(k K) uint64 { return h(any(k)) }
	} else {
		m.hasher = defaultHasher[K]()
	}
	return m
}

func (m *Map[K, V]) fastbin() *fastbin.Fastbin[hashEntry[K, V]] {
	if m.fb == nil {
		pi, pc := m.cfg.pageInitial, m.cfg.pageCap
		if pi == 0 {
			pi = defaultFastbinPageInitial
		}
		if pc == 0 {
			pc = defaultFastbinPageCap
		}
		m.fb = fastbin.New[hashEntry[K, V]](pi, pc)
	}
	return m.fb
}

func nextPow2(n int) int {
	if n < 1 {
		return 1
	}
	p := 1
	for p < n {
		p *= 2
	}
	return p
}

// ensureBuckets allocates the bucket array on first insertion, per §4.5:
// "a fresh container defers allocating the bucket array until the first
// insertion".
func (m *Map[K, V]) ensureBuckets() {
	if m.buckets != nil {
		return
	}
	size := m.cfg.initialBuckets
	if size == 0 {
		size = defaultInitialBuckets
	}
	size = nextPow2(size)
	m.buckets = make([]bucket, size)
	for i := range m.buckets {
		m.buckets[i].list.Init()
	}
	m.mask = uint64(size - 1)
}

func (m *Map[K, V]) loadFactor() (num, den int) {
	num, den = m.cfg.maxLoadNum, m.cfg.maxLoadDen
	if num == 0 {
		num = defaultMaxLoadNum
	}
	if den == 0 {
		den = defaultMaxLoadDen
	}
	return num, den
}

// findNode returns the node in the tree rooted at root holding (hash, key),
// or nil. Nodes are ordered first by hash, then by key on hash ties (the
// dual comparator of §4.5).
func findNode[K cmp.Ordered, V any](root *avltree.Node, hash uint64, key K) *avltree.Node {
	n := root
	for n != nil {
		e := entryFromNode[K, V](n)
		switch {
		case hash == e.hash && key == e.key:
			return n
		case hash < e.hash || (hash == e.hash && key < e.key):
			n = n.Left()
		default:
			n = n.Right()
		}
	}
	return nil
}

// findInsertPos descends for (hash, key), returning either the existing
// node (if present) or the (parent, side) a new node belongs at.
func findInsertPos[K cmp.Ordered, V any](root *avltree.Node, hash uint64, key K) (parent *avltree.Node, left bool, existing *avltree.Node) {
	n := root
	for n != nil {
		e := entryFromNode[K, V](n)
		switch {
		case hash == e.hash && key == e.key:
			return parent, left, n
		case hash < e.hash || (hash == e.hash && key < e.key):
			parent, left = n, true
			n = n.Left()
		default:
			parent, left = n, false
			n = n.Right()
		}
	}
	return parent, left, nil
}

// linkNewEntry installs e into bucket b at the (parent, left) position
// findInsertPos identified, attaching b to the bucket list if this is its
// first entry. Rebalancing is skipped when b was empty before this insert,
// the small-bucket fast path of §4.5: a lone root is already a valid AVL
// of height 1. From the second node on, RebalanceInsert runs so that the
// ancestors' cached heights stay correct.
func (m *Map[K, V]) linkNewEntry(b *bucket, e *hashEntry[K, V], parent *avltree.Node, left bool) {
	wasEmpty := b.count == 0
	avltree.SmartLink(&b.root, parent, left, &e.node)
	if b.count >= 1 {
		avltree.RebalanceInsert(&b.root, &e.node)
	}
	if wasEmpty {
		b.list.InsertBefore(&m.head)
	}
	b.count++
}

// Insert sets m[key] = val. If key was already present, Insert returns its
// former value and true; otherwise it returns the zero value and false.
func (m *Map[K, V]) Insert(key K, val V) (prev V, hadPrev bool) {
	m.ensureBuckets()
	hash := m.hasher(key)
	b := &m.buckets[hash&m.mask]
	parent, left, existing := findInsertPos[K, V](b.root, hash, key)
	if existing != nil {
		e := entryFromNode[K, V](existing)
		prev = e.val
		e.val = val
		return prev, true
	}
	e := m.fastbin().Alloc()
	e.key, e.val, e.hash = key, val, hash
	m.linkNewEntry(b, e, parent, left)
	m.count++
	if num, den := m.loadFactor(); m.count*den > len(m.buckets)*num {
		m.grow()
	}
	var zero V
	return zero, false
}

func (m *Map[K, V]) findNode(key K) (hash uint64, n *avltree.Node) {
	if m.buckets == nil {
		return 0, nil
	}
	hash = m.hasher(key)
	return hash, findNode[K, V](m.buckets[hash&m.mask].root, hash, key)
}

// Get returns m[key] and reports whether it is present.
func (m *Map[K, V]) Get(key K) (V, bool) {
	_, n := m.findNode(key)
	if n == nil {
		var zero V
		return zero, false
	}
	return entryFromNode[K, V](n).val, true
}

// GetPointer returns a pointer to m[key]'s value for in-place mutation, or
// nil if key is not present. The pointer is valid until the next call that
// could remove key (Remove, Clear) or trigger a resize.
func (m *Map[K, V]) GetPointer(key K) *V {
	_, n := m.findNode(key)
	if n == nil {
		return nil
	}
	return &entryFromNode[K, V](n).val
}

// Contains reports whether key is present in m.
func (m *Map[K, V]) Contains(key K) bool {
	_, n := m.findNode(key)
	return n != nil
}

// Remove deletes m[key] if present, returning its former value and true;
// otherwise it returns the zero value and false.
func (m *Map[K, V]) Remove(key K) (V, bool) {
	if m.buckets == nil {
		var zero V
		return zero, false
	}
	hash := m.hasher(key)
	b := &m.buckets[hash&m.mask]
	n := findNode[K, V](b.root, hash, key)
	if n == nil {
		var zero V
		return zero, false
	}
	e := entryFromNode[K, V](n)
	val := e.val
	avltree.Erase(&b.root, n)
	b.count--
	if b.count == 0 {
		b.list.Detach()
	}
	m.fb.Free(e)
	m.count--
	return val, true
}

// Len returns the number of entries in m.
func (m *Map[K, V]) Len() int { return m.count }

// IsEmpty reports whether m has no entries.
func (m *Map[K, V]) IsEmpty() bool { return m.count == 0 }

// grow doubles the bucket array and re-buckets every entry using its
// cached hash (no rehashing), rebuilding the non-empty-bucket list from
// scratch, per §4.5's resize contract.
func (m *Map[K, V]) grow() {
	var nonEmpty []*bucket
	for n := dlist.First(&m.head); n != nil; n = n.Next(&m.head) {
		nonEmpty = append(nonEmpty, bucketFromListNode(n))
	}

	newSize := len(m.buckets) * 2
	m.buckets = make([]bucket, newSize)
	for i := range m.buckets {
		m.buckets[i].list.Init()
	}
	m.mask = uint64(newSize - 1)
	m.head.Init()

	for _, b := range nonEmpty {
		if b.root == nil {
			continue
		}
		t := avltree.NewTearer(b.root)
		for n := t.Next(); n != nil; n = t.Next() {
			e := entryFromNode[K, V](n)
			nb := &m.buckets[e.hash&m.mask]
			parent, left, _ := findInsertPos[K, V](nb.root, e.hash, e.key)
			m.linkNewEntry(nb, e, parent, left)
		}
	}
}

// Clear removes every entry from m, leaving its bucket array allocated but
// every bucket empty and detached, and the bucket-list head self-linked
// (S6). O(count).
func (m *Map[K, V]) Clear() {
	for n := dlist.First(&m.head); n != nil; {
		next := n.Next(&m.head)
		b := bucketFromListNode(n)
		if b.root != nil {
			t := avltree.NewTearer(b.root)
			for nd := t.Next(); nd != nil; nd = t.Next() {
				m.fb.Free(entryFromNode[K, V](nd))
			}
			b.root = nil
		}
		b.count = 0
		n.Detach()
		n = next
	}
	m.head.Init()
	m.count = 0
}

// All returns an iterator over m's entries, walking the non-empty-bucket
// list and, for each bucket, its AVL tree in order. Cost is
// O(count + occupied buckets), not O(bucket array size).
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for ln := dlist.First(&m.head); ln != nil; ln = ln.Next(&m.head) {
			b := bucketFromListNode(ln)
			for n := avltree.First(b.root); n != nil; n = avltree.Next(n) {
				e := entryFromNode[K, V](n)
				if !yield(e.key, e.val) {
					return
				}
			}
		}
	}
}

// BucketCount returns the current size of the bucket array (0 before the
// first insertion).
func (m *Map[K, V]) BucketCount() int { return len(m.buckets) }
