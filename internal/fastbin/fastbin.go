// Package fastbin implements a grow-only slab allocator that vends
// fixed-size blocks of a single Go type T and recycles freed blocks
// through a LIFO free-list, avoiding a per-operation call into the
// runtime allocator.
//
// The design is adapted from the segregated free-list slab allocators in
// the pack (notably the min-heap-per-size-class allocator in
// other_examples/joshuapare-hivekit__fastalloc.go), simplified down to the
// single-size-class, pure-LIFO case this module needs: there is exactly
// one block size per Fastbin, so no size-class table or best-fit search is
// needed, only page growth and a free-list.
package fastbin

// Fastbin vends *T values backed by grow-only pages. The zero value is not
// ready to use; call New.
type Fastbin[T any] struct {
	pageInitial int
	pageCap     int

	pages    [][]T
	nextPage int // index into the current (last) page's backing slice

	free     []*T // LIFO free-list
	liveCount int
}

// New creates a Fastbin whose first page holds pageInitial blocks, and
// whose later pages double in size up to pageCap blocks.
func New[T any](pageInitial, pageCap int) *Fastbin[T] {
	if pageInitial < 1 {
		pageInitial = 1
	}
	if pageCap < pageInitial {
		pageCap = pageInitial
	}
	return &Fastbin[T]{
		pageInitial: pageInitial,
		pageCap:     pageCap,
	}
}

// Alloc returns a pointer to a fresh, zeroed T. The pointer remains valid
// (stable) until the corresponding Free call, and is never reused by
// another Alloc in between.
func (f *Fastbin[T]) Alloc() *T {
	f.liveCount++
	if n := len(f.free); n > 0 {
		p := f.free[n-1]
		f.free = f.free[:n-1]
		*p = *new(T)
		return p
	}
	if len(f.pages) == 0 || f.nextPage == len(f.pages[len(f.pages)-1]) {
		f.growPage()
	}
	cur := f.pages[len(f.pages)-1]
	p := &cur[f.nextPage]
	f.nextPage++
	return p
}

// growPage appends a new page, doubling the previous page's size (capped
// at pageCap), or pageInitial if this is the first page.
func (f *Fastbin[T]) growPage() {
	size := f.pageInitial
	if n := len(f.pages); n > 0 {
		size = min(len(f.pages[n-1])*2, f.pageCap)
	}
	f.pages = append(f.pages, make([]T, size))
	f.nextPage = 0
}

// Free releases a block previously returned by Alloc, pushing it onto the
// free-list. p must not be used again until a later Alloc call returns it.
func (f *Fastbin[T]) Free(p *T) {
	f.liveCount--
	f.free = append(f.free, p)
}

// Live returns the number of blocks currently allocated and not yet freed.
func (f *Fastbin[T]) Live() int {
	return f.liveCount
}

// Shutdown releases every page and the free-list, as if the Fastbin were
// newly constructed. Any pointer still held from a prior Alloc becomes
// invalid to dereference through this Fastbin's guarantees (Go's GC will
// not reclaim the backing page until all other references to it, if any,
// are also gone).
func (f *Fastbin[T]) Shutdown() {
	f.pages = nil
	f.nextPage = 0
	f.free = nil
	f.liveCount = 0
}
