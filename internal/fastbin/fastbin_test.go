package fastbin

import "testing"

type block struct {
	a, b int64
}

func TestAllocIsStableUntilFree(t *testing.T) {
	f := New[block](4, 64)
	var ptrs []*block
	for i := 0; i < 100; i++ {
		p := f.Alloc()
		p.a = int64(i)
		ptrs = append(ptrs, p)
	}
	for i, p := range ptrs {
		if p.a != int64(i) {
			t.Fatalf("ptrs[%d].a = %d, want %d (pointer not stable)", i, p.a, i)
		}
	}
	if got := f.Live(); got != 100 {
		t.Fatalf("Live() = %d, want 100", got)
	}
}

func TestFreeListIsLIFOAndReused(t *testing.T) {
	f := New[block](4, 64)
	p1 := f.Alloc()
	p2 := f.Alloc()
	f.Free(p1)
	f.Free(p2)

	// LIFO: p2 should come back first.
	got := f.Alloc()
	if got != p2 {
		t.Fatalf("Alloc after freeing p1,p2 returned %p, want %p (p2)", got, p2)
	}
	got2 := f.Alloc()
	if got2 != p1 {
		t.Fatalf("Alloc after that returned %p, want %p (p1)", got2, p1)
	}
}

func TestAllocZeroesRecycledBlocks(t *testing.T) {
	f := New[block](2, 64)
	p := f.Alloc()
	p.a, p.b = 7, 9
	f.Free(p)
	p2 := f.Alloc()
	if p2.a != 0 || p2.b != 0 {
		t.Fatalf("recycled block not zeroed: %+v", *p2)
	}
}

func TestPageGrowthDoublesUpToCap(t *testing.T) {
	f := New[block](2, 8)
	for i := 0; i < 2+4+8+8+8; i++ {
		f.Alloc()
	}
	var sizes []int
	for _, pg := range f.pages {
		sizes = append(sizes, len(pg))
	}
	want := []int{2, 4, 8, 8, 8}
	if len(sizes) != len(want) {
		t.Fatalf("page sizes = %v, want %v", sizes, want)
	}
	for i := range want {
		if sizes[i] != want[i] {
			t.Fatalf("page sizes = %v, want %v", sizes, want)
		}
	}
}

func TestShutdownResetsState(t *testing.T) {
	f := New[block](4, 16)
	for i := 0; i < 10; i++ {
		f.Alloc()
	}
	f.Shutdown()
	if f.Live() != 0 {
		t.Fatalf("Live() after Shutdown = %d, want 0", f.Live())
	}
	if len(f.pages) != 0 {
		t.Fatalf("pages not released after Shutdown")
	}
	// Fastbin is reusable after Shutdown.
	p := f.Alloc()
	p.a = 1
	if f.Live() != 1 {
		t.Fatalf("Live() after post-Shutdown Alloc = %d, want 1", f.Live())
	}
}
