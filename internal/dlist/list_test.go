package dlist

import "testing"

type node struct {
	v int
	l Node
}

func TestEmptyHeadIsDetached(t *testing.T) {
	var head Node
	head.Init()
	if !head.IsDetached() {
		t.Fatal("freshly initialized head should report detached/empty")
	}
	if First(&head) != nil {
		t.Fatal("First on empty list should be nil")
	}
}

func TestInsertAfterOrdersForward(t *testing.T) {
	var head Node
	head.Init()
	var a, b, c node
	a.l.InsertAfter(&head)
	b.l.InsertAfter(&a.l)
	c.l.InsertAfter(&b.l)

	var order []*Node
	for n := First(&head); n != nil; n = n.Next(&head) {
		order = append(order, n)
	}
	want := []*Node{&a.l, &b.l, &c.l}
	if len(order) != len(want) {
		t.Fatalf("got %d nodes, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order[%d] = %p, want %p", i, order[i], want[i])
		}
	}
}

func TestDetachRemovesExactlyOneNode(t *testing.T) {
	var head Node
	head.Init()
	var a, b, c node
	a.l.InsertAfter(&head)
	b.l.InsertAfter(&a.l)
	c.l.InsertAfter(&b.l)

	b.l.Detach()
	if !b.l.IsDetached() {
		t.Fatal("Detach should leave the node self-linked/detached")
	}

	var order []*Node
	for n := First(&head); n != nil; n = n.Next(&head) {
		order = append(order, n)
	}
	want := []*Node{&a.l, &c.l}
	if len(order) != len(want) {
		t.Fatalf("got %d nodes, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order[%d] = %p, want %p", i, order[i], want[i])
		}
	}
}

func TestDetachAllLeavesHeadEmpty(t *testing.T) {
	var head Node
	head.Init()
	var a, b node
	a.l.InsertAfter(&head)
	b.l.InsertAfter(&a.l)

	a.l.Detach()
	b.l.Detach()

	if !head.IsDetached() {
		t.Fatal("head should be self-linked/empty after detaching every node")
	}
}

func TestInsertBefore(t *testing.T) {
	var head Node
	head.Init()
	var a, b node
	a.l.InsertAfter(&head)
	b.l.InsertBefore(&a.l)

	order := []*Node{First(&head)}
	order = append(order, order[0].Next(&head))
	if order[0] != &b.l || order[1] != &a.l {
		t.Fatalf("InsertBefore produced wrong order")
	}
}
