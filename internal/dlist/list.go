// Package dlist implements an intrusive, circular, sentinel-headed doubly
// linked list. A [Node] carries no payload; it is meant to be embedded in
// a caller-defined record. HashMap uses exactly one such list to thread
// its non-empty buckets, giving iteration a cost proportional to occupied
// buckets rather than to bucket-array capacity.
package dlist

// Node is one link in an intrusive doubly linked list.
type Node struct {
	prev, next *Node
}

// Init turns n into a self-linked, empty sentinel (or a detached node: the
// two states are indistinguishable, which is exactly the point — a
// detached node and an empty list head look the same).
func (n *Node) Init() {
	n.prev = n
	n.next = n
}

// IsDetached reports whether n is not currently linked into any list
// other than itself (equivalently, whether n is an empty sentinel).
func (n *Node) IsDetached() bool {
	return n.next == n
}

// InsertAfter links n immediately after at.
func (n *Node) InsertAfter(at *Node) {
	n.prev = at
	n.next = at.next
	at.next.prev = n
	at.next = n
}

// InsertBefore links n immediately before at.
func (n *Node) InsertBefore(at *Node) {
	n.next = at
	n.prev = at.prev
	at.prev.next = n
	at.prev = n
}

// Detach removes n from whatever list it is linked into and resets it to
// a self-linked (detached) state. Detaching an already-detached node is a
// no-op.
func (n *Node) Detach() {
	n.prev.next = n.next
	n.next.prev = n.prev
	n.Init()
}

// Next returns the next node in the list, or nil if it is the sentinel
// head (i.e. iteration has completed a full circle back to head).
func (n *Node) Next(head *Node) *Node {
	if n.next == head {
		return nil
	}
	return n.next
}

// Prev returns the previous node in the list, or nil if it is the
// sentinel head.
func (n *Node) Prev(head *Node) *Node {
	if n.prev == head {
		return nil
	}
	return n.prev
}

// First returns the first node after head, or nil if the list is empty.
func First(head *Node) *Node {
	if head.next == head {
		return nil
	}
	return head.next
}
