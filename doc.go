// Package ixmap is the module root for two in-memory associative
// containers built on shared intrusive machinery:
//
//   - [github.com/jba/ixmap/ordmap] — an ordered map backed by an
//     intrusive AVL tree.
//   - [github.com/jba/ixmap/hashmap] — an unordered map backed by a
//     power-of-two bucket array of intrusive AVL trees.
//
// Both are built on internal/avltree (the shared AVL node), internal/fastbin
// (the entry allocator) and internal/dlist (HashMap's bucket-list
// threading). This package itself exports nothing; import ordmap or
// hashmap directly.
package ixmap
