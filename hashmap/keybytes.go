package hashmap

import (
	"cmp"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"
)

// Hasher computes a hash for a key of type K. It need not be
// collision-resistant; the per-bucket AVL tree bounds worst-case lookup cost
// to O(log n) regardless.
type Hasher[K any] func(K) uint64

// appendKeyBytes appends the byte encoding of k to buf, covering every type
// in cmp.Ordered's type set: the integer kinds and uintptr via
// little-endian encoding.AppendUint64/32/16, floats via their IEEE bit
// pattern, and strings via their own bytes. The switch is resolved on every
// call from the dynamic type of k, without reflection.
func appendKeyBytes(buf []byte, k any) []byte {
	switch v := k.(type) {
	case int:
		return binary.LittleEndian.AppendUint64(buf, uint64(v))
	case int8:
		return append(buf, byte(v))
	case int16:
		return binary.LittleEndian.AppendUint16(buf, uint16(v))
	case int32:
		return binary.LittleEndian.AppendUint32(buf, uint32(v))
	case int64:
		return binary.LittleEndian.AppendUint64(buf, uint64(v))
	case uint:
		return binary.LittleEndian.AppendUint64(buf, uint64(v))
	case uint8:
		return append(buf, v)
	case uint16:
		return binary.LittleEndian.AppendUint16(buf, v)
	case uint32:
		return binary.LittleEndian.AppendUint32(buf, v)
	case uint64:
		return binary.LittleEndian.AppendUint64(buf, v)
	case uintptr:
		return binary.LittleEndian.AppendUint64(buf, uint64(v))
	case float32:
		return binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
	case float64:
		return binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
	case string:
		return append(buf, v...)
	default:
		panic(fmt.Sprintf("hashmap: no default hasher for key type %T; supply WithHasher", k))
	}
}

// defaultHasher returns the FNV-1a-based Hasher used when a Map is built
// without WithHasher. It is stdlib-only by design (§6: "the default is a
// fast non-cryptographic hash (FNV-style)"); WithHasher is the escape hatch
// for key types outside cmp.Ordered's built-in set or for a stronger hash.
func defaultHasher[K cmp.Ordered]() Hasher[K] {
	return func(k K) uint64 {
		h := fnv.New64a()
		var buf [8]byte
		h.Write(appendKeyBytes(buf[:0], any(k)))
		return h.Sum64()
	}
}
