// Package index implements the five index variants coraldb composes per
// column type: Hash, Bloom, Trie, Inverted, and Sorted. None of the types in
// this package lock internally — concurrency safety is the caller's job
// (coraldb's table write lock serializes every mutation, per the design).
package index

import "github.com/RoaringBitmap/roaring/v2/roaring64"

// Hash answers exact-match lookups from a canonical value key to the set of
// row ids holding that value. Collisions within a bucket are the normal
// case, not an error: every row sharing a value lives in the same bitmap.
type Hash struct {
	buckets map[string]*roaring64.Bitmap
}

// NewHash creates an empty hash index. capacityHint sizes the initial
// bucket map to avoid rehashing during bulk loads.
func NewHash(capacityHint int) *Hash {
	if capacityHint < 0 {
		capacityHint = 0
	}
	return &Hash{buckets: make(map[string]*roaring64.Bitmap, capacityHint)}
}

// Insert adds row to the bucket for key.
func (h *Hash) Insert(key []byte, row uint64) {
	k := string(key)
	b, ok := h.buckets[k]
	if !ok {
		b = roaring64.New()
		h.buckets[k] = b
	}
	b.Add(row)
}

// Remove drops row from the bucket for key, deleting the bucket entirely
// once it empties.
func (h *Hash) Remove(key []byte, row uint64) {
	k := string(key)
	b, ok := h.buckets[k]
	if !ok {
		return
	}
	b.Remove(row)
	if b.IsEmpty() {
		delete(h.buckets, k)
	}
}

// Lookup returns the row ids stored under key, or nil if key is absent.
func (h *Hash) Lookup(key []byte) []uint64 {
	b, ok := h.buckets[string(key)]
	if !ok {
		return nil
	}
	return b.ToArray()
}

// Len reports the number of distinct keys currently indexed.
func (h *Hash) Len() int { return len(h.buckets) }
