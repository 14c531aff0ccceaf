package index

import (
	"sort"

	"github.com/coraldb/coraldb/internal/value"
)

// sortedEntry pairs a numeric value with the row id that holds it.
type sortedEntry struct {
	val value.Value
	row uint64
}

// entryLess orders by value first (per value.Less's total order, NaN
// greatest) and then by row id, giving SortedIndex its stable
// (value, row_id) order.
func entryLess(a, b sortedEntry) bool {
	if value.Less(a.val, b.val) {
		return true
	}
	if value.Less(b.val, a.val) {
		return false
	}
	return a.row < b.row
}

// Sorted is a contiguous, ascending-ordered sequence of (value, row_id)
// pairs for a single int or float column. Insert is a binary-searched
// insertion point plus an O(n) shift; range scans binary-search the lower
// bound and walk forward until the upper bound is exceeded. This trades
// write cost for read-time cache locality, matching the design's
// read-heavy target.
type Sorted struct {
	entries []sortedEntry
}

func NewSorted(capacityHint int) *Sorted {
	if capacityHint < 0 {
		capacityHint = 0
	}
	return &Sorted{entries: make([]sortedEntry, 0, capacityHint)}
}

// Insert places (v, row) at its sorted position.
func (s *Sorted) Insert(v value.Value, row uint64) {
	entry := sortedEntry{val: v, row: row}
	i := sort.Search(len(s.entries), func(i int) bool {
		return !entryLess(s.entries[i], entry)
	})
	s.entries = append(s.entries, sortedEntry{})
	copy(s.entries[i+1:], s.entries[i:])
	s.entries[i] = entry
}

// Remove deletes the exact (v, row) pair, if present.
func (s *Sorted) Remove(v value.Value, row uint64) {
	target := sortedEntry{val: v, row: row}
	i := sort.Search(len(s.entries), func(i int) bool {
		return !entryLess(s.entries[i], target)
	})
	if i >= len(s.entries) {
		return
	}
	if !s.entries[i].val.Equal(v) || s.entries[i].row != row {
		return
	}
	s.entries = append(s.entries[:i], s.entries[i+1:]...)
}

// Range returns the row ids whose value v satisfies min <= v <= max,
// in ascending (value, row_id) order. A NaN bound always yields an empty
// result, per the spec's definition that queries over NaN are empty.
func (s *Sorted) Range(min, max value.Value) []uint64 {
	if min.IsNaN() || max.IsNaN() {
		return nil
	}

	lo := sort.Search(len(s.entries), func(i int) bool {
		return !value.Less(s.entries[i].val, min)
	})

	var result []uint64
	for i := lo; i < len(s.entries); i++ {
		if value.Less(max, s.entries[i].val) {
			break
		}
		result = append(result, s.entries[i].row)
	}
	return result
}

// Len reports the number of (value, row_id) pairs currently indexed.
func (s *Sorted) Len() int { return len(s.entries) }
