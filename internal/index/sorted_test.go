package index

import (
	"math"
	"testing"

	"github.com/coraldb/coraldb/internal/value"
)

func TestSortedRangeInts(t *testing.T) {
	s := NewSorted(0)
	for _, v := range []int64{5, 1, 3, 9, 7} {
		s.Insert(value.Int64(v), uint64(v))
	}

	rowsEqual(t, s.Range(value.Int64(3), value.Int64(7)), 3, 5, 7)
	rowsEqual(t, s.Range(value.Int64(0), value.Int64(100)), 1, 3, 5, 7, 9)
	if got := s.Range(value.Int64(100), value.Int64(200)); got != nil {
		t.Errorf("Range outside data = %v, want nil", got)
	}
}

func TestSortedRangeFloatsNaN(t *testing.T) {
	s := NewSorted(0)
	s.Insert(value.Float64(1.5), 1)
	s.Insert(value.Float64(math.NaN()), 2)
	s.Insert(value.Float64(2.5), 3)

	rowsEqual(t, s.Range(value.Float64(1.0), value.Float64(3.0)), 1, 3)

	if got := s.Range(value.Float64(math.NaN()), value.Float64(3.0)); got != nil {
		t.Errorf("Range with NaN bound = %v, want nil", got)
	}
}

func TestSortedRemove(t *testing.T) {
	s := NewSorted(0)
	s.Insert(value.Int64(1), 10)
	s.Insert(value.Int64(1), 20)

	s.Remove(value.Int64(1), 10)
	rowsEqual(t, s.Range(value.Int64(0), value.Int64(5)), 20)

	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestSortedDuplicateValuesOrderedByRow(t *testing.T) {
	s := NewSorted(0)
	s.Insert(value.Int64(5), 30)
	s.Insert(value.Int64(5), 10)
	s.Insert(value.Int64(5), 20)

	got := s.Range(value.Int64(5), value.Int64(5))
	want := []uint64{10, 20, 30}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %d, want %d (order within equal values must be by row id)", i, got[i], want[i])
		}
	}
}
