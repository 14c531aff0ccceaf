package index

import "testing"

func TestBloomNoFalseNegatives(t *testing.T) {
	b := NewBloom(1000, 0.01)
	keys := make([][]byte, 0, 500)
	for i := 0; i < 500; i++ {
		k := []byte{byte(i), byte(i >> 8), 'x'}
		keys = append(keys, k)
		b.Add(k)
	}
	for _, k := range keys {
		if !b.Contains(k) {
			t.Fatalf("Contains(%v) = false, want true for an added key", k)
		}
	}
}

func TestBloomAbsentKeyUsuallyFalse(t *testing.T) {
	b := NewBloom(100, 0.01)
	b.Add([]byte("present"))
	if b.Contains([]byte("definitely-not-present-xyz")) {
		// False positives are allowed by design; this key was chosen to be
		// unlikely to collide at this capacity/rate, not guaranteed.
		t.Skip("bloom false positive on this key; not a correctness failure")
	}
}

func TestBloomDegenerateCapacity(t *testing.T) {
	b := NewBloom(0, 0.01)
	b.Add([]byte("x"))
	if !b.Contains([]byte("x")) {
		t.Error("Contains after Add on zero-capacity filter = false, want true")
	}
}

func TestBloomDefaultsOnInvalidRate(t *testing.T) {
	b := NewBloom(100, 1.5)
	if b.m == 0 {
		t.Error("NewBloom with invalid rate produced zero-size filter")
	}
}
