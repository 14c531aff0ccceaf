package index

import (
	"math"

	"github.com/cespare/xxhash/v2"
)

// DefaultFalsePositiveRate is used when a caller does not specify one.
const DefaultFalsePositiveRate = 0.01

// Bloom is a fixed-size probabilistic membership filter. It is built once
// per column at table-creation time with a capacity hint and never shrinks;
// removal is unsupported (callers rebuild on compaction, out of scope here).
// False positives are possible by design; false negatives for any value
// that was ever Added are not.
type Bloom struct {
	bits []uint64
	m    uint64 // number of bits
	k    uint64 // number of hash rounds
}

// NewBloom derives the bit-array size m and hash count k from the target
// capacity n and false-positive rate p, following the standard formulas
// m = ceil(-n*ln(p)/ln(2)^2), k = ceil((m/n)*ln(2)).
func NewBloom(capacity uint64, falsePositiveRate float64) *Bloom {
	if capacity == 0 {
		capacity = 1
	}
	if falsePositiveRate <= 0 || falsePositiveRate >= 1 {
		falsePositiveRate = DefaultFalsePositiveRate
	}

	m := uint64(math.Ceil(-float64(capacity) * math.Log(falsePositiveRate) / (math.Ln2 * math.Ln2)))
	if m == 0 {
		m = 1
	}
	k := uint64(math.Ceil((float64(m) / float64(capacity)) * math.Ln2))
	if k == 0 {
		k = 1
	}

	words := (m + 63) / 64
	return &Bloom{bits: make([]uint64, words), m: m, k: k}
}

// seeds derives two independent 64-bit hashes for key: a plain xxhash
// digest and the same digest salted with a fixed domain separator. The pair
// feeds Kirsch-Mitzenmacher double hashing to synthesize k positions from
// two hash evaluations instead of k.
func seeds(key []byte) (h1, h2 uint64) {
	var d1 xxhash.Digest
	d1.Write(key)
	h1 = d1.Sum64()

	var d2 xxhash.Digest
	d2.WriteString("coraldb-bloom")
	d2.Write(key)
	h2 = d2.Sum64()

	return h1, h2
}

func (b *Bloom) positions(key []byte) []uint64 {
	h1, h2 := seeds(key)
	positions := make([]uint64, b.k)
	for i := uint64(0); i < b.k; i++ {
		positions[i] = (h1 + i*h2) % b.m
	}
	return positions
}

// Add marks key as present.
func (b *Bloom) Add(key []byte) {
	for _, pos := range b.positions(key) {
		b.bits[pos/64] |= 1 << (pos % 64)
	}
}

// Contains reports whether key may be present. A false return is
// authoritative; a true return may be a false positive.
func (b *Bloom) Contains(key []byte) bool {
	for _, pos := range b.positions(key) {
		if b.bits[pos/64]&(1<<(pos%64)) == 0 {
			return false
		}
	}
	return true
}

// Bits returns the size of the underlying bit array, m, for stats reporting.
func (b *Bloom) Bits() int {
	return int(b.m)
}
