// Package value implements the tagged scalar that every column, index, and
// query boundary in coraldb speaks: a 64-bit signed integer, a 64-bit float,
// a UTF-8 string, or a raw byte buffer.
package value

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Kind discriminates the four scalar variants a Value can hold.
type Kind uint8

const (
	Int Kind = iota
	Float
	String
	Bytes
)

func (k Kind) String() string {
	switch k {
	case Int:
		return "int"
	case Float:
		return "float"
	case String:
		return "string"
	case Bytes:
		return "bytes"
	default:
		return "unknown"
	}
}

// Value is a discriminated union over {Int64, Float64, String, Bytes}.
// Only the field matching Kind is meaningful.
type Value struct {
	Kind Kind
	I    int64
	F    float64
	S    string
	B    []byte
}

func Int64(i int64) Value    { return Value{Kind: Int, I: i} }
func Float64(f float64) Value { return Value{Kind: Float, F: f} }
func Str(s string) Value     { return Value{Kind: String, S: s} }
func Raw(b []byte) Value     { return Value{Kind: Bytes, B: b} }

// Equal reports exact equality per variant. Floats compare with Go's native
// == (IEEE-754: -0.0 == +0.0, NaN != NaN), which is exactly the bit-exact
// rule the value model calls for.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case Int:
		return v.I == other.I
	case Float:
		return v.F == other.F
	case String:
		return v.S == other.S
	case Bytes:
		return string(v.B) == string(other.B)
	default:
		return false
	}
}

// Less implements the total order used by SortedIndex: defined only for Int
// and Float, with NaN sorting greatest among floats. Comparing values of
// mismatched kinds is a programmer error and always reports false.
func Less(a, b Value) bool {
	switch a.Kind {
	case Int:
		if b.Kind != Int {
			return false
		}
		return a.I < b.I
	case Float:
		if b.Kind != Float {
			return false
		}
		return lessTotalOrder(a.F, b.F)
	default:
		return false
	}
}

// lessTotalOrder implements IEEE-754 total order for binary search and range
// scans: ordinary numeric comparison, with NaN defined to sort greatest.
func lessTotalOrder(a, b float64) bool {
	aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)
	switch {
	case aNaN && bNaN:
		return false
	case aNaN:
		return false
	case bNaN:
		return true
	default:
		return a < b
	}
}

// IsNaN reports whether v is a float NaN. Range queries over NaN are
// defined to be empty.
func (v Value) IsNaN() bool {
	return v.Kind == Float && math.IsNaN(v.F)
}

// CanonicalKey returns the byte encoding used as the BloomIndex key (and,
// for int/string/bytes, the HashIndex key) for v. Float columns never carry
// a HashIndex — near-equality lookups are deliberately unsupported, see
// design notes — but they do carry a Bloom gate per the composition table,
// so Float still needs a stable canonical encoding here via its raw bit
// pattern (math.Float64bits), not a HashIndex-targeted one.
func (v Value) CanonicalKey() []byte {
	switch v.Kind {
	case Int:
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], uint64(v.I))
		return buf[:]
	case Float:
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(v.F))
		return buf[:]
	case String:
		return []byte(v.S)
	case Bytes:
		return v.B
	default:
		panic(fmt.Sprintf("value: CanonicalKey unsupported for kind %s", v.Kind))
	}
}

// TypeOf names the column type a Value belongs to, for error messages.
func (v Value) TypeOf() string { return v.Kind.String() }
