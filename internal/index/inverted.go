package index

import (
	"strings"
	"unicode"

	"github.com/RoaringBitmap/roaring/v2/roaring64"
)

// Tokenize lowercases s, splits on Unicode non-alphanumeric boundaries,
// drops empty tokens, and deduplicates within the result — the tokenization
// rule shared by InvertedIndex insertion and full-text/contains queries.
func Tokenize(s string) []string {
	lower := strings.ToLower(s)
	fields := strings.FieldsFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	seen := make(map[string]struct{}, len(fields))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if f == "" {
			continue
		}
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		tokens = append(tokens, f)
	}
	return tokens
}

// Inverted maps tokens to the posting list of rows whose stored string
// tokenizes to include them.
type Inverted struct {
	postings map[string]*roaring64.Bitmap
}

func NewInverted() *Inverted {
	return &Inverted{postings: make(map[string]*roaring64.Bitmap)}
}

// Insert tokenizes text and adds row to every resulting token's posting.
func (idx *Inverted) Insert(row uint64, text string) {
	for _, tok := range Tokenize(text) {
		b, ok := idx.postings[tok]
		if !ok {
			b = roaring64.New()
			idx.postings[tok] = b
		}
		b.Add(row)
	}
}

// Remove tokenizes text and removes row from every resulting token's
// posting, discarding postings that empty out.
func (idx *Inverted) Remove(row uint64, text string) {
	for _, tok := range Tokenize(text) {
		b, ok := idx.postings[tok]
		if !ok {
			continue
		}
		b.Remove(row)
		if b.IsEmpty() {
			delete(idx.postings, tok)
		}
	}
}

// QueryTerm returns the verbatim posting list for a single already-lowercase
// token, or nil if the token has no postings.
func (idx *Inverted) QueryTerm(token string) []uint64 {
	b, ok := idx.postings[token]
	if !ok {
		return nil
	}
	return b.ToArray()
}

// Len reports the number of distinct tokens with a non-empty posting list.
func (idx *Inverted) Len() int { return len(idx.postings) }

// QueryAll intersects the posting lists of every token (AND semantics). An
// empty token list, or any token with no postings, yields an empty result.
func (idx *Inverted) QueryAll(tokens []string) []uint64 {
	if len(tokens) == 0 {
		return nil
	}

	var acc *roaring64.Bitmap
	for _, tok := range tokens {
		b, ok := idx.postings[tok]
		if !ok {
			return nil
		}
		if acc == nil {
			acc = b.Clone()
		} else {
			acc.And(b)
		}
		if acc.IsEmpty() {
			return nil
		}
	}
	return acc.ToArray()
}
