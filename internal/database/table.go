package database

import (
	"sort"
	"sync"

	"github.com/coraldb/coraldb/internal/index"
	"github.com/coraldb/coraldb/internal/value"
)

// Row is a materialized result: a live row's id paired with its values in
// schema column order.
type Row struct {
	ID     uint64
	Values []value.Value
}

// ColumnStats reports the size of whichever indexes a column carries.
type ColumnStats struct {
	Name          string `json:"name"`
	HashKeys      int    `json:"hash_keys"`
	BloomBits     int    `json:"bloom_bits"`
	TrieNodes     int    `json:"trie_nodes"`
	InvertedTerms int    `json:"inverted_terms"`
	SortedEntries int    `json:"sorted_entries"`
}

// Stats summarizes a table's row counts and index footprint.
type Stats struct {
	RowCount  int           `json:"row_count"`
	LiveCount int           `json:"live_count"`
	Columns   []ColumnStats `json:"columns"`
}

// columnIndexes holds whichever of the five index variants apply to a
// column's type, per the §3 composition table. Unused fields stay nil.
type columnIndexes struct {
	hash     *index.Hash
	bloom    *index.Bloom
	trie     *index.Trie
	inverted *index.Inverted
	sorted   *index.Sorted
}

func newColumnIndexes(t ColumnType, capacityHint int) *columnIndexes {
	ci := &columnIndexes{}
	switch t {
	case TypeInt:
		ci.hash = index.NewHash(capacityHint)
		ci.bloom = index.NewBloom(uint64(capacityHint), index.DefaultFalsePositiveRate)
		ci.sorted = index.NewSorted(capacityHint)
	case TypeFloat:
		ci.bloom = index.NewBloom(uint64(capacityHint), index.DefaultFalsePositiveRate)
		ci.sorted = index.NewSorted(capacityHint)
	case TypeString:
		ci.hash = index.NewHash(capacityHint)
		ci.bloom = index.NewBloom(uint64(capacityHint), index.DefaultFalsePositiveRate)
		ci.trie = index.NewTrie()
		ci.inverted = index.NewInverted()
	case TypeBytes:
		ci.hash = index.NewHash(capacityHint)
		ci.bloom = index.NewBloom(uint64(capacityHint), index.DefaultFalsePositiveRate)
	}
	return ci
}

func (ci *columnIndexes) insert(v value.Value, row uint64) {
	if ci.hash != nil {
		ci.hash.Insert(v.CanonicalKey(), row)
	}
	if ci.bloom != nil {
		ci.bloom.Add(v.CanonicalKey())
	}
	if ci.trie != nil {
		ci.trie.Insert(v.S, row)
	}
	if ci.inverted != nil {
		ci.inverted.Insert(row, v.S)
	}
	if ci.sorted != nil {
		ci.sorted.Insert(v, row)
	}
}

// remove undoes insert for every index except Bloom, which never removes
// (§4.3: rebuild on compaction, out of scope).
func (ci *columnIndexes) remove(v value.Value, row uint64) {
	if ci.hash != nil {
		ci.hash.Remove(v.CanonicalKey(), row)
	}
	if ci.trie != nil {
		ci.trie.Remove(v.S, row)
	}
	if ci.inverted != nil {
		ci.inverted.Remove(row, v.S)
	}
	if ci.sorted != nil {
		ci.sorted.Remove(v, row)
	}
}

func (ci *columnIndexes) stats(name string) ColumnStats {
	s := ColumnStats{Name: name}
	if ci.hash != nil {
		s.HashKeys = ci.hash.Len()
	}
	if ci.bloom != nil {
		s.BloomBits = ci.bloom.Bits()
	}
	if ci.trie != nil {
		s.TrieNodes = ci.trie.Size()
	}
	if ci.inverted != nil {
		s.InvertedTerms = ci.inverted.Len()
	}
	if ci.sorted != nil {
		s.SortedEntries = ci.sorted.Len()
	}
	return s
}

// Table composes schema, per-column storage, and per-column indexes behind
// a single read/write lock, per §4.7 and §5's locking discipline.
type Table struct {
	mu sync.RWMutex

	name    string
	schema  TableSchema
	columns []*column
	indexes []*columnIndexes

	rowToSlot map[uint64]int
	slotLive  []bool
	nextID    uint64
}

// NewTable builds storage and the per-type index set from schema. Fails
// with DuplicateColumn if two columns share a name.
func NewTable(name string, schema TableSchema, capacityHint int) (*Table, *Error) {
	if err := schema.validate(); err != nil {
		return nil, err
	}

	t := &Table{
		name:      name,
		schema:    schema,
		columns:   make([]*column, len(schema.Columns)),
		indexes:   make([]*columnIndexes, len(schema.Columns)),
		rowToSlot: make(map[uint64]int, capacityHint),
		nextID:    1,
	}
	for i, cs := range schema.Columns {
		t.columns[i] = newColumn(cs, capacityHint)
		t.indexes[i] = newColumnIndexes(cs.Type, capacityHint)
	}
	return t, nil
}

// Insert allocates consecutive row ids for rows, appending to storage and
// indexes. Validation runs over every row before anything mutates, so a
// batch fails atomically on its first type or arity error.
func (t *Table) Insert(rows [][]value.Value) ([]uint64, *Error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, row := range rows {
		if len(row) != len(t.schema.Columns) {
			return nil, errArity(len(t.schema.Columns), len(row))
		}
		for i, v := range row {
			if v.Kind != t.schema.Columns[i].Type.kind() {
				return nil, errTypeMismatch(t.schema.Columns[i].Name, t.schema.Columns[i].Type.Canonical(), v.Kind.String())
			}
		}
	}

	ids := make([]uint64, 0, len(rows))
	for _, row := range rows {
		id := t.nextID
		t.nextID++

		var slot int
		for i, v := range row {
			s, err := t.columns[i].append(v)
			if err != nil {
				// Unreachable after the pre-validation pass above, but
				// checkType stays authoritative rather than duplicated.
				return nil, err
			}
			slot = s
			t.indexes[i].insert(v, id)
		}
		t.rowToSlot[id] = slot
		t.slotLive = append(t.slotLive, true)
		ids = append(ids, id)
	}
	return ids, nil
}

// Get materializes rows for the requested ids, in the order given. Unknown
// or dead ids are omitted, not errors.
func (t *Table) Get(ids []uint64) []Row {
	t.mu.RLock()
	defer t.mu.RUnlock()

	rows := make([]Row, 0, len(ids))
	for _, id := range ids {
		if row, ok := t.materializeLocked(id); ok {
			rows = append(rows, row)
		}
	}
	return rows
}

func (t *Table) materializeLocked(id uint64) (Row, bool) {
	slot, ok := t.rowToSlot[id]
	if !ok || !t.slotLive[slot] {
		return Row{}, false
	}
	values := make([]value.Value, len(t.columns))
	for i, c := range t.columns {
		values[i] = c.get(slot)
	}
	return Row{ID: id, Values: values}, true
}

// Update replaces a live row's values in its existing slot. Per column, a
// changed value is removed from every applicable index before the new
// value is inserted — remove-all-old, then insert-all-new, fixed order.
func (t *Table) Update(id uint64, values []value.Value) *Error {
	t.mu.Lock()
	defer t.mu.Unlock()

	slot, ok := t.rowToSlot[id]
	if !ok || !t.slotLive[slot] {
		return errNotFound(id)
	}
	if len(values) != len(t.schema.Columns) {
		return errArity(len(t.schema.Columns), len(values))
	}
	for i, v := range values {
		if v.Kind != t.schema.Columns[i].Type.kind() {
			return errTypeMismatch(t.schema.Columns[i].Name, t.schema.Columns[i].Type.Canonical(), v.Kind.String())
		}
	}

	old := make([]value.Value, len(t.columns))
	for i, c := range t.columns {
		old[i] = c.get(slot)
	}

	for i, v := range values {
		if old[i].Equal(v) {
			continue
		}
		t.indexes[i].remove(old[i], id)
	}
	for i, v := range values {
		if old[i].Equal(v) {
			continue
		}
		t.indexes[i].insert(v, id)
		if err := t.columns[i].set(slot, v); err != nil {
			return err
		}
	}
	return nil
}

// Delete marks each id dead and removes its contributions from every
// index. Unknown or already-dead ids are silently skipped. Returns the
// count actually transitioned to dead.
func (t *Table) Delete(ids []uint64) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	deleted := 0
	for _, id := range ids {
		slot, ok := t.rowToSlot[id]
		if !ok || !t.slotLive[slot] {
			continue
		}
		for i, c := range t.columns {
			t.indexes[i].remove(c.get(slot), id)
			c.clear(slot)
		}
		t.slotLive[slot] = false
		deleted++
	}
	return deleted
}

// Stats reports row counts and per-column index sizes.
func (t *Table) Stats() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s := Stats{
		RowCount: len(t.slotLive),
		Columns:  make([]ColumnStats, len(t.columns)),
	}
	for _, live := range t.slotLive {
		if live {
			s.LiveCount++
		}
	}
	for i, ci := range t.indexes {
		s.Columns[i] = ci.stats(t.schema.Columns[i].Name)
	}
	return s
}

// Schema returns the table's column schema.
func (t *Table) Schema() TableSchema {
	return t.schema
}

// Name returns the table's registered name.
func (t *Table) Name() string {
	return t.name
}

func (t *Table) columnIndex(name string) (int, *Error) {
	i := t.schema.indexOf(name)
	if i < 0 {
		return 0, errUnknownColumn(t.name, name)
	}
	return i, nil
}

// ExactLookup answers an exact-match query: Bloom gate, then HashIndex
// lookup, per §4.9's exact plan.
func (t *Table) ExactLookup(column string, v value.Value) ([]uint64, *Error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	i, err := t.columnIndex(column)
	if err != nil {
		return nil, err
	}
	ci := t.indexes[i]
	if ci.hash == nil {
		return nil, errUnsupportedQuery(column, "exact")
	}
	if v.Kind != t.schema.Columns[i].Type.kind() {
		return nil, errTypeMismatch(column, t.schema.Columns[i].Type.Canonical(), v.Kind.String())
	}
	if ci.bloom != nil && !ci.bloom.Contains(v.CanonicalKey()) {
		return nil, nil
	}
	return ci.hash.Lookup(v.CanonicalKey()), nil
}

// PrefixLookup answers a prefix query via TrieIndex DFS, per §4.9.
func (t *Table) PrefixLookup(column, prefix string) ([]uint64, *Error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	i, err := t.columnIndex(column)
	if err != nil {
		return nil, err
	}
	ci := t.indexes[i]
	if ci.trie == nil {
		return nil, errUnsupportedQuery(column, "prefix")
	}
	return ci.trie.Prefix(prefix), nil
}

// FullTextQuery tokenizes query and AND-merges InvertedIndex postings, per
// §4.9's fulltext plan.
func (t *Table) FullTextQuery(column, query string) ([]uint64, *Error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	i, err := t.columnIndex(column)
	if err != nil {
		return nil, err
	}
	ci := t.indexes[i]
	if ci.inverted == nil {
		return nil, errUnsupportedQuery(column, "fulltext")
	}
	return ci.inverted.QueryAll(index.Tokenize(query)), nil
}

// ContainsQuery implements the best-effort substring plan of §4.9: if the
// substring tokenizes to exactly one token, it is a single posting-list
// lookup; otherwise the engine falls back to AND-merge intersection, per
// §4.5's note on contains semantics.
func (t *Table) ContainsQuery(column, substring string) ([]uint64, *Error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	i, err := t.columnIndex(column)
	if err != nil {
		return nil, err
	}
	ci := t.indexes[i]
	if ci.inverted == nil {
		return nil, errUnsupportedQuery(column, "contains")
	}
	tokens := index.Tokenize(substring)
	if len(tokens) == 1 {
		return ci.inverted.QueryTerm(tokens[0]), nil
	}
	return ci.inverted.QueryAll(tokens), nil
}

// RangeQuery answers an inclusive range query via SortedIndex binary scan,
// per §4.9's range plan.
func (t *Table) RangeQuery(column string, min, max value.Value) ([]uint64, *Error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	i, err := t.columnIndex(column)
	if err != nil {
		return nil, err
	}
	ci := t.indexes[i]
	if ci.sorted == nil {
		return nil, errUnsupportedQuery(column, "range")
	}
	want := t.schema.Columns[i].Type.kind()
	if min.Kind != want || max.Kind != want {
		return nil, errTypeMismatch(column, t.schema.Columns[i].Type.Canonical(), min.Kind.String())
	}
	return ci.sorted.Range(min, max), nil
}

// Materialize assembles rows for ids in ascending row_id order, dropping
// unknown or dead ids, per §4.9's stable-ordering guarantee.
func (t *Table) Materialize(ids []uint64) []Row {
	sorted := append([]uint64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	t.mu.RLock()
	defer t.mu.RUnlock()

	rows := make([]Row, 0, len(sorted))
	for _, id := range sorted {
		if row, ok := t.materializeLocked(id); ok {
			rows = append(rows, row)
		}
	}
	return rows
}
