package database

import (
	"testing"

	"github.com/coraldb/coraldb/internal/value"
)

func usersSchema() TableSchema {
	return TableSchema{Columns: []ColumnSchema{
		{Name: "id", Type: TypeInt},
		{Name: "name", Type: TypeString},
		{Name: "email", Type: TypeString},
	}}
}

func mustTable(t *testing.T, schema TableSchema) *Table {
	t.Helper()
	tbl, err := NewTable("t", schema, 0)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	return tbl
}

func TestTableInsertGetRoundTrip(t *testing.T) {
	tbl := mustTable(t, usersSchema())
	ids, err := tbl.Insert([][]value.Value{
		{value.Int64(1), value.Str("alice"), value.Str("a@x")},
		{value.Int64(2), value.Str("bob"), value.Str("b@x")},
	})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if len(ids) != 2 || ids[0] == ids[1] {
		t.Fatalf("expected 2 distinct ids, got %v", ids)
	}

	rows := tbl.Get(ids)
	if len(rows) != 2 {
		t.Fatalf("Get returned %d rows, want 2", len(rows))
	}
	if rows[0].Values[1].S != "alice" {
		t.Errorf("rows[0].name = %q, want alice", rows[0].Values[1].S)
	}
}

func TestTableInsertArityFailureIsAtomic(t *testing.T) {
	tbl := mustTable(t, usersSchema())
	_, err := tbl.Insert([][]value.Value{
		{value.Int64(1), value.Str("alice"), value.Str("a@x")},
		{value.Int64(2), value.Str("bob")},
	})
	if err == nil || err.Kind != KindArity {
		t.Fatalf("expected Arity error, got %v", err)
	}
	if tbl.Stats().RowCount != 0 {
		t.Errorf("batch with an error mutated storage: RowCount = %d, want 0", tbl.Stats().RowCount)
	}
}

func TestTableInsertTypeMismatchIsAtomic(t *testing.T) {
	tbl := mustTable(t, usersSchema())
	_, err := tbl.Insert([][]value.Value{
		{value.Int64(1), value.Str("alice"), value.Str("a@x")},
		{value.Str("not-an-int"), value.Str("bob"), value.Str("b@x")},
	})
	if err == nil || err.Kind != KindTypeMismatch {
		t.Fatalf("expected TypeMismatch error, got %v", err)
	}
	if tbl.Stats().RowCount != 0 {
		t.Errorf("batch with an error mutated storage: RowCount = %d, want 0", tbl.Stats().RowCount)
	}
}

func TestTableGetUnknownIdsOmitted(t *testing.T) {
	tbl := mustTable(t, usersSchema())
	ids, _ := tbl.Insert([][]value.Value{{value.Int64(1), value.Str("alice"), value.Str("a@x")}})

	rows := tbl.Get([]uint64{ids[0], 999})
	if len(rows) != 1 {
		t.Fatalf("Get with one unknown id returned %d rows, want 1", len(rows))
	}
}

func TestTableUpdatePreservesRowID(t *testing.T) {
	tbl := mustTable(t, usersSchema())
	ids, _ := tbl.Insert([][]value.Value{{value.Int64(1), value.Str("alice"), value.Str("a@x")}})

	err := tbl.Update(ids[0], []value.Value{value.Int64(1), value.Str("alicia"), value.Str("a@x")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	rows := tbl.Get(ids)
	if len(rows) != 1 || rows[0].ID != ids[0] || rows[0].Values[1].S != "alicia" {
		t.Fatalf("unexpected row after update: %+v", rows)
	}

	got, qerr := tbl.ExactLookup("name", value.Str("alice"))
	if qerr != nil {
		t.Fatalf("ExactLookup: %v", qerr)
	}
	if len(got) != 0 {
		t.Errorf("old value still indexed after update: %v", got)
	}
}

func TestTableUpdateUnknownIDFails(t *testing.T) {
	tbl := mustTable(t, usersSchema())
	err := tbl.Update(999, []value.Value{value.Int64(1), value.Str("x"), value.Str("y")})
	if err == nil || err.Kind != KindNotFound {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestTableDeleteIsIdempotent(t *testing.T) {
	tbl := mustTable(t, usersSchema())
	ids, _ := tbl.Insert([][]value.Value{{value.Int64(1), value.Str("alice"), value.Str("a@x")}})

	if n := tbl.Delete(ids); n != 1 {
		t.Fatalf("first Delete returned %d, want 1", n)
	}
	if n := tbl.Delete(ids); n != 0 {
		t.Fatalf("second Delete returned %d, want 0", n)
	}
	if rows := tbl.Get(ids); len(rows) != 0 {
		t.Errorf("Get after delete returned %v, want empty", rows)
	}
}

func TestTableExactLookup(t *testing.T) {
	tbl := mustTable(t, usersSchema())
	tbl.Insert([][]value.Value{
		{value.Int64(1), value.Str("alice"), value.Str("a@x")},
		{value.Int64(2), value.Str("bob"), value.Str("b@x")},
	})

	got, err := tbl.ExactLookup("name", value.Str("alice"))
	if err != nil {
		t.Fatalf("ExactLookup: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("ExactLookup(alice) = %v, want one row", got)
	}
}

func TestTablePrefixMonotonicity(t *testing.T) {
	tbl := mustTable(t, usersSchema())
	tbl.Insert([][]value.Value{
		{value.Int64(1), value.Str("alice"), value.Str("a@x")},
		{value.Int64(2), value.Str("bob"), value.Str("b@x")},
	})

	all, err := tbl.PrefixLookup("name", "")
	if err != nil {
		t.Fatalf("PrefixLookup: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("PrefixLookup('') = %v, want every row", all)
	}

	al, err := tbl.PrefixLookup("name", "al")
	if err != nil {
		t.Fatalf("PrefixLookup: %v", err)
	}
	if len(al) != 1 {
		t.Fatalf("PrefixLookup('al') = %v, want one row", al)
	}
}

func TestTableFullTextAndContains(t *testing.T) {
	tbl := mustTable(t, usersSchema())
	tbl.Insert([][]value.Value{
		{value.Int64(1), value.Str("alice"), value.Str("a@x")},
		{value.Int64(3), value.Str("alice smith"), value.Str("c@x")},
	})

	empty, err := tbl.FullTextQuery("name", "alice bob")
	if err != nil {
		t.Fatalf("FullTextQuery: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("FullTextQuery(alice bob) = %v, want empty (AND semantics)", empty)
	}

	got, err := tbl.FullTextQuery("name", "alice")
	if err != nil {
		t.Fatalf("FullTextQuery: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("FullTextQuery(alice) = %v, want both rows", got)
	}
}

func TestTableRangeInclusivity(t *testing.T) {
	schema := TableSchema{Columns: []ColumnSchema{
		{Name: "id", Type: TypeInt},
		{Name: "price", Type: TypeFloat},
	}}
	tbl := mustTable(t, schema)
	tbl.Insert([][]value.Value{
		{value.Int64(1), value.Float64(9.99)},
		{value.Int64(2), value.Float64(19.50)},
		{value.Int64(3), value.Float64(100.0)},
	})

	got, err := tbl.RangeQuery("price", value.Float64(10), value.Float64(50))
	if err != nil {
		t.Fatalf("RangeQuery: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("RangeQuery(10,50) = %v, want exactly row with price 19.50", got)
	}
}

func TestTableUnsupportedQuery(t *testing.T) {
	schema := TableSchema{Columns: []ColumnSchema{
		{Name: "id", Type: TypeInt},
	}}
	tbl := mustTable(t, schema)

	if _, err := tbl.PrefixLookup("id", "1"); err == nil || err.Kind != KindUnsupportedQuery {
		t.Fatalf("PrefixLookup on int column should be UnsupportedQuery, got %v", err)
	}
	if _, err := tbl.FullTextQuery("id", "1"); err == nil || err.Kind != KindUnsupportedQuery {
		t.Fatalf("FullTextQuery on int column should be UnsupportedQuery, got %v", err)
	}
}

func TestTableMaterializeAscendingOrder(t *testing.T) {
	tbl := mustTable(t, usersSchema())
	ids, _ := tbl.Insert([][]value.Value{
		{value.Int64(1), value.Str("a"), value.Str("a@x")},
		{value.Int64(2), value.Str("b"), value.Str("b@x")},
		{value.Int64(3), value.Str("c"), value.Str("c@x")},
	})

	reversed := []uint64{ids[2], ids[0], ids[1]}
	rows := tbl.Materialize(reversed)
	if len(rows) != 3 {
		t.Fatalf("Materialize returned %d rows, want 3", len(rows))
	}
	for i := 1; i < len(rows); i++ {
		if rows[i-1].ID > rows[i].ID {
			t.Fatalf("Materialize not in ascending id order: %v", rows)
		}
	}
}

func TestTableStats(t *testing.T) {
	tbl := mustTable(t, usersSchema())
	ids, _ := tbl.Insert([][]value.Value{
		{value.Int64(1), value.Str("alice"), value.Str("a@x")},
		{value.Int64(2), value.Str("bob"), value.Str("b@x")},
	})
	tbl.Delete(ids[:1])

	stats := tbl.Stats()
	if stats.RowCount != 2 {
		t.Errorf("RowCount = %d, want 2", stats.RowCount)
	}
	if stats.LiveCount != 1 {
		t.Errorf("LiveCount = %d, want 1", stats.LiveCount)
	}
}
