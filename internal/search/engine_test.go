package search

import (
	"testing"

	"github.com/coraldb/coraldb/internal/database"
	"github.com/coraldb/coraldb/internal/value"
)

func newUsersCoordinator(t *testing.T) (*Coordinator, []uint64) {
	t.Helper()
	db := database.NewDatabase()
	schema := database.TableSchema{Columns: []database.ColumnSchema{
		{Name: "id", Type: database.TypeInt},
		{Name: "name", Type: database.TypeString},
		{Name: "email", Type: database.TypeString},
	}}
	table, err := db.Create("users", schema, 0)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	ids, ierr := table.Insert([][]value.Value{
		{value.Int64(1), value.Str("alice"), value.Str("a@x")},
		{value.Int64(2), value.Str("bob"), value.Str("b@x")},
	})
	if ierr != nil {
		t.Fatalf("Insert: %v", ierr)
	}
	return NewCoordinator(db), ids
}

func TestCoordinatorExact(t *testing.T) {
	c, _ := newUsersCoordinator(t)
	res, err := c.Search(Query{Type: QueryExact, Table: "users", Column: "name", Value: value.Str("alice")})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res.Rows) != 1 {
		t.Fatalf("exact search for alice = %v, want one row", res.Rows)
	}
}

func TestCoordinatorPrefixAscendingOrder(t *testing.T) {
	c, _ := newUsersCoordinator(t)
	res, err := c.Search(Query{Type: QueryPrefix, Table: "users", Column: "name", Prefix: ""})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res.Rows) != 2 {
		t.Fatalf("prefix('') = %v, want both rows", res.Rows)
	}
	if res.Rows[0].ID > res.Rows[1].ID {
		t.Errorf("rows not in ascending id order: %v", res.Rows)
	}
}

func TestCoordinatorFullText(t *testing.T) {
	c, _ := newUsersCoordinator(t)
	res, err := c.Search(Query{Type: QueryFullText, Table: "users", Column: "name", Text: "alice bob"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res.Rows) != 0 {
		t.Errorf("fulltext AND of disjoint tokens = %v, want empty", res.Rows)
	}
}

func TestCoordinatorRange(t *testing.T) {
	db := database.NewDatabase()
	schema := database.TableSchema{Columns: []database.ColumnSchema{
		{Name: "id", Type: database.TypeInt},
		{Name: "price", Type: database.TypeFloat},
	}}
	table, _ := db.Create("items", schema, 0)
	table.Insert([][]value.Value{
		{value.Int64(1), value.Float64(9.99)},
		{value.Int64(2), value.Float64(19.50)},
		{value.Int64(3), value.Float64(100.0)},
	})

	c := NewCoordinator(db)
	res, err := c.Search(Query{Type: QueryRange, Table: "items", Column: "price", Min: value.Float64(10), Max: value.Float64(50)})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res.Rows) != 1 {
		t.Fatalf("range(10,50) = %v, want one row", res.Rows)
	}
}

func TestCoordinatorIDs(t *testing.T) {
	c, ids := newUsersCoordinator(t)
	res, err := c.Search(Query{Type: QueryIDs, Table: "users", IDs: []uint64{ids[1], ids[0], 999}})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res.Rows) != 2 {
		t.Fatalf("ids lookup = %v, want two known rows", res.Rows)
	}
	if res.Rows[0].ID != ids[0] {
		t.Errorf("ids lookup not returned in ascending order: %v", res.Rows)
	}
}

func TestCoordinatorUnknownTable(t *testing.T) {
	c := NewCoordinator(database.NewDatabase())
	_, err := c.Search(Query{Type: QueryExact, Table: "missing", Column: "x", Value: value.Str("y")})
	if err == nil || err.Kind != database.KindUnknownTable {
		t.Fatalf("expected UnknownTable, got %v", err)
	}
}

func TestCoordinatorUnsupportedQuery(t *testing.T) {
	c, _ := newUsersCoordinator(t)
	_, err := c.Search(Query{Type: QueryRange, Table: "users", Column: "name", Min: value.Int64(1), Max: value.Int64(2)})
	if err == nil || err.Kind != database.KindUnsupportedQuery {
		t.Fatalf("expected UnsupportedQuery for range on a string column, got %v", err)
	}
}
