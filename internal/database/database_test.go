package database

import "testing"

func TestDatabaseCreateDuplicateFails(t *testing.T) {
	db := NewDatabase()
	schema := TableSchema{Columns: []ColumnSchema{{Name: "id", Type: TypeInt}}}

	if _, err := db.Create("users", schema, 0); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := db.Create("users", schema, 0); err == nil || err.Kind != KindDuplicateTable {
		t.Fatalf("expected DuplicateTable, got %v", err)
	}
}

func TestDatabaseGetUnknownTable(t *testing.T) {
	db := NewDatabase()
	if _, err := db.Get("missing"); err == nil || err.Kind != KindUnknownTable {
		t.Fatalf("expected UnknownTable, got %v", err)
	}
}

func TestDatabaseDropThenGetFails(t *testing.T) {
	db := NewDatabase()
	schema := TableSchema{Columns: []ColumnSchema{{Name: "id", Type: TypeInt}}}
	db.Create("users", schema, 0)

	if err := db.Drop("users"); err != nil {
		t.Fatalf("Drop: %v", err)
	}
	if _, err := db.Get("users"); err == nil || err.Kind != KindUnknownTable {
		t.Fatalf("expected UnknownTable after drop, got %v", err)
	}
	if err := db.Drop("users"); err == nil || err.Kind != KindUnknownTable {
		t.Fatalf("second Drop should fail with UnknownTable, got %v", err)
	}
}

func TestDatabaseListNames(t *testing.T) {
	db := NewDatabase()
	schema := TableSchema{Columns: []ColumnSchema{{Name: "id", Type: TypeInt}}}
	db.Create("a", schema, 0)
	db.Create("b", schema, 0)

	names := db.List()
	if len(names) != 2 {
		t.Fatalf("List() = %v, want 2 names", names)
	}
}

func TestDatabaseCreateRejectsBadNames(t *testing.T) {
	db := NewDatabase()
	schema := TableSchema{Columns: []ColumnSchema{{Name: "id", Type: TypeInt}}}

	if _, err := db.Create("", schema, 0); err == nil || err.Kind != KindBadRequest {
		t.Fatalf("expected BadRequest for empty name, got %v", err)
	}
}

func TestDatabaseCreateDuplicateColumnFails(t *testing.T) {
	db := NewDatabase()
	schema := TableSchema{Columns: []ColumnSchema{
		{Name: "id", Type: TypeInt},
		{Name: "id", Type: TypeString},
	}}
	if _, err := db.Create("t", schema, 0); err == nil || err.Kind != KindDuplicateColumn {
		t.Fatalf("expected DuplicateColumn, got %v", err)
	}
}
