package sync

import (
	"testing"

	"github.com/coraldb/coraldb/internal/database"
)

func TestParseTableSpec(t *testing.T) {
	m, err := parseTableSpec("events:ingested_events:id=int,name=string,amount=float")
	if err != nil {
		t.Fatalf("parseTableSpec: %v", err)
	}
	if m.Source != "events" || m.Dest != "ingested_events" {
		t.Fatalf("source/dest = %q/%q", m.Source, m.Dest)
	}
	if len(m.Columns) != 3 {
		t.Fatalf("columns = %d, want 3", len(m.Columns))
	}
	if m.Columns[2].Type != database.TypeFloat {
		t.Errorf("third column type = %v, want float", m.Columns[2].Type)
	}
}

func TestParseTableSpecRejectsMalformed(t *testing.T) {
	cases := []string{
		"events",
		"events:dst",
		"events:dst:",
		"events:dst:id",
		"events:dst:id=notatype",
	}
	for _, spec := range cases {
		if _, err := parseTableSpec(spec); err == nil {
			t.Errorf("parseTableSpec(%q) should have failed", spec)
		}
	}
}

func TestConvertCellInt(t *testing.T) {
	v, err := convertCell(int64(42), database.TypeInt)
	if err != nil {
		t.Fatalf("convertCell: %v", err)
	}
	if v.I != 42 {
		t.Errorf("I = %d, want 42", v.I)
	}

	v, err = convertCell("42", database.TypeInt)
	if err != nil || v.I != 42 {
		t.Errorf("string-encoded int: v=%v err=%v", v, err)
	}
}

func TestConvertCellFloat(t *testing.T) {
	v, err := convertCell(float64(3.5), database.TypeFloat)
	if err != nil || v.F != 3.5 {
		t.Errorf("v=%v err=%v", v, err)
	}
}

func TestConvertCellBytes(t *testing.T) {
	v, err := convertCell([]byte("hi"), database.TypeBytes)
	if err != nil || string(v.B) != "hi" {
		t.Errorf("v=%v err=%v", v, err)
	}
}

func TestConvertRow(t *testing.T) {
	columns := []ColumnMapping{
		{Source: "id", Dest: "id", Type: database.TypeInt},
		{Source: "name", Dest: "name", Type: database.TypeString},
	}
	raw := map[string]interface{}{"id": int64(7), "name": "alice"}
	row, err := convertRow(raw, columns)
	if err != nil {
		t.Fatalf("convertRow: %v", err)
	}
	if row[0].I != 7 || row[1].S != "alice" {
		t.Errorf("row = %+v", row)
	}
}
