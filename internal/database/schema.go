package database

import (
	"strings"

	"github.com/coraldb/coraldb/internal/value"
)

// ColumnType is the schema-level type a column is declared with. It maps
// 1:1 onto value.Kind but keeps the schema vocabulary (and its accepted
// spelling synonyms) separate from the value package's internal discriminant.
type ColumnType uint8

const (
	TypeInt ColumnType = iota
	TypeFloat
	TypeString
	TypeBytes
)

// ParseColumnType accepts every spelling synonym the HTTP surface allows and
// normalizes to a ColumnType. An unrecognized spelling fails with InvalidType.
func ParseColumnType(s string) (ColumnType, *Error) {
	switch strings.ToLower(s) {
	case "int", "integer", "i64":
		return TypeInt, nil
	case "float", "double", "f64":
		return TypeFloat, nil
	case "string", "text", "varchar":
		return TypeString, nil
	case "bytes", "blob", "binary":
		return TypeBytes, nil
	default:
		return 0, errInvalidType(s)
	}
}

// Canonical returns the first spelling in each synonym group, the form
// echoed back to clients.
func (t ColumnType) Canonical() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	case TypeBytes:
		return "bytes"
	default:
		return "unknown"
	}
}

func (t ColumnType) kind() value.Kind {
	switch t {
	case TypeInt:
		return value.Int
	case TypeFloat:
		return value.Float
	case TypeString:
		return value.String
	case TypeBytes:
		return value.Bytes
	default:
		return value.Int
	}
}

// ColumnSchema names a column and fixes its type for the table's lifetime.
type ColumnSchema struct {
	Name string
	Type ColumnType
}

// TableSchema is the ordered list of column schemas a table is created with.
// Row arity equals len(Columns).
type TableSchema struct {
	Columns []ColumnSchema
}

// indexOf returns the position of name within the schema, or -1.
func (s TableSchema) indexOf(name string) int {
	for i, c := range s.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// validate rejects duplicate column names within the schema.
func (s TableSchema) validate() *Error {
	seen := make(map[string]struct{}, len(s.Columns))
	for _, c := range s.Columns {
		if _, dup := seen[c.Name]; dup {
			return errDuplicateColumn(c.Name)
		}
		seen[c.Name] = struct{}{}
	}
	return nil
}
