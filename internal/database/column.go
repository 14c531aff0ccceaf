package database

import "github.com/coraldb/coraldb/internal/value"

// column is one table column's dense storage, indexed by row_slot — the
// position shared across every column for a given row. append is O(1)
// amortized; get/set/clear are O(1).
type column struct {
	schema ColumnSchema
	values []value.Value
}

func newColumn(schema ColumnSchema, capacityHint int) *column {
	if capacityHint < 0 {
		capacityHint = 0
	}
	return &column{schema: schema, values: make([]value.Value, 0, capacityHint)}
}

// checkType fails with TypeMismatch rather than mutate the column.
func (c *column) checkType(v value.Value) *Error {
	if v.Kind != c.schema.Type.kind() {
		return errTypeMismatch(c.schema.Name, c.schema.Type.Canonical(), v.Kind.String())
	}
	return nil
}

// append grows the column by one slot holding v. Returns the new slot's
// index.
func (c *column) append(v value.Value) (int, *Error) {
	if err := c.checkType(v); err != nil {
		return 0, err
	}
	c.values = append(c.values, v)
	return len(c.values) - 1, nil
}

func (c *column) get(slot int) value.Value {
	return c.values[slot]
}

// set overwrites slot in place. Type-checked the same as append.
func (c *column) set(slot int, v value.Value) *Error {
	if err := c.checkType(v); err != nil {
		return err
	}
	c.values[slot] = v
	return nil
}

// clear logically blanks slot. The value may remain physically present
// until compaction, which this implementation does not perform; callers
// must not read a cleared slot without checking row liveness first.
func (c *column) clear(slot int) {
	c.values[slot] = value.Value{}
}

func (c *column) len() int { return len(c.values) }
