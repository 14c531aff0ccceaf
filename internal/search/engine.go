package search

import (
	"github.com/coraldb/coraldb/internal/database"
	"github.com/coraldb/coraldb/internal/value"
)

// QueryType names one of the five query shapes the coordinator dispatches,
// plus the batch id lookup exposed alongside them on the HTTP surface.
type QueryType string

const (
	QueryExact    QueryType = "exact"
	QueryPrefix   QueryType = "prefix"
	QueryFullText QueryType = "fulltext"
	QueryRange    QueryType = "range"
	QueryContains QueryType = "contains"
	QueryIDs      QueryType = "ids"
)

// Query is the typed descriptor the coordinator accepts, per §4.9. Only the
// fields relevant to Type are read; the rest are ignored.
type Query struct {
	Type   QueryType
	Table  string
	Column string

	Value value.Value // exact

	Prefix string // prefix

	Text string // fulltext, contains

	Min value.Value // range
	Max value.Value // range

	IDs []uint64 // ids
}

// Result is the materialized outcome of a Search call: the rows the query
// matched, in ascending row_id order.
type Result struct {
	Rows []database.Row
}

// Coordinator maps a typed query descriptor to an index plan against the
// named table, executes it, and materializes the matching rows. It holds
// no state of its own beyond the database registry it was built with.
type Coordinator struct {
	db *database.Database
}

func NewCoordinator(db *database.Database) *Coordinator {
	return &Coordinator{db: db}
}

// Search resolves q.Table, selects the index plan for q.Type, and returns
// the matching rows in ascending row_id order. An empty match set is a
// valid success, not an error.
func (c *Coordinator) Search(q Query) (Result, *database.Error) {
	table, err := c.db.Get(q.Table)
	if err != nil {
		return Result{}, err
	}

	if q.Type == QueryIDs {
		return Result{Rows: table.Materialize(q.IDs)}, nil
	}

	ids, err := c.plan(table, q)
	if err != nil {
		return Result{}, err
	}
	return Result{Rows: table.Materialize(ids)}, nil
}

func (c *Coordinator) plan(table *database.Table, q Query) ([]uint64, *database.Error) {
	switch q.Type {
	case QueryExact:
		return table.ExactLookup(q.Column, q.Value)
	case QueryPrefix:
		return table.PrefixLookup(q.Column, q.Prefix)
	case QueryFullText:
		return table.FullTextQuery(q.Column, q.Text)
	case QueryRange:
		return table.RangeQuery(q.Column, q.Min, q.Max)
	case QueryContains:
		return table.ContainsQuery(q.Column, q.Text)
	default:
		return nil, database.NewBadRequestError("unknown query type %q", q.Type)
	}
}
