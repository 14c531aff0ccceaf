package api

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/coraldb/coraldb/internal/database"
	"github.com/coraldb/coraldb/internal/search"
	"github.com/coraldb/coraldb/internal/value"
)

// bindJSON decodes the request body with UseNumber so integer columns
// round-trip exactly instead of passing through float64.
func bindJSON(c *gin.Context, dst interface{}) error {
	dec := json.NewDecoder(c.Request.Body)
	dec.UseNumber()
	if err := dec.Decode(dst); err != nil && err != io.EOF {
		return err
	}
	return nil
}

// jsonToValue interprets a decoded JSON scalar as a value.Value of the
// given column type. Bytes columns are base64-encoded strings on the wire.
func jsonToValue(raw interface{}, t database.ColumnType) (value.Value, *database.Error) {
	switch t {
	case database.TypeInt:
		switch n := raw.(type) {
		case json.Number:
			i, err := n.Int64()
			if err != nil {
				return value.Value{}, database.NewBadRequestError("invalid integer %q", n.String())
			}
			return value.Int64(i), nil
		case float64:
			return value.Int64(int64(n)), nil
		}
	case database.TypeFloat:
		switch n := raw.(type) {
		case json.Number:
			f, err := n.Float64()
			if err != nil {
				return value.Value{}, database.NewBadRequestError("invalid float %q", n.String())
			}
			return value.Float64(f), nil
		case float64:
			return value.Float64(n), nil
		}
	case database.TypeString:
		if s, ok := raw.(string); ok {
			return value.Str(s), nil
		}
	case database.TypeBytes:
		if s, ok := raw.(string); ok {
			b, err := base64.StdEncoding.DecodeString(s)
			if err != nil {
				return value.Value{}, database.NewBadRequestError("invalid base64 for bytes column: %v", err)
			}
			return value.Raw(b), nil
		}
	}
	return value.Value{}, database.NewBadRequestError("value does not match column type %s", t.Canonical())
}

// valueToJSON renders a value.Value back to a JSON-safe scalar.
func valueToJSON(v value.Value) interface{} {
	switch v.Kind {
	case value.Int:
		return v.I
	case value.Float:
		return v.F
	case value.String:
		return v.S
	case value.Bytes:
		return base64.StdEncoding.EncodeToString(v.B)
	default:
		return nil
	}
}

type rowJSON struct {
	ID     uint64        `json:"id"`
	Values []interface{} `json:"values"`
}

func rowsToJSON(rows []database.Row) []rowJSON {
	out := make([]rowJSON, len(rows))
	for i, r := range rows {
		values := make([]interface{}, len(r.Values))
		for j, v := range r.Values {
			values[j] = valueToJSON(v)
		}
		out[i] = rowJSON{ID: r.ID, Values: values}
	}
	return out
}

// =============================================================================
// HEALTH
// =============================================================================

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// =============================================================================
// TABLE ADMINISTRATION
// =============================================================================

type columnSpec struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type createTableRequest struct {
	Name     string       `json:"name"`
	Columns  []columnSpec `json:"columns"`
	Capacity int          `json:"capacity"`
}

func (s *Server) createTable(c *gin.Context) {
	var req createTableRequest
	if err := bindJSON(c, &req); err != nil {
		BadRequestError(c, "malformed JSON body")
		return
	}
	if req.Name == "" || len(req.Columns) == 0 {
		BadRequestError(c, "name and columns are required")
		return
	}

	schema := database.TableSchema{Columns: make([]database.ColumnSchema, len(req.Columns))}
	for i, col := range req.Columns {
		t, err := database.ParseColumnType(col.Type)
		if err != nil {
			CoreError(c, err)
			return
		}
		schema.Columns[i] = database.ColumnSchema{Name: col.Name, Type: t}
	}

	if _, err := s.db.Create(req.Name, schema, req.Capacity); err != nil {
		CoreError(c, err)
		return
	}
	CreatedResponse(c, gin.H{"name": req.Name})
}

type dropTableRequest struct {
	Name string `json:"name"`
}

func (s *Server) dropTable(c *gin.Context) {
	var req dropTableRequest
	if err := bindJSON(c, &req); err != nil || req.Name == "" {
		BadRequestError(c, "name is required")
		return
	}
	if err := s.db.Drop(req.Name); err != nil {
		CoreError(c, err)
		return
	}
	SuccessResponse(c, gin.H{"dropped": req.Name})
}

func (s *Server) listTables(c *gin.Context) {
	SuccessResponse(c, gin.H{"tables": s.db.List()})
}

func (s *Server) tableStats(c *gin.Context) {
	name := c.Param("name")
	table, err := s.db.Get(name)
	if err != nil {
		CoreError(c, err)
		return
	}
	SuccessResponse(c, table.Stats())
}

func (s *Server) databaseStats(c *gin.Context) {
	names := s.db.List()
	perTable := make(map[string]database.Stats, len(names))
	for _, name := range names {
		if table, err := s.db.Get(name); err == nil {
			perTable[name] = table.Stats()
		}
	}
	SuccessResponse(c, gin.H{"tables": perTable})
}

// =============================================================================
// ROW MUTATION
// =============================================================================

type insertRequest struct {
	Table string          `json:"table"`
	Rows  [][]interface{} `json:"rows"`
}

func (s *Server) insertRows(c *gin.Context) {
	var req insertRequest
	if err := bindJSON(c, &req); err != nil {
		BadRequestError(c, "malformed JSON body")
		return
	}
	table, err := s.db.Get(req.Table)
	if err != nil {
		CoreError(c, err)
		return
	}

	schema := table.Schema()
	rows := make([][]value.Value, len(req.Rows))
	for i, raw := range req.Rows {
		if len(raw) != len(schema.Columns) {
			BadRequestError(c, "row arity does not match table schema")
			return
		}
		row := make([]value.Value, len(raw))
		for j, cell := range raw {
			v, verr := jsonToValue(cell, schema.Columns[j].Type)
			if verr != nil {
				CoreError(c, verr)
				return
			}
			row[j] = v
		}
		rows[i] = row
	}

	ids, ierr := table.Insert(rows)
	if ierr != nil {
		CoreError(c, ierr)
		return
	}
	CreatedResponse(c, gin.H{"ids": ids})
}

type updateRequest struct {
	Table  string        `json:"table"`
	ID     uint64        `json:"id"`
	Values []interface{} `json:"values"`
}

func (s *Server) updateRow(c *gin.Context) {
	var req updateRequest
	if err := bindJSON(c, &req); err != nil {
		BadRequestError(c, "malformed JSON body")
		return
	}
	table, err := s.db.Get(req.Table)
	if err != nil {
		CoreError(c, err)
		return
	}

	schema := table.Schema()
	if len(req.Values) != len(schema.Columns) {
		BadRequestError(c, "value arity does not match table schema")
		return
	}
	values := make([]value.Value, len(req.Values))
	for j, cell := range req.Values {
		v, verr := jsonToValue(cell, schema.Columns[j].Type)
		if verr != nil {
			CoreError(c, verr)
			return
		}
		values[j] = v
	}

	if uerr := table.Update(req.ID, values); uerr != nil {
		CoreError(c, uerr)
		return
	}
	SuccessResponse(c, gin.H{"id": req.ID})
}

type deleteRequest struct {
	Table string   `json:"table"`
	IDs   []uint64 `json:"ids"`
}

func (s *Server) deleteRows(c *gin.Context) {
	var req deleteRequest
	if err := bindJSON(c, &req); err != nil {
		BadRequestError(c, "malformed JSON body")
		return
	}
	table, err := s.db.Get(req.Table)
	if err != nil {
		CoreError(c, err)
		return
	}
	deleted := table.Delete(req.IDs)
	SuccessResponse(c, gin.H{"deleted": deleted})
}

type getRequest struct {
	Table string   `json:"table"`
	IDs   []uint64 `json:"ids"`
}

func (s *Server) getRows(c *gin.Context) {
	var req getRequest
	if err := bindJSON(c, &req); err != nil {
		BadRequestError(c, "malformed JSON body")
		return
	}
	table, err := s.db.Get(req.Table)
	if err != nil {
		CoreError(c, err)
		return
	}
	SuccessResponse(c, gin.H{"rows": rowsToJSON(table.Get(req.IDs))})
}

// =============================================================================
// SEARCH
// =============================================================================

type searchRequest struct {
	Type      string      `json:"type"`
	Table     string      `json:"table"`
	Column    string      `json:"column"`
	Value     interface{} `json:"value"`
	Prefix    string      `json:"prefix"`
	Query     string      `json:"query"`
	Substring string      `json:"substring"`
	Min       interface{} `json:"min"`
	Max       interface{} `json:"max"`
	IDs       []uint64    `json:"ids"`
}

func (s *Server) search(c *gin.Context) {
	var req searchRequest
	if err := bindJSON(c, &req); err != nil {
		BadRequestError(c, "malformed JSON body")
		return
	}
	if req.Table == "" || req.Type == "" {
		BadRequestError(c, "table and type are required")
		return
	}

	q := search.Query{Type: search.QueryType(req.Type), Table: req.Table, Column: req.Column}

	switch q.Type {
	case search.QueryIDs:
		q.IDs = req.IDs
	case search.QueryPrefix:
		q.Prefix = req.Prefix
	case search.QueryFullText:
		q.Text = req.Query
	case search.QueryContains:
		q.Text = req.Substring
	case search.QueryExact, search.QueryRange:
		table, terr := s.db.Get(req.Table)
		if terr != nil {
			CoreError(c, terr)
			return
		}
		colType, cerr := columnType(table, req.Column)
		if cerr != nil {
			CoreError(c, cerr)
			return
		}
		if q.Type == search.QueryExact {
			v, verr := jsonToValue(req.Value, colType)
			if verr != nil {
				CoreError(c, verr)
				return
			}
			q.Value = v
		} else {
			min, verr := jsonToValue(req.Min, colType)
			if verr != nil {
				CoreError(c, verr)
				return
			}
			max, verr2 := jsonToValue(req.Max, colType)
			if verr2 != nil {
				CoreError(c, verr2)
				return
			}
			q.Min, q.Max = min, max
		}
	default:
		BadRequestError(c, "unknown query type "+req.Type)
		return
	}

	res, err := s.coordinator.Search(q)
	if err != nil {
		CoreError(c, err)
		return
	}
	SuccessResponse(c, gin.H{"rows": rowsToJSON(res.Rows)})
}

func columnType(table *database.Table, column string) (database.ColumnType, *database.Error) {
	for _, c := range table.Schema().Columns {
		if c.Name == column {
			return c.Type, nil
		}
	}
	return 0, database.NewBadRequestError("column %q not found on table %q", column, table.Name())
}
