// Package sync implements the optional columnar sync collaborator: a
// best-effort poller that pulls rows from an external ClickHouse table
// over gorm.io/gorm and replays them into a coraldb table through the
// same Insert call an HTTP client's /insert request uses; source updates
// and deletes are not replayed. The core
// exposes no sync-aware code path; everything here is plain client code
// against the table mutation API.
package sync

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/driver/clickhouse"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/coraldb/coraldb/internal/database"
	"github.com/coraldb/coraldb/internal/logging"
	"github.com/coraldb/coraldb/internal/value"
	"github.com/coraldb/coraldb/pkg/config"
)

const batchSize = 500

// ColumnMapping pairs a source column with a destination column and the
// coraldb type to coerce it into.
type ColumnMapping struct {
	Source string
	Dest   string
	Type   database.ColumnType
}

// TableMapping is one "src:dst:col=type,..." entry from configuration.
type TableMapping struct {
	Source  string
	Dest    string
	Columns []ColumnMapping
}

// parseTableSpec parses "src:dst:col=type,col2=type2,..." into a
// TableMapping. Column order is preserved; it fixes the row arity
// coraldb's Insert expects.
func parseTableSpec(spec string) (TableMapping, error) {
	parts := strings.SplitN(spec, ":", 3)
	if len(parts) != 3 {
		return TableMapping{}, fmt.Errorf("sync table spec %q: expected src:dst:col=type,...", spec)
	}
	m := TableMapping{Source: parts[0], Dest: parts[1]}
	for _, col := range strings.Split(parts[2], ",") {
		kv := strings.SplitN(col, "=", 2)
		if len(kv) != 2 {
			return TableMapping{}, fmt.Errorf("sync table spec %q: malformed column %q", spec, col)
		}
		t, err := database.ParseColumnType(kv[1])
		if err != nil {
			return TableMapping{}, fmt.Errorf("sync table spec %q: %w", spec, err)
		}
		m.Columns = append(m.Columns, ColumnMapping{Source: kv[0], Dest: kv[0], Type: t})
	}
	if len(m.Columns) == 0 {
		return TableMapping{}, fmt.Errorf("sync table spec %q: no columns", spec)
	}
	return m, nil
}

// Syncer polls a ClickHouse source and replays rows into target via the
// table mutation API. It holds no private write path into target.
type Syncer struct {
	source   *gorm.DB
	target   *database.Database
	mappings []TableMapping
	interval time.Duration
	log      *logging.Logger
}

// New connects to the configured ClickHouse source and parses the table
// mappings. Returns nil, nil when sync is disabled.
func New(cfg config.SyncConfig, target *database.Database) (*Syncer, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	dsn := fmt.Sprintf("clickhouse://%s:%s@%s:%d/%s",
		cfg.SourceUser, cfg.SourcePassword, cfg.SourceHost, cfg.SourcePort, cfg.SourceDatabase)
	db, err := gorm.Open(clickhouse.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("sync: connect to clickhouse source: %w", err)
	}

	mappings := make([]TableMapping, 0, len(cfg.Tables))
	for _, spec := range cfg.Tables {
		m, err := parseTableSpec(spec)
		if err != nil {
			return nil, err
		}
		mappings = append(mappings, m)
	}

	return &Syncer{
		source:   db,
		target:   target,
		mappings: mappings,
		interval: time.Duration(cfg.IntervalSeconds) * time.Second,
		log:      logging.GetLogger("sync"),
	}, nil
}

// Start runs the periodic poller until ctx is cancelled. A zero interval
// disables the ticking goroutine entirely; callers drive sync manually
// through Trigger instead, per §6.5.
func (s *Syncer) Start(ctx context.Context) {
	if s.interval <= 0 {
		s.log.Info("sync interval is 0, manual trigger only")
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Trigger(ctx); err != nil {
				s.log.Error("sync pass failed", "error", err)
			}
		}
	}
}

// Trigger runs one synchronization pass over every configured table
// mapping, creating the destination table on first use.
func (s *Syncer) Trigger(ctx context.Context) error {
	for _, m := range s.mappings {
		if err := s.syncTable(ctx, m); err != nil {
			s.log.Error("table sync failed", "source", m.Source, "dest", m.Dest, "error", err)
			continue
		}
	}
	return nil
}

func (s *Syncer) ensureDestTable(m TableMapping) (*database.Table, error) {
	table, err := s.target.Get(m.Dest)
	if err == nil {
		return table, nil
	}
	schema := database.TableSchema{Columns: make([]database.ColumnSchema, len(m.Columns))}
	for i, c := range m.Columns {
		schema.Columns[i] = database.ColumnSchema{Name: c.Dest, Type: c.Type}
	}
	table, cerr := s.target.Create(m.Dest, schema, 0)
	if cerr != nil {
		return nil, fmt.Errorf("create destination table %q: %w", m.Dest, cerr)
	}
	return table, nil
}

// syncTable pages through the source table and replays each page into
// the destination via Insert, exactly the call an HTTP client makes.
func (s *Syncer) syncTable(ctx context.Context, m TableMapping) error {
	table, err := s.ensureDestTable(m)
	if err != nil {
		return err
	}

	sourceCols := make([]string, len(m.Columns))
	for i, c := range m.Columns {
		sourceCols[i] = c.Source
	}

	offset := 0
	for {
		var rows []map[string]interface{}
		tx := s.source.WithContext(ctx).Table(m.Source).
			Select(sourceCols).
			Order(sourceCols[0]).
			Limit(batchSize).
			Offset(offset).
			Find(&rows)
		if tx.Error != nil {
			return fmt.Errorf("query source table %q: %w", m.Source, tx.Error)
		}
		if len(rows) == 0 {
			return nil
		}

		batch := make([][]value.Value, 0, len(rows))
		for _, raw := range rows {
			row, err := convertRow(raw, m.Columns)
			if err != nil {
				s.log.Warn("skipping row with unconvertible value", "table", m.Source, "error", err)
				continue
			}
			batch = append(batch, row)
		}
		if len(batch) > 0 {
			if _, ierr := table.Insert(batch); ierr != nil {
				return fmt.Errorf("insert into destination table %q: %w", m.Dest, ierr)
			}
		}

		s.log.Info("synced batch", "source", m.Source, "dest", m.Dest, "rows", len(batch))
		if len(rows) < batchSize {
			return nil
		}
		offset += batchSize
	}
}

func convertRow(raw map[string]interface{}, columns []ColumnMapping) ([]value.Value, error) {
	row := make([]value.Value, len(columns))
	for i, c := range columns {
		v, err := convertCell(raw[c.Source], c.Type)
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", c.Source, err)
		}
		row[i] = v
	}
	return row, nil
}

func convertCell(raw interface{}, t database.ColumnType) (value.Value, error) {
	switch t {
	case database.TypeInt:
		switch n := raw.(type) {
		case int64:
			return value.Int64(n), nil
		case int32:
			return value.Int64(int64(n)), nil
		case uint64:
			return value.Int64(int64(n)), nil
		case string:
			i, err := strconv.ParseInt(n, 10, 64)
			if err != nil {
				return value.Value{}, err
			}
			return value.Int64(i), nil
		}
	case database.TypeFloat:
		switch n := raw.(type) {
		case float64:
			return value.Float64(n), nil
		case float32:
			return value.Float64(float64(n)), nil
		case string:
			f, err := strconv.ParseFloat(n, 64)
			if err != nil {
				return value.Value{}, err
			}
			return value.Float64(f), nil
		}
	case database.TypeString:
		if s, ok := raw.(string); ok {
			return value.Str(s), nil
		}
		return value.Str(fmt.Sprintf("%v", raw)), nil
	case database.TypeBytes:
		switch b := raw.(type) {
		case []byte:
			return value.Raw(b), nil
		case string:
			return value.Raw([]byte(b)), nil
		}
	}
	return value.Value{}, fmt.Errorf("cannot convert %T to %s", raw, t.Canonical())
}
