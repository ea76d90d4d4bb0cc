package module

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/fallout-harness/fallout/engine"
)

// DBWriter is a RUN_ONCE module that writes rows of artifact data to a
// SQLite database as a stand-in for a workload-under-test's own data plane
// (§6's artifact_checkers operate on exactly this kind of on-disk output).
// Grounded on graph/store/sqlite.go's connection setup (single-writer pool,
// WAL mode, busy timeout), trimmed from a generic Store[S] to a one-table
// row writer.
type DBWriter struct{ engine.BaseModule }

var (
	dsnProp      = engine.PropertySpec{Name: "dsn", Required: true}
	tableProp    = engine.PropertySpec{Name: "table", Required: true}
	rowCountProp = engine.PropertySpec{Name: "row_count", Required: true}
)

func (DBWriter) PropertySpecs() []engine.PropertySpec {
	return []engine.PropertySpec{dsnProp, tableProp, rowCountProp}
}

func (DBWriter) Lifetime() (engine.Lifetime, bool) { return engine.RunOnce, true }

func (DBWriter) Run(ctx context.Context, mi *engine.ModuleInstance, ens engine.Ensemble, props map[string]any) error {
	dsn, _ := props["dsn"].(string)
	table, _ := props["table"].(string)
	count := intProp(props["row_count"])

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("dbwriter: open %s: %w", dsn, err)
	}
	defer db.Close()

	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("dbwriter: enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		return fmt.Errorf("dbwriter: set busy_timeout: %w", err)
	}

	createSQL := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (id INTEGER PRIMARY KEY, payload TEXT)", table)
	if _, err := db.ExecContext(ctx, createSQL); err != nil {
		return fmt.Errorf("dbwriter: create table %s: %w", table, err)
	}

	insertSQL := fmt.Sprintf("INSERT INTO %s (payload) VALUES (?)", table)
	for i := 0; i < count; i++ {
		if mi.Aborted() {
			break
		}
		if _, err := db.ExecContext(ctx, insertSQL, fmt.Sprintf("row-%d", i)); err != nil {
			return fmt.Errorf("dbwriter: insert row %d: %w", i, err)
		}
	}

	return mi.Emit(engine.OpOK, "text/plain", fmt.Sprintf("wrote rows into %s", table))
}

func intProp(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
