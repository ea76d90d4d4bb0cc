package checker

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/fallout-harness/fallout/engine"
)

// SQLiteRowCount is an ArtifactChecker that asserts a table's row count
// falls within [min, max] against a SQLite database produced by a workload
// module (e.g. DBWriter). Grounded on graph/store/sqlite.go's connection
// setup, read-only here since the checker never writes.
type SQLiteRowCount struct{}

func (SQLiteRowCount) CheckArtifact(ctx context.Context, props map[string]any) engine.Diagnostic {
	dsn, _ := props["dsn"].(string)
	table, _ := props["table"].(string)
	min := intProp(props["min"], 0)
	max := intProp(props["max"], int(^uint(0)>>1))

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return engine.Diagnostic{Valid: false, Detail: fmt.Sprintf("open %s: %v", dsn, err)}
	}
	defer db.Close()

	var count int
	row := db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", table))
	if err := row.Scan(&count); err != nil {
		return engine.Diagnostic{Valid: false, Detail: fmt.Sprintf("count %s: %v", table, err)}
	}

	if count < min || count > max {
		return engine.Diagnostic{Valid: false, Detail: fmt.Sprintf("row count %d outside [%d, %d]", count, min, max)}
	}
	return engine.Diagnostic{Valid: true, Detail: fmt.Sprintf("row count %d within [%d, %d]", count, min, max)}
}
