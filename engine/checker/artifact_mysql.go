package checker

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"

	"github.com/fallout-harness/fallout/engine"
)

// MySQLRowCount is the MySQL equivalent of SQLiteRowCount, for workloads
// whose DBWriter-style module targets a MySQL-compatible artifact store.
type MySQLRowCount struct{}

func (MySQLRowCount) CheckArtifact(ctx context.Context, props map[string]any) engine.Diagnostic {
	dsn, _ := props["dsn"].(string)
	table, _ := props["table"].(string)
	min := intProp(props["min"], 0)
	max := intProp(props["max"], int(^uint(0)>>1))

	db, err := sql.Open("mysql", dsn)
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
