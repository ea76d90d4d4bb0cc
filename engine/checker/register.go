package checker

import "github.com/fallout-harness/fallout/engine"

// Register adds every built-in checker and artifact-checker factory to r
// under its registered short name (§4.F, §4.E).
func Register(r *engine.Registry) {
	r.RegisterChecker("nofail", func() engine.Checker { return NoFail{} })
	r.RegisterChecker("regex", func() engine.Checker { return Regex{} })
	r.RegisterChecker("count", func() engine.Checker { return Count{} })

	r.RegisterArtifactChecker("sqlite_row_count", func() engine.ArtifactChecker { return SQLiteRowCount{} })
	r.RegisterArtifactChecker("mysql_row_count", func() engine.ArtifactChecker { return MySQLRowCount{} })
}
