package mysql

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

//go:embed schema/*.sql
var schemaFS embed.FS

const createVersionTableSQL = `
CREATE TABLE IF NOT EXISTS schema_version (
  version    INT       NOT NULL,
  applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY (version)
) ENGINE=InnoDB`

type migration struct {
	version int
	name    string
	stmts   []string
}

// EnsureSchema applies every embedded schema file newer than the recorded
// version. All DDL is CREATE ... IF NOT EXISTS, so repeated runs (or a lost
// schema_version row) are harmless. Returns the resulting version.
func EnsureSchema(ctx context.Context, db *sql.DB) (int, error) {
	migs, err := loadMigrations()
	if err != nil {
		return 0, err
	}
	if _, err := db.ExecContext(ctx, createVersionTableSQL); err != nil {
		return 0, fmt.Errorf("create schema_version: %w", err)
	}
	var current int
	if err := db.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM schema_version`).Scan(&current); err != nil {
		return 0, fmt.Errorf("read schema_version: %w", err)
	}
	for _, m := range migs {
		if m.version <= current {
			continue
		}
		for i, stmt := range m.stmts {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return current, fmt.Errorf("%s statement %d: %w", m.name, i+1, err)
			}
		}
		if _, err := db.ExecContext(ctx, `INSERT INTO schema_version (version) VALUES (?) ON DUPLICATE KEY UPDATE version = version`, m.version); err != nil {
			return current, fmt.Errorf("record version %d: %w", m.version, err)
		}
		log.Info().Int("version", m.version).Str("file", m.name).Int("statements", len(m.stmts)).Msg("schema applied")
		current = m.version
	}
	return current, nil
}

// LatestSchemaVersion is the highest embedded schema version.
func LatestSchemaVersion() int {
	migs, err := loadMigrations()
	if err != nil || len(migs) == 0 {
		return 0
	}
	return migs[len(migs)-1].version
}

func loadMigrations() ([]migration, error) {
	names, err := fs.Glob(schemaFS, "schema/*.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	out := make([]migration, 0, len(names))
	for _, n := range names {
		base := strings.TrimPrefix(n, "schema/")
		prefix, _, ok := strings.Cut(base, "_")
		v, err := strconv.Atoi(prefix)
		if !ok || err != nil {
			return nil, fmt.Errorf("schema file %s: want NNN_name.sql", base)
		}
		b, err := schemaFS.ReadFile(n)
		if err != nil {
			return nil, err
		}
		out = append(out, migration{version: v, name: base, stmts: splitStatements(string(b))})
	}
	return out, nil
}

// splitStatements drops "--" comment lines and splits on ';'. The schema files
// never contain semicolons inside literals.
func splitStatements(src string) []string {
	var b strings.Builder
	for _, line := range strings.Split(src, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	var out []string
	for _, s := range strings.Split(b.String(), ";") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
