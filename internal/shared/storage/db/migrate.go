package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/postgres/*.sql migrations/sqlite3/*.sql
var migrationFiles embed.FS

// RunMigrations applies embedded SQL migrations for the dialect via goose. If database is nil, it's a no-op.
func RunMigrations(ctx context.Context, database *sql.DB, dialect Dialect) error {
	if database == nil {
		return nil
	}
	dir, err := migrationDir(dialect)
	if err != nil {
		return err
	}
	goose.SetBaseFS(migrationFiles)
	if err := goose.SetDialect(string(dialect)); err != nil {
		return err
	}
	return goose.UpContext(ctx, database, dir)
}

func migrationDir(dialect Dialect) (string, error) {
	switch dialect {
	case DialectPostgres:
		return "migrations/postgres", nil
	case DialectSQLite:
		return "migrations/sqlite3", nil
	default:
		return "", fmt.Errorf("unsupported dialect %q", dialect)
	}
}
