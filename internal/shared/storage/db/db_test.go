package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"sync"
	"testing"
	"time"
)

type nopDriver struct{}

func (d nopDriver) Open(name string) (driver.Conn, error) {
	return nopConn{}, nil
}

type nopConn struct{}

func (nopConn) Prepare(query string) (driver.Stmt, error) { return nopStmt{}, nil }
func (nopConn) Close() error                              { return nil }
func (nopConn) Begin() (driver.Tx, error)                 { return nopTx{}, nil }
func (nopConn) Ping(ctx context.Context) error            { return nil }

type nopStmt struct{}

func (nopStmt) Close() error                                   { return nil }
func (nopStmt) NumInput() int                                  { return -1 }
func (nopStmt) Exec(args []driver.Value) (driver.Result, error) { return nopResult{}, nil }
func (nopStmt) Query(args []driver.Value) (driver.Rows, error)  { return nopRows{}, nil }

type nopTx struct{}

func (nopTx) Commit() error   { return nil }
func (nopTx) Rollback() error { return nil }

type nopResult struct{}

func (nopResult) LastInsertId() (int64, error) { return 0, nil }
func (nopResult) RowsAffected() (int64, error) { return 0, nil }

type nopRows struct{}

func (nopRows) Columns() []string              { return []string{} }
func (nopRows) Close() error                   { return nil }
func (nopRows) Next(dest []driver.Value) error { return driver.ErrBadConn }

var registerTestDriverOnce sync.Once

func ensureTestDriverRegistered() {
	registerTestDriverOnce.Do(func() {
		sql.Register("dbtest", nopDriver{})
	})
}

func withTestDriver(t *testing.T) func() {
	t.Helper()
	ensureTestDriverRegistered()
	prev := openDB
	openDB = func(name, dsn string) (*sql.DB, error) {
		return sql.Open("dbtest", dsn)
	}
	return func() {
		openDB = prev
	}
}

func TestOptionsFromEnvAppliesOverrides(t *testing.T) {
	restore := withTestDriver(t)
	defer restore()

	t.Setenv("DB_MAX_OPEN_CONNS", "7")
	t.Setenv("DB_MAX_IDLE_CONNS", "3")
	t.Setenv("DB_CONN_MAX_LIFETIME", "20m")
	t.Setenv("DB_CONN_MAX_IDLE_TIME", "45s")
	t.Setenv("DB_PING_TIMEOUT", "1s")

	opts := OptionsFromEnv(DefaultServerOptions())
	db, err := Connect(context.Background(), "ignored", opts)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer db.Close()

	stats := db.Stats()
	if stats.MaxOpenConnections != 7 {
		t.Fatalf("expected MaxOpenConnections=7, got %d", stats.MaxOpenConnections)
	}
	if opts.MaxIdleConns != 3 {
		t.Fatalf("expected MaxIdleConns=3, got %d", opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime != 20*time.Minute {
		t.Fatalf("expected ConnMaxLifetime=20m, got %s", opts.ConnMaxLifetime)
	}
	if opts.ConnMaxIdleTime != 45*time.Second {
		t.Fatalf("expected ConnMaxIdleTime=45s, got %s", opts.ConnMaxIdleTime)
	}
	if opts.PingTimeout != time.Second {
		t.Fatalf("expected PingTimeout=1s, got %s", opts.PingTimeout)
	}
}

func TestParseURLSelectsDriver(t *testing.T) {
	tests := []struct {
		url     string
		driver  string
		dsn     string
		dialect Dialect
	}{
		{url: "postgres://u:p@localhost:5432/fit", driver: "pgx", dsn: "postgres://u:p@localhost:5432/fit", dialect: DialectPostgres},
		{url: "sqlite://fitresume.db", driver: "sqlite3", dsn: "fitresume.db", dialect: DialectSQLite},
		{url: "sqlite3:///var/lib/fit.db", driver: "sqlite3", dsn: "/var/lib/fit.db", dialect: DialectSQLite},
		{url: "sqlite://", driver: "sqlite3", dsn: ":memory:", dialect: DialectSQLite},
		{url: "file:fit.db?cache=shared", driver: "sqlite3", dsn: "file:fit.db?cache=shared", dialect: DialectSQLite},
	}
	for _, tt := range tests {
		driver, dsn, dialect := ParseURL(tt.url)
		if driver != tt.driver || dsn != tt.dsn || dialect != tt.dialect {
			t.Fatalf("ParseURL(%q) = %q %q %q", tt.url, driver, dsn, dialect)
		}
	}
}

func TestConnectSQLiteUsesSingleConnection(t *testing.T) {
	restore := withTestDriver(t)
	defer restore()

	db, err := Connect(context.Background(), "sqlite://ignored.db", DefaultServerOptions())
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer db.Close()

	if got := db.Stats().MaxOpenConnections; got != 1 {
		t.Fatalf("expected MaxOpenConnections=1, got %d", got)
	}
}

func TestConnectRejectsEmptyURL(t *testing.T) {
	if _, err := Connect(context.Background(), "  ", DefaultServerOptions()); err == nil {
		t.Fatalf("expected error for empty url")
	}
}

func TestMigrationDir(t *testing.T) {
	if dir, err := migrationDir(DialectSQLite); err != nil || dir != "migrations/sqlite3" {
		t.Fatalf("unexpected sqlite dir %q err=%v", dir, err)
	}
	if _, err := migrationDir(Dialect("mysql")); err == nil {
		t.Fatalf("expected error for unknown dialect")
	}
	for _, dir := range []string{"migrations/postgres", "migrations/sqlite3"} {
		entries, err := migrationFiles.ReadDir(dir)
		if err != nil || len(entries) == 0 {
			t.Fatalf("expected embedded migrations in %s: %v", dir, err)
		}
	}
}
