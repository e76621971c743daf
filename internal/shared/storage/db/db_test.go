package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
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

func (nopStmt) Close() error                                    { return nil }
func (nopStmt) NumInput() int                                   { return -1 }
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

type failingPingDriver struct{ pings *int }

func (d failingPingDriver) Open(name string) (driver.Conn, error) {
	return failingPingConn{pings: d.pings}, nil
}

type failingPingConn struct {
	nopConn
	pings *int
}

func (c failingPingConn) Ping(ctx context.Context) error {
	*c.pings++
	return errors.New("connection refused")
}

func TestConnectRejectsEmptyURL(t *testing.T) {
	if _, err := Connect(context.Background(), "  ", DefaultServerOptions()); err == nil {
		t.Fatalf("expected error for empty url")
	}
}

func TestOptionsFromEnvAppliesOverrides(t *testing.T) {
	restore := withTestDriver(t)
	defer restore()

	t.Setenv("DB_MAX_OPEN_CONNS", "3")
	t.Setenv("DB_MAX_IDLE_CONNS", "2")
	t.Setenv("DB_CONN_MAX_LIFETIME", "10m")
	t.Setenv("DB_PING_TIMEOUT", "1s")
	t.Setenv("DB_CONNECT_WITHIN", "bogus")

	opts := OptionsFromEnv(DefaultServerOptions())
	if opts.MaxOpenConns != 3 || opts.MaxIdleConns != 2 {
		t.Fatalf("unexpected pool sizes: %+v", opts)
	}
	if opts.ConnMaxLifetime != 10*time.Minute || opts.PingTimeout != time.Second {
		t.Fatalf("unexpected durations: %+v", opts)
	}
	if opts.ConnectWithin != DefaultServerOptions().ConnectWithin {
		t.Fatalf("invalid duration should keep default, got %s", opts.ConnectWithin)
	}

	db, err := Connect(context.Background(), "postgres://ignored", opts)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer db.Close()
	if got := db.Stats().MaxOpenConnections; got != 3 {
		t.Fatalf("expected max open 3, got %d", got)
	}
}

var registerFailingDriverOnce sync.Once
var failingPings int

func TestConnectGivesUpAfterConnectWithin(t *testing.T) {
	registerFailingDriverOnce.Do(func() {
		sql.Register("dbtest-failing", failingPingDriver{pings: &failingPings})
	})
	prev := openDB
	openDB = func(name, dsn string) (*sql.DB, error) {
		return sql.Open("dbtest-failing", dsn)
	}
	defer func() { openDB = prev }()

	failingPings = 0
	opts := DefaultMigrateOptions()
	opts.PingTimeout = 50 * time.Millisecond
	opts.ConnectWithin = 400 * time.Millisecond

	_, err := Connect(context.Background(), "postgres://down", opts)
	if err == nil {
		t.Fatalf("expected connect to fail")
	}
	if failingPings < 2 {
		t.Fatalf("expected ping to be retried, got %d attempts", failingPings)
	}
}
