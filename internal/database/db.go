package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Dialect names the SQL engine behind a *sql.DB.  Queries are written with
// '?' placeholders, which both supported engines accept; the few places where
// the engines differ go through the methods below.
type Dialect string

const (
	MySQL  Dialect = "mysql"
	SQLite Dialect = "sqlite"
)

// LockClause is appended to guard reads that precede a write in the same
// transaction.  SQLite serialises writers at the database level (the DSN
// opens immediate transactions), so it has no row lock clause.
func (d Dialect) LockClause() string {
	if d == MySQL {
		return " FOR UPDATE"
	}
	return ""
}

// ReadTxOptions returns the options for read-only snapshot transactions used
// by listings.  The SQLite driver rejects non-default isolation levels.
func (d Dialect) ReadTxOptions() *sql.TxOptions {
	if d == MySQL {
		return &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	}
	return nil
}

// IsDuplicate reports whether err is a primary key or unique key violation.
func (d Dialect) IsDuplicate(err error) bool {
	if err == nil {
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062 // ER_DUP_ENTRY
	}
	var liteErr *msqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return false
}

// Options describes how to reach the database.  Only the fields relevant to
// the chosen driver are read.
type Options struct {
	Driver string
	User   string
	Pass   string
	Host   string
	Port   string
	Name   string
	Path   string
}

// DSN builds the data source name for the configured driver.
func (o Options) DSN() (string, error) {
	switch Dialect(o.Driver) {
	case MySQL:
		cfg := mysql.NewConfig()
		cfg.User = o.User
		cfg.Passwd = o.Pass
		cfg.Net = "tcp"
		cfg.Addr = o.Host + ":" + o.Port
		cfg.DBName = o.Name
		// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
		cfg.ParseTime = true
		cfg.Loc = time.UTC
		cfg.Params = map[string]string{"charset": "utf8mb4"}
		return cfg.FormatDSN(), nil
	case SQLite:
		if o.Path == "" {
			return "", fmt.Errorf("sqlite path is required")
		}
		return "file:" + o.Path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate", nil
	default:
		return "", fmt.Errorf("unsupported driver %q", o.Driver)
	}
}

// Open connects to the configured database and verifies the connection.
func Open(o Options) (*sql.DB, Dialect, error) {
	dsn, err := o.DSN()
	if err != nil {
		return nil, "", err
	}
	dialect := Dialect(o.Driver)
	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", dialect, err)
	}

	// Pool settings
	if dialect == SQLite {
		// one writer at a time; a single connection also keeps
		// transactions from waiting on each other's locks
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, "", fmt.Errorf("ping %s: %w", dialect, err)
	}
	return db, dialect, nil
}
