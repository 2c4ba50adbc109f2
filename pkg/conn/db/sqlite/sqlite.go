package sqlite

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"

	xe "github.com/opst/crqboard/pkg/errors"
	_ "modernc.org/sqlite"
)

// Memory is the uri of an in-memory database. It lives until the *sql.DB is closed.
const Memory = ":memory:"

var pragmas = []string{
	`PRAGMA foreign_keys = ON`,
	`PRAGMA busy_timeout = 5000`,
}

// Open opens the sqlite database file at uri.
//
// The directory of the file is created when missing.
// The returned database uses a single connection: sqlite has a single writer,
// and an in-memory database is private to its connection.
func Open(ctx context.Context, uri string) (*sql.DB, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		uri = Memory
	}
	if uri != Memory && !strings.HasPrefix(uri, "file:") {
		if dir := filepath.Dir(uri); dir != "" {
			if err := os.MkdirAll(dir, os.FileMode(0o750)); err != nil {
				return nil, xe.Wrap(err)
			}
		}
	}

	db, err := sql.Open("sqlite", uri)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, xe.Wrap(err)
	}

	p := append([]string{}, pragmas...)
	if uri != Memory {
		p = append(p, `PRAGMA journal_mode = WAL`)
	}
	for _, pragma := range p {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, xe.Wrap(err)
		}
	}
	return db, nil
}
