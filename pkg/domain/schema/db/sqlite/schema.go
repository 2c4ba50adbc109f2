package sqlite

import (
	"cmp"
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strconv"
	"strings"

	kschema "github.com/opst/crqboard/pkg/domain/schema/db"
	xe "github.com/opst/crqboard/pkg/errors"
)

//go:embed migrations/*.sql
var migrations embed.FS

// sqliteSchema is the schema of the sqlite activity store.
//
// Versions are files embedded in the binary, named "NNNN_description.sql".
// The version in the database is kept in "PRAGMA user_version".
type sqliteSchema struct {
	db         *sql.DB
	migrations fs.FS
}

var _ kschema.SchemaInterface = &sqliteSchema{}

type Option func(*sqliteSchema) *sqliteSchema

// WithMigrations replaces the embedded migrations.
//
// fsys should have *.sql files in its root.
func WithMigrations(fsys fs.FS) Option {
	return func(s *sqliteSchema) *sqliteSchema {
		s.migrations = fsys
		return s
	}
}

func New(db *sql.DB, options ...Option) *sqliteSchema {
	sub, err := fs.Sub(migrations, "migrations")
	if err != nil {
		panic(err)
	}
	s := &sqliteSchema{db: db, migrations: sub}
	for _, o := range options {
		s = o(s)
	}
	return s
}

type migration struct {
	Version int
	Name    string
}

func (s *sqliteSchema) versions() ([]migration, error) {
	entries, err := fs.ReadDir(s.migrations, ".")
	if err != nil {
		return nil, err
	}
	ms := []migration{}
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".sql" {
			continue
		}
		num, _, _ := strings.Cut(e.Name(), "_")
		v, err := strconv.Atoi(strings.TrimSuffix(num, ".sql"))
		if err != nil {
			continue
		}
		ms = append(ms, migration{Version: v, Name: e.Name()})
	}
	slices.SortFunc(ms, func(a, b migration) int { return cmp.Compare(a.Version, b.Version) })
	return ms, nil
}

func (s *sqliteSchema) Version(ctx context.Context) (int, error) {
	var v int
	if err := s.db.QueryRowContext(ctx, `PRAGMA user_version`).Scan(&v); err != nil {
		return -1, xe.Wrap(err)
	}
	return v, nil
}

func (s *sqliteSchema) Upgrade(ctx context.Context) error {
	ms, err := s.versions()
	if err != nil {
		return xe.Wrap(err)
	}
	current, err := s.Version(ctx)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return xe.Wrap(err)
	}
	defer tx.Rollback()

	for _, m := range ms {
		if m.Version <= current {
			continue
		}
		query, err := fs.ReadFile(s.migrations, m.Name)
		if err != nil {
			return xe.Wrap(err)
		}
		if _, err := tx.ExecContext(ctx, string(query)); err != nil {
			return xe.Wrap(fmt.Errorf("schema version %d: %s: %w", m.Version, m.Name, err))
		}
		// PRAGMA does not take parameters.
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`PRAGMA user_version = %d`, m.Version)); err != nil {
			return xe.Wrap(err)
		}
	}

	return xe.Wrap(tx.Commit())
}

// Context is canceled right away when the database is older than the embedded migrations.
//
// Migrations are part of the binary, so they never change while running.
func (s *sqliteSchema) Context(ctx context.Context) (context.Context, context.CancelFunc) {
	cctx, can := context.WithCancelCause(ctx)

	ms, err := s.versions()
	if err != nil {
		can(err)
		return cctx, func() {}
	}
	current, err := s.Version(ctx)
	if err != nil {
		can(err)
		return cctx, func() {}
	}
	if len(ms) != 0 {
		if latest := ms[len(ms)-1].Version; current < latest {
			can(fmt.Errorf("schema is outdated: %d (in db) < %d (embedded)", current, latest))
		}
	}
	return cctx, func() { can(nil) }
}
