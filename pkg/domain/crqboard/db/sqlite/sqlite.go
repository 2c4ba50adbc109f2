package sqlite

import (
	"context"
	"database/sql"
	"time"

	connsqlite "github.com/opst/crqboard/pkg/conn/db/sqlite"
	kactivity "github.com/opst/crqboard/pkg/domain/activity/db"
	kliteactivity "github.com/opst/crqboard/pkg/domain/activity/db/sqlite"
	dbInterface "github.com/opst/crqboard/pkg/domain/crqboard/db"
	kschema "github.com/opst/crqboard/pkg/domain/schema/db"
	kliteschema "github.com/opst/crqboard/pkg/domain/schema/db/sqlite"
	xe "github.com/opst/crqboard/pkg/errors"
)

type crqDBSqlite struct {
	db       *sql.DB
	activity kactivity.ActivityInterface
	schema   kschema.SchemaInterface
}

type Config struct {
	Clock func() time.Time
}

type Option func(*Config) *Config

func WithClock(now func() time.Time) Option {
	return func(c *Config) *Config {
		c.Clock = now
		return c
	}
}

// New opens the database file at uri, and upgrades its schema.
func New(ctx context.Context, uri string, options ...Option) (dbInterface.Database, error) {
	c := Config{Clock: time.Now}
	for _, option := range options {
		c = *option(&c)
	}

	db, err := connsqlite.Open(ctx, uri)
	if err != nil {
		return nil, err
	}

	schema := kliteschema.New(db)
	if err := schema.Upgrade(ctx); err != nil {
		db.Close()
		return nil, xe.Wrap(err)
	}

	return &crqDBSqlite{
		db:       db,
		activity: kliteactivity.New(db, kliteactivity.WithClock(c.Clock)),
		schema:   schema,
	}, nil
}

func (k *crqDBSqlite) Activity() kactivity.ActivityInterface {
	return k.activity
}

func (k *crqDBSqlite) Schema() kschema.SchemaInterface {
	return k.schema
}

func (k *crqDBSqlite) Close() error {
	return xe.Wrap(k.db.Close())
}
