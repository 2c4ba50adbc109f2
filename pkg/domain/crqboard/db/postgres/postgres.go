package postgres

import (
	"context"
	"time"

	kpool "github.com/opst/crqboard/pkg/conn/db/postgres/pool"
	kactivity "github.com/opst/crqboard/pkg/domain/activity/db"
	kpgactivity "github.com/opst/crqboard/pkg/domain/activity/db/postgres"
	dbInterface "github.com/opst/crqboard/pkg/domain/crqboard/db"
	kschema "github.com/opst/crqboard/pkg/domain/schema/db"
	kpgschema "github.com/opst/crqboard/pkg/domain/schema/db/postgres"
	xe "github.com/opst/crqboard/pkg/errors"
)

type crqDBPostgres struct {
	pool     kpool.Pool
	activity kactivity.ActivityInterface
	schema   kschema.SchemaInterface
}

type Config struct {
	SchemaRepository string
	Clock            func() time.Time
}

func DefaultConfig() Config {
	return Config{Clock: time.Now}
}

type Option func(*Config) *Config

func WithSchemaRepository(repository string) Option {
	return func(c *Config) *Config {
		c.SchemaRepository = repository
		return c
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Config) *Config {
		c.Clock = now
		return c
	}
}

// New connects to the database at url.
//
// Without schema repository, the schema is not versioned: Upgrade does nothing
// and the schema context is never canceled.
func New(
	ctx context.Context,
	url string,
	options ...Option,
) (dbInterface.Database, error) {
	pool, err := kpool.Connect(ctx, url)
	if err != nil {
		return nil, xe.Wrap(err)
	}

	c := DefaultConfig()
	for _, option := range options {
		c = *option(&c)
	}

	var schema kschema.SchemaInterface = kpgschema.Null()
	if c.SchemaRepository != "" {
		schema = kpgschema.New(pool, c.SchemaRepository)
	}

	return &crqDBPostgres{
		pool:     pool,
		activity: kpgactivity.New(pool, kpgactivity.WithClock(c.Clock)),
		schema:   schema,
	}, nil
}

func (k *crqDBPostgres) Activity() kactivity.ActivityInterface {
	return k.activity
}

func (k *crqDBPostgres) Schema() kschema.SchemaInterface {
	return k.schema
}

func (k *crqDBPostgres) Close() error {
	k.pool.Close()
	return nil
}
