package crqboard

import (
	"context"
	"fmt"
	"time"

	"github.com/opst/crqboard/pkg/auth"
	sconf "github.com/opst/crqboard/pkg/configs/server"
	"github.com/opst/crqboard/pkg/domain/activity"
	dbInterface "github.com/opst/crqboard/pkg/domain/crqboard/db"
	"github.com/opst/crqboard/pkg/domain/crqboard/db/postgres"
	"github.com/opst/crqboard/pkg/domain/crqboard/db/sqlite"
	"github.com/opst/crqboard/pkg/domain/schema"
)

type CRQBoard interface {
	Config() *sconf.ServerConfig

	Activity() activity.Interface
	Schema() schema.Interface

	// Auth authenticates users of the configured user table.
	Auth() auth.Interface

	// Close disconnects the store.
	Close() error
}

type crqboard struct {
	config   *sconf.ServerConfig
	database dbInterface.Database

	activity activity.Interface
	schema   schema.Interface
	auth     auth.Interface
}

// New connects to the store configured, and builds domain interfaces on it.
func New(
	ctx context.Context,
	config *sconf.ServerConfig,
	options ...Option,
) (CRQBoard, error) {
	opt := &_options{clock: time.Now}
	for _, o := range options {
		o(opt)
	}

	database, err := Connect(ctx, config.Database(), opt.clock)
	if err != nil {
		return nil, err
	}
	return Attach(config, database, options...), nil
}

// Connect opens the store by its configuration.
func Connect(ctx context.Context, conf *sconf.DatabaseConfig, clock func() time.Time) (dbInterface.Database, error) {
	switch conf.Driver() {
	case sconf.DriverPostgres:
		return postgres.New(
			ctx, conf.URI(),
			postgres.WithSchemaRepository(conf.SchemaRepository()),
			postgres.WithClock(clock),
		)
	case sconf.DriverSqlite:
		return sqlite.New(ctx, conf.URI(), sqlite.WithClock(clock))
	default:
		return nil, fmt.Errorf("unknown database driver: %s", conf.Driver())
	}
}

// Attach builds domain interfaces on a connected store.
func Attach(config *sconf.ServerConfig, database dbInterface.Database, options ...Option) CRQBoard {
	opt := &_options{clock: time.Now}
	for _, o := range options {
		o(opt)
	}

	return &crqboard{
		config:   config,
		database: database,
		activity: activity.New(
			database.Activity(), config.Catalogue(),
			activity.WithClock(opt.clock),
			activity.WithLocation(config.Clock().Location()),
		),
		schema: schema.New(database.Schema()),
		auth: auth.New(
			config.Auth().Secret(), config.Auth().TTL(), config.Auth().Users(),
			auth.WithClock(opt.clock),
		),
	}
}

type Option func(*_options)

type _options struct {
	clock func() time.Time
}

// WithClock replaces the clock used for operator times and record timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *_options) {
		o.clock = now
	}
}

func (k *crqboard) Config() *sconf.ServerConfig {
	return k.config
}

func (k *crqboard) Activity() activity.Interface {
	return k.activity
}

func (k *crqboard) Schema() schema.Interface {
	return k.schema
}

func (k *crqboard) Auth() auth.Interface {
	return k.auth
}

func (k *crqboard) Close() error {
	return k.database.Close()
}
