package db

import (
	kactivity "github.com/opst/crqboard/pkg/domain/activity/db"
	kschema "github.com/opst/crqboard/pkg/domain/schema/db"
)

// Database is a connected store.
type Database interface {
	Activity() kactivity.ActivityInterface
	Schema() kschema.SchemaInterface
	Close() error
}
