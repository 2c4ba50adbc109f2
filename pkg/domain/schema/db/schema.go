package db

import "context"

// SchemaInterface is the versioned schema of the activity store.
type SchemaInterface interface {
	// Upgrade applies schema versions newer than the one in the database.
	Upgrade(ctx context.Context) error

	// Version returns the schema version in the database.
	//
	// A database without any schema is version 0.
	Version(ctx context.Context) (int, error)

	// Context returns a context which is canceled when the schema in the database gets outdated.
	//
	// # Returns
	//
	// - context.Context: canceled with a cause when the database is older than the latest known schema.
	//
	// - context.CancelFunc: stops watching.
	Context(ctx context.Context) (context.Context, context.CancelFunc)
}
