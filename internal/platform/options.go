// Package platform wires the storage adapter and the account repository
// into the facade and holds the functional options shared by the library
// and the CLI.
package platform

import (
	"log/slog"
)

// DefaultDatabase is the database name used when none is configured.
const DefaultDatabase = "meverse"

// options holds the internal configuration assembled by Open.
type options struct {
	logger       *slog.Logger
	database     string
	mustExist    bool
	idFields     map[string]string
	watcherErrFn func(error)
}

// Option defines a functional option for configuring the store.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		database: DefaultDatabase,
		idFields: make(map[string]string),
	}
}

// WithLogger sets the logger for the store and the account repository.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithDatabase selects the database name (the subdirectory under the data
// root holding the collection files).
func WithDatabase(name string) Option {
	return func(o *options) {
		if name != "" {
			o.database = name
		}
	}
}

// WithMustExist requires the database directory to already exist instead
// of creating it on open.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.mustExist = must
	}
}

// WithIDField overrides the identifier field for one collection.
// Defaults to "id" for every collection not listed.
func WithIDField(collection, field string) Option {
	return func(o *options) {
		o.idFields[collection] = field
	}
}

// WithWatcherErrorHandler registers a callback for errors occurring during
// the Watch loop. This allows applications to react to runtime watcher
// failures (e.g. permission denied) which are otherwise only logged.
func WithWatcherErrorHandler(fn func(error)) Option {
	return func(o *options) {
		o.watcherErrFn = fn
	}
}
