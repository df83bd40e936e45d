package silt

import (
	"context"
	"log/slog"

	"github.com/aretw0/silt/internal/platform"
	"github.com/aretw0/silt/pkg/accounts"
	"github.com/aretw0/silt/pkg/adapters/fs"
	"github.com/aretw0/silt/pkg/core"
	"github.com/aretw0/silt/pkg/typed"
)

// --- Types ---

// Value is a public alias for the universal value union.
type Value = core.Value

// Map is a public alias for string-keyed value mappings.
type Map = core.Map

// Record is a public alias for stored records.
type Record = core.Record

// Store is a public alias for the collection port.
type Store = core.Store

// Event is a public alias for collection change events.
type Event = core.Event

// TypedCollection is a public alias for the type-safe collection wrapper.
type TypedCollection[T any] = typed.Collection[T]

// FromGo converts a native Go value into a Value.
func FromGo(v any) (Value, error) {
	return core.FromGo(v)
}

// MustMap converts a native Go map into a Map, panicking on unsupported
// values. Intended for literals in tests and examples.
func MustMap(m map[string]any) Map {
	return core.MustMap(m)
}

// --- Configuration ---

// Option defines a functional option for configuring the store.
type Option = platform.Option

// WithLogger sets the logger for the store and the account repository.
func WithLogger(logger *slog.Logger) Option {
	return platform.WithLogger(logger)
}

// WithDatabase selects the database name under the data root.
func WithDatabase(name string) Option {
	return platform.WithDatabase(name)
}

// WithMustExist requires the database directory to already exist.
func WithMustExist(must bool) Option {
	return platform.WithMustExist(must)
}

// WithIDField overrides the identifier field for one collection.
func WithIDField(collection, field string) Option {
	return platform.WithIDField(collection, field)
}

// WithWatcherErrorHandler registers a callback for watcher runtime errors.
func WithWatcherErrorHandler(fn func(error)) Option {
	return platform.WithWatcherErrorHandler(fn)
}

// --- Factory ---

// DB bundles the generic document store with the account repository and
// its connection manager, all sharing one data root.
type DB struct {
	Store       *fs.Database
	Accounts    *accounts.Repository
	Connections *accounts.Connections
}

// Open initializes the data root and returns the assembled handle.
// Collections are created lazily on first access; the account snapshot is
// loaded (or created empty) immediately.
func Open(root string, opts ...Option) (*DB, error) {
	store, repo, err := platform.Open(root, opts...)
	if err != nil {
		return nil, err
	}

	return &DB{
		Store:       store,
		Accounts:    repo,
		Connections: accounts.NewConnections(repo),
	}, nil
}

// Collection returns the named collection as a core.Store.
func (db *DB) Collection(name string) (Store, error) {
	return db.Store.Collection(name)
}

// Watch emits an event whenever a collection matching the glob pattern
// changes on disk. The channel closes when the context is cancelled.
func (db *DB) Watch(ctx context.Context, pattern string) (<-chan Event, error) {
	return db.Store.Watch(ctx, pattern)
}

// --- Typed Factories ---

// NewTypedCollection creates a type-safe wrapper around a collection.
func NewTypedCollection[T any](store Store) *typed.Collection[T] {
	return typed.NewCollection[T](store)
}

// OpenTypedCollection opens a named collection directly as a typed handle.
func OpenTypedCollection[T any](db *DB, name string) (*typed.Collection[T], error) {
	store, err := db.Collection(name)
	if err != nil {
		return nil, err
	}
	return typed.NewCollection[T](store), nil
}
