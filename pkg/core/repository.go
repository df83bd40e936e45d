package core

import "context"

// UpdateResult reports the outcome of UpdateOne.
type UpdateResult struct {
	// Matched is true when an existing record was found and replaced.
	Matched bool
	// UpsertedID carries the identifier of a record synthesized by an
	// upsert; empty otherwise.
	UpsertedID string
}

// Store defines the contract for one named collection of records.
// Adhering to this interface keeps collaborators (ingestion, chat,
// simulation, profile modules) independent of the underlying storage
// mechanism (filesystem today, SQL or a document database later).
//
// Operations are synchronous and run to completion; the context is
// accepted for API symmetry with future adapters, not for cancellation.
type Store interface {
	// FindOne returns the first record in collection order matching the
	// filter, or ErrNotFound when nothing matches.
	FindOne(ctx context.Context, filter Map) (Record, error)

	// Find returns all matching records in collection order. A nil filter
	// returns every record. The result is an eager snapshot, not a cursor.
	Find(ctx context.Context, filter Map) ([]Record, error)

	// InsertOne appends a record, generating an identifier if the record
	// lacks one, and returns the identifier used. A caller-supplied
	// identifier that already exists fails with ErrUniqueness.
	InsertOne(ctx context.Context, rec Record) (string, error)

	// UpdateOne replaces the first matching record with the result of
	// applying the update specification. With upsert enabled and no match,
	// it synthesizes a record from the filter's literal fields and the
	// update's operators.
	UpdateOne(ctx context.Context, filter, update Map, upsert bool) (UpdateResult, error)

	// DeleteOne removes the first matching record and reports whether
	// anything was removed.
	DeleteOne(ctx context.Context, filter Map) (bool, error)
}
