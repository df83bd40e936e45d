// Package silt is the Composition Root for the silt embedded document store.
//
// It connects the storage vocabulary (pkg/core), the filter/update algebra
// (pkg/query) and the file-backed adapter (pkg/adapters/fs) behind one
// handle, following the Hexagonal Architecture pattern.
//
// Philosophy:
//
// Silt is an embedded, schema-free document database for personal-data
// backends. Every collection is one JSON file; every record is a plain
// mapping of values. On top of the generic store sit two specialized
// layers: an account repository enforcing case-insensitive email and
// username uniqueness through in-memory indices, and a connection manager
// maintaining the linked data sources embedded in each account.
//
// Features:
//
//   - **Schema-free collections**: untyped records with filtered queries
//     ($gte, $lte, $in, $regex, $or) and a $set/$inc update algebra with upsert.
//   - **Account repository**: O(1) lookups by id, email and username with
//     uniqueness invariants and full-snapshot persistence.
//   - **Connection lifecycle**: embedded sub-records with a caller-driven
//     status state machine.
//   - **Typed Retrieval**: generic wrapper (`NewTypedCollection[T]`) for
//     type-safe collection access.
//   - **Reactivity**: glob-filtered change events from a filesystem watcher.
//
// Usage:
//
//	db, err := silt.Open("./data",
//		silt.WithDatabase("meverse"),
//		silt.WithLogger(logger),
//	)
//
//	entries, err := db.Collection("journal_entries")
//	id, err := entries.InsertOne(ctx, silt.MustMap(map[string]any{"date": "2024-02-01"}))
package silt
