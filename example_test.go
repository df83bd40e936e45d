package silt_test

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/aretw0/silt"
)

// Example_basic demonstrates how to open a store, insert a record and
// query it back with a range filter.
func Example_basic() {
	// Create a temporary directory for the example
	tmpDir, err := os.MkdirTemp("", "silt-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	// Open the store. Collections are created lazily on first access.
	db, err := silt.Open(tmpDir)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	entries, err := db.Collection("journal_entries")
	if err != nil {
		log.Fatal(err)
	}

	// 1. Insert a record
	if _, err := entries.InsertOne(ctx, silt.MustMap(map[string]any{
		"date":    "2024-02-01",
		"summary": "First entry",
	})); err != nil {
		log.Fatal(err)
	}

	// 2. Query it back
	rec, err := entries.FindOne(ctx, silt.MustMap(map[string]any{
		"date": map[string]any{"$gte": "2024-01-15", "$lte": "2024-02-15"},
	}))
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Found entry: %s\n", rec["summary"])
	// Output:
	// Found entry: First entry
}

// ExampleOpenTypedCollection demonstrates the generic typed wrapper over
// an untyped collection.
func ExampleOpenTypedCollection() {
	tmpDir, err := os.MkdirTemp("", "silt-typed-example-*")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(tmpDir)

	db, err := silt.Open(tmpDir)
	if err != nil {
		log.Fatal(err)
	}

	// Define your Domain Model
	type Mood struct {
		ID    string `json:"id,omitempty"`
		Date  string `json:"date"`
		Score int    `json:"score"`
	}

	moods, err := silt.OpenTypedCollection[Mood](db, "moods")
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	// Insert a typed record
	id, err := moods.Insert(ctx, Mood{Date: "2024-02-01", Score: 8})
	if err != nil {
		log.Fatal(err)
	}

	// Retrieve it back
	mood, err := moods.Get(ctx, silt.MustMap(map[string]any{"id": id}))
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Mood score: %d\n", mood.Score)
	// Output:
	// Mood score: 8
}
