// Package typed provides a generic, type-safe view over an untyped
// core.Store. Values cross the boundary through JSON, so any struct with
// json tags works as a record type.
package typed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/silt/pkg/core"
)

// Collection wraps a core.Store to provide type-safe access.
type Collection[T any] struct {
	store core.Store
}

// NewCollection creates a type-safe wrapper around an existing store.
func NewCollection[T any](store core.Store) *Collection[T] {
	return &Collection[T]{store: store}
}

// Insert persists a typed record and returns its identifier.
func (c *Collection[T]) Insert(ctx context.Context, item T) (string, error) {
	rec, err := toRecord(item)
	if err != nil {
		return "", err
	}
	return c.store.InsertOne(ctx, rec)
}

// Get retrieves the first record matching the filter and unmarshals it.
func (c *Collection[T]) Get(ctx context.Context, filter core.Map) (T, error) {
	var zero T

	rec, err := c.store.FindOne(ctx, filter)
	if err != nil {
		return zero, err
	}
	return fromRecord[T](rec)
}

// List returns all records matching the filter converted to the typed model.
func (c *Collection[T]) List(ctx context.Context, filter core.Map) ([]T, error) {
	recs, err := c.store.Find(ctx, filter)
	if err != nil {
		return nil, err
	}

	result := make([]T, 0, len(recs))
	for _, rec := range recs {
		item, err := fromRecord[T](rec)
		if err != nil {
			return nil, fmt.Errorf("failed to process record: %w", err)
		}
		result = append(result, item)
	}
	return result, nil
}

// Update applies an update specification to the first matching record.
func (c *Collection[T]) Update(ctx context.Context, filter, update core.Map, upsert bool) (core.UpdateResult, error) {
	return c.store.UpdateOne(ctx, filter, update, upsert)
}

// Delete removes the first record matching the filter.
func (c *Collection[T]) Delete(ctx context.Context, filter core.Map) (bool, error) {
	return c.store.DeleteOne(ctx, filter)
}

func toRecord(item any) (core.Record, error) {
	data, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal typed record: %w", err)
	}

	var rec core.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to convert typed record to map: %w", err)
	}
	return rec, nil
}

func fromRecord[T any](rec core.Record) (T, error) {
	var item T

	data, err := json.Marshal(rec)
	if err != nil {
		return item, fmt.Errorf("record marshal failed: %w", err)
	}
	if err := json.Unmarshal(data, &item); err != nil {
		return item, fmt.Errorf("unmarshal to target type failed: %w", err)
	}
	return item, nil
}
