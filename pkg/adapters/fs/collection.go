package fs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/aretw0/silt/pkg/core"
	"github.com/aretw0/silt/pkg/query"
)

// Collection implements core.Store over a single JSON array file. All
// operations take the collection lock, so concurrent use from one process
// is safe; cross-process writers are not coordinated beyond the atomic
// file swap.
type Collection struct {
	name    string
	path    string
	idField string
	logger  *slog.Logger

	mu sync.Mutex
}

var _ core.Store = (*Collection)(nil)

// Name returns the collection name.
func (c *Collection) Name() string { return c.name }

// load reads the backing file. A file that fails to parse is treated as
// lost: the error is logged and the collection restarts empty, with the
// file rewritten so the corruption does not resurface on the next read.
func (c *Collection) load() ([]core.Record, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read collection file: %w", err)
	}

	var recs []core.Record
	if err := json.Unmarshal(data, &recs); err != nil {
		c.logger.Error("collection file corrupt, reinitializing empty",
			"path", c.path, "error", fmt.Errorf("%w: %v", core.ErrCorruptStorage, err))
		if werr := WriteFileAtomic(c.path, []byte("[]"), 0644); werr != nil {
			return nil, fmt.Errorf("failed to reinitialize corrupt collection: %w", werr)
		}
		return nil, nil
	}
	return recs, nil
}

func (c *Collection) save(recs []core.Record) error {
	if recs == nil {
		recs = []core.Record{}
	}
	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize collection: %w", err)
	}
	if err := WriteFileAtomic(c.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write collection file: %w", err)
	}
	return nil
}

// FindOne returns the first record matching the filter, or core.ErrNotFound.
func (c *Collection) FindOne(ctx context.Context, filter core.Map) (core.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	recs, err := c.load()
	if err != nil {
		return nil, err
	}
	for _, rec := range recs {
		if query.Matches(rec, filter) {
			return rec.Clone(), nil
		}
	}
	return nil, core.ErrNotFound
}

// Find returns every record matching the filter, in file order. An empty
// result is not an error.
func (c *Collection) Find(ctx context.Context, filter core.Map) ([]core.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	recs, err := c.load()
	if err != nil {
		return nil, err
	}
	out := make([]core.Record, 0, len(recs))
	for _, rec := range recs {
		if query.Matches(rec, filter) {
			out = append(out, rec.Clone())
		}
	}
	return out, nil
}

// InsertOne appends a record and returns its identifier. A missing
// identifier field is filled with a generated UUID; a caller-supplied
// identifier that is already present fails with core.ErrUniqueness.
func (c *Collection) InsertOne(ctx context.Context, rec core.Record) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	recs, err := c.load()
	if err != nil {
		return "", err
	}

	stored := rec.Clone()
	id, ok := stored.ID(c.idField)
	if !ok || id == "" {
		id = uuid.NewString()
		stored[c.idField] = core.String(id)
	} else if c.findByID(recs, id) != -1 {
		return "", fmt.Errorf("%w: %s %q already exists in %s", core.ErrUniqueness, c.idField, id, c.name)
	}

	recs = append(recs, stored)
	if err := c.save(recs); err != nil {
		return "", err
	}

	c.logger.Debug("record inserted", "id", id)
	return id, nil
}

// UpdateOne applies an update to the first matching record. With upsert
// set and no match, a new record is synthesized from the filter's literal
// equality fields plus the update and inserted instead.
func (c *Collection) UpdateOne(ctx context.Context, filter, update core.Map, upsert bool) (core.UpdateResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	recs, err := c.load()
	if err != nil {
		return core.UpdateResult{}, err
	}

	for i, rec := range recs {
		if !query.Matches(rec, filter) {
			continue
		}

		updated, err := query.Apply(rec, update)
		if err != nil {
			return core.UpdateResult{}, err
		}
		// The identifier survives the update even if $set touched it.
		if id, ok := rec.ID(c.idField); ok {
			updated[c.idField] = core.String(id)
		}

		recs[i] = updated
		if err := c.save(recs); err != nil {
			return core.UpdateResult{}, err
		}
		return core.UpdateResult{Matched: true}, nil
	}

	if !upsert {
		return core.UpdateResult{}, nil
	}

	base := literalFields(filter)
	created, err := query.Apply(base, update)
	if err != nil {
		return core.UpdateResult{}, err
	}

	id, ok := created.ID(c.idField)
	if !ok || id == "" {
		id = uuid.NewString()
		created[c.idField] = core.String(id)
	} else if c.findByID(recs, id) != -1 {
		return core.UpdateResult{}, fmt.Errorf("%w: %s %q already exists in %s", core.ErrUniqueness, c.idField, id, c.name)
	}

	recs = append(recs, created)
	if err := c.save(recs); err != nil {
		return core.UpdateResult{}, err
	}

	c.logger.Debug("record upserted", "id", id)
	return core.UpdateResult{UpsertedID: id}, nil
}

// DeleteOne removes the first matching record, reporting whether anything
// was deleted.
func (c *Collection) DeleteOne(ctx context.Context, filter core.Map) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	recs, err := c.load()
	if err != nil {
		return false, err
	}

	for i, rec := range recs {
		if query.Matches(rec, filter) {
			recs = append(recs[:i], recs[i+1:]...)
			if err := c.save(recs); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

func (c *Collection) findByID(recs []core.Record, id string) int {
	for i, rec := range recs {
		if got, ok := rec.ID(c.idField); ok && got == id {
			return i
		}
	}
	return -1
}

// literalFields extracts the plain equality fields of a filter, skipping
// $or and operator conditions. These seed the record created by an upsert.
func literalFields(filter core.Map) core.Map {
	base := core.Map{}
	for field, cond := range filter {
		if strings.HasPrefix(field, "$") {
			continue
		}
		if ops, ok := cond.(core.Map); ok {
			operator := false
			for k := range ops {
				if strings.HasPrefix(k, "$") {
					operator = true
					break
				}
			}
			if operator {
				continue
			}
		}
		base[field] = core.Clone(cond)
	}
	return base
}
