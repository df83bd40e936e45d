// Package fs implements the core.Store port on top of plain JSON files.
// Each collection lives in a single file holding a JSON array of records;
// every mutation rewrites the file atomically.
package fs

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Config holds the configuration for a file-backed database.
type Config struct {
	Root      string            // Base data directory (holds one subdirectory per database).
	Database  string            // Database name, used as the subdirectory under Root.
	MustExist bool              // Fail Initialize if the database directory is missing.
	Logger    *slog.Logger
	IDFields  map[string]string // Map collection name -> identifier field (default "id").

	// ErrorHandler receives asynchronous errors from background workers
	// (the watcher). Nil means errors are only logged.
	ErrorHandler func(error)
}

// Database manages the collections of a single database directory.
type Database struct {
	Root string
	Name string

	config Config
	dir    string

	mu            sync.Mutex
	collections   map[string]*Collection
	watcherActive bool
}

// NewDatabase creates a database handle rooted at config.Root/config.Database.
// Call Initialize before using it.
func NewDatabase(config Config) *Database {
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	return &Database{
		Root:        config.Root,
		Name:        config.Database,
		config:      config,
		dir:         filepath.Join(config.Root, config.Database),
		collections: make(map[string]*Collection),
	}
}

// Initialize creates the database directory, or verifies it exists when
// MustExist is set.
func (db *Database) Initialize() error {
	if db.config.MustExist {
		info, err := os.Stat(db.dir)
		if os.IsNotExist(err) {
			return fmt.Errorf("database directory does not exist: %s", db.dir)
		}
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("database path is not a directory: %s", db.dir)
		}
		return nil
	}

	if err := os.MkdirAll(db.dir, 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	return nil
}

// Dir returns the directory holding the database's collection files.
func (db *Database) Dir() string {
	return db.dir
}

// Collection returns the named collection, creating its backing file with an
// empty array on first access. Handles are cached; the same name always
// yields the same *Collection.
func (db *Database) Collection(name string) (*Collection, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return nil, fmt.Errorf("invalid collection name: %q", name)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	if c, ok := db.collections[name]; ok {
		return c, nil
	}

	path := filepath.Join(db.dir, name+".json")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := WriteFileAtomic(path, []byte("[]"), 0644); err != nil {
			return nil, fmt.Errorf("failed to create collection %s: %w", name, err)
		}
		db.config.Logger.Debug("collection created", "collection", name, "path", path)
	} else if err != nil {
		return nil, err
	}

	c := &Collection{
		name:    name,
		path:    path,
		idField: db.idField(name),
		logger:  db.config.Logger.With("collection", name),
	}
	db.collections[name] = c
	return c, nil
}

// Collections lists the names of all collections present on disk.
func (db *Database) Collections() ([]string, error) {
	entries, err := os.ReadDir(db.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read database directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, TempFilePrefix) {
			continue
		}
		if filepath.Ext(name) != ".json" {
			continue
		}
		names = append(names, strings.TrimSuffix(name, ".json"))
	}
	return names, nil
}

func (db *Database) idField(collection string) string {
	if f, ok := db.config.IDFields[collection]; ok {
		return f
	}
	return "id"
}
