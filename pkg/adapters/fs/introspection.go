package fs

import (
	"github.com/aretw0/introspection"
)

// DatabaseState exposes internal state for observability.
type DatabaseState struct {
	Root          string   `json:"root"`
	Database      string   `json:"database"`
	Dir           string   `json:"dir"`
	Collections   []string `json:"open_collections"`
	MustExist     bool     `json:"must_exist"`
	WatcherActive bool     `json:"watcher_active"`
}

// State implements introspection.Introspectable.
func (db *Database) State() any {
	db.mu.Lock()
	defer db.mu.Unlock()

	open := make([]string, 0, len(db.collections))
	for name := range db.collections {
		open = append(open, name)
	}

	return DatabaseState{
		Root:          db.Root,
		Database:      db.Name,
		Dir:           db.dir,
		Collections:   open,
		MustExist:     db.config.MustExist,
		WatcherActive: db.watcherActive,
	}
}

// ComponentType implements introspection.Component.
func (db *Database) ComponentType() string {
	return "database"
}

var _ introspection.Introspectable = (*Database)(nil)
var _ introspection.Component = (*Database)(nil)

func (db *Database) setWatcherActive(active bool) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.watcherActive = active
}
