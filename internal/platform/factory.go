package platform

import (
	"path/filepath"

	"github.com/aretw0/silt/pkg/accounts"
	"github.com/aretw0/silt/pkg/adapters/fs"
)

// Open builds the document database and the account repository under one
// data root. Collections live in <root>/<database>/; the account snapshot
// is its own durable unit at <root>/users/users.json, outside the generic
// per-database directory.
func Open(root string, opts ...Option) (*fs.Database, *accounts.Repository, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	db := fs.NewDatabase(fs.Config{
		Root:         root,
		Database:     o.database,
		MustExist:    o.mustExist,
		Logger:       o.logger,
		IDFields:     o.idFields,
		ErrorHandler: o.watcherErrFn,
	})
	if err := db.Initialize(); err != nil {
		return nil, nil, err
	}

	repo, err := accounts.NewRepository(filepath.Join(root, "users", "users.json"), o.logger)
	if err != nil {
		return nil, nil, err
	}

	return db, repo, nil
}
