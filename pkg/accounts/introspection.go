package accounts

import (
	"github.com/aretw0/introspection"
)

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	Path     string `json:"path"`
	Accounts int    `json:"accounts"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	r.mu.Lock()
	defer r.mu.Unlock()

	return RepositoryState{
		Path:     r.path,
		Accounts: len(r.accounts),
	}
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "account-repository"
}

var _ introspection.Introspectable = (*Repository)(nil)
var _ introspection.Component = (*Repository)(nil)
