package accounts

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/silt/pkg/core"
)

// Connections manages the embedded connection list of accounts. Every
// mutation goes through Repository.Update, so the snapshot and indices
// stay consistent with the repository's own guarantees.
type Connections struct {
	repo *Repository
}

// NewConnections creates a connection manager over the repository.
func NewConnections(repo *Repository) *Connections {
	return &Connections{repo: repo}
}

// ConnectionPatch carries partial connection updates; nil fields are left
// untouched. Status changes go through SetStatus, which enforces the
// lifecycle transitions.
type ConnectionPatch struct {
	Name        *string
	Description *string
	Settings    map[string]any
	Metadata    map[string]any
}

// Add appends a connection to the account. A missing identifier is
// generated; a missing status defaults to pending. An identifier already
// present in the account's list is rejected.
func (c *Connections) Add(accountID string, conn Connection) (*Connection, error) {
	acc, err := c.repo.GetByID(accountID)
	if err != nil {
		return nil, err
	}

	if conn.ID == "" {
		conn.ID = uuid.NewString()
	}
	if conn.Status == "" {
		conn.Status = StatusPending
	}
	for _, existing := range acc.Connections {
		if existing.ID == conn.ID {
			return nil, fmt.Errorf("%w: connection %q already exists on account %s",
				core.ErrUniqueness, conn.ID, accountID)
		}
	}

	list := append(acc.Connections, conn.clone())
	if _, err := c.repo.Update(accountID, Patch{Connections: list}); err != nil {
		return nil, err
	}

	stored := conn.clone()
	return &stored, nil
}

// List returns the account's connections in insertion order.
func (c *Connections) List(accountID string) ([]Connection, error) {
	acc, err := c.repo.GetByID(accountID)
	if err != nil {
		return nil, err
	}
	return acc.Connections, nil
}

// Get returns one connection by its identifier within the account.
func (c *Connections) Get(accountID, connectionID string) (*Connection, error) {
	acc, err := c.repo.GetByID(accountID)
	if err != nil {
		return nil, err
	}
	for i := range acc.Connections {
		if acc.Connections[i].ID == connectionID {
			return &acc.Connections[i], nil
		}
	}
	return nil, fmt.Errorf("%w: connection %q on account %s", core.ErrNotFound, connectionID, accountID)
}

// Update shallow-merges patch fields into the matching connection.
func (c *Connections) Update(accountID, connectionID string, patch ConnectionPatch) (*Connection, error) {
	return c.mutate(accountID, connectionID, func(conn *Connection) error {
		if patch.Name != nil {
			conn.Name = *patch.Name
		}
		if patch.Description != nil {
			conn.Description = *patch.Description
		}
		if patch.Settings != nil {
			conn.Settings = cloneAnyMap(patch.Settings)
		}
		if patch.Metadata != nil {
			conn.Metadata = cloneAnyMap(patch.Metadata)
		}
		return nil
	})
}

// Remove filters the connection out of the account's list, reporting
// whether anything was removed.
func (c *Connections) Remove(accountID, connectionID string) (bool, error) {
	acc, err := c.repo.GetByID(accountID)
	if err != nil {
		return false, err
	}

	list := make([]Connection, 0, len(acc.Connections))
	for _, conn := range acc.Connections {
		if conn.ID != connectionID {
			list = append(list, conn)
		}
	}
	if len(list) == len(acc.Connections) {
		return false, nil
	}

	if _, err := c.repo.Update(accountID, Patch{Connections: list}); err != nil {
		return false, err
	}
	return true, nil
}

// SetStatus moves the connection through its lifecycle. Entering
// connected stamps the connection timestamp and clears any previous error
// message; entering error records the message. Transitions outside the
// lifecycle fail with core.ErrInvalidTransition.
func (c *Connections) SetStatus(accountID, connectionID string, status ConnectionStatus, errorMessage string) (*Connection, error) {
	return c.mutate(accountID, connectionID, func(conn *Connection) error {
		if !canTransition(conn.Status, status) {
			return fmt.Errorf("%w: %s -> %s", core.ErrInvalidTransition, conn.Status, status)
		}

		conn.Status = status
		switch status {
		case StatusConnected:
			now := time.Now().UTC()
			conn.ConnectedAt = &now
			conn.ErrorMessage = ""
		case StatusError:
			conn.ErrorMessage = errorMessage
		}
		return nil
	})
}

// TouchLastSync stamps the connection's last successful sync time.
func (c *Connections) TouchLastSync(accountID, connectionID string) (*Connection, error) {
	return c.mutate(accountID, connectionID, func(conn *Connection) error {
		now := time.Now().UTC()
		conn.LastSync = &now
		return nil
	})
}

// canTransition encodes the caller-driven lifecycle: pending and
// disconnected accounts connect, connected ones disconnect, anything can
// fail into error, and error retries back to connected.
func canTransition(from, to ConnectionStatus) bool {
	if to == StatusError {
		return true
	}
	switch from {
	case StatusPending, StatusDisconnected, StatusError:
		return to == StatusConnected
	case StatusConnected:
		return to == StatusDisconnected
	default:
		return false
	}
}

func (c *Connections) mutate(accountID, connectionID string, fn func(*Connection) error) (*Connection, error) {
	acc, err := c.repo.GetByID(accountID)
	if err != nil {
		return nil, err
	}

	idx := -1
	for i := range acc.Connections {
		if acc.Connections[i].ID == connectionID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, fmt.Errorf("%w: connection %q on account %s", core.ErrNotFound, connectionID, accountID)
	}

	if err := fn(&acc.Connections[idx]); err != nil {
		return nil, err
	}

	if _, err := c.repo.Update(accountID, Patch{Connections: acc.Connections}); err != nil {
		return nil, err
	}

	updated := acc.Connections[idx].clone()
	return &updated, nil
}
