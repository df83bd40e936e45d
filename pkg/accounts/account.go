// Package accounts implements the user account repository: an in-memory
// primary map plus case-insensitive email and username indices, persisted
// as one full JSON snapshot, with an embedded sub-collection of linked
// data-source connections per account.
package accounts

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// ConnectionType identifies the external service a connection links to.
type ConnectionType string

const (
	TypeSpotify        ConnectionType = "spotify"
	TypeGoogleCalendar ConnectionType = "google_calendar"
	TypeGoogleFit      ConnectionType = "google_fit"
	TypeTwitter        ConnectionType = "twitter"
	TypeFacebook       ConnectionType = "facebook"
	TypeAppleHealth    ConnectionType = "apple_health"
	TypeFitbit         ConnectionType = "fitbit"
	TypeGithub         ConnectionType = "github"
	TypeNotion         ConnectionType = "notion"
	TypeCustomAPI      ConnectionType = "custom_api"
)

// ConnectionStatus is the lifecycle state of a connection.
type ConnectionStatus string

const (
	StatusPending      ConnectionStatus = "pending"
	StatusConnected    ConnectionStatus = "connected"
	StatusDisconnected ConnectionStatus = "disconnected"
	StatusError        ConnectionStatus = "error"
)

// Connection is a linked external data source embedded in an account.
// Its identifier is unique only within the owning account.
type Connection struct {
	ID           string           `json:"id"`
	Type         ConnectionType   `json:"type"`
	Name         string           `json:"name,omitempty"`
	Description  string           `json:"description,omitempty"`
	Status       ConnectionStatus `json:"status"`
	ConnectedAt  *time.Time       `json:"connected_at,omitempty"`
	LastSync     *time.Time       `json:"last_sync,omitempty"`
	Settings     map[string]any   `json:"settings,omitempty"`
	Metadata     map[string]any   `json:"metadata,omitempty"`
	ErrorMessage string           `json:"error_message,omitempty"`
}

// Account is the stored account record, credential material included.
type Account struct {
	ID             string       `json:"id"`
	Email          string       `json:"email"`
	Username       string       `json:"username"`
	FullName       string       `json:"full_name,omitempty"`
	IsActive       bool         `json:"is_active"`
	IsAdmin        bool         `json:"is_admin"`
	GithubID       string       `json:"github_id,omitempty"`
	HashedPassword string       `json:"hashed_password"`
	CreatedAt      time.Time    `json:"created_at"`
	LastLogin      *time.Time   `json:"last_login,omitempty"`
	Connections    []Connection `json:"connections"`
}

// VerifyPassword checks a plaintext password against the stored hash.
func (a *Account) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.HashedPassword), []byte(password)) == nil
}

// Public returns the account without credential material.
func (a *Account) Public() PublicAccount {
	return PublicAccount{
		ID:        a.ID,
		Email:     a.Email,
		Username:  a.Username,
		FullName:  a.FullName,
		IsActive:  a.IsActive,
		IsAdmin:   a.IsAdmin,
		GithubID:  a.GithubID,
		CreatedAt: a.CreatedAt,
		LastLogin: a.LastLogin,
	}
}

func (a *Account) clone() *Account {
	out := *a
	if a.LastLogin != nil {
		t := *a.LastLogin
		out.LastLogin = &t
	}
	out.Connections = cloneConnections(a.Connections)
	return &out
}

func cloneConnections(conns []Connection) []Connection {
	out := make([]Connection, len(conns))
	for i, c := range conns {
		out[i] = c.clone()
	}
	return out
}

func (c Connection) clone() Connection {
	out := c
	if c.ConnectedAt != nil {
		t := *c.ConnectedAt
		out.ConnectedAt = &t
	}
	if c.LastSync != nil {
		t := *c.LastSync
		out.LastSync = &t
	}
	out.Settings = cloneAnyMap(c.Settings)
	out.Metadata = cloneAnyMap(c.Metadata)
	return out
}

func cloneAnyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// PublicAccount is the projection returned by List: everything except the
// password hash and the embedded connections.
type PublicAccount struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Username  string     `json:"username"`
	FullName  string     `json:"full_name,omitempty"`
	IsActive  bool       `json:"is_active"`
	IsAdmin   bool       `json:"is_admin"`
	GithubID  string     `json:"github_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

// CreateAccount carries the input for Repository.Create.
type CreateAccount struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,min=3,max=32"`
	FullName string `json:"full_name" validate:"omitempty,max=128"`
	Password string `json:"password" validate:"required,password"`
	IsAdmin  bool   `json:"is_admin"`
	GithubID string `json:"github_id"`
}

// Patch carries partial account updates; nil fields are left untouched.
// A non-nil Connections slice replaces the embedded list wholesale, which
// is how the connection manager persists its mutations.
type Patch struct {
	Email       *string
	Username    *string
	FullName    *string
	IsActive    *bool
	IsAdmin     *bool
	GithubID    *string
	Password    *string
	Connections []Connection
}
