package accounts

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/aretw0/silt/pkg/adapters/fs"
	"github.com/aretw0/silt/pkg/core"
)

// Repository holds every account in memory behind three maps: id ->
// account plus case-insensitive email and username indices. Mutations
// rewrite the full snapshot file; if the write fails, the in-memory state
// rolls back so maps and snapshot never diverge.
type Repository struct {
	path      string
	logger    *slog.Logger
	validator *Validator

	mu         sync.Mutex
	accounts   map[string]*Account
	byEmail    map[string]string // normalized email -> id
	byUsername map[string]string // normalized username -> id
	order      []string          // ids in insertion order
}

// NewRepository loads the snapshot at path and rebuilds the indices. A
// missing or unreadable snapshot starts the repository empty and writes
// the empty snapshot immediately.
func NewRepository(path string, logger *slog.Logger) (*Repository, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	r := &Repository{
		path:       path,
		logger:     logger,
		validator:  NewValidator(),
		accounts:   make(map[string]*Account),
		byEmail:    make(map[string]string),
		byUsername: make(map[string]string),
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Repository) load() error {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return r.save()
	}
	if err != nil {
		return fmt.Errorf("failed to read account snapshot: %w", err)
	}

	var stored []*Account
	if err := json.Unmarshal(data, &stored); err != nil {
		r.logger.Error("account snapshot corrupt, reinitializing empty",
			"path", r.path, "error", fmt.Errorf("%w: %v", core.ErrCorruptStorage, err))
		return r.save()
	}

	for _, acc := range stored {
		r.accounts[acc.ID] = acc
		r.byEmail[normalize(acc.Email)] = acc.ID
		r.byUsername[normalize(acc.Username)] = acc.ID
		r.order = append(r.order, acc.ID)
	}
	return nil
}

// save rewrites the full snapshot in insertion order. Callers hold the lock.
func (r *Repository) save() error {
	stored := make([]*Account, 0, len(r.order))
	for _, id := range r.order {
		stored = append(stored, r.accounts[id])
	}

	data, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize account snapshot: %w", err)
	}
	if err := fs.WriteFileAtomic(r.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write account snapshot: %w", err)
	}
	return nil
}

func normalize(s string) string {
	return strings.ToLower(s)
}

// Create validates the input, enforces email and username uniqueness and
// persists the new account.
func (r *Repository) Create(input CreateAccount) (*Account, error) {
	if err := r.validator.Validate(input); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[normalize(input.Email)]; taken {
		return nil, fmt.Errorf("%w: email %q is already registered", core.ErrUniqueness, input.Email)
	}
	if _, taken := r.byUsername[normalize(input.Username)]; taken {
		return nil, fmt.Errorf("%w: username %q is already taken", core.ErrUniqueness, input.Username)
	}

	acc := &Account{
		ID:             uuid.NewString(),
		Email:          input.Email,
		Username:       input.Username,
		FullName:       input.FullName,
		IsActive:       true,
		IsAdmin:        input.IsAdmin,
		GithubID:       input.GithubID,
		HashedPassword: string(hash),
		CreatedAt:      time.Now().UTC(),
		Connections:    []Connection{},
	}

	r.accounts[acc.ID] = acc
	r.byEmail[normalize(acc.Email)] = acc.ID
	r.byUsername[normalize(acc.Username)] = acc.ID
	r.order = append(r.order, acc.ID)

	if err := r.save(); err != nil {
		delete(r.accounts, acc.ID)
		delete(r.byEmail, normalize(acc.Email))
		delete(r.byUsername, normalize(acc.Username))
		r.order = r.order[:len(r.order)-1]
		return nil, err
	}

	r.logger.Info("account created", "id", acc.ID, "username", acc.Username)
	return acc.clone(), nil
}

// GetByID returns the account with the given identifier.
func (r *Repository) GetByID(id string) (*Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	acc, ok := r.accounts[id]
	if !ok {
		return nil, fmt.Errorf("%w: account %q", core.ErrNotFound, id)
	}
	return acc.clone(), nil
}

// GetByEmail looks the account up by case-insensitive email.
func (r *Repository) GetByEmail(email string) (*Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byEmail[normalize(email)]
	if !ok {
		return nil, fmt.Errorf("%w: no account for email %q", core.ErrNotFound, email)
	}
	return r.accounts[id].clone(), nil
}

// GetByUsername looks the account up by case-insensitive username.
func (r *Repository) GetByUsername(username string) (*Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byUsername[normalize(username)]
	if !ok {
		return nil, fmt.Errorf("%w: no account for username %q", core.ErrNotFound, username)
	}
	return r.accounts[id].clone(), nil
}

// Update applies a partial patch. Email or username changes re-check
// uniqueness (excluding the account itself) before anything mutates, and
// relocate the index entries on success. If the snapshot write fails, the
// maps roll back to their pre-update state.
func (r *Repository) Update(id string, patch Patch) (*Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.accounts[id]
	if !ok {
		return nil, fmt.Errorf("%w: account %q", core.ErrNotFound, id)
	}

	if patch.Email != nil && normalize(*patch.Email) != normalize(old.Email) {
		if _, taken := r.byEmail[normalize(*patch.Email)]; taken {
			return nil, fmt.Errorf("%w: email %q is already registered", core.ErrUniqueness, *patch.Email)
		}
	}
	if patch.Username != nil && normalize(*patch.Username) != normalize(old.Username) {
		if _, taken := r.byUsername[normalize(*patch.Username)]; taken {
			return nil, fmt.Errorf("%w: username %q is already taken", core.ErrUniqueness, *patch.Username)
		}
	}

	updated := old.clone()
	if patch.Email != nil {
		updated.Email = *patch.Email
	}
	if patch.Username != nil {
		updated.Username = *patch.Username
	}
	if patch.FullName != nil {
		updated.FullName = *patch.FullName
	}
	if patch.IsActive != nil {
		updated.IsActive = *patch.IsActive
	}
	if patch.IsAdmin != nil {
		updated.IsAdmin = *patch.IsAdmin
	}
	if patch.GithubID != nil {
		updated.GithubID = *patch.GithubID
	}
	if patch.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*patch.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		updated.HashedPassword = string(hash)
	}
	if patch.Connections != nil {
		updated.Connections = cloneConnections(patch.Connections)
	}

	r.accounts[id] = updated
	if normalize(updated.Email) != normalize(old.Email) {
		delete(r.byEmail, normalize(old.Email))
		r.byEmail[normalize(updated.Email)] = id
	}
	if normalize(updated.Username) != normalize(old.Username) {
		delete(r.byUsername, normalize(old.Username))
		r.byUsername[normalize(updated.Username)] = id
	}

	if err := r.save(); err != nil {
		r.accounts[id] = old
		if normalize(updated.Email) != normalize(old.Email) {
			delete(r.byEmail, normalize(updated.Email))
			r.byEmail[normalize(old.Email)] = id
		}
		if normalize(updated.Username) != normalize(old.Username) {
			delete(r.byUsername, normalize(updated.Username))
			r.byUsername[normalize(old.Username)] = id
		}
		return nil, err
	}

	return updated.clone(), nil
}

// Delete removes the account from all three maps and persists, reporting
// whether anything was deleted.
func (r *Repository) Delete(id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	acc, ok := r.accounts[id]
	if !ok {
		return false, nil
	}

	pos := -1
	for i, oid := range r.order {
		if oid == id {
			pos = i
			break
		}
	}

	delete(r.accounts, id)
	delete(r.byEmail, normalize(acc.Email))
	delete(r.byUsername, normalize(acc.Username))
	if pos != -1 {
		r.order = append(r.order[:pos], r.order[pos+1:]...)
	}

	if err := r.save(); err != nil {
		r.accounts[id] = acc
		r.byEmail[normalize(acc.Email)] = id
		r.byUsername[normalize(acc.Username)] = id
		if pos != -1 {
			r.order = append(r.order[:pos], append([]string{id}, r.order[pos:]...)...)
		}
		return false, err
	}

	r.logger.Info("account deleted", "id", id)
	return true, nil
}

// List returns every account in insertion order, without credential
// material.
func (r *Repository) List() []PublicAccount {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]PublicAccount, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.accounts[id].Public())
	}
	return out
}

// TouchLastLogin stamps the last-login timestamp and persists.
func (r *Repository) TouchLastLogin(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	old, ok := r.accounts[id]
	if !ok {
		return fmt.Errorf("%w: account %q", core.ErrNotFound, id)
	}

	updated := old.clone()
	now := time.Now().UTC()
	updated.LastLogin = &now

	r.accounts[id] = updated
	if err := r.save(); err != nil {
		r.accounts[id] = old
		return err
	}
	return nil
}
