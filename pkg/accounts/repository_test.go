package accounts

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/silt/pkg/core"
)

func newTestRepo(t *testing.T) (*Repository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "users", "users.json")
	repo, err := NewRepository(path, nil)
	if err != nil {
		t.Fatalf("repository failed: %v", err)
	}
	return repo, path
}

func alice() CreateAccount {
	return CreateAccount{
		Email:    "alice@example.com",
		Username: "alice",
		FullName: "Alice Example",
		Password: "Sup3rsecret",
	}
}

func TestCreate(t *testing.T) {
	repo, _ := newTestRepo(t)

	t.Run("Creates And Hashes", func(t *testing.T) {
		acc, err := repo.Create(alice())
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
		if acc.ID == "" {
			t.Error("expected generated id")
		}
		if !acc.IsActive {
			t.Error("new accounts start active")
		}
		if acc.HashedPassword == "Sup3rsecret" || acc.HashedPassword == "" {
			t.Error("password must be stored hashed")
		}
		if !acc.VerifyPassword("Sup3rsecret") {
			t.Error("hashed password does not verify")
		}
		if acc.VerifyPassword("wrong") {
			t.Error("wrong password must not verify")
		}
	})

	t.Run("Rejects Case-Insensitive Email Clash", func(t *testing.T) {
		_, err := repo.Create(CreateAccount{
			Email:    "ALICE@Example.COM",
			Username: "bob",
			Password: "Sup3rsecret",
		})
		if !errors.Is(err, core.ErrUniqueness) {
			t.Errorf("expected ErrUniqueness, got %v", err)
		}
	})

	t.Run("Rejects Case-Insensitive Username Clash", func(t *testing.T) {
		_, err := repo.Create(CreateAccount{
			Email:    "other@example.com",
			Username: "Alice",
			Password: "Sup3rsecret",
		})
		if !errors.Is(err, core.ErrUniqueness) {
			t.Errorf("expected ErrUniqueness, got %v", err)
		}
	})

	t.Run("Rejects Weak Password", func(t *testing.T) {
		_, err := repo.Create(CreateAccount{
			Email:    "weak@example.com",
			Username: "weakling",
			Password: "short",
		})
		var verrs ValidationErrors
		if !errors.As(err, &verrs) {
			t.Errorf("expected validation errors, got %v", err)
		}
	})

	t.Run("Rejects Invalid Email", func(t *testing.T) {
		_, err := repo.Create(CreateAccount{
			Email:    "not-an-email",
			Username: "someone",
			Password: "Sup3rsecret",
		})
		var verrs ValidationErrors
		if !errors.As(err, &verrs) {
			t.Errorf("expected validation errors, got %v", err)
		}
	})
}

func TestLookups(t *testing.T) {
	repo, _ := newTestRepo(t)
	created, err := repo.Create(alice())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	t.Run("By ID", func(t *testing.T) {
		got, err := repo.GetByID(created.ID)
		if err != nil {
			t.Fatalf("lookup failed: %v", err)
		}
		if got.Username != "alice" {
			t.Errorf("unexpected account: %+v", got)
		}
	})

	t.Run("By Email Ignores Case", func(t *testing.T) {
		got, err := repo.GetByEmail("Alice@EXAMPLE.com")
		if err != nil {
			t.Fatalf("lookup failed: %v", err)
		}
		if got.ID != created.ID {
			t.Error("wrong account returned")
		}
	})

	t.Run("By Username Ignores Case", func(t *testing.T) {
		got, err := repo.GetByUsername("ALICE")
		if err != nil {
			t.Fatalf("lookup failed: %v", err)
		}
		if got.ID != created.ID {
			t.Error("wrong account returned")
		}
	})

	t.Run("Unknown Is ErrNotFound", func(t *testing.T) {
		if _, err := repo.GetByID("nope"); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Returned Accounts Are Copies", func(t *testing.T) {
		got, _ := repo.GetByID(created.ID)
		got.Username = "mallory"

		again, _ := repo.GetByID(created.ID)
		if again.Username != "alice" {
			t.Error("mutating a returned account leaked into the repository")
		}
	})
}

func TestUpdate(t *testing.T) {
	repo, _ := newTestRepo(t)
	created, err := repo.Create(alice())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	t.Run("Rename Relocates Index", func(t *testing.T) {
		name := "alice2"
		if _, err := repo.Update(created.ID, Patch{Username: &name}); err != nil {
			t.Fatalf("update failed: %v", err)
		}

		if _, err := repo.GetByUsername("alice"); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("old username still indexed: %v", err)
		}
		got, err := repo.GetByUsername("alice2")
		if err != nil {
			t.Fatalf("new username not indexed: %v", err)
		}
		if got.ID != created.ID {
			t.Error("wrong account under new username")
		}
	})

	t.Run("Case-Only Rename Is Allowed", func(t *testing.T) {
		name := "Alice2"
		if _, err := repo.Update(created.ID, Patch{Username: &name}); err != nil {
			t.Fatalf("case-only rename failed: %v", err)
		}
		got, err := repo.GetByUsername("alice2")
		if err != nil {
			t.Fatalf("lookup failed: %v", err)
		}
		if got.Username != "Alice2" {
			t.Errorf("expected stored casing Alice2, got %q", got.Username)
		}
	})

	t.Run("Clash Leaves State Untouched", func(t *testing.T) {
		other, err := repo.Create(CreateAccount{
			Email:    "bob@example.com",
			Username: "bob",
			Password: "Sup3rsecret",
		})
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}

		email := "ALICE@example.com"
		_, err = repo.Update(other.ID, Patch{Email: &email})
		if !errors.Is(err, core.ErrUniqueness) {
			t.Fatalf("expected ErrUniqueness, got %v", err)
		}

		got, _ := repo.GetByID(other.ID)
		if got.Email != "bob@example.com" {
			t.Errorf("failed update mutated the account: %+v", got)
		}
	})

	t.Run("Unknown Account Is ErrNotFound", func(t *testing.T) {
		name := "x"
		if _, err := repo.Update("nope", Patch{FullName: &name}); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestUpdateRollsBackOnPersistFailure(t *testing.T) {
	repo, path := newTestRepo(t)
	created, err := repo.Create(alice())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Deleting the snapshot directory makes the next write fail.
	if err := os.RemoveAll(filepath.Dir(path)); err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	name := "alice2"
	if _, err := repo.Update(created.ID, Patch{Username: &name}); err == nil {
		t.Fatal("expected persist failure")
	}

	// In-memory state matches the last successful snapshot.
	if _, err := repo.GetByUsername("alice"); err != nil {
		t.Errorf("rollback lost the original username: %v", err)
	}
	if _, err := repo.GetByUsername("alice2"); !errors.Is(err, core.ErrNotFound) {
		t.Error("rollback left the new username indexed")
	}
}

func TestDelete(t *testing.T) {
	repo, _ := newTestRepo(t)
	created, err := repo.Create(alice())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	deleted, err := repo.Delete(created.ID)
	if err != nil || !deleted {
		t.Fatalf("delete failed: deleted=%v err=%v", deleted, err)
	}

	if _, err := repo.GetByEmail("alice@example.com"); !errors.Is(err, core.ErrNotFound) {
		t.Error("email index survived deletion")
	}
	if _, err := repo.GetByUsername("alice"); !errors.Is(err, core.ErrNotFound) {
		t.Error("username index survived deletion")
	}

	deleted, err = repo.Delete(created.ID)
	if err != nil {
		t.Fatalf("second delete failed: %v", err)
	}
	if deleted {
		t.Error("expected no-op on second delete")
	}
}

func TestList(t *testing.T) {
	repo, _ := newTestRepo(t)

	for _, username := range []string{"alice", "bob", "carol"} {
		_, err := repo.Create(CreateAccount{
			Email:    username + "@example.com",
			Username: username,
			Password: "Sup3rsecret",
		})
		if err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	got := repo.List()
	if len(got) != 3 {
		t.Fatalf("expected 3 accounts, got %d", len(got))
	}
	for i, want := range []string{"alice", "bob", "carol"} {
		if got[i].Username != want {
			t.Errorf("position %d: expected %s, got %s", i, want, got[i].Username)
		}
	}
}

func TestTouchLastLogin(t *testing.T) {
	repo, _ := newTestRepo(t)
	created, err := repo.Create(alice())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.LastLogin != nil {
		t.Error("new accounts have no last login")
	}

	if err := repo.TouchLastLogin(created.ID); err != nil {
		t.Fatalf("touch failed: %v", err)
	}

	got, _ := repo.GetByID(created.ID)
	if got.LastLogin == nil {
		t.Error("last login was not stamped")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	repo, path := newTestRepo(t)
	created, err := repo.Create(alice())
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if err := repo.TouchLastLogin(created.ID); err != nil {
		t.Fatalf("touch failed: %v", err)
	}
	before, _ := repo.GetByID(created.ID)

	reloaded, err := NewRepository(path, nil)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}

	after, err := reloaded.GetByID(created.ID)
	if err != nil {
		t.Fatalf("lookup after reload failed: %v", err)
	}
	if !after.CreatedAt.Equal(before.CreatedAt) {
		t.Errorf("created_at drifted: %v != %v", after.CreatedAt, before.CreatedAt)
	}
	if after.LastLogin == nil || !after.LastLogin.Equal(*before.LastLogin) {
		t.Errorf("last_login drifted: %v != %v", after.LastLogin, before.LastLogin)
	}
	if !after.VerifyPassword("Sup3rsecret") {
		t.Error("password hash did not survive the round trip")
	}
}

func TestCorruptSnapshotStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users", "users.json")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(path, []byte("{broken"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	repo, err := NewRepository(path, nil)
	if err != nil {
		t.Fatalf("repository failed on corrupt snapshot: %v", err)
	}
	if got := repo.List(); len(got) != 0 {
		t.Errorf("expected empty repository, got %d accounts", len(got))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("expected reinitialized snapshot, got %q", data)
	}
}
