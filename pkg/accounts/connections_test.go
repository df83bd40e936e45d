package accounts

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/aretw0/silt/pkg/core"
)

func newConnFixture(t *testing.T) (*Connections, string) {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "users", "users.json"), nil)
	if err != nil {
		t.Fatalf("repository failed: %v", err)
	}
	acc, err := repo.Create(CreateAccount{
		Email:    "alice@example.com",
		Username: "alice",
		Password: "Sup3rsecret",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	return NewConnections(repo), acc.ID
}

func TestConnectionAdd(t *testing.T) {
	conns, accID := newConnFixture(t)

	t.Run("Defaults To Pending With Generated ID", func(t *testing.T) {
		conn, err := conns.Add(accID, Connection{Type: TypeGoogleCalendar, Name: "Calendar"})
		if err != nil {
			t.Fatalf("add failed: %v", err)
		}
		if conn.ID == "" {
			t.Error("expected generated id")
		}
		if conn.Status != StatusPending {
			t.Errorf("expected pending, got %s", conn.Status)
		}
	})

	t.Run("Rejects Duplicate ID Within Account", func(t *testing.T) {
		if _, err := conns.Add(accID, Connection{ID: "c1", Type: TypeSpotify}); err != nil {
			t.Fatalf("add failed: %v", err)
		}
		_, err := conns.Add(accID, Connection{ID: "c1", Type: TypeFitbit})
		if !errors.Is(err, core.ErrUniqueness) {
			t.Errorf("expected ErrUniqueness, got %v", err)
		}
	})

	t.Run("Unknown Account Is ErrNotFound", func(t *testing.T) {
		if _, err := conns.Add("nope", Connection{Type: TypeGithub}); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestConnectionListAndGet(t *testing.T) {
	conns, accID := newConnFixture(t)

	for _, id := range []string{"c1", "c2"} {
		if _, err := conns.Add(accID, Connection{ID: id, Type: TypeSpotify}); err != nil {
			t.Fatalf("add failed: %v", err)
		}
	}

	list, err := conns.List(accID)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 2 || list[0].ID != "c1" || list[1].ID != "c2" {
		t.Errorf("unexpected list: %+v", list)
	}

	got, err := conns.Get(accID, "c2")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.ID != "c2" {
		t.Errorf("unexpected connection: %+v", got)
	}

	if _, err := conns.Get(accID, "zz"); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestConnectionUpdate(t *testing.T) {
	conns, accID := newConnFixture(t)
	if _, err := conns.Add(accID, Connection{ID: "c1", Type: TypeNotion, Name: "Notes"}); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	name := "Work Notes"
	got, err := conns.Update(accID, "c1", ConnectionPatch{
		Name:     &name,
		Settings: map[string]any{"workspace": "acme"},
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if got.Name != "Work Notes" {
		t.Errorf("name not merged: %+v", got)
	}
	if got.Settings["workspace"] != "acme" {
		t.Errorf("settings not merged: %+v", got.Settings)
	}
	// Untouched fields survive.
	if got.Type != TypeNotion {
		t.Errorf("type lost in merge: %+v", got)
	}
}

func TestConnectionRemove(t *testing.T) {
	conns, accID := newConnFixture(t)
	if _, err := conns.Add(accID, Connection{ID: "c1", Type: TypeTwitter}); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	removed, err := conns.Remove(accID, "c1")
	if err != nil || !removed {
		t.Fatalf("remove failed: removed=%v err=%v", removed, err)
	}

	removed, err = conns.Remove(accID, "c1")
	if err != nil {
		t.Fatalf("second remove failed: %v", err)
	}
	if removed {
		t.Error("expected no-op on second remove")
	}
}

func TestConnectionLifecycle(t *testing.T) {
	conns, accID := newConnFixture(t)
	if _, err := conns.Add(accID, Connection{ID: "c1", Type: TypeGoogleFit}); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	t.Run("Connecting Stamps Timestamp", func(t *testing.T) {
		got, err := conns.SetStatus(accID, "c1", StatusConnected, "")
		if err != nil {
			t.Fatalf("set status failed: %v", err)
		}
		if got.Status != StatusConnected {
			t.Errorf("expected connected, got %s", got.Status)
		}
		if got.ConnectedAt == nil {
			t.Error("connected_at was not stamped")
		}
	})

	t.Run("Disconnect And Reconnect", func(t *testing.T) {
		if _, err := conns.SetStatus(accID, "c1", StatusDisconnected, ""); err != nil {
			t.Fatalf("disconnect failed: %v", err)
		}
		if _, err := conns.SetStatus(accID, "c1", StatusConnected, ""); err != nil {
			t.Fatalf("reconnect failed: %v", err)
		}
	})

	t.Run("Error Records Message, Retry Clears It", func(t *testing.T) {
		got, err := conns.SetStatus(accID, "c1", StatusError, "token expired")
		if err != nil {
			t.Fatalf("error transition failed: %v", err)
		}
		if got.ErrorMessage != "token expired" {
			t.Errorf("error message not recorded: %+v", got)
		}

		got, err = conns.SetStatus(accID, "c1", StatusConnected, "")
		if err != nil {
			t.Fatalf("retry failed: %v", err)
		}
		if got.ErrorMessage != "" {
			t.Error("error message survived a successful reconnect")
		}
	})

	t.Run("Invalid Transition Is Rejected", func(t *testing.T) {
		if _, err := conns.Add(accID, Connection{ID: "c2", Type: TypeFitbit}); err != nil {
			t.Fatalf("add failed: %v", err)
		}
		// pending -> disconnected is not part of the lifecycle.
		_, err := conns.SetStatus(accID, "c2", StatusDisconnected, "")
		if !errors.Is(err, core.ErrInvalidTransition) {
			t.Errorf("expected ErrInvalidTransition, got %v", err)
		}
	})
}

func TestConnectionTouchLastSync(t *testing.T) {
	conns, accID := newConnFixture(t)
	if _, err := conns.Add(accID, Connection{ID: "c1", Type: TypeAppleHealth}); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	got, err := conns.TouchLastSync(accID, "c1")
	if err != nil {
		t.Fatalf("touch failed: %v", err)
	}
	if got.LastSync == nil {
		t.Error("last_sync was not stamped")
	}

	// The stamp persists through the repository.
	again, err := conns.Get(accID, "c1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if again.LastSync == nil {
		t.Error("last_sync did not persist")
	}
}
