package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/julianstephens/zentask/internal/models"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestReadWriteRemove(t *testing.T) {
	store := setupTestStore(t)

	if _, ok := store.Read("zentask_", models.KindLogs); ok {
		t.Fatal("expected absent value on a fresh store")
	}

	store.Write("zentask_", models.KindLogs, []byte(`{"2024-05-01":{"date":"2024-05-01","tasks":[]}}`))
	store.Write("u1_", models.KindLogs, []byte(`{}`))

	got, ok := store.Read("zentask_", models.KindLogs)
	if !ok || string(got) != `{"2024-05-01":{"date":"2024-05-01","tasks":[]}}` {
		t.Errorf("Read() = %q, %v", got, ok)
	}

	store.Write("zentask_", models.KindLogs, []byte(`{}`))
	got, _ = store.Read("zentask_", models.KindLogs)
	if string(got) != `{}` {
		t.Errorf("overwrite not applied: %q", got)
	}

	store.Remove("zentask_", models.KindLogs)
	if _, ok := store.Read("zentask_", models.KindLogs); ok {
		t.Error("value still present after Remove")
	}
	if _, ok := store.Read("u1_", models.KindLogs); !ok {
		t.Error("Remove touched another namespace")
	}
}

func TestFlags(t *testing.T) {
	store := setupTestStore(t)

	store.SetFlag("zentask_guest_mode", "true")
	if v, ok := store.GetFlag("zentask_guest_mode"); !ok || v != "true" {
		t.Errorf("GetFlag() = %q, %v", v, ok)
	}
	store.ClearFlag("zentask_guest_mode")
	if _, ok := store.GetFlag("zentask_guest_mode"); ok {
		t.Error("flag still present after ClearFlag")
	}
}

func TestLoadReopensExistingDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	first := NewStore(path)
	if err := first.Init(); err != nil {
		t.Fatal(err)
	}
	first.Write("u1_", models.KindGoals, []byte(`[]`))
	first.Close()

	second := NewStore(path)
	if err := second.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	defer second.Close()
	if _, ok := second.Read("u1_", models.KindGoals); !ok {
		t.Error("value lost across reopen")
	}
	namespaces, err := second.Namespaces()
	if err != nil || len(namespaces) != 1 || namespaces[0] != "u1_" {
		t.Errorf("Namespaces() = %v, %v", namespaces, err)
	}
}

func TestLoadWithoutInit(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.db"))
	if err := store.Load(); err == nil {
		t.Error("expected error when loading an uninitialised store")
	}
}

func TestOperationsBeforeLoadDoNotPanic(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "x.db"))
	store.Write("ns_", models.KindHabits, []byte(`[]`))
	if _, ok := store.Read("ns_", models.KindHabits); ok {
		t.Error("expected absent value before load")
	}
	store.SetFlag("k", "v")
	if _, ok := store.GetFlag("k"); ok {
		t.Error("expected absent flag before load")
	}
}
