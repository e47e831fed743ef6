package jsonfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/julianstephens/zentask/internal/models"
)

func TestJSONStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zentask.json")
	store := NewStore(path)
	if err := store.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	store.Write("zentask_", models.KindHabits, []byte(`[{"id":"h1"}]`))
	store.SetFlag("zentask_guest_mode", "true")

	reopened := NewStore(path)
	if err := reopened.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	got, ok := reopened.Read("zentask_", models.KindHabits)
	if !ok || string(got) != `[{"id":"h1"}]` {
		t.Errorf("Read() = %q, %v", got, ok)
	}
	if v, ok := reopened.GetFlag("zentask_guest_mode"); !ok || v != "true" {
		t.Errorf("GetFlag() = %q, %v", v, ok)
	}

	reopened.Remove("zentask_", models.KindHabits)
	reopened.ClearFlag("zentask_guest_mode")
	if _, ok := reopened.Read("zentask_", models.KindHabits); ok {
		t.Error("value present after Remove")
	}
	if _, ok := reopened.GetFlag("zentask_guest_mode"); ok {
		t.Error("flag present after ClearFlag")
	}
}

func TestJSONStoreRejectsInvalidJSON(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "zentask.json"))
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}
	store.Write("zentask_", models.KindGoals, []byte(`{not json`))
	if _, ok := store.Read("zentask_", models.KindGoals); ok {
		t.Error("invalid JSON should not be stored")
	}
}

func TestJSONStoreInitKeepsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zentask.json")
	first := NewStore(path)
	if err := first.Init(); err != nil {
		t.Fatal(err)
	}
	first.Write("u1_", models.KindLogs, []byte(`{}`))

	second := NewStore(path)
	if err := second.Init(); err != nil {
		t.Fatalf("second Init() error = %v", err)
	}
	if _, ok := second.Read("u1_", models.KindLogs); !ok {
		t.Error("Init overwrote existing data")
	}
}

func TestJSONStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "zentask.json")
	if err := os.WriteFile(path, []byte("garbage"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := NewStore(path).Load(); err == nil {
		t.Error("expected parse error")
	}
}

func TestJSONStoreNamespaces(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "zentask.json"))
	if _, err := store.Namespaces(); err == nil {
		t.Error("Namespaces() before Init should fail")
	}
	if err := store.Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	store.Write("zentask_", models.KindHabits, []byte(`[]`))
	store.Write("u1_", models.KindLogs, []byte(`{}`))
	store.Write("u1_", models.KindProfile, []byte(`{}`))

	got, err := store.Namespaces()
	if err != nil {
		t.Fatalf("Namespaces() error = %v", err)
	}
	if len(got) != 2 || got[0] != "u1_" || got[1] != "zentask_" {
		t.Errorf("Namespaces() = %v, want [u1_ zentask_]", got)
	}
}
