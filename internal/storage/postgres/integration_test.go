package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/julianstephens/zentask/internal/models"
)

// TestStore_Integration tests the PostgreSQL remote store with a real database
// Set POSTGRES_TEST_URL environment variable to run this test
// Example: POSTGRES_TEST_URL="postgres://zentask_user@localhost:5432/zentask_test?sslmode=disable"
func TestStore_Integration(t *testing.T) {
	connStr := os.Getenv("POSTGRES_TEST_URL")
	if connStr == "" {
		t.Skip("POSTGRES_TEST_URL not set, skipping PostgreSQL integration test")
	}

	store := New(connStr)
	if err := store.Init(); err != nil {
		t.Fatalf("Failed to initialize store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	userID := "it-" + uuid.NewString()

	t.Run("BatchUpsertAndDelete", func(t *testing.T) {
		b := store.NewBatch(userID)
		b.Set(models.KindHabits, "h1", json.RawMessage(`{"text":"Read","completions":[]}`))
		b.Set(models.KindHabits, "h2", json.RawMessage(`{"text":"Walk","completions":[]}`))
		if err := b.Commit(ctx); err != nil {
			t.Fatalf("Commit() error = %v", err)
		}

		b = store.NewBatch(userID)
		b.Delete(models.KindHabits, "h1")
		b.Set(models.KindHabits, "h2", json.RawMessage(`{"text":"Walk daily"}`))
		if err := b.Commit(ctx); err != nil {
			t.Fatalf("second Commit() error = %v", err)
		}

		docs, err := store.ListDocuments(ctx, userID, models.KindHabits)
		if err != nil {
			t.Fatal(err)
		}
		if len(docs) != 1 || docs[0].ID != "h2" {
			t.Fatalf("docs = %+v, want only h2", docs)
		}
		var body map[string]any
		if err := json.Unmarshal(docs[0].Body, &body); err != nil {
			t.Fatal(err)
		}
		if body["text"] != "Walk daily" {
			t.Errorf("text = %v, want merged update", body["text"])
		}
		if _, ok := body["completions"]; !ok {
			t.Error("merge dropped an untouched field")
		}
	})

	t.Run("Profile", func(t *testing.T) {
		if _, ok, err := store.GetProfile(ctx, userID); err != nil || ok {
			t.Fatalf("GetProfile() = %v, %v; want absent", ok, err)
		}
		name := "it" + uuid.NewString()[:8]
		p := models.RemoteProfile{DisplayName: "Ada", Username: name, Email: "ada@example.com"}
		if err := store.PutProfile(ctx, userID, p); err != nil {
			t.Fatalf("PutProfile() error = %v", err)
		}
		got, ok, err := store.GetProfile(ctx, userID)
		if err != nil || !ok || got.DisplayName != "Ada" {
			t.Fatalf("GetProfile() = %+v, %v, %v", got, ok, err)
		}

		ids, err := store.FindUsersByUsername(ctx, " "+name+" ")
		if err != nil || len(ids) != 1 || ids[0] != userID {
			t.Errorf("FindUsersByUsername() = %v, %v", ids, err)
		}

		other := "it-" + uuid.NewString()
		err = store.PutProfile(ctx, other, models.RemoteProfile{Username: name})
		if !errors.Is(err, ErrUsernameTaken) {
			t.Errorf("PutProfile() duplicate username error = %v, want ErrUsernameTaken", err)
		}
	})
}
