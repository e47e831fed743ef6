package system

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/julianstephens/zentask/internal/cli/clitest"
	"github.com/julianstephens/zentask/internal/models"
)

func TestDebugDBPathCmd(t *testing.T) {
	ctx, dbPath, out := setupSQLite(t)

	if err := (&DebugDBPathCmd{}).Run(ctx); err != nil {
		t.Fatalf("DebugDBPathCmd.Run() error = %v", err)
	}
	var got map[string]string
	if err := json.Unmarshal(out.Bytes(), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if got["path"] != dbPath || got["backend"] != "sqlite" {
		t.Errorf("output = %v", got)
	}
}

func TestDebugNamespacesCmd(t *testing.T) {
	h := clitest.Offline(t)
	h.Local.Write("zentask_", models.KindHabits, []byte(`[]`))
	h.Local.Write("u1_", models.KindLogs, []byte(`{}`))

	if err := (&DebugNamespacesCmd{}).Run(h.Ctx); err != nil {
		t.Fatalf("DebugNamespacesCmd.Run() error = %v", err)
	}
	var got []string
	if err := json.Unmarshal([]byte(h.Output()), &got); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(got) != 2 || got[0] != "u1_" || got[1] != "zentask_" {
		t.Errorf("namespaces = %v", got)
	}
}

func TestDebugDumpCmd(t *testing.T) {
	h := clitest.Offline(t)
	h.Guest()
	if _, err := h.Tracker(t).AddHabit("Read", models.CategoryPersonal); err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}

	t.Run("current session", func(t *testing.T) {
		if err := (&DebugDumpCmd{Kind: "habits"}).Run(h.Ctx); err != nil {
			t.Fatalf("DebugDumpCmd.Run() error = %v", err)
		}
		var habits []models.MonthlyHabit
		if err := json.Unmarshal([]byte(h.Output()), &habits); err != nil {
			t.Fatalf("output is not JSON: %v", err)
		}
		if len(habits) != 1 || habits[0].Text != "Read" {
			t.Errorf("habits = %+v", habits)
		}
	})

	t.Run("unknown kind", func(t *testing.T) {
		if err := (&DebugDumpCmd{Kind: "plans"}).Run(h.Ctx); err == nil {
			t.Error("expected an error for an unknown kind")
		}
	})

	t.Run("missing value", func(t *testing.T) {
		err := (&DebugDumpCmd{Kind: "habits", Namespace: "nobody_"}).Run(h.Ctx)
		if err == nil || !strings.Contains(err.Error(), "nobody_") {
			t.Errorf("error = %v, want a missing namespace error", err)
		}
	})
}
