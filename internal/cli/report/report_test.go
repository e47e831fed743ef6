package report

import (
	"strings"
	"testing"

	"github.com/julianstephens/zentask/internal/cli/clitest"
	"github.com/julianstephens/zentask/internal/models"
)

func TestStats(t *testing.T) {
	h := clitest.Offline(t)
	h.Guest()
	tr := h.Tracker(t)
	done, err := tr.AddTask("2024-05-01", "Ship", models.CategoryWork, "")
	if err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}
	if _, err := tr.ToggleTask("2024-05-01", done.ID); err != nil {
		t.Fatalf("ToggleTask failed: %v", err)
	}
	if _, err := tr.AddTask("2024-04-30", "Plan", models.CategoryPersonal, ""); err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}

	if err := (&StatsCmd{Days: 3}).Run(h.Ctx); err != nil {
		t.Fatalf("StatsCmd.Run() error = %v", err)
	}
	out := h.Output()
	for _, want := range []string{
		"Stats for 2024-05",
		"Tasks: 1/1 completed (100%)",
		"Productivity score:",
		"Last 3 days",
		"2024-04-29",
		"Tasks completed: 1/2",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestStatsEmptyMonth(t *testing.T) {
	h := clitest.Offline(t)
	h.Guest()

	if err := (&StatsCmd{Month: "2023-01", Days: 1}).Run(h.Ctx); err != nil {
		t.Fatalf("StatsCmd.Run() error = %v", err)
	}
	if out := h.Output(); !strings.Contains(out, "No tasks were logged in 2023-01") {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestStatsRejectsBadInput(t *testing.T) {
	h := clitest.Offline(t)
	h.Guest()

	if err := (&StatsCmd{Month: "May", Days: 7}).Run(h.Ctx); err == nil {
		t.Error("expected an error for a bad month")
	}
	if err := (&StatsCmd{Days: 0}).Run(h.Ctx); err == nil {
		t.Error("expected an error for zero days")
	}
}

func TestSearch(t *testing.T) {
	h := clitest.Offline(t)
	h.Guest()
	tr := h.Tracker(t)
	for _, d := range []string{"2024-04-01", "2024-05-01", "2024-04-15"} {
		if _, err := tr.AddTask(d, "Call dentist", models.CategoryHealth, ""); err != nil {
			t.Fatalf("AddTask failed: %v", err)
		}
	}
	if _, err := tr.AddTask("2024-05-01", "Groceries", models.CategoryOther, ""); err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}

	if err := (&SearchCmd{Term: "DENTIST", Limit: 2}).Run(h.Ctx); err != nil {
		t.Fatalf("SearchCmd.Run() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(h.Output()), "\n")
	if len(lines) != 3 {
		t.Fatalf("output lines = %d, want 2 matches and a footer: %q", len(lines), lines)
	}
	if !strings.HasPrefix(lines[0], "2024-05-01") || !strings.HasPrefix(lines[1], "2024-04-15") {
		t.Errorf("matches not newest first: %q", lines)
	}
	if !strings.Contains(lines[2], "1 more") {
		t.Errorf("footer = %q", lines[2])
	}

	if err := (&SearchCmd{Term: "yoga"}).Run(h.Ctx); err != nil {
		t.Fatalf("SearchCmd.Run() error = %v", err)
	}
	if out := h.Output(); !strings.Contains(out, "No tasks match") {
		t.Errorf("unexpected output: %q", out)
	}
}
