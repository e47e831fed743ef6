package goals

import (
	"strings"
	"testing"

	"github.com/julianstephens/zentask/internal/cli/clitest"
	"github.com/julianstephens/zentask/internal/errors"
	"github.com/julianstephens/zentask/internal/models"
)

func TestGoalAddListAndProgress(t *testing.T) {
	h := clitest.Offline(t)
	h.Guest()

	if err := (&GoalAddCmd{Text: "Run a 10k", Type: "yearly"}).Run(h.Ctx); err != nil {
		t.Fatalf("GoalAddCmd.Run() error = %v", err)
	}
	if err := (&GoalAddCmd{Text: "Read 2 books", Type: "monthly"}).Run(h.Ctx); err != nil {
		t.Fatalf("GoalAddCmd.Run() error = %v", err)
	}
	goals := h.Tracker(t).Goals()
	if len(goals) != 2 || goals[0].Type != models.GoalYearly {
		t.Fatalf("goals = %+v", goals)
	}
	yearly := goals[0]

	for _, step := range []string{"5k", "8k"} {
		if err := (&StepAddCmd{GoalID: yearly.ID, Text: step}).Run(h.Ctx); err != nil {
			t.Fatalf("StepAddCmd.Run() error = %v", err)
		}
	}
	steps := h.Tracker(t).Goals()[0].Subtasks
	if err := (&StepToggleCmd{GoalID: yearly.ID, StepID: steps[0].ID}).Run(h.Ctx); err != nil {
		t.Fatalf("StepToggleCmd.Run() error = %v", err)
	}
	h.Output()

	if err := (&GoalProgressCmd{ID: yearly.ID[:6]}).Run(h.Ctx); err != nil {
		t.Fatalf("GoalProgressCmd.Run() error = %v", err)
	}
	if out := h.Output(); !strings.Contains(out, "Run a 10k: 50% (1/2 steps)") {
		t.Errorf("progress output = %q", out)
	}

	if err := (&GoalListCmd{Type: "monthly"}).Run(h.Ctx); err != nil {
		t.Fatalf("GoalListCmd.Run() error = %v", err)
	}
	out := h.Output()
	if !strings.Contains(out, "Read 2 books") || strings.Contains(out, "Run a 10k") {
		t.Errorf("monthly list = %q", out)
	}

	if err := (&GoalListCmd{Type: "weekly"}).Run(h.Ctx); err == nil {
		t.Error("expected an error for an unknown goal type")
	}
}

func TestGoalToggleEditDelete(t *testing.T) {
	h := clitest.Offline(t)
	h.Guest()
	g, err := h.Tracker(t).AddGoal("Learn Go", models.GoalMonthly, "")
	if err != nil {
		t.Fatalf("AddGoal failed: %v", err)
	}

	desc := "Finish the tour"
	if err := (&GoalEditCmd{ID: g.ID, Description: &desc}).Run(h.Ctx); err != nil {
		t.Fatalf("GoalEditCmd.Run() error = %v", err)
	}
	if err := (&GoalEditCmd{ID: g.ID}).Run(h.Ctx); err == nil {
		t.Error("edit with no changes should fail")
	}

	if err := (&GoalToggleCmd{ID: g.ID}).Run(h.Ctx); err != nil {
		t.Fatalf("GoalToggleCmd.Run() error = %v", err)
	}
	if out := h.Output(); !strings.Contains(out, "Goal achieved: Learn Go") {
		t.Errorf("toggle output = %q", out)
	}

	if err := (&GoalDeleteCmd{ID: g.ID}).Run(h.Ctx); !errors.IsPolicy(err) {
		t.Fatalf("delete completed goal: error = %v, want policy error", err)
	}

	if err := (&GoalToggleCmd{ID: g.ID}).Run(h.Ctx); err != nil {
		t.Fatalf("GoalToggleCmd.Run() error = %v", err)
	}
	if err := (&GoalDeleteCmd{ID: g.ID}).Run(h.Ctx); err != nil {
		t.Fatalf("GoalDeleteCmd.Run() error = %v", err)
	}
	if got := len(h.Tracker(t).Goals()); got != 0 {
		t.Errorf("goals = %d, want 0", got)
	}
}

func TestStepDeletePolicy(t *testing.T) {
	h := clitest.Offline(t)
	h.Guest()
	tr := h.Tracker(t)
	g, _ := tr.AddGoal("Ship", models.GoalMonthly, "")
	s, _ := tr.AddGoalSubtask(g.ID, "Write docs")
	if _, err := tr.ToggleGoalSubtask(g.ID, s.ID); err != nil {
		t.Fatalf("ToggleGoalSubtask failed: %v", err)
	}

	if err := (&StepDeleteCmd{GoalID: g.ID, StepID: s.ID}).Run(h.Ctx); !errors.IsPolicy(err) {
		t.Fatalf("error = %v, want policy error", err)
	}
	if _, err := tr.SetAllowCompletedDeletion(true); err != nil {
		t.Fatalf("SetAllowCompletedDeletion failed: %v", err)
	}
	if err := (&StepDeleteCmd{GoalID: g.ID, StepID: s.ID}).Run(h.Ctx); err != nil {
		t.Fatalf("StepDeleteCmd.Run() error = %v", err)
	}
}
