package challenges

import (
	"strings"
	"testing"

	"github.com/julianstephens/zentask/internal/cli/clitest"
	"github.com/julianstephens/zentask/internal/errors"
	"github.com/julianstephens/zentask/internal/models"
)

func TestChallengeStart(t *testing.T) {
	h := clitest.Offline(t)
	h.Guest()

	cmd := &ChallengeStartCmd{Title: "No sugar", Rules: []string{"No dessert", " ", "No soda"}, Days: 2}
	if err := cmd.Run(h.Ctx); err != nil {
		t.Fatalf("ChallengeStartCmd.Run() error = %v", err)
	}
	out := h.Output()
	if !strings.Contains(out, "Commit to No sugar for 2 days.") {
		t.Errorf("output = %q, want the default description", out)
	}
	ch := h.Tracker(t).Challenges()[0]
	if len(ch.Subtasks) != 2 || ch.Status != models.ChallengeActive {
		t.Errorf("challenge = %+v", ch)
	}

	bad := []ChallengeStartCmd{
		{Title: "", Rules: []string{"x"}, Days: 3},
		{Title: "x", Rules: []string{"  "}, Days: 3},
		{Title: "x", Rules: []string{"y"}, Days: 0},
	}
	for _, c := range bad {
		if err := c.Run(h.Ctx); err == nil {
			t.Errorf("StartChallenge(%+v) succeeded", c)
		}
	}
}

func TestChallengeCheckCompletes(t *testing.T) {
	h := clitest.Offline(t)
	h.Guest()
	ch, err := h.Tracker(t).StartChallenge("Run streak", "", 1, []string{"Run 2k", "Stretch"})
	if err != nil {
		t.Fatalf("StartChallenge failed: %v", err)
	}

	first := &ChallengeCheckCmd{ID: ch.ID, RuleID: ch.Subtasks[0].ID, Date: "today"}
	if err := first.Run(h.Ctx); err != nil {
		t.Fatalf("check 1: %v", err)
	}
	if out := h.Output(); !strings.Contains(out, "Run streak on 2024-05-01: 50%") {
		t.Errorf("output = %q", out)
	}

	second := &ChallengeCheckCmd{ID: ch.ID[:5], RuleID: ch.Subtasks[1].ID[:5], Date: "2024-05-01"}
	if err := second.Run(h.Ctx); err != nil {
		t.Fatalf("check 2: %v", err)
	}
	if out := h.Output(); !strings.Contains(out, "Challenge completed!") {
		t.Errorf("output = %q, want completion", out)
	}
	if got := h.Tracker(t).Challenges()[0].Status; got != models.ChallengeCompleted {
		t.Errorf("Status = %q, want completed", got)
	}
	if msgs := h.Notifier.Messages(); len(msgs) != 1 || !strings.Contains(msgs[0], "Run streak") {
		t.Errorf("notifications = %v", msgs)
	}

	if err := (&ChallengeListCmd{Date: "today"}).Run(h.Ctx); err != nil {
		t.Fatalf("ChallengeListCmd.Run() error = %v", err)
	}
	if out := h.Output(); !strings.Contains(out, "completed  1/1 days") || !strings.Contains(out, "[x] Stretch") {
		t.Errorf("list output = %q", out)
	}

	if err := (&ChallengeDeleteCmd{ID: ch.ID}).Run(h.Ctx); !errors.IsPolicy(err) {
		t.Fatalf("delete completed: error = %v, want policy error", err)
	}

	// Unticking a rule reopens the challenge.
	if err := first.Run(h.Ctx); err != nil {
		t.Fatalf("uncheck: %v", err)
	}
	if got := h.Tracker(t).Challenges()[0].Status; got != models.ChallengeActive {
		t.Errorf("Status = %q, want active", got)
	}
	if err := (&ChallengeDeleteCmd{ID: ch.ID}).Run(h.Ctx); err != nil {
		t.Fatalf("ChallengeDeleteCmd.Run() error = %v", err)
	}
}
