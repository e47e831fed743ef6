package cli_test

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/julianstephens/zentask/internal/cli"
	"github.com/julianstephens/zentask/internal/cli/clitest"
	"github.com/julianstephens/zentask/internal/models"
	"github.com/julianstephens/zentask/internal/storage/memory"
	zsync "github.com/julianstephens/zentask/internal/sync"
)

func TestResolveDate(t *testing.T) {
	h := clitest.Offline(t)

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"", "2024-05-01", false},
		{"today", "2024-05-01", false},
		{"yesterday", "2024-04-30", false},
		{"tomorrow", "2024-05-02", false},
		{"2023-12-31", "2023-12-31", false},
		{"31/12/2023", "", true},
		{"2024-02-30", "", true},
	}

	for _, tt := range tests {
		got, err := h.Ctx.ResolveDate(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ResolveDate(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ResolveDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMatchID(t *testing.T) {
	ids := []string{"abc123", "abd456", "zzz"}

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"abc123", "abc123", false},
		{"abc", "abc123", false},
		{"z", "zzz", false},
		{"ab", "", true},
		{"nope", "nope", false},
	}

	for _, tt := range tests {
		got, err := cli.MatchID(tt.in, ids)
		if (err != nil) != tt.wantErr {
			t.Errorf("MatchID(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("MatchID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAskHonoursYes(t *testing.T) {
	h := clitest.Offline(t)
	asked := 0
	h.Ctx.Confirm = func(string) (bool, error) {
		asked++
		return false, nil
	}

	if ok, _ := h.Ctx.Ask("Proceed?"); ok {
		t.Error("Ask() = true, want the prompt's answer")
	}
	h.Ctx.Yes = true
	if ok, _ := h.Ctx.Ask("Proceed?"); !ok {
		t.Error("Ask() = false with Yes set")
	}
	if asked != 1 {
		t.Errorf("prompt called %d times, want 1", asked)
	}
}

func TestTrackerRequiresSession(t *testing.T) {
	h := clitest.New(t)
	if _, err := h.Ctx.Tracker(t.Context()); err == nil {
		t.Fatal("expected an error with no session")
	}
}

func TestFinishFlushesPendingWrites(t *testing.T) {
	h := clitest.New(t)
	h.Login(t, "u1")
	tr := h.Tracker(t)

	if _, err := tr.AddHabit("Read", models.CategoryPersonal); err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}
	if got := len(h.Remote.Documents("u1", models.KindHabits)); got != 0 {
		t.Fatalf("habit reached remote before Finish: %d docs", got)
	}

	h.Ctx.Finish()

	if got := len(h.Remote.Documents("u1", models.KindHabits)); got != 1 {
		t.Errorf("remote habits after Finish = %d, want 1", got)
	}
	if h.Err.Len() != 0 {
		t.Errorf("unexpected warning: %s", h.Err.String())
	}
}

func TestFinishWarnsOnSyncFailure(t *testing.T) {
	h := clitest.New(t)
	h.Login(t, "u1")
	tr := h.Tracker(t)

	if _, err := tr.AddHabit("Stretch", models.CategoryHealth); err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}
	h.Remote.FailNext(memory.MethodCommit, errors.New("network down"))

	h.Ctx.Finish()

	if !strings.Contains(h.Err.String(), "not synced") {
		t.Errorf("expected a sync warning, got %q", h.Err.String())
	}
	if _, ok := h.Local.Read("u1_", models.KindHabits); !ok {
		t.Error("habit missing from local store")
	}
}

// gatedReconciler blocks every write until release is closed.
type gatedReconciler struct {
	started chan struct{}
	release chan struct{}
	done    atomic.Bool
}

func (g *gatedReconciler) Reconcile(ctx context.Context, userID string, snap zsync.Snapshot) error {
	close(g.started)
	<-g.release
	g.done.Store(true)
	return nil
}

func TestFinishWaitsForInflightWrites(t *testing.T) {
	h := clitest.New(t)
	rec := &gatedReconciler{started: make(chan struct{}), release: make(chan struct{})}
	h.Ctx.Scheduler = zsync.NewScheduler(rec, zsync.Options{Delay: time.Hour, Timeout: 2 * time.Second})

	h.Ctx.Scheduler.ScheduleAfter("u1", zsync.HabitsSnapshot{Habits: []models.MonthlyHabit{}}, 0)
	select {
	case <-rec.started:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled write never started")
	}
	if n := h.Ctx.Scheduler.PendingCount(); n != 0 {
		t.Fatalf("PendingCount() = %d, want 0 once the write is in flight", n)
	}

	time.AfterFunc(20*time.Millisecond, func() { close(rec.release) })
	h.Ctx.Finish()

	if !rec.done.Load() {
		t.Error("Finish returned before the in-flight write completed")
	}
	if h.Err.Len() != 0 {
		t.Errorf("unexpected warning: %s", h.Err.String())
	}
}

func TestLogoutCancelsPendingWrites(t *testing.T) {
	h := clitest.New(t)
	h.Login(t, "u1")
	tr := h.Tracker(t)

	if _, err := tr.AddHabit("Walk", models.CategoryHealth); err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}
	if h.Ctx.Scheduler.PendingCount() != 1 {
		t.Fatalf("PendingCount() = %d, want 1", h.Ctx.Scheduler.PendingCount())
	}

	h.Ctx.Resolver.Logout(tr.Session())

	if h.Ctx.Scheduler.PendingCount() != 0 {
		t.Errorf("PendingCount() after logout = %d, want 0", h.Ctx.Scheduler.PendingCount())
	}
}

func TestOfflineHasNoScheduler(t *testing.T) {
	h := clitest.Offline(t)
	h.Login(t, "u1")
	tr := h.Tracker(t)

	if h.Ctx.Scheduler != nil {
		t.Fatal("offline context has a scheduler")
	}
	if _, err := tr.AddHabit("Read", models.CategoryPersonal); err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}
	h.Ctx.Finish()
	if _, ok := h.Local.Read("u1_", models.KindHabits); !ok {
		t.Error("habit missing from local store")
	}
}

func TestNowFollowsConfiguredTimezone(t *testing.T) {
	cfg := clitest.Config(t)
	cfg.Timezone = "Asia/Tokyo"
	ctx := cli.NewContext(cfg, cli.Options{Local: memory.NewLocal()})

	if got := ctx.Now().Location().String(); got != "Asia/Tokyo" {
		t.Errorf("Now() location = %q, want Asia/Tokyo", got)
	}
}
