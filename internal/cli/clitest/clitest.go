// Package clitest builds command contexts over in-memory stores.
package clitest

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/zentask/internal/cli"
	"github.com/julianstephens/zentask/internal/config"
	"github.com/julianstephens/zentask/internal/constants"
	"github.com/julianstephens/zentask/internal/notifier"
	"github.com/julianstephens/zentask/internal/session"
	"github.com/julianstephens/zentask/internal/storage/memory"
	"github.com/julianstephens/zentask/internal/tracker"
)

// Now is the fixed clock of every harness.
var Now = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

type Harness struct {
	Ctx      *cli.Context
	Local    *memory.Local
	Remote   *memory.Remote
	Notifier *notifier.Recorder
	Out      *bytes.Buffer
	Err      *bytes.Buffer
}

// Config returns a config rooted in a temp dir with a long debounce so writes
// only reach the remote on Finish.
func Config(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DataPath:     filepath.Join(t.TempDir(), "zentask.db"),
		LocalBackend: constants.LocalBackendSQLite,
		Sync: config.Sync{
			Debounce:        time.Hour,
			Timeout:         2 * time.Second,
			MigrationPolicy: constants.MigrationLogsSignal,
		},
		Backup: config.Backup{Max: 3},
	}
}

// New builds a harness with a remote store. Confirmations answer yes.
func New(t *testing.T) *Harness {
	t.Helper()
	return build(t, true)
}

// Offline builds a harness without a remote store.
func Offline(t *testing.T) *Harness {
	t.Helper()
	return build(t, false)
}

func build(t *testing.T, withRemote bool) *Harness {
	h := &Harness{
		Local:    memory.NewLocal(),
		Notifier: &notifier.Recorder{},
		Out:      &bytes.Buffer{},
		Err:      &bytes.Buffer{},
	}
	opts := cli.Options{
		Local:    h.Local,
		Notifier: h.Notifier,
		Out:      h.Out,
		Err:      h.Err,
	}
	if withRemote {
		h.Remote = memory.NewRemote()
		opts.Remote = h.Remote
	}
	h.Ctx = cli.NewContext(Config(t), opts)
	h.Ctx.Now = func() time.Time { return Now }
	h.Ctx.Confirm = func(string) (bool, error) { return true, nil }
	return h
}

// Login signs userID in and drops any bootstrapped tracker.
func (h *Harness) Login(t *testing.T, userID string) {
	t.Helper()
	if _, err := h.Ctx.Resolver.Login(session.Identity{UserID: userID, DisplayName: "Test " + userID}); err != nil {
		t.Fatalf("login failed: %v", err)
	}
	h.Ctx.Reset()
}

// Guest switches to guest mode.
func (h *Harness) Guest() {
	h.Ctx.Resolver.ContinueAsGuest()
	h.Ctx.Reset()
}

// Tracker bootstraps and returns the session tracker.
func (h *Harness) Tracker(t *testing.T) *tracker.Tracker {
	t.Helper()
	tr, err := h.Ctx.Tracker(context.Background())
	if err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	return tr
}

// Output returns and resets captured stdout.
func (h *Harness) Output() string {
	s := h.Out.String()
	h.Out.Reset()
	return s
}
