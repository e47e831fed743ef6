// Package tracker owns the in-memory state of one session. Every mutation is
// validated, applied, written to the local store and, for an authenticated
// session, handed to the sync scheduler.
package tracker

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	stdsync "sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/zentask/internal/constants"
	"github.com/julianstephens/zentask/internal/errors"
	"github.com/julianstephens/zentask/internal/logger"
	"github.com/julianstephens/zentask/internal/models"
	"github.com/julianstephens/zentask/internal/notifier"
	"github.com/julianstephens/zentask/internal/session"
	"github.com/julianstephens/zentask/internal/storage"
	zsync "github.com/julianstephens/zentask/internal/sync"
	"github.com/julianstephens/zentask/internal/utils"
	"github.com/julianstephens/zentask/internal/validation"
)

// ErrNotFound is wrapped by every lookup of a missing entity.
var ErrNotFound = stderrors.New("not found")

const policyHint = "enable it with 'zentask profile set --allow-completed-deletion'"

// Deps are the collaborators of a Tracker. Remote, Scheduler and Notifier are
// optional.
type Deps struct {
	Local     storage.Local
	Remote    storage.Remote
	Scheduler *zsync.Scheduler
	Notifier  notifier.Sink
}

type Tracker struct {
	mu      stdsync.Mutex
	session session.State
	state   models.State
	local   storage.Local
	remote  storage.Remote
	engine  *zsync.Engine
	sched   *zsync.Scheduler
	notify  notifier.Sink
	now     func() time.Time
	newID   func() string
}

// New wraps the bootstrapped state of st.
func New(st session.State, initial models.State, deps Deps) *Tracker {
	t := &Tracker{
		session: st,
		state:   initial,
		local:   deps.Local,
		remote:  deps.Remote,
		sched:   deps.Scheduler,
		notify:  deps.Notifier,
		now:     time.Now,
		newID:   uuid.NewString,
	}
	if deps.Remote != nil {
		t.engine = zsync.NewEngine(deps.Remote)
		t.engine.AccountEmail = st.EmailFor
	}
	return t
}

func (t *Tracker) Session() session.State {
	return t.session
}

// State returns a copy of the current state.
func (t *Tracker) State() models.State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return copyState(t.state)
}

func copyState(s models.State) models.State {
	return models.State{
		Logs:       s.Logs.Clone(),
		Habits:     append([]models.MonthlyHabit{}, s.Habits...),
		Goals:      append([]models.Goal{}, s.Goals...),
		Challenges: append([]models.Challenge{}, s.Challenges...),
		Profile:    s.Profile,
	}
}

func (t *Tracker) timestamp() string {
	return utils.Timestamp(t.now())
}

func (t *Tracker) today() string {
	return utils.FormatDate(t.now())
}

// commit persists kinds locally and schedules their sync. mu must be held.
func (t *Tracker) commit(kinds ...models.Kind) {
	ns := t.session.Namespace()
	for _, kind := range kinds {
		snap, err := zsync.SnapshotOf(t.state, kind)
		if err != nil {
			logger.Error("Failed to capture state", "kind", kind, "error", err)
			continue
		}
		zsync.WriteLocal(t.local, ns, snap)
		if t.session.Authenticated() && t.sched != nil {
			t.sched.Schedule(t.session.UserID(), snap)
		}
	}
}

// refuse builds the policy error and tells the user how to lift it.
func (t *Tracker) refuse(item, message string) error {
	logger.Info("Refused deletion of completed item", "item", item)
	if t.notify != nil {
		if err := t.notify.Notify(message); err != nil {
			logger.Debug("Notification not delivered", "error", err)
		}
	}
	return &errors.PolicyError{Item: item, Hint: policyHint}
}

func notFound(what, id string) error {
	return fmt.Errorf("%s %s: %w", what, id, ErrNotFound)
}

// Export captures the full state in its export form.
func (t *Tracker) Export() models.Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return copyState(t.state).Snapshot()
}

// ImportResult describes an applied import.
type ImportResult struct {
	Kinds []models.Kind
	Fixes []validation.FixAction
	// SyncErr is the failure of the immediate remote reconciliation, if any.
	// The import itself has still been applied locally.
	SyncErr error
}

// Import replaces every category present in snap. Structural conflicts abort
// the import unless fix is set and AutoFix resolves all of them. An
// authenticated session reconciles the replaced categories immediately.
func (t *Tracker) Import(ctx context.Context, snap models.Snapshot, fix bool) (ImportResult, error) {
	var res ImportResult
	v := validation.New()
	report := v.ValidateSnapshot(snap)
	if report.HasConflicts() {
		if !fix {
			return res, errors.Validation("import", "%s", strings.TrimSpace(report.FormatReport()))
		}
		snap, res.Fixes = validation.AutoFix(report.Conflicts, snap)
		if again := v.ValidateSnapshot(snap); again.HasConflicts() {
			return res, errors.Validation("import", "conflicts remain after auto-fix: %s", strings.TrimSpace(again.FormatReport()))
		}
	}

	t.mu.Lock()
	state, kinds := t.state.Apply(snap)
	t.state = state
	ns := t.session.Namespace()
	for _, kind := range kinds {
		s, err := zsync.SnapshotOf(t.state, kind)
		if err != nil {
			t.mu.Unlock()
			return res, err
		}
		zsync.WriteLocal(t.local, ns, s)
		if t.sched != nil && t.session.Authenticated() {
			t.sched.Cancel(t.session.UserID(), kind)
		}
	}
	current := copyState(t.state)
	t.mu.Unlock()

	res.Kinds = kinds
	logger.Info("Imported snapshot", "kinds", kinds, "fixes", len(res.Fixes))

	if t.session.Authenticated() && t.engine != nil && len(kinds) > 0 {
		if err := t.engine.ReconcileAll(ctx, t.session.UserID(), current, kinds...); err != nil {
			logger.Warn("Imported data was not synced", "error", err)
			res.SyncErr = err
		}
	}
	return res, nil
}

// ClearLocal removes every category under the session's namespace, drops
// pending writes and resets the state to defaults. Remote data is untouched.
func (t *Tracker) ClearLocal() {
	t.mu.Lock()
	defer t.mu.Unlock()

	ns := t.session.Namespace()
	for _, kind := range models.AllKinds {
		t.local.Remove(ns, kind)
	}
	if t.sched != nil && t.session.Authenticated() {
		t.sched.CancelAll(t.session.UserID())
	}
	t.state = models.DefaultState(t.defaultProfile())
	logger.Info("Cleared local data", "namespace", ns)
}

func (t *Tracker) defaultProfile() models.UserProfile {
	if id := t.session.Identity; t.session.Authenticated() {
		return models.IdentityProfile(id.UserID, id.DisplayName, id.PhotoURL)
	}
	return models.DefaultProfile(constants.GuestAvatarSeed)
}
