package sync

import (
	"context"
	"errors"
	"fmt"
	stdsync "sync"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/zentask/internal/constants"
	"github.com/julianstephens/zentask/internal/logger"
	"github.com/julianstephens/zentask/internal/metrics"
	"github.com/julianstephens/zentask/internal/models"
	"github.com/julianstephens/zentask/internal/session"
	"github.com/julianstephens/zentask/internal/storage"
)

// Source names where a category's initial state came from.
type Source string

const (
	SourceRemote  Source = "remote"
	SourceLocal   Source = "local"
	SourceDefault Source = "default"
)

// ErrNoSession is returned when neither an identity nor guest mode is set.
var ErrNoSession = errors.New("no active session: log in or continue as guest")

// Result is the outcome of a bootstrap.
type Result struct {
	State    models.State
	Sources  map[models.Kind]Source
	Remote   map[models.Kind]RemoteStatus
	Plan     MigrationPlan
	Migrated bool
}

// Loader decides the authoritative initial state on a session transition.
type Loader struct {
	local  storage.Local
	remote storage.Remote
	engine *Engine
	policy constants.MigrationPolicy
}

// NewLoader builds a Loader. remote may be nil when no remote store is
// configured; authenticated sessions then load as if every fetch failed.
func NewLoader(local storage.Local, remote storage.Remote, policy constants.MigrationPolicy) *Loader {
	l := &Loader{local: local, remote: remote, policy: policy}
	if remote != nil {
		l.engine = NewEngine(remote)
	}
	return l
}

// Load resolves the state for st and persists it locally under st's namespace.
func (l *Loader) Load(ctx context.Context, st session.State) (Result, error) {
	if !st.Ready() {
		return Result{}, ErrNoSession
	}

	var (
		res Result
		err error
	)
	if st.Authenticated() {
		res, err = l.loadAuthenticated(ctx, st)
	} else {
		res = l.loadGuest()
	}
	if err != nil {
		return Result{}, err
	}

	ns := st.Namespace()
	for _, kind := range models.AllKinds {
		snap, err := SnapshotOf(res.State, kind)
		if err != nil {
			return Result{}, err
		}
		WriteLocal(l.local, ns, snap)
		metrics.BootstrapSource(kind, string(res.Sources[kind]))
	}
	return res, nil
}

func (l *Loader) loadGuest() Result {
	local, present := l.readLocal(constants.GuestPrefix)
	state, sources := resolve(models.State{}, nil, local, present, models.DefaultProfile(constants.GuestAvatarSeed))
	return Result{State: state, Sources: sources, Remote: map[models.Kind]RemoteStatus{}}
}

func (l *Loader) loadAuthenticated(ctx context.Context, st session.State) (Result, error) {
	id := st.Identity
	remote, status := l.fetchRemote(ctx, id.UserID)
	local, present := l.readLocal(st.Namespace())

	defaults := models.IdentityProfile(id.UserID, id.DisplayName, id.PhotoURL)
	state, sources := resolve(remote, status, local, present, defaults)

	res := Result{
		State:   state,
		Sources: sources,
		Remote:  status,
		Plan:    PlanMigration(l.policy, status, present),
	}

	if kinds := res.Plan.Kinds(); len(kinds) > 0 && l.engine != nil {
		l.engine.AccountEmail = st.EmailFor
		if err := l.engine.ReconcileAll(ctx, id.UserID, state, kinds...); err != nil {
			logger.Warn("Migration of local data failed; it will sync on the next change", "user", id.UserID, "error", err)
		} else {
			res.Migrated = true
			for _, k := range kinds {
				metrics.Migrated(k)
			}
			logger.Info("Migrated local data to remote", "user", id.UserID, "kinds", kinds)
		}
	}
	return res, nil
}

// fetchRemote loads every category concurrently. A failed fetch is logged and
// reported as RemoteUnknown; it never fails the bootstrap.
func (l *Loader) fetchRemote(ctx context.Context, userID string) (models.State, map[models.Kind]RemoteStatus) {
	var (
		state  models.State
		mu     stdsync.Mutex
		status = make(map[models.Kind]RemoteStatus, len(models.AllKinds))
	)
	for _, k := range models.AllKinds {
		status[k] = RemoteUnknown
	}
	if l.remote == nil {
		return state, status
	}

	record := func(kind models.Kind, err error, empty bool) {
		mu.Lock()
		defer mu.Unlock()
		switch {
		case err != nil:
			logger.Warn("Remote fetch failed; using local data", "user", userID, "kind", kind, "error", err)
		case empty:
			status[kind] = RemoteEmpty
		default:
			status[kind] = RemotePresent
		}
	}

	var g errgroup.Group
	g.Go(func() error {
		logs := models.Logs{}
		var days []models.DayLog
		err := fetchCollection(ctx, l.remote, userID, models.KindLogs, models.DateField, &days)
		for _, d := range days {
			logs[d.Date] = d
		}
		state.Logs = logs
		record(models.KindLogs, err, len(days) == 0)
		return nil
	})
	g.Go(func() error {
		err := fetchCollection(ctx, l.remote, userID, models.KindHabits, models.IDField, &state.Habits)
		record(models.KindHabits, err, len(state.Habits) == 0)
		return nil
	})
	g.Go(func() error {
		err := fetchCollection(ctx, l.remote, userID, models.KindGoals, models.IDField, &state.Goals)
		record(models.KindGoals, err, len(state.Goals) == 0)
		return nil
	})
	g.Go(func() error {
		err := fetchCollection(ctx, l.remote, userID, models.KindChallenges, models.IDField, &state.Challenges)
		record(models.KindChallenges, err, len(state.Challenges) == 0)
		return nil
	})
	g.Go(func() error {
		rp, ok, err := l.remote.GetProfile(ctx, userID)
		if err == nil && ok {
			state.Profile = models.ProfileFromRemote(rp, userID)
		}
		record(models.KindProfile, err, !ok)
		return nil
	})
	_ = g.Wait()

	return state, status
}

// fetchCollection decodes every document of kind into *dst. A document that
// cannot be decoded fails the whole category.
func fetchCollection[T any](ctx context.Context, remote storage.Remote, userID string, kind models.Kind, idField string, dst *[]T) error {
	docs, err := remote.ListDocuments(ctx, userID, kind)
	if err != nil {
		return err
	}
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		var item T
		if err := models.DecodeDocument(doc.ID, doc.Body, &item, idField); err != nil {
			return fmt.Errorf("%s/%s: %w", kind, doc.ID, err)
		}
		out = append(out, item)
	}
	*dst = out
	return nil
}

// readLocal reads every category under namespace. A category is present when
// it is stored, readable and non-empty.
func (l *Loader) readLocal(namespace string) (models.State, map[models.Kind]bool) {
	var state models.State
	present := make(map[models.Kind]bool, len(models.AllKinds))

	present[models.KindLogs] = ReadLocal(l.local, namespace, models.KindLogs, &state.Logs) && len(state.Logs) > 0
	present[models.KindHabits] = ReadLocal(l.local, namespace, models.KindHabits, &state.Habits) && len(state.Habits) > 0
	present[models.KindGoals] = ReadLocal(l.local, namespace, models.KindGoals, &state.Goals) && len(state.Goals) > 0
	present[models.KindChallenges] = ReadLocal(l.local, namespace, models.KindChallenges, &state.Challenges) && len(state.Challenges) > 0
	present[models.KindProfile] = ReadLocal(l.local, namespace, models.KindProfile, &state.Profile)
	return state, present
}

// resolve picks remote, then local, then defaults for each category. status is
// nil on the guest path.
func resolve(remote models.State, status map[models.Kind]RemoteStatus, local models.State, present map[models.Kind]bool, defaultProfile models.UserProfile) (models.State, map[models.Kind]Source) {
	state := models.DefaultState(defaultProfile)
	sources := make(map[models.Kind]Source, len(models.AllKinds))

	pick := func(kind models.Kind, fromRemote, fromLocal func()) {
		switch {
		case status[kind] == RemotePresent:
			fromRemote()
			sources[kind] = SourceRemote
		case present[kind]:
			fromLocal()
			sources[kind] = SourceLocal
		default:
			sources[kind] = SourceDefault
		}
	}

	pick(models.KindLogs, func() { state.Logs = remote.Logs }, func() { state.Logs = local.Logs })
	pick(models.KindHabits, func() { state.Habits = remote.Habits }, func() { state.Habits = local.Habits })
	pick(models.KindGoals, func() { state.Goals = remote.Goals }, func() { state.Goals = local.Goals })
	pick(models.KindChallenges, func() { state.Challenges = remote.Challenges }, func() { state.Challenges = local.Challenges })
	pick(models.KindProfile, func() { state.Profile = remote.Profile }, func() { state.Profile = models.MergeProfile(defaultProfile, local.Profile) })
	return state, sources
}
