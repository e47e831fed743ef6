package sync

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/zentask/internal/logger"
	"github.com/julianstephens/zentask/internal/metrics"
	"github.com/julianstephens/zentask/internal/models"
	"github.com/julianstephens/zentask/internal/storage"
	"github.com/julianstephens/zentask/internal/utils"
)

// Reconciler makes the remote copy of one category match a snapshot.
type Reconciler interface {
	Reconcile(ctx context.Context, userID string, snap Snapshot) error
}

// Engine is the Reconciler backed by a Remote store. Last write wins per document.
type Engine struct {
	remote storage.Remote
	now    func() time.Time

	// AccountEmail supplies the sign-in email for a profile document that has
	// none. Nil leaves the email empty.
	AccountEmail func(userID string) string
}

var (
	_ Reconciler = (*Engine)(nil)
	_ Handler    = (*Engine)(nil)
)

func NewEngine(remote storage.Remote) *Engine {
	return &Engine{remote: remote, now: time.Now}
}

// Reconcile dispatches snap to the handler for its kind. Failures are returned
// unchanged in meaning; local state is never rolled back.
func (e *Engine) Reconcile(ctx context.Context, userID string, snap Snapshot) error {
	start := time.Now()
	err := snap.dispatch(ctx, userID, e)
	metrics.ObserveReconcile(snap.Kind(), time.Since(start), err)
	if err != nil {
		return fmt.Errorf("reconcile %s: %w", snap.Kind(), err)
	}
	logger.Debug("Reconciled", "user", userID, "kind", snap.Kind(), "elapsed", time.Since(start))
	return nil
}

// ReconcileAll reconciles the given kinds of state concurrently, all kinds when
// none are named. It returns the first failure.
func (e *Engine) ReconcileAll(ctx context.Context, userID string, state models.State, kinds ...models.Kind) error {
	if len(kinds) == 0 {
		kinds = models.AllKinds
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, kind := range kinds {
		snap, err := SnapshotOf(state, kind)
		if err != nil {
			return err
		}
		g.Go(func() error {
			return e.Reconcile(gctx, userID, snap)
		})
	}
	return g.Wait()
}

// Logs upserts every date. Dates are never deleted remotely.
func (e *Engine) Logs(ctx context.Context, userID string, logs models.Logs) error {
	if len(logs) == 0 {
		return nil
	}
	dates := make([]string, 0, len(logs))
	for date := range logs {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	batch := e.remote.NewBatch(userID)
	for _, date := range dates {
		log := logs[date]
		log.Date = date
		body, err := models.EncodeDocument(log, models.DateField)
		if err != nil {
			return err
		}
		batch.Set(models.KindLogs, date, body)
	}
	if err := batch.Commit(ctx); err != nil {
		return err
	}
	metrics.ObserveBatch(models.KindLogs, len(dates), 0)
	return nil
}

func (e *Engine) Habits(ctx context.Context, userID string, habits []models.MonthlyHabit) error {
	return reconcileList(ctx, e.remote, userID, models.KindHabits, habits)
}

func (e *Engine) Goals(ctx context.Context, userID string, goals []models.Goal) error {
	return reconcileList(ctx, e.remote, userID, models.KindGoals, goals)
}

func (e *Engine) Challenges(ctx context.Context, userID string, challenges []models.Challenge) error {
	return reconcileList(ctx, e.remote, userID, models.KindChallenges, challenges)
}

// Profile reads the existing document so account-owned fields survive the write.
func (e *Engine) Profile(ctx context.Context, userID string, profile models.UserProfile) error {
	existing, exists, err := e.remote.GetProfile(ctx, userID)
	if err != nil {
		return err
	}
	var email string
	if e.AccountEmail != nil {
		email = e.AccountEmail(userID)
	}
	merged := models.MergeRemoteProfile(profile, existing, exists, utils.Timestamp(e.now()), email)
	return e.remote.PutProfile(ctx, userID, merged)
}

// reconcileList deletes remote documents missing locally and upserts every
// local item, in one atomic batch.
func reconcileList[T models.Identifiable](ctx context.Context, remote storage.Remote, userID string, kind models.Kind, items []T) error {
	remoteIDs, err := remote.ListDocumentIDs(ctx, userID, kind)
	if err != nil {
		return err
	}

	local := make(map[string]bool, len(items))
	for _, item := range items {
		local[item.DocumentID()] = true
	}

	batch := remote.NewBatch(userID)
	deletes := 0
	for _, id := range remoteIDs {
		if !local[id] {
			batch.Delete(kind, id)
			deletes++
		}
	}
	upserts := 0
	for _, item := range items {
		id := item.DocumentID()
		if id == "" {
			logger.Warn("Skipping entity without id", "kind", kind)
			continue
		}
		body, err := models.EncodeDocument(item, models.IDField)
		if err != nil {
			return err
		}
		batch.Set(kind, id, body)
		upserts++
	}

	if batch.Len() == 0 {
		return nil
	}
	if err := batch.Commit(ctx); err != nil {
		return err
	}
	metrics.ObserveBatch(kind, upserts, deletes)
	return nil
}
