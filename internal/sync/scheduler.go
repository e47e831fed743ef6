package sync

import (
	"context"
	"errors"
	stdsync "sync"
	"time"

	"github.com/julianstephens/zentask/internal/constants"
	"github.com/julianstephens/zentask/internal/logger"
	"github.com/julianstephens/zentask/internal/metrics"
	"github.com/julianstephens/zentask/internal/models"
)

// Options configures a Scheduler.
type Options struct {
	// Delay is the quiet period before a pending write fires.
	Delay time.Duration
	// Timeout bounds each reconciliation run.
	Timeout time.Duration
	// OnError is called after a failed reconciliation fired by a timer.
	OnError func(userID string, kind models.Kind, err error)
}

type pendingKey struct {
	userID string
	kind   models.Kind
}

type pendingWrite struct {
	timer *time.Timer
	snap  Snapshot
	gen   uint64
}

// Scheduler coalesces writes per (user, kind) into one reconciliation after a
// quiet period. Only the latest snapshot for a key is ever written.
type Scheduler struct {
	rec  Reconciler
	opts Options

	mu      stdsync.Mutex
	idle    *stdsync.Cond
	pending map[pendingKey]*pendingWrite
	gen     uint64
	running int
}

func NewScheduler(rec Reconciler, opts Options) *Scheduler {
	if opts.Delay <= 0 {
		opts.Delay = constants.DefaultDebounce
	}
	if opts.Timeout <= 0 {
		opts.Timeout = constants.DefaultSyncTimeout
	}
	s := &Scheduler{
		rec:     rec,
		opts:    opts,
		pending: map[pendingKey]*pendingWrite{},
	}
	s.idle = stdsync.NewCond(&s.mu)
	return s
}

// Schedule queues snap for userID with the configured delay. It never blocks.
func (s *Scheduler) Schedule(userID string, snap Snapshot) {
	s.ScheduleAfter(userID, snap, s.opts.Delay)
}

// ScheduleAfter queues snap, replacing any pending write for the same key.
func (s *Scheduler) ScheduleAfter(userID string, snap Snapshot, delay time.Duration) {
	key := pendingKey{userID: userID, kind: snap.Kind()}

	s.mu.Lock()
	defer s.mu.Unlock()

	old, coalesced := s.pending[key]
	if coalesced {
		old.timer.Stop()
	}
	s.gen++
	gen := s.gen
	pw := &pendingWrite{snap: snap, gen: gen}
	pw.timer = time.AfterFunc(delay, func() { s.fire(key, gen) })
	s.pending[key] = pw

	metrics.Scheduled(key.kind, coalesced)
	metrics.SetPending(len(s.pending))
}

// fire runs the write for key unless it was superseded or taken by Flush.
func (s *Scheduler) fire(key pendingKey, gen uint64) {
	s.mu.Lock()
	pw, ok := s.pending[key]
	if !ok || pw.gen != gen {
		s.mu.Unlock()
		return
	}
	delete(s.pending, key)
	metrics.SetPending(len(s.pending))
	s.running++
	s.mu.Unlock()

	defer s.done()
	if err := s.run(context.Background(), key, pw.snap); err != nil && s.opts.OnError != nil {
		s.opts.OnError(key.userID, key.kind, err)
	}
}

func (s *Scheduler) done() {
	s.mu.Lock()
	s.running--
	if s.running == 0 {
		s.idle.Broadcast()
	}
	s.mu.Unlock()
}

func (s *Scheduler) run(ctx context.Context, key pendingKey, snap Snapshot) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
	defer cancel()
	err := s.rec.Reconcile(ctx, key.userID, snap)
	if err != nil {
		logger.Component("scheduler").Warn("Sync failed; will retry on next change", "user", key.userID, "kind", key.kind, "error", err)
	}
	return err
}

// Cancel drops the pending write for (userID, kind).
func (s *Scheduler) Cancel(userID string, kind models.Kind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pendingKey{userID: userID, kind: kind}
	pw, ok := s.pending[key]
	if !ok {
		return false
	}
	pw.timer.Stop()
	delete(s.pending, key)
	metrics.SetPending(len(s.pending))
	return true
}

// CancelAll drops every pending write for userID and returns how many were
// dropped. Writes already in flight are not interrupted.
func (s *Scheduler) CancelAll(userID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for key, pw := range s.pending {
		if key.userID != userID {
			continue
		}
		pw.timer.Stop()
		delete(s.pending, key)
		n++
	}
	metrics.SetPending(len(s.pending))
	if n > 0 {
		logger.Component("scheduler").Debug("Cancelled pending sync", "user", userID, "count", n)
	}
	return n
}

// Pending reports whether a write for (userID, kind) is waiting to fire.
func (s *Scheduler) Pending(userID string, kind models.Kind) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[pendingKey{userID: userID, kind: kind}]
	return ok
}

// PendingCount returns the number of writes waiting to fire.
func (s *Scheduler) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Flush runs every pending write now and waits for all in-flight writes. It
// returns the joined errors of the writes it ran.
func (s *Scheduler) Flush(ctx context.Context) error {
	s.mu.Lock()
	taken := make(map[pendingKey]Snapshot, len(s.pending))
	for key, pw := range s.pending {
		pw.timer.Stop()
		taken[key] = pw.snap
		delete(s.pending, key)
	}
	metrics.SetPending(0)
	s.mu.Unlock()

	var (
		wg   stdsync.WaitGroup
		emu  stdsync.Mutex
		errs []error
	)
	for key, snap := range taken {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.run(ctx, key, snap); err != nil {
				emu.Lock()
				errs = append(errs, err)
				emu.Unlock()
			}
		}()
	}
	wg.Wait()

	if err := s.waitInflight(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Wait blocks until no reconciliation started by a timer is running.
func (s *Scheduler) Wait() {
	s.mu.Lock()
	for s.running > 0 {
		s.idle.Wait()
	}
	s.mu.Unlock()
}

func (s *Scheduler) waitInflight(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
