package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/zentask/internal/backup"
	"github.com/julianstephens/zentask/internal/config"
	"github.com/julianstephens/zentask/internal/logger"
	"github.com/julianstephens/zentask/internal/models"
	"github.com/julianstephens/zentask/internal/notifier"
	"github.com/julianstephens/zentask/internal/session"
	"github.com/julianstephens/zentask/internal/storage"
	zsync "github.com/julianstephens/zentask/internal/sync"
	"github.com/julianstephens/zentask/internal/tracker"
	"github.com/julianstephens/zentask/internal/utils"
)

// Context is bound into every command's Run method.
type Context struct {
	Config    *config.Config
	Local     storage.Local
	Remote    storage.Remote
	Resolver  *session.Resolver
	Loader    *zsync.Loader
	Scheduler *zsync.Scheduler
	Notifier  notifier.Sink
	Backups   *backup.Manager

	Out io.Writer
	Err io.Writer
	// Yes answers every confirmation prompt with yes.
	Yes bool
	// Confirm asks a yes/no question. Defaults to a huh prompt.
	Confirm func(title string) (bool, error)
	// Now is the clock used for "today".
	Now func() time.Time

	tracker *tracker.Tracker
	result  zsync.Result
}

// Options carries the collaborators that differ between the binary and tests.
// Remote is nil when no remote store is configured or reachable.
type Options struct {
	Local    storage.Local
	Remote   storage.Remote
	Notifier notifier.Sink
	Out      io.Writer
	Err      io.Writer
}

// NewContext wires the session resolver, loader and sync scheduler.
func NewContext(cfg *config.Config, opts Options) *Context {
	c := &Context{
		Config:   cfg,
		Local:    opts.Local,
		Remote:   opts.Remote,
		Notifier: opts.Notifier,
		Backups:  backup.NewManager(cfg.Dir(), cfg.Backup.Max),
		Out:      opts.Out,
		Err:      opts.Err,
		Now:      clock(cfg.Timezone),
	}
	if c.Out == nil {
		c.Out = os.Stdout
	}
	if c.Err == nil {
		c.Err = os.Stderr
	}
	if c.Notifier == nil {
		c.Notifier = notifier.NewConsole(c.Err)
	}
	c.Confirm = c.prompt

	c.Resolver = session.NewResolver(c.Local)
	c.Loader = zsync.NewLoader(c.Local, c.Remote, cfg.Sync.MigrationPolicy)
	if c.Remote != nil {
		engine := zsync.NewEngine(c.Remote)
		engine.AccountEmail = func(userID string) string {
			return c.Resolver.Current().EmailFor(userID)
		}
		c.Scheduler = zsync.NewScheduler(engine, zsync.Options{
			Delay:   cfg.Sync.Debounce,
			Timeout: cfg.Sync.Timeout,
			OnError: func(userID string, kind models.Kind, err error) {
				_ = c.Notifier.Notify(fmt.Sprintf("Sync of %s failed; your changes are saved locally.", kind))
			},
		})
		c.Resolver.OnLogout = func(userID string) {
			if n := c.Scheduler.CancelAll(userID); n > 0 {
				logger.Info("Dropped pending writes on logout", "user", userID, "count", n)
			}
		}
	}
	return c
}

// clock reads the current time in the configured timezone, falling back to
// the system zone.
func clock(timezone string) func() time.Time {
	return func() time.Time {
		now, err := utils.NowInTimezone(timezone)
		if err != nil {
			return time.Now()
		}
		return now
	}
}

// Tracker bootstraps the current session on first use.
func (c *Context) Tracker(ctx context.Context) (*tracker.Tracker, error) {
	if c.tracker != nil {
		return c.tracker, nil
	}
	st := c.Resolver.Current()
	res, err := c.Loader.Load(ctx, st)
	if err != nil {
		return nil, err
	}
	c.result = res
	c.tracker = tracker.New(st, res.State, tracker.Deps{
		Local:     c.Local,
		Remote:    c.Remote,
		Scheduler: c.Scheduler,
		Notifier:  c.Notifier,
	})
	if res.Migrated {
		fmt.Fprintf(c.Out, "Migrated local data to your account: %v\n", res.Plan.Kinds())
	}
	return c.tracker, nil
}

// Open bootstraps with the sync timeout bounding remote fetches.
func (c *Context) Open() (*tracker.Tracker, error) {
	ctx, cancel := c.WithTimeout()
	defer cancel()
	return c.Tracker(ctx)
}

// WithTimeout bounds one remote round trip.
func (c *Context) WithTimeout() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), c.Config.Sync.Timeout)
}

// Reset drops the bootstrapped tracker so the next call reloads the session.
func (c *Context) Reset() {
	c.tracker = nil
	c.result = zsync.Result{}
}

// Bootstrap returns the result of the last bootstrap.
func (c *Context) Bootstrap() zsync.Result {
	return c.result
}

// Finish flushes pending remote writes and waits for writes already in
// flight. Failures are warnings: the data is already in the local store.
func (c *Context) Finish() {
	if c.Scheduler == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.Config.Sync.Timeout)
	defer cancel()
	if err := c.Scheduler.Flush(ctx); err != nil {
		logger.Warn("Flush of pending writes failed", "error", err)
		fmt.Fprintf(c.Err, "%s changes are saved locally but were not synced: %v\n", Warning("Warning:"), err)
	}
}

// Close releases both stores.
func (c *Context) Close() {
	if c.Remote != nil {
		if err := c.Remote.Close(); err != nil {
			logger.Warn("Failed to close remote store", "error", err)
		}
	}
	if c.Local != nil {
		if err := c.Local.Close(); err != nil {
			logger.Warn("Failed to close local store", "error", err)
		}
	}
}

// Ask confirms title unless Yes is set.
func (c *Context) Ask(title string) (bool, error) {
	if c.Yes {
		return true, nil
	}
	return c.Confirm(title)
}

func (c *Context) prompt(title string) (bool, error) {
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(&ok),
		),
	).WithTheme(huh.ThemeBase())
	if err := form.Run(); err != nil {
		return false, fmt.Errorf("interactive form error: %w", err)
	}
	return ok, nil
}

// Today is the current date in YYYY-MM-DD.
func (c *Context) Today() string {
	return utils.FormatDate(c.Now())
}

// ResolveDate accepts YYYY-MM-DD, "today", "yesterday", "tomorrow" or "".
func (c *Context) ResolveDate(s string) (string, error) {
	today := c.Today()
	switch s {
	case "", "today":
		return today, nil
	case "yesterday":
		return utils.ShiftDate(today, -1)
	case "tomorrow":
		return utils.ShiftDate(today, 1)
	}
	if !utils.ValidateDateFormat(s) {
		return "", fmt.Errorf("invalid date format: %s (expected YYYY-MM-DD, today, yesterday or tomorrow)", s)
	}
	return s, nil
}

// PerformAutomaticBackup snapshots the current state before a destructive
// command and silently handles errors.
func (c *Context) PerformAutomaticBackup(t *tracker.Tracker) {
	if _, err := c.Backups.CreateBackup(t.Export()); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}
