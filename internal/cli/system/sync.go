package system

import (
	"fmt"

	"github.com/julianstephens/zentask/internal/cli"
	"github.com/julianstephens/zentask/internal/logger"
	zsync "github.com/julianstephens/zentask/internal/sync"
)

// SyncCmd pushes every category of the signed-in user to the remote store now,
// instead of waiting for the debounced writes.
type SyncCmd struct{}

func (c *SyncCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Open()
	if err != nil {
		return err
	}
	st := t.Session()
	if !st.Authenticated() {
		return fmt.Errorf("sync requires a signed-in session; guest data stays on this device")
	}
	if ctx.Remote == nil {
		return fmt.Errorf("no remote store available; changes are saved locally")
	}

	rctx, cancel := ctx.WithTimeout()
	defer cancel()
	if ctx.Scheduler != nil {
		if err := ctx.Scheduler.Flush(rctx); err != nil {
			logger.Warn("Flush before sync failed", "error", err)
		}
	}
	engine := zsync.NewEngine(ctx.Remote)
	engine.AccountEmail = st.EmailFor
	if err := engine.ReconcileAll(rctx, st.UserID(), t.State()); err != nil {
		return fmt.Errorf("sync failed; your changes are saved locally: %w", err)
	}
	fmt.Fprintln(ctx.Out, "✓ Synced all categories")
	return nil
}
