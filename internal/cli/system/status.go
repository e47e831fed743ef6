package system

import (
	"fmt"

	"github.com/julianstephens/zentask/internal/cli"
	"github.com/julianstephens/zentask/internal/metrics"
	"github.com/julianstephens/zentask/internal/models"
)

type StatusCmd struct {
	Metrics bool `help:"Also print sync metrics collected by this process."`
}

func (c *StatusCmd) Run(ctx *cli.Context) error {
	out := ctx.Out
	st := ctx.Resolver.Current()
	switch {
	case st.Authenticated():
		fmt.Fprintf(out, "Session: signed in as %s (%s)\n", st.Identity.DisplayName, st.UserID())
	case st.Guest:
		fmt.Fprintln(out, "Session: guest (data stays on this device)")
	default:
		fmt.Fprintln(out, "Session: none (run 'zentask login' or 'zentask guest')")
	}

	fmt.Fprintf(out, "Local store: %s (%s)\n", ctx.Local.GetConfigPath(), ctx.Config.LocalBackend)
	switch {
	case !ctx.Config.HasRemote():
		fmt.Fprintln(out, "Remote store: not configured")
	case ctx.Remote == nil:
		fmt.Fprintf(out, "Remote store: %s\n", cli.Warning("offline (configured via "+ctx.Config.RemoteSource+")"))
	default:
		where := "connected"
		if d, ok := ctx.Remote.(interface{ Describe() string }); ok {
			where = "connected to " + d.Describe()
		}
		fmt.Fprintf(out, "Remote store: %s (configured via %s)\n", where, ctx.Config.RemoteSource)
	}

	pending := 0
	if ctx.Scheduler != nil {
		pending = ctx.Scheduler.PendingCount()
	}
	fmt.Fprintf(out, "Pending writes: %d\n", pending)

	if st.Ready() {
		if _, err := ctx.Open(); err != nil {
			return err
		}
		res := ctx.Bootstrap()
		fmt.Fprintln(out, "Loaded from:")
		for _, kind := range models.AllKinds {
			line := fmt.Sprintf("  %-11s %s", kind, res.Sources[kind])
			if status, ok := res.Remote[kind]; ok {
				line += cli.Muted(fmt.Sprintf(" (remote %s)", status))
			}
			fmt.Fprintln(out, line)
		}
	}

	if c.Metrics {
		fmt.Fprintln(out)
		return metrics.Dump(out)
	}
	return nil
}
