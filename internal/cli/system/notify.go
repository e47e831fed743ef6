package system

import (
	"fmt"
	"strings"

	"github.com/julianstephens/zentask/internal/cli"
	"github.com/julianstephens/zentask/internal/models"
	"github.com/julianstephens/zentask/internal/tracker"
)

// NotifyCmd sends reminders about the day's unfinished work. It is meant to
// run from cron or a systemd timer.
type NotifyCmd struct {
	Date   string `short:"d" help:"Day to remind about (YYYY-MM-DD, today, yesterday, tomorrow)." default:"today"`
	DryRun bool   `help:"Print notifications to stdout instead of sending them."`
}

func (c *NotifyCmd) Run(ctx *cli.Context) error {
	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	t, err := ctx.Open()
	if err != nil {
		return err
	}

	msgs := reminders(t, date)
	if len(msgs) == 0 {
		if c.DryRun {
			fmt.Fprintln(ctx.Out, "Nothing to remind you about.")
		}
		return nil
	}
	for _, msg := range msgs {
		if c.DryRun {
			fmt.Fprintln(ctx.Out, "[DryRun] "+msg)
			continue
		}
		if err := ctx.Notifier.Notify(msg); err != nil {
			// Keep sending the remaining reminders
			fmt.Fprintf(ctx.Err, "Failed to send notification: %v\n", err)
		}
	}
	return nil
}

const maxListed = 3

func reminders(t *tracker.Tracker, date string) []string {
	var msgs []string

	var open []string
	for _, task := range t.Tasks(date) {
		if !task.Completed {
			open = append(open, task.Text)
		}
	}
	if len(open) > 0 {
		msgs = append(msgs, fmt.Sprintf("%d open task(s) for %s: %s", len(open), date, summarize(open)))
	}

	var habits []string
	for _, h := range t.Habits() {
		if !h.HasCompletion(date) {
			habits = append(habits, h.Text)
		}
	}
	if len(habits) > 0 {
		msgs = append(msgs, fmt.Sprintf("%d habit(s) not yet done: %s", len(habits), summarize(habits)))
	}

	for _, ch := range t.Challenges() {
		if ch.Status != models.ChallengeActive {
			continue
		}
		comp, _ := ch.CompletionFor(date)
		if comp.Progress < 100 {
			msgs = append(msgs, fmt.Sprintf("Challenge %q is at %s for %s", ch.Title, cli.Percent(comp.Progress), date))
		}
	}
	return msgs
}

func summarize(items []string) string {
	if len(items) <= maxListed {
		return strings.Join(items, ", ")
	}
	return fmt.Sprintf("%s and %d more", strings.Join(items[:maxListed], ", "), len(items)-maxListed)
}
