package report

import (
	"fmt"
	"strings"

	"github.com/julianstephens/zentask/internal/cli"
	"github.com/julianstephens/zentask/internal/stats"
)

type SearchCmd struct {
	Term  string `arg:"" help:"Text to look for in task descriptions."`
	Limit int    `short:"n" help:"Maximum number of results (0 for all)." default:"20"`
}

func (c *SearchCmd) Run(ctx *cli.Context) error {
	if strings.TrimSpace(c.Term) == "" {
		return fmt.Errorf("search term must not be empty")
	}
	t, err := ctx.Open()
	if err != nil {
		return err
	}

	matches := stats.SearchTasks(t.State().Logs, c.Term)
	if len(matches) == 0 {
		fmt.Fprintf(ctx.Out, "No tasks match %q.\n", c.Term)
		return nil
	}
	shown := matches
	if c.Limit > 0 && len(shown) > c.Limit {
		shown = shown[:c.Limit]
	}
	for _, m := range shown {
		fmt.Fprintf(ctx.Out, "%s  %s %s  %s\n", m.Date, cli.Check(m.Task.Completed), m.Task.Text, cli.Category(m.Task.Category))
	}
	if len(shown) < len(matches) {
		fmt.Fprintln(ctx.Out, cli.Muted(fmt.Sprintf("... %d more", len(matches)-len(shown))))
	}
	return nil
}
