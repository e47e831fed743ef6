package report

import (
	"fmt"
	"strings"

	"github.com/julianstephens/zentask/internal/cli"
	"github.com/julianstephens/zentask/internal/models"
	"github.com/julianstephens/zentask/internal/stats"
	"github.com/julianstephens/zentask/internal/utils"
)

type StatsCmd struct {
	Month string `short:"m" help:"Month to report on (YYYY-MM). Defaults to the current month."`
	Days  int    `help:"Length of the recent activity strip." default:"7"`
}

func (c *StatsCmd) Run(ctx *cli.Context) error {
	month := c.Month
	if month == "" {
		month = ctx.Now().Format("2006-01")
	}
	year, mon, err := utils.ParseMonth(month)
	if err != nil {
		return err
	}
	if c.Days < 1 {
		return fmt.Errorf("--days must be at least 1")
	}

	t, err := ctx.Open()
	if err != nil {
		return err
	}
	state := t.State()

	st := stats.Monthly(state.Logs, year, mon)
	fmt.Fprintln(ctx.Out, cli.Title("Stats for "+st.Month))
	fmt.Fprintf(ctx.Out, "  Tasks: %d/%d completed (%s)\n", st.CompletedTasks, st.TotalTasks, cli.Percent(st.CompletionRate))
	for _, cat := range models.Categories {
		if n := st.CategoryBreakdown[cat]; n > 0 {
			fmt.Fprintf(ctx.Out, "  %-10s %d\n", cli.Category(cat), n)
		}
	}

	rctx, cancel := ctx.WithTimeout()
	defer cancel()
	insights, err := stats.HeuristicInsighter{Now: ctx.Now}.Insights(rctx, st)
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.Out)
	fmt.Fprintf(ctx.Out, "%s %d/100\n", cli.Title("Productivity score:"), insights.ProductivityScore)
	fmt.Fprintf(ctx.Out, "  %s\n", insights.Summary)
	for _, rec := range insights.Recommendations {
		fmt.Fprintf(ctx.Out, "  - %s\n", rec)
	}

	days, err := stats.LastNDays(state.Logs, ctx.Today(), c.Days)
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.Out)
	fmt.Fprintln(ctx.Out, cli.Title(fmt.Sprintf("Last %d days", c.Days)))
	for _, d := range days {
		if !d.HasTasks() {
			fmt.Fprintf(ctx.Out, "  %s  %s\n", d.Date, cli.Muted("no tasks"))
			continue
		}
		fmt.Fprintf(ctx.Out, "  %s  %s %d/%d\n", d.Date, bar(d.Progress), d.Completed, d.Total)
	}

	sum := stats.Overview(state)
	fmt.Fprintln(ctx.Out)
	fmt.Fprintln(ctx.Out, cli.Title("All time"))
	fmt.Fprintf(ctx.Out, "  Tasks completed: %d/%d\n", sum.CompletedTasks, sum.TotalTasks)
	fmt.Fprintf(ctx.Out, "  Goals: %d/%d monthly, %d/%d yearly\n",
		sum.MonthlyGoalsCompleted, sum.MonthlyGoals, sum.YearlyGoalsCompleted, sum.YearlyGoals)
	fmt.Fprintf(ctx.Out, "  Challenges: %d active, %d completed\n", sum.ActiveChallenges, sum.CompletedChallenges)
	fmt.Fprintf(ctx.Out, "  Habits: %d\n", sum.ActiveHabits)
	for _, g := range sum.ActiveGoals {
		fmt.Fprintf(ctx.Out, "  > %s %s\n", g.Text, cli.Muted("("+string(g.Type)+")"))
	}
	return nil
}

const barWidth = 10

func bar(p float64) string {
	filled := int(p / 100 * barWidth)
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", barWidth-filled) + "]"
}
