package habits

import (
	"fmt"

	"github.com/julianstephens/zentask/internal/cli"
	"github.com/julianstephens/zentask/internal/models"
	"github.com/julianstephens/zentask/internal/stats"
	"github.com/julianstephens/zentask/internal/tracker"
	"github.com/julianstephens/zentask/internal/utils"
)

type HabitCmd struct {
	Add    HabitAddCmd    `cmd:"" help:"Add a habit."`
	List   HabitListCmd   `cmd:"" help:"List habits with this month's completions." default:"1"`
	Toggle HabitToggleCmd `cmd:"" help:"Mark a habit done or not done on a day."`
	Delete HabitDeleteCmd `cmd:"" help:"Delete a habit."`
}

func habitID(t *tracker.Tracker, input string) (string, error) {
	return cli.MatchID(input, cli.IDsOf(t.Habits(), func(h models.MonthlyHabit) string { return h.ID }))
}

type HabitAddCmd struct {
	Text     string `arg:"" help:"Habit description."`
	Category string `short:"c" help:"Work, Personal, Health, Urgent or Other." default:"Other"`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Open()
	if err != nil {
		return err
	}
	h, err := t.AddHabit(c.Text, models.Category(c.Category))
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "Added habit: %s (ID: %s)\n", h.Text, cli.ShortID(h.ID))
	return nil
}

type HabitListCmd struct {
	Month string `short:"m" help:"Month to count completions in (YYYY-MM). Defaults to the current month."`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	month := c.Month
	if month == "" {
		month = ctx.Now().Format("2006-01")
	}
	year, mon, err := utils.ParseMonth(month)
	if err != nil {
		return err
	}
	t, err := ctx.Open()
	if err != nil {
		return err
	}

	habits := t.Habits()
	if len(habits) == 0 {
		fmt.Fprintln(ctx.Out, "No habits found")
		return nil
	}

	today := ctx.Today()
	days := utils.DaysInMonth(year, mon)
	fmt.Fprintln(ctx.Out, cli.Title("Habits for "+month))
	for _, h := range habits {
		count := stats.HabitMonthCount(h, year, mon)
		fmt.Fprintf(ctx.Out, "  %s %s  %s  %d/%d days  %s\n",
			cli.Check(h.HasCompletion(today)), h.Text, cli.Category(h.Category), count, days,
			cli.Muted("("+cli.ShortID(h.ID)+")"))
	}
	return nil
}

type HabitToggleCmd struct {
	ID   string `arg:"" help:"Habit ID or unique prefix."`
	Date string `short:"d" help:"Day to toggle (YYYY-MM-DD, today, yesterday)." default:"today"`
}

func (c *HabitToggleCmd) Run(ctx *cli.Context) error {
	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	t, err := ctx.Open()
	if err != nil {
		return err
	}
	id, err := habitID(t, c.ID)
	if err != nil {
		return err
	}
	h, err := t.ToggleHabit(id, date)
	if err != nil {
		return err
	}
	if h.HasCompletion(date) {
		fmt.Fprintf(ctx.Out, "Marked %s done on %s\n", h.Text, date)
	} else {
		fmt.Fprintf(ctx.Out, "Cleared %s on %s\n", h.Text, date)
	}
	return nil
}

type HabitDeleteCmd struct {
	ID string `arg:"" help:"Habit ID or unique prefix."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Open()
	if err != nil {
		return err
	}
	id, err := habitID(t, c.ID)
	if err != nil {
		return err
	}
	ok, err := ctx.Ask("Delete this habit and its history?")
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(ctx.Out, "Cancelled.")
		return nil
	}
	if err := t.DeleteHabit(id); err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "Deleted habit (ID: %s)\n", cli.ShortID(id))
	return nil
}
