package goals

import (
	"fmt"

	"github.com/julianstephens/zentask/internal/cli"
	"github.com/julianstephens/zentask/internal/models"
	"github.com/julianstephens/zentask/internal/tracker"
)

type GoalCmd struct {
	Add      GoalAddCmd      `cmd:"" help:"Add a monthly or yearly goal."`
	List     GoalListCmd     `cmd:"" help:"List goals with progress." default:"1"`
	Toggle   GoalToggleCmd   `cmd:"" help:"Mark a goal achieved or not."`
	Edit     GoalEditCmd     `cmd:"" help:"Edit a goal."`
	Delete   GoalDeleteCmd   `cmd:"" help:"Delete a goal."`
	Progress GoalProgressCmd `cmd:"" help:"Show a goal's progress."`
	Subtask  StepCmd         `cmd:"" help:"Manage goal steps."`
}

func goalID(t *tracker.Tracker, input string) (string, error) {
	return cli.MatchID(input, cli.IDsOf(t.Goals(), func(g models.Goal) string { return g.ID }))
}

func findGoal(t *tracker.Tracker, id string) (models.Goal, bool) {
	for _, g := range t.Goals() {
		if g.ID == id {
			return g, true
		}
	}
	return models.Goal{}, false
}

type GoalAddCmd struct {
	Text        string `arg:"" help:"Goal text."`
	Type        string `short:"t" help:"monthly or yearly." default:"monthly" enum:"monthly,yearly"`
	Description string `help:"Longer description."`
}

func (c *GoalAddCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Open()
	if err != nil {
		return err
	}
	g, err := t.AddGoal(c.Text, models.GoalType(c.Type), c.Description)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "Added %s goal: %s (ID: %s)\n", g.Type, g.Text, cli.ShortID(g.ID))
	return nil
}

type GoalListCmd struct {
	Type string `short:"t" help:"Only list monthly or yearly goals."`
}

func (c *GoalListCmd) Run(ctx *cli.Context) error {
	if c.Type != "" {
		if _, err := models.ParseGoalType(c.Type); err != nil {
			return err
		}
	}
	t, err := ctx.Open()
	if err != nil {
		return err
	}

	shown := 0
	for _, goalType := range []models.GoalType{models.GoalMonthly, models.GoalYearly} {
		if c.Type != "" && models.GoalType(c.Type) != goalType {
			continue
		}
		var goals []models.Goal
		for _, g := range t.Goals() {
			if g.Type == goalType {
				goals = append(goals, g)
			}
		}
		if len(goals) == 0 {
			continue
		}
		if shown > 0 {
			fmt.Fprintln(ctx.Out)
		}
		shown += len(goals)
		fmt.Fprintln(ctx.Out, cli.Title(fmt.Sprintf("%s goals", goalType)))
		for _, g := range goals {
			fmt.Fprintf(ctx.Out, "  %s %s  %s  %s\n", cli.Check(g.Completed), g.Text,
				cli.Percent(g.Progress()), cli.Muted("("+cli.ShortID(g.ID)+")"))
			if g.Description != "" {
				fmt.Fprintf(ctx.Out, "      %s\n", cli.Muted(g.Description))
			}
			for _, s := range g.Subtasks {
				fmt.Fprintf(ctx.Out, "      %s %s  %s\n", cli.Check(s.Completed), s.Text, cli.Muted("("+cli.ShortID(s.ID)+")"))
			}
		}
	}
	if shown == 0 {
		fmt.Fprintln(ctx.Out, "No goals found")
	}
	return nil
}

type GoalToggleCmd struct {
	ID string `arg:"" help:"Goal ID or unique prefix."`
}

func (c *GoalToggleCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Open()
	if err != nil {
		return err
	}
	id, err := goalID(t, c.ID)
	if err != nil {
		return err
	}
	g, err := t.ToggleGoal(id)
	if err != nil {
		return err
	}
	if g.Completed {
		fmt.Fprintf(ctx.Out, "Goal achieved: %s\n", g.Text)
	} else {
		fmt.Fprintf(ctx.Out, "Goal reopened: %s\n", g.Text)
	}
	return nil
}

type GoalEditCmd struct {
	ID          string  `arg:"" help:"Goal ID or unique prefix."`
	Text        *string `help:"New text."`
	Description *string `help:"New description."`
}

func (c *GoalEditCmd) Run(ctx *cli.Context) error {
	if c.Text == nil && c.Description == nil {
		return fmt.Errorf("nothing to change: pass --text or --description")
	}
	t, err := ctx.Open()
	if err != nil {
		return err
	}
	id, err := goalID(t, c.ID)
	if err != nil {
		return err
	}
	g, err := t.EditGoal(id, tracker.GoalEdit{Text: c.Text, Description: c.Description})
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "Updated goal: %s\n", g.Text)
	return nil
}

type GoalDeleteCmd struct {
	ID string `arg:"" help:"Goal ID or unique prefix."`
}

func (c *GoalDeleteCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Open()
	if err != nil {
		return err
	}
	id, err := goalID(t, c.ID)
	if err != nil {
		return err
	}
	if g, ok := findGoal(t, id); ok {
		ok, err := ctx.Ask(fmt.Sprintf("Delete goal %q?", g.Text))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(ctx.Out, "Cancelled.")
			return nil
		}
	}
	if err := t.DeleteGoal(id); err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "Deleted goal (ID: %s)\n", cli.ShortID(id))
	return nil
}

type GoalProgressCmd struct {
	ID string `arg:"" help:"Goal ID or unique prefix."`
}

func (c *GoalProgressCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Open()
	if err != nil {
		return err
	}
	id, err := goalID(t, c.ID)
	if err != nil {
		return err
	}
	p, err := t.GoalProgress(id)
	if err != nil {
		return err
	}
	g, _ := findGoal(t, id)
	fmt.Fprintf(ctx.Out, "%s: %s (%d/%d steps)\n", g.Text, cli.Percent(p), models.CompletedSubtasks(g.Subtasks), len(g.Subtasks))
	return nil
}
