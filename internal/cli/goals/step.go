package goals

import (
	"fmt"

	"github.com/julianstephens/zentask/internal/cli"
	"github.com/julianstephens/zentask/internal/models"
	"github.com/julianstephens/zentask/internal/tracker"
)

type StepCmd struct {
	Add    StepAddCmd    `cmd:"" help:"Add a step to a goal."`
	Toggle StepToggleCmd `cmd:"" help:"Toggle a step."`
	Delete StepDeleteCmd `cmd:"" help:"Delete a step."`
}

func stepTarget(t *tracker.Tracker, goalInput, stepInput string) (string, string, error) {
	id, err := goalID(t, goalInput)
	if err != nil {
		return "", "", err
	}
	g, _ := findGoal(t, id)
	stepID, err := cli.MatchID(stepInput, cli.IDsOf(g.Subtasks, func(s models.Subtask) string { return s.ID }))
	return id, stepID, err
}

type StepAddCmd struct {
	GoalID string `arg:"" help:"Goal ID or unique prefix."`
	Text   string `arg:"" help:"Step text."`
}

func (c *StepAddCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Open()
	if err != nil {
		return err
	}
	id, err := goalID(t, c.GoalID)
	if err != nil {
		return err
	}
	s, err := t.AddGoalSubtask(id, c.Text)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "Added step: %s (ID: %s)\n", s.Text, cli.ShortID(s.ID))
	return nil
}

type StepToggleCmd struct {
	GoalID string `arg:"" help:"Goal ID or unique prefix."`
	StepID string `arg:"" help:"Step ID or unique prefix."`
}

func (c *StepToggleCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Open()
	if err != nil {
		return err
	}
	id, stepID, err := stepTarget(t, c.GoalID, c.StepID)
	if err != nil {
		return err
	}
	g, err := t.ToggleGoalSubtask(id, stepID)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "%s is now at %s\n", g.Text, cli.Percent(g.Progress()))
	return nil
}

type StepDeleteCmd struct {
	GoalID string `arg:"" help:"Goal ID or unique prefix."`
	StepID string `arg:"" help:"Step ID or unique prefix."`
}

func (c *StepDeleteCmd) Run(ctx *cli.Context) error {
	t, err := ctx.Open()
	if err != nil {
		return err
	}
	id, stepID, err := stepTarget(t, c.GoalID, c.StepID)
	if err != nil {
		return err
	}
	if err := t.DeleteGoalSubtask(id, stepID); err != nil {
		return err
	}
	fmt.Fprintln(ctx.Out, "Step deleted")
	return nil
}
