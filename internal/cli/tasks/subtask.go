package tasks

import (
	"fmt"

	"github.com/julianstephens/zentask/internal/cli"
	"github.com/julianstephens/zentask/internal/models"
	"github.com/julianstephens/zentask/internal/tracker"
)

type SubtaskCmd struct {
	Add    SubtaskAddCmd    `cmd:"" help:"Add a subtask."`
	Toggle SubtaskToggleCmd `cmd:"" help:"Toggle a subtask."`
	Delete SubtaskDeleteCmd `cmd:"" help:"Delete a subtask."`
}

// subtaskTarget resolves the task and subtask ids of a subtask command.
func subtaskTarget(t *tracker.Tracker, date, taskInput, subInput string) (string, string, error) {
	id, err := taskID(t, date, taskInput)
	if err != nil {
		return "", "", err
	}
	var subIDs []string
	for _, task := range t.Tasks(date) {
		if task.ID == id {
			subIDs = cli.IDsOf(task.Subtasks, func(s models.Subtask) string { return s.ID })
		}
	}
	subID, err := cli.MatchID(subInput, subIDs)
	return id, subID, err
}

type SubtaskAddCmd struct {
	TaskID string `arg:"" help:"Task ID or unique prefix."`
	Text   string `arg:"" help:"Subtask text."`
	Date   string `short:"d" help:"Day the task is logged on." default:"today"`
}

func (c *SubtaskAddCmd) Run(ctx *cli.Context) error {
	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	t, err := ctx.Open()
	if err != nil {
		return err
	}
	id, err := taskID(t, date, c.TaskID)
	if err != nil {
		return err
	}
	sub, err := t.AddTaskSubtask(date, id, c.Text)
	if err != nil {
		return err
	}
	fmt.Fprintf(ctx.Out, "Added subtask: %s (ID: %s)\n", sub.Text, cli.ShortID(sub.ID))
	return nil
}

type SubtaskToggleCmd struct {
	TaskID    string `arg:"" help:"Task ID or unique prefix."`
	SubtaskID string `arg:"" help:"Subtask ID or unique prefix."`
	Date      string `short:"d" help:"Day the task is logged on." default:"today"`
}

func (c *SubtaskToggleCmd) Run(ctx *cli.Context) error {
	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	t, err := ctx.Open()
	if err != nil {
		return err
	}
	id, subID, err := subtaskTarget(t, date, c.TaskID, c.SubtaskID)
	if err != nil {
		return err
	}
	if err := t.ToggleTaskSubtask(date, id, subID); err != nil {
		return err
	}
	fmt.Fprintln(ctx.Out, "Subtask toggled")
	return nil
}

type SubtaskDeleteCmd struct {
	TaskID    string `arg:"" help:"Task ID or unique prefix."`
	SubtaskID string `arg:"" help:"Subtask ID or unique prefix."`
	Date      string `short:"d" help:"Day the task is logged on." default:"today"`
}

func (c *SubtaskDeleteCmd) Run(ctx *cli.Context) error {
	date, err := ctx.ResolveDate(c.Date)
	if err != nil {
		return err
	}
	t, err := ctx.Open()
	if err != nil {
		return err
	}
	id, subID, err := subtaskTarget(t, date, c.TaskID, c.SubtaskID)
	if err != nil {
		return err
	}
	if err := t.DeleteTaskSubtask(date, id, subID); err != nil {
		return err
	}
	fmt.Fprintln(ctx.Out, "Subtask deleted")
	return nil
}
